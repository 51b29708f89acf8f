package negotiation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	apimiddleware "github.com/pseudolawyer/negotiation-backend/internal/api/middleware"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
	"github.com/pseudolawyer/negotiation-backend/internal/pkg/logger"
	"github.com/pseudolawyer/negotiation-backend/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   NegotiationUsecase
	templates TemplateUsecase
}

func NewHandler(usecase NegotiationUsecase, templates TemplateUsecase) *Handler {
	return &Handler{
		usecase:   usecase,
		templates: templates,
	}
}

// CreateNegotiation handles POST /negotiations - Start a new negotiation
func (h *Handler) CreateNegotiation(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateNegotiation")

	userID, ok := h.caller(ctx, w, r)
	if !ok {
		return
	}

	var req entity.CreateNegotiationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	negotiation, err := h.usecase.CreateNegotiation(ctx, userID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "negotiation created", zap.String("negotiation_id", negotiation.ID))
	response.Created(w, negotiation)
}

// ListNegotiations handles GET /negotiations - List the caller's negotiations
func (h *Handler) ListNegotiations(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListNegotiations")

	userID, ok := h.caller(ctx, w, r)
	if !ok {
		return
	}

	negotiations, err := h.usecase.ListNegotiations(ctx, userID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, map[string]any{"negotiations": negotiations})
}

// GetNegotiation handles GET /negotiations/{id}
func (h *Handler) GetNegotiation(w http.ResponseWriter, r *http.Request) {
	ctx, negotiationID := h.withNegotiation(r, "GetNegotiation")

	userID, ok := h.caller(ctx, w, r)
	if !ok {
		return
	}

	negotiation, err := h.usecase.GetNegotiation(ctx, userID, negotiationID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, negotiation)
}

// CancelNegotiation handles POST /negotiations/{id}/cancel
func (h *Handler) CancelNegotiation(w http.ResponseWriter, r *http.Request) {
	ctx, negotiationID := h.withNegotiation(r, "CancelNegotiation")

	userID, ok := h.caller(ctx, w, r)
	if !ok {
		return
	}

	negotiation, err := h.usecase.CancelNegotiation(ctx, userID, negotiationID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "negotiation cancelled")
	response.Success(w, negotiation)
}

// JoinNegotiation handles POST /negotiations/{id}/join
func (h *Handler) JoinNegotiation(w http.ResponseWriter, r *http.Request) {
	ctx, negotiationID := h.withNegotiation(r, "JoinNegotiation")

	userID, ok := h.caller(ctx, w, r)
	if !ok {
		return
	}

	negotiation, err := h.usecase.JoinNegotiation(ctx, userID, negotiationID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "participant joined")
	response.Success(w, negotiation)
}

// AgreeTerms handles POST /negotiations/{id}/terms
func (h *Handler) AgreeTerms(w http.ResponseWriter, r *http.Request) {
	ctx, negotiationID := h.withNegotiation(r, "AgreeTerms")

	userID, ok := h.caller(ctx, w, r)
	if !ok {
		return
	}

	var req entity.AgreeTermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	negotiation, err := h.usecase.AgreeTerms(ctx, userID, negotiationID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, negotiation)
}

// SendMessage handles POST /negotiations/{id}/messages - Post a message and
// receive the mediator's reply
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, negotiationID := h.withNegotiation(r, "SendMessage")

	userID, ok := h.caller(ctx, w, r)
	if !ok {
		return
	}

	var req entity.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turn, err := h.usecase.SendMessage(ctx, userID, negotiationID, &req)
	if err != nil {
		// A mediation failure still saved the user's message; tell the
		// client which part succeeded.
		if errors.Is(err, entity.ErrMediationFailed) && turn != nil {
			ctxzap.Error(ctx, "mediation failed", zap.Error(err))
			response.JSON(w, http.StatusBadGateway, turn)
			return
		}
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, turn)
}

// ListMessages handles GET /negotiations/{id}/messages
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx, negotiationID := h.withNegotiation(r, "ListMessages")

	userID, ok := h.caller(ctx, w, r)
	if !ok {
		return
	}

	limit := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 0 {
			response.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	messages, err := h.usecase.ListMessages(ctx, userID, negotiationID, limit)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, map[string]any{"messages": messages})
}

// Finalize handles POST /negotiations/{id}/finalize - Generate the contract
// and complete the negotiation
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	ctx, negotiationID := h.withNegotiation(r, "Finalize")

	userID, ok := h.caller(ctx, w, r)
	if !ok {
		return
	}

	contract, err := h.usecase.Finalize(ctx, userID, negotiationID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "negotiation finalized", zap.String("contract_id", contract.ID))
	response.Created(w, contract)
}

// ListTemplates handles GET /templates
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListTemplates")

	templates, err := h.templates.ListTemplates(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, map[string]any{"templates": templates})
}

// GetTemplate handles GET /templates/{id}
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := logger.AddFields(r.Context(),
		zap.String("template_id", chi.URLParam(r, "id")),
		zap.String("action", "GetTemplate"),
	)

	template, err := h.templates.GetTemplate(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, template)
}

func (h *Handler) withNegotiation(r *http.Request, action string) (context.Context, string) {
	negotiationID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("negotiation_id", negotiationID),
		zap.String("action", action),
	)
	return ctx, negotiationID
}

func (h *Handler) caller(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := apimiddleware.CallerID(r)
	if userID == "" {
		ctxzap.Warn(ctx, "request without caller identity")
		response.Error(w, http.StatusUnauthorized, "missing X-User-ID header")
		return "", false
	}
	return userID, true
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "request failed", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrNegotiationNotFound),
		errors.Is(err, entity.ErrParticipantNotFound),
		errors.Is(err, entity.ErrTemplateNotFound),
		errors.Is(err, entity.ErrProfileNotFound),
		errors.Is(err, entity.ErrContractNotFound):
		response.Error(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrSenderMismatch):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrNotParticipant):
		response.Error(w, http.StatusForbidden, "caller has no standing on this negotiation")
	case errors.Is(err, entity.ErrNegotiationNotActive),
		errors.Is(err, entity.ErrInvalidTransition),
		errors.Is(err, entity.ErrContractExists),
		errors.Is(err, entity.ErrAlreadyJoined),
		errors.Is(err, entity.ErrTooManyParties):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, entity.ErrMediationFailed),
		errors.Is(err, entity.ErrGenerationFailed):
		response.Error(w, http.StatusBadGateway, "model gateway failed, safe to retry")
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
