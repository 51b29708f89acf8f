package contract

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	apimiddleware "github.com/pseudolawyer/negotiation-backend/internal/api/middleware"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
	"github.com/pseudolawyer/negotiation-backend/internal/pkg/formatter"
	"github.com/pseudolawyer/negotiation-backend/internal/pkg/logger"
	"github.com/pseudolawyer/negotiation-backend/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	usecase ContractUsecase
}

func NewHandler(usecase ContractUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// ListContracts handles GET /contracts - List the caller's contracts
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListContracts")

	userID, ok := h.caller(ctx, w, r)
	if !ok {
		return
	}

	contracts, err := h.usecase.ListContracts(ctx, userID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, map[string]any{"contracts": contracts})
}

// GetContract handles GET /contracts/{id}
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	ctx, contractID := h.withContract(r, "GetContract")

	userID, ok := h.caller(ctx, w, r)
	if !ok {
		return
	}

	contract, err := h.usecase.GetContract(ctx, userID, contractID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, contract)
}

// SignContract handles POST /contracts/{id}/sign
func (h *Handler) SignContract(w http.ResponseWriter, r *http.Request) {
	ctx, contractID := h.withContract(r, "SignContract")

	userID, ok := h.caller(ctx, w, r)
	if !ok {
		return
	}

	contract, err := h.usecase.SignContract(ctx, userID, contractID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "contract signed", zap.Int("signature_count", len(contract.SignedBy)))
	response.Success(w, contract)
}

// GetDocument handles GET /contracts/{id}/document?format= - Download the
// contract as a rendered document
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	ctx, contractID := h.withContract(r, "GetDocument")

	userID, ok := h.caller(ctx, w, r)
	if !ok {
		return
	}

	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = string(formatter.FormatPDF)
	}

	document, err := h.usecase.RenderDocument(ctx, userID, contractID, formatter.DocumentFormat(formatParam))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "document rendered",
		zap.String("format", formatParam),
		zap.Int("size_bytes", len(document.Data)),
	)
	response.File(w, document.ContentType, document.Filename, document.Data)
}

func (h *Handler) withContract(r *http.Request, action string) (context.Context, string) {
	contractID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("contract_id", contractID),
		zap.String("action", action),
	)
	return ctx, contractID
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
	case errors.Is(err, entity.ErrContractNotFound),
		errors.Is(err, entity.ErrNegotiationNotFound),
		errors.Is(err, entity.ErrProfileNotFound):
		response.Error(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrMissingField):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrNotParticipant):
		response.Error(w, http.StatusForbidden, "caller has no standing on this contract")
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
