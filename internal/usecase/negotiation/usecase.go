package negotiation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
	"github.com/pseudolawyer/negotiation-backend/internal/pkg/validator"
	"github.com/pseudolawyer/negotiation-backend/internal/repository"
	"go.uber.org/zap"
)

// customContractName labels negotiations started without a template.
const customContractName = "Custom Contract"

// maxParties is the roster size of a negotiation: the initiator and one
// counterparty.
const maxParties = 2

// NegotiationUsecase implements negotiation business logic
type NegotiationUsecase struct {
	negotiationRepo repository.NegotiationRepository
	participantRepo repository.ParticipantRepository
	messageRepo     repository.MessageRepository
	contractRepo    repository.ContractRepository
	profileRepo     repository.ProfileRepository
	templateRepo    repository.TemplateRepository
	validator       *validator.Validator
	llmConnector    LLMConnector
	notifier        MessageNotifier
	locks           negotiationLocks
	logger          *zap.Logger
}

// NewUsecase creates a new negotiation use case
func NewUsecase(
	negotiationRepo repository.NegotiationRepository,
	participantRepo repository.ParticipantRepository,
	messageRepo repository.MessageRepository,
	contractRepo repository.ContractRepository,
	profileRepo repository.ProfileRepository,
	templateRepo repository.TemplateRepository,
	validator *validator.Validator,
	llmConnector LLMConnector,
	notifier MessageNotifier,
	logger *zap.Logger,
) *NegotiationUsecase {
	return &NegotiationUsecase{
		negotiationRepo: negotiationRepo,
		participantRepo: participantRepo,
		messageRepo:     messageRepo,
		contractRepo:    contractRepo,
		profileRepo:     profileRepo,
		templateRepo:    templateRepo,
		validator:       validator,
		llmConnector:    llmConnector,
		notifier:        notifier,
		logger:          logger,
	}
}

// CreateNegotiation starts a new negotiation for the given user, attaches the
// initiator (and optionally the invited counterparty) and posts the mediator's
// welcome message.
func (uc *NegotiationUsecase) CreateNegotiation(ctx context.Context, userID string, req *entity.CreateNegotiationRequest) (
	*entity.NegotiationDTO, error,
) {
	if err := uc.validator.ValidateCreateNegotiation(req); err != nil {
		return nil, err
	}

	creator, err := uc.profileRepo.GetProfileByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get creator profile: %w", err)
	}

	var template *entity.Template
	templateName := customContractName
	if req.TemplateID != nil && *req.TemplateID != "" {
		template, err = uc.templateRepo.GetTemplateByID(ctx, *req.TemplateID)
		if err != nil {
			// A template reference in the request body is caller input, so a
			// bad one is rejected as invalid rather than reported as missing.
			return nil, fmt.Errorf("%w: template_id: %v", entity.ErrInvalidParameter, err)
		}
		templateName = template.Name
	}

	title := defaultTitle(templateName)
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title = strings.TrimSpace(*req.Title)
	}

	if req.CounterpartyEmail != nil && strings.EqualFold(*req.CounterpartyEmail, creator.Email) {
		return nil, fmt.Errorf("%w: counterparty_email matches the creator", entity.ErrInvalidParameter)
	}

	negotiation := &entity.Negotiation{
		ID:           uuid.New().String(),
		TemplateID:   req.TemplateID,
		Title:        title,
		Status:       entity.NegotiationStatusActive,
		ContractData: entity.NewContractData(templateName),
		CreatedBy:    userID,
	}

	created, err := uc.negotiationRepo.CreateNegotiation(ctx, negotiation)
	if err != nil {
		return nil, fmt.Errorf("create negotiation: %w", err)
	}

	now := time.Now().UTC()
	initiator := &entity.Participant{
		ID:            uuid.New().String(),
		NegotiationID: created.ID,
		UserID:        &userID,
		Email:         creator.Email,
		Role:          entity.ParticipantRoleInitiator,
		Status:        entity.ParticipantStatusJoined,
		JoinedAt:      &now,
	}
	if _, err := uc.participantRepo.CreateParticipant(ctx, initiator); err != nil {
		return nil, fmt.Errorf("create initiator participant: %w", err)
	}

	if req.CounterpartyEmail != nil && *req.CounterpartyEmail != "" {
		counterparty := &entity.Participant{
			ID:            uuid.New().String(),
			NegotiationID: created.ID,
			Email:         strings.ToLower(*req.CounterpartyEmail),
			Role:          entity.ParticipantRoleParty,
			Status:        entity.ParticipantStatusPending,
		}
		// Invites addressed to a known account attach immediately; unknown
		// emails stay pending until claimed on join.
		if profile, err := uc.profileRepo.GetProfileByEmail(ctx, counterparty.Email); err == nil {
			counterparty.UserID = &profile.ID
			counterparty.Status = entity.ParticipantStatusJoined
			counterparty.JoinedAt = &now
		}
		if _, err := uc.participantRepo.CreateParticipant(ctx, counterparty); err != nil {
			return nil, fmt.Errorf("create counterparty participant: %w", err)
		}
	}

	welcome := &entity.Message{
		ID:            uuid.New().String(),
		NegotiationID: created.ID,
		SenderType:    entity.SenderTypeAI,
		Content:       fmt.Sprintf(welcomeMessageTemplate, templateName),
	}
	welcomeMsg, err := uc.messageRepo.CreateMessage(ctx, welcome)
	if err != nil {
		return nil, fmt.Errorf("create welcome message: %w", err)
	}
	uc.notifier.NotifyMessage(ctx, created.ID, welcomeMsg)

	ctxzap.Info(ctx, "negotiation created",
		zap.String("negotiation_id", created.ID),
		zap.String("template_name", templateName),
	)

	return uc.buildDTO(ctx, created)
}

// GetNegotiation returns a negotiation with its roster. The caller must be a
// participant, either attached by user ID or invited under their profile
// email.
func (uc *NegotiationUsecase) GetNegotiation(ctx context.Context, userID, negotiationID string) (*entity.NegotiationDTO, error) {
	negotiation, err := uc.negotiationRepo.GetNegotiationByID(ctx, negotiationID)
	if err != nil {
		return nil, fmt.Errorf("get negotiation: %w", err)
	}

	if _, err := uc.requireAccess(ctx, negotiationID, userID); err != nil {
		return nil, err
	}

	return uc.buildDTO(ctx, negotiation)
}

// ListNegotiations returns every negotiation the user participates in, most
// recently active first.
func (uc *NegotiationUsecase) ListNegotiations(ctx context.Context, userID string) ([]*entity.NegotiationDTO, error) {
	negotiations, err := uc.negotiationRepo.ListNegotiationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list negotiations: %w", err)
	}

	dtos := make([]*entity.NegotiationDTO, 0, len(negotiations))
	for _, negotiation := range negotiations {
		dto, err := uc.buildDTO(ctx, negotiation)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, dto)
	}

	return dtos, nil
}

// CancelNegotiation moves an active negotiation to cancelled. Either
// participant may cancel; terminal negotiations reject the transition.
func (uc *NegotiationUsecase) CancelNegotiation(ctx context.Context, userID, negotiationID string) (*entity.NegotiationDTO, error) {
	if _, err := uc.requireParticipant(ctx, negotiationID, userID); err != nil {
		return nil, err
	}

	negotiation, err := uc.negotiationRepo.TransitionStatus(ctx, negotiationID,
		entity.NegotiationStatusActive, entity.NegotiationStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel negotiation: %w", err)
	}

	ctxzap.Info(ctx, "negotiation cancelled", zap.String("negotiation_id", negotiationID))

	return uc.buildDTO(ctx, negotiation)
}

// JoinNegotiation attaches the calling user as the second party. A pending
// invite matching the user's email is claimed; otherwise the user takes the
// open party slot if one remains.
func (uc *NegotiationUsecase) JoinNegotiation(ctx context.Context, userID, negotiationID string) (*entity.NegotiationDTO, error) {
	negotiation, err := uc.negotiationRepo.GetNegotiationByID(ctx, negotiationID)
	if err != nil {
		return nil, fmt.Errorf("get negotiation: %w", err)
	}

	if negotiation.Status != entity.NegotiationStatusActive {
		return nil, entity.ErrNegotiationNotActive
	}

	if _, err := uc.participantRepo.GetParticipantByUser(ctx, negotiationID, userID); err == nil {
		return nil, entity.ErrAlreadyJoined
	}

	profile, err := uc.profileRepo.GetProfileByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if _, err := uc.participantRepo.AttachUserByEmail(ctx, negotiationID, profile.Email, userID); err == nil {
		ctxzap.Info(ctx, "invite claimed",
			zap.String("negotiation_id", negotiationID),
		)
		return uc.buildDTO(ctx, negotiation)
	}

	participants, err := uc.participantRepo.GetParticipantsByNegotiation(ctx, negotiationID)
	if err != nil {
		return nil, fmt.Errorf("get participants: %w", err)
	}
	if len(participants) >= maxParties {
		return nil, entity.ErrTooManyParties
	}

	now := time.Now().UTC()
	party := &entity.Participant{
		ID:            uuid.New().String(),
		NegotiationID: negotiationID,
		UserID:        &userID,
		Email:         profile.Email,
		Role:          entity.ParticipantRoleParty,
		Status:        entity.ParticipantStatusJoined,
		JoinedAt:      &now,
	}
	if _, err := uc.participantRepo.CreateParticipant(ctx, party); err != nil {
		return nil, fmt.Errorf("create participant: %w", err)
	}

	ctxzap.Info(ctx, "participant joined", zap.String("negotiation_id", negotiationID))

	return uc.buildDTO(ctx, negotiation)
}

// AgreeTerms records a settled term on the negotiation's contract data and,
// when the request is marked final, advances the caller to agreed.
func (uc *NegotiationUsecase) AgreeTerms(ctx context.Context, userID, negotiationID string, req *entity.AgreeTermRequest) (
	*entity.NegotiationDTO, error,
) {
	if err := uc.validator.ValidateAgreeTerm(req); err != nil {
		return nil, err
	}

	unlock := uc.locks.lock(negotiationID)
	defer unlock()

	negotiation, err := uc.negotiationRepo.GetNegotiationByID(ctx, negotiationID)
	if err != nil {
		return nil, fmt.Errorf("get negotiation: %w", err)
	}

	if negotiation.Status != entity.NegotiationStatusActive {
		return nil, entity.ErrNegotiationNotActive
	}

	participant, err := uc.requireParticipant(ctx, negotiationID, userID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Key) != "" {
		negotiation.ContractData.AgreedTerms[req.Key] = req.Value
		delete(negotiation.ContractData.DisputedTerms, req.Key)

		negotiation, err = uc.negotiationRepo.UpdateContractData(ctx, negotiationID, negotiation.ContractData)
		if err != nil {
			return nil, fmt.Errorf("update contract data: %w", err)
		}

		ctxzap.Info(ctx, "term agreed",
			zap.String("negotiation_id", negotiationID),
			zap.String("term_key", req.Key),
		)
	}

	if req.Final {
		if participant.Status.CanAdvanceTo(entity.ParticipantStatusAgreed) {
			if _, err := uc.participantRepo.AdvanceParticipantStatus(ctx, participant.ID, entity.ParticipantStatusAgreed); err != nil {
				return nil, fmt.Errorf("advance participant status: %w", err)
			}
			ctxzap.Info(ctx, "participant agreed", zap.String("negotiation_id", negotiationID))
		}
	}

	return uc.buildDTO(ctx, negotiation)
}

// requireParticipant resolves the caller's participant record, failing with
// ErrNotParticipant when the user is not attached to the negotiation.
func (uc *NegotiationUsecase) requireParticipant(ctx context.Context, negotiationID, userID string) (*entity.Participant, error) {
	participant, err := uc.participantRepo.GetParticipantByUser(ctx, negotiationID, userID)
	if err != nil {
		return nil, entity.ErrNotParticipant
	}
	return participant, nil
}

// requireAccess is requireParticipant relaxed for read paths: an invited user
// whose profile email matches a pending invite may view the negotiation
// before joining.
func (uc *NegotiationUsecase) requireAccess(ctx context.Context, negotiationID, userID string) (*entity.Participant, error) {
	participant, err := uc.participantRepo.GetParticipantByUser(ctx, negotiationID, userID)
	if err == nil {
		return participant, nil
	}

	profile, err := uc.profileRepo.GetProfileByID(ctx, userID)
	if err != nil {
		return nil, entity.ErrNotParticipant
	}

	participants, err := uc.participantRepo.GetParticipantsByNegotiation(ctx, negotiationID)
	if err != nil {
		return nil, fmt.Errorf("get participants: %w", err)
	}
	for _, p := range participants {
		if p.UserID == nil && strings.EqualFold(p.Email, profile.Email) {
			return p, nil
		}
	}

	return nil, entity.ErrNotParticipant
}

func (uc *NegotiationUsecase) buildDTO(ctx context.Context, negotiation *entity.Negotiation) (*entity.NegotiationDTO, error) {
	participants, err := uc.participantRepo.GetParticipantsByNegotiation(ctx, negotiation.ID)
	if err != nil {
		return nil, fmt.Errorf("get participants: %w", err)
	}

	return &entity.NegotiationDTO{
		Negotiation:  *negotiation,
		Participants: participants,
		TemplateName: negotiation.ContractData.TemplateName,
	}, nil
}

func defaultTitle(templateName string) string {
	return fmt.Sprintf("%s - %s", templateName, time.Now().Format("1/2/2006"))
}
