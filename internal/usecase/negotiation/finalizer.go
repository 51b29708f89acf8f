package negotiation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
	"github.com/pseudolawyer/negotiation-backend/internal/pkg/formatter"
	"go.uber.org/zap"
)

// Finalize snapshots the negotiation's agreed state, generates the contract
// text and atomically creates the Contract while completing the negotiation.
// A second call, concurrent or later, fails without creating a duplicate.
func (uc *NegotiationUsecase) Finalize(ctx context.Context, userID, negotiationID string) (*entity.Contract, error) {
	unlock := uc.locks.lock(negotiationID)
	defer unlock()

	negotiation, err := uc.negotiationRepo.GetNegotiationByID(ctx, negotiationID)
	if err != nil {
		return nil, fmt.Errorf("get negotiation: %w", err)
	}

	if negotiation.Status != entity.NegotiationStatusActive {
		return nil, entity.ErrNegotiationNotActive
	}

	if _, err := uc.requireParticipant(ctx, negotiationID, userID); err != nil {
		return nil, err
	}

	if _, err := uc.contractRepo.GetContractByNegotiation(ctx, negotiationID); err == nil {
		return nil, entity.ErrContractExists
	} else if !errors.Is(err, entity.ErrContractNotFound) {
		return nil, fmt.Errorf("check existing contract: %w", err)
	}

	var template *entity.Template
	if negotiation.TemplateID != nil {
		template, err = uc.templateRepo.GetTemplateByID(ctx, *negotiation.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("get template: %w", err)
		}
	}

	participants, err := uc.participantRepo.GetParticipantsByNegotiation(ctx, negotiationID)
	if err != nil {
		return nil, fmt.Errorf("get participants: %w", err)
	}

	parties := make([]entity.ContractParty, 0, len(participants))
	for _, p := range participants {
		email := p.Email
		if p.Profile != nil && p.Profile.Email != "" {
			email = p.Profile.Email
		}
		parties = append(parties, entity.ContractParty{
			Name:  p.DisplayName(),
			Email: email,
			Role:  p.Role.DisplayRole(),
		})
	}

	history, err := uc.messageRepo.GetMessagesByNegotiation(ctx, negotiationID, 0)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}

	chatMessages, err := buildGenerationMessages(negotiation, parties, template, history, participantNames(participants))
	if err != nil {
		return nil, err
	}

	generatedText, err := uc.llmConnector.GenerateContract(ctx, chatMessages)
	if err != nil {
		ctxzap.Error(ctx, "contract generation failed, negotiation left active",
			zap.String("negotiation_id", negotiationID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", entity.ErrGenerationFailed, err)
	}

	templateName := customContractName
	if template != nil {
		templateName = template.Name
	}

	terms := make(map[string]string, len(negotiation.ContractData.AgreedTerms))
	for key, value := range negotiation.ContractData.AgreedTerms {
		terms[key] = value
	}

	contract := &entity.Contract{
		ID:            uuid.New().String(),
		NegotiationID: negotiationID,
		Title:         negotiation.Title,
		FinalContent: entity.FinalContent{
			TemplateName:  templateName,
			Parties:       parties,
			Terms:         terms,
			Sections:      negotiation.ContractData.Sections,
			GeneratedText: generatedText,
			GeneratedAt:   time.Now().UTC(),
		},
		SignedBy: []entity.SignatureRecord{},
	}

	created, err := uc.contractRepo.CreateContractCompleting(ctx, contract)
	if err != nil {
		return nil, fmt.Errorf("create contract: %w", err)
	}

	uc.notifier.NotifyFinalized(ctx, negotiationID, created)

	ctxzap.Info(ctx, "negotiation finalized",
		zap.String("negotiation_id", negotiationID),
		zap.String("contract_id", created.ID),
		zap.Int("party_count", len(parties)),
		zap.Int("term_count", len(terms)),
	)

	return created, nil
}

// GetContract returns a finalized contract. The caller must have standing on
// the owning negotiation.
func (uc *NegotiationUsecase) GetContract(ctx context.Context, userID, contractID string) (*entity.Contract, error) {
	contract, err := uc.contractRepo.GetContractByID(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("get contract: %w", err)
	}

	if _, err := uc.requireAccess(ctx, contract.NegotiationID, userID); err != nil {
		return nil, err
	}

	return contract, nil
}

// ListContracts returns every contract from negotiations the user
// participates in.
func (uc *NegotiationUsecase) ListContracts(ctx context.Context, userID string) ([]*entity.Contract, error) {
	contracts, err := uc.contractRepo.ListContractsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}

	return contracts, nil
}

// SignContract appends the caller's signature record. Signing twice is a
// no-op returning the unchanged contract.
func (uc *NegotiationUsecase) SignContract(ctx context.Context, userID, contractID string) (*entity.Contract, error) {
	contract, err := uc.contractRepo.GetContractByID(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("get contract: %w", err)
	}

	if _, err := uc.requireParticipant(ctx, contract.NegotiationID, userID); err != nil {
		return nil, err
	}

	profile, err := uc.profileRepo.GetProfileByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	signature := entity.SignatureRecord{
		UserID:   userID,
		UserName: profile.FullName,
		SignedAt: time.Now().UTC(),
	}

	signed, err := uc.contractRepo.AppendSignature(ctx, contractID, signature)
	if err != nil {
		return nil, fmt.Errorf("append signature: %w", err)
	}

	ctxzap.Info(ctx, "contract signed",
		zap.String("contract_id", contractID),
		zap.Int("signature_count", len(signed.SignedBy)),
	)

	return signed, nil
}

// RenderDocument exports a contract to the requested download format.
func (uc *NegotiationUsecase) RenderDocument(ctx context.Context, userID, contractID string, format formatter.DocumentFormat) (
	*entity.RenderedDocument, error,
) {
	contract, err := uc.GetContract(ctx, userID, contractID)
	if err != nil {
		return nil, err
	}

	docFormatter, err := formatter.NewFactory().Create(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidParameter, err)
	}

	data, err := docFormatter.Format(contract)
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}

	return &entity.RenderedDocument{
		Data:        data,
		ContentType: docFormatter.ContentType(),
		Filename:    documentFilename(contract.Title) + docFormatter.FileExtension(),
	}, nil
}

func documentFilename(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "contract"
	}
	return name
}
