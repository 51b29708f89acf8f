package negotiation

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
	"go.uber.org/zap"
)

// composeContext builds the mediator's view of the negotiation state. It is a
// pure function of the negotiation record and its roster.
func composeContext(negotiation *entity.Negotiation, participants []*entity.Participant) *entity.ContractContext {
	contextParticipants := make([]entity.ContextParticipant, 0, len(participants))
	for _, p := range participants {
		contextParticipants = append(contextParticipants, entity.ContextParticipant{
			Name: p.DisplayName(),
			Role: p.Role.DisplayRole(),
		})
	}

	return &entity.ContractContext{
		TemplateName:  negotiation.ContractData.TemplateName,
		AgreedTerms:   negotiation.ContractData.AgreedTerms,
		DisputedTerms: negotiation.ContractData.DisputedTerms,
		Participants:  contextParticipants,
	}
}

// SendMessage appends the user's message and requests the mediator's reply.
// The user message is committed before mediation starts, so a gateway failure
// never loses the human turn: the returned ConversationTurn then carries the
// persisted message alongside the error.
func (uc *NegotiationUsecase) SendMessage(ctx context.Context, userID, negotiationID string, req *entity.SendMessageRequest) (
	*entity.ConversationTurn, error,
) {
	if err := uc.validator.ValidateSendMessage(req); err != nil {
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

	sender, err := uc.requireParticipant(ctx, negotiationID, userID)
	if err != nil {
		return nil, err
	}

	userMessage := &entity.Message{
		NegotiationID: negotiationID,
		SenderID:      &userID,
		SenderType:    entity.SenderTypeUser,
		Content:       req.Content,
	}
	if req.Metadata != nil {
		userMessage.Metadata = *req.Metadata
	}

	userMessage, err = uc.appendMessage(ctx, userMessage)
	if err != nil {
		return nil, err
	}

	turn := &entity.ConversationTurn{UserMessage: userMessage}

	participants, err := uc.participantRepo.GetParticipantsByNegotiation(ctx, negotiationID)
	if err != nil {
		return turn, fmt.Errorf("get participants: %w", err)
	}

	history, err := uc.messageRepo.GetMessagesByNegotiation(ctx, negotiationID, mediationHistoryLimit)
	if err != nil {
		return turn, fmt.Errorf("get messages: %w", err)
	}

	contractCtx := composeContext(negotiation, participants)
	chatMessages := buildMediationMessages(contractCtx, history, sender.DisplayName())

	reply, err := uc.llmConnector.Mediate(ctx, chatMessages)
	if err != nil {
		ctxzap.Error(ctx, "mediation failed, user message retained",
			zap.String("negotiation_id", negotiationID),
			zap.Error(err),
		)
		return turn, fmt.Errorf("%w: %v", entity.ErrMediationFailed, err)
	}

	aiMessage, err := uc.appendMessage(ctx, &entity.Message{
		NegotiationID: negotiationID,
		SenderType:    entity.SenderTypeAI,
		Content:       reply,
	})
	if err != nil {
		return turn, err
	}

	turn.AIMessage = aiMessage

	if err := uc.resolveSenderNames(ctx, negotiationID, []*entity.Message{turn.UserMessage, turn.AIMessage}); err != nil {
		return turn, err
	}

	ctxzap.Info(ctx, "conversation turn completed",
		zap.String("negotiation_id", negotiationID),
		zap.Int("reply_length", len(reply)),
	)

	return turn, nil
}
