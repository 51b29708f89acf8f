package negotiation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

// mediatorDisplayName labels AI turns in API responses.
const mediatorDisplayName = "Sudo"

// ListMessages returns the negotiation's conversation in chronological order.
// A positive limit returns only the most recent messages, still oldest first.
func (uc *NegotiationUsecase) ListMessages(ctx context.Context, userID, negotiationID string, limit int) ([]*entity.Message, error) {
	if _, err := uc.negotiationRepo.GetNegotiationByID(ctx, negotiationID); err != nil {
		return nil, fmt.Errorf("get negotiation: %w", err)
	}

	if _, err := uc.requireAccess(ctx, negotiationID, userID); err != nil {
		return nil, err
	}

	messages, err := uc.messageRepo.GetMessagesByNegotiation(ctx, negotiationID, limit)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}

	if err := uc.resolveSenderNames(ctx, negotiationID, messages); err != nil {
		return nil, err
	}

	return messages, nil
}

// appendMessage persists one conversation turn. User messages must carry a
// sender, mediator messages must not.
func (uc *NegotiationUsecase) appendMessage(ctx context.Context, message *entity.Message) (*entity.Message, error) {
	if err := message.SenderType.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidParameter, err)
	}
	if (message.SenderType == entity.SenderTypeUser) != (message.SenderID != nil) {
		return nil, entity.ErrSenderMismatch
	}

	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	created, err := uc.messageRepo.CreateMessage(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	uc.notifier.NotifyMessage(ctx, message.NegotiationID, created)

	return created, nil
}

// resolveSenderNames fills Message.SenderName from the negotiation roster.
func (uc *NegotiationUsecase) resolveSenderNames(ctx context.Context, negotiationID string, messages []*entity.Message) error {
	participants, err := uc.participantRepo.GetParticipantsByNegotiation(ctx, negotiationID)
	if err != nil {
		return fmt.Errorf("get participants: %w", err)
	}

	names := participantNames(participants)
	for _, msg := range messages {
		switch {
		case msg.SenderType == entity.SenderTypeAI:
			msg.SenderName = mediatorDisplayName
		case msg.SenderID != nil:
			if name, ok := names[*msg.SenderID]; ok {
				msg.SenderName = name
			} else {
				msg.SenderName = "Participant"
			}
		}
	}

	return nil
}

func participantNames(participants []*entity.Participant) map[string]string {
	names := make(map[string]string, len(participants))
	for _, p := range participants {
		if p.UserID != nil {
			names[*p.UserID] = p.DisplayName()
		}
	}
	return names
}
