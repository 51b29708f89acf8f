package negotiation

import (
	"context"

	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

type LLMConnector interface {
	Mediate(ctx context.Context, messages []entity.ChatMessage) (string, error)
	GenerateContract(ctx context.Context, messages []entity.ChatMessage) (string, error)
}

// MessageNotifier pushes conversation events to connected clients. Delivery
// is best-effort and must never fail the calling operation.
type MessageNotifier interface {
	NotifyMessage(ctx context.Context, negotiationID string, message *entity.Message)
	NotifyFinalized(ctx context.Context, negotiationID string, contract *entity.Contract)
}
