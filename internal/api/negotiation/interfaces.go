package negotiation

import (
	"context"

	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

type NegotiationUsecase interface {
	CreateNegotiation(ctx context.Context, userID string, req *entity.CreateNegotiationRequest) (*entity.NegotiationDTO, error)
	GetNegotiation(ctx context.Context, userID, negotiationID string) (*entity.NegotiationDTO, error)
	ListNegotiations(ctx context.Context, userID string) ([]*entity.NegotiationDTO, error)
	CancelNegotiation(ctx context.Context, userID, negotiationID string) (*entity.NegotiationDTO, error)
	JoinNegotiation(ctx context.Context, userID, negotiationID string) (*entity.NegotiationDTO, error)
	AgreeTerms(ctx context.Context, userID, negotiationID string, req *entity.AgreeTermRequest) (*entity.NegotiationDTO, error)
	SendMessage(ctx context.Context, userID, negotiationID string, req *entity.SendMessageRequest) (*entity.ConversationTurn, error)
	ListMessages(ctx context.Context, userID, negotiationID string, limit int) ([]*entity.Message, error)
	Finalize(ctx context.Context, userID, negotiationID string) (*entity.Contract, error)
}

type TemplateUsecase interface {
	ListTemplates(ctx context.Context) ([]*entity.Template, error)
	GetTemplate(ctx context.Context, templateID string) (*entity.Template, error)
}
