package contract

import (
	"context"

	"github.com/pseudolawyer/negotiation-backend/internal/entity"
	"github.com/pseudolawyer/negotiation-backend/internal/pkg/formatter"
)

type ContractUsecase interface {
	GetContract(ctx context.Context, userID, contractID string) (*entity.Contract, error)
	ListContracts(ctx context.Context, userID string) ([]*entity.Contract, error)
	SignContract(ctx context.Context, userID, contractID string) (*entity.Contract, error)
	RenderDocument(ctx context.Context, userID, contractID string, format formatter.DocumentFormat) (*entity.RenderedDocument, error)
}
