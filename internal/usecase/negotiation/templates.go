package negotiation

import (
	"context"
	"fmt"

	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

// ListTemplates returns the contract template catalog.
func (uc *NegotiationUsecase) ListTemplates(ctx context.Context) ([]*entity.Template, error) {
	templates, err := uc.templateRepo.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// GetTemplate returns one contract template with its section structure.
func (uc *NegotiationUsecase) GetTemplate(ctx context.Context, templateID string) (*entity.Template, error) {
	template, err := uc.templateRepo.GetTemplateByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return template, nil
}
