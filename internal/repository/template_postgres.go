package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

// TemplateRepository reads the contract template catalog.
type TemplateRepository interface {
	GetTemplateByID(ctx context.Context, id string) (*entity.Template, error)
	ListTemplates(ctx context.Context) ([]*entity.Template, error)
}

var _ TemplateRepository = &TemplatePostgres{}

// TemplatePostgres implements TemplateRepository using PostgreSQL
type TemplatePostgres struct {
	db *pgxpool.Pool
}

func NewTemplatePostgres(db *pgxpool.Pool) *TemplatePostgres {
	return &TemplatePostgres{db: db}
}

const templateColumns = `id, name, description, category, content, created_at`

func (r *TemplatePostgres) GetTemplateByID(ctx context.Context, id string) (*entity.Template, error) {
	templateID, err := parseUUID(id, "template")
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = $1`,
		templateID,
	)

	template, err := scanTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	return template, nil
}

func (r *TemplatePostgres) ListTemplates(ctx context.Context) ([]*entity.Template, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+templateColumns+` FROM templates ORDER BY category, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := make([]*entity.Template, 0)
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	return templates, nil
}
