package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

// NegotiationRepository defines the interface for negotiation persistence
type NegotiationRepository interface {
	CreateNegotiation(ctx context.Context, negotiation *entity.Negotiation) (*entity.Negotiation, error)
	GetNegotiationByID(ctx context.Context, id string) (*entity.Negotiation, error)
	ListNegotiationsByUser(ctx context.Context, userID string) ([]*entity.Negotiation, error)
	TransitionStatus(ctx context.Context, id string, from, to entity.NegotiationStatus) (*entity.Negotiation, error)
	UpdateContractData(ctx context.Context, id string, data entity.ContractData) (*entity.Negotiation, error)
}

var _ NegotiationRepository = &NegotiationPostgres{}

// NegotiationPostgres implements NegotiationRepository using PostgreSQL
type NegotiationPostgres struct {
	db *pgxpool.Pool
}

func NewNegotiationPostgres(db *pgxpool.Pool) *NegotiationPostgres {
	return &NegotiationPostgres{db: db}
}

const negotiationColumns = `id, template_id, title, status, contract_data, created_by, created_at, updated_at`

func (r *NegotiationPostgres) CreateNegotiation(ctx context.Context, negotiation *entity.Negotiation) (*entity.Negotiation, error) {
	id, err := parseUUID(negotiation.ID, "negotiation")
	if err != nil {
		return nil, err
	}

	createdBy, err := parseUUID(negotiation.CreatedBy, "creator")
	if err != nil {
		return nil, err
	}

	var templateID pgtype.UUID
	if negotiation.TemplateID != nil && *negotiation.TemplateID != "" {
		templateID, err = parseUUID(*negotiation.TemplateID, "template")
		if err != nil {
			return nil, err
		}
	}

	contractData, err := json.Marshal(negotiation.ContractData)
	if err != nil {
		return nil, fmt.Errorf("encode contract data: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO negotiations (id, template_id, title, status, contract_data, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+negotiationColumns,
		id, templateID, negotiation.Title, string(negotiation.Status), contractData, createdBy,
	)

	created, err := scanNegotiation(row)
	if err != nil {
		return nil, fmt.Errorf("create negotiation: %w", err)
	}

	return created, nil
}

func (r *NegotiationPostgres) GetNegotiationByID(ctx context.Context, id string) (*entity.Negotiation, error) {
	negotiationID, err := parseUUID(id, "negotiation")
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx,
		`SELECT `+negotiationColumns+` FROM negotiations WHERE id = $1`,
		negotiationID,
	)

	negotiation, err := scanNegotiation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrNegotiationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get negotiation: %w", err)
	}

	return negotiation, nil
}

// ListNegotiationsByUser returns negotiations where the user is the creator
// or appears on the participant roster, most recently updated first.
func (r *NegotiationPostgres) ListNegotiationsByUser(ctx context.Context, userID string) ([]*entity.Negotiation, error) {
	uid, err := parseUUID(userID, "user")
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT n.id, n.template_id, n.title, n.status, n.contract_data, n.created_by, n.created_at, n.updated_at
		FROM negotiations n
		LEFT JOIN participants p ON p.negotiation_id = n.id
		WHERE n.created_by = $1 OR p.user_id = $1
		ORDER BY n.updated_at DESC`,
		uid,
	)
	if err != nil {
		return nil, fmt.Errorf("list negotiations: %w", err)
	}
	defer rows.Close()

	negotiations := make([]*entity.Negotiation, 0)
	for rows.Next() {
		negotiation, err := scanNegotiation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan negotiation: %w", err)
		}
		negotiations = append(negotiations, negotiation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list negotiations: %w", err)
	}

	return negotiations, nil
}

// TransitionStatus moves a negotiation from one status to another in a single
// guarded update. If the negotiation is no longer in the expected status the
// transition is rejected with ErrInvalidTransition.
func (r *NegotiationPostgres) TransitionStatus(ctx context.Context, id string, from, to entity.NegotiationStatus) (*entity.Negotiation, error) {
	negotiationID, err := parseUUID(id, "negotiation")
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		UPDATE negotiations
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+negotiationColumns,
		negotiationID, string(from), string(to),
	)

	negotiation, err := scanNegotiation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the row is missing or it is not in the expected status.
		if _, getErr := r.GetNegotiationByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, entity.ErrInvalidTransition
	}
	if err != nil {
		return nil, fmt.Errorf("transition negotiation status: %w", err)
	}

	return negotiation, nil
}

func (r *NegotiationPostgres) UpdateContractData(ctx context.Context, id string, data entity.ContractData) (*entity.Negotiation, error) {
	negotiationID, err := parseUUID(id, "negotiation")
	if err != nil {
		return nil, err
	}

	contractData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode contract data: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE negotiations
		SET contract_data = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+negotiationColumns,
		negotiationID, contractData,
	)

	negotiation, err := scanNegotiation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrNegotiationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update contract data: %w", err)
	}

	return negotiation, nil
}

func parseUUID(value, label string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("invalid %s ID: %w", label, err)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}
