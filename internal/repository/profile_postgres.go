package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

// ProfileRepository is the read-only view over the account directory. The
// identity service owns the rows; this backend only ever answers "does this
// email have an account" and "what is this user's display name".
type ProfileRepository interface {
	GetProfileByID(ctx context.Context, id string) (*entity.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*entity.Profile, error)
}

var _ ProfileRepository = &ProfilePostgres{}

// ProfilePostgres implements ProfileRepository using PostgreSQL
type ProfilePostgres struct {
	db *pgxpool.Pool
}

func NewProfilePostgres(db *pgxpool.Pool) *ProfilePostgres {
	return &ProfilePostgres{db: db}
}

const profileColumns = `id, full_name, email, created_at, updated_at`

func (r *ProfilePostgres) GetProfileByID(ctx context.Context, id string) (*entity.Profile, error) {
	profileID, err := parseUUID(id, "profile")
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`,
		profileID,
	)

	profile, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

func (r *ProfilePostgres) GetProfileByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1)`,
		email,
	)

	profile, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile by email: %w", err)
	}

	return profile, nil
}
