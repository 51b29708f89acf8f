package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

// ParticipantRepository defines the interface for participant persistence
type ParticipantRepository interface {
	CreateParticipant(ctx context.Context, participant *entity.Participant) (*entity.Participant, error)
	GetParticipantsByNegotiation(ctx context.Context, negotiationID string) ([]*entity.Participant, error)
	GetParticipantByUser(ctx context.Context, negotiationID, userID string) (*entity.Participant, error)
	AdvanceParticipantStatus(ctx context.Context, id string, status entity.ParticipantStatus) (*entity.Participant, error)
	AttachUserByEmail(ctx context.Context, negotiationID, email, userID string) (*entity.Participant, error)
}

var _ ParticipantRepository = &ParticipantPostgres{}

// ParticipantPostgres implements ParticipantRepository using PostgreSQL
type ParticipantPostgres struct {
	db *pgxpool.Pool
}

func NewParticipantPostgres(db *pgxpool.Pool) *ParticipantPostgres {
	return &ParticipantPostgres{db: db}
}

const participantColumns = `id, negotiation_id, user_id, email, role, status, joined_at, agreed_at`

func (r *ParticipantPostgres) CreateParticipant(ctx context.Context, participant *entity.Participant) (*entity.Participant, error) {
	id, err := parseUUID(participant.ID, "participant")
	if err != nil {
		return nil, err
	}

	negotiationID, err := parseUUID(participant.NegotiationID, "negotiation")
	if err != nil {
		return nil, err
	}

	var userID pgtype.UUID
	if participant.UserID != nil && *participant.UserID != "" {
		userID, err = parseUUID(*participant.UserID, "user")
		if err != nil {
			return nil, err
		}
	}

	var joinedAt pgtype.Timestamptz
	if participant.JoinedAt != nil {
		joinedAt = pgtype.Timestamptz{Time: *participant.JoinedAt, Valid: true}
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO participants (id, negotiation_id, user_id, email, role, status, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+participantColumns,
		id, negotiationID, userID, participant.Email, string(participant.Role), string(participant.Status), joinedAt,
	)

	created, err := scanParticipant(row)
	if err != nil {
		return nil, fmt.Errorf("create participant: %w", err)
	}

	return created, nil
}

// GetParticipantsByNegotiation returns the roster with profiles resolved for
// participants that are bound to an account.
func (r *ParticipantPostgres) GetParticipantsByNegotiation(ctx context.Context, negotiationID string) ([]*entity.Participant, error) {
	nid, err := parseUUID(negotiationID, "negotiation")
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.negotiation_id, p.user_id, p.email, p.role, p.status, p.joined_at, p.agreed_at,
		       pr.id, pr.full_name, pr.email, pr.created_at, pr.updated_at
		FROM participants p
		LEFT JOIN profiles pr ON pr.id = p.user_id
		WHERE p.negotiation_id = $1
		ORDER BY p.joined_at NULLS LAST, p.id`,
		nid,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*entity.Participant, 0)
	for rows.Next() {
		var (
			id, negID, userID        pgtype.UUID
			role, status             string
			joinedAt, agreedAt       pgtype.Timestamptz
			profileID                pgtype.UUID
			profileName, profEmail   pgtype.Text
			profCreated, profUpdated pgtype.Timestamptz
			participant              entity.Participant
		)

		err := rows.Scan(
			&id, &negID, &userID, &participant.Email, &role, &status, &joinedAt, &agreedAt,
			&profileID, &profileName, &profEmail, &profCreated, &profUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}

		participant.ID = uuidString(id)
		participant.NegotiationID = uuidString(negID)
		participant.UserID = optionalUUIDString(userID)
		participant.Role = entity.ParticipantRole(role)
		participant.Status = entity.ParticipantStatus(status)
		if joinedAt.Valid {
			t := joinedAt.Time
			participant.JoinedAt = &t
		}
		if agreedAt.Valid {
			t := agreedAt.Time
			participant.AgreedAt = &t
		}
		if profileID.Valid {
			participant.Profile = &entity.Profile{
				ID:        uuidString(profileID),
				FullName:  profileName.String,
				Email:     profEmail.String,
				CreatedAt: profCreated.Time,
				UpdatedAt: profUpdated.Time,
			}
		}

		participants = append(participants, &participant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	return participants, nil
}

func (r *ParticipantPostgres) GetParticipantByUser(ctx context.Context, negotiationID, userID string) (*entity.Participant, error) {
	nid, err := parseUUID(negotiationID, "negotiation")
	if err != nil {
		return nil, err
	}

	uid, err := parseUUID(userID, "user")
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE negotiation_id = $1 AND user_id = $2`,
		nid, uid,
	)

	participant, err := scanParticipant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}

	return participant, nil
}

// AdvanceParticipantStatus stamps joined_at/agreed_at alongside the status change.
func (r *ParticipantPostgres) AdvanceParticipantStatus(ctx context.Context, id string, status entity.ParticipantStatus) (*entity.Participant, error) {
	participantID, err := parseUUID(id, "participant")
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		UPDATE participants
		SET status = $2,
		    joined_at = CASE WHEN $2 = 'joined' AND joined_at IS NULL THEN now() ELSE joined_at END,
		    agreed_at = CASE WHEN $2 = 'agreed' THEN now() ELSE agreed_at END
		WHERE id = $1
		RETURNING `+participantColumns,
		participantID, string(status),
	)

	participant, err := scanParticipant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("advance participant status: %w", err)
	}

	return participant, nil
}

// AttachUserByEmail claims a pending invitation: the participant row that
// holds only an email gets bound to the account and marked joined.
func (r *ParticipantPostgres) AttachUserByEmail(ctx context.Context, negotiationID, email, userID string) (*entity.Participant, error) {
	nid, err := parseUUID(negotiationID, "negotiation")
	if err != nil {
		return nil, err
	}

	uid, err := parseUUID(userID, "user")
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		UPDATE participants
		SET user_id = $3, status = 'joined', joined_at = now()
		WHERE negotiation_id = $1 AND lower(email) = lower($2) AND user_id IS NULL
		RETURNING `+participantColumns,
		nid, email, uid,
	)

	participant, err := scanParticipant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("attach user to participant: %w", err)
	}

	return participant, nil
}
