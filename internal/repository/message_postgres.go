package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

// MessageRepository defines the interface for conversation log persistence.
// The log is append-only: there is no update or delete of individual rows.
type MessageRepository interface {
	CreateMessage(ctx context.Context, message *entity.Message) (*entity.Message, error)
	GetMessagesByNegotiation(ctx context.Context, negotiationID string, limit int) ([]*entity.Message, error)
}

var _ MessageRepository = &MessagePostgres{}

// MessagePostgres implements MessageRepository using PostgreSQL
type MessagePostgres struct {
	db *pgxpool.Pool
}

func NewMessagePostgres(db *pgxpool.Pool) *MessagePostgres {
	return &MessagePostgres{db: db}
}

const messageColumns = `id, negotiation_id, sender_id, sender_type, content, metadata, created_at`

// CreateMessage appends to the log and touches the owning negotiation's
// updated_at in the same transaction, so "last activity" ordering and the
// append are never observed apart.
func (r *MessagePostgres) CreateMessage(ctx context.Context, message *entity.Message) (*entity.Message, error) {
	id, err := parseUUID(message.ID, "message")
	if err != nil {
		return nil, err
	}

	negotiationID, err := parseUUID(message.NegotiationID, "negotiation")
	if err != nil {
		return nil, err
	}

	var senderID pgtype.UUID
	if message.SenderID != nil && *message.SenderID != "" {
		senderID, err = parseUUID(*message.SenderID, "sender")
		if err != nil {
			return nil, err
		}
	}

	metadata, err := json.Marshal(message.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode message metadata: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin append transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO messages (id, negotiation_id, sender_id, sender_type, content, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+messageColumns,
		id, negotiationID, senderID, string(message.SenderType), message.Content, metadata,
	)

	created, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE negotiations SET updated_at = now() WHERE id = $1`,
		negotiationID,
	); err != nil {
		return nil, fmt.Errorf("touch negotiation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit append transaction: %w", err)
	}

	return created, nil
}

// GetMessagesByNegotiation returns messages in chronological order. A
// positive limit bounds the result to the most recent N rows, still returned
// oldest first so callers can feed them to the model as-is.
func (r *MessagePostgres) GetMessagesByNegotiation(ctx context.Context, negotiationID string, limit int) ([]*entity.Message, error) {
	nid, err := parseUUID(negotiationID, "negotiation")
	if err != nil {
		return nil, err
	}

	var rows pgx.Rows
	if limit > 0 {
		rows, err = r.db.Query(ctx, `
			SELECT `+messageColumns+` FROM (
				SELECT `+messageColumns+`
				FROM messages
				WHERE negotiation_id = $1
				ORDER BY created_at DESC, id DESC
				LIMIT $2
			) recent
			ORDER BY created_at ASC, id ASC`,
			nid, limit,
		)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT `+messageColumns+`
			FROM messages
			WHERE negotiation_id = $1
			ORDER BY created_at ASC, id ASC`,
			nid,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*entity.Message, 0)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}

	return messages, nil
}
