package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

// ContractRepository defines the interface for finalized contract persistence
type ContractRepository interface {
	// CreateContractCompleting inserts the contract and flips the owning
	// negotiation to completed as one atomic unit.
	CreateContractCompleting(ctx context.Context, contract *entity.Contract) (*entity.Contract, error)
	GetContractByID(ctx context.Context, id string) (*entity.Contract, error)
	GetContractByNegotiation(ctx context.Context, negotiationID string) (*entity.Contract, error)
	ListContractsByUser(ctx context.Context, userID string) ([]*entity.Contract, error)
	AppendSignature(ctx context.Context, contractID string, signature entity.SignatureRecord) (*entity.Contract, error)
}

var _ ContractRepository = &ContractPostgres{}

// ContractPostgres implements ContractRepository using PostgreSQL
type ContractPostgres struct {
	db *pgxpool.Pool
}

func NewContractPostgres(db *pgxpool.Pool) *ContractPostgres {
	return &ContractPostgres{db: db}
}

const contractColumns = `id, negotiation_id, title, final_content, pdf_path, signed_by, created_at`

const pgUniqueViolation = "23505"

// CreateContractCompleting enforces the at-most-one-contract invariant: the
// negotiation row is locked and re-verified as active before the insert, the
// status flip rides the same transaction, and a unique index on
// contracts.negotiation_id backstops any racing writer on another replica.
func (r *ContractPostgres) CreateContractCompleting(ctx context.Context, contract *entity.Contract) (*entity.Contract, error) {
	id, err := parseUUID(contract.ID, "contract")
	if err != nil {
		return nil, err
	}

	negotiationID, err := parseUUID(contract.NegotiationID, "negotiation")
	if err != nil {
		return nil, err
	}

	finalContent, err := json.Marshal(contract.FinalContent)
	if err != nil {
		return nil, fmt.Errorf("encode final content: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin finalize transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM negotiations WHERE id = $1 FOR UPDATE`,
		negotiationID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrNegotiationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock negotiation: %w", err)
	}

	if entity.NegotiationStatus(status) != entity.NegotiationStatusActive {
		return nil, entity.ErrNegotiationNotActive
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO contracts (id, negotiation_id, title, final_content, signed_by)
		VALUES ($1, $2, $3, $4, '[]'::jsonb)
		RETURNING `+contractColumns,
		id, negotiationID, contract.Title, finalContent,
	)

	created, err := scanContract(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, entity.ErrContractExists
		}
		return nil, fmt.Errorf("create contract: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE negotiations SET status = $2, updated_at = now() WHERE id = $1`,
		negotiationID, string(entity.NegotiationStatusCompleted),
	); err != nil {
		return nil, fmt.Errorf("complete negotiation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit finalize transaction: %w", err)
	}

	return created, nil
}

func (r *ContractPostgres) GetContractByID(ctx context.Context, id string) (*entity.Contract, error) {
	contractID, err := parseUUID(id, "contract")
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1`,
		contractID,
	)

	contract, err := scanContract(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrContractNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contract: %w", err)
	}

	return contract, nil
}

func (r *ContractPostgres) GetContractByNegotiation(ctx context.Context, negotiationID string) (*entity.Contract, error) {
	nid, err := parseUUID(negotiationID, "negotiation")
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE negotiation_id = $1`,
		nid,
	)

	contract, err := scanContract(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrContractNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contract by negotiation: %w", err)
	}

	return contract, nil
}

func (r *ContractPostgres) ListContractsByUser(ctx context.Context, userID string) ([]*entity.Contract, error) {
	uid, err := parseUUID(userID, "user")
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT c.id, c.negotiation_id, c.title, c.final_content, c.pdf_path, c.signed_by, c.created_at
		FROM contracts c
		JOIN negotiations n ON n.id = c.negotiation_id
		LEFT JOIN participants p ON p.negotiation_id = n.id
		WHERE n.created_by = $1 OR p.user_id = $1
		ORDER BY c.created_at DESC`,
		uid,
	)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	contracts := make([]*entity.Contract, 0)
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, contract)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}

	return contracts, nil
}

// AppendSignature adds a signature record unless the user already signed.
// The row is locked so concurrent signers cannot clobber each other's append.
func (r *ContractPostgres) AppendSignature(ctx context.Context, contractID string, signature entity.SignatureRecord) (*entity.Contract, error) {
	id, err := parseUUID(contractID, "contract")
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin signature transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1 FOR UPDATE`,
		id,
	)

	contract, err := scanContract(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrContractNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock contract: %w", err)
	}

	if contract.Signed(signature.UserID) {
		// Idempotent: signing twice keeps the original record.
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit signature transaction: %w", err)
		}
		return contract, nil
	}

	contract.SignedBy = append(contract.SignedBy, signature)
	signatures, err := json.Marshal(contract.SignedBy)
	if err != nil {
		return nil, fmt.Errorf("encode signatures: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE contracts SET signed_by = $2 WHERE id = $1`,
		id, signatures,
	); err != nil {
		return nil, fmt.Errorf("append signature: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit signature transaction: %w", err)
	}

	return contract, nil
}
