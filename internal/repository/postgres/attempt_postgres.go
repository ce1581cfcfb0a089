package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"docverify/internal/model"
	"docverify/internal/repository"
)

// AttemptPostgres is a PostgreSQL implementation of repository.AttemptRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type AttemptPostgres struct {
	db *sql.DB
}

// NewAttemptPostgres creates a new AttemptPostgres repository.
func NewAttemptPostgres(db *sql.DB) *AttemptPostgres {
	return &AttemptPostgres{db: db}
}

var _ repository.AttemptRepository = (*AttemptPostgres)(nil)

const attemptColumns = `id, account, file_name, mime_type, size, document_type, phase,
		content_id, transaction_hash, failure_reason, ledger_attempts, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (*model.SubmissionAttempt, error) {
	var (
		a       model.SubmissionAttempt
		account string
		phase   string
	)
	if err := row.Scan(
		&a.ID,
		&account,
		&a.FileName,
		&a.MimeType,
		&a.Size,
		&a.DocumentType,
		&phase,
		&a.ContentID,
		&a.TransactionHash,
		&a.FailureReason,
		&a.LedgerAttempts,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Account = common.HexToAddress(account)
	a.Phase = model.Phase(phase)
	return &a, nil
}

// Save upserts the attempt. Identity columns are written once; progress columns are overwritten.
func (r *AttemptPostgres) Save(ctx context.Context, a *model.SubmissionAttempt) error {
	const q = `
		INSERT INTO submission_attempts (` + attemptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			phase            = EXCLUDED.phase,
			content_id       = EXCLUDED.content_id,
			transaction_hash = EXCLUDED.transaction_hash,
			failure_reason   = EXCLUDED.failure_reason,
			ledger_attempts  = EXCLUDED.ledger_attempts,
			updated_at       = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, q,
		a.ID,
		a.Account.Hex(),
		a.FileName,
		a.MimeType,
		a.Size,
		a.DocumentType,
		string(a.Phase),
		a.ContentID,
		a.TransactionHash,
		a.FailureReason,
		a.LedgerAttempts,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

// FindByID fetches a single attempt by its ID.
func (r *AttemptPostgres) FindByID(ctx context.Context, id string) (*model.SubmissionAttempt, error) {
	const q = `SELECT ` + attemptColumns + ` FROM submission_attempts WHERE id = $1`
	a, err := scanAttempt(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrAttemptNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListByAccount returns attempts using LIMIT/OFFSET pagination and a total count.
func (r *AttemptPostgres) ListByAccount(ctx context.Context, account common.Address, pq repository.PageQuery) (*repository.PageResult[model.SubmissionAttempt], error) {
	const qCount = `SELECT COUNT(*) FROM submission_attempts WHERE account = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, account.Hex()).Scan(&total); err != nil {
		return nil, err
	}

	// LIMIT NULL means no limit in PostgreSQL.
	var limit any
	if pq.Limit > 0 {
		limit = pq.Limit
	}
	const qList = `
		SELECT ` + attemptColumns + `
		FROM submission_attempts
		WHERE account = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, account.Hex(), limit, max(pq.Offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.SubmissionAttempt, 0)
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.SubmissionAttempt]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes an attempt by ID. It does not return an error if the row does not exist.
func (r *AttemptPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM submission_attempts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
