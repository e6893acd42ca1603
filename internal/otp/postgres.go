package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists OTPs and attempts in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed OTP store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a fresh code and dispatches it inside one transaction.
// Nothing commits until dispatch has settled: a delivery failure swaps the
// code for a failed attempt row, and a crash mid-issuance commits nothing,
// so a code the recipient never received can never be verified against.
func (s *PostgresStore) Create(ctx context.Context, code OneTimePassword, dispatch func(context.Context) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin otp issuance: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `INSERT INTO otps (id, user_id, code, purpose, created_at, expires_at, used)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		code.ID, code.UserID, code.Code, string(code.Purpose), code.CreatedAt.UTC(), code.ExpiresAt.UTC(), code.Used); err != nil {
		return fmt.Errorf("create otp: %w", err)
	}

	if dispatchErr := dispatch(ctx); dispatchErr != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM otps WHERE id = $1`, code.ID); err != nil {
			return fmt.Errorf("discard undispatched otp: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO otp_attempts (id, user_id, code_entered, success, attempted_at)
        VALUES ($1, $2, '', FALSE, $3)`, uuid.New(), code.UserID, time.Now().UTC()); err != nil {
			return fmt.Errorf("record dispatch failure: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit dispatch failure: %w", err)
		}
		return fmt.Errorf("%w: %v", ErrDispatchFailed, dispatchErr)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit otp issuance: %w", err)
	}
	return nil
}

// LatestUnused returns the newest unconsumed code for the user and purpose.
func (s *PostgresStore) LatestUnused(ctx context.Context, userID uuid.UUID, purpose Purpose) (OneTimePassword, bool, error) {
	row := s.db.QueryRow(ctx, `SELECT id, user_id, code, purpose, created_at, expires_at, used
        FROM otps WHERE user_id = $1 AND purpose = $2 AND used = FALSE
        ORDER BY created_at DESC LIMIT 1`, userID, string(purpose))

	var code OneTimePassword
	var purposeValue string
	err := row.Scan(&code.ID, &code.UserID, &code.Code, &purposeValue, &code.CreatedAt, &code.ExpiresAt, &code.Used)
	if errors.Is(err, pgx.ErrNoRows) {
		return OneTimePassword{}, false, nil
	}
	if err != nil {
		return OneTimePassword{}, false, fmt.Errorf("find latest otp: %w", err)
	}
	code.Purpose = Purpose(purposeValue)
	code.CreatedAt = code.CreatedAt.UTC()
	code.ExpiresAt = code.ExpiresAt.UTC()
	return code, true, nil
}

// MarkUsed consumes the code; the used guard in the WHERE clause keeps a
// racing second verification from consuming it twice.
func (s *PostgresStore) MarkUsed(ctx context.Context, id uuid.UUID) error {
	cmd, err := s.db.Exec(ctx, `UPDATE otps SET used = TRUE WHERE id = $1 AND used = FALSE`, id)
	if err != nil {
		return fmt.Errorf("mark otp used: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCodeConsumed
	}
	return nil
}

// RecordAttempt appends one audit row.
func (s *PostgresStore) RecordAttempt(ctx context.Context, attempt Attempt) error {
	_, err := s.db.Exec(ctx, `INSERT INTO otp_attempts (id, user_id, code_entered, success, attempted_at)
        VALUES ($1, $2, $3, $4, $5)`,
		attempt.ID, attempt.UserID, attempt.CodeEntered, attempt.Success, attempt.AttemptedAt.UTC())
	if err != nil {
		return fmt.Errorf("record otp attempt: %w", err)
	}
	return nil
}
