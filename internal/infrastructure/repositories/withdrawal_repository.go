package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/creator-platform/creator_service/internal/domain/entities"
)

const withdrawalColumns = `id, creator_id, amount, status, payout_email, batch_id, item_id,
	failure_reason, version, created_at, updated_at, completed_at`

// WithdrawalRepository handles withdrawal persistence. State transitions are guarded by
// a version column so a scheduled reconciliation and a force-check racing on the same
// row cannot both apply a terminal write.
type WithdrawalRepository struct {
	db *sqlx.DB
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *sqlx.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// DebitAndCreate debits the wallet and inserts the withdrawal row in one transaction.
// The conditional debit keeps concurrent withdrawals from driving the balance negative;
// zero affected rows means insufficient balance at commit time.
func (r *WithdrawalRepository) DebitAndCreate(ctx context.Context, w *entities.Withdrawal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	debit := `
		UPDATE wallets
		SET balance = balance - $1, updated_at = $2
		WHERE creator_id = $3 AND balance >= $1`
	res, err := tx.ExecContext(ctx, debit, w.Amount, time.Now(), w.CreatorID)
	if err != nil {
		return fmt.Errorf("debit wallet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsufficientBalance
	}

	insert := `
		INSERT INTO withdrawals (id, creator_id, amount, status, payout_email, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(ctx, insert,
		w.ID, w.CreatorID, w.Amount, w.Status, w.PayoutEmail, w.Version, w.CreatedAt, w.UpdatedAt); err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}

	return tx.Commit()
}

// GetByID returns a withdrawal by id
func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Withdrawal, error) {
	query := fmt.Sprintf(`SELECT %s FROM withdrawals WHERE id = $1`, withdrawalColumns)
	w := &entities.Withdrawal{}
	err := r.db.GetContext(ctx, w, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// GetByCreatorID returns a creator's withdrawals, newest first
func (r *WithdrawalRepository) GetByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]*entities.Withdrawal, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM withdrawals
		WHERE creator_id = $1
		ORDER BY created_at DESC`, withdrawalColumns)

	var withdrawals []*entities.Withdrawal
	if err := r.db.SelectContext(ctx, &withdrawals, query, creatorID); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// GetProcessing returns all withdrawals awaiting reconciliation
func (r *WithdrawalRepository) GetProcessing(ctx context.Context) ([]*entities.Withdrawal, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM withdrawals
		WHERE status = $1
		ORDER BY created_at ASC`, withdrawalColumns)

	var withdrawals []*entities.Withdrawal
	if err := r.db.SelectContext(ctx, &withdrawals, query, entities.WithdrawalStatusProcessing); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// MarkProcessing records the provider batch/item ids and moves pending -> processing
func (r *WithdrawalRepository) MarkProcessing(ctx context.Context, w *entities.Withdrawal, batchID, itemID string) error {
	var item *string
	if itemID != "" {
		item = &itemID
	}
	query := `
		UPDATE withdrawals
		SET status = $1, batch_id = $2, item_id = $3, version = version + 1, updated_at = $4
		WHERE id = $5 AND status = $6 AND version = $7`
	res, err := r.db.ExecContext(ctx, query,
		entities.WithdrawalStatusProcessing, batchID, item, time.Now(),
		w.ID, entities.WithdrawalStatusPending, w.Version)
	if err != nil {
		return err
	}
	return r.requireRow(res)
}

// MarkCompleted moves processing -> completed. Returns ErrStaleWithdrawal when another
// writer already moved the row.
func (r *WithdrawalRepository) MarkCompleted(ctx context.Context, w *entities.Withdrawal) error {
	now := time.Now()
	query := `
		UPDATE withdrawals
		SET status = $1, version = version + 1, updated_at = $2, completed_at = $3
		WHERE id = $4 AND status = $5 AND version = $6`
	res, err := r.db.ExecContext(ctx, query,
		entities.WithdrawalStatusCompleted, now, now,
		w.ID, entities.WithdrawalStatusProcessing, w.Version)
	if err != nil {
		return err
	}
	return r.requireRow(res)
}

// MarkFailedAndRefund moves the withdrawal to failed and credits the amount back to the
// wallet in the same transaction. The conditional update means only the winning writer
// applies the credit; a losing racer gets ErrStaleWithdrawal and no balance change.
func (r *WithdrawalRepository) MarkFailedAndRefund(ctx context.Context, w *entities.Withdrawal, reason string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	fail := `
		UPDATE withdrawals
		SET status = $1, failure_reason = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND status = $5 AND version = $6`
	res, err := tx.ExecContext(ctx, fail,
		entities.WithdrawalStatusFailed, reason, time.Now(),
		w.ID, w.Status, w.Version)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	if err := r.requireRow(res); err != nil {
		return err
	}

	refund := `
		UPDATE wallets
		SET balance = balance + $1, updated_at = $2
		WHERE creator_id = $3`
	if _, err := tx.ExecContext(ctx, refund, w.Amount, time.Now(), w.CreatorID); err != nil {
		return fmt.Errorf("refund wallet: %w", err)
	}

	return tx.Commit()
}

func (r *WithdrawalRepository) requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStaleWithdrawal
	}
	return nil
}
