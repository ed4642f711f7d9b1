package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/creator-platform/creator_service/internal/domain/entities"
)

// Sentinel errors surfaced by the wallet and withdrawal repositories. Services map
// these onto the domain error taxonomy.
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateWallet     = errors.New("wallet already exists for creator")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrStaleWithdrawal     = errors.New("withdrawal was modified concurrently")
)

// WalletRepository handles wallet persistence
type WalletRepository struct {
	db *sqlx.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Create inserts a new wallet. Returns ErrDuplicateWallet when the creator already has one.
func (r *WalletRepository) Create(ctx context.Context, w *entities.Wallet) error {
	query := `
		INSERT INTO wallets (id, creator_id, balance, payout_email, payout_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		w.ID, w.CreatorID, w.Balance, w.PayoutEmail, w.PayoutVerified, w.CreatedAt, w.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicateWallet
	}
	return err
}

// GetByCreatorID returns the wallet owned by the given creator
func (r *WalletRepository) GetByCreatorID(ctx context.Context, creatorID uuid.UUID) (*entities.Wallet, error) {
	query := `
		SELECT id, creator_id, balance, payout_email, payout_verified, created_at, updated_at
		FROM wallets
		WHERE creator_id = $1`
	w := &entities.Wallet{}
	err := r.db.GetContext(ctx, w, query, creatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// SetPayoutDestination sets the payout email and marks it verified. Idempotent.
func (r *WalletRepository) SetPayoutDestination(ctx context.Context, creatorID uuid.UUID, email string) error {
	query := `
		UPDATE wallets
		SET payout_email = $1, payout_verified = TRUE, updated_at = $2
		WHERE creator_id = $3`
	res, err := r.db.ExecContext(ctx, query, email, time.Now(), creatorID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Credit adds amount to the wallet balance
func (r *WalletRepository) Credit(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE wallets
		SET balance = balance + $1, updated_at = $2
		WHERE creator_id = $3`
	res, err := r.db.ExecContext(ctx, query, amount, time.Now(), creatorID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
