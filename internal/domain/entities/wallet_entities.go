package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalStatus represents the lifecycle state of a withdrawal
type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "pending"    // Debited, not yet submitted to the payout provider
	WithdrawalStatusProcessing WithdrawalStatus = "processing" // Accepted by the provider, awaiting reconciliation
	WithdrawalStatusCompleted  WithdrawalStatus = "completed"  // Terminal: paid out
	WithdrawalStatusFailed     WithdrawalStatus = "failed"     // Terminal: wallet credited back
)

// ValidWithdrawalTransitions defines allowed status transitions
var ValidWithdrawalTransitions = map[WithdrawalStatus][]WithdrawalStatus{
	WithdrawalStatusPending:    {WithdrawalStatusProcessing, WithdrawalStatusFailed},
	WithdrawalStatusProcessing: {WithdrawalStatusCompleted, WithdrawalStatusFailed},
	WithdrawalStatusCompleted:  {},
	WithdrawalStatusFailed:     {},
}

// CanTransitionTo checks if a transition to newStatus is allowed
func (s WithdrawalStatus) CanTransitionTo(newStatus WithdrawalStatus) bool {
	for _, allowed := range ValidWithdrawalTransitions[s] {
		if allowed == newStatus {
			return true
		}
	}
	return false
}

// IsTerminal returns true for completed and failed withdrawals
func (s WithdrawalStatus) IsTerminal() bool {
	return s == WithdrawalStatusCompleted || s == WithdrawalStatusFailed
}

// ValidateTransition returns an error if the transition is not allowed
func (s WithdrawalStatus) ValidateTransition(newStatus WithdrawalStatus) error {
	if !s.CanTransitionTo(newStatus) {
		return fmt.Errorf("invalid withdrawal status transition from %s to %s", s, newStatus)
	}
	return nil
}

// Wallet holds a creator's balance and payout destination
type Wallet struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	CreatorID      uuid.UUID       `json:"creator_id" db:"creator_id"`
	Balance        decimal.Decimal `json:"balance" db:"balance"`
	PayoutEmail    *string         `json:"payout_email,omitempty" db:"payout_email"`
	PayoutVerified bool            `json:"payout_verified" db:"payout_verified"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// HasPayoutDestination returns true when a payout email is linked
func (w *Wallet) HasPayoutDestination() bool {
	return w.PayoutEmail != nil && *w.PayoutEmail != ""
}

// Withdrawal represents a payout of creator earnings. Amount and payout email are
// snapshotted at request time and never mutated. Version backs optimistic locking on
// state transitions.
type Withdrawal struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	CreatorID     uuid.UUID        `json:"creator_id" db:"creator_id"`
	Amount        decimal.Decimal  `json:"amount" db:"amount"`
	Status        WithdrawalStatus `json:"status" db:"status"`
	PayoutEmail   string           `json:"payout_email" db:"payout_email"`
	BatchID       *string          `json:"batch_id,omitempty" db:"batch_id"`
	ItemID        *string          `json:"item_id,omitempty" db:"item_id"`
	FailureReason *string          `json:"failure_reason,omitempty" db:"failure_reason"`
	Version       int              `json:"-" db:"version"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
}

// RequestWithdrawalResponse is returned when a withdrawal is accepted
type RequestWithdrawalResponse struct {
	WithdrawalID uuid.UUID        `json:"withdrawal_id"`
	Status       WithdrawalStatus `json:"status"`
	BatchID      string           `json:"batch_id,omitempty"`
	Message      string           `json:"message"`
}

// ForceCheckResult describes the outcome of an on-demand reconciliation
type ForceCheckResult struct {
	WithdrawalID uuid.UUID        `json:"withdrawal_id"`
	Status       WithdrawalStatus `json:"status"`
	Checked      bool             `json:"checked"`
	Message      string           `json:"message"`
}
