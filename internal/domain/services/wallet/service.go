// Package wallet implements the withdrawal ledger: wallet balance mutations, the
// withdrawal lifecycle and reconciliation against the payout provider.
package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/creator-platform/creator_service/internal/domain/entities"
	"github.com/creator-platform/creator_service/internal/infrastructure/adapters/paypal"
	"github.com/creator-platform/creator_service/internal/infrastructure/repositories"
	"github.com/creator-platform/creator_service/pkg/circuitbreaker"
	domainerrors "github.com/creator-platform/creator_service/pkg/errors"
	"github.com/creator-platform/creator_service/pkg/logger"
	"github.com/creator-platform/creator_service/pkg/metrics"
)

// WalletRepository interface for wallet persistence
type WalletRepository interface {
	Create(ctx context.Context, w *entities.Wallet) error
	GetByCreatorID(ctx context.Context, creatorID uuid.UUID) (*entities.Wallet, error)
	SetPayoutDestination(ctx context.Context, creatorID uuid.UUID, email string) error
	Credit(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) error
}

// WithdrawalRepository interface for withdrawal persistence
type WithdrawalRepository interface {
	DebitAndCreate(ctx context.Context, w *entities.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Withdrawal, error)
	GetByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]*entities.Withdrawal, error)
	GetProcessing(ctx context.Context) ([]*entities.Withdrawal, error)
	MarkProcessing(ctx context.Context, w *entities.Withdrawal, batchID, itemID string) error
	MarkCompleted(ctx context.Context, w *entities.Withdrawal) error
	MarkFailedAndRefund(ctx context.Context, w *entities.Withdrawal, reason string) error
}

// PayoutGateway interface for the payout provider adapter
type PayoutGateway interface {
	SubmitPayout(ctx context.Context, receiver string, amount decimal.Decimal, currency string) (*paypal.PayoutSubmission, error)
	GetBatchStatus(ctx context.Context, batchID string) (*paypal.BatchStatus, error)
	GetItemStatus(ctx context.Context, itemID string) (*paypal.ItemStatus, error)
}

// Service owns wallet balances and the withdrawal lifecycle
type Service struct {
	walletRepo     WalletRepository
	withdrawalRepo WithdrawalRepository
	gateway        PayoutGateway
	gatewayBreaker *circuitbreaker.CircuitBreaker
	minWithdrawal  decimal.Decimal
	log            *logger.Logger
}

// NewService creates a wallet service. minWithdrawal is the smallest amount accepted
// for a payout request.
func NewService(
	walletRepo WalletRepository,
	withdrawalRepo WithdrawalRepository,
	gateway PayoutGateway,
	minWithdrawal decimal.Decimal,
	log *logger.Logger,
) *Service {
	return &Service{
		walletRepo:     walletRepo,
		withdrawalRepo: withdrawalRepo,
		gateway:        gateway,
		gatewayBreaker: circuitbreaker.New(circuitbreaker.DefaultConfig("payout-gateway")),
		minWithdrawal:  minWithdrawal,
		log:            log,
	}
}

// CreateWallet creates the single wallet for a creator
func (s *Service) CreateWallet(ctx context.Context, creatorID uuid.UUID) (*entities.Wallet, error) {
	now := time.Now()
	wallet := &entities.Wallet{
		ID:        uuid.New(),
		CreatorID: creatorID,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		if err == repositories.ErrDuplicateWallet {
			return nil, domainerrors.NewValidationError("wallet already exists for this creator")
		}
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	s.log.Info("Wallet created", "creator_id", creatorID.String(), "wallet_id", wallet.ID.String())
	return wallet, nil
}

// GetWallet returns a creator's wallet
func (s *Service) GetWallet(ctx context.Context, creatorID uuid.UUID) (*entities.Wallet, error) {
	wallet, err := s.walletRepo.GetByCreatorID(ctx, creatorID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, domainerrors.NewNotFoundError("wallet", creatorID.String())
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return wallet, nil
}

// Deposit credits creator earnings into the wallet
func (s *Service) Deposit(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*entities.Wallet, error) {
	if !amount.IsPositive() {
		return nil, domainerrors.NewValidationError("deposit amount must be positive")
	}

	if err := s.walletRepo.Credit(ctx, creatorID, amount); err != nil {
		if err == repositories.ErrNotFound {
			return nil, domainerrors.NewNotFoundError("wallet", creatorID.String())
		}
		return nil, fmt.Errorf("credit wallet: %w", err)
	}

	s.log.Info("Wallet credited", "creator_id", creatorID.String(), "amount", amount.String())
	return s.GetWallet(ctx, creatorID)
}

// LinkPayoutDestination sets the payout email for a creator's wallet. Idempotent.
func (s *Service) LinkPayoutDestination(ctx context.Context, creatorID uuid.UUID, email string) error {
	if email == "" {
		return domainerrors.NewValidationError("payout email is required")
	}

	if err := s.walletRepo.SetPayoutDestination(ctx, creatorID, email); err != nil {
		if err == repositories.ErrNotFound {
			return domainerrors.NewNotFoundError("wallet", creatorID.String())
		}
		return fmt.Errorf("set payout destination: %w", err)
	}

	s.log.Info("Payout destination linked", "creator_id", creatorID.String())
	return nil
}

// GetHistory returns a creator's withdrawals, newest first
func (s *Service) GetHistory(ctx context.Context, creatorID uuid.UUID) ([]*entities.Withdrawal, error) {
	return s.withdrawalRepo.GetByCreatorID(ctx, creatorID)
}

// RequestWithdrawal validates the request, debits the wallet and submits a payout.
// A failed submission credits the wallet back before the error is surfaced.
func (s *Service) RequestWithdrawal(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*entities.RequestWithdrawalResponse, error) {
	if !amount.IsPositive() {
		return nil, domainerrors.NewValidationError("withdrawal amount must be positive")
	}
	if amount.LessThan(s.minWithdrawal) {
		return nil, domainerrors.NewValidationError("minimum withdrawal is %s", s.minWithdrawal.String())
	}

	wallet, err := s.GetWallet(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if !wallet.HasPayoutDestination() {
		return nil, domainerrors.NewValidationError("no payout destination linked to wallet")
	}
	if amount.GreaterThan(wallet.Balance) {
		return nil, domainerrors.NewValidationError("insufficient balance: have %s, requested %s",
			wallet.Balance.String(), amount.String())
	}

	now := time.Now()
	withdrawal := &entities.Withdrawal{
		ID:          uuid.New(),
		CreatorID:   creatorID,
		Amount:      amount,
		Status:      entities.WithdrawalStatusPending,
		PayoutEmail: *wallet.PayoutEmail,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.withdrawalRepo.DebitAndCreate(ctx, withdrawal); err != nil {
		if err == repositories.ErrInsufficientBalance {
			metrics.WithdrawalsTotal.WithLabelValues("rejected").Inc()
			return nil, domainerrors.NewValidationError("insufficient balance")
		}
		return nil, fmt.Errorf("debit and create withdrawal: %w", err)
	}

	s.log.Info("Withdrawal created",
		"withdrawal_id", withdrawal.ID.String(),
		"creator_id", creatorID.String(),
		"amount", amount.String())

	var submission *paypal.PayoutSubmission
	var submitErr error
	err = s.gatewayBreaker.Execute(ctx, func() error {
		submission, submitErr = s.gateway.SubmitPayout(ctx, withdrawal.PayoutEmail, amount, "")
		return submitErr
	})
	if err != nil {
		metrics.WithdrawalsTotal.WithLabelValues("failed").Inc()
		metrics.GatewayErrors.WithLabelValues("submit_payout").Inc()
		s.log.Error("Payout submission failed",
			"withdrawal_id", withdrawal.ID.String(), "error", err.Error())

		if refundErr := s.withdrawalRepo.MarkFailedAndRefund(ctx, withdrawal, err.Error()); refundErr != nil {
			s.log.Error("Compensating refund failed",
				"withdrawal_id", withdrawal.ID.String(), "error", refundErr.Error())
		}
		return nil, err
	}

	if err := s.withdrawalRepo.MarkProcessing(ctx, withdrawal, submission.BatchID, submission.ItemID); err != nil {
		// The payout is already submitted; reconciliation resolves the final state.
		s.log.Error("Failed to record payout submission",
			"withdrawal_id", withdrawal.ID.String(),
			"batch_id", submission.BatchID,
			"error", err.Error())
		return nil, fmt.Errorf("record payout submission: %w", err)
	}

	metrics.WithdrawalsTotal.WithLabelValues("submitted").Inc()
	s.log.Info("Withdrawal submitted to payout provider",
		"withdrawal_id", withdrawal.ID.String(),
		"batch_id", submission.BatchID,
		"item_id", submission.ItemID)

	return &entities.RequestWithdrawalResponse{
		WithdrawalID: withdrawal.ID,
		Status:       entities.WithdrawalStatusProcessing,
		BatchID:      submission.BatchID,
		Message:      "Withdrawal submitted for processing",
	}, nil
}

// ForceCheck reconciles a single withdrawal outside the scheduled loop
func (s *Service) ForceCheck(ctx context.Context, withdrawalID uuid.UUID) (*entities.ForceCheckResult, error) {
	withdrawal, err := s.withdrawalRepo.GetByID(ctx, withdrawalID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, domainerrors.NewNotFoundError("withdrawal", withdrawalID.String())
		}
		return nil, fmt.Errorf("get withdrawal: %w", err)
	}

	if withdrawal.Status.IsTerminal() {
		return &entities.ForceCheckResult{
			WithdrawalID: withdrawal.ID,
			Status:       withdrawal.Status,
			Checked:      false,
			Message:      fmt.Sprintf("withdrawal already settled as %s", withdrawal.Status),
		}, nil
	}
	if withdrawal.Status != entities.WithdrawalStatusProcessing {
		return &entities.ForceCheckResult{
			WithdrawalID: withdrawal.ID,
			Status:       withdrawal.Status,
			Checked:      false,
			Message:      fmt.Sprintf("withdrawal is %s, nothing to check", withdrawal.Status),
		}, nil
	}
	if withdrawal.BatchID == nil {
		return nil, domainerrors.NewValidationError("withdrawal has no payout batch recorded")
	}

	if err := s.Reconcile(ctx, withdrawal); err != nil {
		return nil, err
	}

	updated, err := s.withdrawalRepo.GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, fmt.Errorf("reload withdrawal: %w", err)
	}
	return &entities.ForceCheckResult{
		WithdrawalID: updated.ID,
		Status:       updated.Status,
		Checked:      true,
		Message:      fmt.Sprintf("withdrawal is %s after provider check", updated.Status),
	}, nil
}

// ReconcileProcessing scans every in-flight withdrawal and applies the provider's view.
// One withdrawal's failure never aborts the scan.
func (s *Service) ReconcileProcessing(ctx context.Context) error {
	metrics.ReconciliationRuns.Inc()

	processing, err := s.withdrawalRepo.GetProcessing(ctx)
	if err != nil {
		return fmt.Errorf("list processing withdrawals: %w", err)
	}
	if len(processing) == 0 {
		return nil
	}

	s.log.Info("Reconciling in-flight withdrawals", "count", len(processing))

	for _, w := range processing {
		if w.BatchID == nil {
			s.log.Warn("Processing withdrawal has no batch id, skipping",
				"withdrawal_id", w.ID.String())
			continue
		}
		if err := s.Reconcile(ctx, w); err != nil {
			s.log.Warn("Failed to reconcile withdrawal",
				"withdrawal_id", w.ID.String(), "error", err.Error())
		}
	}
	return nil
}

// Reconcile fetches the provider's view of one withdrawal and drives the local state
// transition. The batch view is canonical; the single-item endpoint is consulted only
// when the withdrawal's item cannot be located in the batch.
func (s *Service) Reconcile(ctx context.Context, w *entities.Withdrawal) error {
	var batch *paypal.BatchStatus
	var batchErr error
	err := s.gatewayBreaker.Execute(ctx, func() error {
		batch, batchErr = s.gateway.GetBatchStatus(ctx, *w.BatchID)
		return batchErr
	})
	if err != nil {
		metrics.GatewayErrors.WithLabelValues("get_batch_status").Inc()
		return err
	}

	if item, ok := matchItem(w, batch); ok {
		reason := fmt.Sprintf("payout provider reported %s", item.RawStatus)
		return s.applyStatus(ctx, w, item.Status, reason)
	}

	if w.ItemID == nil {
		s.log.Warn("Could not match withdrawal to a payout item",
			"withdrawal_id", w.ID.String(), "batch_id", *w.BatchID, "items", len(batch.Items))
		return nil
	}

	var item *paypal.ItemStatus
	var itemErr error
	err = s.gatewayBreaker.Execute(ctx, func() error {
		item, itemErr = s.gateway.GetItemStatus(ctx, *w.ItemID)
		return itemErr
	})
	if err != nil {
		metrics.GatewayErrors.WithLabelValues("get_item_status").Inc()
		return err
	}

	reason := fmt.Sprintf("payout provider reported %s", item.RawStatus)
	if item.ErrorMessage != "" {
		reason = item.ErrorMessage
	}
	return s.applyStatus(ctx, w, item.Status, reason)
}

// matchItem finds the batch item belonging to the withdrawal. Withdrawals recorded
// without an item id match the sole item of a single-item batch.
func matchItem(w *entities.Withdrawal, batch *paypal.BatchStatus) (paypal.BatchItem, bool) {
	if w.ItemID != nil {
		for _, item := range batch.Items {
			if item.ItemID == *w.ItemID {
				return item, true
			}
		}
		return paypal.BatchItem{}, false
	}
	if len(batch.Items) == 1 {
		return batch.Items[0], true
	}
	return paypal.BatchItem{}, false
}

// applyStatus maps a normalized provider status onto a withdrawal transition. A stale
// write means another reconciliation won the race; that is not an error.
func (s *Service) applyStatus(ctx context.Context, w *entities.Withdrawal, status paypal.TransactionStatus, failureReason string) error {
	switch {
	case status.IsSuccess():
		if err := w.Status.ValidateTransition(entities.WithdrawalStatusCompleted); err != nil {
			s.log.Warn("Ignoring provider result for settled withdrawal",
				"withdrawal_id", w.ID.String(), "status", string(w.Status))
			return nil
		}
		if err := s.withdrawalRepo.MarkCompleted(ctx, w); err != nil {
			if err == repositories.ErrStaleWithdrawal {
				s.log.Info("Withdrawal already resolved by another writer",
					"withdrawal_id", w.ID.String())
				return nil
			}
			return fmt.Errorf("mark completed: %w", err)
		}
		metrics.WithdrawalsReconciled.WithLabelValues("completed").Inc()
		s.log.Info("Withdrawal completed", "withdrawal_id", w.ID.String())

	case status.IsFailed():
		// The conditional update matches on the caller's snapshot status, so a stale
		// terminal snapshot would otherwise re-apply the credit-back.
		if err := w.Status.ValidateTransition(entities.WithdrawalStatusFailed); err != nil {
			s.log.Warn("Ignoring provider result for settled withdrawal",
				"withdrawal_id", w.ID.String(), "status", string(w.Status))
			return nil
		}
		if err := s.withdrawalRepo.MarkFailedAndRefund(ctx, w, failureReason); err != nil {
			if err == repositories.ErrStaleWithdrawal {
				s.log.Info("Withdrawal already resolved by another writer",
					"withdrawal_id", w.ID.String())
				return nil
			}
			return fmt.Errorf("mark failed: %w", err)
		}
		metrics.WithdrawalsReconciled.WithLabelValues("failed").Inc()
		s.log.Info("Withdrawal failed, wallet credited back",
			"withdrawal_id", w.ID.String(), "reason", failureReason)

	default:
		// Pending or unrecognized: leave as-is, the next tick retries.
		s.log.Debug("Withdrawal still pending at provider",
			"withdrawal_id", w.ID.String(), "status", string(status))
	}
	return nil
}
