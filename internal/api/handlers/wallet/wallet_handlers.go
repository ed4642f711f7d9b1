// Package wallet exposes the wallet and withdrawal HTTP endpoints.
package wallet

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/creator-platform/creator_service/internal/api/handlers/common"
	"github.com/creator-platform/creator_service/internal/domain/entities"
	"github.com/creator-platform/creator_service/pkg/logger"
)

// ServiceInterface defines the wallet operations the handlers depend on
type ServiceInterface interface {
	CreateWallet(ctx context.Context, creatorID uuid.UUID) (*entities.Wallet, error)
	GetWallet(ctx context.Context, creatorID uuid.UUID) (*entities.Wallet, error)
	Deposit(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*entities.Wallet, error)
	LinkPayoutDestination(ctx context.Context, creatorID uuid.UUID, email string) error
	RequestWithdrawal(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*entities.RequestWithdrawalResponse, error)
	GetHistory(ctx context.Context, creatorID uuid.UUID) ([]*entities.Withdrawal, error)
	ForceCheck(ctx context.Context, withdrawalID uuid.UUID) (*entities.ForceCheckResult, error)
}

// Handlers serves the wallet endpoints
type Handlers struct {
	service   ServiceInterface
	validator *validator.Validate
	log       *logger.Logger
}

// NewHandlers creates wallet handlers
func NewHandlers(service ServiceInterface, log *logger.Logger) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator.New(),
		log:       log,
	}
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type linkDestinationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type withdrawalRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// CreateWallet handles POST /api/v1/wallet
func (h *Handlers) CreateWallet(c *gin.Context) {
	creatorID, err := common.GetCreatorID(c)
	if err != nil {
		common.RespondUnauthorized(c, "creator identity required")
		return
	}

	wallet, err := h.service.CreateWallet(c.Request.Context(), creatorID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondCreated(c, wallet)
}

// GetWallet handles GET /api/v1/wallet
func (h *Handlers) GetWallet(c *gin.Context) {
	creatorID, err := common.GetCreatorID(c)
	if err != nil {
		common.RespondUnauthorized(c, "creator identity required")
		return
	}

	wallet, err := h.service.GetWallet(c.Request.Context(), creatorID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, wallet)
}

// Deposit handles POST /api/v1/wallet/deposit
func (h *Handlers) Deposit(c *gin.Context) {
	creatorID, err := common.GetCreatorID(c)
	if err != nil {
		common.RespondUnauthorized(c, "creator identity required")
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "Invalid request format")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	wallet, err := h.service.Deposit(c.Request.Context(), creatorID, req.Amount)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, wallet)
}

// LinkPayoutDestination handles POST /api/v1/wallet/payout-destination
func (h *Handlers) LinkPayoutDestination(c *gin.Context) {
	creatorID, err := common.GetCreatorID(c)
	if err != nil {
		common.RespondUnauthorized(c, "creator identity required")
		return
	}

	var req linkDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "Invalid request format")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		common.RespondBadRequest(c, "a valid email is required")
		return
	}

	if err := h.service.LinkPayoutDestination(c.Request.Context(), creatorID, req.Email); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"message": "payout destination linked"})
}

// RequestWithdrawal handles POST /api/v1/wallet/withdrawals
func (h *Handlers) RequestWithdrawal(c *gin.Context) {
	creatorID, err := common.GetCreatorID(c)
	if err != nil {
		common.RespondUnauthorized(c, "creator identity required")
		return
	}

	var req withdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "Invalid request format")
		return
	}

	response, err := h.service.RequestWithdrawal(c.Request.Context(), creatorID, req.Amount)
	if err != nil {
		h.log.Warn("Withdrawal request rejected",
			"creator_id", creatorID.String(),
			"amount", req.Amount.String(),
			"error", err.Error())
		common.RespondServiceError(c, err)
		return
	}
	common.RespondCreated(c, response)
}

// GetHistory handles GET /api/v1/wallet/withdrawals
func (h *Handlers) GetHistory(c *gin.Context) {
	creatorID, err := common.GetCreatorID(c)
	if err != nil {
		common.RespondUnauthorized(c, "creator identity required")
		return
	}

	withdrawals, err := h.service.GetHistory(c.Request.Context(), creatorID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	if withdrawals == nil {
		withdrawals = []*entities.Withdrawal{}
	}
	common.RespondSuccess(c, withdrawals)
}

// ForceCheck handles POST /api/v1/wallet/withdrawals/:withdrawalId/check
func (h *Handlers) ForceCheck(c *gin.Context) {
	if _, err := common.GetCreatorID(c); err != nil {
		common.RespondUnauthorized(c, "creator identity required")
		return
	}

	withdrawalID, ok := common.ParseUUIDParam(c, "withdrawalId")
	if !ok {
		return
	}

	result, err := h.service.ForceCheck(c.Request.Context(), withdrawalID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, result)
}
