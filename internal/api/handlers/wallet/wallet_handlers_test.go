package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creator-platform/creator_service/internal/api/handlers/common"
	"github.com/creator-platform/creator_service/internal/domain/entities"
	domainerrors "github.com/creator-platform/creator_service/pkg/errors"
	"github.com/creator-platform/creator_service/pkg/logger"
)

type stubService struct {
	ServiceInterface
	requestWithdrawal func(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*entities.RequestWithdrawalResponse, error)
	getWallet         func(ctx context.Context, creatorID uuid.UUID) (*entities.Wallet, error)
}

func (s *stubService) RequestWithdrawal(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*entities.RequestWithdrawalResponse, error) {
	return s.requestWithdrawal(ctx, creatorID, amount)
}

func (s *stubService) GetWallet(ctx context.Context, creatorID uuid.UUID) (*entities.Wallet, error) {
	return s.getWallet(ctx, creatorID)
}

func performRequest(t *testing.T, h *Handlers, method, path string, body interface{}, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(method, path, &buf)
	ctx.Request.Header.Set("Content-Type", "application/json")
	ctx.Set(common.CreatorIDKey, uuid.New())

	handler(ctx)
	return rec
}

func TestRequestWithdrawalMapsValidationErrorTo400(t *testing.T) {
	svc := &stubService{
		requestWithdrawal: func(context.Context, uuid.UUID, decimal.Decimal) (*entities.RequestWithdrawalResponse, error) {
			return nil, domainerrors.NewValidationError("minimum withdrawal is 5")
		},
	}
	h := NewHandlers(svc, logger.NewNop())

	rec := performRequest(t, h, http.MethodPost, "/api/v1/wallet/withdrawals",
		map[string]string{"amount": "2"}, h.RequestWithdrawal)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp entities.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_REQUEST", resp.Code)
	assert.Contains(t, resp.Message, "minimum withdrawal")
}

func TestRequestWithdrawalMapsGatewayErrorTo400WithProviderCode(t *testing.T) {
	svc := &stubService{
		requestWithdrawal: func(context.Context, uuid.UUID, decimal.Decimal) (*entities.RequestWithdrawalResponse, error) {
			return nil, &domainerrors.GatewayError{
				Provider: "paypal", StatusCode: 422, Code: "INSUFFICIENT_FUNDS", Message: "sender lacks funds",
			}
		},
	}
	h := NewHandlers(svc, logger.NewNop())

	rec := performRequest(t, h, http.MethodPost, "/api/v1/wallet/withdrawals",
		map[string]string{"amount": "20"}, h.RequestWithdrawal)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp entities.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_FUNDS", resp.Code)
}

func TestRequestWithdrawalSuccessReturns201(t *testing.T) {
	withdrawalID := uuid.New()
	svc := &stubService{
		requestWithdrawal: func(_ context.Context, _ uuid.UUID, amount decimal.Decimal) (*entities.RequestWithdrawalResponse, error) {
			assert.True(t, amount.Equal(decimal.NewFromInt(20)))
			return &entities.RequestWithdrawalResponse{
				WithdrawalID: withdrawalID,
				Status:       entities.WithdrawalStatusProcessing,
				BatchID:      "BATCH-1",
			}, nil
		},
	}
	h := NewHandlers(svc, logger.NewNop())

	rec := performRequest(t, h, http.MethodPost, "/api/v1/wallet/withdrawals",
		map[string]string{"amount": "20"}, h.RequestWithdrawal)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp entities.RequestWithdrawalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, withdrawalID, resp.WithdrawalID)
	assert.Equal(t, entities.WithdrawalStatusProcessing, resp.Status)
}

func TestGetWalletMapsNotFoundTo404(t *testing.T) {
	svc := &stubService{
		getWallet: func(_ context.Context, creatorID uuid.UUID) (*entities.Wallet, error) {
			return nil, domainerrors.NewNotFoundError("wallet", creatorID.String())
		},
	}
	h := NewHandlers(svc, logger.NewNop())

	rec := performRequest(t, h, http.MethodGet, "/api/v1/wallet", nil, h.GetWallet)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp entities.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Code)
}

func TestRequestWithdrawalWithoutIdentityReturns401(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandlers(&stubService{}, logger.NewNop())

	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/api/v1/wallet/withdrawals", bytes.NewBufferString(`{"amount":"20"}`))

	h.RequestWithdrawal(ctx)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
