package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creator-platform/creator_service/internal/infrastructure/config"
	domainerrors "github.com/creator-platform/creator_service/pkg/errors"
	"github.com/creator-platform/creator_service/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.PayPalConfig{
		BaseURL:      server.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Currency:     "USD",
	}, logger.NewNop())
	return client, server
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestSubmitPayoutBuildsSingleItemBatch(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		writeJSON(w, http.StatusOK, map[string]interface{}{"access_token": "token-1", "expires_in": 3600})
	})
	mux.HandleFunc("/v1/payments/payouts", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		var req payoutRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Items, 1)
		assert.Equal(t, "EMAIL", req.Items[0].RecipientType)
		assert.Equal(t, "creator@example.com", req.Items[0].Receiver)
		assert.Equal(t, "25.00", req.Items[0].Amount.Value)
		assert.Equal(t, "USD", req.Items[0].Amount.Currency)
		assert.NotEmpty(t, req.SenderBatchHeader.SenderBatchID)

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"batch_header": map[string]string{"payout_batch_id": "BATCH-42", "batch_status": "PENDING"},
		})
	})
	mux.HandleFunc("/v1/payments/payouts/BATCH-42", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"batch_header": map[string]string{"payout_batch_id": "BATCH-42", "batch_status": "PENDING"},
			"items": []map[string]interface{}{
				{"payout_item_id": "ITEM-42", "transaction_status": "PENDING"},
			},
		})
	})

	client, _ := newTestClient(t, mux)
	submission, err := client.SubmitPayout(context.Background(), "creator@example.com", decimal.NewFromInt(25), "")
	require.NoError(t, err)
	assert.Equal(t, "BATCH-42", submission.BatchID)
	assert.Equal(t, "PENDING", submission.BatchStatus)
	assert.Equal(t, "ITEM-42", submission.ItemID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls), "token cached across calls")
}

func TestSubmitPayoutProviderRejectionIsGatewayError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"access_token": "token-1", "expires_in": 3600})
	})
	mux.HandleFunc("/v1/payments/payouts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"name":    "INSUFFICIENT_FUNDS",
			"message": "Sender does not have sufficient funds",
		})
	})

	client, _ := newTestClient(t, mux)
	_, err := client.SubmitPayout(context.Background(), "creator@example.com", decimal.NewFromInt(25), "")
	require.Error(t, err)

	gw, ok := domainerrors.AsGateway(err)
	require.True(t, ok, "provider rejection surfaces as GatewayError")
	assert.Equal(t, http.StatusUnprocessableEntity, gw.StatusCode)
	assert.Equal(t, "INSUFFICIENT_FUNDS", gw.Code)
}

func TestGetBatchStatusNormalizesItems(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"access_token": "token-1", "expires_in": 3600})
	})
	mux.HandleFunc("/v1/payments/payouts/BATCH-7", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"batch_header": map[string]string{"payout_batch_id": "BATCH-7", "batch_status": "SUCCESS"},
			"items": []map[string]interface{}{
				{"payout_item_id": "ITEM-1", "transaction_status": "Unclaimed"},
				{"payout_item_id": "ITEM-2", "transaction_status": "BLOCKED"},
				{"payout_item_id": "ITEM-3", "transaction_status": "odd_value"},
			},
		})
	})

	client, _ := newTestClient(t, mux)
	batch, err := client.GetBatchStatus(context.Background(), "BATCH-7")
	require.NoError(t, err)
	require.Len(t, batch.Items, 3)
	assert.Equal(t, StatusPending, batch.Items[0].Status)
	assert.Equal(t, StatusFailed, batch.Items[1].Status)
	assert.Equal(t, TransactionStatus("ODD_VALUE"), batch.Items[2].Status)
	assert.Equal(t, "odd_value", batch.Items[2].RawStatus)
}

func TestGetItemStatusCarriesProviderErrorDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"access_token": "token-1", "expires_in": 3600})
	})
	mux.HandleFunc("/v1/payments/payouts-item/ITEM-9", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"payout_item_id":     "ITEM-9",
			"transaction_status": "FAILED",
			"payout_item": map[string]interface{}{
				"amount":   map[string]string{"value": "20.00", "currency": "USD"},
				"receiver": "creator@example.com",
			},
			"errors": map[string]string{
				"name":    "RECEIVER_UNREGISTERED",
				"message": "Receiver is unregistered",
			},
		})
	})

	client, _ := newTestClient(t, mux)
	item, err := client.GetItemStatus(context.Background(), "ITEM-9")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, item.Status)
	assert.Equal(t, "20.00", item.Amount)
	assert.Equal(t, "creator@example.com", item.Recipient)
	assert.Equal(t, "Receiver is unregistered", item.ErrorMessage)
}

func TestTokenFailureSurfacesAsGatewayError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":             "invalid_client",
			"error_description": "Client authentication failed",
		})
	})

	client, _ := newTestClient(t, mux)
	_, err := client.GetBatchStatus(context.Background(), "BATCH-1")
	require.Error(t, err)

	gw, ok := domainerrors.AsGateway(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, gw.StatusCode)
	assert.Equal(t, "invalid_client", gw.Code)
}
