// Package paypal wraps the PayPal Payouts REST API. Callers see normalized statuses
// and GatewayError values, never raw transport errors.
package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/creator-platform/creator_service/internal/infrastructure/config"
	"github.com/creator-platform/creator_service/pkg/errors"
	"github.com/creator-platform/creator_service/pkg/logger"
)

const tokenExpirySlack = 60 * time.Second

// Client calls the PayPal Payouts API
type Client struct {
	http     *resty.Client
	clientID string
	secret   string
	currency string
	log      *logger.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a PayPal payouts client
func NewClient(cfg config.PayPalConfig, log *logger.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30 * time.Second)

	return &Client{
		http:     httpClient,
		clientID: cfg.ClientID,
		secret:   cfg.ClientSecret,
		currency: cfg.Currency,
		log:      log,
	}
}

// PayoutSubmission is the result of submitting a single-item payout batch
type PayoutSubmission struct {
	BatchID     string
	BatchStatus string
	ItemID      string
}

// BatchItem is one payout item within a batch status response
type BatchItem struct {
	ItemID    string
	Status    TransactionStatus
	RawStatus string
}

// BatchStatus is the current state of a payout batch
type BatchStatus struct {
	BatchID string
	Status  string
	Items   []BatchItem
}

// ItemStatus is the detail view of a single payout item
type ItemStatus struct {
	ItemID       string
	Status       TransactionStatus
	RawStatus    string
	Amount       string
	Recipient    string
	ErrorMessage string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type providerError struct {
	Name             string `json:"name"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type payoutAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type payoutItemRequest struct {
	RecipientType string       `json:"recipient_type"`
	Amount        payoutAmount `json:"amount"`
	Receiver      string       `json:"receiver"`
	Note          string       `json:"note,omitempty"`
	SenderItemID  string       `json:"sender_item_id"`
}

type payoutRequest struct {
	SenderBatchHeader struct {
		SenderBatchID string `json:"sender_batch_id"`
		EmailSubject  string `json:"email_subject,omitempty"`
	} `json:"sender_batch_header"`
	Items []payoutItemRequest `json:"items"`
}

type batchHeader struct {
	PayoutBatchID string `json:"payout_batch_id"`
	BatchStatus   string `json:"batch_status"`
}

type payoutItemDetail struct {
	PayoutItemID      string `json:"payout_item_id"`
	TransactionStatus string `json:"transaction_status"`
	PayoutItem        struct {
		Amount   payoutAmount `json:"amount"`
		Receiver string       `json:"receiver"`
	} `json:"payout_item"`
	Errors *struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

type payoutBatchResponse struct {
	BatchHeader batchHeader        `json:"batch_header"`
	Items       []payoutItemDetail `json:"items"`
}

// SubmitPayout submits a single-item EMAIL payout batch. The item id is resolved with a
// best-effort follow-up batch read; a submission without an item id is still valid and
// gets matched by the reconciliation fallback later.
func (c *Client) SubmitPayout(ctx context.Context, receiver string, amount decimal.Decimal, currency string) (*PayoutSubmission, error) {
	if currency == "" {
		currency = c.currency
	}

	req := payoutRequest{}
	req.SenderBatchHeader.SenderBatchID = uuid.New().String()
	req.SenderBatchHeader.EmailSubject = "You have a payout from Creator Platform"
	req.Items = []payoutItemRequest{{
		RecipientType: "EMAIL",
		Amount:        payoutAmount{Value: amount.StringFixed(2), Currency: currency},
		Receiver:      receiver,
		Note:          "Creator earnings payout",
		SenderItemID:  uuid.New().String(),
	}}

	var out payoutBatchResponse
	if err := c.call(ctx, resty.MethodPost, "/v1/payments/payouts", req, &out); err != nil {
		return nil, err
	}
	if out.BatchHeader.PayoutBatchID == "" {
		return nil, errors.NewInternalError("payout response missing batch id", nil)
	}

	submission := &PayoutSubmission{
		BatchID:     out.BatchHeader.PayoutBatchID,
		BatchStatus: out.BatchHeader.BatchStatus,
	}

	// The submit response carries no item ids; read the batch back to record one.
	batch, err := c.GetBatchStatus(ctx, submission.BatchID)
	if err != nil {
		c.log.Warn("Could not resolve payout item id after submission",
			"batch_id", submission.BatchID, "error", err.Error())
		return submission, nil
	}
	if len(batch.Items) == 1 {
		submission.ItemID = batch.Items[0].ItemID
	}

	return submission, nil
}

// GetBatchStatus fetches the current state of a payout batch
func (c *Client) GetBatchStatus(ctx context.Context, batchID string) (*BatchStatus, error) {
	var out payoutBatchResponse
	path := fmt.Sprintf("/v1/payments/payouts/%s", batchID)
	if err := c.call(ctx, resty.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	status := &BatchStatus{
		BatchID: out.BatchHeader.PayoutBatchID,
		Status:  out.BatchHeader.BatchStatus,
	}
	for _, item := range out.Items {
		status.Items = append(status.Items, BatchItem{
			ItemID:    item.PayoutItemID,
			Status:    c.normalize(item.TransactionStatus),
			RawStatus: item.TransactionStatus,
		})
	}
	return status, nil
}

// GetItemStatus fetches the detail view of a single payout item
func (c *Client) GetItemStatus(ctx context.Context, itemID string) (*ItemStatus, error) {
	var out payoutItemDetail
	path := fmt.Sprintf("/v1/payments/payouts-item/%s", itemID)
	if err := c.call(ctx, resty.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	status := &ItemStatus{
		ItemID:    out.PayoutItemID,
		Status:    c.normalize(out.TransactionStatus),
		RawStatus: out.TransactionStatus,
		Amount:    out.PayoutItem.Amount.Value,
		Recipient: out.PayoutItem.Receiver,
	}
	if out.Errors != nil {
		status.ErrorMessage = out.Errors.Message
	}
	return status, nil
}

// normalize applies the status mapping table, logging unrecognized vocabulary
func (c *Client) normalize(raw string) TransactionStatus {
	status := NormalizeStatus(raw)
	if !status.IsRecognized() && status != StatusUnknown {
		c.log.Warn("Unrecognized provider transaction status", "status", raw)
	}
	return status
}

// call executes an authenticated request and decodes the response body into out
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json")
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return &errors.GatewayError{
			Provider: "paypal",
			Message:  "payout provider unreachable",
			Err:      err,
		}
	}
	if resp.IsError() {
		return c.gatewayError(resp)
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return errors.NewInternalError("malformed payout provider response", err)
		}
	}
	return nil
}

// token returns a cached OAuth2 access token, refreshing it when near expiry
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.secret).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody("grant_type=client_credentials").
		Post("/v1/oauth2/token")
	if err != nil {
		return "", &errors.GatewayError{
			Provider: "paypal",
			Message:  "payout provider auth unreachable",
			Err:      err,
		}
	}
	if resp.IsError() {
		return "", c.gatewayError(resp)
	}

	var token tokenResponse
	if err := json.Unmarshal(resp.Body(), &token); err != nil || token.AccessToken == "" {
		return "", errors.NewInternalError("malformed token response from payout provider", err)
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenExpirySlack)
	return c.accessToken, nil
}

// gatewayError converts a non-2xx provider response into a GatewayError
func (c *Client) gatewayError(resp *resty.Response) error {
	gw := &errors.GatewayError{
		Provider:   "paypal",
		StatusCode: resp.StatusCode(),
		Message:    "payout provider rejected the request",
	}

	var pe providerError
	if err := json.Unmarshal(resp.Body(), &pe); err == nil {
		switch {
		case pe.Name != "":
			gw.Code = pe.Name
			gw.Message = pe.Message
		case pe.Error != "":
			gw.Code = pe.Error
			gw.Message = pe.ErrorDescription
		}
	}
	return gw
}
