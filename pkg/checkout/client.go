package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is the HTTP implementation of InvoiceAPI against the backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates an API client with the user's session token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateInvoice implements InvoiceAPI.
func (c *Client) CreateInvoice(ctx context.Context, templateID, optionID string) (*Invoice, error) {
	body, err := json.Marshal(map[string]string{
		"templateId": templateID,
		"optionId":   optionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode invoice request: %w", err)
	}

	var inv Invoice
	if err := c.do(ctx, http.MethodPost, "/api/payment/invoice", bytes.NewReader(body), &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetTransaction implements InvoiceAPI. The transaction row is mapped to
// the invoice wire shape the session tracks.
func (c *Client) GetTransaction(ctx context.Context, transactionID string) (*Invoice, error) {
	var txn struct {
		ID         string     `json:"id"`
		Amount     int64      `json:"amount"`
		Status     string     `json:"status"`
		VABank     *string    `json:"vaBank"`
		VANumber   *string    `json:"vaNumber"`
		ExpiresAt  *time.Time `json:"expiresAt"`
		PaymentURL string     `json:"paymentUrl"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/transactions/"+transactionID, nil, &txn); err != nil {
		return nil, err
	}

	inv := &Invoice{
		TransactionID: txn.ID,
		Amount:        txn.Amount,
		Status:        txn.Status,
		ExpiresAt:     txn.ExpiresAt,
		PaymentURL:    txn.PaymentURL,
	}
	if txn.VABank != nil {
		inv.Bank = *txn.VABank
	}
	if txn.VANumber != nil {
		inv.AccountNumber = *txn.VANumber
	}
	return inv, nil
}

func (c *Client) do(ctx context.Context, method, path string, body *bytes.Reader, out interface{}) error {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
