package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"partsflow/internal/core/config"
	"partsflow/internal/core/httpclient"
)

// PaymentGatewayAdapter implements ports.PaymentProcessor against an HTTP
// payment gateway with a boolean success contract.
type PaymentGatewayAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the gateway connection details.
	config config.PaymentConfig
	// timeout bounds one charge call.
	timeout time.Duration
}

// NewPaymentGatewayAdapter creates a new PaymentGatewayAdapter.
func NewPaymentGatewayAdapter(cfg config.PaymentConfig) *PaymentGatewayAdapter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	return &PaymentGatewayAdapter{
		client:  httpclient.NewClient(timeout),
		config:  cfg,
		timeout: timeout,
	}
}

// chargeRequest is the gateway charge payload.
type chargeRequest struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
}

// chargeResponse is the gateway charge result.
type chargeResponse struct {
	Success bool `json:"success"`
}

// ProcessPayment charges the buyer and returns whether the charge succeeded.
func (a *PaymentGatewayAdapter) ProcessPayment(ctx context.Context, amount float64, method string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	payload, err := json.Marshal(chargeRequest{
		Amount: amount,
		Method: method,
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/charges", a.config.URL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("payment gateway returned status: %d", resp.StatusCode)
	}

	var result chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Success, nil
}
