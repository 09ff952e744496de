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
	"partsflow/internal/features/orders/domain"
	"partsflow/internal/features/orders/ports"
)

// ShipWiseAdapter implements ports.LabelGenerator using the ShipWise
// Batch/Create API. Every call carries an explicit timeout; a timeout is a
// retryable failure, never a success.
type ShipWiseAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the ShipWise connection details.
	config config.ShipWiseConfig
	// timeout bounds one registration call.
	timeout time.Duration
}

// NewShipWiseAdapter creates a new ShipWiseAdapter.
func NewShipWiseAdapter(cfg config.ShipWiseConfig) *ShipWiseAdapter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	return &ShipWiseAdapter{
		client:  httpclient.NewClient(timeout),
		config:  cfg,
		timeout: timeout,
	}
}

// createShipmentRequest is the Batch/Create payload.
type createShipmentRequest struct {
	OrderID    string `json:"order_id"`
	ParcelSize string `json:"parcel_size"`
}

// createShipmentResponse is the Batch/Create result.
type createShipmentResponse struct {
	TrackingNumber string `json:"tracking_number"`
	LabelURL       string `json:"label_url"`
}

// RegisterShipment registers the shipment and returns the tracking number and
// label reference. Both are always returned together or not at all.
func (a *ShipWiseAdapter) RegisterShipment(ctx context.Context, orderID string, size domain.ParcelSize) (*ports.Label, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	payload, err := json.Marshal(createShipmentRequest{
		OrderID:    orderID,
		ParcelSize: string(size),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/Batch/Create", a.config.URL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("shipwise API returned status: %d", resp.StatusCode)
	}

	var result createShipmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if result.TrackingNumber == "" || result.LabelURL == "" {
		return nil, fmt.Errorf("shipwise API returned incomplete label")
	}

	return &ports.Label{
		TrackingNumber: result.TrackingNumber,
		LabelURL:       result.LabelURL,
	}, nil
}
