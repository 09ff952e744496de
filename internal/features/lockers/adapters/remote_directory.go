package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"partsflow/internal/core/httpclient"
	"partsflow/internal/features/lockers/domain"
)

// RemoteDirectory implements ports.Directory against a carrier locker API.
type RemoteDirectory struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// baseURL is the base URL of the locker API.
	baseURL string
}

// NewRemoteDirectory creates a new RemoteDirectory.
func NewRemoteDirectory(baseURL string) *RemoteDirectory {
	return &RemoteDirectory{
		client:  httpclient.NewClient(10 * time.Second),
		baseURL: baseURL,
	}
}

// lockerResponse mirrors the remote API payload.
type lockerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Type    string `json:"type"`
}

// List fetches the locker catalog from the remote API.
func (d *RemoteDirectory) List(ctx context.Context) ([]domain.Locker, error) {
	url := fmt.Sprintf("%s/v1/lockers", d.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("locker API returned status: %d", resp.StatusCode)
	}

	var payload []lockerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	lockers := make([]domain.Locker, 0, len(payload))
	for _, p := range payload {
		carrier := domain.Carrier(p.Type)
		if !carrier.Valid() {
			// Skip networks we do not ship with.
			continue
		}
		lockers = append(lockers, domain.Locker{
			ID:      p.ID,
			Name:    p.Name,
			Address: p.Address,
			City:    p.City,
			Carrier: carrier,
		})
	}

	return lockers, nil
}
