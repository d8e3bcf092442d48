package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aviatio/flightdeck/internal/domain"
)

// Client calls the external price prediction service. It is consulted when
// an admin creates a flight without a price.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Duration    string `json:"duration"`
	Origin      string `json:"from_city"`
	Destination string `json:"to_city"`
	Date        string `json:"flight_date"`
}

type predictResponse struct {
	PredictedPrice float64 `json:"predicted_price"`
}

func (c *Client) PredictPrice(ctx context.Context, duration, origin, destination string, date time.Time) (float64, error) {
	body, err := json.Marshal(predictRequest{
		Duration:    duration,
		Origin:      origin,
		Destination: destination,
		Date:        date.Format(time.DateOnly),
	})
	if err != nil {
		return 0, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &domain.ExternalDependencyError{Dependency: "price predictor", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &domain.ExternalDependencyError{
			Dependency: "price predictor",
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, &domain.ExternalDependencyError{Dependency: "price predictor", Err: err}
	}
	return out.PredictedPrice, nil
}
