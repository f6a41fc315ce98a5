// Package rest is the client for the hazard backend's REST API: the list
// fetch polled by the session, position submission, and report upload.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/roadpulse/roadpulse/internal/domain/model"
)

// Default request timeouts. Uploads carry audio and get the longer one.
const (
	defaultRequestTimeout = 60 * time.Second
	defaultUploadTimeout  = 120 * time.Second
)

// Client talks to the hazard backend.
type Client struct {
	baseURL      string
	token        string
	userID       string
	httpClient   *http.Client
	uploadClient *http.Client
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithToken sets the bearer token attached to every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithUserID sets the user id attached to outbound submissions.
func WithUserID(id string) Option {
	return func(c *Client) {
		c.userID = id
	}
}

// WithTimeout sets the general request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUploadTimeout sets the report upload timeout.
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.uploadClient.Timeout = d
		}
	}
}

// NewClient creates a backend client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: defaultRequestTimeout},
		uploadClient: &http.Client{Timeout: defaultUploadTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// hazardPayload mirrors the backend's hazard list item shape.
type hazardPayload struct {
	ID          string  `json:"id"`
	HazardType  string  `json:"hazard_type"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Location    struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"location"`
	Timestamp int64  `json:"timestamp"`
	UserID    string `json:"user_id"`
}

// FetchHazards retrieves the current hazard list.
func (c *Client) FetchHazards(ctx context.Context) ([]model.HazardEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/hazards", nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch hazards: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch hazards: unexpected status %d", resp.StatusCode)
	}

	var payloads []hazardPayload
	if err := json.NewDecoder(resp.Body).Decode(&payloads); err != nil {
		return nil, fmt.Errorf("decode hazards: %w", err)
	}

	hazards := make([]model.HazardEvent, 0, len(payloads))
	for _, p := range payloads {
		hazards = append(hazards, model.HazardEvent{
			ID:          p.ID,
			Category:    p.HazardType,
			Description: p.Description,
			Confidence:  p.Confidence,
			Position: model.Position{
				Latitude:  p.Location.Lat,
				Longitude: p.Location.Lon,
			},
			ReportedBy: p.UserID,
			ReportedAt: time.Unix(p.Timestamp, 0).UTC(),
		})
	}
	return hazards, nil
}

// locationPayload is the outbound position submission shape.
type locationPayload struct {
	UserID string  `json:"user_id,omitempty"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

// SubmitLocation pushes a sampled position to the backend.
func (c *Client) SubmitLocation(ctx context.Context, pos model.Position) error {
	body, err := json.Marshal(locationPayload{
		UserID: c.userID,
		Lat:    pos.Latitude,
		Lon:    pos.Longitude,
	})
	if err != nil {
		return fmt.Errorf("marshal location: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/locations", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build location request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit location: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("submit location: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// SubmitReport uploads a voice hazard report. The body passes through
// untouched; codec handling is the backend's concern.
func (c *Client) SubmitReport(ctx context.Context, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reports", body)
	if err != nil {
		return fmt.Errorf("build report request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	c.authorize(req)

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("submit report: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
