// Package client implements the prediction front end: an HTTP API client,
// the form submission controller, location detection, and result rendering
// for a presentation layer supplied by the host.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/domain"
)

// APIError is a failed response from the prediction service: a non-2xx
// status, or a 2xx body carrying success:false. Message holds the
// server-supplied error text when the body carried one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: status %d", e.Status)
}

// PredictionResult is the service's prediction response as consumed by the
// rendering layer.
type PredictionResult struct {
	Success           bool                 `json:"success"`
	PredictedSeverity string               `json:"predicted_severity"`
	RiskLevel         string               `json:"risk_level"`
	Confidence        float64              `json:"confidence"`
	Probabilities     domain.Probabilities `json:"probabilities"`
	Color             string               `json:"color"`
	LocationName      string               `json:"location_name"`
	Timestamp         string               `json:"timestamp"`
	RiskScore         float64              `json:"risk_score"`
	Recommendations   []string             `json:"recommendations"`
	RiskFactors       []string             `json:"risk_factors"`
}

// Client calls the prediction service API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an API client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Predict requests a coordinate-based prediction.
func (c *Client) Predict(ctx context.Context, coords domain.Coordinates, accuracy string) (*PredictionResult, error) {
	payload := buildPredictionRequest(&coords, accuracy, nil)

	var result PredictionResult
	if err := c.postJSON(ctx, "/api/predict", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PredictComprehensive submits the full condition form. The raw response body
// is returned alongside the parsed result so it can be stored for a results
// page to consume unchanged.
func (c *Client) PredictComprehensive(ctx context.Context, form map[string]any) (*PredictionResult, json.RawMessage, error) {
	payload := buildPredictionRequest(nil, "", form)

	raw, err := c.post(ctx, "/api/predict_comprehensive", payload)
	if err != nil {
		return nil, nil, err
	}

	var result PredictionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, nil, fmt.Errorf("decode prediction response: %w", err)
	}
	return &result, raw, nil
}

// ResolveLocation asks the service to name a position. A nil coords lets the
// server fall back to IP-based resolution.
func (c *Client) ResolveLocation(ctx context.Context, coords *domain.Coordinates, accuracy string) (domain.LocationResolution, error) {
	payload := buildPredictionRequest(coords, accuracy, nil)

	var res domain.LocationResolution
	if err := c.postJSON(ctx, "/api/get_location", payload, &res); err != nil {
		return domain.LocationResolution{}, err
	}
	return res, nil
}

// buildPredictionRequest assembles the request payload shared by every
// prediction and location call: optional coordinates plus optional form
// fields. Coordinate keys override identically named form fields.
func buildPredictionRequest(coords *domain.Coordinates, accuracy string, form map[string]any) map[string]any {
	payload := make(map[string]any, len(form)+3)
	for k, v := range form {
		payload[k] = v
	}
	if coords != nil {
		payload["latitude"] = coords.Lat
		payload["longitude"] = coords.Lon
	}
	if accuracy != "" {
		payload["accuracy"] = accuracy
	}
	return payload
}

func (c *Client) postJSON(ctx context.Context, path string, payload map[string]any, out any) error {
	raw, err := c.post(ctx, path, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read response from %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(buf.Bytes(), &errBody) == nil {
			apiErr.Message = errBody.Error
		}
		return nil, apiErr
	}

	// The service can report a failure inside a 200 body. A missing success
	// field is not a failure; only an explicit false is.
	var envelope struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(buf.Bytes(), &envelope) == nil && envelope.Success != nil && !*envelope.Success {
		return nil, &APIError{Status: resp.StatusCode, Message: envelope.Error}
	}

	return json.RawMessage(buf.Bytes()), nil
}
