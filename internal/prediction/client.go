// Package prediction talks to the external campaign success predictor.
package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/unclebandit/kickstarter-backend/internal/model"
)

// Responses larger than this are rejected rather than buffered.
const maxResponseBytes = 1 << 20

// Result is the upstream response as received.
type Result struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// StatusError is returned for any non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("prediction service returned status %d", e.StatusCode)
}

type Client struct {
	URL        string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

func NewClient(url string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		URL:        url,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
}

// Predict posts the feature vector and returns the raw response.
func (c *Client) Predict(ctx context.Context, req model.PredictionRequest) (*Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode features: %w", err)
	}

	c.Logger.Debug().RawJSON("features", payload).Msg("requesting prediction")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build prediction request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call prediction service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read prediction response: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("prediction response exceeds %d bytes", maxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	return &Result{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
