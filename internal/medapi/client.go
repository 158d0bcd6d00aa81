// Package medapi is the client for the external prediction and drug
// interaction service. The service is opaque: only its address and JSON
// contract are known here.
package medapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Skufu/MedSage/internal/metrics"
)

var (
	ErrTransport         = errors.New("medapi: transport failure")
	ErrStatus            = errors.New("medapi: non-success status")
	ErrMalformedResponse = errors.New("medapi: malformed response")
)

const maxResponseBytes = 1 << 20

// StatusError carries the upstream status code; it matches ErrStatus.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("medapi: upstream returned status %d", e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for baseURL. A zero timeout leaves outbound
// calls unbounded.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Symptoms []string `json:"symptoms"`
}

type interactionsRequest struct {
	Drugs []string `json:"drugs"`
}

// InteractionEntry is one row of the upstream interaction response.
// Drugs holds both names joined as "A + B".
type InteractionEntry struct {
	Drugs       string `json:"Drugs"`
	Level       string `json:"Level"`
	Description string `json:"Description"`
}

type interactionsResponse struct {
	Interactions []InteractionEntry `json:"Interactions"`
}

// Predict submits the symptom list and returns the validated disease record.
func (c *Client) Predict(ctx context.Context, symptoms []string) (*DiseaseData, error) {
	if symptoms == nil {
		symptoms = []string{}
	}
	body, err := c.post(ctx, "predict", "/api/predict", predictRequest{Symptoms: symptoms})
	if err != nil {
		return nil, err
	}
	return DecodeDiseaseData(body)
}

// Interactions submits the full drug set in a single call.
func (c *Client) Interactions(ctx context.Context, drugs []string) ([]InteractionEntry, error) {
	body, err := c.post(ctx, "interactions", "/api/interactions", interactionsRequest{Drugs: drugs})
	if err != nil {
		return nil, err
	}

	var resp interactionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return resp.Interactions, nil
}

func (c *Client) post(ctx context.Context, op, path string, payload any) ([]byte, error) {
	start := time.Now()
	body, err := c.do(ctx, path, payload)
	metrics.RecordMedAPICall(op, outcome(err), time.Since(start))
	return body, err
}

func (c *Client) do(ctx context.Context, path string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	return body, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "error"
	}
}
