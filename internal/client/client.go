package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"paycalc/internal/domain/payroll"
)

// Client submits employee batches to a running paycalc API.
type Client struct {
	client  *http.Client
	baseURL string
	token   string
}

func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

type Failure struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Field string `json:"field"`
	Error string `json:"error"`
}

type Result struct {
	Results  []payroll.PayrollResult `json:"results"`
	Failures []Failure               `json:"failures"`
	Totals   payroll.Totals          `json:"totals"`
}

// RecordErrors converts the reported failures for console output.
func (r Result) RecordErrors() []payroll.RecordError {
	out := make([]payroll.RecordError, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, payroll.RecordError{Index: f.Index, ID: f.ID, Err: errors.New(f.Error)})
	}
	return out
}

// APIError is a non-2xx response carrying the API error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned %d %s: %s", e.Status, e.Code, e.Message)
}

// RecordRejected reports whether the batch failed on an employee record, as
// opposed to a transport or server problem.
func (e *APIError) RecordRejected() bool {
	return e.Status == http.StatusUnprocessableEntity
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// Compute posts a batch (a JSON array of employee records) for computation.
// A non-empty idempotencyKey lets the caller retry safely.
func (c *Client) Compute(ctx context.Context, batch []byte, collect bool, idempotencyKey string) (Result, error) {
	url := c.baseURL + "/api/v1/payroll/compute"
	if collect {
		url += "?mode=" + payroll.PolicyCollect
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(batch))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("paycalc api unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Result{}, fmt.Errorf("api returned status %d with unreadable body: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return Result{}, apiErr
	}

	var result Result
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return Result{}, fmt.Errorf("decode result: %w", err)
	}
	return result, nil
}
