package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kode4food/alarm/pkg/api"
)

type (
	// Client talks to a single alarm daemon
	Client struct {
		httpClient *http.Client
		baseURL    string
	}

	// HTTPError reports a non-success response from the daemon
	HTTPError struct {
		StatusCode int
		Message    string
	}

	scheduleRequest struct {
		At      int64 `json:"at"`
		Payload any   `json:"payload,omitempty"`
	}
)

var (
	ErrRequest  = errors.New("request failed")
	ErrResponse = errors.New("invalid response")
)

// NewClient creates a client for the daemon at baseURL. Requests that take
// longer than timeout are abandoned
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Schedule asks the daemon to fire an alarm at the given instant, carrying
// payload back to subscribers. The response reports Fired when the instant
// had already passed
func (c *Client) Schedule(
	ctx context.Context, at time.Time, payload any,
) (*api.ScheduleResponse, error) {
	var res api.ScheduleResponse
	err := c.do(ctx, http.MethodPost, "/alarm", scheduleRequest{
		At:      at.UnixMilli(),
		Payload: payload,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Cancel removes a pending alarm. Unknown and already fired alarms are not
// an error
func (c *Client) Cancel(ctx context.Context, id api.AlarmID) error {
	return c.do(ctx,
		http.MethodDelete, "/alarm/"+url.PathEscape(string(id)), nil, nil,
	)
}

// List returns the alarms still waiting to fire, earliest first
func (c *Client) List(ctx context.Context) ([]api.PendingAlarm, error) {
	var res []api.PendingAlarm
	if err := c.do(ctx, http.MethodGet, "/alarm", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// SetMaxDelay changes the longest single timer wait and returns the value
// the daemon settled on after clamping
func (c *Client) SetMaxDelay(
	ctx context.Context, d time.Duration,
) (time.Duration, error) {
	var res api.MaxDelayResponse
	err := c.do(ctx, http.MethodPut, "/config/max-delay", api.MaxDelayRequest{
		MaxDelayMS: d.Milliseconds(),
	}, &res)
	if err != nil {
		return 0, err
	}
	return time.Duration(res.MaxDelayMS) * time.Millisecond, nil
}

// Health returns the daemon's liveness report
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var res api.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(
	ctx context.Context, method, path string, body, out any,
) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRequest, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(
		ctx, method, c.baseURL+path, reader,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK ||
		resp.StatusCode >= http.StatusMultipleChoices {
		return newHTTPError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrResponse, err)
	}
	return nil
}

func newHTTPError(resp *http.Response) *HTTPError {
	data, _ := io.ReadAll(resp.Body)
	msg := string(data)
	var res api.ErrorResponse
	if json.Unmarshal(data, &res) == nil && res.Error != "" {
		msg = res.Error
	}
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Message:    msg,
	}
}

// Error implements the error interface for HTTPError
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}
