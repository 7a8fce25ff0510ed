package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/localrivet/gomcp/server"

	"github.com/kode4food/alarm/pkg/api"
)

type (
	scheduleAlarmArgs struct {
		At      string          `json:"at"`
		Payload *map[string]any `json:"payload,omitempty"`
	}

	scheduleAlarmRequest struct {
		At      string         `json:"at"`
		Payload map[string]any `json:"payload,omitempty"`
	}

	cancelAlarmArgs struct {
		ID string `json:"id"`
	}

	setMaxDelayArgs struct {
		MaxDelayMS int64 `json:"max_delay_ms"`
	}
)

var ErrInvalidParams = errors.New("invalid params")

func (s *Server) registerTools(srv server.Server) {
	srv.Tool(
		"list_alarms",
		"List alarms waiting to fire, earliest first",
		func(_ *server.Context, _ any) (any, error) {
			payload, err := s.httpGet("/alarm")
			return toolResult(payload, err)
		},
	)

	srv.Tool(
		"schedule_alarm",
		"Schedule an alarm at an RFC 3339 time or Unix milliseconds",
		func(_ *server.Context, args scheduleAlarmArgs) (any, error) {
			if args.At == "" {
				return nil, errInvalidParams("at is required")
			}
			req := scheduleAlarmRequest{At: args.At}
			if args.Payload != nil {
				req.Payload = *args.Payload
			}
			payload, err := s.httpPost("/alarm", req)
			return toolResult(payload, err)
		},
	)

	srv.Tool(
		"cancel_alarm",
		"Cancel a pending alarm by ID",
		func(_ *server.Context, args cancelAlarmArgs) (any, error) {
			if args.ID == "" {
				return nil, errInvalidParams("id is required")
			}
			err := s.httpDelete("/alarm/" + url.PathEscape(args.ID))
			return toolResult(map[string]any{
				"id":        args.ID,
				"cancelled": true,
			}, err)
		},
	)

	srv.Tool(
		"set_max_delay",
		"Set the longest single timer wait in milliseconds",
		func(_ *server.Context, args setMaxDelayArgs) (any, error) {
			if args.MaxDelayMS <= 0 {
				return nil, errInvalidParams("max_delay_ms must be positive")
			}
			payload, err := s.httpPut(
				"/config/max-delay", api.MaxDelayRequest{
					MaxDelayMS: args.MaxDelayMS,
				},
			)
			return toolResult(payload, err)
		},
	)

	srv.Tool(
		"alarm_health",
		"Fetch daemon health and queue depth",
		func(_ *server.Context, _ any) (any, error) {
			payload, err := s.httpGet("/health")
			return toolResult(payload, err)
		},
	)

	srv.Tool(
		"api_spec",
		"Fetch the OpenAPI document for the alarm daemon",
		func(_ *server.Context, _ any) (any, error) {
			doc, err := loadAPISpec()
			if err != nil {
				return nil, err
			}
			return toolResult(doc, nil)
		},
	)
}

func toolResult(payload any, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"content": []map[string]any{
			{
				"type": "text",
				"text": string(raw),
			},
		},
	}, nil
}

func errInvalidParams(message string) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, message)
}
