package api

import (
	"encoding/json"
	"time"
)

type (
	// AlarmID identifies an alarm registered through the API
	AlarmID string

	// ScheduleResponse reports the outcome of a schedule request. Fired is
	// set when the requested time had already passed and the alarm went off
	// before the response was written
	ScheduleResponse struct {
		ID    AlarmID `json:"id,omitempty"`
		Fired bool    `json:"fired"`
	}

	// PendingAlarm describes an alarm still waiting to fire
	PendingAlarm struct {
		ID AlarmID   `json:"id"`
		At time.Time `json:"at"`
	}

	// FiredAlarm is broadcast to WebSocket clients when an alarm goes off
	FiredAlarm struct {
		ID      AlarmID         `json:"id"`
		At      time.Time       `json:"at"`
		FiredAt time.Time       `json:"fired_at"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	// MaxDelayRequest sets the ceiling on a single timer wait
	MaxDelayRequest struct {
		MaxDelayMS int64 `json:"max_delay_ms"`
	}

	// MaxDelayResponse reports the effective ceiling after an update
	MaxDelayResponse struct {
		MaxDelayMS int64 `json:"max_delay_ms"`
	}

	// HealthResponse reports daemon liveness and queue depth
	HealthResponse struct {
		Status     string `json:"status"`
		Pending    int    `json:"pending"`
		MaxDelayMS int64  `json:"max_delay_ms"`
	}

	// ErrorResponse is returned for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}
)
