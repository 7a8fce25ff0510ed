// Package server implements the HTTP API for the alarm daemon
//
// This package provides REST endpoints for scheduling and cancelling alarms,
// adjusting the scheduler's maximum wait, health and metrics, and a WebSocket
// stream of alarms as they fire
package server
