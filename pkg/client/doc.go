// Package client provides a Go API for the alarm daemon
//
// The client schedules, lists and cancels alarms over HTTP, adjusts the
// daemon's maximum timer wait, and subscribes to fired alarms over WebSocket
package client
