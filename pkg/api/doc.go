// Package api defines the request, response, and event types exchanged with
// the alarm daemon over HTTP and WebSocket
package api
