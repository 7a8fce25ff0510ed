// Package mcp exposes the alarm daemon's HTTP API as Model Context Protocol
// tools, so agents can schedule and cancel alarms over stdio
package mcp
