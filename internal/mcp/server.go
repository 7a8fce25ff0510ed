package mcp

import (
	"net/http"

	"github.com/localrivet/gomcp/server"

	app "github.com/kode4food/alarm"
)

// Server bridges MCP tool calls to an alarm daemon's HTTP API
type Server struct {
	baseURL string
	client  *http.Client
}

const defaultBaseURL = "http://localhost:8080"

// NewServer constructs an MCP server with the provided daemon base URL
func NewServer(baseURL string, client *http.Client) *Server {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Server{
		baseURL: baseURL,
		client:  client,
	}
}

// MCPServer builds an MCP server with every alarm tool registered
func (s *Server) MCPServer() server.Server {
	srv := server.NewServer(app.Name + "-mcp")
	s.registerTools(srv)
	return srv
}

// Run serves MCP over stdin and stdout until the peer disconnects
func (s *Server) Run() error {
	return s.MCPServer().AsStdio().Run()
}
