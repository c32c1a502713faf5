// ABOUTME: MCP server setup for the myjot journal.
// ABOUTME: Wraps the MCP server with the storage gateway and editing sessions.
package mcp

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/myjot/internal/logging"
	"github.com/harperreed/myjot/internal/meal"
	"github.com/harperreed/myjot/internal/storage"
	"github.com/harperreed/myjot/internal/workout"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	gateway   storage.Gateway
	assembler *workout.Assembler
	meals     *meal.Service
	log       *log.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// NewServer creates a new MCP server with the given storage.
func NewServer(g storage.Gateway, logger *log.Logger) (*Server, error) {
	logger = logging.OrDiscard(logger)
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "myjot",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		gateway:   g,
		assembler: workout.NewAssembler(g, logger),
		meals:     meal.NewService(g, logger),
		log:       logger,
		sessions:  make(map[uuid.UUID]*session),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
