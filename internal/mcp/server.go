// ABOUTME: MCP server setup for the cycles tracker.
// ABOUTME: Wraps the MCP server with a snapshot store and serializes load-modify-save updates.
package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harperreed/cycles/internal/logger"
	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	store     storage.Store
	now       func() time.Time

	mu sync.Mutex
}

// NewServer creates a new MCP server with the given storage.
func NewServer(store storage.Store) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("mcp server requires a store")
	}
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "cycles",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		store:     store,
		now:       time.Now,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) today() models.Date {
	return models.DateOf(s.now())
}

// parseDateOr parses an optional ISO date, defaulting to today.
func (s *Server) parseDateOr(raw string) (models.Date, error) {
	if raw == "" {
		return s.today(), nil
	}
	return models.ParseDate(raw)
}

func (s *Server) snapshot(ctx context.Context) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.LoadOrNew(ctx, s.store)
}

// update loads the snapshot, applies fn, and saves the result. Nothing is
// saved when fn fails.
func (s *Server) update(ctx context.Context, fn func(models.Snapshot) (models.Snapshot, error)) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := storage.LoadOrNew(ctx, s.store)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	next, err := fn(*snap)
	if err != nil {
		return models.Snapshot{}, err
	}
	next.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, &next); err != nil {
		return models.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	logger.Log.WithField("mode", next.Mode).Debug("mcp update saved")
	return next, nil
}
