// Package mcp exposes story structure to MCP clients, so agent-driven
// writing tools read through the same cache as the HTTP API.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"fictures/internal/narrative"
	"fictures/internal/store"
)

// Querier is the slice of the store the tools read from. Structure reads go
// through the narrative service instead, so they hit the cache.
type Querier interface {
	ListStories(ctx context.Context, authorID string) ([]store.StorySummary, error)
	GetCharacter(ctx context.Context, id string) (*store.Character, error)
	ListCharacters(ctx context.Context, storyID string) ([]store.Character, error)
}

type Server struct {
	db        Querier
	narrative *narrative.Service
	mcp       *sdk.Server
}

func NewServer(db Querier, svc *narrative.Service, version string) *Server {
	s := &Server{
		db:        db,
		narrative: svc,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "fictures",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
