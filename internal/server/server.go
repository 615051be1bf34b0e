// Package server exposes the HTTP API. Read endpoints go through the
// narrative cache; every write endpoint hits the store and then fires the
// story's cache invalidation.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"fictures/internal/generate"
	"fictures/internal/narrative"
	"fictures/internal/store"
)

type Server struct {
	Echo      *echo.Echo
	store     store.Store
	narrative *narrative.Service
	generate  *generate.Service
}

// New wires the API. gen may be nil when no LLM endpoint is configured;
// the generation route then answers 503.
func New(st store.Store, svc *narrative.Service, gen *generate.Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:      e,
		store:     st,
		narrative: svc,
		generate:  gen,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")

	api.GET("/stories", s.handleListStories)
	api.POST("/stories", s.handleCreateStory)
	api.GET("/stories/:id/structure", s.handleGetStructure)
	api.PUT("/stories/:id", s.handleUpdateStory)
	api.DELETE("/stories/:id", s.handleDeleteStory)
	api.POST("/stories/:id/generate", s.handleGenerateOutline)

	api.POST("/parts", s.handleCreatePart)
	api.PUT("/parts/:id", s.handleUpdatePart)
	api.DELETE("/parts/:id", s.handleDeletePart)

	api.POST("/chapters", s.handleCreateChapter)
	api.PUT("/chapters/:id", s.handleUpdateChapter)
	api.DELETE("/chapters/:id", s.handleDeleteChapter)

	api.POST("/scenes", s.handleCreateScene)
	api.PUT("/scenes/:id", s.handleUpdateScene)
	api.DELETE("/scenes/:id", s.handleDeleteScene)

	api.POST("/characters", s.handleCreateCharacter)
	api.PUT("/characters/:id", s.handleUpdateCharacter)
	api.DELETE("/characters/:id", s.handleDeleteCharacter)

	api.POST("/settings", s.handleCreateSetting)
	api.PUT("/settings/:id", s.handleUpdateSetting)
	api.DELETE("/settings/:id", s.handleDeleteSetting)
}

func (s *Server) Start(addr string) error {
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "Fictures Narrative API",
		"status":  "ok",
	})
}

// viewerID identifies the requesting user. Authentication proper lives in
// front of this service; the header is trusted here.
func viewerID(c echo.Context) string {
	return c.Request().Header.Get("X-Viewer-ID")
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError maps the store taxonomy onto status codes: missing entity 404,
// rejected write 400, anything else a retryable 502.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, store.ErrConflict):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "temporarily unavailable, retry"})
	}
}

func badRequest(c echo.Context, field, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Field: field})
}
