package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"fictures/internal/store"
)

type storyRequest struct {
	Title          string `json:"title"`
	Visibility     string `json:"visibility"`
	AuthorID       string `json:"authorId"`
	Summary        string `json:"summary"`
	Tone           string `json:"tone"`
	MoralFramework string `json:"moralFramework"`
}

func (r *storyRequest) toInput() (store.StoryInput, error) {
	visibility := store.Visibility(r.Visibility)
	if r.Visibility == "" {
		visibility = store.VisibilityPrivate
	}
	if !visibility.Valid() {
		return store.StoryInput{}, errors.New("invalid visibility")
	}
	return store.StoryInput{
		Title:          r.Title,
		Visibility:     visibility,
		AuthorID:       r.AuthorID,
		Summary:        r.Summary,
		Tone:           r.Tone,
		MoralFramework: r.MoralFramework,
	}, nil
}

func (s *Server) handleListStories(c echo.Context) error {
	stories, err := s.store.ListStories(c.Request().Context(), c.QueryParam("author"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stories)
}

func (s *Server) handleCreateStory(c echo.Context) error {
	var req storyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid request body")
	}
	if req.Title == "" {
		return badRequest(c, "title", "title is required")
	}
	if req.AuthorID == "" {
		return badRequest(c, "authorId", "authorId is required")
	}
	in, err := req.toInput()
	if err != nil {
		return badRequest(c, "visibility", "visibility must be public or private")
	}

	story, err := s.store.CreateStory(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, story)
}

func (s *Server) handleGetStructure(c echo.Context) error {
	includeScenes := c.QueryParam("scenes") == "true"

	tree, err := s.narrative.StoryStructure(c.Request().Context(), c.Param("id"), includeScenes, viewerID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tree)
}

func (s *Server) handleUpdateStory(c echo.Context) error {
	var req storyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid request body")
	}
	in, err := req.toInput()
	if err != nil {
		return badRequest(c, "visibility", "visibility must be public or private")
	}

	ctx := c.Request().Context()
	story, err := s.store.UpdateStory(ctx, c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	// Visibility flips move the story between cache scopes; a full evict
	// covers both.
	s.narrative.OnEntityMutated(ctx, story.ID)
	return c.JSON(http.StatusOK, story)
}

func (s *Server) handleDeleteStory(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if err := s.store.DeleteStory(ctx, id); err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, id)
	return c.NoContent(http.StatusNoContent)
}

type generateRequest struct {
	Premise string `json:"premise"`
}

type generateResponse struct {
	Parts    int `json:"parts"`
	Chapters int `json:"chapters"`
	Scenes   int `json:"scenes"`
}

func (s *Server) handleGenerateOutline(c echo.Context) error {
	if s.generate == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "generation is not configured"})
	}

	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid request body")
	}
	if req.Premise == "" {
		return badRequest(c, "premise", "premise is required")
	}

	parts, chapters, scenes, err := s.generate.GenerateOutline(c.Request().Context(), c.Param("id"), req.Premise)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, generateResponse{Parts: parts, Chapters: chapters, Scenes: scenes})
}
