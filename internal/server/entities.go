package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fictures/internal/store"
)

// Every handler here follows the same discipline: commit the write, then
// fire the story's invalidation. The trigger runs after the store call
// returns so a concurrent read can only ever repopulate the cache from
// fully-old or fully-new rows.

type partRequest struct {
	StoryID    string `json:"storyId"`
	ActNumber  int    `json:"actNumber"`
	OrderIndex int    `json:"orderIndex"`
	Title      string `json:"title"`
	Arc        string `json:"arc"`
}

func (r *partRequest) toInput() store.PartInput {
	return store.PartInput{
		StoryID:    r.StoryID,
		ActNumber:  r.ActNumber,
		OrderIndex: r.OrderIndex,
		Title:      r.Title,
		Arc:        r.Arc,
	}
}

func (s *Server) handleCreatePart(c echo.Context) error {
	var req partRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid request body")
	}
	if req.StoryID == "" {
		return badRequest(c, "storyId", "storyId is required")
	}

	ctx := c.Request().Context()
	part, err := s.store.CreatePart(ctx, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, part.StoryID)
	return c.JSON(http.StatusCreated, part)
}

func (s *Server) handleUpdatePart(c echo.Context) error {
	var req partRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid request body")
	}

	ctx := c.Request().Context()
	part, err := s.store.UpdatePart(ctx, c.Param("id"), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, part.StoryID)
	return c.JSON(http.StatusOK, part)
}

func (s *Server) handleDeletePart(c echo.Context) error {
	ctx := c.Request().Context()
	storyID, err := s.store.DeletePart(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, storyID)
	return c.NoContent(http.StatusNoContent)
}

type chapterRequest struct {
	StoryID     string  `json:"storyId"`
	PartID      *string `json:"partId"`
	CharacterID *string `json:"characterId"`
	OrderIndex  int     `json:"orderIndex"`
	Title       string  `json:"title"`
	Summary     string  `json:"summary"`
}

func (r *chapterRequest) toInput() store.ChapterInput {
	return store.ChapterInput{
		StoryID:     r.StoryID,
		PartID:      r.PartID,
		CharacterID: r.CharacterID,
		OrderIndex:  r.OrderIndex,
		Title:       r.Title,
		Summary:     r.Summary,
	}
}

func (s *Server) handleCreateChapter(c echo.Context) error {
	var req chapterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid request body")
	}
	if req.StoryID == "" {
		return badRequest(c, "storyId", "storyId is required")
	}

	ctx := c.Request().Context()
	chapter, err := s.store.CreateChapter(ctx, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, chapter.StoryID)
	return c.JSON(http.StatusCreated, chapter)
}

func (s *Server) handleUpdateChapter(c echo.Context) error {
	var req chapterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid request body")
	}

	ctx := c.Request().Context()
	chapter, err := s.store.UpdateChapter(ctx, c.Param("id"), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, chapter.StoryID)
	return c.JSON(http.StatusOK, chapter)
}

func (s *Server) handleDeleteChapter(c echo.Context) error {
	ctx := c.Request().Context()
	storyID, err := s.store.DeleteChapter(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, storyID)
	return c.NoContent(http.StatusNoContent)
}

type sceneRequest struct {
	ChapterID    string   `json:"chapterId"`
	SettingID    *string  `json:"settingId"`
	CharacterIDs []string `json:"characterIds"`
	OrderIndex   int      `json:"orderIndex"`
	Title        string   `json:"title"`
	Prose        string   `json:"prose"`
}

func (r *sceneRequest) toInput() store.SceneInput {
	return store.SceneInput{
		ChapterID:    r.ChapterID,
		SettingID:    r.SettingID,
		CharacterIDs: r.CharacterIDs,
		OrderIndex:   r.OrderIndex,
		Title:        r.Title,
		Prose:        r.Prose,
	}
}

func (s *Server) handleCreateScene(c echo.Context) error {
	var req sceneRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid request body")
	}
	if req.ChapterID == "" {
		return badRequest(c, "chapterId", "chapterId is required")
	}

	ctx := c.Request().Context()
	scene, err := s.store.CreateScene(ctx, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, scene.StoryID)
	return c.JSON(http.StatusCreated, scene)
}

func (s *Server) handleUpdateScene(c echo.Context) error {
	var req sceneRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid request body")
	}
	if req.ChapterID == "" {
		return badRequest(c, "chapterId", "chapterId is required")
	}

	ctx := c.Request().Context()
	scene, err := s.store.UpdateScene(ctx, c.Param("id"), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, scene.StoryID)
	return c.JSON(http.StatusOK, scene)
}

func (s *Server) handleDeleteScene(c echo.Context) error {
	ctx := c.Request().Context()
	storyID, err := s.store.DeleteScene(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, storyID)
	return c.NoContent(http.StatusNoContent)
}

type characterRequest struct {
	StoryID     string `json:"storyId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

func (s *Server) handleCreateCharacter(c echo.Context) error {
	var req characterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid request body")
	}
	if req.StoryID == "" {
		return badRequest(c, "storyId", "storyId is required")
	}
	if req.Name == "" {
		return badRequest(c, "name", "name is required")
	}

	ctx := c.Request().Context()
	character, err := s.store.CreateCharacter(ctx, store.CharacterInput{
		StoryID:     req.StoryID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, character.StoryID)
	return c.JSON(http.StatusCreated, character)
}

func (s *Server) handleUpdateCharacter(c echo.Context) error {
	var req characterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid request body")
	}

	ctx := c.Request().Context()
	character, err := s.store.UpdateCharacter(ctx, c.Param("id"), store.CharacterInput{
		StoryID:     req.StoryID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, character.StoryID)
	return c.JSON(http.StatusOK, character)
}

func (s *Server) handleDeleteCharacter(c echo.Context) error {
	ctx := c.Request().Context()
	storyID, err := s.store.DeleteCharacter(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, storyID)
	return c.NoContent(http.StatusNoContent)
}

type settingRequest struct {
	StoryID     string `json:"storyId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

func (s *Server) handleCreateSetting(c echo.Context) error {
	var req settingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid request body")
	}
	if req.StoryID == "" {
		return badRequest(c, "storyId", "storyId is required")
	}
	if req.Name == "" {
		return badRequest(c, "name", "name is required")
	}

	ctx := c.Request().Context()
	setting, err := s.store.CreateSetting(ctx, store.SettingInput{
		StoryID:     req.StoryID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, setting.StoryID)
	return c.JSON(http.StatusCreated, setting)
}

func (s *Server) handleUpdateSetting(c echo.Context) error {
	var req settingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid request body")
	}

	ctx := c.Request().Context()
	setting, err := s.store.UpdateSetting(ctx, c.Param("id"), store.SettingInput{
		StoryID:     req.StoryID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, setting.StoryID)
	return c.JSON(http.StatusOK, setting)
}

func (s *Server) handleDeleteSetting(c echo.Context) error {
	ctx := c.Request().Context()
	storyID, err := s.store.DeleteSetting(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	s.narrative.OnEntityMutated(ctx, storyID)
	return c.NoContent(http.StatusNoContent)
}
