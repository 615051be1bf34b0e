package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"fictures/internal/cache"
	"fictures/internal/narrative"
	"fictures/internal/store"
)

type mockQuerier struct {
	summaries  []store.StorySummary
	character  *store.Character
	characters []store.Character

	lastListAuthor      string
	lastCharacterID     string
	lastCharactersStory string
}

func (m *mockQuerier) ListStories(ctx context.Context, authorID string) ([]store.StorySummary, error) {
	m.lastListAuthor = authorID
	return m.summaries, nil
}

func (m *mockQuerier) GetCharacter(ctx context.Context, id string) (*store.Character, error) {
	m.lastCharacterID = id
	if m.character == nil {
		return nil, store.ErrNotFound
	}
	return m.character, nil
}

func (m *mockQuerier) ListCharacters(ctx context.Context, storyID string) ([]store.Character, error) {
	m.lastCharactersStory = storyID
	return m.characters, nil
}

type mockReader struct {
	story    *store.Story
	chapters []store.Chapter
}

func (m *mockReader) GetStory(ctx context.Context, id string) (*store.Story, error) {
	if m.story == nil || m.story.ID != id {
		return nil, store.ErrNotFound
	}
	return m.story, nil
}

func (m *mockReader) ListParts(ctx context.Context, storyID string) ([]store.Part, error) {
	return nil, nil
}

func (m *mockReader) ListChapters(ctx context.Context, storyID string) ([]store.Chapter, error) {
	return m.chapters, nil
}

func (m *mockReader) ListScenesByChapters(ctx context.Context, chapterIDs []string) ([]store.Scene, error) {
	return nil, nil
}

func testNarrative(reader narrative.EntityReader) *narrative.Service {
	return narrative.NewService(reader, cache.NewMemory(), 10*time.Minute, 3*time.Minute)
}

func TestListStories(t *testing.T) {
	querier := &mockQuerier{
		summaries: []store.StorySummary{{ID: "s1", Title: "The Long Night", Visibility: store.VisibilityPublic, AuthorID: "author1"}},
	}
	server := NewServer(querier, testNarrative(&mockReader{}), "test")

	_, output, err := server.handleListStories(context.Background(), nil, ListStoriesInput{AuthorID: "author1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Stories) != 1 || output.Stories[0].Title != "The Long Night" {
		t.Fatalf("unexpected output: %+v", output)
	}
	if querier.lastListAuthor != "author1" {
		t.Fatalf("author filter not forwarded")
	}
}

func TestGetStoryStructure(t *testing.T) {
	reader := &mockReader{
		story:    &store.Story{ID: "s1", Title: "T", Visibility: store.VisibilityPublic, AuthorID: "author1"},
		chapters: []store.Chapter{{ID: "c1", StoryID: "s1", OrderIndex: 0}},
	}
	server := NewServer(&mockQuerier{}, testNarrative(reader), "test")

	_, output, err := server.handleGetStoryStructure(context.Background(), nil, GetStoryStructureInput{StoryID: "s1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Tree == nil || len(output.Tree.Chapters) != 1 {
		t.Fatalf("unexpected tree: %+v", output.Tree)
	}
}

func TestGetStoryStructure_MissingID(t *testing.T) {
	server := NewServer(&mockQuerier{}, testNarrative(&mockReader{}), "test")

	_, _, err := server.handleGetStoryStructure(context.Background(), nil, GetStoryStructureInput{})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestGetStoryStructure_NotFound(t *testing.T) {
	server := NewServer(&mockQuerier{}, testNarrative(&mockReader{}), "test")

	_, _, err := server.handleGetStoryStructure(context.Background(), nil, GetStoryStructureInput{StoryID: "missing"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetCharacter(t *testing.T) {
	querier := &mockQuerier{
		character: &store.Character{ID: "ch1", StoryID: "s1", Name: "Ash"},
	}
	server := NewServer(querier, testNarrative(&mockReader{}), "test")

	_, output, err := server.handleGetCharacter(context.Background(), nil, GetCharacterInput{CharacterID: "ch1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Name != "Ash" {
		t.Fatalf("unexpected output: %+v", output)
	}
}

func TestGetCharacter_NotFound(t *testing.T) {
	server := NewServer(&mockQuerier{}, testNarrative(&mockReader{}), "test")

	_, _, err := server.handleGetCharacter(context.Background(), nil, GetCharacterInput{CharacterID: "missing"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestListCharacters(t *testing.T) {
	querier := &mockQuerier{
		characters: []store.Character{{ID: "ch1", StoryID: "s1", Name: "Ash"}, {ID: "ch2", StoryID: "s1", Name: "Brook"}},
	}
	server := NewServer(querier, testNarrative(&mockReader{}), "test")

	_, output, err := server.handleListCharacters(context.Background(), nil, ListCharactersInput{StoryID: "s1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Characters) != 2 {
		t.Fatalf("unexpected output: %+v", output)
	}
	if querier.lastCharactersStory != "s1" {
		t.Fatalf("story filter not forwarded")
	}
}
