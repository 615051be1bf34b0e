package narrative

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"fictures/internal/store"
)

type fakeReader struct {
	mu      sync.Mutex
	queries int

	stories  map[string]*store.Story
	parts    map[string][]store.Part
	chapters map[string][]store.Chapter
	scenes   map[string][]store.Scene // keyed by chapter id

	failScenes bool
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		stories:  make(map[string]*store.Story),
		parts:    make(map[string][]store.Part),
		chapters: make(map[string][]store.Chapter),
		scenes:   make(map[string][]store.Scene),
	}
}

func (f *fakeReader) count() {
	f.mu.Lock()
	f.queries++
	f.mu.Unlock()
}

func (f *fakeReader) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries
}

func (f *fakeReader) GetStory(ctx context.Context, id string) (*store.Story, error) {
	f.count()
	s, ok := f.stories[id]
	if !ok {
		return nil, fmt.Errorf("getting story: %w", store.ErrNotFound)
	}
	copied := *s
	return &copied, nil
}

func (f *fakeReader) ListParts(ctx context.Context, storyID string) ([]store.Part, error) {
	f.count()
	return f.parts[storyID], nil
}

func (f *fakeReader) ListChapters(ctx context.Context, storyID string) ([]store.Chapter, error) {
	f.count()
	return f.chapters[storyID], nil
}

func (f *fakeReader) ListScenesByChapters(ctx context.Context, chapterIDs []string) ([]store.Scene, error) {
	f.count()
	if f.failScenes {
		return nil, errors.New("connection reset")
	}
	var scenes []store.Scene
	for _, id := range chapterIDs {
		scenes = append(scenes, f.scenes[id]...)
	}
	return scenes, nil
}

func strPtr(s string) *string { return &s }

// seedScenario builds the reference story: one part, two chapters both under
// the part, two scenes in the first chapter and none in the second.
func seedScenario(f *fakeReader) {
	f.stories["S1"] = &store.Story{ID: "S1", Title: "The Long Night", Visibility: store.VisibilityPublic, AuthorID: "author1"}
	f.parts["S1"] = []store.Part{
		{ID: "p1", StoryID: "S1", ActNumber: 1, OrderIndex: 0, Title: "Act One"},
	}
	f.chapters["S1"] = []store.Chapter{
		{ID: "c1", StoryID: "S1", PartID: strPtr("p1"), OrderIndex: 0, Title: "Arrival"},
		{ID: "c2", StoryID: "S1", PartID: strPtr("p1"), OrderIndex: 1, Title: "Departure"},
	}
	f.scenes["c1"] = []store.Scene{
		{ID: "sc1", ChapterID: "c1", StoryID: "S1", OrderIndex: 0, Title: "Dawn"},
		{ID: "sc2", ChapterID: "c1", StoryID: "S1", OrderIndex: 1, Title: "Dusk"},
	}
}

func TestAssembleScenario(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader()
	seedScenario(reader)

	tree, err := NewAssembler(reader).Assemble(ctx, "S1", true)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if len(tree.Parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(tree.Parts))
	}
	if len(tree.Chapters) != 0 {
		t.Fatalf("expected no root-level chapters, got %d", len(tree.Chapters))
	}

	part := tree.Parts[0]
	if len(part.Chapters) != 2 {
		t.Fatalf("expected 2 chapters under part, got %d", len(part.Chapters))
	}
	if part.Chapters[0].OrderIndex != 0 || part.Chapters[1].OrderIndex != 1 {
		t.Fatalf("chapters out of order: %d, %d", part.Chapters[0].OrderIndex, part.Chapters[1].OrderIndex)
	}
	if len(part.Chapters[0].Scenes) != 2 {
		t.Fatalf("expected 2 scenes in first chapter, got %d", len(part.Chapters[0].Scenes))
	}
	if len(part.Chapters[1].Scenes) != 0 {
		t.Fatalf("expected no scenes in second chapter, got %d", len(part.Chapters[1].Scenes))
	}
	if part.Chapters[0].Scenes[0].OrderIndex != 0 || part.Chapters[0].Scenes[1].OrderIndex != 1 {
		t.Fatalf("scenes out of order")
	}
}

func TestAssembleDerivedIDs(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader()
	seedScenario(reader)

	tree, err := NewAssembler(reader).Assemble(ctx, "S1", true)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	wantParts := []string{"p1"}
	wantChapters := []string{"c1", "c2"}
	wantScenes := []string{"sc1", "sc2"}
	if !equalStrings(tree.PartIDs, wantParts) {
		t.Fatalf("part ids: got %v, want %v", tree.PartIDs, wantParts)
	}
	if !equalStrings(tree.ChapterIDs, wantChapters) {
		t.Fatalf("chapter ids: got %v, want %v", tree.ChapterIDs, wantChapters)
	}
	if !equalStrings(tree.SceneIDs, wantScenes) {
		t.Fatalf("scene ids: got %v, want %v", tree.SceneIDs, wantScenes)
	}
}

func TestAssembleRootChapter(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader()
	reader.stories["S1"] = &store.Story{ID: "S1", Visibility: store.VisibilityPublic, AuthorID: "author1"}
	reader.chapters["S1"] = []store.Chapter{
		{ID: "c1", StoryID: "S1", OrderIndex: 0},
	}

	tree, err := NewAssembler(reader).Assemble(ctx, "S1", true)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(tree.Chapters) != 1 {
		t.Fatalf("expected chapter attached to story root, got %d", len(tree.Chapters))
	}
}

func TestAssembleDanglingPartRef(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader()
	reader.stories["S1"] = &store.Story{ID: "S1", Visibility: store.VisibilityPublic, AuthorID: "author1"}
	reader.chapters["S1"] = []store.Chapter{
		{ID: "c1", StoryID: "S1", PartID: strPtr("gone"), OrderIndex: 0},
	}

	tree, err := NewAssembler(reader).Assemble(ctx, "S1", true)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(tree.Chapters) != 1 {
		t.Fatalf("expected chapter with dangling part ref at story root, got %d", len(tree.Chapters))
	}
}

func TestAssembleNilSetting(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader()
	reader.stories["S1"] = &store.Story{ID: "S1", Visibility: store.VisibilityPublic, AuthorID: "author1"}
	reader.chapters["S1"] = []store.Chapter{
		{ID: "c1", StoryID: "S1", OrderIndex: 0},
	}
	reader.scenes["c1"] = []store.Scene{
		{ID: "sc1", ChapterID: "c1", StoryID: "S1", SettingID: nil, OrderIndex: 0},
	}

	tree, err := NewAssembler(reader).Assemble(ctx, "S1", true)
	if err != nil {
		t.Fatalf("assemble with nil setting: %v", err)
	}
	scene := tree.Chapters[0].Scenes[0]
	if scene.SettingID != nil {
		t.Fatalf("expected nil setting id, got %v", *scene.SettingID)
	}
}

func TestAssembleQueryCountConstant(t *testing.T) {
	ctx := context.Background()

	counts := make(map[int]int)
	for _, n := range []int{1, 10, 100} {
		reader := newFakeReader()
		reader.stories["S1"] = &store.Story{ID: "S1", Visibility: store.VisibilityPublic, AuthorID: "author1"}
		var chapters []store.Chapter
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("c%d", i)
			chapters = append(chapters, store.Chapter{ID: id, StoryID: "S1", OrderIndex: i})
			reader.scenes[id] = []store.Scene{{ID: "s" + id, ChapterID: id, StoryID: "S1", OrderIndex: 0}}
		}
		reader.chapters["S1"] = chapters

		if _, err := NewAssembler(reader).Assemble(ctx, "S1", true); err != nil {
			t.Fatalf("assemble with %d chapters: %v", n, err)
		}
		counts[n] = reader.queryCount()
	}

	if counts[1] != counts[10] || counts[10] != counts[100] {
		t.Fatalf("query count grows with chapter count: %v", counts)
	}
	if counts[1] != 4 {
		t.Fatalf("expected 4 queries (story, parts, chapters, scenes), got %d", counts[1])
	}
}

func TestAssembleStoryNotFound(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader()

	_, err := NewAssembler(reader).Assemble(ctx, "missing", true)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssembleSceneFetchFailureAborts(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader()
	seedScenario(reader)
	reader.failScenes = true

	tree, err := NewAssembler(reader).Assemble(ctx, "S1", true)
	if err == nil {
		t.Fatalf("expected error")
	}
	if tree != nil {
		t.Fatalf("expected no partial tree on fetch failure")
	}
}

func TestAssembleWithoutScenes(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader()
	seedScenario(reader)

	tree, err := NewAssembler(reader).Assemble(ctx, "S1", false)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if reader.queryCount() != 3 {
		t.Fatalf("expected 3 queries without scenes, got %d", reader.queryCount())
	}
	if len(tree.SceneIDs) != 0 {
		t.Fatalf("expected no scene ids, got %v", tree.SceneIDs)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
