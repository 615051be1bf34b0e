package narrative

import (
	"context"
	"errors"
	"testing"
	"time"

	"fictures/internal/cache"
	"fictures/internal/store"
)

type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (failingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (failingCache) Invalidate(ctx context.Context, storyID string) error {
	return errors.New("connection refused")
}

func newTestService(reader EntityReader, c cache.Cache) *Service {
	s := NewService(reader, c, 10*time.Minute, 3*time.Minute)
	s.retryDelay = time.Millisecond
	return s
}

func TestStoryStructureReadThrough(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader()
	seedScenario(reader)
	mem := cache.NewMemory()
	svc := newTestService(reader, mem)

	tree, err := svc.StoryStructure(ctx, "S1", true, "")
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if tree.Story.ID != "S1" {
		t.Fatalf("unexpected story: %q", tree.Story.ID)
	}
	first := reader.queryCount()

	// Second read must be served from cache: no further store queries.
	again, err := svc.StoryStructure(ctx, "S1", true, "")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if reader.queryCount() != first {
		t.Fatalf("expected cache hit, store queried %d more times", reader.queryCount()-first)
	}
	if again.Story.ID != tree.Story.ID || len(again.Parts) != len(tree.Parts) {
		t.Fatalf("cached tree differs from assembled tree")
	}
	if len(again.Parts[0].Chapters[0].Scenes) != 2 {
		t.Fatalf("cached tree lost scenes")
	}
}

func TestStoryStructurePublicKeyShared(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader()
	seedScenario(reader)
	mem := cache.NewMemory()
	svc := newTestService(reader, mem)

	if _, err := svc.StoryStructure(ctx, "S1", true, "viewer1"); err != nil {
		t.Fatalf("read as viewer1: %v", err)
	}

	// A published story caches under the shared public key, not per viewer.
	if _, err := mem.Get(ctx, cache.PublicKey("S1", true)); err != nil {
		t.Fatalf("expected shared public entry: %v", err)
	}
	if _, err := mem.Get(ctx, cache.PrivateKey("S1", "viewer1", true)); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("expected no per-viewer entry for published story")
	}

	first := reader.queryCount()
	if _, err := svc.StoryStructure(ctx, "S1", true, "viewer2"); err != nil {
		t.Fatalf("read as viewer2: %v", err)
	}
	if reader.queryCount() != first {
		t.Fatalf("second viewer missed the shared entry")
	}
}

func TestStoryStructurePrivateScopedToAuthor(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader()
	seedScenario(reader)
	reader.stories["S1"].Visibility = store.VisibilityPrivate
	mem := cache.NewMemory()
	svc := newTestService(reader, mem)

	if _, err := svc.StoryStructure(ctx, "S1", true, "author1"); err != nil {
		t.Fatalf("author read: %v", err)
	}
	if _, err := mem.Get(ctx, cache.PrivateKey("S1", "author1", true)); err != nil {
		t.Fatalf("expected per-viewer entry: %v", err)
	}
	if _, err := mem.Get(ctx, cache.PublicKey("S1", true)); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("draft leaked into shared public entry")
	}

	if _, err := svc.StoryStructure(ctx, "S1", true, "stranger"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not-found for non-author, got %v", err)
	}
	if _, err := svc.StoryStructure(ctx, "S1", true, ""); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not-found for anonymous viewer, got %v", err)
	}
}

func TestStoryStructurePrivateMixedDepths(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader()
	seedScenario(reader)
	reader.stories["S1"].Visibility = store.VisibilityPrivate
	mem := cache.NewMemory()
	svc := newTestService(reader, mem)

	// A shallow author read populates a per-viewer entry.
	shallow, err := svc.StoryStructure(ctx, "S1", false, "author1")
	if err != nil {
		t.Fatalf("shallow read: %v", err)
	}
	if len(shallow.Parts[0].Chapters[0].Scenes) != 0 {
		t.Fatalf("shallow read returned scenes")
	}

	// A deep read by the same viewer must not be answered by the shallow
	// entry: the two depths cache under distinct keys.
	deep, err := svc.StoryStructure(ctx, "S1", true, "author1")
	if err != nil {
		t.Fatalf("deep read: %v", err)
	}
	if len(deep.Parts[0].Chapters[0].Scenes) != 2 {
		t.Fatalf("deep read lost scenes, got %d", len(deep.Parts[0].Chapters[0].Scenes))
	}

	if _, err := mem.Get(ctx, cache.PrivateKey("S1", "author1", false)); err != nil {
		t.Fatalf("expected shallow entry: %v", err)
	}
	if _, err := mem.Get(ctx, cache.PrivateKey("S1", "author1", true)); err != nil {
		t.Fatalf("expected deep entry: %v", err)
	}

	// Both entries now serve their own depth from cache.
	first := reader.queryCount()
	if _, err := svc.StoryStructure(ctx, "S1", false, "author1"); err != nil {
		t.Fatalf("shallow re-read: %v", err)
	}
	if _, err := svc.StoryStructure(ctx, "S1", true, "author1"); err != nil {
		t.Fatalf("deep re-read: %v", err)
	}
	if reader.queryCount() != first {
		t.Fatalf("expected both depths served from cache")
	}
}

func TestOnEntityMutatedForcesReload(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader()
	seedScenario(reader)
	mem := cache.NewMemory()
	svc := newTestService(reader, mem)

	if _, err := svc.StoryStructure(ctx, "S1", true, ""); err != nil {
		t.Fatalf("populate: %v", err)
	}

	// Delete the second chapter behind the cache's back, then invalidate.
	reader.chapters["S1"] = reader.chapters["S1"][:1]
	svc.OnEntityMutated(ctx, "S1")

	if _, err := mem.Get(ctx, cache.PublicKey("S1", true)); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("expected miss after invalidation, got %v", err)
	}

	tree, err := svc.StoryStructure(ctx, "S1", true, "")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(tree.Parts[0].Chapters) != 1 {
		t.Fatalf("expected reload to reflect deletion, got %d chapters", len(tree.Parts[0].Chapters))
	}
}

func TestStoryStructureCacheBackendDown(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader()
	seedScenario(reader)
	svc := newTestService(reader, failingCache{})

	// Every cache round-trip fails; reads must still succeed from the store.
	for i := 0; i < 2; i++ {
		tree, err := svc.StoryStructure(ctx, "S1", true, "")
		if err != nil {
			t.Fatalf("read %d with cache down: %v", i, err)
		}
		if len(tree.Parts) != 1 {
			t.Fatalf("read %d returned wrong tree", i)
		}
	}

	// Invalidation failure must not panic or block.
	svc.OnEntityMutated(ctx, "S1")
}

func TestStoryStructureEmptyStory(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader()
	reader.stories["S1"] = &store.Story{ID: "S1", Visibility: store.VisibilityPublic, AuthorID: "author1"}
	mem := cache.NewMemory()
	svc := newTestService(reader, mem)

	// Round-trip a tree with zero parts, chapters and scenes.
	tree, err := svc.StoryStructure(ctx, "S1", true, "")
	if err != nil {
		t.Fatalf("assemble empty story: %v", err)
	}
	cached, err := svc.StoryStructure(ctx, "S1", true, "")
	if err != nil {
		t.Fatalf("cached empty story: %v", err)
	}
	if len(cached.Parts) != 0 || len(cached.Chapters) != 0 {
		t.Fatalf("empty story gained children through cache round-trip")
	}
	if len(tree.PartIDs) != 0 || len(cached.PartIDs) != 0 {
		t.Fatalf("empty story has non-empty id lists")
	}
}
