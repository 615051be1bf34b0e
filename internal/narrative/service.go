package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"fictures/internal/cache"
	"fictures/internal/store"
)

// Service is the read-through layer over the assembler. Published stories
// share one cache entry across all readers; drafts are cached per viewer and
// only readable by their author.
type Service struct {
	assembler *Assembler
	cache     cache.Cache

	publicTTL  time.Duration
	privateTTL time.Duration

	// retryDelay spaces the single async re-attempt after a failed
	// invalidation. Overridable in tests.
	retryDelay time.Duration
}

func NewService(reader EntityReader, c cache.Cache, publicTTL, privateTTL time.Duration) *Service {
	return &Service{
		assembler:  NewAssembler(reader),
		cache:      c,
		publicTTL:  publicTTL,
		privateTTL: privateTTL,
		retryDelay: 5 * time.Second,
	}
}

// StoryStructure returns the assembled tree for a story, serving from cache
// when possible. viewerID identifies the requesting user; it may be empty
// for anonymous readers, who can only see published stories.
//
// A cache backend failure is treated as a forced miss: the assembler path
// still answers from the relational store.
func (s *Service) StoryStructure(ctx context.Context, storyID string, includeScenes bool, viewerID string) (*StoryTree, error) {
	publicKey := cache.PublicKey(storyID, includeScenes)
	if tree := s.cachedTree(ctx, publicKey); tree != nil {
		return tree, nil
	}
	privateKey := cache.PrivateKey(storyID, viewerID, includeScenes)
	if viewerID != "" {
		// A private entry exists only if this viewer was authorized when it
		// was populated, so a hit needs no further visibility check.
		if tree := s.cachedTree(ctx, privateKey); tree != nil {
			return tree, nil
		}
	}

	tree, err := s.assembler.Assemble(ctx, storyID, includeScenes)
	if err != nil {
		return nil, err
	}

	var key string
	var ttl time.Duration
	switch tree.Story.Visibility {
	case store.VisibilityPublic:
		key, ttl = publicKey, s.publicTTL
	default:
		// Drafts are invisible to everyone but their author. Report the same
		// not-found the caller would see for a nonexistent story.
		if viewerID == "" || viewerID != tree.Story.AuthorID {
			return nil, fmt.Errorf("story %s: %w", storyID, store.ErrNotFound)
		}
		key, ttl = privateKey, s.privateTTL
	}

	encoded, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encoding story tree: %w", err)
	}
	if err := s.cache.Set(ctx, key, encoded, ttl); err != nil {
		log.Warn("cache set failed, serving uncached", "story", storyID, "err", err)
	}

	return tree, nil
}

func (s *Service) cachedTree(ctx context.Context, key string) *StoryTree {
	encoded, err := s.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrMiss) {
		return nil
	}
	if err != nil {
		log.Warn("cache get failed, treating as miss", "key", key, "err", err)
		return nil
	}

	var tree StoryTree
	if err := json.Unmarshal(encoded, &tree); err != nil {
		log.Warn("corrupt cache entry, treating as miss", "key", key, "err", err)
		return nil
	}
	return &tree
}

// OnEntityMutated evicts every cache entry for the story. Call it after the
// write transaction commits, never before: invalidating first would let a
// concurrent read repopulate the cache from pre-write state.
//
// An invalidation failure never fails the write; staleness is bounded by TTL.
// One async retry narrows the window.
func (s *Service) OnEntityMutated(ctx context.Context, storyID string) {
	err := s.cache.Invalidate(ctx, storyID)
	if err == nil {
		return
	}
	log.Warn("cache invalidation failed, retrying", "story", storyID, "err", err)

	go func(ctx context.Context) {
		time.Sleep(s.retryDelay)
		if err := s.cache.Invalidate(ctx, storyID); err != nil {
			log.Error("cache invalidation retry failed, stale reads until ttl expiry", "story", storyID, "err", err)
		}
	}(context.WithoutCancel(ctx))
}
