// Package cache is the keyed snapshot store for assembled story trees.
//
// Entries are derived, read-only snapshots: the relational store is the sole
// source of truth and every entry is rebuildable from it. An entry is either
// absent or populated; invalidation and TTL expiry both just delete.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate deletes every entry for the story: the shared public entry
	// and all per-viewer private entries.
	Invalidate(ctx context.Context, storyID string) error
}

// PublicKey is shared across all readers of a published story. One entry per
// (story, scene depth) pair, however many readers there are.
func PublicKey(storyID string, includeScenes bool) string {
	return fmt.Sprintf("story:%s:structure:scenes:%t:public", storyID, includeScenes)
}

// PrivateKey scopes draft content to a single viewer. Drafts cannot share an
// entry because visibility differs per viewer. Like the public key it carries
// the scene depth, so a shallow entry can never answer a deep read.
func PrivateKey(storyID, viewerID string, includeScenes bool) string {
	return fmt.Sprintf("story:%s:user:%s:scenes:%t", storyID, viewerID, includeScenes)
}

func storyPrefix(storyID string) string {
	return fmt.Sprintf("story:%s:", storyID)
}
