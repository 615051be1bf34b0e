package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// All DDL runs in one call, which PostgreSQL executes inside an implicit
	// transaction. IF NOT EXISTS keeps this idempotent across restarts and
	// fresh databases alike.
	//
	// Ownership is foreign-key only: every descendant row carries a story_id
	// with ON DELETE CASCADE, and no table stores child-id arrays. Soft
	// references (chapters.character_id, scenes.setting_id,
	// scenes.character_ids) deliberately have no FK so a referenced entity
	// can be deleted without touching the referrer.
	ddl := `
CREATE TABLE IF NOT EXISTS stories (
    id              TEXT PRIMARY KEY,
    title           TEXT NOT NULL,
    visibility      TEXT NOT NULL DEFAULT 'private',
    author_id       TEXT NOT NULL,
    summary         TEXT NOT NULL DEFAULT '',
    tone            TEXT NOT NULL DEFAULT '',
    moral_framework TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT ck_story_visibility CHECK (visibility IN ('public', 'private'))
);

CREATE TABLE IF NOT EXISTS parts (
    id          TEXT PRIMARY KEY,
    story_id    TEXT NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
    act_number  INTEGER NOT NULL DEFAULT 1,
    order_index INTEGER NOT NULL,
    title       TEXT NOT NULL DEFAULT '',
    arc         TEXT NOT NULL DEFAULT '',
    CONSTRAINT ck_part_act CHECK (act_number BETWEEN 1 AND 3),
    CONSTRAINT uq_part_order UNIQUE (story_id, order_index)
);

CREATE TABLE IF NOT EXISTS characters (
    id          TEXT PRIMARY KEY,
    story_id    TEXT NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    image_url   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS settings (
    id          TEXT PRIMARY KEY,
    story_id    TEXT NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    image_url   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS chapters (
    id           TEXT PRIMARY KEY,
    story_id     TEXT NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
    part_id      TEXT REFERENCES parts(id) ON DELETE SET NULL,
    character_id TEXT,
    order_index  INTEGER NOT NULL,
    title        TEXT NOT NULL DEFAULT '',
    summary      TEXT NOT NULL DEFAULT '',
    CONSTRAINT uq_chapter_order UNIQUE (story_id, order_index)
);

CREATE TABLE IF NOT EXISTS scenes (
    id            TEXT PRIMARY KEY,
    chapter_id    TEXT NOT NULL REFERENCES chapters(id) ON DELETE CASCADE,
    story_id      TEXT NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
    setting_id    TEXT,
    character_ids TEXT[] NOT NULL DEFAULT '{}',
    order_index   INTEGER NOT NULL,
    title         TEXT NOT NULL DEFAULT '',
    prose         TEXT NOT NULL DEFAULT '',
    CONSTRAINT uq_scene_order UNIQUE (chapter_id, order_index)
);

CREATE INDEX IF NOT EXISTS idx_stories_author ON stories (author_id);
CREATE INDEX IF NOT EXISTS idx_parts_story ON parts (story_id, order_index);
CREATE INDEX IF NOT EXISTS idx_chapters_story ON chapters (story_id, order_index);
CREATE INDEX IF NOT EXISTS idx_chapters_part ON chapters (part_id);
CREATE INDEX IF NOT EXISTS idx_scenes_chapter ON scenes (chapter_id, order_index);
CREATE INDEX IF NOT EXISTS idx_scenes_story ON scenes (story_id);
CREATE INDEX IF NOT EXISTS idx_characters_story ON characters (story_id);
CREATE INDEX IF NOT EXISTS idx_settings_story ON settings (story_id);
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
