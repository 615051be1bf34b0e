package postgres

import (
	"context"

	"github.com/segmentio/ksuid"

	"fictures/internal/store"
)

func (c *Client) CreateScene(ctx context.Context, in store.SceneInput) (*store.Scene, error) {
	characterIDs := in.CharacterIDs
	if len(characterIDs) == 0 {
		characterIDs = nil
	}

	// story_id is denormalized from the parent chapter so a scene write can
	// be attributed to its story without a join on the invalidation path.
	query := `
INSERT INTO scenes (id, chapter_id, story_id, setting_id, character_ids, order_index, title, prose)
SELECT $1, $2, ch.story_id, $3, COALESCE($4, '{}'::text[]), $5, $6, $7
FROM chapters ch
WHERE ch.id = $2
RETURNING id, chapter_id, story_id, setting_id, character_ids, order_index, title, prose
`
	row := c.pool.QueryRow(ctx, query,
		ksuid.New().String(),
		in.ChapterID,
		in.SettingID,
		characterIDs,
		in.OrderIndex,
		in.Title,
		in.Prose,
	)
	sc, err := scanScene(row)
	if err != nil {
		return nil, mapError("creating scene", err)
	}
	return sc, nil
}

// ListScenesByChapters fetches scenes for the whole chapter set in one
// batched query. Never call this per chapter.
func (c *Client) ListScenesByChapters(ctx context.Context, chapterIDs []string) ([]store.Scene, error) {
	if len(chapterIDs) == 0 {
		return []store.Scene{}, nil
	}

	query := `
SELECT id, chapter_id, story_id, setting_id, character_ids, order_index, title, prose
FROM scenes
WHERE chapter_id = ANY($1)
ORDER BY chapter_id, order_index
`
	rows, err := c.pool.Query(ctx, query, chapterIDs)
	if err != nil {
		return nil, mapError("listing scenes", err)
	}
	defer rows.Close()

	var scenes []store.Scene
	for rows.Next() {
		sc, err := scanScene(rows)
		if err != nil {
			return nil, mapError("scanning scene", err)
		}
		scenes = append(scenes, *sc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterating scenes", err)
	}

	if scenes == nil {
		scenes = []store.Scene{}
	}
	return scenes, nil
}

func (c *Client) UpdateScene(ctx context.Context, id string, in store.SceneInput) (*store.Scene, error) {
	characterIDs := in.CharacterIDs
	if len(characterIDs) == 0 {
		characterIDs = nil
	}

	// A scene may move between chapters of its own story, so story_id never
	// changes and the owning story stays the invalidation target. A chapter
	// in another story does not match the join and the update reports not
	// found.
	query := `
UPDATE scenes
SET chapter_id = ch.id, setting_id = $3, character_ids = COALESCE($4, '{}'::text[]), order_index = $5, title = $6, prose = $7
FROM chapters ch
WHERE scenes.id = $1 AND ch.id = $2 AND ch.story_id = scenes.story_id
RETURNING scenes.id, scenes.chapter_id, scenes.story_id, scenes.setting_id, scenes.character_ids, scenes.order_index, scenes.title, scenes.prose
`
	sc, err := scanScene(c.pool.QueryRow(ctx, query, id, in.ChapterID, in.SettingID, characterIDs, in.OrderIndex, in.Title, in.Prose))
	if err != nil {
		return nil, mapError("updating scene", err)
	}
	return sc, nil
}

func (c *Client) DeleteScene(ctx context.Context, id string) (string, error) {
	var storyID string
	err := c.pool.QueryRow(ctx, `DELETE FROM scenes WHERE id = $1 RETURNING story_id`, id).Scan(&storyID)
	if err != nil {
		return "", mapError("deleting scene", err)
	}
	return storyID, nil
}

func scanScene(row rowScanner) (*store.Scene, error) {
	var sc store.Scene
	err := row.Scan(&sc.ID, &sc.ChapterID, &sc.StoryID, &sc.SettingID, &sc.CharacterIDs, &sc.OrderIndex, &sc.Title, &sc.Prose)
	if err != nil {
		return nil, err
	}
	if sc.CharacterIDs == nil {
		sc.CharacterIDs = []string{}
	}
	return &sc, nil
}
