package postgres

import (
	"context"

	"github.com/segmentio/ksuid"

	"fictures/internal/store"
)

func (c *Client) CreateChapter(ctx context.Context, in store.ChapterInput) (*store.Chapter, error) {
	query := `
INSERT INTO chapters (id, story_id, part_id, character_id, order_index, title, summary)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, story_id, part_id, character_id, order_index, title, summary
`
	row := c.pool.QueryRow(ctx, query,
		ksuid.New().String(),
		in.StoryID,
		in.PartID,
		in.CharacterID,
		in.OrderIndex,
		in.Title,
		in.Summary,
	)
	ch, err := scanChapter(row)
	if err != nil {
		return nil, mapError("creating chapter", err)
	}
	return ch, nil
}

func (c *Client) ListChapters(ctx context.Context, storyID string) ([]store.Chapter, error) {
	query := `
SELECT id, story_id, part_id, character_id, order_index, title, summary
FROM chapters
WHERE story_id = $1
ORDER BY order_index
`
	rows, err := c.pool.Query(ctx, query, storyID)
	if err != nil {
		return nil, mapError("listing chapters", err)
	}
	defer rows.Close()

	var chapters []store.Chapter
	for rows.Next() {
		ch, err := scanChapter(rows)
		if err != nil {
			return nil, mapError("scanning chapter", err)
		}
		chapters = append(chapters, *ch)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterating chapters", err)
	}

	if chapters == nil {
		chapters = []store.Chapter{}
	}
	return chapters, nil
}

func (c *Client) UpdateChapter(ctx context.Context, id string, in store.ChapterInput) (*store.Chapter, error) {
	query := `
UPDATE chapters
SET part_id = $2, character_id = $3, order_index = $4, title = $5, summary = $6
WHERE id = $1
RETURNING id, story_id, part_id, character_id, order_index, title, summary
`
	ch, err := scanChapter(c.pool.QueryRow(ctx, query, id, in.PartID, in.CharacterID, in.OrderIndex, in.Title, in.Summary))
	if err != nil {
		return nil, mapError("updating chapter", err)
	}
	return ch, nil
}

func (c *Client) DeleteChapter(ctx context.Context, id string) (string, error) {
	var storyID string
	err := c.pool.QueryRow(ctx, `DELETE FROM chapters WHERE id = $1 RETURNING story_id`, id).Scan(&storyID)
	if err != nil {
		return "", mapError("deleting chapter", err)
	}
	return storyID, nil
}

func scanChapter(row rowScanner) (*store.Chapter, error) {
	var ch store.Chapter
	err := row.Scan(&ch.ID, &ch.StoryID, &ch.PartID, &ch.CharacterID, &ch.OrderIndex, &ch.Title, &ch.Summary)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}
