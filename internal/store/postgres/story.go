package postgres

import (
	"context"

	"github.com/segmentio/ksuid"

	"fictures/internal/store"
)

func (c *Client) CreateStory(ctx context.Context, in store.StoryInput) (*store.Story, error) {
	query := `
INSERT INTO stories (id, title, visibility, author_id, summary, tone, moral_framework)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, title, visibility, author_id, summary, tone, moral_framework, created_at, updated_at
`
	row := c.pool.QueryRow(ctx, query,
		ksuid.New().String(),
		in.Title,
		in.Visibility,
		in.AuthorID,
		in.Summary,
		in.Tone,
		in.MoralFramework,
	)
	s, err := scanStory(row)
	if err != nil {
		return nil, mapError("creating story", err)
	}
	return s, nil
}

func (c *Client) GetStory(ctx context.Context, id string) (*store.Story, error) {
	query := `
SELECT id, title, visibility, author_id, summary, tone, moral_framework, created_at, updated_at
FROM stories
WHERE id = $1
`
	s, err := scanStory(c.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError("getting story", err)
	}
	return s, nil
}

func (c *Client) ListStories(ctx context.Context, authorID string) ([]store.StorySummary, error) {
	query := `
SELECT id, title, visibility, author_id, updated_at
FROM stories
WHERE ($1 = '' OR author_id = $1)
ORDER BY updated_at DESC
`
	rows, err := c.pool.Query(ctx, query, authorID)
	if err != nil {
		return nil, mapError("listing stories", err)
	}
	defer rows.Close()

	var summaries []store.StorySummary
	for rows.Next() {
		var s store.StorySummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Visibility, &s.AuthorID, &s.UpdatedAt); err != nil {
			return nil, mapError("scanning story summary", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterating story summaries", err)
	}

	if summaries == nil {
		summaries = []store.StorySummary{}
	}
	return summaries, nil
}

func (c *Client) UpdateStory(ctx context.Context, id string, in store.StoryInput) (*store.Story, error) {
	query := `
UPDATE stories
SET title = $2, visibility = $3, summary = $4, tone = $5, moral_framework = $6, updated_at = now()
WHERE id = $1
RETURNING id, title, visibility, author_id, summary, tone, moral_framework, created_at, updated_at
`
	s, err := scanStory(c.pool.QueryRow(ctx, query, id, in.Title, in.Visibility, in.Summary, in.Tone, in.MoralFramework))
	if err != nil {
		return nil, mapError("updating story", err)
	}
	return s, nil
}

// DeleteStory removes the story row; parts, chapters, scenes, characters and
// settings go with it through ON DELETE CASCADE.
func (c *Client) DeleteStory(ctx context.Context, id string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		return mapError("deleting story", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("deleting story", store.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStory(row rowScanner) (*store.Story, error) {
	var s store.Story
	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Visibility,
		&s.AuthorID,
		&s.Summary,
		&s.Tone,
		&s.MoralFramework,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
