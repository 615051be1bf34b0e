package postgres

import (
	"context"

	"github.com/segmentio/ksuid"

	"fictures/internal/store"
)

func (c *Client) CreateCharacter(ctx context.Context, in store.CharacterInput) (*store.Character, error) {
	query := `
INSERT INTO characters (id, story_id, name, description, image_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, story_id, name, description, image_url
`
	row := c.pool.QueryRow(ctx, query, ksuid.New().String(), in.StoryID, in.Name, in.Description, in.ImageURL)
	ch, err := scanCharacter(row)
	if err != nil {
		return nil, mapError("creating character", err)
	}
	return ch, nil
}

func (c *Client) GetCharacter(ctx context.Context, id string) (*store.Character, error) {
	query := `
SELECT id, story_id, name, description, image_url
FROM characters
WHERE id = $1
`
	ch, err := scanCharacter(c.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError("getting character", err)
	}
	return ch, nil
}

func (c *Client) ListCharacters(ctx context.Context, storyID string) ([]store.Character, error) {
	query := `
SELECT id, story_id, name, description, image_url
FROM characters
WHERE story_id = $1
ORDER BY name
`
	rows, err := c.pool.Query(ctx, query, storyID)
	if err != nil {
		return nil, mapError("listing characters", err)
	}
	defer rows.Close()

	var characters []store.Character
	for rows.Next() {
		ch, err := scanCharacter(rows)
		if err != nil {
			return nil, mapError("scanning character", err)
		}
		characters = append(characters, *ch)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterating characters", err)
	}

	if characters == nil {
		characters = []store.Character{}
	}
	return characters, nil
}

func (c *Client) UpdateCharacter(ctx context.Context, id string, in store.CharacterInput) (*store.Character, error) {
	query := `
UPDATE characters
SET name = $2, description = $3, image_url = $4
WHERE id = $1
RETURNING id, story_id, name, description, image_url
`
	ch, err := scanCharacter(c.pool.QueryRow(ctx, query, id, in.Name, in.Description, in.ImageURL))
	if err != nil {
		return nil, mapError("updating character", err)
	}
	return ch, nil
}

func (c *Client) DeleteCharacter(ctx context.Context, id string) (string, error) {
	var storyID string
	err := c.pool.QueryRow(ctx, `DELETE FROM characters WHERE id = $1 RETURNING story_id`, id).Scan(&storyID)
	if err != nil {
		return "", mapError("deleting character", err)
	}
	return storyID, nil
}

func scanCharacter(row rowScanner) (*store.Character, error) {
	var ch store.Character
	err := row.Scan(&ch.ID, &ch.StoryID, &ch.Name, &ch.Description, &ch.ImageURL)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}
