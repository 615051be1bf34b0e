package postgres

import (
	"context"

	"github.com/segmentio/ksuid"

	"fictures/internal/store"
)

func (c *Client) CreateSetting(ctx context.Context, in store.SettingInput) (*store.Setting, error) {
	query := `
INSERT INTO settings (id, story_id, name, description, image_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, story_id, name, description, image_url
`
	row := c.pool.QueryRow(ctx, query, ksuid.New().String(), in.StoryID, in.Name, in.Description, in.ImageURL)
	s, err := scanSetting(row)
	if err != nil {
		return nil, mapError("creating setting", err)
	}
	return s, nil
}

func (c *Client) ListSettings(ctx context.Context, storyID string) ([]store.Setting, error) {
	query := `
SELECT id, story_id, name, description, image_url
FROM settings
WHERE story_id = $1
ORDER BY name
`
	rows, err := c.pool.Query(ctx, query, storyID)
	if err != nil {
		return nil, mapError("listing settings", err)
	}
	defer rows.Close()

	var settings []store.Setting
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, mapError("scanning setting", err)
		}
		settings = append(settings, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterating settings", err)
	}

	if settings == nil {
		settings = []store.Setting{}
	}
	return settings, nil
}

func (c *Client) UpdateSetting(ctx context.Context, id string, in store.SettingInput) (*store.Setting, error) {
	query := `
UPDATE settings
SET name = $2, description = $3, image_url = $4
WHERE id = $1
RETURNING id, story_id, name, description, image_url
`
	s, err := scanSetting(c.pool.QueryRow(ctx, query, id, in.Name, in.Description, in.ImageURL))
	if err != nil {
		return nil, mapError("updating setting", err)
	}
	return s, nil
}

func (c *Client) DeleteSetting(ctx context.Context, id string) (string, error) {
	var storyID string
	err := c.pool.QueryRow(ctx, `DELETE FROM settings WHERE id = $1 RETURNING story_id`, id).Scan(&storyID)
	if err != nil {
		return "", mapError("deleting setting", err)
	}
	return storyID, nil
}

func scanSetting(row rowScanner) (*store.Setting, error) {
	var s store.Setting
	err := row.Scan(&s.ID, &s.StoryID, &s.Name, &s.Description, &s.ImageURL)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
