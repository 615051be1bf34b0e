package postgres

import (
	"context"

	"github.com/segmentio/ksuid"

	"fictures/internal/store"
)

func (c *Client) CreatePart(ctx context.Context, in store.PartInput) (*store.Part, error) {
	query := `
INSERT INTO parts (id, story_id, act_number, order_index, title, arc)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, story_id, act_number, order_index, title, arc
`
	row := c.pool.QueryRow(ctx, query,
		ksuid.New().String(),
		in.StoryID,
		in.ActNumber,
		in.OrderIndex,
		in.Title,
		in.Arc,
	)
	p, err := scanPart(row)
	if err != nil {
		return nil, mapError("creating part", err)
	}
	return p, nil
}

func (c *Client) ListParts(ctx context.Context, storyID string) ([]store.Part, error) {
	query := `
SELECT id, story_id, act_number, order_index, title, arc
FROM parts
WHERE story_id = $1
ORDER BY order_index
`
	rows, err := c.pool.Query(ctx, query, storyID)
	if err != nil {
		return nil, mapError("listing parts", err)
	}
	defer rows.Close()

	var parts []store.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, mapError("scanning part", err)
		}
		parts = append(parts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterating parts", err)
	}

	if parts == nil {
		parts = []store.Part{}
	}
	return parts, nil
}

func (c *Client) UpdatePart(ctx context.Context, id string, in store.PartInput) (*store.Part, error) {
	query := `
UPDATE parts
SET act_number = $2, order_index = $3, title = $4, arc = $5
WHERE id = $1
RETURNING id, story_id, act_number, order_index, title, arc
`
	p, err := scanPart(c.pool.QueryRow(ctx, query, id, in.ActNumber, in.OrderIndex, in.Title, in.Arc))
	if err != nil {
		return nil, mapError("updating part", err)
	}
	return p, nil
}

func (c *Client) DeletePart(ctx context.Context, id string) (string, error) {
	var storyID string
	err := c.pool.QueryRow(ctx, `DELETE FROM parts WHERE id = $1 RETURNING story_id`, id).Scan(&storyID)
	if err != nil {
		return "", mapError("deleting part", err)
	}
	return storyID, nil
}

func scanPart(row rowScanner) (*store.Part, error) {
	var p store.Part
	err := row.Scan(&p.ID, &p.StoryID, &p.ActNumber, &p.OrderIndex, &p.Title, &p.Arc)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
