package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"fictures/internal/narrative"
	"fictures/internal/store"
)

type ListStoriesInput struct {
	AuthorID string `json:"author_id,omitempty" jsonschema:"restrict to one author"`
}

type GetStoryStructureInput struct {
	StoryID       string `json:"story_id" jsonschema:"story id"`
	IncludeScenes bool   `json:"include_scenes,omitempty" jsonschema:"include scene rows in the tree"`
	ViewerID      string `json:"viewer_id,omitempty" jsonschema:"requesting user id, required for drafts"`
}

type GetCharacterInput struct {
	CharacterID string `json:"character_id" jsonschema:"character id"`
}

type ListCharactersInput struct {
	StoryID string `json:"story_id" jsonschema:"story id"`
}

type StorySummaryOutput struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Visibility string `json:"visibility"`
	AuthorID   string `json:"author_id"`
}

type ListStoriesOutput struct {
	Stories []StorySummaryOutput `json:"stories"`
}

type StoryStructureOutput struct {
	Tree *narrative.StoryTree `json:"tree"`
}

type CharacterOutput struct {
	ID          string `json:"id"`
	StoryID     string `json:"story_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
}

type ListCharactersOutput struct {
	Characters []CharacterOutput `json:"characters"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_stories",
		Description: "List stories, optionally restricted to one author",
	}, s.handleListStories)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_story_structure",
		Description: "Retrieve the ordered part/chapter/scene tree for a story",
	}, s.handleGetStoryStructure)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_character",
		Description: "Retrieve one character",
	}, s.handleGetCharacter)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_characters",
		Description: "List a story's characters",
	}, s.handleListCharacters)
}

func (s *Server) handleListStories(ctx context.Context, req *sdk.CallToolRequest, input ListStoriesInput) (*sdk.CallToolResult, ListStoriesOutput, error) {
	summaries, err := s.db.ListStories(ctx, input.AuthorID)
	if err != nil {
		return nil, ListStoriesOutput{}, err
	}

	output := make([]StorySummaryOutput, 0, len(summaries))
	for _, summary := range summaries {
		output = append(output, StorySummaryOutput{
			ID:         summary.ID,
			Title:      summary.Title,
			Visibility: string(summary.Visibility),
			AuthorID:   summary.AuthorID,
		})
	}
	return nil, ListStoriesOutput{Stories: output}, nil
}

func (s *Server) handleGetStoryStructure(ctx context.Context, req *sdk.CallToolRequest, input GetStoryStructureInput) (*sdk.CallToolResult, StoryStructureOutput, error) {
	if input.StoryID == "" {
		return nil, StoryStructureOutput{}, fmt.Errorf("story_id is required")
	}
	tree, err := s.narrative.StoryStructure(ctx, input.StoryID, input.IncludeScenes, input.ViewerID)
	if err != nil {
		return nil, StoryStructureOutput{}, err
	}
	return nil, StoryStructureOutput{Tree: tree}, nil
}

func (s *Server) handleGetCharacter(ctx context.Context, req *sdk.CallToolRequest, input GetCharacterInput) (*sdk.CallToolResult, CharacterOutput, error) {
	if input.CharacterID == "" {
		return nil, CharacterOutput{}, fmt.Errorf("character_id is required")
	}
	character, err := s.db.GetCharacter(ctx, input.CharacterID)
	if err != nil {
		return nil, CharacterOutput{}, err
	}
	return nil, characterOutputFromRow(character), nil
}

func (s *Server) handleListCharacters(ctx context.Context, req *sdk.CallToolRequest, input ListCharactersInput) (*sdk.CallToolResult, ListCharactersOutput, error) {
	if input.StoryID == "" {
		return nil, ListCharactersOutput{}, fmt.Errorf("story_id is required")
	}
	characters, err := s.db.ListCharacters(ctx, input.StoryID)
	if err != nil {
		return nil, ListCharactersOutput{}, err
	}

	output := make([]CharacterOutput, 0, len(characters))
	for _, character := range characters {
		output = append(output, characterOutputFromRow(&character))
	}
	return nil, ListCharactersOutput{Characters: output}, nil
}

func characterOutputFromRow(ch *store.Character) CharacterOutput {
	return CharacterOutput{
		ID:          ch.ID,
		StoryID:     ch.StoryID,
		Name:        ch.Name,
		Description: ch.Description,
		ImageURL:    ch.ImageURL,
	}
}
