// Package generate turns a story premise into persisted narrative structure
// by prompting an LLM for a typed outline and writing the resulting rows
// through the entity store. The cache layer never talks to the model:
// generation is just another write path that ends in an invalidation.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"fictures/internal/store"
)

const outlineSystemPrompt = `You are a story architect. Given a premise, plan a complete
novel outline: parts (one per act, at most three), chapters within each part,
and scenes within each chapter, all in reading order. Respond with the
requested JSON shape only.`

// Planner produces a structured outline for a premise.
type Planner interface {
	PlanOutline(ctx context.Context, premise string) (*Outline, error)
}

type OpenAIPlanner struct {
	client *openai.Client
	model  string
}

var _ Planner = (*OpenAIPlanner)(nil)

func NewOpenAIPlanner(apiKey, baseURL, model string) *OpenAIPlanner {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		// A self-hosted vLLM endpoint speaks the same protocol.
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIPlanner{client: &client, model: model}
}

func (p *OpenAIPlanner) PlanOutline(ctx context.Context, premise string) (*Outline, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(outlineSystemPrompt),
			openai.UserMessage(premise),
		},
		ResponseFormat: outlineResponseFormat(),
		Temperature:    openai.Float(0.7),
	})
	if err != nil {
		return nil, fmt.Errorf("planning outline: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("planning outline: no choices returned")
	}

	var outline Outline
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &outline); err != nil {
		return nil, fmt.Errorf("decoding outline: %w", err)
	}
	if err := validateOutline(&outline); err != nil {
		return nil, fmt.Errorf("invalid outline: %w", err)
	}
	return &outline, nil
}

func validateOutline(o *Outline) error {
	if len(o.Parts) == 0 {
		return errors.New("outline has no parts")
	}
	for i, part := range o.Parts {
		if part.ActNumber < 1 || part.ActNumber > 3 {
			return fmt.Errorf("part %d: act number %d out of range", i, part.ActNumber)
		}
	}
	return nil
}

// Writer is the slice of the store generation writes through.
type Writer interface {
	UpdateStory(ctx context.Context, id string, in store.StoryInput) (*store.Story, error)
	GetStory(ctx context.Context, id string) (*store.Story, error)
	CreatePart(ctx context.Context, in store.PartInput) (*store.Part, error)
	CreateChapter(ctx context.Context, in store.ChapterInput) (*store.Chapter, error)
	CreateScene(ctx context.Context, in store.SceneInput) (*store.Scene, error)
}

type Service struct {
	planner Planner
	writer  Writer
	// onMutated is the cache invalidation hook, called once after all
	// outline rows are committed.
	onMutated func(ctx context.Context, storyID string)
}

func NewService(planner Planner, writer Writer, onMutated func(ctx context.Context, storyID string)) *Service {
	return &Service{planner: planner, writer: writer, onMutated: onMutated}
}

// GenerateOutline plans an outline for the story's premise and persists it as
// parts, chapters and scenes. Order indexes are assigned from outline
// position. Returns the persisted outline row counts.
func (s *Service) GenerateOutline(ctx context.Context, storyID, premise string) (parts, chapters, scenes int, err error) {
	story, err := s.writer.GetStory(ctx, storyID)
	if err != nil {
		return 0, 0, 0, err
	}

	outline, err := s.planner.PlanOutline(ctx, premise)
	if err != nil {
		return 0, 0, 0, err
	}

	// Invalidate as long as anything reached the store, even when a later
	// row write failed partway through.
	wrote := false
	defer func() {
		if wrote {
			s.onMutated(ctx, storyID)
		}
	}()

	if outline.Summary != "" {
		in := store.StoryInput{
			Title:          story.Title,
			Visibility:     story.Visibility,
			AuthorID:       story.AuthorID,
			Summary:        outline.Summary,
			Tone:           story.Tone,
			MoralFramework: story.MoralFramework,
		}
		if _, err := s.writer.UpdateStory(ctx, storyID, in); err != nil {
			return 0, 0, 0, err
		}
		wrote = true
	}

	chapterOrder := 0
	for partOrder, outlinePart := range outline.Parts {
		part, err := s.writer.CreatePart(ctx, store.PartInput{
			StoryID:    storyID,
			ActNumber:  outlinePart.ActNumber,
			OrderIndex: partOrder,
			Title:      outlinePart.Title,
			Arc:        outlinePart.Arc,
		})
		if err != nil {
			return parts, chapters, scenes, err
		}
		wrote = true
		parts++

		for _, outlineChapter := range outlinePart.Chapters {
			partID := part.ID
			chapter, err := s.writer.CreateChapter(ctx, store.ChapterInput{
				StoryID:    storyID,
				PartID:     &partID,
				OrderIndex: chapterOrder,
				Title:      outlineChapter.Title,
				Summary:    outlineChapter.Summary,
			})
			if err != nil {
				return parts, chapters, scenes, err
			}
			chapters++
			chapterOrder++

			for sceneOrder, outlineScene := range outlineChapter.Scenes {
				if _, err := s.writer.CreateScene(ctx, store.SceneInput{
					ChapterID:  chapter.ID,
					OrderIndex: sceneOrder,
					Title:      outlineScene.Title,
					Prose:      outlineScene.Summary,
				}); err != nil {
					return parts, chapters, scenes, err
				}
				scenes++
			}
		}
	}

	log.Info("outline persisted", "story", storyID, "parts", parts, "chapters", chapters, "scenes", scenes)
	return parts, chapters, scenes, nil
}
