package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates referential integrity or a
// uniqueness constraint. The write is rejected atomically; no partial row
// is ever visible.
var ErrConflict = errors.New("constraint violation")

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	CreateStory(ctx context.Context, in StoryInput) (*Story, error)
	GetStory(ctx context.Context, id string) (*Story, error)
	ListStories(ctx context.Context, authorID string) ([]StorySummary, error)
	UpdateStory(ctx context.Context, id string, in StoryInput) (*Story, error)
	DeleteStory(ctx context.Context, id string) error

	CreatePart(ctx context.Context, in PartInput) (*Part, error)
	ListParts(ctx context.Context, storyID string) ([]Part, error)
	UpdatePart(ctx context.Context, id string, in PartInput) (*Part, error)
	DeletePart(ctx context.Context, id string) (storyID string, err error)

	CreateChapter(ctx context.Context, in ChapterInput) (*Chapter, error)
	ListChapters(ctx context.Context, storyID string) ([]Chapter, error)
	UpdateChapter(ctx context.Context, id string, in ChapterInput) (*Chapter, error)
	DeleteChapter(ctx context.Context, id string) (storyID string, err error)

	CreateScene(ctx context.Context, in SceneInput) (*Scene, error)
	ListScenesByChapters(ctx context.Context, chapterIDs []string) ([]Scene, error)
	UpdateScene(ctx context.Context, id string, in SceneInput) (*Scene, error)
	DeleteScene(ctx context.Context, id string) (storyID string, err error)

	CreateCharacter(ctx context.Context, in CharacterInput) (*Character, error)
	GetCharacter(ctx context.Context, id string) (*Character, error)
	ListCharacters(ctx context.Context, storyID string) ([]Character, error)
	UpdateCharacter(ctx context.Context, id string, in CharacterInput) (*Character, error)
	DeleteCharacter(ctx context.Context, id string) (storyID string, err error)

	CreateSetting(ctx context.Context, in SettingInput) (*Setting, error)
	ListSettings(ctx context.Context, storyID string) ([]Setting, error)
	UpdateSetting(ctx context.Context, id string, in SettingInput) (*Setting, error)
	DeleteSetting(ctx context.Context, id string) (storyID string, err error)
}
