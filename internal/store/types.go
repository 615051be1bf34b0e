package store

import "time"

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Story is the root aggregate. All other narrative entities hang off a story
// by foreign key; deleting a story cascades to every descendant row.
type Story struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Visibility     Visibility `json:"visibility"`
	AuthorID       string     `json:"authorId"`
	Summary        string     `json:"summary"`
	Tone           string     `json:"tone"`
	MoralFramework string     `json:"moralFramework"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type StoryInput struct {
	Title          string
	Visibility     Visibility
	AuthorID       string
	Summary        string
	Tone           string
	MoralFramework string
}

type Part struct {
	ID         string `json:"id"`
	StoryID    string `json:"storyId"`
	ActNumber  int    `json:"actNumber"`
	OrderIndex int    `json:"orderIndex"`
	Title      string `json:"title"`
	Arc        string `json:"arc"`
}

type PartInput struct {
	StoryID    string
	ActNumber  int
	OrderIndex int
	Title      string
	Arc        string
}

// Chapter belongs to a story and optionally to a part. CharacterID is a soft
// reference to the focal character: no cascade, existence not enforced.
type Chapter struct {
	ID          string  `json:"id"`
	StoryID     string  `json:"storyId"`
	PartID      *string `json:"partId"`
	CharacterID *string `json:"characterId"`
	OrderIndex  int     `json:"orderIndex"`
	Title       string  `json:"title"`
	Summary     string  `json:"summary"`
}

type ChapterInput struct {
	StoryID     string
	PartID      *string
	CharacterID *string
	OrderIndex  int
	Title       string
	Summary     string
}

// Scene belongs to a chapter. SettingID is nullable: a scene with no assigned
// location is a valid state, not an error. CharacterIDs are soft references
// used for display only.
type Scene struct {
	ID           string   `json:"id"`
	ChapterID    string   `json:"chapterId"`
	StoryID      string   `json:"storyId"`
	SettingID    *string  `json:"settingId"`
	CharacterIDs []string `json:"characterIds"`
	OrderIndex   int      `json:"orderIndex"`
	Title        string   `json:"title"`
	Prose        string   `json:"prose"`
}

type SceneInput struct {
	ChapterID    string
	SettingID    *string
	CharacterIDs []string
	OrderIndex   int
	Title        string
	Prose        string
}

type Character struct {
	ID          string `json:"id"`
	StoryID     string `json:"storyId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

type CharacterInput struct {
	StoryID     string
	Name        string
	Description string
	ImageURL    string
}

type Setting struct {
	ID          string `json:"id"`
	StoryID     string `json:"storyId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

type SettingInput struct {
	StoryID     string
	Name        string
	Description string
	ImageURL    string
}

type StorySummary struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Visibility Visibility `json:"visibility"`
	AuthorID   string     `json:"authorId"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
