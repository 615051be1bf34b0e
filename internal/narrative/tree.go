// Package narrative assembles the hierarchical view of a story (parts,
// chapters, scenes) from normalized rows and serves it through a
// read-through cache.
package narrative

import "fictures/internal/store"

// StoryTree is the assembled, ordered view of one story. It is a derived,
// read-only snapshot: it holds no write authority and is always rebuildable
// from the relational store.
type StoryTree struct {
	Story StoryNode `json:"story"`
	Parts []PartNode `json:"parts"`
	// Chapters holds chapters with no part assignment, attached directly to
	// the story root.
	Chapters []ChapterNode `json:"chapters"`

	// Flat id lists, computed from the fetched rows at assembly time. These
	// are never persisted; storing them alongside the FK rows is the
	// bidirectional-sync bug this layer exists to avoid.
	PartIDs    []string `json:"partIds"`
	ChapterIDs []string `json:"chapterIds"`
	SceneIDs   []string `json:"sceneIds"`
}

type StoryNode struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Visibility     store.Visibility `json:"visibility"`
	AuthorID       string           `json:"authorId"`
	Summary        string           `json:"summary"`
	Tone           string           `json:"tone"`
	MoralFramework string           `json:"moralFramework"`
}

type PartNode struct {
	ID         string        `json:"id"`
	ActNumber  int           `json:"actNumber"`
	OrderIndex int           `json:"orderIndex"`
	Title      string        `json:"title"`
	Arc        string        `json:"arc"`
	Chapters   []ChapterNode `json:"chapters"`
}

type ChapterNode struct {
	ID          string      `json:"id"`
	PartID      *string     `json:"partId"`
	CharacterID *string     `json:"characterId"`
	OrderIndex  int         `json:"orderIndex"`
	Title       string      `json:"title"`
	Summary     string      `json:"summary"`
	Scenes      []SceneNode `json:"scenes"`
}

type SceneNode struct {
	ID           string   `json:"id"`
	ChapterID    string   `json:"chapterId"`
	SettingID    *string  `json:"settingId"`
	CharacterIDs []string `json:"characterIds"`
	OrderIndex   int      `json:"orderIndex"`
	Title        string   `json:"title"`
	Prose        string   `json:"prose"`
}

func storyNodeFromRow(s *store.Story) StoryNode {
	return StoryNode{
		ID:             s.ID,
		Title:          s.Title,
		Visibility:     s.Visibility,
		AuthorID:       s.AuthorID,
		Summary:        s.Summary,
		Tone:           s.Tone,
		MoralFramework: s.MoralFramework,
	}
}

func partNodeFromRow(p store.Part) PartNode {
	return PartNode{
		ID:         p.ID,
		ActNumber:  p.ActNumber,
		OrderIndex: p.OrderIndex,
		Title:      p.Title,
		Arc:        p.Arc,
		Chapters:   []ChapterNode{},
	}
}

func chapterNodeFromRow(ch store.Chapter) ChapterNode {
	return ChapterNode{
		ID:          ch.ID,
		PartID:      ch.PartID,
		CharacterID: ch.CharacterID,
		OrderIndex:  ch.OrderIndex,
		Title:       ch.Title,
		Summary:     ch.Summary,
		Scenes:      []SceneNode{},
	}
}

func sceneNodeFromRow(sc store.Scene) SceneNode {
	characterIDs := sc.CharacterIDs
	if characterIDs == nil {
		characterIDs = []string{}
	}
	return SceneNode{
		ID:           sc.ID,
		ChapterID:    sc.ChapterID,
		SettingID:    sc.SettingID,
		CharacterIDs: characterIDs,
		OrderIndex:   sc.OrderIndex,
		Title:        sc.Title,
		Prose:        sc.Prose,
	}
}
