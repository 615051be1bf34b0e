package narrative

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fictures/internal/store"
)

// EntityReader is the slice of the store the assembler needs.
type EntityReader interface {
	GetStory(ctx context.Context, id string) (*store.Story, error)
	ListParts(ctx context.Context, storyID string) ([]store.Part, error)
	ListChapters(ctx context.Context, storyID string) ([]store.Chapter, error)
	ListScenesByChapters(ctx context.Context, chapterIDs []string) ([]store.Scene, error)
}

type Assembler struct {
	reader EntityReader
}

func NewAssembler(reader EntityReader) *Assembler {
	return &Assembler{reader: reader}
}

// Assemble fetches a story and all descendants and stitches them into an
// ordered tree. Story, part and chapter fetches run concurrently; the scene
// fetch depends on the chapter id set and is a single batched query
// regardless of chapter count. Any fetch failure aborts the whole assembly:
// a partial tree is never returned.
func (a *Assembler) Assemble(ctx context.Context, storyID string, includeScenes bool) (*StoryTree, error) {
	var (
		story    *store.Story
		parts    []store.Part
		chapters []store.Chapter
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		story, err = a.reader.GetStory(gctx, storyID)
		return err
	})
	g.Go(func() error {
		var err error
		parts, err = a.reader.ListParts(gctx, storyID)
		return err
	})
	g.Go(func() error {
		var err error
		chapters, err = a.reader.ListChapters(gctx, storyID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assembling story %s: %w", storyID, err)
	}

	var scenes []store.Scene
	if includeScenes && len(chapters) > 0 {
		chapterIDs := make([]string, 0, len(chapters))
		for _, ch := range chapters {
			chapterIDs = append(chapterIDs, ch.ID)
		}
		var err error
		scenes, err = a.reader.ListScenesByChapters(ctx, chapterIDs)
		if err != nil {
			return nil, fmt.Errorf("assembling story %s: %w", storyID, err)
		}
	}

	return stitch(story, parts, chapters, scenes), nil
}

// stitch is pure in-memory joining: rows arrive ordered by order_index and
// keep that order through attachment. Chapters with a nil or dangling part
// reference attach to the story root.
func stitch(story *store.Story, parts []store.Part, chapters []store.Chapter, scenes []store.Scene) *StoryTree {
	tree := &StoryTree{
		Story:      storyNodeFromRow(story),
		Parts:      make([]PartNode, 0, len(parts)),
		Chapters:   []ChapterNode{},
		PartIDs:    make([]string, 0, len(parts)),
		ChapterIDs: make([]string, 0, len(chapters)),
		SceneIDs:   make([]string, 0, len(scenes)),
	}

	partIndex := make(map[string]int, len(parts))
	for i, p := range parts {
		tree.Parts = append(tree.Parts, partNodeFromRow(p))
		tree.PartIDs = append(tree.PartIDs, p.ID)
		partIndex[p.ID] = i
	}

	chapterNodes := make([]ChapterNode, 0, len(chapters))
	chapterIndex := make(map[string]int, len(chapters))
	for i, ch := range chapters {
		chapterNodes = append(chapterNodes, chapterNodeFromRow(ch))
		tree.ChapterIDs = append(tree.ChapterIDs, ch.ID)
		chapterIndex[ch.ID] = i
	}

	for _, sc := range scenes {
		i, ok := chapterIndex[sc.ChapterID]
		if !ok {
			continue
		}
		chapterNodes[i].Scenes = append(chapterNodes[i].Scenes, sceneNodeFromRow(sc))
		tree.SceneIDs = append(tree.SceneIDs, sc.ID)
	}

	for _, node := range chapterNodes {
		if node.PartID != nil {
			if i, ok := partIndex[*node.PartID]; ok {
				tree.Parts[i].Chapters = append(tree.Parts[i].Chapters, node)
				continue
			}
		}
		tree.Chapters = append(tree.Chapters, node)
	}

	return tree
}
