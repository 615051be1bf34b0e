package generate

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
)

// Outline is the structured shape the model must return when planning a
// story. It mirrors the narrative hierarchy one level above prose: parts,
// chapters, scenes.
type Outline struct {
	Summary string        `json:"summary" jsonschema_description:"One-paragraph summary of the full story"`
	Parts   []OutlinePart `json:"parts" jsonschema_description:"Story parts in reading order, one per act"`
}

type OutlinePart struct {
	Title     string           `json:"title"`
	ActNumber int              `json:"act_number" jsonschema:"minimum=1,maximum=3"`
	Arc       string           `json:"arc" jsonschema_description:"The dramatic arc this part covers"`
	Chapters  []OutlineChapter `json:"chapters" jsonschema_description:"Chapters in reading order"`
}

type OutlineChapter struct {
	Title   string         `json:"title"`
	Summary string         `json:"summary"`
	Scenes  []OutlineScene `json:"scenes" jsonschema_description:"Scenes in reading order"`
}

type OutlineScene struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

func generateSchema[T any]() any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

var outlineSchema = generateSchema[Outline]()

func outlineResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "story_outline",
		Description: openai.String("Hierarchical outline of a story: parts, chapters, scenes"),
		Schema:      outlineSchema,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}
