package mindmap

import (
	"time"

	"pgy3-backend/pkg/utils"
)

// DefaultTopicColor is used when a topic arrives without a color.
const DefaultTopicColor = "#3B82F6"

// RichContentKeys are the topic fields the frontend edits in its rich-text
// modal. The backend keeps them in Topic.Extra untouched.
var RichContentKeys = []string{
	"definition",
	"diagnostic_criteria",
	"comorbidities",
	"differential_diagnoses",
	"medications",
	"psychotherapy_modalities",
	"notes",
	"tags",
}

// Resource is a reference link attached to a topic.
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`

	Extra Fields `json:"-"`
}

type resourceAlias Resource

func (r *Resource) UnmarshalJSON(data []byte) error {
	var a resourceAlias
	extra, err := decodeObject(data, &a)
	if err != nil {
		return err
	}
	*r = Resource(a)
	r.Extra = extra
	return nil
}

func (r Resource) MarshalJSON() ([]byte, error) {
	return encodeObject(resourceAlias(r), r.Extra)
}

// Topic is a psychiatric subject area on the mind map.
type Topic struct {
	Node
	Title               string     `json:"title" validate:"required"`
	Description         *string    `json:"description,omitempty"`
	Category            string     `json:"category" validate:"required"`
	Color               string     `json:"color" validate:"omitempty,hexcolor"`
	FlashcardCount      int        `json:"flashcard_count" validate:"min=0"`
	CompletedFlashcards int        `json:"completed_flashcards" validate:"min=0"`
	Resources           []Resource `json:"resources"`

	// Extra holds the rich-content fields and any other key the frontend adds.
	Extra Fields `json:"-"`
}

type topicAlias Topic

func (t *Topic) UnmarshalJSON(data []byte) error {
	var a topicAlias
	extra, err := decodeObject(data, &a)
	if err != nil {
		return err
	}
	*t = Topic(a)
	t.Extra = extra
	return nil
}

func (t Topic) MarshalJSON() ([]byte, error) {
	return encodeObject(topicAlias(t), t.Extra)
}

func (t *Topic) Kind() Kind { return KindTopic }

// RichContent returns the rich-content subset of the topic's open fields.
func (t *Topic) RichContent() Fields {
	out := Fields{}
	for _, key := range RichContentKeys {
		if v, ok := t.Extra[key]; ok {
			out[key] = v
		}
	}
	return out
}

func (t *Topic) Validate() error {
	return utils.ValidateStruct(t, "invalid topic")
}

func (t *Topic) normalize(now time.Time, newID IDGenerator) {
	t.normalizeNode(now, newID)
	t.applyDefaults()
}

func (t *Topic) applyDefaults() {
	if t.Color == "" {
		t.Color = DefaultTopicColor
	}
	if t.Resources == nil {
		t.Resources = []Resource{}
	}
}
