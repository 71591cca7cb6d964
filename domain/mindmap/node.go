package mindmap

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind names one of the four entity sequences of the document. The value is
// the JSON key of the sequence and the URL segment of its endpoints.
type Kind string

const (
	KindTopic      Kind = "topics"
	KindCase       Kind = "cases"
	KindTask       Kind = "tasks"
	KindLiterature Kind = "literature"
)

// Kinds lists every entity kind in document order.
var Kinds = []Kind{KindTopic, KindCase, KindTask, KindLiterature}

// ParseKind maps a collection name to its Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// Singular is the human name of one entity of the kind.
func (k Kind) Singular() string {
	switch k {
	case KindTopic:
		return "topic"
	case KindCase:
		return "case"
	case KindTask:
		return "task"
	case KindLiterature:
		return "literature"
	}
	return string(k)
}

// Position is a node's location on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node holds what every entity shares: identity, placement and timestamps.
type Node struct {
	ID        string    `json:"id"`
	Position  Position  `json:"position"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// IDGenerator produces entity ids.
type IDGenerator func() string

// NewID returns a random UUID string.
func NewID() string {
	return uuid.NewString()
}

func (n *Node) EntityID() string {
	return n.ID
}

// normalizeNode fills a missing id and missing timestamps of a freshly
// decoded entity. Timestamps the client sent are kept as sent, even when
// updated_at precedes created_at.
func (n *Node) normalizeNode(now time.Time, newID IDGenerator) {
	if n.ID == "" {
		n.ID = newID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = NewTimestamp(now)
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}
}

func (n *Node) touch(now time.Time) {
	n.UpdatedAt = NewTimestamp(now)
	if n.UpdatedAt.Before(n.CreatedAt.Time) {
		n.UpdatedAt = n.CreatedAt
	}
}

// stamp gives a new entity fresh creation timestamps.
func (n *Node) stamp(now time.Time, newID IDGenerator) {
	if n.ID == "" {
		n.ID = newID()
	}
	n.CreatedAt = NewTimestamp(now)
	n.UpdatedAt = n.CreatedAt
}

// Entity is implemented by *Topic, *Case, *Task and *Literature.
type Entity interface {
	EntityID() string
	Kind() Kind
	Validate() error

	normalize(now time.Time, newID IDGenerator)
	// applyDefaults replaces absent sequences and enums with their defaults.
	applyDefaults()
	stamp(now time.Time, newID IDGenerator)
	touch(now time.Time)
}

func stringPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
