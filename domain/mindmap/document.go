package mindmap

import (
	"encoding/json"
	"fmt"
	"time"

	apperrors "pgy3-backend/pkg/errors"
	"pgy3-backend/pkg/utils"
)

// Document is the whole mind map: the single aggregate the store reads and
// replaces wholesale.
type Document struct {
	Topics      []Topic      `json:"topics" validate:"required,dive"`
	Cases       []Case       `json:"cases" validate:"required,dive"`
	Tasks       []Task       `json:"tasks" validate:"required,dive"`
	Literature  []Literature `json:"literature" validate:"required,dive"`
	Connections []Connection `json:"connections"`

	// Extra keeps root keys the frontend adds, such as templates.
	Extra Fields `json:"-"`
}

type documentAlias Document

func (d *Document) UnmarshalJSON(data []byte) error {
	var a documentAlias
	extra, err := decodeObject(data, &a)
	if err != nil {
		return err
	}
	*d = Document(a)
	d.Extra = extra
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	return encodeObject(documentAlias(d), d.Extra)
}

// DecodeDocument parses a serialized document. Type mismatches and malformed
// timestamps are errors; callers decide whether that is the client's fault or
// the medium's.
func DecodeDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode mind map document: %w", err)
	}
	return &d, nil
}

// EncodeDocument serializes d for a backing medium.
func EncodeDocument(d *Document) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode mind map document: %w", err)
	}
	return data, nil
}

// EnsureCollections replaces absent sequences with empty ones so readers
// always see all five keys.
func (d *Document) EnsureCollections() {
	if d.Topics == nil {
		d.Topics = []Topic{}
	}
	if d.Cases == nil {
		d.Cases = []Case{}
	}
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	if d.Literature == nil {
		d.Literature = []Literature{}
	}
	if d.Connections == nil {
		d.Connections = []Connection{}
	}
}

// Normalize applies entity defaults to an incoming document: missing ids,
// timestamps, colors and statuses are filled and an absent connections
// sequence becomes empty. Absent entity sequences are left for Validate.
func (d *Document) Normalize(now time.Time, newID IDGenerator) {
	for i := range d.Topics {
		d.Topics[i].normalize(now, newID)
	}
	for i := range d.Cases {
		d.Cases[i].normalize(now, newID)
	}
	for i := range d.Tasks {
		d.Tasks[i].normalize(now, newID)
	}
	for i := range d.Literature {
		d.Literature[i].normalize(now, newID)
	}
	if d.Connections == nil {
		d.Connections = []Connection{}
	}
}

// Validate checks required fields, enums and id uniqueness within each
// sequence. Ids may repeat across sequences.
func (d *Document) Validate() error {
	fields := fieldErrors(utils.ValidateStruct(d, "invalid mind map document"))

	for i := range d.Cases {
		if d.Cases[i].EncounterDate.IsZero() {
			fields = append(fields, missingEncounterDate(fmt.Sprintf("cases[%d].encounter_date", i)))
		}
	}

	fields = append(fields, duplicateIDs(KindTopic, len(d.Topics), func(i int) string { return d.Topics[i].ID })...)
	fields = append(fields, duplicateIDs(KindCase, len(d.Cases), func(i int) string { return d.Cases[i].ID })...)
	fields = append(fields, duplicateIDs(KindTask, len(d.Tasks), func(i int) string { return d.Tasks[i].ID })...)
	fields = append(fields, duplicateIDs(KindLiterature, len(d.Literature), func(i int) string { return d.Literature[i].ID })...)

	if len(fields) > 0 {
		return apperrors.NewFieldValidationError("invalid mind map document", fields)
	}
	return nil
}

func duplicateIDs(kind Kind, n int, idAt func(int) string) []apperrors.FieldError {
	var out []apperrors.FieldError
	seen := make(map[string]int, n)
	for i := 0; i < n; i++ {
		id := idAt(i)
		if id == "" {
			continue
		}
		if first, ok := seen[id]; ok {
			path := fmt.Sprintf("%s[%d].id", kind, i)
			out = append(out, apperrors.FieldError{
				Field:   path,
				Rule:    "unique",
				Message: fmt.Sprintf("%s duplicates the id of %s[%d]", path, kind, first),
			})
			continue
		}
		seen[id] = i
	}
	return out
}

// WithStructuredMedications returns a shallow copy of d whose case medication
// lists are all in object form. d is not modified.
func (d *Document) WithStructuredMedications() *Document {
	out := *d
	out.Cases = make([]Case, len(d.Cases))
	for i, c := range d.Cases {
		c.Medications = StructuredMedications(c.Medications)
		out.Cases[i] = c
	}
	return &out
}

// Find returns a pointer to the entity of the given kind and id.
func (d *Document) Find(kind Kind, id string) (Entity, bool) {
	switch kind {
	case KindTopic:
		for i := range d.Topics {
			if d.Topics[i].ID == id {
				return &d.Topics[i], true
			}
		}
	case KindCase:
		for i := range d.Cases {
			if d.Cases[i].ID == id {
				return &d.Cases[i], true
			}
		}
	case KindTask:
		for i := range d.Tasks {
			if d.Tasks[i].ID == id {
				return &d.Tasks[i], true
			}
		}
	case KindLiterature:
		for i := range d.Literature {
			if d.Literature[i].ID == id {
				return &d.Literature[i], true
			}
		}
	}
	return nil, false
}

// Insert appends e to its sequence. An existing id is a CONFLICT.
func (d *Document) Insert(e Entity) error {
	if _, exists := d.Find(e.Kind(), e.EntityID()); exists {
		return apperrors.NewConflictError(
			fmt.Sprintf("%s with id %q already exists", e.Kind().Singular(), e.EntityID()))
	}
	switch v := e.(type) {
	case *Topic:
		d.Topics = append(d.Topics, *v)
	case *Case:
		d.Cases = append(d.Cases, *v)
	case *Task:
		d.Tasks = append(d.Tasks, *v)
	case *Literature:
		d.Literature = append(d.Literature, *v)
	default:
		return apperrors.NewInternalError(fmt.Sprintf("unsupported entity %T", e))
	}
	return nil
}

// Remove deletes the entity of the given kind and id, reporting whether it
// existed. Connections pointing at it are left alone.
func (d *Document) Remove(kind Kind, id string) bool {
	switch kind {
	case KindTopic:
		return removeWhere(&d.Topics, func(t *Topic) bool { return t.ID == id })
	case KindCase:
		return removeWhere(&d.Cases, func(c *Case) bool { return c.ID == id })
	case KindTask:
		return removeWhere(&d.Tasks, func(t *Task) bool { return t.ID == id })
	case KindLiterature:
		return removeWhere(&d.Literature, func(l *Literature) bool { return l.ID == id })
	}
	return false
}

func removeWhere[T any](items *[]T, match func(*T) bool) bool {
	for i := range *items {
		if match(&(*items)[i]) {
			*items = append((*items)[:i], (*items)[i+1:]...)
			return true
		}
	}
	return false
}

// Collection returns the sequence of the given kind, ready for encoding.
func (d *Document) Collection(kind Kind) any {
	switch kind {
	case KindTopic:
		return d.Topics
	case KindCase:
		return d.Cases
	case KindTask:
		return d.Tasks
	case KindLiterature:
		return d.Literature
	}
	return nil
}

// Counts summarises a document for logs and change events.
type Counts struct {
	Topics        int `json:"topics"`
	Cases         int `json:"cases"`
	Tasks         int `json:"tasks"`
	Literature    int `json:"literature"`
	Connections   int `json:"connections"`
	LegacyHandles int `json:"legacy_handles"`
}

func (d *Document) Counts() Counts {
	c := Counts{
		Topics:      len(d.Topics),
		Cases:       len(d.Cases),
		Tasks:       len(d.Tasks),
		Literature:  len(d.Literature),
		Connections: len(d.Connections),
	}
	for _, conn := range d.Connections {
		if IsLegacyHandle(conn.SourceHandle) || IsLegacyHandle(conn.TargetHandle) {
			c.LegacyHandles++
		}
	}
	return c
}
