package mindmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	apperrors "pgy3-backend/pkg/errors"
)

// Optional is a patch field. Set is true whenever the key was present in the
// body, including when its value was null.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(&o.Value)
}

func (o Optional[T]) applyTo(dst *T) {
	if o.Set {
		*dst = o.Value
	}
}

// Patch is a partial update for one entity kind.
type Patch interface {
	Kind() Kind
	ApplyTo(e Entity, now time.Time) error
}

// patchReservedKeys are accepted in a patch body but never applied: ids and
// creation times are immutable and updated_at is set by the patch itself.
var patchReservedKeys = []string{"id", "created_at", "updated_at"}

func decodePatch(data []byte, v any) (Fields, error) {
	extra, err := decodeObject(data, v)
	if err != nil {
		return nil, err
	}
	for _, k := range patchReservedKeys {
		delete(extra, k)
	}
	return extra, nil
}

// TopicPatch is a partial Topic. Keys without a declared field are merged
// into the topic's open fields; a null value removes the key.
type TopicPatch struct {
	Title               Optional[string]     `json:"title"`
	Description         Optional[*string]    `json:"description"`
	Category            Optional[string]     `json:"category"`
	Color               Optional[string]     `json:"color"`
	Position            Optional[Position]   `json:"position"`
	FlashcardCount      Optional[int]        `json:"flashcard_count"`
	CompletedFlashcards Optional[int]        `json:"completed_flashcards"`
	Resources           Optional[[]Resource] `json:"resources"`

	Extra Fields `json:"-"`
}

func (p TopicPatch) Kind() Kind { return KindTopic }

func (p TopicPatch) ApplyTo(e Entity, now time.Time) error {
	t, ok := e.(*Topic)
	if !ok {
		return mismatchedPatch(p, e)
	}
	p.Title.applyTo(&t.Title)
	p.Description.applyTo(&t.Description)
	p.Category.applyTo(&t.Category)
	p.Color.applyTo(&t.Color)
	p.Position.applyTo(&t.Position)
	p.FlashcardCount.applyTo(&t.FlashcardCount)
	p.CompletedFlashcards.applyTo(&t.CompletedFlashcards)
	p.Resources.applyTo(&t.Resources)
	t.Extra.merge(p.Extra)
	t.applyDefaults()
	t.touch(now)
	return nil
}

// CasePatch is a partial Case. Medications given in a patch are stored in
// object form.
type CasePatch struct {
	CaseID             Optional[string]          `json:"case_id"`
	EncounterDate      Optional[Timestamp]       `json:"encounter_date"`
	PrimaryDiagnosis   Optional[string]          `json:"primary_diagnosis"`
	SecondaryDiagnoses Optional[[]string]        `json:"secondary_diagnoses"`
	Age                Optional[*int]            `json:"age"`
	Gender             Optional[*string]         `json:"gender"`
	ChiefComplaint     Optional[string]          `json:"chief_complaint"`
	Status             Optional[CaseStatus]      `json:"status"`
	LinkedTopics       Optional[[]string]        `json:"linked_topics"`
	Position           Optional[Position]        `json:"position"`
	Medications        Optional[[]Medication]    `json:"medications"`
	Timeline           Optional[[]TimelineEntry] `json:"timeline"`

	HistoryPresentIllness Optional[*string] `json:"history_present_illness"`
	MedicalHistory        Optional[*string] `json:"medical_history"`
	MentalStatusExam      Optional[*string] `json:"mental_status_exam"`
	AssessmentPlan        Optional[*string] `json:"assessment_plan"`
	Notes                 Optional[*string] `json:"notes"`
	InitialPresentation   Optional[*string] `json:"initial_presentation"`
	CurrentPresentation   Optional[*string] `json:"current_presentation"`
	MedicationHistory     Optional[*string] `json:"medication_history"`
	TherapyProgress       Optional[*string] `json:"therapy_progress"`
	DefensePatterns       Optional[*string] `json:"defense_patterns"`
	ClinicalReflection    Optional[*string] `json:"clinical_reflection"`

	Extra Fields `json:"-"`
}

func (p CasePatch) Kind() Kind { return KindCase }

func (p CasePatch) ApplyTo(e Entity, now time.Time) error {
	c, ok := e.(*Case)
	if !ok {
		return mismatchedPatch(p, e)
	}
	p.CaseID.applyTo(&c.CaseID)
	p.EncounterDate.applyTo(&c.EncounterDate)
	p.PrimaryDiagnosis.applyTo(&c.PrimaryDiagnosis)
	p.SecondaryDiagnoses.applyTo(&c.SecondaryDiagnoses)
	p.Age.applyTo(&c.Age)
	p.Gender.applyTo(&c.Gender)
	p.ChiefComplaint.applyTo(&c.ChiefComplaint)
	p.Status.applyTo(&c.Status)
	p.LinkedTopics.applyTo(&c.LinkedTopics)
	p.Position.applyTo(&c.Position)
	p.Timeline.applyTo(&c.Timeline)
	if p.Medications.Set {
		c.Medications = StructuredMedications(p.Medications.Value)
	}

	p.HistoryPresentIllness.applyTo(&c.HistoryPresentIllness)
	p.MedicalHistory.applyTo(&c.MedicalHistory)
	p.MentalStatusExam.applyTo(&c.MentalStatusExam)
	p.AssessmentPlan.applyTo(&c.AssessmentPlan)
	p.Notes.applyTo(&c.Notes)
	p.InitialPresentation.applyTo(&c.InitialPresentation)
	p.CurrentPresentation.applyTo(&c.CurrentPresentation)
	p.MedicationHistory.applyTo(&c.MedicationHistory)
	p.TherapyProgress.applyTo(&c.TherapyProgress)
	p.DefensePatterns.applyTo(&c.DefensePatterns)
	p.ClinicalReflection.applyTo(&c.ClinicalReflection)

	c.Extra.merge(p.Extra)
	c.applyDefaults()
	c.touch(now)
	return nil
}

// TaskPatch is a partial Task.
type TaskPatch struct {
	Title         Optional[string]     `json:"title"`
	Description   Optional[*string]    `json:"description"`
	Status        Optional[TaskStatus] `json:"status"`
	Priority      Optional[string]     `json:"priority"`
	DueDate       Optional[*Timestamp] `json:"due_date"`
	LinkedCaseID  Optional[*string]    `json:"linked_case_id"`
	LinkedTopicID Optional[*string]    `json:"linked_topic_id"`
	Position      Optional[Position]   `json:"position"`

	Extra Fields `json:"-"`
}

func (p TaskPatch) Kind() Kind { return KindTask }

func (p TaskPatch) ApplyTo(e Entity, now time.Time) error {
	t, ok := e.(*Task)
	if !ok {
		return mismatchedPatch(p, e)
	}
	p.Title.applyTo(&t.Title)
	p.Description.applyTo(&t.Description)
	p.Status.applyTo(&t.Status)
	p.Priority.applyTo(&t.Priority)
	p.DueDate.applyTo(&t.DueDate)
	p.LinkedCaseID.applyTo(&t.LinkedCaseID)
	p.LinkedTopicID.applyTo(&t.LinkedTopicID)
	p.Position.applyTo(&t.Position)
	t.Extra.merge(p.Extra)
	t.applyDefaults()
	t.touch(now)
	return nil
}

// LiteraturePatch is a partial Literature.
type LiteraturePatch struct {
	Title        Optional[string]   `json:"title"`
	Authors      Optional[*string]  `json:"authors"`
	Publication  Optional[*string]  `json:"publication"`
	Year         Optional[*int]     `json:"year"`
	DOI          Optional[*string]  `json:"doi"`
	Abstract     Optional[*string]  `json:"abstract"`
	Notes        Optional[*string]  `json:"notes"`
	LinkedTopics Optional[[]string] `json:"linked_topics"`
	PDFPath      Optional[*string]  `json:"pdf_path"`
	Position     Optional[Position] `json:"position"`

	Extra Fields `json:"-"`
}

func (p LiteraturePatch) Kind() Kind { return KindLiterature }

func (p LiteraturePatch) ApplyTo(e Entity, now time.Time) error {
	l, ok := e.(*Literature)
	if !ok {
		return mismatchedPatch(p, e)
	}
	p.Title.applyTo(&l.Title)
	p.Authors.applyTo(&l.Authors)
	p.Publication.applyTo(&l.Publication)
	p.Year.applyTo(&l.Year)
	p.DOI.applyTo(&l.DOI)
	p.Abstract.applyTo(&l.Abstract)
	p.Notes.applyTo(&l.Notes)
	p.LinkedTopics.applyTo(&l.LinkedTopics)
	p.PDFPath.applyTo(&l.PDFPath)
	p.Position.applyTo(&l.Position)
	l.Extra.merge(p.Extra)
	l.applyDefaults()
	l.touch(now)
	return nil
}

func mismatchedPatch(p Patch, e Entity) error {
	return apperrors.NewInternalError(fmt.Sprintf("%s patch applied to %s", p.Kind().Singular(), e.Kind().Singular()))
}

// DecodePatch parses a partial update body for the given kind. Type
// mismatches are VALIDATION errors.
func DecodePatch(kind Kind, data []byte) (Patch, error) {
	var (
		patch Patch
		err   error
	)
	switch kind {
	case KindTopic:
		var p TopicPatch
		p.Extra, err = decodePatch(data, &p)
		patch = p
	case KindCase:
		var p CasePatch
		p.Extra, err = decodePatch(data, &p)
		patch = p
	case KindTask:
		var p TaskPatch
		p.Extra, err = decodePatch(data, &p)
		patch = p
	case KindLiterature:
		var p LiteraturePatch
		p.Extra, err = decodePatch(data, &p)
		patch = p
	default:
		return nil, apperrors.NewValidationError("unknown entity kind " + string(kind))
	}
	if err != nil {
		return nil, apperrors.NewValidationError("invalid " + kind.Singular() + " update: " + err.Error()).WithCause(err)
	}
	return patch, nil
}
