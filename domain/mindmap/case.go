package mindmap

import (
	"time"

	apperrors "pgy3-backend/pkg/errors"
	"pgy3-backend/pkg/utils"
)

// CaseStatus is the lifecycle state of a patient case.
type CaseStatus string

const (
	CaseActive   CaseStatus = "active"
	CaseArchived CaseStatus = "archived"
	CaseFollowUp CaseStatus = "follow_up"
)

// TimelineEntry is one dated event in a case's history. The store only ever
// keeps entries in the order it was given.
type TimelineEntry struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Timestamp *Timestamp `json:"timestamp,omitempty"`
	Content   string     `json:"content"`
	Author    string     `json:"author"`
	Metadata  Fields     `json:"metadata,omitempty"`

	Extra Fields `json:"-"`
}

type timelineAlias TimelineEntry

func (e *TimelineEntry) UnmarshalJSON(data []byte) error {
	var a timelineAlias
	extra, err := decodeObject(data, &a)
	if err != nil {
		return err
	}
	*e = TimelineEntry(a)
	e.Extra = extra
	return nil
}

func (e TimelineEntry) MarshalJSON() ([]byte, error) {
	return encodeObject(timelineAlias(e), e.Extra)
}

// Case is a de-identified patient encounter.
type Case struct {
	Node
	CaseID             string     `json:"case_id" validate:"required"`
	EncounterDate      Timestamp  `json:"encounter_date"`
	PrimaryDiagnosis   string     `json:"primary_diagnosis" validate:"required"`
	SecondaryDiagnoses []string   `json:"secondary_diagnoses"`
	Age                *int       `json:"age,omitempty" validate:"omitempty,min=0"`
	Gender             *string    `json:"gender,omitempty"`
	ChiefComplaint     string     `json:"chief_complaint" validate:"required"`
	Status             CaseStatus `json:"status" validate:"oneof=active archived follow_up"`
	LinkedTopics       []string   `json:"linked_topics"`

	HistoryPresentIllness *string `json:"history_present_illness,omitempty"`
	MedicalHistory        *string `json:"medical_history,omitempty"`
	MentalStatusExam      *string `json:"mental_status_exam,omitempty"`
	AssessmentPlan        *string `json:"assessment_plan,omitempty"`
	Notes                 *string `json:"notes,omitempty"`
	InitialPresentation   *string `json:"initial_presentation,omitempty"`
	CurrentPresentation   *string `json:"current_presentation,omitempty"`
	MedicationHistory     *string `json:"medication_history,omitempty"`
	TherapyProgress       *string `json:"therapy_progress,omitempty"`
	DefensePatterns       *string `json:"defense_patterns,omitempty"`
	ClinicalReflection    *string `json:"clinical_reflection,omitempty"`

	Medications []Medication    `json:"medications"`
	Timeline    []TimelineEntry `json:"timeline"`

	Extra Fields `json:"-"`
}

type caseAlias Case

func (c *Case) UnmarshalJSON(data []byte) error {
	var a caseAlias
	extra, err := decodeObject(data, &a)
	if err != nil {
		return err
	}
	*c = Case(a)
	c.Extra = extra
	return nil
}

func (c Case) MarshalJSON() ([]byte, error) {
	return encodeObject(caseAlias(c), c.Extra)
}

func (c *Case) Kind() Kind { return KindCase }

func (c *Case) Validate() error {
	fields := fieldErrors(utils.ValidateStruct(c, "invalid case"))
	if c.EncounterDate.IsZero() {
		fields = append(fields, missingEncounterDate("encounter_date"))
	}
	if len(fields) > 0 {
		return apperrors.NewFieldValidationError("invalid case", fields)
	}
	return nil
}

func missingEncounterDate(path string) apperrors.FieldError {
	return apperrors.FieldError{
		Field:   path,
		Rule:    "required",
		Message: path + " is required",
	}
}

func (c *Case) normalize(now time.Time, newID IDGenerator) {
	c.normalizeNode(now, newID)
	c.applyDefaults()
}

func (c *Case) applyDefaults() {
	if c.Status == "" {
		c.Status = CaseActive
	}
	if c.SecondaryDiagnoses == nil {
		c.SecondaryDiagnoses = []string{}
	}
	if c.LinkedTopics == nil {
		c.LinkedTopics = []string{}
	}
	if c.Medications == nil {
		c.Medications = []Medication{}
	}
	if c.Timeline == nil {
		c.Timeline = []TimelineEntry{}
	}
}
