package mindmap

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MedicationFormat selects how case medications are written.
type MedicationFormat string

const (
	// MedicationsPreserve writes each entry in the shape it arrived in.
	MedicationsPreserve MedicationFormat = "preserve"
	// MedicationsStructured writes every entry as an object.
	MedicationsStructured MedicationFormat = "structured"
)

// ParseMedicationFormat validates a configured format name.
func ParseMedicationFormat(s string) (MedicationFormat, error) {
	switch MedicationFormat(s) {
	case "", MedicationsPreserve:
		return MedicationsPreserve, nil
	case MedicationsStructured:
		return MedicationsStructured, nil
	}
	return "", fmt.Errorf("unknown medication format %q", s)
}

// Medication is one entry of a case's medication list. Older documents
// store a plain string such as "Sertraline 50mg daily"; newer ones store an
// object. Both shapes are read, and a plain entry is written back as a string
// unless it has been converted with Structured.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	Effect    string `json:"effect,omitempty"`
	DateAdded string `json:"dateAdded,omitempty"`

	// Extra keeps the frontend's own keys such as its numeric id.
	Extra Fields `json:"-"`

	plain bool
}

// PlainMedication builds an entry that is stored as a bare string.
func PlainMedication(text string) Medication {
	return Medication{Name: text, plain: true}
}

// IsPlain reports whether the entry is stored as a bare string.
func (m Medication) IsPlain() bool {
	return m.plain
}

// Structured returns the entry in object form.
func (m Medication) Structured() Medication {
	m.plain = false
	return m
}

type medicationAlias Medication

func (m *Medication) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*m = PlainMedication(text)
		return nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("medication must be a string or an object, got %s", trimmed)
	}

	var a medicationAlias
	extra, err := decodeObject(trimmed, &a)
	if err != nil {
		return err
	}
	*m = Medication(a)
	m.Extra = extra
	m.plain = false
	return nil
}

func (m Medication) MarshalJSON() ([]byte, error) {
	if m.plain {
		return json.Marshal(m.Name)
	}
	return encodeObject(medicationAlias(m), m.Extra)
}

// StructuredMedications returns a copy of meds with every entry in object form.
func StructuredMedications(meds []Medication) []Medication {
	if meds == nil {
		return nil
	}
	out := make([]Medication, len(meds))
	for i, m := range meds {
		out[i] = m.Structured()
	}
	return out
}
