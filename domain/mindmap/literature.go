package mindmap

import (
	"time"

	"pgy3-backend/pkg/utils"
)

// Literature is a paper or book reference, optionally with an uploaded PDF.
type Literature struct {
	Node
	Title        string   `json:"title" validate:"required"`
	Authors      *string  `json:"authors,omitempty"`
	Publication  *string  `json:"publication,omitempty"`
	Year         *int     `json:"year,omitempty"`
	DOI          *string  `json:"doi,omitempty"`
	Abstract     *string  `json:"abstract,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
	LinkedTopics []string `json:"linked_topics"`
	PDFPath      *string  `json:"pdf_path,omitempty"`

	Extra Fields `json:"-"`
}

type literatureAlias Literature

func (l *Literature) UnmarshalJSON(data []byte) error {
	var a literatureAlias
	extra, err := decodeObject(data, &a)
	if err != nil {
		return err
	}
	*l = Literature(a)
	l.Extra = extra
	return nil
}

func (l Literature) MarshalJSON() ([]byte, error) {
	return encodeObject(literatureAlias(l), l.Extra)
}

func (l *Literature) Kind() Kind { return KindLiterature }

func (l *Literature) Validate() error {
	return utils.ValidateStruct(l, "invalid literature")
}

// AttachPDF records the public path of an uploaded PDF.
func (l *Literature) AttachPDF(path string, now time.Time) {
	l.PDFPath = &path
	l.touch(now)
}

func (l *Literature) normalize(now time.Time, newID IDGenerator) {
	l.normalizeNode(now, newID)
	l.applyDefaults()
}

func (l *Literature) applyDefaults() {
	if l.LinkedTopics == nil {
		l.LinkedTopics = []string{}
	}
}
