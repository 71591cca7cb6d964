package mindmap

import (
	"encoding/json"
	"time"

	apperrors "pgy3-backend/pkg/errors"
)

// fieldErrors flattens a validation result into field errors so checks the
// tags cannot express can be appended before the error is built.
func fieldErrors(err error) []apperrors.FieldError {
	if err == nil {
		return nil
	}
	if appErr := apperrors.GetAppError(err); appErr != nil && len(appErr.Fields()) > 0 {
		return appErr.Fields()
	}
	return []apperrors.FieldError{{Rule: "invalid", Message: err.Error()}}
}

// DecodeEntity parses one entity of the given kind from a request body.
func DecodeEntity(kind Kind, data []byte) (Entity, error) {
	var e Entity
	switch kind {
	case KindTopic:
		e = &Topic{}
	case KindCase:
		e = &Case{}
	case KindTask:
		e = &Task{}
	case KindLiterature:
		e = &Literature{}
	default:
		return nil, apperrors.NewValidationError("unknown entity kind " + string(kind))
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, apperrors.NewValidationError("invalid " + kind.Singular() + " body: " + err.Error()).WithCause(err)
	}
	return e, nil
}

// PrepareNew readies a decoded entity for insertion: defaults are applied,
// timestamps are set to now and case medications take the object form.
func PrepareNew(e Entity, now time.Time, newID IDGenerator) error {
	e.normalize(now, newID)
	e.stamp(now, newID)
	if c, ok := e.(*Case); ok {
		c.Medications = StructuredMedications(c.Medications)
	}
	return e.Validate()
}
