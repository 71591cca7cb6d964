package commands

import (
	"strings"

	"pgy3-backend/domain/mindmap"
	apperrors "pgy3-backend/pkg/errors"
)

// Reasons recorded on change notifications.
const (
	ReasonReplace    = "replace"
	ReasonReset      = "reset"
	ReasonCreate     = "create"
	ReasonUpdate     = "update"
	ReasonDelete     = "delete"
	ReasonAttachment = "attachment"
)

// ReplaceDocumentCommand overwrites the whole mind map.
type ReplaceDocumentCommand struct {
	Document *mindmap.Document
}

func (c *ReplaceDocumentCommand) Validate() error {
	if c.Document == nil {
		return apperrors.NewValidationError("document is required")
	}
	return nil
}

// ResetDocumentCommand replaces the mind map with fresh seed data.
type ResetDocumentCommand struct{}

func (c *ResetDocumentCommand) Validate() error { return nil }

// CreateEntityCommand appends a new entity. On success Entity holds the
// stored values, including the generated id and timestamps.
type CreateEntityCommand struct {
	Entity mindmap.Entity
}

func (c *CreateEntityCommand) Validate() error {
	if c.Entity == nil {
		return apperrors.NewValidationError("entity is required")
	}
	return nil
}

// UpdateEntityCommand applies a patch to one entity. On success Result holds
// the updated entity.
type UpdateEntityCommand struct {
	Kind  mindmap.Kind
	ID    string
	Patch mindmap.Patch

	Result mindmap.Entity
}

func (c *UpdateEntityCommand) Validate() error {
	if err := validateRef(c.Kind, c.ID); err != nil {
		return err
	}
	if c.Patch == nil {
		return apperrors.NewValidationError("patch is required")
	}
	if c.Patch.Kind() != c.Kind {
		return apperrors.NewValidationError("patch does not match entity kind")
	}
	return nil
}

// DeleteEntityCommand removes one entity.
type DeleteEntityCommand struct {
	Kind mindmap.Kind
	ID   string
}

func (c *DeleteEntityCommand) Validate() error {
	return validateRef(c.Kind, c.ID)
}

// AttachPDFCommand records an uploaded PDF on a literature entry.
type AttachPDFCommand struct {
	LiteratureID string
	Path         string

	Result *mindmap.Literature
}

func (c *AttachPDFCommand) Validate() error {
	if strings.TrimSpace(c.LiteratureID) == "" {
		return apperrors.NewValidationError("literatureId is required")
	}
	if c.Path == "" {
		return apperrors.NewValidationError("path is required")
	}
	return nil
}

func validateRef(kind mindmap.Kind, id string) error {
	if _, err := mindmap.ParseKind(string(kind)); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError("id is required")
	}
	return nil
}
