package queries

import (
	"strings"

	"pgy3-backend/domain/mindmap"
	apperrors "pgy3-backend/pkg/errors"
)

// GetDocumentQuery asks for the whole mind map.
type GetDocumentQuery struct{}

func (q GetDocumentQuery) Validate() error { return nil }

// ListCollectionQuery asks for one entity sequence of the current document.
type ListCollectionQuery struct {
	Kind mindmap.Kind
}

func (q ListCollectionQuery) Validate() error {
	if _, err := mindmap.ParseKind(string(q.Kind)); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}

// ListConnectionsQuery asks for the connection sequence.
type ListConnectionsQuery struct{}

func (q ListConnectionsQuery) Validate() error { return nil }

// GetEntityQuery asks for one entity by kind and id.
type GetEntityQuery struct {
	Kind mindmap.Kind
	ID   string
}

func (q GetEntityQuery) Validate() error {
	if _, err := mindmap.ParseKind(string(q.Kind)); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if strings.TrimSpace(q.ID) == "" {
		return apperrors.NewValidationError("id is required")
	}
	return nil
}
