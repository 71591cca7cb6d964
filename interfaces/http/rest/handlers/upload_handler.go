package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"pgy3-backend/application/commands"
	"pgy3-backend/application/commands/bus"
	"pgy3-backend/application/ports"
	"pgy3-backend/pkg/common"
	apperrors "pgy3-backend/pkg/errors"
)

const multipartMemory = 8 << 20

// UploadResponse acknowledges a stored PDF.
type UploadResponse struct {
	Message  string `json:"message"`
	FilePath string `json:"filePath"`
}

// UploadHandler stores literature PDFs and records their path.
type UploadHandler struct {
	commandBus   *bus.CommandBus
	storage      ports.FileStorage
	errors       *apperrors.ErrorHandler
	maxBodyBytes int64
	logger       *zap.Logger
}

func NewUploadHandler(
	commandBus *bus.CommandBus,
	storage ports.FileStorage,
	errorHandler *apperrors.ErrorHandler,
	maxBodyBytes int64,
	logger *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		commandBus:   commandBus,
		storage:      storage,
		errors:       errorHandler,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// UploadPDF handles POST /api/upload-pdf with multipart fields pdf and
// literatureId.
func (h *UploadHandler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	common.LimitBody(w, r, h.maxBodyBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errors.Handle(w, r, apperrors.NewTooLargeError(tooLarge.Limit))
			return
		}
		h.errors.Handle(w, r, apperrors.NewValidationError("No file uploaded.").WithCause(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("pdf")
	if err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError("No file uploaded.").WithCause(err))
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); !strings.EqualFold(ct, "application/pdf") {
		h.errors.Handle(w, r, apperrors.NewValidationError("Only PDF files are allowed!").
			WithDetail("content_type", ct))
		return
	}

	literatureID := strings.TrimSpace(r.FormValue("literatureId"))
	if literatureID == "" {
		h.errors.Handle(w, r, apperrors.NewValidationError("Literature ID is required."))
		return
	}

	path, err := h.storage.Put(r.Context(), header.Filename, file)
	if err != nil {
		h.errors.Handle(w, r, apperrors.NewPersistenceError("store upload", err))
		return
	}

	cmd := &commands.AttachPDFCommand{LiteratureID: literatureID, Path: path}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		if rmErr := h.storage.Remove(r.Context(), path); rmErr != nil {
			h.logger.Error("Failed to clean up file",
				zap.String("path", path),
				zap.Error(rmErr),
			)
		}
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("PDF attached",
		zap.String("literatureId", literatureID),
		zap.String("path", path),
	)
	common.RespondJSON(w, http.StatusOK, UploadResponse{
		Message:  "File uploaded and path saved.",
		FilePath: path,
	})
}
