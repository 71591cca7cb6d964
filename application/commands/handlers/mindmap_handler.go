package handlers

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"pgy3-backend/application/commands"
	"pgy3-backend/application/commands/bus"
	"pgy3-backend/application/ports"
	"pgy3-backend/domain/mindmap"
	apperrors "pgy3-backend/pkg/errors"
	"pgy3-backend/pkg/utils"
)

// MindMapCommandHandler executes every write against the document store.
// Writes from this process are serialised so per-entity read-modify-write
// cycles never lose each other's changes.
type MindMapCommandHandler struct {
	store    ports.DocumentStore
	notifier ports.ChangeNotifier
	clock    ports.Clock
	newID    mindmap.IDGenerator
	logger   *zap.Logger

	mu sync.Mutex
}

func NewMindMapCommandHandler(
	store ports.DocumentStore,
	notifier ports.ChangeNotifier,
	clock ports.Clock,
	newID mindmap.IDGenerator,
	logger *zap.Logger,
) *MindMapCommandHandler {
	if clock == nil {
		clock = utils.NowUTC
	}
	if newID == nil {
		newID = mindmap.NewID
	}
	return &MindMapCommandHandler{
		store:    store,
		notifier: notifier,
		clock:    clock,
		newID:    newID,
		logger:   logger,
	}
}

// Register binds every command this handler serves to b.
func (h *MindMapCommandHandler) Register(b *bus.CommandBus) error {
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandlerFunc
	}{
		{&commands.ReplaceDocumentCommand{}, typed(h.HandleReplace)},
		{&commands.ResetDocumentCommand{}, typed(h.HandleReset)},
		{&commands.CreateEntityCommand{}, typed(h.HandleCreate)},
		{&commands.UpdateEntityCommand{}, typed(h.HandleUpdate)},
		{&commands.DeleteEntityCommand{}, typed(h.HandleDelete)},
		{&commands.AttachPDFCommand{}, typed(h.HandleAttachPDF)},
	}
	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}

// typed adapts a handler for one concrete command type to the bus.
func typed[C bus.Command](fn func(context.Context, C) error) bus.CommandHandlerFunc {
	return func(ctx context.Context, cmd bus.Command) error {
		c, ok := cmd.(C)
		if !ok {
			return apperrors.NewInternalError("unexpected command type")
		}
		return fn(ctx, c)
	}
}

// HandleReplace normalises the incoming document and stores it as is.
func (h *MindMapCommandHandler) HandleReplace(ctx context.Context, cmd *commands.ReplaceDocumentCommand) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	cmd.Document.Normalize(h.clock(), h.newID)
	if err := h.store.Save(ctx, cmd.Document); err != nil {
		return err
	}
	h.notify(ctx, commands.ReasonReplace, cmd.Document)
	return nil
}

// HandleReset overwrites the stored document with fresh seed data.
func (h *MindMapCommandHandler) HandleReset(ctx context.Context, _ *commands.ResetDocumentCommand) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc := mindmap.SeedDocument(h.clock(), h.newID)
	if err := h.store.Save(ctx, doc); err != nil {
		return err
	}
	h.notify(ctx, commands.ReasonReset, doc)
	return nil
}

func (h *MindMapCommandHandler) HandleCreate(ctx context.Context, cmd *commands.CreateEntityCommand) error {
	return h.mutate(ctx, commands.ReasonCreate, func(doc *mindmap.Document) error {
		if err := mindmap.PrepareNew(cmd.Entity, h.clock(), h.newID); err != nil {
			return err
		}
		return doc.Insert(cmd.Entity)
	})
}

func (h *MindMapCommandHandler) HandleUpdate(ctx context.Context, cmd *commands.UpdateEntityCommand) error {
	return h.mutate(ctx, commands.ReasonUpdate, func(doc *mindmap.Document) error {
		entity, ok := doc.Find(cmd.Kind, cmd.ID)
		if !ok {
			return apperrors.NewNotFoundError(cmd.Kind.Singular(), cmd.ID)
		}
		if err := cmd.Patch.ApplyTo(entity, h.clock()); err != nil {
			return err
		}
		if err := entity.Validate(); err != nil {
			return err
		}
		cmd.Result = entity
		return nil
	})
}

func (h *MindMapCommandHandler) HandleDelete(ctx context.Context, cmd *commands.DeleteEntityCommand) error {
	return h.mutate(ctx, commands.ReasonDelete, func(doc *mindmap.Document) error {
		if !doc.Remove(cmd.Kind, cmd.ID) {
			return apperrors.NewNotFoundError(cmd.Kind.Singular(), cmd.ID)
		}
		return nil
	})
}

func (h *MindMapCommandHandler) HandleAttachPDF(ctx context.Context, cmd *commands.AttachPDFCommand) error {
	return h.mutate(ctx, commands.ReasonAttachment, func(doc *mindmap.Document) error {
		entity, ok := doc.Find(mindmap.KindLiterature, cmd.LiteratureID)
		if !ok {
			return apperrors.NewNotFoundError("literature", cmd.LiteratureID)
		}
		lit := entity.(*mindmap.Literature)
		lit.AttachPDF(cmd.Path, h.clock())
		cmd.Result = lit
		return nil
	})
}

// mutate runs one read-modify-write cycle under the write lock.
func (h *MindMapCommandHandler) mutate(ctx context.Context, reason string, change func(*mindmap.Document) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc, err := h.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := change(doc); err != nil {
		return err
	}
	if err := h.store.Save(ctx, doc); err != nil {
		return err
	}
	h.notify(ctx, reason, doc)
	return nil
}

func (h *MindMapCommandHandler) notify(ctx context.Context, reason string, doc *mindmap.Document) {
	counts := doc.Counts()
	h.logger.Info("Mind map saved",
		zap.String("reason", reason),
		zap.Int("topics", counts.Topics),
		zap.Int("cases", counts.Cases),
		zap.Int("tasks", counts.Tasks),
		zap.Int("literature", counts.Literature),
		zap.Int("connections", counts.Connections),
	)
	if h.notifier == nil {
		return
	}
	event := ports.DocumentSaved{Reason: reason, Counts: counts, SavedAt: h.clock()}
	if err := h.notifier.DocumentSaved(ctx, event); err != nil {
		h.logger.Warn("Failed to publish save notification",
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
}
