package persistence

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"pgy3-backend/domain/mindmap"
	apperrors "pgy3-backend/pkg/errors"
	"pgy3-backend/pkg/utils"
)

// Store implements ports.DocumentStore over a Medium.
type Store struct {
	medium Medium
	format mindmap.MedicationFormat
	clock  func() time.Time
	newID  mindmap.IDGenerator
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMedicationFormat selects how case medications are written.
func WithMedicationFormat(f mindmap.MedicationFormat) Option {
	return func(s *Store) { s.format = f }
}

// WithClock overrides the time source used for seed data.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithIDGenerator overrides the id source used for seed data.
func WithIDGenerator(newID mindmap.IDGenerator) Option {
	return func(s *Store) { s.newID = newID }
}

func NewStore(medium Medium, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		medium: medium,
		format: mindmap.MedicationsPreserve,
		clock:  utils.NowUTC,
		newID:  mindmap.NewID,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the stored document. An empty medium is seeded first. Stored
// data that cannot be decoded, including malformed timestamps, is a
// PERSISTENCE error; nothing is coerced.
func (s *Store) Load(ctx context.Context) (*mindmap.Document, error) {
	data, err := s.medium.Read(ctx)
	if errors.Is(err, ErrNoDocument) {
		return s.materializeSeed(ctx)
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("load", err)
	}
	return s.decode(data)
}

// Save validates doc, completes a missing connections sequence and replaces
// the stored document. updated_at values are stored as given.
func (s *Store) Save(ctx context.Context, doc *mindmap.Document) error {
	if doc == nil {
		return apperrors.NewValidationError("document is required")
	}
	if doc.Connections == nil {
		doc.Connections = []mindmap.Connection{}
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	out := doc
	if s.format == mindmap.MedicationsStructured {
		out = doc.WithStructuredMedications()
	}
	data, err := mindmap.EncodeDocument(out)
	if err != nil {
		return apperrors.NewPersistenceError("encode", err)
	}
	if err := s.medium.Write(ctx, data); err != nil {
		return apperrors.NewPersistenceError("save", err)
	}

	s.logger.Debug("Stored mind map document",
		zap.String("medium", s.medium.Name()),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// materializeSeed writes the seed document unless another writer got there
// first, then returns whatever the medium holds.
func (s *Store) materializeSeed(ctx context.Context) (*mindmap.Document, error) {
	seed := mindmap.SeedDocument(s.clock(), s.newID)
	data, err := mindmap.EncodeDocument(seed)
	if err != nil {
		return nil, apperrors.NewPersistenceError("encode seed", err)
	}

	created, err := s.medium.Create(ctx, data)
	if err != nil {
		return nil, apperrors.NewPersistenceError("seed", err)
	}
	if created {
		s.logger.Info("Seeded empty mind map store", zap.String("medium", s.medium.Name()))
		return s.decode(data)
	}

	data, err = s.medium.Read(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load", err)
	}
	return s.decode(data)
}

func (s *Store) decode(data []byte) (*mindmap.Document, error) {
	doc, err := mindmap.DecodeDocument(data)
	if err != nil {
		return nil, apperrors.NewPersistenceError("decode", err)
	}
	doc.EnsureCollections()

	counts := doc.Counts()
	s.logger.Debug("Loaded mind map document",
		zap.String("medium", s.medium.Name()),
		zap.Int("topics", counts.Topics),
		zap.Int("cases", counts.Cases),
		zap.Int("connections", counts.Connections),
		zap.Int("legacy_handles", counts.LegacyHandles),
	)
	return doc, nil
}
