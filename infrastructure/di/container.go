package di

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"pgy3-backend/application/commands/bus"
	"pgy3-backend/application/ports"
	querybus "pgy3-backend/application/queries/bus"
	"pgy3-backend/domain/mindmap"
	"pgy3-backend/infrastructure/config"
	"pgy3-backend/infrastructure/observability"
	"pgy3-backend/infrastructure/persistence"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Level      zap.AtomicLevel
	Logger     *zap.Logger
	Medium     persistence.Medium
	Store      ports.DocumentStore
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Metrics    observability.Metrics
	Tracer     trace.Tracer
	Handler    http.Handler
}

// Tooling holds what the admin CLI needs: a medium and an undecorated store
// over it.
type Tooling struct {
	Config *config.Config
	Logger *zap.Logger
	AWS    aws.Config
	Medium persistence.Medium
	Store  *persistence.Store
}

// ProvideToolingStore builds a plain store for offline administration.
func ProvideToolingStore(medium persistence.Medium, cfg *config.Config, logger *zap.Logger) (*persistence.Store, error) {
	format, err := mindmap.ParseMedicationFormat(cfg.MedicationFormat)
	if err != nil {
		return nil, err
	}
	return persistence.NewStore(medium, logger, persistence.WithMedicationFormat(format)), nil
}
