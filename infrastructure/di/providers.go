package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"pgy3-backend/application/commands/bus"
	commandhandlers "pgy3-backend/application/commands/handlers"
	"pgy3-backend/application/ports"
	querybus "pgy3-backend/application/queries/bus"
	queryhandlers "pgy3-backend/application/queries/handlers"
	"pgy3-backend/domain/mindmap"
	"pgy3-backend/infrastructure/config"
	"pgy3-backend/infrastructure/messaging"
	"pgy3-backend/infrastructure/messaging/eventbridge"
	"pgy3-backend/infrastructure/observability"
	"pgy3-backend/infrastructure/persistence"
	"pgy3-backend/infrastructure/persistence/dynamodb"
	"pgy3-backend/infrastructure/persistence/file"
	"pgy3-backend/infrastructure/persistence/memory"
	"pgy3-backend/infrastructure/persistence/mongo"
	"pgy3-backend/infrastructure/persistence/postgres"
	"pgy3-backend/infrastructure/persistence/sqlite"
	"pgy3-backend/infrastructure/storage/local"
	"pgy3-backend/interfaces/http/rest"
	apperrors "pgy3-backend/pkg/errors"
)

const serviceName = "pgy3-backend"

// ProvideAtomicLevel parses the configured log level into a level the
// config watcher can change at runtime.
func ProvideAtomicLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	return zap.ParseAtomicLevel(cfg.LogLevel)
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, func(), error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build(zap.Fields(zap.String("service", serviceName)))
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideMedium opens the backing medium selected by STORAGE_BACKEND.
func ProvideMedium(ctx context.Context, cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) (persistence.Medium, func(), error) {
	medium, cleanup, err := NewMedium(ctx, cfg, awsCfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Storage backend ready", zap.String("backend", medium.Name()))
	return medium, cleanup, nil
}

// NewMedium opens a medium for cfg.StorageBackend. The returned cleanup
// releases connections and is never nil.
func NewMedium(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (persistence.Medium, func(), error) {
	noop := func() {}

	switch cfg.StorageBackend {
	case config.BackendFile:
		return file.New(cfg.DataFile), noop, nil

	case config.BackendMemory:
		return memory.New(), noop, nil

	case config.BackendSQLite:
		m, err := sqlite.Open(cfg.SQLitePath, cfg.DocumentKey)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite medium: %w", err)
		}
		return m, func() { _ = m.Close() }, nil

	case config.BackendPostgres:
		m, err := postgres.Open(ctx, cfg.PostgresDSN, cfg.DocumentKey)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres medium: %w", err)
		}
		return m, func() { _ = m.Close() }, nil

	case config.BackendMongo:
		m, err := mongo.Connect(ctx, cfg.MongoURL, cfg.DBName, cfg.DocumentKey)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo medium: %w", err)
		}
		return m, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = m.Close(closeCtx)
		}, nil

	case config.BackendDynamoDB:
		client := awsdynamodb.NewFromConfig(awsCfg)
		return dynamodb.New(client, cfg.DynamoDBTable, cfg.DocumentKey), noop, nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

// ProvideMetrics creates the metrics sink selected by METRICS_PROVIDER.
func ProvideMetrics(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) observability.Metrics {
	switch cfg.MetricsProvider {
	case config.MetricsPrometheus:
		return observability.NewPrometheusMetrics(cfg.MetricsNamespace)
	case config.MetricsCloudWatch:
		namespace := fmt.Sprintf("PGY3/%s", cfg.Environment)
		return observability.NewCloudWatchMetrics(namespace, awscloudwatch.NewFromConfig(awsCfg), logger)
	}
	return observability.NopMetrics{}
}

// ProvideTracerProvider starts tracing when enabled and otherwise returns a
// no-op provider.
func ProvideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.EnableTracing,
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRate:  cfg.TracingSampleRate,
	})
	if err != nil {
		return nil, nil, err
	}
	return tp, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}, nil
}

// ProvideTracer exposes the tracer used by the store decorator and the HTTP
// middleware.
func ProvideTracer(tp *observability.TracerProvider) trace.Tracer {
	return tp.Tracer()
}

// ProvideDocumentStore builds the store over medium and wraps it with
// metrics and tracing.
func ProvideDocumentStore(
	medium persistence.Medium,
	cfg *config.Config,
	metrics observability.Metrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) (ports.DocumentStore, error) {
	format, err := mindmap.ParseMedicationFormat(cfg.MedicationFormat)
	if err != nil {
		return nil, err
	}
	var store ports.DocumentStore = persistence.NewStore(medium, logger, persistence.WithMedicationFormat(format))
	store = observability.NewInstrumentedStore(store, metrics)
	return observability.NewTracedStore(store, tracer), nil
}

// ProvideNotifier publishes save events to EventBridge when a bus is
// configured and only logs them otherwise.
func ProvideNotifier(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) ports.ChangeNotifier {
	if cfg.EventBusName == "" {
		return messaging.NewLogNotifier(logger)
	}
	return eventbridge.NewNotifier(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger)
}

// ProvideCommandBus creates the command bus and registers every handler.
func ProvideCommandBus(store ports.DocumentStore, notifier ports.ChangeNotifier, logger *zap.Logger) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(bus.LoggingMiddleware(logger))
	handler := commandhandlers.NewMindMapCommandHandler(store, notifier, nil, nil, logger)
	if err := handler.Register(commandBus); err != nil {
		return nil, err
	}
	return commandBus, nil
}

// ProvideQueryBus creates the query bus and registers every handler.
func ProvideQueryBus(store ports.DocumentStore, logger *zap.Logger) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(logger)
	if err := queryhandlers.NewMindMapQueryHandler(store, logger).Register(queryBus); err != nil {
		return nil, err
	}
	return queryBus, nil
}

func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *apperrors.ErrorHandler {
	return apperrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

func ProvideUploadStorage(cfg *config.Config) (*local.Uploads, error) {
	return local.NewUploads(cfg.UploadsDir)
}

// ProvideRouter assembles the HTTP handler.
func ProvideRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	uploads *local.Uploads,
	errorHandler *apperrors.ErrorHandler,
	metrics observability.Metrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) http.Handler {
	options := rest.Options{
		AllowedOrigins:       cfg.CORSAllowedOrigins,
		MaxBodyBytes:         cfg.MaxBodyBytes,
		UploadsDir:           uploads.Dir(),
		Backend:              cfg.StorageBackend,
		EnableCircuitBreaker: cfg.EnableCircuitBreaker,
	}
	return rest.NewRouter(commandBus, queryBus, uploads, errorHandler, metrics, tracer, options, logger).Setup()
}
