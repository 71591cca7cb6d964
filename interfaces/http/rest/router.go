package rest

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"pgy3-backend/application/commands/bus"
	querybus "pgy3-backend/application/queries/bus"
	"pgy3-backend/application/ports"
	"pgy3-backend/domain/mindmap"
	"pgy3-backend/infrastructure/observability"
	"pgy3-backend/infrastructure/storage/local"
	"pgy3-backend/interfaces/http/rest/handlers"
	"pgy3-backend/interfaces/http/rest/middleware"
	apperrors "pgy3-backend/pkg/errors"
)

// Options carries the router settings taken from configuration.
type Options struct {
	AllowedOrigins       []string
	MaxBodyBytes         int64
	UploadsDir           string
	Backend              string
	EnableCircuitBreaker bool
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	uploads      ports.FileStorage
	errorHandler *apperrors.ErrorHandler
	metrics      observability.Metrics
	tracer       trace.Tracer
	options      Options
	logger       *zap.Logger
}

// NewRouter creates a new router instance. metrics and tracer may be nil.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	uploads ports.FileStorage,
	errorHandler *apperrors.ErrorHandler,
	metrics observability.Metrics,
	tracer trace.Tracer,
	options Options,
	logger *zap.Logger,
) *Router {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		uploads:      uploads,
		errorHandler: errorHandler,
		metrics:      metrics,
		tracer:       tracer,
		options:      options,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Metrics(rt.metrics))
	if rt.tracer != nil {
		router.Use(middleware.Tracing(rt.tracer))
	}
	router.Use(rt.errorHandler.Middleware)

	origins := rt.options.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	health := handlers.NewHealthHandler(rt.queryBus, rt.options.Backend, rt.errorHandler, rt.logger)
	router.Get("/health", health.Health)
	router.Get("/ready", health.Ready)

	if h := rt.metrics.Handler(); h != nil {
		router.Handle("/metrics", h)
	}

	if rt.options.UploadsDir != "" {
		prefix := strings.TrimSuffix(local.PublicPrefix, "/")
		router.Handle(local.PublicPrefix+"*",
			http.StripPrefix(prefix, http.FileServer(http.Dir(rt.options.UploadsDir))))
	}

	router.Route("/api", func(r chi.Router) {
		if rt.options.EnableCircuitBreaker {
			r.Use(middleware.CircuitBreaker(
				middleware.DefaultCircuitBreakerConfig("mindmap-store"),
				rt.errorHandler,
				rt.logger,
			))
		}

		mindMap := handlers.NewMindMapHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.options.MaxBodyBytes, rt.logger)
		r.Get("/", mindMap.Root)
		r.Get("/mindmap-data", mindMap.GetDocument)
		r.Put("/mindmap-data", mindMap.SaveDocument)
		r.Post("/init-sample-data", mindMap.InitSampleData)
		r.Get("/connections", mindMap.ListConnections)

		entities := handlers.NewEntityHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.options.MaxBodyBytes, rt.logger)
		for _, kind := range mindmap.Kinds {
			r.Route("/"+string(kind), func(r chi.Router) {
				r.Get("/", mindMap.ListCollection(kind))
				r.Post("/", entities.Create(kind))
				r.Get("/{id}", entities.Get(kind))
				r.Put("/{id}", entities.Update(kind))
				r.Delete("/{id}", entities.Delete(kind))
			})
		}

		upload := handlers.NewUploadHandler(rt.commandBus, rt.uploads, rt.errorHandler, rt.options.MaxBodyBytes, rt.logger)
		r.Post("/upload-pdf", upload.UploadPDF)

		r.Get("/docs/openapi", handlers.OpenAPI(rt.errorHandler))
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.Handle(w, r, apperrors.NewNotFoundError("route", r.URL.Path))
	})

	return router
}
