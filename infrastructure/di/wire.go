//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"pgy3-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideAtomicLevel,
	ProvideLogger,
	ProvideAWSConfig,
	ProvideMedium,
	ProvideMetrics,
	ProvideTracerProvider,
	ProvideTracer,
	ProvideDocumentStore,
	ProvideNotifier,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideErrorHandler,
	ProvideUploadStorage,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// ToolingSet wires the admin CLI.
var ToolingSet = wire.NewSet(
	ProvideAtomicLevel,
	ProvideLogger,
	ProvideAWSConfig,
	ProvideMedium,
	ProvideToolingStore,
	wire.Struct(new(Tooling), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}

// InitializeTooling creates the dependencies of mindmapctl.
func InitializeTooling(ctx context.Context, cfg *config.Config) (*Tooling, func(), error) {
	wire.Build(ToolingSet)
	return nil, nil, nil
}
