package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Query is a read against the mind map. Handlers must not change state.
type Query interface {
	Validate() error
}

type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// ErrNoHandler is returned by Ask for a query type nobody registered.
var ErrNoHandler = errors.New("no query handler registered")

// slowQuery is the duration above which a successful query is logged at Info.
const slowQuery = 250 * time.Millisecond

// QueryBus routes queries by concrete type. Handlers are registered at
// startup; Ask is safe for concurrent use.
type QueryBus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]QueryHandler
	logger   *zap.Logger
}

// NewQueryBus returns an empty bus. A nil logger turns query logging off.
func NewQueryBus(logger *zap.Logger) *QueryBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryBus{
		handlers: make(map[reflect.Type]QueryHandler),
		logger:   logger,
	}
}

func (b *QueryBus) Register(query Query, handler QueryHandler) error {
	t := reflect.TypeOf(query)
	if t == nil {
		return errors.New("cannot register a handler for a nil query")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, taken := b.handlers[t]; taken {
		return fmt.Errorf("%s already has a handler", t.Name())
	}
	b.handlers[t] = handler
	return nil
}

// Ask validates query and returns its handler's result. Handler errors are
// wrapped with the query name and keep their AppError type.
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	name := queryName(query)
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}

	b.mu.RLock()
	handler, ok := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNoHandler, name)
	}

	start := time.Now()
	result, err := handler.Handle(ctx, query)
	elapsed := time.Since(start)
	if err != nil {
		b.logger.Debug("Query failed",
			zap.String("query", name),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if elapsed > slowQuery {
		b.logger.Info("Slow query", zap.String("query", name), zap.Duration("duration", elapsed))
	}
	return result, nil
}

func queryName(query Query) string {
	if t := reflect.TypeOf(query); t != nil {
		return t.Name()
	}
	return "<nil>"
}
