package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	apperrors "pgy3-backend/pkg/errors"
)

type pingCommand struct{ invalid bool }

func (c *pingCommand) Validate() error {
	if c.invalid {
		return apperrors.NewValidationError("ping is invalid")
	}
	return nil
}

func TestCommandBusDispatchesByType(t *testing.T) {
	b := NewCommandBus()
	var got *pingCommand
	require.NoError(t, b.Register(&pingCommand{}, CommandHandlerFunc(func(_ context.Context, cmd Command) error {
		got = cmd.(*pingCommand)
		return nil
	})))

	cmd := &pingCommand{}
	require.NoError(t, b.Send(context.Background(), cmd))
	assert.Same(t, cmd, got)
}

func TestCommandBusErrors(t *testing.T) {
	b := NewCommandBus()
	handlerErr := apperrors.NewNotFoundError("topic", "t1")
	require.NoError(t, b.Register(&pingCommand{}, CommandHandlerFunc(func(context.Context, Command) error {
		return handlerErr
	})))

	err := b.Register(&pingCommand{}, CommandHandlerFunc(func(context.Context, Command) error { return nil }))
	assert.Error(t, err, "duplicate registration")

	err = b.Send(context.Background(), &pingCommand{invalid: true})
	assert.True(t, apperrors.IsValidation(err))

	err = b.Send(context.Background(), &pingCommand{})
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, errors.Is(err, handlerErr))
}

func TestCommandBusUnknownCommand(t *testing.T) {
	err := NewCommandBus().Send(context.Background(), &pingCommand{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handler registered")
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	b := NewCommandBus(LoggingMiddleware(zap.New(core)))
	fail := false
	require.NoError(t, b.Register(&pingCommand{}, CommandHandlerFunc(func(context.Context, Command) error {
		if fail {
			return errors.New("boom")
		}
		return nil
	})))

	require.NoError(t, b.Send(context.Background(), &pingCommand{}))
	fail = true
	require.Error(t, b.Send(context.Background(), &pingCommand{}))

	assert.Equal(t, 1, logs.FilterMessage("Command succeeded").Len())
	assert.Equal(t, 1, logs.FilterMessage("Command failed").Len())
}
