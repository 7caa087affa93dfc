package middleware

import (
	"context"

	"ratecraft/internal/app/commands"
	"ratecraft/internal/app/queries"
)

// CommandMiddleware decorates a command bus. The pricing pipeline chains
// idempotency, transaction and outbox flush around the handler registry.
type CommandMiddleware func(next commands.Bus) commands.Bus

// QueryMiddleware decorates a query bus.
type QueryMiddleware func(next queries.Bus) queries.Bus

// ChainCommands applies middlewares around base, first argument outermost.
func ChainCommands(base commands.Bus, chain ...CommandMiddleware) commands.Bus {
	bus := base
	for i := len(chain) - 1; i >= 0; i-- {
		bus = chain[i](bus)
	}
	return bus
}

// ChainQueries applies middlewares around base, first argument outermost.
func ChainQueries(base queries.Bus, chain ...QueryMiddleware) queries.Bus {
	bus := base
	for i := len(chain) - 1; i >= 0; i-- {
		bus = chain[i](bus)
	}
	return bus
}

type dispatchFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f dispatchFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	return f(ctx, cmd)
}

type askFunc func(ctx context.Context, q queries.Query) (any, error)

func (f askFunc) Ask(ctx context.Context, q queries.Query) (any, error) {
	return f(ctx, q)
}
