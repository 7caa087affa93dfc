package middleware

import (
	"context"
	"errors"

	"ratecraft/internal/app/commands"
	"ratecraft/internal/app/uow"
)

var ErrUnitOfWorkMissing = errors.New("middleware: unit of work not found")

// TxOptionsProvider lets the composition root vary transaction options per
// command, e.g. read-only for queries dispatched as commands.
type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// ContextInjector is implemented by units that carry their own execution
// context, like a Mongo session.
type ContextInjector interface {
	InjectContext(context.Context) context.Context
}

// Transaction opens a unit of work per command, binds it to the context
// for the handlers, and commits on success or rolls back on error.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return dispatchFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			opts := uow.TxOptions{}
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			unit, err := factory.Begin(ctx, opts)
			if err != nil {
				return nil, err
			}

			execCtx := ctx
			if injector, ok := unit.(ContextInjector); ok {
				execCtx = injector.InjectContext(ctx)
			}
			execCtx = uow.ContextWithUnitOfWork(execCtx, unit)

			res, err := next.Dispatch(execCtx, cmd)
			if err != nil {
				_ = unit.Rollback(execCtx)
				return nil, err
			}
			if err := unit.Commit(execCtx); err != nil {
				_ = unit.Rollback(execCtx)
				return nil, err
			}
			return res, nil
		})
	}
}
