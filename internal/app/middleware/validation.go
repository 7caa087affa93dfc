package middleware

import (
	"context"

	"ratecraft/internal/app/commands"
	"ratecraft/internal/app/queries"
)

// Validator checks a command or query before it reaches its handler. The
// domain types validate themselves; this hook exists for cross-cutting
// checks layered on top.
type Validator interface {
	Validate(ctx context.Context, message any) error
}

// Validation rejects commands the validator refuses. Rejected commands
// never reach the pipeline stages below this one.
func Validation(v Validator) CommandMiddleware {
	if v == nil {
		panic("middleware: nil validator")
	}
	return func(next commands.Bus) commands.Bus {
		return dispatchFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := v.Validate(ctx, cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

// QueryValidation is the read-side counterpart of Validation.
func QueryValidation(v Validator) QueryMiddleware {
	if v == nil {
		panic("middleware: nil validator")
	}
	return func(next queries.Bus) queries.Bus {
		return askFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := v.Validate(ctx, q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
}
