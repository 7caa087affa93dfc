package middleware

import (
	"context"

	"ratecraft/internal/app/commands"
	"ratecraft/internal/app/outbox"
)

// OutboxFlush flushes queued price events once the handler below it has
// succeeded. Stacked inside Transaction, the flush happens in the same
// transaction as the handler's writes.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: nil outbox")
	}
	return func(next commands.Bus) commands.Bus {
		return dispatchFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
