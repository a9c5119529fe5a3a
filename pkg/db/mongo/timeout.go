package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// WithTimeout bounds ctx by timeout unless ctx is a transaction session:
// wrapping a SessionContext would detach the operation from its transaction.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}

	return context.WithTimeout(ctx, timeout)
}
