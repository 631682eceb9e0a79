package bizdesk

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// LoggingMiddleware logs every store operation with its duration. Writes are
// logged at info, reads at debug, and failures at warn.
func LoggingMiddleware(logger *zap.Logger) MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, op *OpInfo, next func(context.Context) error) error {
		start := time.Now()
		err := next(ctx)

		fields := []zap.Field{
			zap.String("op", string(op.Operation)),
			zap.String("collection", op.Collection),
			zap.Duration("took", time.Since(start)),
		}
		if op.ID != "" {
			fields = append(fields, zap.String("id", op.ID))
		}

		switch {
		case err != nil && !errors.Is(err, ErrNotFound):
			logger.Warn("store operation failed", append(fields, zap.Error(err))...)
		case op.Operation == OpFind:
			logger.Debug("store read", fields...)
		default:
			logger.Info("store write", fields...)
		}
		return err
	}
}
