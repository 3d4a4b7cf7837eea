// internal/service/observe.go
package service

import (
	"context"
	"log/slog"
	"time"

	"walletledger/internal/util"
)

// observe runs fn and logs its start, outcome and duration. Domain rejections are
// logged at warn, everything else at error.
func observe[T any](ctx context.Context, logger *slog.Logger, operation string, fn func() (T, error), attrs ...any) (T, error) {
	log := logger.With(append([]any{"operation", operation}, attrs...)...)
	log.DebugContext(ctx, "Operation started")

	start := time.Now()
	result, err := fn()
	duration := time.Since(start)

	if err != nil {
		kind := util.KindOf(err)
		if kind == util.KindInternal {
			log.ErrorContext(ctx, "Operation failed", "error", err, "kind", kind.String(), "duration", duration)
		} else {
			log.WarnContext(ctx, "Operation rejected", "error", err, "kind", kind.String(), "duration", duration)
		}
		return result, err
	}

	log.InfoContext(ctx, "Operation completed", "duration", duration)
	return result, nil
}
