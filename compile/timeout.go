package compile

import (
	"context"
	"time"
)

// contextWithTimeout returns ctx unchanged when seconds is non-positive,
// otherwise wraps it with a deadline. Mirrors the teacher's timeout.go
// pattern of treating "no timeout configured" as a no-op rather than an
// error.
func contextWithTimeout(ctx context.Context, seconds int) (context.Context, context.CancelFunc) {
	if seconds <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
}
