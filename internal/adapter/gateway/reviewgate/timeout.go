package reviewgate

import (
	"context"
	"errors"
	"time"

	"github.com/YoshitsuguKoike/repostflow/internal/app"
	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

// TimeoutGate bounds how long the inner gate may wait for the reviewer and
// applies a default verdict when no answer arrives.
type TimeoutGate struct {
	inner   Gate
	timeout time.Duration
	def     review.Verdict
	logger  app.Logger
}

// NewTimeoutGate wraps inner. A zero timeout waits as long as ctx allows.
func NewTimeoutGate(inner Gate, timeout time.Duration, def review.Verdict, logger app.Logger) *TimeoutGate {
	return &TimeoutGate{inner: inner, timeout: timeout, def: def, logger: app.LoggerOrDefault(logger)}
}

// RequestVerdict returns the inner gate's verdict, or the default when the
// reviewer does not answer. Cancellation of ctx is returned as an error.
func (g *TimeoutGate) RequestVerdict(ctx context.Context, req output.ReviewRequest) (review.Verdict, error) {
	wctx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	v, err := g.inner.RequestVerdict(wctx, req)
	switch {
	case err == nil:
		return v, nil
	case ctx.Err() != nil:
		return review.Verdict{}, ctx.Err()
	case errors.Is(err, ErrNoResponse), errors.Is(err, context.DeadlineExceeded):
		g.logger.Warn("No verdict for draft %d, applying default: %s", req.Attempt, g.def.Kind)
		return g.def, nil
	default:
		return review.Verdict{}, err
	}
}

// Close closes the inner gate
func (g *TimeoutGate) Close() error {
	return g.inner.Close()
}
