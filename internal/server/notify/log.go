package notify

import (
	"context"
	"time"

	"github.com/mbortnikov/marketauth/internal/logging"
)

// LogDispatcher is the development dispatcher: it records that a dispatch
// happened without contacting any provider. The code value is emitted at
// debug level only so production log levels never capture it.
type LogDispatcher struct {
	logger logging.Logger
	window time.Duration
}

func NewLogDispatcher(logger logging.Logger, window time.Duration) *LogDispatcher {
	return &LogDispatcher{logger: logger.With("module", "notify"), window: window}
}

func (d *LogDispatcher) Send(ctx context.Context, code int, contactHandle string) error {
	d.logger.Info(ctx, "verification code dispatched", "to", contactHandle)
	d.logger.Debug(ctx, "verification code value", "code", code)
	return nil
}
