package cli

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	applog "wallet/internal/log"
)

// CommandStats counts executed shell commands.
type CommandStats struct {
	Total  int64
	Failed int64
	// LastDuration is the wall time of the most recent command.
	LastDuration time.Duration
}

// commandTracer tags every command with an id and logs its outcome.
type commandTracer struct {
	logger *slog.Logger
	total  atomic.Int64
	failed atomic.Int64
	last   atomic.Int64
}

func newCommandID() string {
	return "cmd_" + uuid.NewString()[:8]
}

// trace runs fn with a context carrying a logger bound to the command id.
func (t *commandTracer) trace(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	id := newCommandID()
	logger := t.logger.With("command_id", id, "command", name)
	ctx = applog.NewContext(ctx, logger)

	logger.DebugContext(ctx, "Command started")
	t.total.Add(1)

	err := fn(ctx)

	duration := time.Since(start)
	t.last.Store(int64(duration))

	level := slog.LevelDebug
	if err != nil {
		t.failed.Add(1)
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "Command completed",
		applog.FieldDuration, duration.Milliseconds(),
		"success", err == nil,
		applog.FieldError, err)
	return err
}

func (t *commandTracer) stats() CommandStats {
	return CommandStats{
		Total:        t.total.Load(),
		Failed:       t.failed.Load(),
		LastDuration: time.Duration(t.last.Load()),
	}
}
