package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes model events to an slog.Logger.
// Useful for development when you want to see model events in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event at Debug level, or Warn level for errors.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("model_id", event.ModelID),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	level := slog.LevelDebug

	switch {
	case event.Permutation != nil:
		attrs = append(attrs,
			slog.String("trigger", event.Permutation.Trigger.String()),
			slog.Any("permutation", event.Permutation.Permutation),
			slog.Int("new_length", event.Permutation.NewLength),
		)
	case event.Resolve != nil:
		attrs = append(attrs,
			slog.String("path", event.Resolve.Path),
			slog.Bool("found", event.Resolve.Found),
			slog.Duration("duration", event.Resolve.Duration),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("id", event.StateChange.ID),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Path != "" {
			attrs = append(attrs, slog.String("path", event.Error.Path))
		}
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "model", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
