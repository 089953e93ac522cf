package evaluator

import (
	"context"
	"log/slog"
)

// logFunnel carries log records from worker goroutines through one
// channel into a single consumer, so interleaved worker output becomes
// one globally ordered stream on the orchestrator's handler.
type logFunnel struct {
	records chan slog.Record
	done    chan struct{}
	base    slog.Handler
}

func newLogFunnel(base *slog.Logger) *logFunnel {
	f := &logFunnel{
		records: make(chan slog.Record, 128),
		done:    make(chan struct{}),
		base:    base.Handler(),
	}
	go f.consume()
	return f
}

func (f *logFunnel) consume() {
	defer close(f.done)
	for r := range f.records {
		_ = f.base.Handle(context.Background(), r)
	}
}

// Logger returns a logger whose records pass through the funnel.
func (f *logFunnel) Logger() *slog.Logger {
	return slog.New(&funnelHandler{funnel: f})
}

// Close stops the consumer after the queued records have been written.
func (f *logFunnel) Close() {
	close(f.records)
	<-f.done
}

// funnelHandler is the slog.Handler workers write to. Attribute and
// group scoping is flattened into the record before it crosses the
// channel.
type funnelHandler struct {
	funnel *logFunnel
	attrs  []slog.Attr
}

func (h *funnelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.funnel.base.Enabled(ctx, level)
}

func (h *funnelHandler) Handle(_ context.Context, r slog.Record) error {
	out := r.Clone()
	out.AddAttrs(h.attrs...)
	h.funnel.records <- out
	return nil
}

func (h *funnelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &funnelHandler{funnel: h.funnel, attrs: merged}
}

func (h *funnelHandler) WithGroup(name string) slog.Handler {
	// groups are rare in worker logs; flatten by prefixing nothing
	return h
}
