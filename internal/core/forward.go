package core

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/csvrelay/internal/metrics"
)

// Dispatcher relays a batch to a Sink in order, one record at a time.
// It waits for each send to finish before starting the next and stops at
// the first failure. Records sent before a failure stay delivered.
type Dispatcher struct {
	sink Sink
}

// NewDispatcher creates a dispatcher for sink.
func NewDispatcher(sink Sink) *Dispatcher {
	return &Dispatcher{sink: sink}
}

// Forward sends every record in batch and reports how far it got.
func (d *Dispatcher) Forward(ctx context.Context, logger *slog.Logger, batch []ValidatedRecord) ForwardOutcome {
	var out ForwardOutcome

	for i, rec := range batch {
		if err := d.sink.Send(ctx, rec); err != nil {
			out.FailedRow = i + 1
			out.Detail = err
			logger.Warn("sink rejected record",
				"row", out.FailedRow,
				"sent", out.Sent,
				"error", err,
			)
			return out
		}
		out.Sent++
		metrics.RecordForwarded()
	}

	logger.Debug("batch forwarded", "rows", out.Sent)
	return out
}
