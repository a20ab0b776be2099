package workers

import (
	"context"
	"log/slog"
	"time"
)

// StatsSource exposes the running delivery counters of the engine.
type StatsSource interface {
	Stats() (delivered, dropped, signals uint64)
}

// DeliveryReporter logs delivery deltas at a fixed interval. It exists for
// observability only; losing a report is harmless.
type DeliveryReporter struct {
	log      *slog.Logger
	source   StatsSource
	interval time.Duration
}

func NewDeliveryReporter(log *slog.Logger, source StatsSource, interval time.Duration) *DeliveryReporter {
	return &DeliveryReporter{log: log, source: source, interval: interval}
}

func (w *DeliveryReporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var lastDelivered, lastDropped, lastSignals uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			delivered, dropped, signals := w.source.Stats()
			w.log.Info("delivery stats",
				"delivered", delivered-lastDelivered,
				"dropped", dropped-lastDropped,
				"signals", signals-lastSignals,
				"delivered_total", delivered)
			lastDelivered, lastDropped, lastSignals = delivered, dropped, signals
		}
	}
}
