package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// StorageGC periodically reclaims BadgerDB value-log space. The message log
// is append-only, so the bulk of reclaimable space comes from compactions,
// but skipping GC lets the value log grow without bound on long uptimes.
type StorageGC struct {
	log      *slog.Logger
	db       *badger.DB
	interval time.Duration
}

func NewStorageGC(log *slog.Logger, db *badger.DB, interval time.Duration) *StorageGC {
	return &StorageGC{log: log, db: db, interval: interval}
}

func (w *StorageGC) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// Keep collecting until badger reports nothing left to rewrite.
			for {
				if err := w.db.RunValueLogGC(0.5); err != nil {
					if err != badger.ErrNoRewrite {
						w.log.Warn("value log GC failed", "error", err)
					}
					break
				}
				w.log.Debug("value log file reclaimed")
			}
		}
	}
}
