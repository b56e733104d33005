package telemetry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/radiolinkd/internal/errors"
	"codeberg.org/mutker/radiolinkd/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

type sqliteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewRecorder opens (or creates) the local sqlite telemetry sink. It
// records every emitted sample; nothing in the link tracker reads this
// history back.
func NewRecorder(cfg RecorderConfig) (Publisher, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		logger.Debug().Msg("Telemetry recorder disabled, using no-op publisher")
		return &noopPublisher{}, nil
	}

	logger.Debug().Msgf("Initializing telemetry recorder at: %s", cfg.DBPath)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	return &sqliteRecorder{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS link_status (
            timestamp INTEGER PRIMARY KEY,
            rssi INTEGER,
            remote_rssi INTEGER,
            txbuf INTEGER,
            noise INTEGER,
            remote_noise INTEGER,
            rx_errors INTEGER,
            fixed_errors INTEGER
        )
    `)

	return err
}

func (r *sqliteRecorder) Publish(ctx context.Context, rec Record) error {
	errFactory := errors.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO link_status (
            timestamp, rssi, remote_rssi, txbuf,
            noise, remote_noise, rx_errors, fixed_errors
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(timestamp) DO UPDATE SET
            rssi = excluded.rssi,
            remote_rssi = excluded.remote_rssi,
            txbuf = excluded.txbuf,
            noise = excluded.noise,
            remote_noise = excluded.remote_noise,
            rx_errors = excluded.rx_errors,
            fixed_errors = excluded.fixed_errors
    `,
		rec.Timestamp.UnixNano(),
		rec.RSSI,
		rec.RemoteRSSI,
		rec.TxBufferPercent,
		rec.Noise,
		rec.RemoteNoise,
		rec.RxErrors,
		rec.FixedErrors,
	)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRecorder) Close() error {
	errFactory := errors.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	return nil
}
