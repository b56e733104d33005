package telemetry_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/radiolinkd/internal/errors"
	"codeberg.org/mutker/radiolinkd/internal/radio"
	"codeberg.org/mutker/radiolinkd/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

type stubPublisher struct {
	records []telemetry.Record
	err     error
	closed  bool
}

func (s *stubPublisher) Publish(_ context.Context, rec telemetry.Record) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *stubPublisher) Close() error {
	s.closed = true
	return nil
}

func TestNewRecord(t *testing.T) {
	sample := radio.LinkSample{
		RSSI:            150,
		RemoteRSSI:      140,
		TxBufferPercent: 20,
		Noise:           50,
		RemoteNoise:     55,
		RxErrors:        3,
		FixedErrors:     1,
	}
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := telemetry.NewRecord(sample, at)
	assert.Equal(t, at, rec.Timestamp)
	assert.Equal(t, uint8(150), rec.RSSI)
	assert.Equal(t, uint8(140), rec.RemoteRSSI)
	assert.Equal(t, uint8(20), rec.TxBufferPercent)
	assert.Equal(t, uint16(3), rec.RxErrors)
	assert.Equal(t, uint16(1), rec.FixedErrors)
}

func TestRecorderRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")

	recorder, err := telemetry.NewRecorder(telemetry.RecorderConfig{
		DBPath:  dbPath,
		Enabled: true,
	})
	require.NoError(t, err)

	ctx := context.Background()
	base := time.Now()
	for i := 0; i < 3; i++ {
		rec := telemetry.NewRecord(radio.LinkSample{RSSI: uint8(100 + i), RxErrors: uint16(i)}, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, recorder.Publish(ctx, rec))
	}
	require.NoError(t, recorder.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM link_status").Scan(&count))
	assert.Equal(t, 3, count, "Expected one row per emitted record")

	var rssi int
	require.NoError(t, db.QueryRow("SELECT rssi FROM link_status ORDER BY timestamp DESC LIMIT 1").Scan(&rssi))
	assert.Equal(t, 102, rssi)
}

func TestRecorderDisabled(t *testing.T) {
	recorder, err := telemetry.NewRecorder(telemetry.RecorderConfig{Enabled: false})
	require.NoError(t, err)

	err = recorder.Publish(context.Background(), telemetry.Record{})
	assert.NoError(t, err, "Disabled recorder must accept and drop records")
	assert.NoError(t, recorder.Close())
}

func TestFeedDisabled(t *testing.T) {
	feed, err := telemetry.NewFeed(telemetry.FeedConfig{Enabled: false})
	require.NoError(t, err)

	assert.NoError(t, feed.Publish(context.Background(), telemetry.Record{}))
	assert.NoError(t, feed.Close())
}

func TestFeedConfigValidate(t *testing.T) {
	cfg := telemetry.DefaultFeedConfig()
	cfg.Enabled = true

	err := cfg.Validate()
	require.Error(t, err, "Enabled feed without a broker must not validate")

	var appErr errors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, telemetry.ErrInvalidBroker, appErr.Code())

	cfg.Broker = "broker.local"
	assert.NoError(t, cfg.Validate())
}

func TestRecorderConfigValidate(t *testing.T) {
	cfg := telemetry.RecorderConfig{Enabled: true}
	require.Error(t, cfg.Validate())

	cfg.DBPath = "/tmp/x.db"
	assert.NoError(t, cfg.Validate())

	disabled := telemetry.RecorderConfig{Enabled: false}
	assert.NoError(t, disabled.Validate(), "DBPath is only required when enabled")
}

func TestMultiFansOut(t *testing.T) {
	first := &stubPublisher{}
	second := &stubPublisher{}
	multi := telemetry.Multi(first, second)

	rec := telemetry.NewRecord(radio.LinkSample{RSSI: 9}, time.Now())
	require.NoError(t, multi.Publish(context.Background(), rec))

	require.Len(t, first.records, 1)
	require.Len(t, second.records, 1)
	assert.Equal(t, rec, second.records[0])

	require.NoError(t, multi.Close())
	assert.True(t, first.closed)
	assert.True(t, second.closed)
}

func TestMultiStillAttemptsEverySink(t *testing.T) {
	errFactory := errors.New()
	failing := &stubPublisher{err: errFactory.New(telemetry.ErrStorageAccess)}
	working := &stubPublisher{}
	multi := telemetry.Multi(failing, working)

	err := multi.Publish(context.Background(), telemetry.Record{})
	require.Error(t, err, "First sink error must surface")
	assert.Len(t, working.records, 1, "Remaining sinks must still receive the record")
}
