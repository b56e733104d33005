package telemetry

import (
	"context"
	"time"

	"codeberg.org/mutker/radiolinkd/internal/radio"
)

// Publisher delivers canonical link samples to an outbound consumer.
// Delivery is fire-and-forget: implementations report setup and
// encoding failures, never delivery ones.
type Publisher interface {
	Publish(ctx context.Context, rec Record) error
	Close() error
}

// Record is the outbound feed entry: the canonical sample plus a
// timestamp captured at emission time.
type Record struct {
	Timestamp       time.Time `json:"timestamp"`
	RSSI            uint8     `json:"rssi"`
	RemoteRSSI      uint8     `json:"remote_rssi"`
	TxBufferPercent uint8     `json:"txbuf"`
	Noise           uint8     `json:"noise"`
	RemoteNoise     uint8     `json:"remote_noise"`
	RxErrors        uint16    `json:"rx_errors"`
	FixedErrors     uint16    `json:"fixed"`
}

// NewRecord stamps a sample for emission.
func NewRecord(sample radio.LinkSample, at time.Time) Record {
	return Record{
		Timestamp:       at,
		RSSI:            sample.RSSI,
		RemoteRSSI:      sample.RemoteRSSI,
		TxBufferPercent: sample.TxBufferPercent,
		Noise:           sample.Noise,
		RemoteNoise:     sample.RemoteNoise,
		RxErrors:        sample.RxErrors,
		FixedErrors:     sample.FixedErrors,
	}
}

type multiPublisher struct {
	publishers []Publisher
}

// Multi fans a record out to several publishers. Publish returns the
// first error encountered but still attempts every sink.
func Multi(publishers ...Publisher) Publisher {
	return &multiPublisher{publishers: publishers}
}

func (m *multiPublisher) Publish(ctx context.Context, rec Record) error {
	var firstErr error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (m *multiPublisher) Close() error {
	var firstErr error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
