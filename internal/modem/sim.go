package modem

import (
	"context"
	"encoding/binary"
	"math/rand"
	"time"

	"codeberg.org/mutker/radiolinkd/internal/radio"
)

// SimSource emits synthetic radio status events on a fixed interval,
// for running the daemon without modem hardware attached.
type SimSource struct {
	interval time.Duration
	events   chan Event
	rxErrors uint16
}

func NewSimSource(interval time.Duration) *SimSource {
	return &SimSource{
		interval: interval,
		events:   make(chan Event, eventQueueSize),
	}
}

func (s *SimSource) Events() <-chan Event {
	return s.events
}

func (s *SimSource) Run(ctx context.Context) error {
	defer close(s.events)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			select {
			case s.events <- s.nextEvent():
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (s *SimSource) Close() error {
	return nil
}

func (s *SimSource) nextEvent() Event {
	// Wander around a healthy signal with occasional error counts.
	if rand.Intn(10) == 0 {
		s.rxErrors++
	}

	payload := make([]byte, 9)
	binary.LittleEndian.PutUint16(payload[0:2], s.rxErrors)
	binary.LittleEndian.PutUint16(payload[2:4], s.rxErrors/2)
	payload[4] = uint8(150 + rand.Intn(40)) // rssi
	payload[5] = uint8(140 + rand.Intn(40)) // remrssi
	payload[6] = uint8(rand.Intn(30))       // txbuf
	payload[7] = uint8(40 + rand.Intn(20))  // noise
	payload[8] = uint8(40 + rand.Intn(20))  // remnoise

	return Event{
		MsgID:       radio.MsgIDRadioStatus,
		SystemID:    ExpectedSystemID,
		ComponentID: ExpectedComponentID,
		Payload:     payload,
	}
}
