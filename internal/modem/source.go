package modem

import (
	"context"
	"time"

	"codeberg.org/mutker/radiolinkd/internal/errors"
	"codeberg.org/mutker/radiolinkd/internal/logger"
	"go.bug.st/serial"
)

const (
	readTimeout    = 100 * time.Millisecond
	readBufferSize = 512
	eventQueueSize = 64
)

// Source delivers framed modem messages. Run blocks until the context
// is cancelled or the underlying transport fails; Events is closed when
// Run returns.
type Source interface {
	Events() <-chan Event
	Run(ctx context.Context) error
	Close() error
}

// SerialSource reads a telemetry modem over a serial port. It does
// structural framing only (magic byte, declared length); checksum
// validation and message routing are the transport layer's concern.
type SerialSource struct {
	port    serial.Port
	scanner frameScanner
	events  chan Event
}

// OpenSerial opens the modem's serial device.
func OpenSerial(device string, baudRate int) (*SerialSource, error) {
	errFactory := errors.New()

	port, err := serial.Open(device, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, errFactory.Wrap(ErrPortOpen, err).WithData(device)
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, errFactory.Wrap(ErrPortOpen, err)
	}

	logger.Info().Str("device", device).Int("baud_rate", baudRate).Msg("Serial port opened")

	return &SerialSource{
		port:   port,
		events: make(chan Event, eventQueueSize),
	}, nil
}

func (s *SerialSource) Events() <-chan Event {
	return s.events
}

// Run reads the port until the context is cancelled, delivering every
// structurally complete frame.
func (s *SerialSource) Run(ctx context.Context) error {
	errFactory := errors.New()
	defer close(s.events)

	buf := make([]byte, readBufferSize)
	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := s.port.Read(buf)
		if err != nil {
			return errFactory.Wrap(ErrPortRead, err)
		}
		if n == 0 {
			// Read timeout; loop to re-check the context.
			continue
		}

		for _, ev := range s.scanner.feed(buf[:n]) {
			select {
			case s.events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (s *SerialSource) Close() error {
	errFactory := errors.New()

	if err := s.port.Close(); err != nil {
		return errFactory.Wrap(ErrPortClose, err)
	}

	return nil
}
