package modem

import (
	"context"
	"time"

	"codeberg.org/mutker/radiolinkd/internal/logger"
	"codeberg.org/mutker/radiolinkd/internal/radio"
	"codeberg.org/mutker/radiolinkd/internal/telemetry"
)

// Identity bytes a SiK/3DR telemetry modem stamps on its status
// messages: system ID '3', component ID 'D'. Anything else gets
// flagged but is still accepted; suppressing telemetry on ambiguous
// provenance would be worse than reporting a possibly mislabeled
// sample.
const (
	ExpectedSystemID    uint8 = '3'
	ExpectedComponentID uint8 = 'D'
)

const provenanceWarnWindow = 30 * time.Second

// Event is one framed message delivered by a Source.
type Event struct {
	MsgID       uint8
	SystemID    uint8
	ComponentID uint8
	Payload     []byte
}

// Handler normalizes inbound radio status messages, updates the link
// tracker and re-emits the canonical sample on the telemetry feed.
//
// Once the preferred RADIO_STATUS format has been seen, legacy RADIO
// messages carrying the same measurement are dropped. The latch never
// resets: legacy frames matter only for modems whose firmware never
// emits the newer type.
//
// Handle is not safe for concurrent use; the transport delivers one
// frame at a time.
type Handler struct {
	tracker       *radio.Tracker
	feed          telemetry.Publisher
	preferredSeen bool
	lastWarn      time.Time
	now           func() time.Time
}

func NewHandler(tracker *radio.Tracker, feed telemetry.Publisher) *Handler {
	return &Handler{
		tracker: tracker,
		feed:    feed,
		now:     time.Now,
	}
}

// Handle processes one inbound event. Frames that are structurally too
// short to decode are the only failure; everything else is accepted.
func (h *Handler) Handle(ctx context.Context, ev Event) error {
	switch ev.MsgID {
	case radio.MsgIDRadioStatus:
		frame, err := radio.DecodeRadioStatus(ev.Payload)
		if err != nil {
			return err
		}
		h.preferredSeen = true
		h.process(ctx, radio.SampleFromStatus(frame), ev)
	case radio.MsgIDRadio:
		if h.preferredSeen {
			// Same measurement already arriving in the newer format.
			return nil
		}
		frame, err := radio.DecodeRadio(ev.Payload)
		if err != nil {
			return err
		}
		h.process(ctx, radio.SampleFromLegacy(frame), ev)
	default:
		logger.Debug().Uint8("msg_id", ev.MsgID).Msg("Ignoring unrelated message")
	}

	return nil
}

func (h *Handler) process(ctx context.Context, sample radio.LinkSample, ev Event) {
	if ev.SystemID != ExpectedSystemID || ev.ComponentID != ExpectedComponentID {
		h.warnProvenance(ev)
	}

	h.tracker.Update(sample)

	rec := telemetry.NewRecord(sample, h.now())
	if err := h.feed.Publish(ctx, rec); err != nil {
		logger.Debug().Err(err).Msg("Telemetry feed publish failed")
	}
}

func (h *Handler) warnProvenance(ev Event) {
	now := h.now()
	if !h.lastWarn.IsZero() && now.Sub(h.lastWarn) < provenanceWarnWindow {
		return
	}
	h.lastWarn = now

	logger.Warn().
		Uint8("system_id", ev.SystemID).
		Uint8("component_id", ev.ComponentID).
		Msg("Radio status not from expected modem identity")
}
