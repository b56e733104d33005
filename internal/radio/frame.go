package radio

import (
	"encoding/binary"

	"codeberg.org/mutker/radiolinkd/internal/errors"
)

// Message IDs understood by the link monitor. RadioStatus is the format
// current SiK firmware emits; Radio carries the same measurement from
// earlier modems and matters only for firmware that never sends the
// newer type.
const (
	MsgIDRadioStatus uint8 = 109
	MsgIDRadio       uint8 = 166
)

// Both payloads share one wire layout, little-endian, counters first:
// rxerrors u16, fixed u16, rssi u8, remrssi u8, txbuf u8, noise u8,
// remnoise u8.
const payloadLen = 9

const (
	ErrShortPayload   = errors.ErrorCode("radio_short_payload")
	ErrUnknownMessage = errors.ErrorCode("radio_unknown_message")
)

// RadioStatusFrame mirrors the preferred RADIO_STATUS payload.
type RadioStatusFrame struct {
	RxErrors    uint16
	Fixed       uint16
	RSSI        uint8
	RemoteRSSI  uint8
	TxBuf       uint8
	Noise       uint8
	RemoteNoise uint8
}

// RadioFrame mirrors the legacy RADIO payload. Field-for-field identical
// to RadioStatusFrame; kept as its own type so the two normalization
// paths stay explicit instead of funnelling through a generic copy.
type RadioFrame struct {
	RxErrors    uint16
	Fixed       uint16
	RSSI        uint8
	RemoteRSSI  uint8
	TxBuf       uint8
	Noise       uint8
	RemoteNoise uint8
}

// DecodeRadioStatus parses a RADIO_STATUS payload. Field values are
// never range-checked; the modem owns their correctness.
func DecodeRadioStatus(payload []byte) (RadioStatusFrame, error) {
	errFactory := errors.New()

	if len(payload) < payloadLen {
		return RadioStatusFrame{}, errFactory.New(ErrShortPayload).WithData(len(payload))
	}

	return RadioStatusFrame{
		RxErrors:    binary.LittleEndian.Uint16(payload[0:2]),
		Fixed:       binary.LittleEndian.Uint16(payload[2:4]),
		RSSI:        payload[4],
		RemoteRSSI:  payload[5],
		TxBuf:       payload[6],
		Noise:       payload[7],
		RemoteNoise: payload[8],
	}, nil
}

// DecodeRadio parses a legacy RADIO payload.
func DecodeRadio(payload []byte) (RadioFrame, error) {
	errFactory := errors.New()

	if len(payload) < payloadLen {
		return RadioFrame{}, errFactory.New(ErrShortPayload).WithData(len(payload))
	}

	return RadioFrame{
		RxErrors:    binary.LittleEndian.Uint16(payload[0:2]),
		Fixed:       binary.LittleEndian.Uint16(payload[2:4]),
		RSSI:        payload[4],
		RemoteRSSI:  payload[5],
		TxBuf:       payload[6],
		Noise:       payload[7],
		RemoteNoise: payload[8],
	}, nil
}

// Decode normalizes a tagged payload into the canonical sample,
// selecting the mapping path by message ID.
func Decode(msgID uint8, payload []byte) (LinkSample, error) {
	errFactory := errors.New()

	switch msgID {
	case MsgIDRadioStatus:
		frame, err := DecodeRadioStatus(payload)
		if err != nil {
			return LinkSample{}, err
		}
		return SampleFromStatus(frame), nil
	case MsgIDRadio:
		frame, err := DecodeRadio(payload)
		if err != nil {
			return LinkSample{}, err
		}
		return SampleFromLegacy(frame), nil
	default:
		return LinkSample{}, errFactory.New(ErrUnknownMessage).WithData(msgID)
	}
}
