package modem

// MAVLink v1 framing: magic, payload length, sequence, system ID,
// component ID, message ID, payload, two checksum bytes.
const (
	frameMagic     = 0xFE
	frameHeaderLen = 6
	frameTrailLen  = 2
)

// frameScanner incrementally extracts frames from a raw byte stream.
// Bytes before a magic marker are discarded as line noise. The checksum
// is carried by the frame but not verified here; the modem link has its
// own error correction and a corrupt status frame is overwritten by the
// next one within a second.
type frameScanner struct {
	buf []byte
}

func (fs *frameScanner) feed(data []byte) []Event {
	fs.buf = append(fs.buf, data...)

	var events []Event
	for {
		// Sync to the next magic byte.
		start := 0
		for start < len(fs.buf) && fs.buf[start] != frameMagic {
			start++
		}
		fs.buf = fs.buf[start:]

		if len(fs.buf) < frameHeaderLen {
			return events
		}

		payloadLen := int(fs.buf[1])
		frameLen := frameHeaderLen + payloadLen + frameTrailLen
		if len(fs.buf) < frameLen {
			return events
		}

		payload := make([]byte, payloadLen)
		copy(payload, fs.buf[frameHeaderLen:frameHeaderLen+payloadLen])

		events = append(events, Event{
			MsgID:       fs.buf[5],
			SystemID:    fs.buf[3],
			ComponentID: fs.buf[4],
			Payload:     payload,
		})

		fs.buf = fs.buf[frameLen:]
	}
}
