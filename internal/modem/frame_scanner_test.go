package modem

import (
	"testing"

	"codeberg.org/mutker/radiolinkd/internal/radio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFrame(msgID, sysID, compID uint8, payload []byte) []byte {
	frame := []byte{frameMagic, uint8(len(payload)), 0, sysID, compID, msgID}
	frame = append(frame, payload...)
	frame = append(frame, 0xAA, 0xBB) // checksum bytes, not verified
	return frame
}

func TestScannerSingleFrame(t *testing.T) {
	var fs frameScanner
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}

	events := fs.feed(buildFrame(radio.MsgIDRadioStatus, '3', 'D', payload))
	require.Len(t, events, 1)

	assert.Equal(t, radio.MsgIDRadioStatus, events[0].MsgID)
	assert.Equal(t, uint8('3'), events[0].SystemID)
	assert.Equal(t, uint8('D'), events[0].ComponentID)
	assert.Equal(t, payload, events[0].Payload)
}

func TestScannerSplitAcrossReads(t *testing.T) {
	var fs frameScanner
	frame := buildFrame(radio.MsgIDRadio, '3', 'D', []byte{9, 8, 7, 6, 5, 4, 3, 2, 1})

	assert.Empty(t, fs.feed(frame[:4]), "Partial frame must not produce an event")
	assert.Empty(t, fs.feed(frame[4:10]))

	events := fs.feed(frame[10:])
	require.Len(t, events, 1)
	assert.Equal(t, radio.MsgIDRadio, events[0].MsgID)
}

func TestScannerSkipsLeadingNoise(t *testing.T) {
	var fs frameScanner
	data := append([]byte{0x00, 0x13, 0x37}, buildFrame(radio.MsgIDRadioStatus, '3', 'D', []byte{1})...)

	events := fs.feed(data)
	require.Len(t, events, 1)
	assert.Equal(t, []byte{1}, events[0].Payload)
}

func TestScannerMultipleFramesInOneRead(t *testing.T) {
	var fs frameScanner
	data := buildFrame(radio.MsgIDRadioStatus, '3', 'D', []byte{1, 1})
	data = append(data, buildFrame(radio.MsgIDRadio, '3', 'D', []byte{2, 2})...)

	events := fs.feed(data)
	require.Len(t, events, 2)
	assert.Equal(t, radio.MsgIDRadioStatus, events[0].MsgID)
	assert.Equal(t, radio.MsgIDRadio, events[1].MsgID)
}
