package radio_test

import (
	"sync"
	"testing"

	"codeberg.org/mutker/radiolinkd/internal/diag"
	"codeberg.org/mutker/radiolinkd/internal/radio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderNoData(t *testing.T) {
	tracker := radio.NewTracker(radio.DefaultLowRSSI)

	report := tracker.Run()
	assert.Equal(t, diag.LevelStale, report.Level, "Expected stale level before first sample")
	assert.Equal(t, "No data", report.Message)
}

func TestRenderNoDataIgnoresThreshold(t *testing.T) {
	// The stale level must win regardless of how the threshold is set.
	for _, threshold := range []uint8{0, 40, 255} {
		tracker := radio.NewTracker(threshold)
		report := tracker.Run()
		assert.Equal(t, diag.LevelStale, report.Level, "Expected stale level with threshold %d", threshold)
	}
}

func TestRenderLowLocalRSSI(t *testing.T) {
	tracker := radio.NewTracker(40)
	tracker.Update(radio.LinkSample{RSSI: 30, RemoteRSSI: 50})

	report := tracker.Run()
	assert.Equal(t, diag.LevelWarning, report.Level)
	assert.Equal(t, "Low RSSI", report.Message)
}

func TestRenderLowRemoteRSSI(t *testing.T) {
	tracker := radio.NewTracker(40)
	tracker.Update(radio.LinkSample{RSSI: 50, RemoteRSSI: 30})

	report := tracker.Run()
	assert.Equal(t, diag.LevelWarning, report.Level)
	assert.Equal(t, "Low remote RSSI", report.Message)
}

func TestRenderLocalTakesPriority(t *testing.T) {
	// Both ends below threshold: the local warning is the more
	// actionable signal and must win.
	tracker := radio.NewTracker(40)
	tracker.Update(radio.LinkSample{RSSI: 30, RemoteRSSI: 10})

	report := tracker.Run()
	assert.Equal(t, "Low RSSI", report.Message)
}

func TestRenderNormal(t *testing.T) {
	tracker := radio.NewTracker(40)
	tracker.Update(radio.LinkSample{RSSI: 50, RemoteRSSI: 50})

	report := tracker.Run()
	assert.Equal(t, diag.LevelOK, report.Level)
	assert.Equal(t, "Normal", report.Message)
}

func TestRenderDerivedValues(t *testing.T) {
	tracker := radio.NewTracker(40)
	tracker.Update(radio.LinkSample{
		RSSI:            100,
		RemoteRSSI:      190,
		TxBufferPercent: 25,
		Noise:           41,
		RemoteNoise:     42,
		RxErrors:        7,
		FixedErrors:     3,
	})

	report := tracker.Run()
	require.Len(t, report.Values, 9)

	expected := []diag.KV{
		{Key: "RSSI", Value: "100"},
		{Key: "RSSI (dBm)", Value: "-74.4"}, // 100/1.9 - 127
		{Key: "Remote RSSI", Value: "190"},
		{Key: "Remote RSSI (dBm)", Value: "-27.0"},
		{Key: "Tx buffer (%)", Value: "25"},
		{Key: "Noise level", Value: "41"},
		{Key: "Remote noise level", Value: "42"},
		{Key: "Rx errors", Value: "7"},
		{Key: "Fixed", Value: "3"},
	}
	assert.Equal(t, expected, report.Values, "Expected fixed key order and exact dBm conversion")
}

func TestRenderReflectsLatestSampleOnly(t *testing.T) {
	tracker := radio.NewTracker(40)
	tracker.Update(radio.LinkSample{RSSI: 10, RxErrors: 999})
	tracker.Update(radio.LinkSample{RSSI: 200, RemoteRSSI: 200})

	report := tracker.Run()
	assert.Equal(t, diag.LevelOK, report.Level, "Expected no residue from the earlier low sample")
	assert.Equal(t, diag.KV{Key: "Rx errors", Value: "0"}, report.Values[7])
}

func TestRenderIdempotent(t *testing.T) {
	tracker := radio.NewTracker(40)
	tracker.Update(radio.LinkSample{RSSI: 123, RemoteRSSI: 45, Noise: 67})

	first := tracker.Run()
	second := tracker.Run()
	assert.Equal(t, first, second, "Expected identical reports with no intervening update")
}

func TestSnapshotBeforeAndAfterUpdate(t *testing.T) {
	tracker := radio.NewTracker(40)

	_, ok := tracker.Snapshot()
	assert.False(t, ok, "Expected no data before first update")

	sample := radio.LinkSample{RSSI: 99, RxErrors: 12}
	tracker.Update(sample)

	got, ok := tracker.Snapshot()
	require.True(t, ok)
	assert.Equal(t, sample, got)
}

// uniformSample builds a sample whose fields are all derived from one
// seed, so a torn read is detectable as an inconsistency between them.
func uniformSample(seed uint8) radio.LinkSample {
	return radio.LinkSample{
		RSSI:            seed,
		RemoteRSSI:      seed,
		TxBufferPercent: seed,
		Noise:           seed,
		RemoteNoise:     seed,
		RxErrors:        uint16(seed) * 3,
		FixedErrors:     uint16(seed) * 5,
	}
}

func TestSnapshotNeverTorn(t *testing.T) {
	tracker := radio.NewTracker(40)
	tracker.Update(uniformSample(0))

	const (
		writers    = 4
		iterations = 2000
	)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(offset uint8) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				tracker.Update(uniformSample(offset + uint8(i)))
			}
		}(uint8(w * 50))
	}

	var readers sync.WaitGroup
	for r := 0; r < 2; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}

				got, ok := tracker.Snapshot()
				if !assert.True(t, ok) {
					return
				}
				assert.Equal(t, uniformSample(got.RSSI), got, "Observed a torn sample")
			}
		}()
	}

	wg.Wait()
	close(stop)
	readers.Wait()
}
