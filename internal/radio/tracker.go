package radio

import (
	"sync"

	"codeberg.org/mutker/radiolinkd/internal/diag"
)

// DefaultLowRSSI is the raw-unit warning threshold used when none is
// configured. Matches the value shipped with SiK telemetry radios.
const DefaultLowRSSI = 40

// rawToDBm converts the modem's 0-255 RSSI scale to approximate dBm.
// Linear fit calibrated for SiK-based 3DR radios; the coefficients are
// vendor-specific, not a general conversion.
func rawToDBm(raw uint8) float64 {
	return float64(raw)/1.9 - 127
}

// Tracker owns the latest link-quality sample for one physical radio
// link and classifies it against the configured low-RSSI threshold.
// One tracker per link; safe for one writer and any number of readers.
type Tracker struct {
	mu      sync.Mutex
	hasData bool
	last    LinkSample
	lowRSSI uint8
}

func NewTracker(lowRSSI uint8) *Tracker {
	return &Tracker{lowRSSI: lowRSSI}
}

// Update replaces the stored snapshot. It never fails; wrapped or
// out-of-range counter values pass through untouched.
func (t *Tracker) Update(sample LinkSample) {
	t.mu.Lock()
	t.hasData = true
	t.last = sample
	t.mu.Unlock()
}

// Snapshot returns the last sample and whether any sample has arrived.
// The read is atomic: a concurrent Update is observed either fully or
// not at all.
func (t *Tracker) Snapshot() (LinkSample, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.last, t.hasData
}

// Run implements diag.Task. The report is built from a snapshot taken
// under the lock, with rendering outside the critical section, so a
// render triggered while an update completes cannot deadlock.
func (t *Tracker) Run() diag.Report {
	last, ok := t.Snapshot()

	var report diag.Report
	switch {
	case !ok:
		report = diag.NewReport(diag.LevelStale, "No data")
	case last.RSSI < t.lowRSSI:
		report = diag.NewReport(diag.LevelWarning, "Low RSSI")
	case last.RemoteRSSI < t.lowRSSI:
		report = diag.NewReport(diag.LevelWarning, "Low remote RSSI")
	default:
		report = diag.NewReport(diag.LevelOK, "Normal")
	}

	report.Addf("RSSI", "%d", last.RSSI)
	report.Addf("RSSI (dBm)", "%.1f", rawToDBm(last.RSSI))
	report.Addf("Remote RSSI", "%d", last.RemoteRSSI)
	report.Addf("Remote RSSI (dBm)", "%.1f", rawToDBm(last.RemoteRSSI))
	report.Addf("Tx buffer (%)", "%d", last.TxBufferPercent)
	report.Addf("Noise level", "%d", last.Noise)
	report.Addf("Remote noise level", "%d", last.RemoteNoise)
	report.Addf("Rx errors", "%d", last.RxErrors)
	report.Addf("Fixed", "%d", last.FixedErrors)

	return report
}
