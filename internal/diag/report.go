package diag

import (
	"fmt"
	"strings"
)

// Level classifies a diagnostic summary.
type Level int

const (
	LevelOK Level = iota
	LevelWarning
	// LevelStale marks a source that has never produced data, as
	// opposed to one that produced data breaching a threshold.
	LevelStale
)

func (l Level) String() string {
	switch l {
	case LevelOK:
		return "ok"
	case LevelWarning:
		return "warning"
	case LevelStale:
		return "stale"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// KV is one labeled diagnostic value. Order of values in a report is
// significant and preserved.
type KV struct {
	Key   string
	Value string
}

// Report is the result of polling one diagnostic source.
type Report struct {
	Level   Level
	Message string
	Values  []KV
}

func NewReport(level Level, message string) Report {
	return Report{
		Level:   level,
		Message: message,
	}
}

// Addf appends a formatted key/value pair.
func (r *Report) Addf(key, format string, args ...any) {
	r.Values = append(r.Values, KV{
		Key:   key,
		Value: fmt.Sprintf(format, args...),
	})
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", r.Level, r.Message)
	for _, kv := range r.Values {
		fmt.Fprintf(&b, "; %s=%s", kv.Key, kv.Value)
	}

	return b.String()
}
