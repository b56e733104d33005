package diag

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/radiolinkd/internal/logger"
)

// Task is a pollable diagnostic source.
type Task interface {
	Run() Report
}

// NamedReport pairs a task's registered name with its latest report.
type NamedReport struct {
	Name string
	Report
}

type entry struct {
	name string
	task Task
}

// Updater polls registered diagnostic tasks on a fixed interval and
// logs their reports. Tasks run on the updater's schedule, independent
// of when their underlying state updates.
type Updater struct {
	mu       sync.Mutex
	entries  []entry
	interval time.Duration
}

func NewUpdater(interval time.Duration) *Updater {
	return &Updater{interval: interval}
}

// Add registers a named diagnostic source.
func (u *Updater) Add(name string, task Task) {
	u.mu.Lock()
	u.entries = append(u.entries, entry{name: name, task: task})
	u.mu.Unlock()
}

// RunAll polls every registered task once, in registration order.
func (u *Updater) RunAll() []NamedReport {
	u.mu.Lock()
	entries := make([]entry, len(u.entries))
	copy(entries, u.entries)
	u.mu.Unlock()

	reports := make([]NamedReport, 0, len(entries))
	for _, e := range entries {
		reports = append(reports, NamedReport{Name: e.name, Report: e.task.Run()})
	}

	return reports
}

// Poll runs the updater loop until the context is cancelled.
func (u *Updater) Poll(ctx context.Context) {
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, report := range u.RunAll() {
				logReport(report)
			}
		}
	}
}

func logReport(report NamedReport) {
	event := logger.Info()
	if report.Level != LevelOK {
		event = logger.Warn()
	}

	zEvent := event.
		Str("task", report.Name).
		Str("status", report.Level.String()).
		Str("message", report.Message)
	for _, kv := range report.Values {
		zEvent = zEvent.Str(kv.Key, kv.Value)
	}
	zEvent.Msg("diagnostics")
}
