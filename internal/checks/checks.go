// Package checks contains the compliance rule checks: independent scanners
// that each query the portal database for one violation condition and emit
// deduplicated alerts through the alert store.
package checks

import (
	"context"
	"time"

	"github.com/junkusano/famille-shift-matching-sub002/internal/repository"
)

// Options narrows a run for scoped testing or to bound batch size within the
// invoking platform's wall-clock ceiling. Checks honor the fields that are
// meaningful for them and ignore the rest.
type Options struct {
	DryRun      bool       // scan and log, write no alerts
	FromDate    *time.Time // override the default scan window start
	WindowHours int        // 0 → check default
	Limit       int        // 0 → check default
	TargetID    string     // restrict to one subject/worker
}

// Result is the common return contract of every check.
type Result struct {
	Scanned int `json:"scanned"` // violating entities examined
	Created int `json:"created"` // new alerts written
	Failed  int `json:"failed"`  // per-item alert failures (logged, not fatal)
}

// Add accumulates another result into this one.
func (r *Result) Add(other Result) {
	r.Scanned += other.Scanned
	r.Created += other.Created
	r.Failed += other.Failed
}

// Check is one independent compliance scanner. Checks share no mutable state
// except the alert store, whose dedup discipline makes re-runs idempotent.
type Check interface {
	Name() string
	Run(ctx context.Context, opts Options) (Result, error)
}

// AlertSink is the alert store as seen by the checks.
type AlertSink interface {
	EnsureSystemAlert(ctx context.Context, params repository.EnsureAlertParams) (repository.EnsureAlertResult, error)
}

// startOfDay truncates t to midnight in its location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// laterOf returns the later of two times.
func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
