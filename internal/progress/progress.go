// Package progress provides a simple counter for observability of
// long-running batch loops. It has no correctness coupling.
package progress

import (
	"time"

	"go.uber.org/zap"
)

type Tracker struct {
	total       int
	current     int
	description string
	start       time.Time
	log         *zap.SugaredLogger
}

func NewTracker(total int, description string, log *zap.SugaredLogger) *Tracker {
	return &Tracker{
		total:       total,
		description: description,
		start:       time.Now(),
		log:         log,
	}
}

func (t *Tracker) Increment() {
	t.current++
	pct := 0
	if t.total > 0 {
		pct = t.current * 100 / t.total
	}
	elapsed := int(time.Since(t.start).Seconds())
	t.log.Infof("📊 %s: %d/%d (%d%%) in %ds", t.description, t.current, t.total, pct, elapsed)
}

func (t *Tracker) Complete() {
	elapsed := int(time.Since(t.start).Seconds())
	t.log.Infof("✅ %s completed: %d/%d in %ds", t.description, t.current, t.total, elapsed)
}

func (t *Tracker) Current() int { return t.current }
