package session

import (
	"time"

	"github.com/penwyp/botlogs/internal/core/model"
)

// InactivityThreshold is the silence gap after which the next entry opens a
// new session.
const InactivityThreshold = 300 * time.Second

// Boundary is the detector's verdict for one entry.
type Boundary int

const (
	ContinueCurrent Boundary = iota
	StartNew
)

// Detector decides session boundaries from the entry stream. It is a small
// two-state machine: either no session is open yet, or one is open and the
// previous entry's timestamp is the reference point for the gap check.
type Detector struct {
	last    time.Time
	hasLast bool
}

// NewDetector returns a detector in its initial state.
func NewDetector() *Detector {
	return &Detector{}
}

// Observe advances the detector by one entry and reports whether that entry
// continues the current session or starts a new one. A restart marker always
// starts a new session, regardless of timing.
func (d *Detector) Observe(entry model.ClassifiedEntry) Boundary {
	defer func() {
		d.last = entry.Timestamp
		d.hasLast = true
	}()

	if !d.hasLast {
		return StartNew
	}
	if entry.Category == model.CategorySessionStart {
		return StartNew
	}
	if entry.Timestamp.Sub(d.last) > InactivityThreshold {
		return StartNew
	}
	return ContinueCurrent
}

// Reset returns the detector to its initial state.
func (d *Detector) Reset() {
	d.last = time.Time{}
	d.hasLast = false
}
