package session

import (
	"sort"
	"time"

	"github.com/penwyp/botlogs/internal/core/model"
	"github.com/penwyp/botlogs/internal/util"
)

// Aggregator groups a classified entry stream into sessions and maintains the
// per-session counters as entries arrive.
type Aggregator struct {
	detector *Detector
}

// NewAggregator creates an Aggregator with a fresh boundary detector.
func NewAggregator() *Aggregator {
	return &Aggregator{detector: NewDetector()}
}

// Build partitions entries into sessions. Entries are expected in ascending
// timestamp order already; a stable sort is applied anyway so ties keep their
// arrival order. An empty stream yields zero sessions.
func (a *Aggregator) Build(entries []model.ClassifiedEntry) []*Session {
	sessions := make([]*Session, 0)
	if len(entries) == 0 {
		return sessions
	}

	sorted := make([]model.ClassifiedEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	a.detector.Reset()
	var current *Session
	for i := range sorted {
		if a.detector.Observe(sorted[i]) == StartNew {
			if current != nil {
				// The previous session ends at its own last entry,
				// not at the boundary entry.
				a.Finalize(current, current.Entries[len(current.Entries)-1].Timestamp)
			}
			current = newSession(sorted[i])
			sessions = append(sessions, current)
		}
		a.Add(current, sorted[i])
	}
	if current != nil {
		a.Finalize(current, sorted[len(sorted)-1].Timestamp)
	}

	return sessions
}

// Add appends an entry to an open session and updates its counters. Adding to
// a finalized session is a no-op.
func (a *Aggregator) Add(s *Session, entry model.ClassifiedEntry) {
	if s.finalized {
		util.LogWarnf("dropping entry added to finalized session %s", s.ID)
		return
	}

	s.Entries = append(s.Entries, entry)

	if entry.IsNoise {
		s.NoiseCount++
	}
	if entry.Fields.UserID != "" {
		s.Users[entry.Fields.UserID] = struct{}{}
	}

	switch entry.Category {
	case model.CategoryMessageReceived, model.CategoryMessageProcess:
		s.Messages++
	case model.CategoryError:
		s.Errors = append(s.Errors, entry)
	case model.CategoryWarning:
		s.Warnings = append(s.Warnings, entry)
	}

	if s.DeploymentLabel == "" && entry.Revision != "" {
		s.DeploymentLabel = entry.Revision
	}
}

// Finalize closes a session at the given end time. Finalizing twice is a
// no-op; the first end time sticks.
func (a *Aggregator) Finalize(s *Session, end time.Time) {
	if s.finalized {
		return
	}
	s.EndTime = end
	s.finalized = true
}
