// Package session reconstructs contiguous bot operating periods from the
// classified entry stream.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/penwyp/botlogs/internal/core/model"
	"github.com/penwyp/botlogs/internal/util"
)

// Session is one contiguous operating period of the bot. It is mutable only
// while open; after Finalize it must be treated as read-only.
type Session struct {
	ID              string
	StartTime       time.Time
	EndTime         time.Time // zero until finalized
	Entries         []model.ClassifiedEntry
	Users           map[string]struct{}
	Messages        int // user-originated entries processed
	Errors          []model.ClassifiedEntry
	Warnings        []model.ClassifiedEntry
	NoiseCount      int // suppressed entries, kept for diagnostics
	DeploymentLabel string

	finalized bool
}

// newSession opens a session anchored at the first entry. The id is derived
// from the entry's local timestamp so re-running the pipeline over the same
// data yields the same id.
func newSession(first model.ClassifiedEntry) *Session {
	return &Session{
		ID:              fmt.Sprintf("session-%d", first.Timestamp.Unix()),
		StartTime:       first.Timestamp,
		Users:           make(map[string]struct{}),
		DeploymentLabel: first.Revision,
	}
}

// Finalized reports whether the session has been closed.
func (s *Session) Finalized() bool {
	return s.finalized
}

// Duration returns the session length; open sessions measure up to now.
func (s *Session) Duration() time.Duration {
	if s.finalized {
		return s.EndTime.Sub(s.StartTime)
	}
	return util.BotNow().Sub(s.StartTime)
}

// HasErrors reports whether any entry in the session classified as an error.
func (s *Session) HasErrors() bool {
	return len(s.Errors) > 0
}

// ContainsUser reports whether the given user id appears in the session,
// either as a tracked participant or anywhere in an entry's raw text.
func (s *Session) ContainsUser(userID string) bool {
	if _, ok := s.Users[userID]; ok {
		return true
	}
	if userID == "" {
		return false
	}
	for i := range s.Entries {
		if strings.Contains(s.Entries[i].RawText, userID) {
			return true
		}
	}
	return false
}
