package formatter

import (
	"strings"

	"github.com/penwyp/botlogs/internal/core/session"
)

// RenderSummary renders the aggregate view across all sessions: totals for
// sessions, sessions containing at least one error, the union of distinct
// users, processed messages and errors.
func (f *Formatter) RenderSummary(sessions []*session.Session) string {
	var (
		withErrors    int
		totalMessages int
		totalErrors   int
		users         = make(map[string]struct{})
	)
	for _, s := range sessions {
		if s.HasErrors() {
			withErrors++
		}
		totalMessages += s.Messages
		totalErrors += len(s.Errors)
		for u := range s.Users {
			users[u] = struct{}{}
		}
	}

	var b strings.Builder
	b.WriteString(f.styles.Header.Sprint("=== ANALYSIS SUMMARY ==="))
	b.WriteByte('\n')
	b.WriteString(f.styles.Meta.Sprintf("Total sessions: %d", len(sessions)))
	b.WriteByte('\n')
	b.WriteString(f.styles.Meta.Sprintf("Sessions with errors: %d", withErrors))
	b.WriteByte('\n')
	b.WriteString(f.styles.Meta.Sprintf("Distinct users: %d", len(users)))
	b.WriteByte('\n')
	b.WriteString(f.styles.Meta.Sprintf("Messages processed: %d", totalMessages))
	b.WriteByte('\n')
	b.WriteString(f.styles.Meta.Sprintf("Total errors: %d", totalErrors))
	b.WriteByte('\n')
	return b.String()
}
