package formatter

import (
	"strings"

	"github.com/penwyp/botlogs/internal/core/session"
	"github.com/penwyp/botlogs/internal/util"
)

const sessionTimeLayout = "2006-01-02 15:04:05"

var sessionRule = strings.Repeat("=", 50)

// RenderSession renders one session as a header, one line per displayable
// entry in chronological order, and a footer with the running counters.
func (f *Formatter) RenderSession(s *session.Session) string {
	var b strings.Builder

	b.WriteString(f.styles.Header.Sprint("=== BOT SESSION START ==="))
	b.WriteByte('\n')
	b.WriteString(f.styles.Meta.Sprintf("Timestamp: %s (bot local)", s.StartTime.Format(sessionTimeLayout)))
	b.WriteByte('\n')
	b.WriteString(f.styles.Meta.Sprintf("Session ID: %s", s.ID))
	b.WriteByte('\n')
	if s.DeploymentLabel != "" {
		b.WriteString(f.styles.Meta.Sprintf("Deployment: %s", s.DeploymentLabel))
		b.WriteByte('\n')
	}
	b.WriteString(f.styles.Header.Sprint(sessionRule))
	b.WriteByte('\n')

	for i := range s.Entries {
		if line := f.RenderEntry(s.Entries[i]); line != "" {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	endTime := s.EndTime
	if !s.Finalized() {
		endTime = util.BotNow()
	}

	b.WriteString(f.styles.Footer.Sprint(sessionRule))
	b.WriteByte('\n')
	b.WriteString(f.styles.Footer.Sprint("=== BOT SESSION END ==="))
	b.WriteByte('\n')
	b.WriteString(f.styles.Meta.Sprintf("Timestamp: %s (bot local)", endTime.Format(sessionTimeLayout)))
	b.WriteByte('\n')
	b.WriteString(f.styles.Meta.Sprintf("Session ID: %s", s.ID))
	b.WriteByte('\n')
	b.WriteString(f.styles.Meta.Sprintf("Duration: %s", util.FormatDuration(s.Duration())))
	b.WriteByte('\n')
	b.WriteString(f.styles.Meta.Sprintf("Messages processed: %d", s.Messages))
	b.WriteByte('\n')
	b.WriteString(f.styles.Meta.Sprintf("Distinct users: %d", len(s.Users)))
	b.WriteByte('\n')
	b.WriteString(f.styles.Meta.Sprintf("Errors: %d", len(s.Errors)))
	b.WriteByte('\n')
	b.WriteString(f.styles.Meta.Sprintf("Warnings: %d", len(s.Warnings)))
	b.WriteByte('\n')
	b.WriteString(f.styles.Footer.Sprint(sessionRule))
	b.WriteByte('\n')

	return b.String()
}

// RenderSessions renders a list of sessions separated by blank lines.
func (f *Formatter) RenderSessions(sessions []*session.Session) string {
	parts := make([]string, 0, len(sessions))
	for _, s := range sessions {
		parts = append(parts, f.RenderSession(s))
	}
	return strings.Join(parts, "\n")
}
