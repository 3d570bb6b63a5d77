package sink

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/botlogs/internal/core/model"
	"github.com/penwyp/botlogs/internal/core/session"
)

func buildSessions(t *testing.T, count int) []*session.Session {
	t.Helper()
	base := time.Date(2025, 7, 10, 10, 0, 0, 0, time.UTC)
	var entries []model.ClassifiedEntry
	for i := 0; i < count; i++ {
		entries = append(entries, model.ClassifiedEntry{
			Timestamp: base.Add(time.Duration(i) * 10 * time.Minute),
			Category:  model.CategoryMessageReceived,
			Fields:    model.Fields{UserID: "573003913251", MessageText: "hola"},
			RawText:   `573003913251: "hola"`,
		})
	}
	sessions := session.NewAggregator().Build(entries)
	require.Len(t, sessions, count)
	return sessions
}

func renderPlain(s *session.Session) string {
	return "session " + s.ID + "\n"
}

func TestSaveAllWritesOneFilePerSession(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir, 10)

	saved, err := sink.SaveAll(buildSessions(t, 2), renderPlain)
	require.NoError(t, err)
	assert.Len(t, saved, 2)

	for _, path := range saved {
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "session session-")
	}
}

func TestSaveAllIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir, 10)
	sessions := buildSessions(t, 2)

	first, err := sink.SaveAll(sessions, renderPlain)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := sink.SaveAll(sessions, renderPlain)
	require.NoError(t, err)
	assert.Empty(t, second, "already-saved sessions are skipped")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSaveAllStripsANSI(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir, 10)

	saved, err := sink.SaveAll(buildSessions(t, 1), func(s *session.Session) string {
		return "\x1b[31mred\x1b[0m " + s.ID
	})
	require.NoError(t, err)
	require.Len(t, saved, 1)

	content, err := os.ReadFile(saved[0])
	require.NoError(t, err)
	assert.NotContains(t, string(content), "\x1b[")
	assert.Contains(t, string(content), "red")
}

func TestPruneKeepsMostRecent(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir, 2)

	// Pre-seed three old session files with staggered mtimes.
	names := []string{
		"session_20250701_100000_1751364000.txt",
		"session_20250702_100000_1751450400.txt",
		"session_20250703_100000_1751536800.txt",
	}
	now := time.Now()
	for i, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
		mtime := now.Add(time.Duration(i-len(names)) * time.Hour)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}

	_, err := sink.SaveAll(nil, renderPlain)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// The oldest file is the one removed.
	_, err = os.Stat(filepath.Join(dir, names[0]))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveAllCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "sessions")
	sink := NewFileSink(dir, 10)

	_, err := sink.SaveAll(buildSessions(t, 1), renderPlain)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "plain", StripANSI("plain"))
	assert.Equal(t, "colored", StripANSI("\x1b[1;32mcolored\x1b[0m"))
}
