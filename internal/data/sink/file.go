// Package sink delivers rendered session text to its destinations: per
// session files on disk and the system clipboard.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/penwyp/botlogs/internal/core/session"
	"github.com/penwyp/botlogs/internal/util"
)

// DefaultMaxFiles is the retention limit for saved session files.
const DefaultMaxFiles = 10

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes terminal color codes from rendered text so persisted
// output stays plain.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// FileSink writes one file per session into a directory, skipping sessions
// already saved and pruning old files past the retention limit. The session
// id is embedded in the filename, which makes the save idempotent across
// runs over the same data.
type FileSink struct {
	Dir      string
	MaxFiles int
}

// NewFileSink creates a sink rooted at dir with the given retention. A
// non-positive maxFiles falls back to DefaultMaxFiles.
func NewFileSink(dir string, maxFiles int) *FileSink {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	return &FileSink{Dir: dir, MaxFiles: maxFiles}
}

// SaveAll persists the sessions that are not on disk yet. render must
// produce the plain-text form of one session. Returns the paths written.
func (s *FileSink) SaveAll(sessions []*session.Session, render func(*session.Session) string) ([]string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	existing, err := s.existingSessionIDs()
	if err != nil {
		return nil, err
	}

	var saved []string
	for _, sess := range sessions {
		if _, ok := existing[sess.ID]; ok {
			continue
		}
		path := filepath.Join(s.Dir, s.filename(sess))
		content := StripANSI(render(sess))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return saved, fmt.Errorf("save session %s: %w", sess.ID, err)
		}
		util.LogInfof("session saved: %s", filepath.Base(path))
		saved = append(saved, path)
	}

	if err := s.prune(); err != nil {
		util.LogWarnf("session file cleanup: %v", err)
	}
	return saved, nil
}

// filename encodes both the start time and the session id, so existing ids
// can be recovered from a directory listing without opening files.
func (s *FileSink) filename(sess *session.Session) string {
	stamp := sess.StartTime.Format("20060102_150405")
	short := strings.TrimPrefix(sess.ID, "session-")
	return fmt.Sprintf("session_%s_%s.txt", stamp, short)
}

func (s *FileSink) existingSessionIDs() (map[string]struct{}, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read session directory: %w", err)
	}

	ids := make(map[string]struct{})
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "session_") || !strings.HasSuffix(name, ".txt") {
			continue
		}
		parts := strings.Split(strings.TrimSuffix(name, ".txt"), "_")
		if len(parts) >= 4 {
			ids["session-"+parts[3]] = struct{}{}
		}
	}
	return ids, nil
}

// prune keeps only the MaxFiles most recently modified session files.
func (s *FileSink) prune() error {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return err
	}

	type fileAge struct {
		path    string
		modTime int64
	}
	var files []fileAge
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "session_") || !strings.HasSuffix(name, ".txt") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileAge{
			path:    filepath.Join(s.Dir, name),
			modTime: info.ModTime().Unix(),
		})
	}

	if len(files) <= s.MaxFiles {
		return nil
	}

	sort.Slice(files, func(i, j int) bool { return files[i].modTime > files[j].modTime })
	for _, f := range files[s.MaxFiles:] {
		if err := os.Remove(f.path); err != nil {
			util.LogWarnf("remove old session file %s: %v", filepath.Base(f.path), err)
			continue
		}
		util.LogDebugf("removed old session file: %s", filepath.Base(f.path))
	}
	return nil
}
