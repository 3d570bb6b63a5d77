package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/botlogs/internal/core/model"
	"github.com/penwyp/botlogs/internal/testing/fixtures"
)

type fakeSource struct {
	records []model.RawLogRecord
	err     error
	calls   int
}

func (f *fakeSource) Fetch(_ context.Context, _ time.Duration, _ int) ([]model.RawLogRecord, error) {
	f.calls++
	return f.records, f.err
}

func baseConfig(saveDir string) *Config {
	return &Config{
		Hours:       2,
		Limit:       5000,
		SaveDir:     saveDir,
		MaxFiles:    10,
		NoColor:     true,
		NoClipboard: true,
	}
}

func record(ts, text string) model.RawLogRecord {
	return model.RawLogRecord{Timestamp: ts, Severity: model.SeverityInfo, TextPayload: text}
}

func TestRunEmptyFetchIsNotAnError(t *testing.T) {
	src := &fakeSource{}
	a := New(baseConfig(t.TempDir()), src, nil)

	assert.NoError(t, a.Run(context.Background()))
	assert.Equal(t, 1, src.calls)
}

func TestRunFetchFailureSurfaces(t *testing.T) {
	src := &fakeSource{err: errors.New("gcloud exploded")}
	a := New(baseConfig(t.TempDir()), src, nil)

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gcloud exploded")
}

func TestRunSavesSessionFiles(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{records: []model.RawLogRecord{
		record("2025-07-10T19:10:20Z", `[INFO] 👤 573003913251: "hola"`),
		record("2025-07-10T19:10:40Z", "OPENAI_RESPONSE: Run completado (12.3s)"),
	}}

	a := New(baseConfig(dir), src, nil)
	require.NoError(t, a.Run(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "MESSAGE_RECEIVED")
	assert.Contains(t, string(content), "12.3s")
	assert.NotContains(t, string(content), "\x1b[", "saved files are plain text")
}

func TestRunErrorsOnlyFilter(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{records: []model.RawLogRecord{
		record("2025-07-10T19:10:20Z", `[INFO] 👤 573003913251: "hola"`),
	}}

	cfg := baseConfig(dir)
	cfg.ErrorsOnly = true
	a := New(cfg, src, nil)

	require.NoError(t, a.Run(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "sessions without errors are filtered out")
}

func TestRunUserFilter(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{records: []model.RawLogRecord{
		record("2025-07-10T19:10:20Z", `[INFO] 👤 573003913251: "hola"`),
		record("2025-07-10T19:30:20Z", `[INFO] 👤 573009999999: "buenas"`),
	}}

	cfg := baseConfig(dir)
	cfg.UserFilter = "573009999999"
	a := New(cfg, src, nil)

	require.NoError(t, a.Run(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "573009999999")
	assert.NotContains(t, string(content), "573003913251")
}

func TestRunFullPipelineWithGeneratedRecords(t *testing.T) {
	dir := t.TempDir()
	gen := fixtures.NewRecordGenerator(time.Date(2025, 7, 10, 19, 0, 0, 0, time.UTC))
	src := &fakeSource{records: []model.RawLogRecord{
		gen.ServerStart(0),
		gen.TransportNoise(5 * time.Second),
		gen.UserMessage(10*time.Second, "573003913251", "hola, busco apartamento"),
		gen.Info(20*time.Second, "OPENAI_RESPONSE: Run completado (18.2s)"),
		gen.Error(30*time.Second, "Beds24 request failed after 3000ms"),
	}}

	a := New(baseConfig(dir), src, nil)
	require.NoError(t, a.Run(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "one session despite the noise record")

	content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "SESSION_START_MARKER")
	assert.Contains(t, text, "573003913251")
	assert.Contains(t, text, "18.2s")
	assert.Contains(t, text, "[ERROR]")
	assert.Contains(t, text, "Deployment: bot-wsp-whapi-ia-00042-abc")
	assert.NotContains(t, text, "requestMethod", "transport noise never renders")
}

func TestRunSplitsSessionsOnGap(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{records: []model.RawLogRecord{
		record("2025-07-10T10:00:00Z", `[INFO] 👤 573003913251: "primera"`),
		record("2025-07-10T10:06:00Z", `[INFO] 👤 573003913251: "segunda"`),
	}}

	a := New(baseConfig(dir), src, nil)
	require.NoError(t, a.Run(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "a 360s gap produces two sessions")
}
