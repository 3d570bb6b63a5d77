package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/penwyp/botlogs/internal/core/model"
)

func entryAt(t time.Time, category model.Category) model.ClassifiedEntry {
	return model.ClassifiedEntry{Timestamp: t, Category: category, RawText: "x"}
}

func TestDetectorFirstEntryStartsSession(t *testing.T) {
	d := NewDetector()
	base := time.Date(2025, 7, 10, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, StartNew, d.Observe(entryAt(base, model.CategoryUnknown)))
}

func TestDetectorGapSplitting(t *testing.T) {
	d := NewDetector()
	base := time.Date(2025, 7, 10, 10, 0, 0, 0, time.UTC)

	d.Observe(entryAt(base, model.CategoryMessageReceived))
	got := d.Observe(entryAt(base.Add(360*time.Second), model.CategoryMessageReceived))

	assert.Equal(t, StartNew, got, "360s of silence exceeds the 300s threshold")
}

func TestDetectorExactThresholdContinues(t *testing.T) {
	d := NewDetector()
	base := time.Date(2025, 7, 10, 10, 0, 0, 0, time.UTC)

	d.Observe(entryAt(base, model.CategoryMessageReceived))
	got := d.Observe(entryAt(base.Add(InactivityThreshold), model.CategoryMessageReceived))

	assert.Equal(t, ContinueCurrent, got, "a gap of exactly 300s does not split")
}

func TestDetectorMarkerAlwaysSplits(t *testing.T) {
	d := NewDetector()
	base := time.Date(2025, 7, 10, 10, 0, 0, 0, time.UTC)

	d.Observe(entryAt(base, model.CategoryMessageReceived))
	got := d.Observe(entryAt(base.Add(time.Second), model.CategorySessionStart))

	assert.Equal(t, StartNew, got, "restart markers split regardless of timing")
}

func TestDetectorShortGapContinues(t *testing.T) {
	d := NewDetector()
	base := time.Date(2025, 7, 10, 10, 0, 0, 0, time.UTC)

	d.Observe(entryAt(base, model.CategoryMessageReceived))
	for i := 1; i <= 5; i++ {
		got := d.Observe(entryAt(base.Add(time.Duration(i)*30*time.Second), model.CategoryAIRequest))
		assert.Equal(t, ContinueCurrent, got)
	}
}

func TestDetectorReset(t *testing.T) {
	d := NewDetector()
	base := time.Date(2025, 7, 10, 10, 0, 0, 0, time.UTC)

	d.Observe(entryAt(base, model.CategoryMessageReceived))
	d.Reset()

	assert.Equal(t, StartNew, d.Observe(entryAt(base.Add(time.Second), model.CategoryMessageReceived)))
}
