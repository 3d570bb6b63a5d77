package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessagePrefersTextPayload(t *testing.T) {
	rec := RawLogRecord{
		TextPayload: "plain text line",
		JSONPayload: map[string]any{"message": "structured line"},
	}
	assert.Equal(t, "plain text line", rec.Message())
}

func TestMessageFallsBackToJSONMessage(t *testing.T) {
	rec := RawLogRecord{JSONPayload: map[string]any{"message": "structured line"}}
	assert.Equal(t, "structured line", rec.Message())
}

func TestMessageSerializesPayloadWithoutMessageKey(t *testing.T) {
	rec := RawLogRecord{JSONPayload: map[string]any{"operation": "fetch"}}
	assert.Contains(t, rec.Message(), "operation")
}

func TestMessageNeverEmpty(t *testing.T) {
	rec := RawLogRecord{InsertID: "abc"}
	assert.NotEmpty(t, rec.Message())
}

func TestSeverityIsError(t *testing.T) {
	assert.True(t, SeverityError.IsError())
	assert.True(t, SeverityCritical.IsError())
	assert.False(t, SeverityWarning.IsError())
	assert.False(t, SeverityInfo.IsError())
}

func TestDurationStringKeepsUnit(t *testing.T) {
	secs := Duration{Value: 12.5, Unit: UnitSeconds}
	assert.Equal(t, "12.5s", secs.String())

	ms := Duration{Value: 5000, Unit: UnitMilliseconds}
	assert.Equal(t, "5000ms", ms.String())
}

func TestRevisionLabel(t *testing.T) {
	rec := RawLogRecord{Resource: Resource{
		Type:   "cloud_run_revision",
		Labels: map[string]string{"revision_name": "bot-00042-abc"},
	}}
	assert.Equal(t, "bot-00042-abc", rec.RevisionLabel())

	var bare RawLogRecord
	assert.Empty(t, bare.RevisionLabel())
}

func TestHasDisplayableContent(t *testing.T) {
	noise := ClassifiedEntry{IsNoise: true, Category: CategoryMessageReceived, RawText: "x"}
	assert.False(t, noise.HasDisplayableContent())

	blankUnknown := ClassifiedEntry{Category: CategoryUnknown, RawText: "   "}
	assert.False(t, blankUnknown.HasDisplayableContent())

	known := ClassifiedEntry{Category: CategoryError, RawText: "boom"}
	assert.True(t, known.HasDisplayableContent())
}
