// Package fixtures generates raw Cloud Run log records for tests.
package fixtures

import (
	"fmt"
	"time"

	"github.com/penwyp/botlogs/internal/core/model"
)

// RecordGenerator builds raw log records with realistic Cloud Run shape.
// Timestamps advance from a base time so generated batches arrive ordered.
type RecordGenerator struct {
	base time.Time
	seq  int
}

// NewRecordGenerator creates a generator anchored at the given UTC base time.
func NewRecordGenerator(base time.Time) *RecordGenerator {
	return &RecordGenerator{base: base.UTC()}
}

// At returns a text record stamped offset after the base time.
func (g *RecordGenerator) At(offset time.Duration, severity model.Severity, text string) model.RawLogRecord {
	g.seq++
	ts := g.base.Add(offset)
	return model.RawLogRecord{
		Timestamp:        ts.Format(time.RFC3339Nano),
		ReceiveTimestamp: ts.Add(150 * time.Millisecond).Format(time.RFC3339Nano),
		Severity:         severity,
		TextPayload:      text,
		InsertID:         fmt.Sprintf("insert-%04d", g.seq),
		Resource: model.Resource{
			Type: "cloud_run_revision",
			Labels: map[string]string{
				"service_name":  "bot-wsp-whapi-ia",
				"revision_name": "bot-wsp-whapi-ia-00042-abc",
				"location":      "northamerica-south1",
			},
		},
	}
}

// Info is shorthand for an INFO text record.
func (g *RecordGenerator) Info(offset time.Duration, text string) model.RawLogRecord {
	return g.At(offset, model.SeverityInfo, text)
}

// Error is shorthand for an ERROR text record.
func (g *RecordGenerator) Error(offset time.Duration, text string) model.RawLogRecord {
	return g.At(offset, model.SeverityError, text)
}

// JSONPayload returns a record carrying a structured payload instead of text.
func (g *RecordGenerator) JSONPayload(offset time.Duration, payload map[string]any) model.RawLogRecord {
	rec := g.At(offset, model.SeverityInfo, "")
	rec.JSONPayload = payload
	return rec
}

// TransportNoise returns a request-metadata record with no payload, the shape
// Cloud Run emits for plain HTTP access logs.
func (g *RecordGenerator) TransportNoise(offset time.Duration) model.RawLogRecord {
	rec := g.At(offset, model.SeverityInfo, "")
	rec.HTTPRequest = map[string]any{
		"requestMethod": "POST",
		"requestUrl":    "https://bot-wsp-whapi-ia.a.run.app/hook",
		"status":        200,
		"latency":       "0.042s",
		"protocol":      "HTTP/1.1",
		"responseSize":  "153",
	}
	return rec
}

// UserMessage returns a record for an inbound WhatsApp message.
func (g *RecordGenerator) UserMessage(offset time.Duration, userID, text string) model.RawLogRecord {
	return g.Info(offset, fmt.Sprintf("[INFO] 👤 %s: \"%s\"", userID, text))
}

// ServerStart returns a record for a service boot marker.
func (g *RecordGenerator) ServerStart(offset time.Duration) model.RawLogRecord {
	return g.Info(offset, "[INFO] SERVER_START: Servidor HTTP iniciado en puerto 8080")
}
