// Package classifier turns raw cloud log records into typed, categorized
// entries. Classification is a pure function of the record: no state, no
// side effects, and the same record always produces the same entry.
package classifier

import (
	"regexp"

	"github.com/penwyp/botlogs/internal/core/model"
	"github.com/penwyp/botlogs/internal/util"
)

// Transport-only shapes: records made entirely of request latency, tracing,
// build or deployment metadata.
var transportOnlyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*\{?\s*"?httpRequest"?`),
	regexp.MustCompile(`(?is)latency.*protocol.*requestMethod.*responseSize`),
	regexp.MustCompile(`(?is)insertId.*labels.*gcb-build-id`),
	regexp.MustCompile(`(?is)spanId.*trace.*traceSampled`),
	regexp.MustCompile(`(?is)receiveTimestamp.*resource.*labels.*configuration_name`),
}

// Allow-list of signals that mark a record as definitely useful, no matter
// how much transport metadata surrounds them.
var usefulContentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`573\d{9}|57\d{10}`),
	regexp.MustCompile(`(?i)OpenAI|Beds24|funci[oó]n|function|error|warning`),
	regexp.MustCompile(`SERVER_START|BOT_READY|FUNCTION_|BEDS24_|WHATSAPP_`),
	regexp.MustCompile(`(?i)adding_message|creating_run|run_started|run_completed`),
	regexp.MustCompile(`(?i)Servidor.*iniciado|completamente.*inicializado`),
	regexp.MustCompile(`(?i)Buffer.*vac[ií]o|mensajes.*pendientes`),
}

// Classifier evaluates an ordered rule table against each record; the first
// matching category wins.
type Classifier struct {
	rules []rule
}

// New creates a Classifier with the default rule table.
func New() *Classifier {
	return &Classifier{rules: ruleTable()}
}

// Classify derives a ClassifiedEntry from one raw record. It is total:
// unrecognized input yields CategoryUnknown, malformed timestamps fall back
// to the current bot-local time, and nothing here can fail.
func (c *Classifier) Classify(rec model.RawLogRecord) model.ClassifiedEntry {
	raw := rec.Message()

	entry := model.ClassifiedEntry{
		Timestamp: util.ParseRecordTime(rec.Timestamp),
		Severity:  normalizeSeverity(rec.Severity),
		Category:  model.CategoryUnknown,
		RawText:   raw,
		Revision:  rec.RevisionLabel(),
	}

	entry.IsNoise = isNoise(raw, &rec)

	// Rules run against the embedded message when the payload is wrapped
	// in transport noise; otherwise against the raw text itself.
	text := raw
	if embedded, ok := ExtractEmbedded(raw); ok {
		text = embedded
	}

	if id := userIDPattern.FindString(text); id != "" {
		entry.Fields.UserID = id
	}

	for _, r := range c.rules {
		if r.match(text, &rec) {
			entry.Category = r.category
			if r.extract != nil {
				r.extract(text, &entry)
			}
			break
		}
	}

	return entry
}

// ClassifyAll classifies a batch of records, preserving order.
func (c *Classifier) ClassifyAll(records []model.RawLogRecord) []model.ClassifiedEntry {
	entries := make([]model.ClassifiedEntry, 0, len(records))
	for i := range records {
		entries = append(entries, c.Classify(records[i]))
	}
	return entries
}

// isNoise applies the conjunctive rule: a record is noise iff it matches a
// transport-only shape AND carries none of the useful-content signals. A
// metadata-heavy record that also contains a recognized signal is kept.
func isNoise(raw string, rec *model.RawLogRecord) bool {
	transport := rec.HTTPRequest != nil && rec.TextPayload == "" && len(rec.JSONPayload) == 0
	if !transport {
		for _, p := range transportOnlyPatterns {
			if p.MatchString(raw) {
				transport = true
				break
			}
		}
	}
	if !transport {
		return false
	}

	for _, p := range usefulContentPatterns {
		if p.MatchString(raw) {
			return false
		}
	}
	return true
}

func normalizeSeverity(s model.Severity) model.Severity {
	switch s {
	case model.SeverityDebug, model.SeverityInfo, model.SeverityWarning,
		model.SeverityError, model.SeverityCritical:
		return s
	default:
		return model.SeverityDefault
	}
}
