package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Severity mirrors the severity levels emitted by the cloud log source.
type Severity string

const (
	SeverityDefault  Severity = "DEFAULT"
	SeverityDebug    Severity = "DEBUG"
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// IsError reports whether the severity alone marks the record as an error.
func (s Severity) IsError() bool {
	return s == SeverityError || s == SeverityCritical
}

// RawLogRecord is one record as returned by the cloud log source. The schema
// is dictated by the source; unknown fields are ignored on decode and the
// struct is never mutated after ingestion.
type RawLogRecord struct {
	Timestamp        string            `json:"timestamp"`
	ReceiveTimestamp string            `json:"receiveTimestamp,omitempty"`
	Severity         Severity          `json:"severity,omitempty"`
	TextPayload      string            `json:"textPayload,omitempty"`
	JSONPayload      map[string]any    `json:"jsonPayload,omitempty"`
	HTTPRequest      map[string]any    `json:"httpRequest,omitempty"`
	InsertID         string            `json:"insertId,omitempty"`
	Labels           map[string]string `json:"labels,omitempty"`
	Resource         Resource          `json:"resource,omitempty"`
	Trace            string            `json:"trace,omitempty"`
	SpanID           string            `json:"spanId,omitempty"`
}

type Resource struct {
	Type   string            `json:"type,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

// Message returns the human-oriented payload of the record: textPayload if
// present, then jsonPayload.message, then the whole jsonPayload, then the
// record itself serialized as a last resort.
func (r *RawLogRecord) Message() string {
	if r.TextPayload != "" {
		return r.TextPayload
	}
	if len(r.JSONPayload) > 0 {
		if msg, ok := r.JSONPayload["message"].(string); ok && msg != "" {
			return msg
		}
		if data, err := sonic.MarshalIndent(r.JSONPayload, "", "  "); err == nil {
			return string(data)
		}
	}
	if data, err := sonic.Marshal(r); err == nil {
		return string(data)
	}
	return ""
}

// RevisionLabel returns the backend revision that produced this record, if
// the source attached one.
func (r *RawLogRecord) RevisionLabel() string {
	return r.Resource.Labels["revision_name"]
}

// Category is the closed classification tag assigned to one log entry.
type Category string

const (
	CategoryMessageReceived     Category = "MESSAGE_RECEIVED"
	CategoryMessageProcess      Category = "MESSAGE_PROCESS"
	CategoryAIRequest           Category = "AI_REQUEST"
	CategoryAIResponse          Category = "AI_RESPONSE"
	CategoryFunctionCallStart   Category = "FUNCTION_CALL_START"
	CategoryFunctionCallResult  Category = "FUNCTION_CALL_RESULT"
	CategoryExternalAPIRequest  Category = "EXTERNAL_API_REQUEST"
	CategoryExternalAPIResponse Category = "EXTERNAL_API_RESPONSE"
	CategoryOutboundSend        Category = "OUTBOUND_SEND"
	CategoryError               Category = "ERROR"
	CategoryWarning             Category = "WARNING"
	CategorySessionStart        Category = "SESSION_START_MARKER"
	CategoryUnknown             Category = "UNKNOWN"
)

// DurationUnit is carried alongside every duration value; display units are
// never inferred from magnitude.
type DurationUnit string

const (
	UnitSeconds      DurationUnit = "s"
	UnitMilliseconds DurationUnit = "ms"
)

// Duration is a measured latency with its natural unit.
type Duration struct {
	Value float64      `json:"value"`
	Unit  DurationUnit `json:"unit"`
}

func (d Duration) String() string {
	if d.Unit == UnitSeconds {
		return fmt.Sprintf("%.1fs", d.Value)
	}
	return fmt.Sprintf("%.0fms", d.Value)
}

// Fields holds category-specific extracted values. Only the fields relevant
// to the detected category are populated; everything else stays zero.
type Fields struct {
	UserID       string    `json:"userId,omitempty"`
	MessageText  string    `json:"messageText,omitempty"`
	MessageCount int       `json:"messageCount,omitempty"`
	StateToken   string    `json:"state,omitempty"`
	ThreadID     string    `json:"threadId,omitempty"`
	FunctionName string    `json:"functionName,omitempty"`
	FunctionArgs any       `json:"functionArgs,omitempty"`
	ResultText   string    `json:"resultText,omitempty"`
	StartDate    string    `json:"startDate,omitempty"`
	EndDate      string    `json:"endDate,omitempty"`
	Nights       int       `json:"nights,omitempty"`
	ResponseText string    `json:"responseText,omitempty"`
	ResponseLen  int       `json:"responseLength,omitempty"`
	ChunkCount   int       `json:"chunks,omitempty"`
	ErrorType    string    `json:"errorType,omitempty"`
	ErrorContext string    `json:"errorContext,omitempty"`
	Duration     *Duration `json:"duration,omitempty"`
}

// ClassifiedEntry is the classified form of one raw record. It is created
// once at ingestion and never mutated afterward; classification is a pure
// function of the raw record.
type ClassifiedEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Severity  Severity  `json:"severity"`
	Category  Category  `json:"category"`
	IsNoise   bool      `json:"isNoise"`
	Fields    Fields    `json:"fields"`
	RawText   string    `json:"rawText"`
	Revision  string    `json:"revision,omitempty"`
}

// HasDisplayableContent reports whether the entry carries anything worth
// rendering. Noise entries and blank unknowns are suppressed.
func (e *ClassifiedEntry) HasDisplayableContent() bool {
	if e.IsNoise {
		return false
	}
	if e.Category == CategoryUnknown {
		return strings.TrimSpace(e.RawText) != ""
	}
	return true
}
