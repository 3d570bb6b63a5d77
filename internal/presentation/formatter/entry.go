package formatter

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/penwyp/botlogs/internal/core/model"
)

const entryTimeLayout = "2006-01-02T15:04:05.000Z"

// Formatter renders entries and sessions with a given style set. truncateAt
// bounds the display width of long payloads (API responses, function
// results); zero means no truncation, which is what file and clipboard sinks
// use so persisted sessions keep full content.
type Formatter struct {
	styles     *Styles
	truncateAt int
}

// New creates a Formatter. Pass truncateAt 0 to keep payloads whole.
func New(styles *Styles, truncateAt int) *Formatter {
	return &Formatter{styles: styles, truncateAt: truncateAt}
}

// RenderEntry renders one classified entry as a single display line. Noise
// entries, and unknown entries with no displayable content, render as "".
func (f *Formatter) RenderEntry(entry model.ClassifiedEntry) string {
	if !entry.HasDisplayableContent() {
		return ""
	}

	level, levelStyle := f.entryLevel(entry)
	message := f.entryMessage(entry)
	if strings.TrimSpace(message) == "" {
		return ""
	}

	prefix := levelStyle.Sprintf("[%s] [%s]", entry.Timestamp.Format(entryTimeLayout), level)
	category := f.styles.Category.Sprint(string(entry.Category))
	return fmt.Sprintf("%s %s: %s", prefix, category, message)
}

func (f *Formatter) entryLevel(entry model.ClassifiedEntry) (string, *color.Color) {
	switch {
	case entry.Category == model.CategoryError || entry.Severity.IsError():
		return "ERROR", f.styles.Error
	case entry.Category == model.CategoryWarning || entry.Severity == model.SeverityWarning:
		return "WARNING", f.styles.Warning
	case entry.Category == model.CategoryAIResponse || entry.Category == model.CategoryFunctionCallResult:
		return "SUCCESS", f.styles.Success
	default:
		return "INFO", f.styles.Info
	}
}

// entryMessage builds the category-specific body of the line.
func (f *Formatter) entryMessage(entry model.ClassifiedEntry) string {
	fields := entry.Fields

	switch entry.Category {
	case model.CategoryMessageReceived:
		return fmt.Sprintf("User %s: %q", orUnknown(fields.UserID), fields.MessageText)

	case model.CategoryMessageProcess:
		if fields.MessageCount > 0 {
			return fmt.Sprintf("Processing %d grouped messages", fields.MessageCount)
		}
		return "Processing grouped messages"

	case model.CategoryAIRequest:
		subject := fields.ThreadID
		if fields.UserID != "" {
			subject = fields.UserID
		}
		if subject == "" {
			return orRaw(fields.StateToken, entry)
		}
		return fmt.Sprintf("%s for %s", orUnknown(fields.StateToken), subject)

	case model.CategoryAIResponse:
		msg := "Run completed"
		if fields.Duration != nil {
			msg += " in " + fields.Duration.String()
		}
		if fields.ThreadID != "" {
			msg += " (thread " + fields.ThreadID + ")"
		}
		return msg

	case model.CategoryFunctionCallStart:
		msg := "Model requested function: " + orUnknown(fields.FunctionName)
		if args := f.renderArgs(fields.FunctionArgs); args != "" {
			msg += " " + f.styles.Detail.Sprint(args)
		}
		return msg

	case model.CategoryFunctionCallResult:
		msg := orUnknown(fields.FunctionName) + " executed"
		if fields.Duration != nil {
			msg += " in " + fields.Duration.String()
		}
		if fields.ResultText != "" {
			msg += ": " + f.truncate(fields.ResultText)
		}
		return msg

	case model.CategoryExternalAPIRequest:
		if fields.StartDate != "" && fields.EndDate != "" {
			msg := fmt.Sprintf("Availability query %s to %s", fields.StartDate, fields.EndDate)
			if fields.Nights > 0 {
				msg += fmt.Sprintf(" (%d nights)", fields.Nights)
			}
			return msg
		}
		return "Availability query"

	case model.CategoryExternalAPIResponse:
		msg := "Beds24 response"
		if fields.ResponseLen > 0 {
			msg += fmt.Sprintf(" (%d chars)", fields.ResponseLen)
		}
		if fields.ResponseText != "" {
			msg += ": " + f.truncate(fields.ResponseText)
		}
		return msg

	case model.CategoryOutboundSend:
		msg := "Sending message to " + orUnknown(fields.UserID)
		if fields.ChunkCount > 0 {
			msg += fmt.Sprintf(" (%d chunks)", fields.ChunkCount)
		}
		return msg

	case model.CategoryError:
		msg := orUnknown(fields.ErrorType)
		if fields.ErrorContext != "" {
			msg += " [" + fields.ErrorContext + "]"
		}
		return msg + ": " + singleLine(entry.RawText)

	case model.CategoryWarning:
		return singleLine(entry.RawText)

	case model.CategorySessionStart:
		return "Service started: " + singleLine(entry.RawText)

	default:
		return f.truncate(singleLine(entry.RawText))
	}
}

// renderArgs pretty-prints function arguments when they parsed as JSON and
// falls back to the raw string form otherwise.
func (f *Formatter) renderArgs(args any) string {
	switch v := args.(type) {
	case nil:
		return ""
	case string:
		return f.truncate(v)
	default:
		out, err := sonic.MarshalString(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return f.truncate(out)
	}
}

func (f *Formatter) truncate(s string) string {
	s = singleLine(s)
	if f.truncateAt <= 0 {
		return s
	}
	return runewidth.Truncate(s, f.truncateAt, "...")
}

func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.TrimSpace(s)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func orRaw(s string, entry model.ClassifiedEntry) string {
	if s != "" {
		return s
	}
	return singleLine(entry.RawText)
}
