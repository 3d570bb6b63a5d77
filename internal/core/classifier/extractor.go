package classifier

import (
	"regexp"
	"strings"
)

// A record forwarded through the transport layer often arrives with the
// real log line buried inside a serialized envelope (httpRequest metadata,
// trace fields, build labels). The extractor recovers that embedded line so
// the category rules can run against clean text.
//
// Strategies are tried in order; a failed attempt simply falls through to
// the next one. Nothing here ever errors on malformed input.
var (
	embeddedTextPattern    = regexp.MustCompile(`"textPayload"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	embeddedMessagePattern = regexp.MustCompile(`"message"\s*:\s*"((?:[^"\\]|\\.)*)"`)

	embeddedHeuristics = []*regexp.Regexp{
		regexp.MustCompile(`\[INFO\][^}]+`),
		regexp.MustCompile(`\[SUCCESS\][^}]+`),
		regexp.MustCompile(`\[ERROR\][^}]+`),
		regexp.MustCompile(`57\d{9,10}:[^}]+`),
		regexp.MustCompile(`(?i)adding_message[^}]+`),
		regexp.MustCompile(`(?i)creating_run[^}]+`),
		regexp.MustCompile(`(?i)function_calling[^}]+`),
		regexp.MustCompile(`(?i)BEDS24_[^}]+`),
	}
)

// ExtractEmbedded attempts to recover a human-readable message embedded in a
// transport-wrapped payload. Only envelope-shaped input is inspected; plain
// log lines pass through untouched. Returns false when nothing is found, in
// which case the caller keeps the raw text as-is.
func ExtractEmbedded(raw string) (string, bool) {
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return "", false
	}

	for _, pattern := range []*regexp.Regexp{embeddedTextPattern, embeddedMessagePattern} {
		if m := pattern.FindStringSubmatch(raw); m != nil && m[1] != "" {
			return unescapeJSONString(m[1]), true
		}
	}

	for _, pattern := range embeddedHeuristics {
		if m := pattern.FindString(raw); m != "" {
			return m, true
		}
	}

	return "", false
}

// unescapeJSONString decodes the escape sequences that matter for log text:
// newline, quote, backslash, tab and carriage return. Unrecognized escapes
// are kept verbatim.
func unescapeJSONString(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(s[i])
			b.WriteByte(s[i+1])
		}
		i++
	}
	return b.String()
}
