package classifier

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/penwyp/botlogs/internal/core/model"
)

// The production bot logs a mix of Spanish operator messages and English
// machine markers; the patterns below cover both spellings where they occur.
var (
	userIDPattern = regexp.MustCompile(`573\d{9}|57\d{10}`)
	quotedPattern = regexp.MustCompile(`"([^"]+)"`)
	threadPattern = regexp.MustCompile(`(?i)thread[\s_-]*([A-Za-z0-9][A-Za-z0-9_-]*)`)
	runPattern    = regexp.MustCompile(`(?i)run[\s_-]+([A-Za-z0-9][A-Za-z0-9_-]*)`)

	secondsPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*s\b`)
	millisPattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*ms\b`)

	messageReceivedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:573\d{9}|57\d{10})\D*"[^"]+"`),
		regexp.MustCompile(`(?i)Mensaje recibido.*from`),
		regexp.MustCompile(`(?i)message received.*from`),
	}

	messageProcessPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Procesando mensajes agrupados`),
		regexp.MustCompile(`(?i)messageCount.*totalLength`),
		regexp.MustCompile(`(?i)\[BOT\].*msgs.*OpenAI`),
	}
	messageCountPattern = regexp.MustCompile(`(\d+)\s*msgs?\b`)

	// Fixed vocabulary of assistant run states; the token itself is the
	// extracted field.
	aiStateTokens     = []string{"adding_message", "message_added", "creating_run", "run_started", "preparing"}
	aiRequestPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)adding_message|message_added|creating_run|run_started`),
		regexp.MustCompile(`OPENAI_REQUEST`),
		regexp.MustCompile(`(?i)\bpreparing\b.*(?:run|assistant)`),
	}

	aiResponsePatterns = []*regexp.Regexp{
		regexp.MustCompile(`OPENAI_RESPONSE|OPENAI_RUN_COMPLETED`),
		regexp.MustCompile(`(?i)Run completad[oa]`),
		regexp.MustCompile(`(?i)run completed`),
		regexp.MustCompile(`(?i)Completado\s*\(\d`),
	}

	functionStartPatterns = []*regexp.Regexp{
		regexp.MustCompile(`FUNCTION_CALLING_START|FUNCTION_EXECUTING`),
		regexp.MustCompile(`(?i)OpenAI requiere ejecutar.*funci[oó]n`),
		regexp.MustCompile(`(?i)Ejecutando funci[oó]n`),
		regexp.MustCompile(`(?i)model request(?:s|ed) function`),
	}
	functionNamePattern = regexp.MustCompile(`(?i)funci[oó]n[:\s]+(\w+)|function[:\s]+(\w+)`)
	jsonArgsPattern     = regexp.MustCompile(`\{[^{}]*\}`)

	functionResultPatterns = []*regexp.Regexp{
		regexp.MustCompile(`FUNCTION_HANDLER|FUNCTION_RESULT`),
		regexp.MustCompile(`(?i)funci[oó]n\s+\w+\s+ejecutada`),
		regexp.MustCompile(`(?i)function\s+\w+\s+executed`),
	}
	executedNamePattern = regexp.MustCompile(`(?i)(\w+)\s+(?:ejecutada|executed)`)

	apiRequestPatterns = []*regexp.Regexp{
		regexp.MustCompile(`BEDS24_REQUEST`),
		regexp.MustCompile(`(?i)Procesando consulta de disponibilidad`),
		regexp.MustCompile(`(?i)consulta.*Beds24`),
		regexp.MustCompile(`(?i)availability query`),
	}
	datePattern   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	nightsPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:noches?|nights?)`)

	apiResponsePatterns = []*regexp.Regexp{
		regexp.MustCompile(`BEDS24_RESPONSE_DETAIL`),
		regexp.MustCompile(`(?i)Respuesta completa.*Beds24`),
		regexp.MustCompile(`OPENAI_FUNCTION_OUTPUT`),
		regexp.MustCompile(`(?i)"fullResponse"`),
	}
	fullResponsePattern = regexp.MustCompile(`"fullResponse"\s*:\s*"((?:[^"\\]|\\.)*)"`)

	outboundPatterns = []*regexp.Regexp{
		regexp.MustCompile(`WHATSAPP_SEND|WHATSAPP_CHUNKS_COMPLETE`),
		regexp.MustCompile(`(?i)Enviando mensaje.*57\d`),
		regexp.MustCompile(`(?i)p[aá]rrafos?.*enviados?`),
	}
	chunksPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:p[aá]rrafos?|chunks?)`)

	sessionStartPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Servidor HTTP iniciado`),
		regexp.MustCompile(`(?i)Bot completamente inicializado`),
		regexp.MustCompile(`(?i)Bot iniciado exitosamente`),
		regexp.MustCompile(`SERVER_START|BOT_READY`),
		regexp.MustCompile(`(?i)Starting server`),
		regexp.MustCompile(`(?i)Application started`),
	}

	// Ordered: the first matching keyword becomes the error type, so the
	// specific ones come before the generic "error".
	errorKeywords = []string{"timeout", "exception", "crash", "failed", "error"}

	warningKeywords = []string{"warning", "warn", "retry", "fallback", "buffer vacío", "empty buffer"}
)

// rule pairs a category predicate with its field extractor. Rules are
// evaluated in a fixed order and the first match wins; see ruleTable.
type rule struct {
	category model.Category
	match    func(text string, rec *model.RawLogRecord) bool
	extract  func(text string, entry *model.ClassifiedEntry)
}

func matchAny(patterns []*regexp.Regexp) func(string, *model.RawLogRecord) bool {
	return func(text string, _ *model.RawLogRecord) bool {
		for _, p := range patterns {
			if p.MatchString(text) {
				return true
			}
		}
		return false
	}
}

// ruleTable is the single documented evaluation order for category
// detection:
//
//  1. SESSION_START_MARKER   (startup announcements)
//  2. ERROR                  (severity ERROR/CRITICAL only)
//  3. WARNING                (severity WARNING only)
//  4. MESSAGE_RECEIVED
//  5. MESSAGE_PROCESS
//  6. AI_REQUEST
//  7. FUNCTION_CALL_START
//  8. FUNCTION_CALL_RESULT
//  9. EXTERNAL_API_REQUEST
// 10. EXTERNAL_API_RESPONSE
// 11. AI_RESPONSE
// 12. OUTBOUND_SEND
// 13. ERROR                  (keyword match)
// 14. WARNING                (keyword match)
//
// Severity-driven ERROR/WARNING run before the content categories so a
// failing record is never masked by an incidental content marker; the
// keyword variants run last so that, e.g., a user message quoting the word
// "error" still classifies as MESSAGE_RECEIVED.
func ruleTable() []rule {
	return []rule{
		{model.CategorySessionStart, matchAny(sessionStartPatterns), nil},
		{model.CategoryError, matchSeverityError, extractError},
		{model.CategoryWarning, matchSeverityWarning, nil},
		{model.CategoryMessageReceived, matchAny(messageReceivedPatterns), extractMessageReceived},
		{model.CategoryMessageProcess, matchAny(messageProcessPatterns), extractMessageProcess},
		{model.CategoryAIRequest, matchAny(aiRequestPatterns), extractAIRequest},
		{model.CategoryFunctionCallStart, matchAny(functionStartPatterns), extractFunctionStart},
		{model.CategoryFunctionCallResult, matchAny(functionResultPatterns), extractFunctionResult},
		{model.CategoryExternalAPIRequest, matchAny(apiRequestPatterns), extractAPIRequest},
		{model.CategoryExternalAPIResponse, matchAny(apiResponsePatterns), extractAPIResponse},
		{model.CategoryAIResponse, matchAny(aiResponsePatterns), extractAIResponse},
		{model.CategoryOutboundSend, matchAny(outboundPatterns), extractOutbound},
		{model.CategoryError, matchKeywordError, extractError},
		{model.CategoryWarning, matchKeywordWarning, nil},
	}
}

func matchSeverityError(_ string, rec *model.RawLogRecord) bool {
	return rec.Severity.IsError()
}

func matchSeverityWarning(_ string, rec *model.RawLogRecord) bool {
	return rec.Severity == model.SeverityWarning
}

func matchKeywordError(text string, _ *model.RawLogRecord) bool {
	lower := strings.ToLower(text)
	for _, kw := range errorKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func matchKeywordWarning(text string, _ *model.RawLogRecord) bool {
	lower := strings.ToLower(text)
	for _, kw := range warningKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Extractors. A missing field is never an error: the entry keeps its
// category with whatever fields could be recovered.

func extractMessageReceived(text string, entry *model.ClassifiedEntry) {
	if m := quotedPattern.FindStringSubmatch(text); m != nil {
		entry.Fields.MessageText = m[1]
	}
}

func extractMessageProcess(text string, entry *model.ClassifiedEntry) {
	if m := messageCountPattern.FindStringSubmatch(text); m != nil {
		entry.Fields.MessageCount, _ = strconv.Atoi(m[1])
	}
}

func extractAIRequest(text string, entry *model.ClassifiedEntry) {
	lower := strings.ToLower(text)
	for _, token := range aiStateTokens {
		if strings.Contains(lower, token) {
			entry.Fields.StateToken = token
			break
		}
	}
	extractThreadID(text, entry)
}

func extractAIResponse(text string, entry *model.ClassifiedEntry) {
	// Assistant run latency is reported in seconds.
	if m := secondsPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			entry.Fields.Duration = &model.Duration{Value: v, Unit: model.UnitSeconds}
		}
	}
	extractThreadID(text, entry)
}

func extractFunctionStart(text string, entry *model.ClassifiedEntry) {
	extractFunctionName(text, entry)
	if m := jsonArgsPattern.FindString(text); m != "" {
		var args any
		if err := sonic.UnmarshalString(m, &args); err == nil {
			entry.Fields.FunctionArgs = args
		} else {
			entry.Fields.FunctionArgs = m
		}
	}
}

func extractFunctionResult(text string, entry *model.ClassifiedEntry) {
	extractFunctionName(text, entry)
	if entry.Fields.FunctionName == "" {
		if m := executedNamePattern.FindStringSubmatch(text); m != nil {
			entry.Fields.FunctionName = m[1]
		}
	}
	entry.Fields.ResultText = text
	if m := millisPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			entry.Fields.Duration = &model.Duration{Value: v, Unit: model.UnitMilliseconds}
		}
	}
}

func extractFunctionName(text string, entry *model.ClassifiedEntry) {
	if m := functionNamePattern.FindStringSubmatch(text); m != nil {
		if m[1] != "" {
			entry.Fields.FunctionName = m[1]
		} else {
			entry.Fields.FunctionName = m[2]
		}
	}
}

func extractAPIRequest(text string, entry *model.ClassifiedEntry) {
	dates := datePattern.FindAllString(text, 2)
	if len(dates) > 0 {
		entry.Fields.StartDate = dates[0]
	}
	if len(dates) > 1 {
		entry.Fields.EndDate = dates[1]
	}
	if m := nightsPattern.FindStringSubmatch(text); m != nil {
		entry.Fields.Nights, _ = strconv.Atoi(m[1])
	}
}

func extractAPIResponse(text string, entry *model.ClassifiedEntry) {
	if m := fullResponsePattern.FindStringSubmatch(text); m != nil {
		entry.Fields.ResponseText = unescapeJSONString(m[1])
	} else {
		entry.Fields.ResponseText = text
	}
	entry.Fields.ResponseLen = len(entry.Fields.ResponseText)
}

func extractOutbound(text string, entry *model.ClassifiedEntry) {
	if m := chunksPattern.FindStringSubmatch(text); m != nil {
		entry.Fields.ChunkCount, _ = strconv.Atoi(m[1])
	}
}

func extractError(text string, entry *model.ClassifiedEntry) {
	lower := strings.ToLower(text)
	entry.Fields.ErrorType = "error"
	for _, kw := range errorKeywords {
		if strings.Contains(lower, kw) {
			entry.Fields.ErrorType = kw
			break
		}
	}

	var parts []string
	if m := threadPattern.FindStringSubmatch(text); m != nil {
		entry.Fields.ThreadID = m[1]
		parts = append(parts, "thread "+m[1])
	}
	if m := millisPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			entry.Fields.Duration = &model.Duration{Value: v, Unit: model.UnitMilliseconds}
		}
		parts = append(parts, m[1]+"ms")
	}
	if m := functionNamePattern.FindStringSubmatch(text); m != nil {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		entry.Fields.FunctionName = name
		parts = append(parts, "function "+name)
	}
	if entry.Fields.UserID != "" {
		parts = append(parts, "user "+entry.Fields.UserID)
	}
	entry.Fields.ErrorContext = strings.Join(parts, ", ")
}

func extractThreadID(text string, entry *model.ClassifiedEntry) {
	if m := threadPattern.FindStringSubmatch(text); m != nil {
		entry.Fields.ThreadID = m[1]
		return
	}
	if m := runPattern.FindStringSubmatch(text); m != nil && !isRunStateWord(m[1]) {
		entry.Fields.ThreadID = m[1]
	}
}

// "run started"/"run completed" would otherwise look like run identifiers.
func isRunStateWord(s string) bool {
	switch strings.ToLower(s) {
	case "started", "completed", "completado", "completada":
		return true
	}
	return false
}
