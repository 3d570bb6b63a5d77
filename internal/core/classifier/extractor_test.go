package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEmbeddedTextPayload(t *testing.T) {
	raw := `{"insertId":"a1","textPayload":"[INFO] adding_message thread_X9","severity":"INFO"}`

	got, ok := ExtractEmbedded(raw)
	require.True(t, ok)
	assert.Equal(t, "[INFO] adding_message thread_X9", got)
}

func TestExtractEmbeddedMessageKey(t *testing.T) {
	raw := `{"jsonPayload":{"message":"Run completado (12.3s)"},"trace":"t"}`

	got, ok := ExtractEmbedded(raw)
	require.True(t, ok)
	assert.Equal(t, "Run completado (12.3s)", got)
}

func TestExtractEmbeddedUnescapesSequences(t *testing.T) {
	raw := `{"textPayload":"linea 1\nl2\t\"quoted\" back\\slash"}`

	got, ok := ExtractEmbedded(raw)
	require.True(t, ok)
	assert.Equal(t, "linea 1\nl2\t\"quoted\" back\\slash", got)
}

func TestExtractEmbeddedHeuristics(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"info marker inside metadata",
			`{"labels":{"x":"y"},"payload":[INFO] Buffer vacío para 573003913251,"spanId":"s"}`,
			"[INFO] Buffer vacío para 573003913251,\"spanId\":\"s\"",
		},
		{
			"user id fragment",
			`{"data":573003913251: mensaje pendiente,"rest":1}`,
			"573003913251: mensaje pendiente,\"rest\":1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractEmbedded(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractEmbeddedPlainTextPassesThrough(t *testing.T) {
	_, ok := ExtractEmbedded(`[INFO] 👤 573003913251: "hola"`)
	assert.False(t, ok, "plain lines are not envelopes")
}

func TestExtractEmbeddedNothingFound(t *testing.T) {
	_, ok := ExtractEmbedded(`{"latency":"0.042s","status":200}`)
	assert.False(t, ok)
}

func TestUnescapeJSONStringNoEscapes(t *testing.T) {
	assert.Equal(t, "plain", unescapeJSONString("plain"))
}

func TestUnescapeJSONStringUnknownEscapeKept(t *testing.T) {
	// \u sequences are not decoded, only the common single-char escapes.
	assert.Equal(t, `hotel \u00e9`, unescapeJSONString(`hotel \u00e9`))
}
