package speech

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildListenURL(t *testing.T) {
	cfg := Config{APIKey: "k"}.withDefaults()

	raw, err := buildListenURL(cfg)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "wss", u.Scheme)
	assert.Equal(t, "api.deepgram.com", u.Host)
	assert.Equal(t, "/v1/listen", u.Path)

	q := u.Query()
	assert.Equal(t, "nova-2", q.Get("model"))
	assert.Equal(t, "pt-BR", q.Get("language"))
	assert.Equal(t, "false", q.Get("interim_results"))
	assert.Equal(t, "linear16", q.Get("encoding"))
	assert.Equal(t, "16000", q.Get("sample_rate"))
	assert.Equal(t, "1", q.Get("channels"))
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{APIKey: "k"}.withDefaults()
	assert.Equal(t, "pt-BR", cfg.Language)
	assert.Equal(t, "nova-2", cfg.Model)
	assert.Equal(t, 16000, cfg.SampleRate)

	cfg = Config{APIKey: "k", Language: "en-US", SampleRate: 48000}.withDefaults()
	assert.Equal(t, "en-US", cfg.Language)
	assert.Equal(t, 48000, cfg.SampleRate)
}

func TestParseTranscriptFinalResult(t *testing.T) {
	msg := []byte(`{
		"type": "Results",
		"is_final": true,
		"channel": {"alternatives": [{"transcript": " o que é física quântica? "}]}
	}`)

	text, ok := parseTranscript(msg)
	require.True(t, ok)
	assert.Equal(t, "o que é física quântica?", text)
}

func TestParseTranscriptIgnoresNonFinal(t *testing.T) {
	msg := []byte(`{
		"type": "Results",
		"is_final": false,
		"channel": {"alternatives": [{"transcript": "parcial"}]}
	}`)

	_, ok := parseTranscript(msg)
	assert.False(t, ok)
}

func TestParseTranscriptIgnoresOtherMessageTypes(t *testing.T) {
	for _, msg := range []string{
		`{"type": "Metadata"}`,
		`{"type": "UtteranceEnd"}`,
		`{"type": "SpeechStarted"}`,
	} {
		_, ok := parseTranscript([]byte(msg))
		assert.False(t, ok, msg)
	}
}

func TestParseTranscriptIgnoresEmptyAndMalformed(t *testing.T) {
	_, ok := parseTranscript([]byte(`{"type":"Results","is_final":true,"channel":{"alternatives":[{"transcript":"   "}]}}`))
	assert.False(t, ok)

	_, ok = parseTranscript([]byte(`{"type":"Results","is_final":true,"channel":{"alternatives":[]}}`))
	assert.False(t, ok)

	_, ok = parseTranscript([]byte(`not json`))
	assert.False(t, ok)
}

func TestCaptureUnavailableWithoutKey(t *testing.T) {
	c := NewCapture(Config{}, func(string) {}, zap.NewNop())

	assert.False(t, c.Available())
	assert.False(t, c.IsListening())

	// Start must stay a no-op when the capability is missing
	c.Start()
	assert.False(t, c.IsListening())
}
