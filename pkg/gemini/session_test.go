package gemini

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabedoriaquantica/quantum/pkg/chat"
)

func TestBuildTurnPartsTextOnly(t *testing.T) {
	parts := buildTurnParts("o que é um qubit?", nil)

	require.Len(t, parts, 1)
	assert.Equal(t, "o que é um qubit?", parts[0].Text)
	assert.Nil(t, parts[0].InlineData)
}

func TestBuildTurnPartsImagePrecedesText(t *testing.T) {
	img := &chat.ImagePart{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}
	parts := buildTurnParts("o que há nesta imagem?", img)

	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MIMEType)
	assert.Equal(t, []byte{0xff, 0xd8}, parts[0].InlineData.Data)
	assert.Equal(t, "o que há nesta imagem?", parts[1].Text)
}

func TestBuildTurnPartsImageOnly(t *testing.T) {
	img := &chat.ImagePart{MIMEType: "image/png", Data: []byte{1}}

	parts := buildTurnParts("", img)
	require.Len(t, parts, 1)
	assert.NotNil(t, parts[0].InlineData)

	parts = buildTurnParts("   ", img)
	require.Len(t, parts, 1)
}

func TestBuildTurnPartsEmpty(t *testing.T) {
	assert.Empty(t, buildTurnParts("", nil))
	assert.Empty(t, buildTurnParts("  \n ", nil))
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{APIKey: "k"}.withDefaults()

	assert.Equal(t, DefaultChatModel, cfg.ChatModel)
	assert.Equal(t, DefaultTTSModel, cfg.TTSModel)
	assert.Equal(t, DefaultVoice, cfg.Voice)
}

func TestConfigOverrides(t *testing.T) {
	cfg := Config{APIKey: "k", ChatModel: "outro", Voice: "Kore"}.withDefaults()

	assert.Equal(t, "outro", cfg.ChatModel)
	assert.Equal(t, "Kore", cfg.Voice)
	assert.Equal(t, DefaultTTSModel, cfg.TTSModel)
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("rede fora")

	var initErr error = &InitializationError{Err: cause}
	assert.ErrorIs(t, initErr, cause)
	assert.Contains(t, initErr.Error(), "rede fora")

	var commErr error = &CommunicationError{Err: cause}
	assert.ErrorIs(t, commErr, cause)
	assert.Contains(t, commErr.Error(), "rede fora")
}
