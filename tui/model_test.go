package tui

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sabedoriaquantica/quantum/pkg/chat"
	"github.com/sabedoriaquantica/quantum/pkg/conversation"
)

type recordSender struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordSender) SendTurn(_ context.Context, text string, _ *chat.ImagePart) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, text)
	return "resposta", nil
}

func (r *recordSender) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type nopSynth struct{}

func (nopSynth) SynthesizeSpeech(context.Context, string) []byte { return nil }

type nopPlayer struct{}

func (nopPlayer) Play([]byte) {}
func (nopPlayer) Stop()       {}

func (nopPlayer) IsPlaying() bool { return false }

type nopVoice struct{}

func (nopVoice) Start() {}
func (nopVoice) Stop()  {}

func (nopVoice) IsListening() bool { return false }
func (nopVoice) Available() bool   { return false }

func testModel(t *testing.T) (Model, *recordSender) {
	t.Helper()

	sender := &recordSender{}
	ctrl := conversation.New(conversation.Deps{
		Sessions: conversation.SessionStarterFunc(func(context.Context) (conversation.TurnSender, error) {
			return sender, nil
		}),
		Synth:  nopSynth{},
		Player: nopPlayer{},
	})
	ctrl.Start(context.Background())

	m := NewModel(context.Background(), ctrl, nopVoice{}, make(chan string, 1), zap.NewNop())
	return m, sender
}

func TestAppendUtterance(t *testing.T) {
	assert.Equal(t, "olá", appendUtterance("", "olá"))
	assert.Equal(t, "olá tudo bem?", appendUtterance("olá", "tudo bem?"))
}

func TestUtteranceLandsInInputBuffer(t *testing.T) {
	m, _ := testModel(t)

	updated, _ := m.Update(transcriptMsg("o que é um átomo?"))
	m = updated.(Model)
	assert.Equal(t, "o que é um átomo?", m.input.Value())
}

func TestUtterancesAccumulateWithTypedText(t *testing.T) {
	m, _ := testModel(t)
	m.input.SetValue("sobre física:")

	updated, _ := m.Update(transcriptMsg("o que é emaranhamento?"))
	m = updated.(Model)

	updated, _ = m.Update(transcriptMsg("e superposição?"))
	m = updated.(Model)

	assert.Equal(t, "sobre física: o que é emaranhamento? e superposição?", m.input.Value())
}

func TestUtteranceDoesNotSubmitATurn(t *testing.T) {
	m, sender := testModel(t)

	updated, _ := m.Update(transcriptMsg("o que é um qubit?"))
	m = updated.(Model)

	require.Equal(t, 0, sender.callCount())
	// only the greeting is in the transcript; nothing was submitted
	msgs := m.ctrl.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, chat.RoleBot, msgs[0].Role)
	assert.Equal(t, conversation.StateIdle, m.ctrl.State())
}
