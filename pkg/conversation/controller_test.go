package conversation_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabedoriaquantica/quantum/pkg/chat"
	"github.com/sabedoriaquantica/quantum/pkg/conversation"
)

type fakeSender struct {
	mu    sync.Mutex
	calls []string
	reply string
	err   error
	block chan struct{}
}

func (f *fakeSender) SendTurn(_ context.Context, text string, _ *chat.ImagePart) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeSender) callTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakePlayer struct {
	mu     sync.Mutex
	stops  int
	played [][]byte
}

func (f *fakePlayer) Play(pcm []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, pcm)
}

func (f *fakePlayer) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakePlayer) IsPlaying() bool { return false }

func (f *fakePlayer) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func (f *fakePlayer) playCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.played)
}

type fakeSynth struct {
	pcm []byte
}

func (f *fakeSynth) SynthesizeSpeech(context.Context, string) []byte { return f.pcm }

type fakeStore struct {
	mu        sync.Mutex
	messages  []chat.Message
	name      string
	appendErr error
}

func (f *fakeStore) AppendMessage(_ context.Context, m chat.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeStore) SetUserName(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.name = name
	return nil
}

func (f *fakeStore) userName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name
}

func (f *fakeStore) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

// userTexts returns the text of every user-role message in the transcript.
func userTexts(msgs []chat.Message) []string {
	var out []string
	for _, m := range msgs {
		if m.Role == chat.RoleUser {
			out = append(out, m.Text())
		}
	}
	return out
}

func lastBotText(msgs []chat.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == chat.RoleBot {
			return msgs[i].Text()
		}
	}
	return ""
}

var _ = Describe("Controller", func() {
	var (
		ctx    context.Context
		sender *fakeSender
		player *fakePlayer
		synth  *fakeSynth
		ctrl   *conversation.Controller
	)

	newController := func(store conversation.Store) *conversation.Controller {
		return conversation.New(conversation.Deps{
			Sessions: conversation.SessionStarterFunc(func(context.Context) (conversation.TurnSender, error) {
				return sender, nil
			}),
			Synth:  synth,
			Player: player,
			Store:  store,
		})
	}

	// collectName walks the controller through the one-shot name
	// interjection so later submissions reach the remote session.
	collectName := func(name string) {
		ctrl.Submit(ctx, "olá", nil)
		Expect(ctrl.State()).To(Equal(conversation.StateAwaitingName))
		ctrl.Submit(ctx, name, nil)
		Expect(ctrl.State()).To(Equal(conversation.StateIdle))
	}

	BeforeEach(func() {
		ctx = context.Background()
		sender = &fakeSender{reply: "resposta"}
		player = &fakePlayer{}
		synth = &fakeSynth{}
		ctrl = newController(nil)
		ctrl.Start(ctx)
	})

	Describe("Start", func() {
		It("seeds the transcript with the greeting", func() {
			msgs := ctrl.Messages()
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].Role).To(Equal(chat.RoleBot))
			Expect(msgs[0].Text()).To(ContainSubstring("Eu sou Quantum"))
		})

		It("leaves the controller idle and ready", func() {
			Expect(ctrl.State()).To(Equal(conversation.StateIdle))
			Expect(ctrl.Err()).To(BeEmpty())
			Expect(ctrl.Degraded()).To(BeFalse())
		})

		It("is idempotent", func() {
			ctrl.Start(ctx)
			Expect(ctrl.Messages()).To(HaveLen(1))
		})

		Context("when session creation fails", func() {
			BeforeEach(func() {
				ctrl = conversation.New(conversation.Deps{
					Sessions: conversation.SessionStarterFunc(func(context.Context) (conversation.TurnSender, error) {
						return nil, errors.New("no credentials")
					}),
					Synth:  synth,
					Player: player,
				})
				ctrl.Start(ctx)
			})

			It("enters a permanent degraded state", func() {
				Expect(ctrl.Degraded()).To(BeTrue())
				Expect(ctrl.Err()).To(ContainSubstring("Failed to initialize"))
				Expect(ctrl.Messages()).To(BeEmpty())
			})

			It("rejects all submissions", func() {
				ctrl.Submit(ctx, "alguém aí?", nil)
				Expect(ctrl.Messages()).To(BeEmpty())
				Expect(sender.callTexts()).To(BeEmpty())
			})

			It("keeps the error text after rejected submissions", func() {
				ctrl.Submit(ctx, "alguém aí?", nil)
				Expect(ctrl.Err()).To(ContainSubstring("Failed to initialize"))
			})
		})
	})

	Describe("name collection", func() {
		It("asks for a name instead of answering the first submission", func() {
			ctrl.Submit(ctx, "o que é emaranhamento?", nil)

			Expect(ctrl.State()).To(Equal(conversation.StateAwaitingName))
			Expect(lastBotText(ctrl.Messages())).To(ContainSubstring("como você gostaria que eu o chamasse"))
			Expect(sender.callTexts()).To(BeEmpty())
		})

		It("treats the next submission as the name, verbatim", func() {
			collectName("Dona Ana")

			Expect(ctrl.UserName()).To(Equal("Dona Ana"))
			Expect(lastBotText(ctrl.Messages())).To(ContainSubstring("Obrigado, Dona Ana!"))
			Expect(sender.callTexts()).To(BeEmpty())
		})

		It("does not replay the original question after the name arrives", func() {
			collectName("Ana")
			Expect(sender.callTexts()).To(BeEmpty())
		})

		It("asks only once per run", func() {
			collectName("Ana")
			ctrl.Submit(ctx, "pergunta de verdade", nil)

			Expect(sender.callTexts()).To(Equal([]string{"pergunta de verdade"}))
			Expect(ctrl.UserName()).To(Equal("Ana"))
		})
	})

	Describe("Submit", func() {
		BeforeEach(func() {
			collectName("Ana")
		})

		It("appends the user message before the reply arrives", func() {
			ctrl.Submit(ctx, "pergunta", nil)

			msgs := ctrl.Messages()
			Expect(userTexts(msgs)).To(ContainElement("pergunta"))
			Expect(lastBotText(msgs)).To(Equal("resposta"))
		})

		It("rejects empty submissions without touching anything", func() {
			before := len(ctrl.Messages())
			ctrl.Submit(ctx, "   ", nil)

			Expect(ctrl.Messages()).To(HaveLen(before))
			Expect(sender.callTexts()).To(BeEmpty())
		})

		It("accepts an image-only submission", func() {
			img := &chat.ImagePart{MIMEType: "image/png", Data: []byte{1, 2, 3}, Preview: "foto.png"}
			ctrl.Submit(ctx, "", img)

			Expect(sender.callTexts()).To(Equal([]string{""}))
		})

		It("stops any spoken reply when a new turn starts", func() {
			before := player.stopCount()
			ctrl.Submit(ctx, "pergunta", nil)

			Expect(player.stopCount()).To(Equal(before + 1))
		})

		It("ignores a submission while a turn is in flight", func() {
			sender.block = make(chan struct{})

			done := make(chan struct{})
			go func() {
				defer close(done)
				ctrl.Submit(ctx, "primeira", nil)
			}()
			Eventually(ctrl.State).Should(Equal(conversation.StateBusy))

			ctrl.Submit(ctx, "segunda", nil)
			close(sender.block)
			Eventually(done).Should(BeClosed())

			Expect(sender.callTexts()).To(Equal([]string{"primeira"}))
			Expect(userTexts(ctrl.Messages())).NotTo(ContainElement("segunda"))
			Expect(ctrl.State()).To(Equal(conversation.StateIdle))
		})

		Context("when the remote turn fails", func() {
			BeforeEach(func() {
				sender.err = errors.New("boom")
				ctrl.Submit(ctx, "pergunta", nil)
			})

			It("masks the gap with the fixed apology", func() {
				Expect(lastBotText(ctrl.Messages())).To(ContainSubstring("Desculpe, não consegui processar"))
			})

			It("surfaces the error text and returns to idle", func() {
				Expect(ctrl.Err()).To(ContainSubstring("Error communicating with the AI"))
				Expect(ctrl.State()).To(Equal(conversation.StateIdle))
			})

			It("clears the error on the next accepted submission", func() {
				sender.err = nil
				ctrl.Submit(ctx, "de novo", nil)

				Expect(ctrl.Err()).To(BeEmpty())
				Expect(lastBotText(ctrl.Messages())).To(Equal("resposta"))
			})
		})
	})

	Describe("spoken replies", func() {
		It("plays the synthesized reply", func() {
			synth.pcm = []byte{1, 2, 3, 4}
			collectName("Ana")

			Expect(player.playCount()).To(BeNumerically(">", 0))
		})

		It("skips playback when synthesis fails", func() {
			synth.pcm = nil
			collectName("Ana")
			ctrl.Submit(ctx, "pergunta", nil)

			Expect(player.playCount()).To(BeZero())
		})
	})

	Describe("persistence", func() {
		var store *fakeStore

		BeforeEach(func() {
			store = &fakeStore{}
			ctrl = newController(store)
			ctrl.Start(ctx)
		})

		It("persists the greeting and every turn", func() {
			collectName("Ana")
			ctrl.Submit(ctx, "pergunta", nil)

			// greeting plus three user/bot exchanges
			Expect(store.messageCount()).To(Equal(7))
		})

		It("records the collected name", func() {
			collectName("Ana")
			Expect(store.userName()).To(Equal("Ana"))
		})

		It("keeps the conversation alive when persistence fails", func() {
			store.appendErr = errors.New("disk full")
			collectName("Ana")
			ctrl.Submit(ctx, "pergunta", nil)

			Expect(lastBotText(ctrl.Messages())).To(Equal("resposta"))
			Expect(ctrl.State()).To(Equal(conversation.StateIdle))
		})
	})
})
