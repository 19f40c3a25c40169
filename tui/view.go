package tui

import (
	"strings"

	"github.com/sabedoriaquantica/quantum/pkg/chat"
	"github.com/sabedoriaquantica/quantum/pkg/conversation"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "carregando..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Quantum — Sabedoria Quântica"))
	b.WriteString("\n")

	if errText := m.ctrl.Err(); errText != "" {
		b.WriteString(errorStyle.Render(errText))
		b.WriteString("\n")
	}

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
	}
	b.WriteString("\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  Enter: enviar  /image <arquivo>: anexar  Ctrl+L: voz  Ctrl+S: parar áudio  Ctrl+C: sair"))

	return b.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	switch m.ctrl.State() {
	case conversation.StateBusy:
		parts = append(parts, m.spinner.View()+"pensando...")
	case conversation.StateAwaitingName:
		parts = append(parts, "aguardando seu nome")
	default:
		parts = append(parts, "pronto")
	}

	if m.voice.IsListening() {
		parts = append(parts, listeningStyle.Render("● ouvindo"))
	}
	if m.ctrl.IsSpeaking() {
		parts = append(parts, speakingStyle.Render("♪ falando"))
	}
	if m.pendingImage != nil {
		parts = append(parts, attachmentStyle.Render("imagem: "+m.pendingImage.Preview))
	}

	return statusBarStyle.Render(strings.Join(parts, "  "))
}

// renderTranscript formats the full message list. Bot replies go through
// the markdown renderer; user messages are shown verbatim.
func (m Model) renderTranscript() string {
	var b strings.Builder

	userLabel := "Você"
	if name := m.ctrl.UserName(); name != "" {
		userLabel = name
	}

	for i, msg := range m.ctrl.Messages() {
		if i > 0 {
			b.WriteString("\n")
		}

		switch msg.Role {
		case chat.RoleUser:
			b.WriteString(userRoleStyle.Render(userLabel))
			b.WriteString("\n")
			m.renderUserParts(&b, msg)
		case chat.RoleBot:
			b.WriteString(botRoleStyle.Render("Quantum"))
			b.WriteString("\n")
			b.WriteString(m.renderMarkdown(msg.Text()))
		}
	}

	return b.String()
}

func (m Model) renderUserParts(b *strings.Builder, msg chat.Message) {
	if text := msg.Text(); text != "" {
		b.WriteString(userTextStyle.Render(text))
		b.WriteString("\n")
	}
	if img := msg.Image(); img != nil {
		b.WriteString(attachmentStyle.Render("[imagem anexada: " + img.Preview + "]"))
		b.WriteString("\n")
	}
}

func (m Model) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text + "\n"
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}
