package conversation

import "fmt"

// Fixed bot replies. These are produced locally, without a round trip to
// the model, so their wording is part of the product surface and must not
// drift.
const (
	greetingText = "Olá! Eu sou Quantum, seu assistente virtual do Sabedoria Quântica. Como posso ajudar você a explorar os fascinantes mundos da física quântica, neurociência e da mente humana hoje?"

	nameRequestText = "Com certeza! Antes de continuarmos, como você gostaria que eu o chamasse?"

	apologyText = "Desculpe, não consegui processar sua solicitação no momento. Por favor, tente novamente mais tarde."
)

func nameAckText(name string) string {
	return fmt.Sprintf("Obrigado, %s! É um prazer conhecer você. Agora, o que você gostaria de saber?", name)
}
