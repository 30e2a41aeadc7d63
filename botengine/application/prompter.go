package application

import (
	"regexp"
	"strings"

	inbound "github.com/AzielCF/az-devocional/inbound/domain"
	"github.com/AzielCF/az-devocional/pkg/textnorm"
)

const assistantIdentity = "Você é a assistente virtual do Devocional Diário, um aplicativo cristão de orações, playlists e devocionais."

// intentPrompt devuelve el texto base de cada intención. Un intent nuevo debe
// sumarse aquí.
func intentPrompt(intent inbound.Intent) string {
	switch intent {
	case inbound.IntentDailyVerse:
		return "Compartilhe um versículo bíblico (com a referência) e uma reflexão curta e prática para o dia da pessoa."
	case inbound.IntentPrayerRequest:
		return "A pessoa pediu oração. Acolha o pedido com empatia, escreva uma oração breve e pessoal e lembre que Deus ouve."
	case inbound.IntentSupportRequest:
		return "A pessoa precisa de ajuda com o aplicativo. Seja objetiva, explique o próximo passo e, se não souber, oriente a falar com o suporte pelo menu do app."
	case inbound.IntentGreeting:
		return "Cumprimente a pessoa com alegria e pergunte como pode ajudar hoje: versículo, oração ou uma conversa."
	case inbound.IntentBibleQuestion:
		return "Responda à pergunta bíblica com fidelidade às Escrituras, citando livro e capítulo, sem entrar em polêmicas denominacionais."
	case inbound.IntentSpiritualGuidance:
		return "Ofereça consolo e direção espiritual com base na Bíblia, com delicadeza. Se houver sinais de risco, incentive buscar ajuda profissional ou o CVV (188)."
	case inbound.IntentGeneralConversation:
		fallthrough
	default:
		return "Converse de forma calorosa e, quando fizer sentido, conecte o assunto com uma palavra de fé."
	}
}

const outputRules = `Regras de resposta:
- Responda sempre em português do Brasil, em tom acolhedor e respeitoso.
- Escreva entre 50 e 200 caracteres, em uma única mensagem de WhatsApp.
- Use no máximo 2 emojis.
- Não diga que é uma inteligência artificial e não invente funcionalidades do aplicativo.`

// SystemPrompt builds the instruction for a one-shot completion. A non-empty
// override replaces the built-in text for the intent; identity and output
// rules are always appended.
func SystemPrompt(intent inbound.Intent, override string) string {
	base := strings.TrimSpace(override)
	if base == "" {
		base = intentPrompt(intent)
	}

	var sb strings.Builder
	sb.WriteString(assistantIdentity)
	sb.WriteString("\n\n")
	sb.WriteString(base)
	sb.WriteString("\n\n")
	sb.WriteString(outputRules)
	return sb.String()
}

var (
	cannedGreeting = regexp.MustCompile(`^(oi+|ola|bom dia|boa tarde|boa noite|e ai|paz do senhor|graca e paz)\b`)
	cannedPrayer   = regexp.MustCompile(`\b(oracao|oracoes|orar|ore|orem|reza|rezar|reze|intercessao)\b`)
)

const (
	cannedGreetingReply = "Olá! Que a paz de Deus esteja com você 🙏 Como posso te ajudar hoje? Posso enviar um versículo ou orar com você."
	cannedPrayerReply   = "Recebi seu pedido de oração 🙏 Estamos orando por você. Deus ouve o seu clamor e cuida de cada detalhe."
	cannedGenericReply  = "Recebi sua mensagem 🙏 Logo te respondo com carinho. Enquanto isso, lembre-se: Deus está com você."
)

// CannedReply picks a fixed reply when no provider could answer.
func CannedReply(text string) string {
	normalized := textnorm.Normalize(text)
	switch {
	case cannedPrayer.MatchString(normalized):
		return cannedPrayerReply
	case cannedGreeting.MatchString(normalized):
		return cannedGreetingReply
	default:
		return cannedGenericReply
	}
}
