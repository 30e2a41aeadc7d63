package application

import (
	"regexp"

	"github.com/AzielCF/az-devocional/botengine/domain/assistant"
	"github.com/AzielCF/az-devocional/pkg/textnorm"
	"github.com/sirupsen/logrus"
)

// Patrones sobre texto normalizado (minúsculas, sin acentos)
var (
	supportContext  = regexp.MustCompile(`\b(suporte|ajuda com|assinatura|assinar|plano|planos|premium|preco|valor|pagamento|pagar|cobranca|boleto|pix|cartao|cancelar|reembolso|comprar|compra|desconto|cupom|app|aplicativo|login|senha|cadastro|conta|notificacao|notificacoes|audio|playlist)\b`)
	biblicalContext = regexp.MustCompile(`\b(deus|jesus|cristo|senhor|espirito santo|biblia|biblico|versiculos?|salmos?|evangelho|oracao|orar|ore|fe|igreja|pecado|perdao|graca|salvacao|ceu|louvor|adoracao|pastor|devocional)\b`)

	interrogativeOpener = regexp.MustCompile(`^(como|onde|quando|qual|quais|por que|porque|o que|cade|da pra|tem como|consigo|posso)\b`)
	howToVocabulary     = regexp.MustCompile(`\b(usar|uso|fazer|funciona|acessar|acesso|baixar|instalar|configurar|entrar|ativar|desativar|mudar|alterar|trocar|ouvir|receber|parar)\b`)
	negation            = regexp.MustCompile(`\b(nao|nunca|nem|sem)\b`)
	problemVocabulary   = regexp.MustCompile(`\b(funciona|funcionando|consigo|abre|abrindo|carrega|carregando|aparece|chega|chegou|toca|tocando|erro|problema|travou|travando|bug|recebi|recebendo)\b`)
)

// Router elige a lo sumo un assistant habilitado para un mensaje
type Router struct{}

func NewRouter() *Router {
	return &Router{}
}

// Select applies keyword, contextual and structural rules in that order and
// falls back to the configured default. preferSupport is set when the
// upstream intent is a support request. The result is never disabled.
func (r *Router) Select(text string, roster assistant.Roster, preferSupport bool) *assistant.Assistant {
	enabled := roster.Enabled()
	if len(enabled) == 0 {
		return nil
	}
	normalized := textnorm.Normalize(text)

	if hit := keywordMatch(normalized, enabled); hit != nil {
		if preferSupport && !hit.Type.IsSupportFamily() {
			if alt := pickSupportFamily(enabled); alt != nil {
				logrus.WithFields(logrus.Fields{
					"keyword_hit": hit.ID,
					"selected":    alt.ID,
				}).Debug("[ROUTER] Support intent overrides keyword match")
				return alt
			}
		}
		return hit
	}

	if preferSupport || supportContext.MatchString(normalized) {
		if a := pickSupportFamily(enabled); a != nil {
			return a
		}
	}
	if biblicalContext.MatchString(normalized) {
		if a := pickByType(enabled, assistant.TypeBiblical); a != nil {
			return a
		}
	}

	if looksLikeProductQuestion(normalized) {
		if a := pickSupportFamily(enabled); a != nil {
			return a
		}
	}

	return defaultAssistant(roster.DefaultAssistantID, enabled)
}

func keywordMatch(normalized string, enabled []assistant.Assistant) *assistant.Assistant {
	for i := range enabled {
		if textnorm.ContainsAny(normalized, enabled[i].Keywords) {
			return &enabled[i]
		}
	}
	return nil
}

func looksLikeProductQuestion(normalized string) bool {
	if interrogativeOpener.MatchString(normalized) && howToVocabulary.MatchString(normalized) {
		return true
	}
	return negation.MatchString(normalized) &&
		problemVocabulary.MatchString(normalized) &&
		!biblicalContext.MatchString(normalized)
}

func pickSupportFamily(enabled []assistant.Assistant) *assistant.Assistant {
	if a := pickByType(enabled, assistant.TypeSupport); a != nil {
		return a
	}
	return pickByType(enabled, assistant.TypeSales)
}

func pickByType(enabled []assistant.Assistant, t assistant.Type) *assistant.Assistant {
	for i := range enabled {
		if enabled[i].Type == t {
			return &enabled[i]
		}
	}
	return nil
}

func defaultAssistant(defaultID string, enabled []assistant.Assistant) *assistant.Assistant {
	if defaultID != "" {
		for i := range enabled {
			if enabled[i].ID == defaultID {
				return &enabled[i]
			}
		}
	}
	return &enabled[0]
}
