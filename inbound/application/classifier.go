package application

import (
	"regexp"
	"strings"

	"github.com/AzielCF/az-devocional/inbound/domain"
	"github.com/AzielCF/az-devocional/pkg/textnorm"
	"github.com/tidwall/gjson"
)

// TriggerRule asocia una intención con palabras gatillo configuradas
type TriggerRule struct {
	Intent domain.Intent
	Tokens []string
}

// TriggerTable keeps the order in which the rules were configured.
type TriggerTable []TriggerRule

// ParseTriggerTable decodes `{"intent": ["token", ...], ...}` preserving
// document order. Legacy intent names collapse onto current ones; malformed
// input yields an empty table.
func ParseTriggerTable(raw string) TriggerTable {
	raw = strings.TrimSpace(raw)
	if raw == "" || !gjson.Valid(raw) {
		return nil
	}
	root := gjson.Parse(raw)
	if !root.IsObject() {
		return nil
	}

	var table TriggerTable
	root.ForEach(func(key, value gjson.Result) bool {
		var tokens []string
		switch {
		case value.IsArray():
			for _, tok := range value.Array() {
				if s := strings.TrimSpace(tok.String()); s != "" {
					tokens = append(tokens, s)
				}
			}
		case value.Type == gjson.String:
			// "oi, olá, bom dia"
			for _, s := range strings.Split(value.String(), ",") {
				if s = strings.TrimSpace(s); s != "" {
					tokens = append(tokens, s)
				}
			}
		}
		if len(tokens) > 0 {
			table = append(table, TriggerRule{
				Intent: domain.ParseIntent(textnorm.Normalize(key.String())),
				Tokens: tokens,
			})
		}
		return true
	})
	return table
}

type intentPattern struct {
	intent domain.Intent
	re     *regexp.Regexp
}

// Evaluated in order over normalized text (lower case, no accents).
var intentPatterns = []intentPattern{
	{domain.IntentPrayerRequest, regexp.MustCompile(`\b(oracao|oracoes|orar|ore|orem|orando|ora por|reza|rezar|reze|intercessao|intercede|pray|prayer)\b`)},
	{domain.IntentDailyVerse, regexp.MustCompile(`\b(versiculos?|verso do dia|palavra do dia|palavra de hoje|devocional|leitura do dia|verse)\b`)},
	{domain.IntentSupportRequest, regexp.MustCompile(`\b(suporte|problema|erro|bug|nao consigo|nao funciona|travando|travou|assinatura|pagamento|cobranca|reembolso|cancelar|senha|login|aplicativo|app|support)\b`)},
	{domain.IntentBibleQuestion, regexp.MustCompile(`\b(biblia|biblico|biblica|escrituras?|evangelhos?|apostolos?|profetas?|salmos?|proverbios|genesis|apocalipse|capitulo|parabola|o que deus diz|quem foi|bible)\b`)},
	{domain.IntentSpiritualGuidance, regexp.MustCompile(`\b(conselho|aconselha|orientacao|direcao|ansios[oa]|ansiedade|triste|tristeza|deprimid[oa]|depressao|medo|angustia|angustiad[oa]|sozinh[oa]|solidao|perdid[oa]|luto|desanimad[oa]|preocupad[oa]|proposito)\b`)},
	{domain.IntentGreeting, regexp.MustCompile(`^(oi+|ola|ola+|bom dia|boa tarde|boa noite|e ai|eai|hey|hello|hi|paz do senhor|graca e paz|shalom|saudacoes)\b`)},
}

// Classify maps text onto an Intent. Configured triggers win over the
// built-in patterns; anything unmatched is general conversation.
func Classify(text string, triggers TriggerTable) domain.Intent {
	normalized := textnorm.Normalize(text)
	if normalized == "" {
		return domain.IntentGeneralConversation
	}

	for _, rule := range triggers {
		if textnorm.ContainsAny(normalized, rule.Tokens) {
			return rule.Intent
		}
	}

	for _, p := range intentPatterns {
		if p.re.MatchString(normalized) {
			return p.intent
		}
	}
	return domain.IntentGeneralConversation
}
