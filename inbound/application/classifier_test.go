package application

import (
	"testing"

	"github.com/AzielCF/az-devocional/inbound/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_BuiltInPatterns(t *testing.T) {
	cases := map[string]domain.Intent{
		"Preciso de oração pela minha família": domain.IntentPrayerRequest,
		"Me manda o versículo de hoje":          domain.IntentDailyVerse,
		"Não consigo entrar no app":             domain.IntentSupportRequest,
		"O que a Bíblia fala sobre perdão?":     domain.IntentBibleQuestion,
		"Estou muito ansioso com o trabalho":    domain.IntentSpiritualGuidance,
		"Bom dia":                               domain.IntentGreeting,
		"Oiii":                                  domain.IntentGreeting,
		"Oi, ore por mim":                       domain.IntentPrayerRequest,
		"Gostei muito do conteúdo":              domain.IntentGeneralConversation,
		"":                                      domain.IntentGeneralConversation,
		"   ":                                   domain.IntentGeneralConversation,
	}

	for text, want := range cases {
		assert.Equal(t, want, Classify(text, nil), text)
	}
}

func TestClassify_TriggersTakePrecedence(t *testing.T) {
	table := ParseTriggerTable(`{"support_request":["bom dia"],"prayer":["familia"]}`)
	require.Len(t, table, 2)

	assert.Equal(t, domain.IntentSupportRequest, Classify("Bom dia!", table))
	assert.Equal(t, domain.IntentPrayerRequest, Classify("Como está minha família", table))
	assert.Equal(t, domain.IntentDailyVerse, Classify("versículo", table))
}

func TestClassify_TriggerOrderFollowsDocument(t *testing.T) {
	table := ParseTriggerTable(`{"greeting":["paz"],"spiritual_guidance":["paz"]}`)

	for i := 0; i < 20; i++ {
		assert.Equal(t, domain.IntentGreeting, Classify("paz de Cristo", table))
	}
}

func TestParseTriggerTable(t *testing.T) {
	table := ParseTriggerTable(`{"oracao":"ore, reze ,","weather":["chuva"],"greeting":[],"bible_question":["  "]}`)
	require.Len(t, table, 2)

	assert.Equal(t, domain.IntentPrayerRequest, table[0].Intent)
	assert.Equal(t, []string{"ore", "reze"}, table[0].Tokens)
	assert.Equal(t, domain.IntentGeneralConversation, table[1].Intent)

	assert.Nil(t, ParseTriggerTable(""))
	assert.Nil(t, ParseTriggerTable("{broken"))
	assert.Nil(t, ParseTriggerTable(`["oi"]`))
}

func TestClassify_Deterministic(t *testing.T) {
	table := ParseTriggerTable(`{"daily_verse":["palavra"]}`)
	first := Classify("Quero uma palavra de conforto", table)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Classify("Quero uma palavra de conforto", table))
	}
}
