package domain

// Intent es el conjunto cerrado de intenciones que reconoce el clasificador
type Intent string

const (
	IntentDailyVerse          Intent = "daily_verse"
	IntentPrayerRequest       Intent = "prayer_request"
	IntentSupportRequest      Intent = "support_request"
	IntentGeneralConversation Intent = "general_conversation"
	IntentGreeting            Intent = "greeting"
	IntentBibleQuestion       Intent = "bible_question"
	IntentSpiritualGuidance   Intent = "spiritual_guidance"
)

// AllIntents lists every intent in a stable order.
var AllIntents = []Intent{
	IntentDailyVerse,
	IntentPrayerRequest,
	IntentSupportRequest,
	IntentGeneralConversation,
	IntentGreeting,
	IntentBibleQuestion,
	IntentSpiritualGuidance,
}

// legacyIntents maps names used by older trigger tables onto current intents.
var legacyIntents = map[string]Intent{
	"verse":            IntentDailyVerse,
	"verse_of_the_day": IntentDailyVerse,
	"versiculo":        IntentDailyVerse,
	"prayer":           IntentPrayerRequest,
	"oracao":           IntentPrayerRequest,
	"support":          IntentSupportRequest,
	"help":             IntentSupportRequest,
	"suporte":          IntentSupportRequest,
	"welcome":          IntentGreeting,
	"saudacao":         IntentGreeting,
	"question":         IntentBibleQuestion,
	"bible":            IntentBibleQuestion,
	"biblia":           IntentBibleQuestion,
	"guidance":         IntentSpiritualGuidance,
	"advice":           IntentSpiritualGuidance,
	"counsel":          IntentSpiritualGuidance,
	"conselho":         IntentSpiritualGuidance,
	"general":          IntentGeneralConversation,
	"conversation":     IntentGeneralConversation,
}

// ParseIntent resolves a configured intent name. Unknown names map to
// IntentGeneralConversation.
func ParseIntent(name string) Intent {
	candidate := Intent(name)
	if candidate.Valid() {
		return candidate
	}
	if legacy, ok := legacyIntents[name]; ok {
		return legacy
	}
	return IntentGeneralConversation
}

func (i Intent) Valid() bool {
	switch i {
	case IntentDailyVerse, IntentPrayerRequest, IntentSupportRequest, IntentGeneralConversation,
		IntentGreeting, IntentBibleQuestion, IntentSpiritualGuidance:
		return true
	}
	return false
}

func (i Intent) String() string {
	return string(i)
}
