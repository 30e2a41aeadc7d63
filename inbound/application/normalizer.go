package application

import (
	"strings"

	"github.com/AzielCF/az-devocional/inbound/domain"
	"github.com/AzielCF/az-devocional/pkg/textnorm"
	"github.com/tidwall/gjson"
)

// extractor pulls one candidate value out of a provider payload.
type extractor func(root gjson.Result) string

// field reads a scalar at path, trimmed. Objects and arrays yield "".
func field(path string) extractor {
	return func(root gjson.Result) string {
		v := root.Get(path)
		switch v.Type {
		case gjson.String, gjson.Number:
			return strings.TrimSpace(v.String())
		}
		return ""
	}
}

// nested tries each candidate at the top level and then under the provider
// "data" envelope before moving to the next, less specific one.
func nested(paths ...string) []extractor {
	out := make([]extractor, 0, len(paths)*2)
	for _, p := range paths {
		out = append(out, field(p), field("data."+p))
	}
	return out
}

// firstMatch returns the first non-empty value produced by the extractors.
func firstMatch(extractors ...extractor) extractor {
	return func(root gjson.Result) string {
		for _, ex := range extractors {
			if v := ex(root); v != "" {
				return v
			}
		}
		return ""
	}
}

var (
	phoneOf = firstMatch(nested(
		"phone",
		"remoteJid",
		"chatId",
		"key.remoteJid",
		"chat.id",
		"sender.id",
	)...)

	textOf = firstMatch(nested(
		"message.conversation",
		"message.text",
		"message.extendedTextMessage.text",
		"message.imageMessage.caption",
		"message.videoMessage.caption",
		"message.documentMessage.caption",
		"msgContent.conversation",
		"msgContent.extendedTextMessage.text",
		"text.message",
		"text",
		"message",
		"body",
	)...)

	// Un "id" suelto en la raíz suele ser el id del evento, no del mensaje
	messageIDOf = firstMatch(append(nested(
		"messageId",
		"key.id",
		"message.id",
	), field("data.id"), field("id"))...)

	senderNameOf = firstMatch(nested(
		"senderName",
		"pushName",
		"sender.pushName",
		"notifyName",
		"chatName",
	)...)
)

func boolAt(root gjson.Result, paths ...string) bool {
	for _, p := range paths {
		if root.Get(p).Bool() || root.Get("data."+p).Bool() {
			return true
		}
	}
	return false
}

// Normalized carries either a message or the reason it was ignored.
type Normalized struct {
	Message domain.InboundMessage
	Reason  string
}

func (n Normalized) OK() bool {
	return n.Reason == ""
}

// NormalizePayload converts a raw provider callback into an InboundMessage.
// It never fails: malformed input is reported through Normalized.Reason.
func NormalizePayload(body []byte) Normalized {
	if len(strings.TrimSpace(string(body))) == 0 {
		return Normalized{Reason: domain.ReasonEmptyBody}
	}
	if !gjson.ValidBytes(body) {
		return Normalized{Reason: domain.ReasonInvalidJSON}
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return Normalized{Reason: domain.ReasonNotAnObject}
	}

	if boolAt(root, "fromMe", "key.fromMe") {
		return Normalized{Reason: domain.ReasonFromMe}
	}

	rawPhone := phoneOf(root)
	if boolAt(root, "isGroup") || strings.HasSuffix(rawPhone, "@g.us") {
		return Normalized{Reason: domain.ReasonGroupMessage}
	}

	msg := domain.InboundMessage{
		Phone:      phoneDigits(rawPhone),
		MessageID:  messageIDOf(root),
		Text:       textOf(root),
		SenderName: senderNameOf(root),
	}

	if msg.Phone == "" {
		return Normalized{Reason: domain.ReasonMissingPhone}
	}
	if msg.Text == "" {
		return Normalized{Reason: domain.ReasonMissingText}
	}
	return Normalized{Message: msg}
}

// phoneDigits drops the JID server and device suffixes
// ("5531999990000:12@s.whatsapp.net") before keeping digits.
func phoneDigits(raw string) string {
	if i := strings.IndexByte(raw, '@'); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		raw = raw[:i]
	}
	return textnorm.DigitsOnly(raw)
}
