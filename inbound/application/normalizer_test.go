package application

import (
	"testing"

	"github.com/AzielCF/az-devocional/inbound/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePayload_FieldShapes(t *testing.T) {
	want := domain.InboundMessage{Phone: "5511999990000", MessageID: "abc123", Text: "Bom dia"}

	payloads := map[string]string{
		"top level phone":       `{"phone":"+55 11 99999-0000","messageId":"abc123","message":{"conversation":"Bom dia"}}`,
		"remoteJid":             `{"remoteJid":"5511999990000@s.whatsapp.net","messageId":"abc123","message":{"text":"Bom dia"}}`,
		"chatId extended text":  `{"chatId":"5511999990000","messageId":"abc123","message":{"extendedTextMessage":{"text":"Bom dia"}}}`,
		"nested under data":     `{"event":"message","data":{"phone":"5511999990000","messageId":"abc123","message":{"conversation":"Bom dia"}}}`,
		"image caption":         `{"phone":"5511999990000","messageId":"abc123","message":{"imageMessage":{"caption":"Bom dia"}}}`,
		"top level text":        `{"phone":"5511999990000","messageId":"abc123","text":"Bom dia"}`,
		"w-api shape":           `{"chat":{"id":"5511999990000"},"messageId":"abc123","msgContent":{"conversation":"Bom dia"}}`,
		"nested key remote jid": `{"data":{"key":{"remoteJid":"5511999990000@s.whatsapp.net","id":"abc123"},"message":{"conversation":"Bom dia"}}}`,
		"numeric phone":         `{"phone":5511999990000,"messageId":"abc123","text":{"message":"Bom dia"}}`,
	}

	for name, body := range payloads {
		t.Run(name, func(t *testing.T) {
			got := NormalizePayload([]byte(body))
			require.True(t, got.OK(), got.Reason)
			assert.Equal(t, want.Phone, got.Message.Phone)
			assert.Equal(t, want.MessageID, got.Message.MessageID)
			assert.Equal(t, want.Text, got.Message.Text)
		})
	}
}

func TestNormalizePayload_FirstMatchWins(t *testing.T) {
	got := NormalizePayload([]byte(`{"phone":"111","chatId":"222","message":{"conversation":"primeiro","text":"segundo"},"text":"terceiro"}`))
	require.True(t, got.OK())
	assert.Equal(t, "111", got.Message.Phone)
	assert.Equal(t, "primeiro", got.Message.Text)
}

func TestNormalizePayload_TopLevelBeatsData(t *testing.T) {
	got := NormalizePayload([]byte(`{"phone":"111","data":{"phone":"222","text":"oi"}}`))
	require.True(t, got.OK())
	assert.Equal(t, "111", got.Message.Phone)
	assert.Equal(t, "oi", got.Message.Text)
}

func TestNormalizePayload_Failures(t *testing.T) {
	cases := map[string]struct {
		body   string
		reason string
	}{
		"empty":            {"", domain.ReasonEmptyBody},
		"whitespace":       {"  \n ", domain.ReasonEmptyBody},
		"broken json":      {`{"phone":`, domain.ReasonInvalidJSON},
		"array":            {`[{"phone":"1"}]`, domain.ReasonNotAnObject},
		"string":           {`"hello"`, domain.ReasonNotAnObject},
		"from me":          {`{"phone":"1","fromMe":true,"text":"oi"}`, domain.ReasonFromMe},
		"from me nested":   {`{"data":{"key":{"fromMe":true}},"phone":"1","text":"oi"}`, domain.ReasonFromMe},
		"group":            {`{"remoteJid":"120363@g.us","text":"oi"}`, domain.ReasonGroupMessage},
		"no phone":         {`{"text":"oi"}`, domain.ReasonMissingPhone},
		"phone no digits":  {`{"phone":"abc","text":"oi"}`, domain.ReasonMissingPhone},
		"no text":          {`{"phone":"5511"}`, domain.ReasonMissingText},
		"blank text":       {`{"phone":"5511","text":"   "}`, domain.ReasonMissingText},
		"text is an array": {`{"phone":"5511","text":["oi"]}`, domain.ReasonMissingText},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := NormalizePayload([]byte(tc.body))
			assert.False(t, got.OK())
			assert.Equal(t, tc.reason, got.Reason)
		})
	}
}

func TestNormalizePayload_SenderName(t *testing.T) {
	got := NormalizePayload([]byte(`{"phone":"5511","text":"oi","sender":{"pushName":"Ana"}}`))
	require.True(t, got.OK())
	assert.Equal(t, "Ana", got.Message.SenderName)
	assert.Empty(t, got.Message.MessageID)
}

func TestNormalizePayload_EventIDDoesNotShadowMessageID(t *testing.T) {
	body := `{"event":"message","id":"evt-771","data":{"messageId":"ABC123","phone":"5511999990000","text":"oi"}}`

	got := NormalizePayload([]byte(body))

	require.True(t, got.OK(), got.Reason)
	assert.Equal(t, "ABC123", got.Message.MessageID)

	got = NormalizePayload([]byte(`{"id":"evt-772","data":{"id":"XYZ","phone":"5511","text":"oi"}}`))
	require.True(t, got.OK(), got.Reason)
	assert.Equal(t, "XYZ", got.Message.MessageID)

	got = NormalizePayload([]byte(`{"id":"solo","phone":"5511","text":"oi"}`))
	require.True(t, got.OK(), got.Reason)
	assert.Equal(t, "solo", got.Message.MessageID)
}

func TestNormalizePayload_JIDSuffixesAreDropped(t *testing.T) {
	cases := map[string]string{
		"device suffix": `{"remoteJid":"5531999990000:12@s.whatsapp.net","text":"oi"}`,
		"lid server":    `{"remoteJid":"5531999990000@lid","text":"oi"}`,
		"plus and dash": `{"phone":"+55 31 99999-0000","text":"oi"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			got := NormalizePayload([]byte(body))
			require.True(t, got.OK(), got.Reason)
			assert.Equal(t, "5531999990000", got.Message.Phone)
		})
	}
}
