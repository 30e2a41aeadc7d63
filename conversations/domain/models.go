package domain

import "time"

// ClaimPlaceholder marca una fila reservada cuya respuesta aún no se generó
const ClaimPlaceholder = "__processing__"

// MessageTypeText is the only inbound message type handled today.
const MessageTypeText = "text"

// User representa a la persona detrás de un número de WhatsApp
type User struct {
	Phone               string
	Name                string
	IsActive            bool
	ReceivesDailyVerse  bool
	HasSentFirstMessage bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Conversation es un par mensaje/respuesta. Primero se inserta como claim
// (ResponseContent = ClaimPlaceholder) y luego se actualiza in-place.
type Conversation struct {
	ID               string
	UserPhone        string
	ConversationType string
	MessageContent   string
	ResponseContent  string
	MessageType      string
	MessageID        string // provider message id, vacío si no vino
	ThreadID         string
	AssistantID      string
	CreatedAt        time.Time
}

// IsClaim reports whether the row still holds the placeholder response.
func (c Conversation) IsClaim() bool {
	return c.ResponseContent == ClaimPlaceholder
}

// ConversationUpdate contiene los campos que se completan tras generar la respuesta
type ConversationUpdate struct {
	ConversationType string
	ResponseContent  string
	ThreadID         string
	AssistantID      string
}
