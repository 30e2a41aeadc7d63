package domain

import (
	"context"
	"strconv"
	"strings"
)

// Setting represents a dynamic configuration value stored in the database.
type Setting struct {
	Key   string
	Value string
}

// ISettingsRepository defines the contract for persisting dynamic settings.
type ISettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	// GetMany devuelve solo las claves existentes
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error

	// InitSchema creates the necessary tables
	InitSchema(ctx context.Context) error
}

// Keys read by the inbound WhatsApp pipeline.
const (
	KeyWelcomeEnabled  = "whatsapp_welcome_enabled"
	KeyWelcomeMessage  = "whatsapp_welcome_message"
	KeyMenuEnabled     = "whatsapp_menu_enabled"
	KeyMenuMessage     = "whatsapp_menu_message"
	KeyReminderEnabled = "whatsapp_reminder_enabled"
	KeyReminderMessage = "whatsapp_reminder_message"
	KeyReminderEvery   = "whatsapp_reminder_every"
	KeyAIEnabled       = "ai_enabled"
	KeyAIAssistants    = "ai_assistants"
	KeyAITriggerWords  = "ai_trigger_words"
	KeyAIPromptPrefix  = "ai_prompt_"
)

// PromptKey returns the override key for an intent-specific system prompt.
func PromptKey(intent string) string {
	return KeyAIPromptPrefix + intent
}

// Bag is a per-request snapshot of dynamic settings. A nil Bag behaves as empty.
type Bag map[string]string

func (b Bag) String(key string) string {
	return strings.TrimSpace(b[key])
}

// Bool parses "1", "true", "yes" and "on". Missing keys return fallback.
func (b Bag) Bool(key string, fallback bool) bool {
	v := strings.ToLower(b.String(key))
	if v == "" {
		return fallback
	}
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func (b Bag) Int(key string, fallback int) int {
	if n, err := strconv.Atoi(b.String(key)); err == nil {
		return n
	}
	return fallback
}
