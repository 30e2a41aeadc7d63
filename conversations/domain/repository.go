package domain

import (
	"context"
	"time"
)

// ConversationRepository persiste los pares mensaje/respuesta. Es el sistema
// de registro para deduplicación, historial y continuidad de threads.
type ConversationRepository interface {
	// FindRecent lista filas del teléfono creadas en o después de since, más nuevas primero
	FindRecent(ctx context.Context, phone string, since time.Time) ([]*Conversation, error)
	// InsertClaim retorna ErrDuplicateMessageID si el message id ya existe
	InsertClaim(ctx context.Context, conv *Conversation) error
	Update(ctx context.Context, id string, patch ConversationUpdate) error
	// ListHistory devuelve las últimas limit filas completas (sin claims), más viejas primero
	ListHistory(ctx context.Context, phone string, limit int, excludeID string) ([]*Conversation, error)
	Count(ctx context.Context, phone string) (int64, error)
	// GetRecentThreadID busca el thread más reciente no vacío para el par (phone, assistant)
	GetRecentThreadID(ctx context.Context, phone, assistantID string) (string, error)

	InitSchema(ctx context.Context) error
}

// UserRepository guarda usuarios identificados por teléfono
type UserRepository interface {
	// Upsert crea o refresca el usuario usando phone como clave de conflicto
	Upsert(ctx context.Context, phone, name string) error
	Find(ctx context.Context, phone string) (*User, error)
	// MarkFirstMessageSent cambia has_sent_first_message de false a true y
	// reporta si esta llamada fue la que hizo el cambio
	MarkFirstMessageSent(ctx context.Context, phone string) (bool, error)

	InitSchema(ctx context.Context) error
}
