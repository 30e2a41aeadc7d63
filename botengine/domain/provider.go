package domain

import (
	"context"
	"errors"
)

// ErrThreadNotFound se retorna cuando el thread guardado ya no existe
var ErrThreadNotFound = errors.New("assistant thread not found")

// ChatCompleter es la interfaz delgada para completions de un solo disparo
type ChatCompleter interface {
	ChatComplete(ctx context.Context, req ChatRequest) (string, error)
}

// AssistantAPI expone los threads y runs asíncronos del proveedor
type AssistantAPI interface {
	CreateThread(ctx context.Context) (string, error)
	// GetThread retorna ErrThreadNotFound si el thread no existe
	GetThread(ctx context.Context, threadID string) error
	PostMessage(ctx context.Context, threadID, text string) error
	StartRun(ctx context.Context, threadID string, params RunParams) (string, error)
	GetRun(ctx context.Context, threadID, runID string) (RunStatus, error)
	// ListMessages devuelve los mensajes más recientes primero
	ListMessages(ctx context.Context, threadID string, limit int) ([]ThreadMessage, error)
}
