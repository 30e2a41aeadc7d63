package domain

import "errors"

var (
	// ErrDuplicateMessageID se retorna cuando el provider message id ya fue reclamado
	ErrDuplicateMessageID = errors.New("duplicate provider message id")
	// ErrUserNotFound se retorna cuando no existe usuario para el teléfono
	ErrUserNotFound = errors.New("user not found")
	// ErrConversationNotFound se retorna cuando la fila a actualizar no existe
	ErrConversationNotFound = errors.New("conversation not found")
)
