package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AzielCF/az-devocional/conversations/domain"
	"github.com/AzielCF/az-devocional/core/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- Persistence Model ---

type conversationModel struct {
	ID               string    `gorm:"primaryKey"`
	UserPhone        string    `gorm:"index:idx_conversations_phone_created,priority:1;not null"`
	ConversationType string    `gorm:"not null"`
	MessageContent   string    `gorm:"type:text"`
	ResponseContent  string    `gorm:"type:text"`
	MessageType      string    `gorm:"not null"`
	MessageID        *string   `gorm:"uniqueIndex:idx_conversations_message_id"`
	ThreadID         *string   `gorm:"index:idx_conversations_thread"`
	AssistantID      string    `gorm:"index:idx_conversations_assistant"`
	CreatedAt        time.Time `gorm:"index:idx_conversations_phone_created,priority:2;not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

func (conversationModel) TableName() string {
	return "conversations"
}

// --- Repository Implementation ---

type ConversationGormRepository struct {
	db *gorm.DB
}

func NewConversationGormRepository(db *gorm.DB) *ConversationGormRepository {
	return &ConversationGormRepository{db: db}
}

func (r *ConversationGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&conversationModel{})
}

func (r *ConversationGormRepository) FindRecent(ctx context.Context, phone string, since time.Time) ([]*domain.Conversation, error) {
	var models []conversationModel
	err := r.db.WithContext(ctx).
		Where("user_phone = ? AND created_at >= ?", phone, since.UTC()).
		Order("created_at DESC").
		Limit(50).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromConversationModels(models), nil
}

func (r *ConversationGormRepository) InsertClaim(ctx context.Context, conv *domain.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now()
	}
	if conv.MessageType == "" {
		conv.MessageType = domain.MessageTypeText
	}

	m := toConversationModel(conv)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if conv.MessageID != "" && database.IsUniqueViolation(err) {
			return domain.ErrDuplicateMessageID
		}
		return err
	}
	return nil
}

func (r *ConversationGormRepository) Update(ctx context.Context, id string, patch domain.ConversationUpdate) error {
	updates := map[string]interface{}{
		"response_content": patch.ResponseContent,
		"updated_at":       time.Now().UTC(),
	}
	if patch.ConversationType != "" {
		updates["conversation_type"] = patch.ConversationType
	}
	if patch.ThreadID != "" {
		updates["thread_id"] = patch.ThreadID
	}
	if patch.AssistantID != "" {
		updates["assistant_id"] = patch.AssistantID
	}

	res := r.db.WithContext(ctx).Model(&conversationModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func (r *ConversationGormRepository) ListHistory(ctx context.Context, phone string, limit int, excludeID string) ([]*domain.Conversation, error) {
	if limit <= 0 {
		return nil, nil
	}

	q := r.db.WithContext(ctx).
		Where("user_phone = ? AND response_content <> ?", phone, domain.ClaimPlaceholder)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var models []conversationModel
	if err := q.Order("created_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	// Más viejas primero para armar el historial del chat
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return fromConversationModels(models), nil
}

func (r *ConversationGormRepository) Count(ctx context.Context, phone string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&conversationModel{}).Where("user_phone = ?", phone).Count(&n).Error
	return n, err
}

func (r *ConversationGormRepository) GetRecentThreadID(ctx context.Context, phone, assistantID string) (string, error) {
	q := r.db.WithContext(ctx).
		Where("user_phone = ? AND thread_id IS NOT NULL AND thread_id <> ''", phone)
	if assistantID != "" {
		q = q.Where("assistant_id = ?", assistantID)
	}

	var m conversationModel
	if err := q.Order("created_at DESC").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	if m.ThreadID == nil {
		return "", nil
	}
	return *m.ThreadID, nil
}

// --- Mappers ---

func toConversationModel(c *domain.Conversation) conversationModel {
	return conversationModel{
		ID:               c.ID,
		UserPhone:        c.UserPhone,
		ConversationType: c.ConversationType,
		MessageContent:   c.MessageContent,
		ResponseContent:  c.ResponseContent,
		MessageType:      c.MessageType,
		MessageID:        optional(c.MessageID),
		ThreadID:         optional(c.ThreadID),
		AssistantID:      c.AssistantID,
		CreatedAt:        c.CreatedAt.UTC(),
		UpdatedAt:        c.CreatedAt.UTC(),
	}
}

func fromConversationModels(models []conversationModel) []*domain.Conversation {
	out := make([]*domain.Conversation, 0, len(models))
	for _, m := range models {
		out = append(out, &domain.Conversation{
			ID:               m.ID,
			UserPhone:        m.UserPhone,
			ConversationType: m.ConversationType,
			MessageContent:   m.MessageContent,
			ResponseContent:  m.ResponseContent,
			MessageType:      m.MessageType,
			MessageID:        deref(m.MessageID),
			ThreadID:         deref(m.ThreadID),
			AssistantID:      m.AssistantID,
			CreatedAt:        m.CreatedAt,
		})
	}
	return out
}

// optional mapea "" a NULL para que el índice único admita muchas filas sin id
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
