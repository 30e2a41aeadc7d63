package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AzielCF/az-devocional/conversations/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userModel struct {
	Phone               string `gorm:"primaryKey"`
	Name                string
	IsActive            bool
	ReceivesDailyVerse  bool
	HasSentFirstMessage bool      `gorm:"index:idx_users_first_message"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

func (userModel) TableName() string {
	return "users"
}

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

func (r *UserGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&userModel{})
}

func (r *UserGormRepository) Upsert(ctx context.Context, phone, name string) error {
	now := time.Now().UTC()

	assignments := map[string]interface{}{
		"is_active":  true,
		"updated_at": now,
	}
	// No pisar el nombre guardado con uno vacío
	if name != "" {
		assignments["name"] = name
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&userModel{
		Phone:     phone,
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}

func (r *UserGormRepository) Find(ctx context.Context, phone string) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).First(&m, "phone = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &domain.User{
		Phone:               m.Phone,
		Name:                m.Name,
		IsActive:            m.IsActive,
		ReceivesDailyVerse:  m.ReceivesDailyVerse,
		HasSentFirstMessage: m.HasSentFirstMessage,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}, nil
}

func (r *UserGormRepository) MarkFirstMessageSent(ctx context.Context, phone string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&userModel{}).
		Where("phone = ? AND has_sent_first_message = ?", phone, false).
		Updates(map[string]interface{}{
			"has_sent_first_message": true,
			"updated_at":             time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
