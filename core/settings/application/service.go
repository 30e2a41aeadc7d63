package application

import (
	"context"
	"strings"

	"github.com/AzielCF/az-devocional/core/settings/domain"
	"github.com/sirupsen/logrus"
)

type SettingsService struct {
	repo domain.ISettingsRepository
}

func NewSettingsService(repo domain.ISettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// Load reads the requested keys in a single query. Failures degrade to an
// empty bag so the caller keeps processing with defaults.
func (s *SettingsService) Load(ctx context.Context, keys ...string) domain.Bag {
	values, err := s.repo.GetMany(ctx, keys)
	if err != nil {
		logrus.WithError(err).Warn("[SETTINGS] Could not load settings, using defaults")
		return domain.Bag{}
	}
	return domain.Bag(values)
}

func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	return s.repo.Get(ctx, key)
}

func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	return s.repo.Set(ctx, strings.TrimSpace(key), strings.TrimSpace(value))
}

func (s *SettingsService) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

func (s *SettingsService) InitSchema(ctx context.Context) error {
	return s.repo.InitSchema(ctx)
}
