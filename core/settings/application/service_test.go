package application

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/AzielCF/az-devocional/core/settings/domain"
	"github.com/AzielCF/az-devocional/core/settings/infrastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type failingRepo struct {
	domain.ISettingsRepository
}

func (failingRepo) GetMany(context.Context, []string) (map[string]string, error) {
	return nil, errors.New("db down")
}

func newSQLiteService(t *testing.T) *SettingsService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "settings.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	svc := NewSettingsService(infrastructure.NewGlobalSettingsGormRepository(db))
	require.NoError(t, svc.InitSchema(context.Background()))
	return svc
}

func TestSettingsService_LoadReturnsOnlyExistingKeys(t *testing.T) {
	svc := newSQLiteService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, domain.KeyWelcomeEnabled, " true "))
	require.NoError(t, svc.Set(ctx, domain.KeyReminderEvery, "7"))
	require.NoError(t, svc.Set(ctx, domain.KeyReminderEvery, "3"))

	bag := svc.Load(ctx, domain.KeyWelcomeEnabled, domain.KeyReminderEvery, domain.KeyMenuMessage)

	assert.Len(t, bag, 2)
	assert.True(t, bag.Bool(domain.KeyWelcomeEnabled, false))
	assert.Equal(t, 3, bag.Int(domain.KeyReminderEvery, 5))
	assert.Equal(t, "", bag.String(domain.KeyMenuMessage))
}

func TestSettingsService_LoadDegradesToEmptyBag(t *testing.T) {
	svc := NewSettingsService(failingRepo{})

	bag := svc.Load(context.Background(), domain.KeyWelcomeEnabled)

	assert.NotNil(t, bag)
	assert.Empty(t, bag)
	assert.False(t, bag.Bool(domain.KeyWelcomeEnabled, false))
	assert.True(t, bag.Bool(domain.KeyAIEnabled, true))
}

func TestBag_NilBehavesAsEmpty(t *testing.T) {
	var bag domain.Bag
	assert.Equal(t, 5, bag.Int(domain.KeyReminderEvery, 5))
	assert.Equal(t, "", bag.String("missing"))
}
