package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/AzielCF/az-devocional/conversations/domain"
	"github.com/AzielCF/az-devocional/core/config"
	"github.com/AzielCF/az-devocional/core/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		Name:   filepath.Join(t.TempDir(), "conversations.db"),
	}, false)
	require.NoError(t, err)

	require.NoError(t, NewConversationGormRepository(db).InitSchema(context.Background()))
	require.NoError(t, NewUserGormRepository(db).InitSchema(context.Background()))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func claim(phone, text, messageID string, at time.Time) *domain.Conversation {
	return &domain.Conversation{
		UserPhone:        phone,
		ConversationType: "general_conversation",
		MessageContent:   text,
		ResponseContent:  domain.ClaimPlaceholder,
		MessageID:        messageID,
		CreatedAt:        at,
	}
}

func TestConversationRepo_InsertClaimRejectsDuplicateMessageID(t *testing.T) {
	repo := NewConversationGormRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.InsertClaim(ctx, claim("5511", "oi", "abc123", now)))
	err := repo.InsertClaim(ctx, claim("5511", "oi de novo", "abc123", now))
	assert.ErrorIs(t, err, domain.ErrDuplicateMessageID)

	n, err := repo.Count(ctx, "5511")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestConversationRepo_ConcurrentClaimsYieldSingleRow(t *testing.T) {
	repo := NewConversationGormRepository(newTestDB(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.InsertClaim(ctx, claim("5511", "amém", "same-id", time.Now()))
		}(i)
	}
	wg.Wait()

	ok, dup := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrDuplicateMessageID):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, dup)
}

func TestConversationRepo_RowsWithoutMessageIDDoNotConflict(t *testing.T) {
	repo := NewConversationGormRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.InsertClaim(ctx, claim("5511", "a", "", time.Now())))
	require.NoError(t, repo.InsertClaim(ctx, claim("5511", "b", "", time.Now())))

	n, err := repo.Count(ctx, "5511")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestConversationRepo_FindRecentHonoursWindow(t *testing.T) {
	repo := NewConversationGormRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.InsertClaim(ctx, claim("5511", "old", "", now.Add(-2*time.Minute))))
	require.NoError(t, repo.InsertClaim(ctx, claim("5511", "new", "", now.Add(-10*time.Second))))
	require.NoError(t, repo.InsertClaim(ctx, claim("5522", "other", "", now)))

	rows, err := repo.FindRecent(ctx, "5511", now.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "new", rows[0].MessageContent)
}

func TestConversationRepo_UpdateAndHistory(t *testing.T) {
	repo := NewConversationGormRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	var ids []string
	for i, text := range []string{"um", "dois", "tres", "quatro"} {
		c := claim("5511", text, "", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.InsertClaim(ctx, c))
		ids = append(ids, c.ID)
	}
	for _, id := range ids[:3] {
		require.NoError(t, repo.Update(ctx, id, domain.ConversationUpdate{ResponseContent: "resposta " + id}))
	}

	history, err := repo.ListHistory(ctx, "5511", 3, ids[2])
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "um", history[0].MessageContent)
	assert.Equal(t, "dois", history[1].MessageContent)

	err = repo.Update(ctx, "missing", domain.ConversationUpdate{ResponseContent: "x"})
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestConversationRepo_GetRecentThreadIDScopedByAssistant(t *testing.T) {
	repo := NewConversationGormRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	first := claim("5511", "a", "", base)
	require.NoError(t, repo.InsertClaim(ctx, first))
	require.NoError(t, repo.Update(ctx, first.ID, domain.ConversationUpdate{ResponseContent: "r", ThreadID: "thread_bible", AssistantID: "pastor"}))

	second := claim("5511", "b", "", base.Add(time.Minute))
	require.NoError(t, repo.InsertClaim(ctx, second))
	require.NoError(t, repo.Update(ctx, second.ID, domain.ConversationUpdate{ResponseContent: "r", ThreadID: "thread_support", AssistantID: "suporte"}))

	third := claim("5511", "c", "", base.Add(2*time.Minute))
	require.NoError(t, repo.InsertClaim(ctx, third))

	got, err := repo.GetRecentThreadID(ctx, "5511", "pastor")
	require.NoError(t, err)
	assert.Equal(t, "thread_bible", got)

	got, err = repo.GetRecentThreadID(ctx, "5511", "")
	require.NoError(t, err)
	assert.Equal(t, "thread_support", got)

	got, err = repo.GetRecentThreadID(ctx, "5599", "pastor")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUserRepo_UpsertAndFirstMessageFlag(t *testing.T) {
	repo := NewUserGormRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Find(ctx, "5511")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, repo.Upsert(ctx, "5511", "Maria"))
	require.NoError(t, repo.Upsert(ctx, "5511", ""))

	user, err := repo.Find(ctx, "5511")
	require.NoError(t, err)
	assert.Equal(t, "Maria", user.Name)
	assert.True(t, user.IsActive)
	assert.False(t, user.HasSentFirstMessage)

	var wg sync.WaitGroup
	flips := make([]bool, 5)
	for i := range flips {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			flips[i], _ = repo.MarkFirstMessageSent(ctx, "5511")
		}(i)
	}
	wg.Wait()

	count := 0
	for _, f := range flips {
		if f {
			count++
		}
	}
	assert.Equal(t, 1, count)

	user, err = repo.Find(ctx, "5511")
	require.NoError(t, err)
	assert.True(t, user.HasSentFirstMessage)
}
