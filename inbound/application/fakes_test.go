package application

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	botApp "github.com/AzielCF/az-devocional/botengine/application"
	"github.com/AzielCF/az-devocional/botengine/domain/assistant"
	convDomain "github.com/AzielCF/az-devocional/conversations/domain"
	"github.com/AzielCF/az-devocional/conversations/repository"
	"github.com/AzielCF/az-devocional/core/config"
	"github.com/AzielCF/az-devocional/core/database"
	settingsDomain "github.com/AzielCF/az-devocional/core/settings/domain"
	"github.com/AzielCF/az-devocional/integrations/whatsapp"
	"github.com/stretchr/testify/require"
)

type staticSettings settingsDomain.Bag

func (s staticSettings) Load(context.Context, ...string) settingsDomain.Bag {
	out := settingsDomain.Bag{}
	for k, v := range s {
		out[k] = v
	}
	return out
}

type sentMessage struct {
	Phone string
	Text  string
}

// recordingSender guarda cada envío; fail decide qué intentos fallan
type recordingSender struct {
	mu    sync.Mutex
	calls int
	sent  []sentMessage
	fail  func(attempt int, text string) bool
}

func (s *recordingSender) SendText(_ context.Context, phone, text string) (whatsapp.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail != nil && s.fail(s.calls, text) {
		return whatsapp.SendResult{Error: "instance disconnected"}, nil
	}
	s.sent = append(s.sent, sentMessage{Phone: phone, Text: text})
	return whatsapp.SendResult{Success: true}, nil
}

func (s *recordingSender) Sent() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

type fakeCompletion struct {
	mu     sync.Mutex
	inputs []botApp.FallbackInput
	text   string
}

func (f *fakeCompletion) Reply(_ context.Context, in botApp.FallbackInput) (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	text := f.text
	if text == "" {
		text = "Que a paz de Deus esteja com você!"
	}
	return text, botApp.SourceCompletion
}

func (f *fakeCompletion) Inputs() []botApp.FallbackInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]botApp.FallbackInput(nil), f.inputs...)
}

type fakeAssistants struct {
	reply *botApp.AssistantReply
	asked []string
}

func (f *fakeAssistants) Reply(_ context.Context, _ string, a assistant.Assistant, _ string) *botApp.AssistantReply {
	f.asked = append(f.asked, a.ID)
	return f.reply
}

// flakyConversations falla los primeros InsertClaim con un error genérico
type flakyConversations struct {
	convDomain.ConversationRepository
	failures int
}

func (f *flakyConversations) InsertClaim(ctx context.Context, conv *convDomain.Conversation) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("database is locked")
	}
	return f.ConversationRepository.InsertClaim(ctx, conv)
}

type memoryClaimer struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (m *memoryClaimer) Claim(_ context.Context, fingerprint string, _ time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	if m.seen[fingerprint] {
		return false, nil
	}
	m.seen[fingerprint] = true
	return true, nil
}

type fixture struct {
	conversations *repository.ConversationGormRepository
	users         *repository.UserGormRepository
	dedup         *Deduplicator
	sender        *recordingSender
	completion    *fakeCompletion
	assistants    *fakeAssistants
	sleeps        []time.Duration
}

func newStores(t *testing.T) (*repository.ConversationGormRepository, *repository.UserGormRepository) {
	t.Helper()
	db, err := database.NewDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		Name:   filepath.Join(t.TempDir(), "pipeline.db"),
	}, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	conversations := repository.NewConversationGormRepository(db)
	users := repository.NewUserGormRepository(db)
	require.NoError(t, conversations.InitSchema(context.Background()))
	require.NoError(t, users.InitSchema(context.Background()))
	return conversations, users
}

func newTestPipeline(t *testing.T, bag settingsDomain.Bag) (*Pipeline, *fixture) {
	t.Helper()
	conversations, users := newStores(t)

	fx := &fixture{
		conversations: conversations,
		users:         users,
		dedup:         NewDeduplicator(conversations, nil, 60*time.Second),
		sender:        &recordingSender{},
		completion:    &fakeCompletion{},
		assistants:    &fakeAssistants{},
	}

	p := NewPipeline(PipelineDeps{
		Settings:      staticSettings(bag),
		Conversations: conversations,
		Users:         users,
		Dedup:         fx.dedup,
		Router:        botApp.NewRouter(),
		Assistants:    fx.assistants,
		Completion:    fx.completion,
		Sender:        fx.sender,
	}, PipelineConfig{ReminderEvery: 5, WelcomeRetryDelay: 2 * time.Second, HistoryTurns: 3})
	p.sleep = func(_ context.Context, d time.Duration) error {
		fx.sleeps = append(fx.sleeps, d)
		return nil
	}
	return p, fx
}
