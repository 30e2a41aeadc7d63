package application

import (
	"context"
	"errors"
	"time"

	"github.com/AzielCF/az-devocional/botengine/domain"
	"github.com/AzielCF/az-devocional/botengine/domain/assistant"
	"github.com/AzielCF/az-devocional/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// ThreadLookup encuentra el thread guardado más reciente de un usuario
type ThreadLookup interface {
	GetRecentThreadID(ctx context.Context, phone, assistantID string) (string, error)
}

// Clock abstracts waiting so the poll loop can be driven in tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type SessionConfig struct {
	PollInterval time.Duration
	Timeout      time.Duration
	Temperature  float64
}

// AssistantReply es la respuesta obtenida de un thread
type AssistantReply struct {
	Text     string
	ThreadID string
}

// SessionManager mantiene un thread por usuario y assistant y espera el
// resultado de cada run con un deadline fijo.
type SessionManager struct {
	api     domain.AssistantAPI
	threads ThreadLookup
	cfg     SessionConfig
	clock   Clock
}

func NewSessionManager(api domain.AssistantAPI, threads ThreadLookup, cfg SessionConfig) *SessionManager {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 800 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SessionManager{api: api, threads: threads, cfg: cfg, clock: systemClock{}}
}

// Reply posts text to the user's thread and waits for the assistant. It
// returns nil when no answer could be obtained; errors are only logged.
func (m *SessionManager) Reply(ctx context.Context, phone string, a assistant.Assistant, text string) *AssistantReply {
	log := logrus.WithFields(logrus.Fields{
		"phone":     phone,
		"assistant": a.ID,
	})

	threadID, err := m.resolveThread(ctx, phone, a.ID)
	if err != nil {
		log.WithError(err).Warn("[ASSISTANT] Could not obtain a thread")
		metrics.AssistantRuns.WithLabelValues("thread_error").Inc()
		return nil
	}
	log = log.WithField("thread_id", threadID)

	if err := m.api.PostMessage(ctx, threadID, text); err != nil {
		log.WithError(err).Warn("[ASSISTANT] Failed to post user message")
		metrics.AssistantRuns.WithLabelValues("post_error").Inc()
		return nil
	}

	runID, err := m.api.StartRun(ctx, threadID, domain.RunParams{
		AssistantID: a.AssistantID,
		Temperature: m.cfg.Temperature,
		TopP:        1,
	})
	if err != nil {
		log.WithError(err).Warn("[ASSISTANT] Failed to start run")
		metrics.AssistantRuns.WithLabelValues("start_error").Inc()
		return nil
	}

	started := m.clock.Now()
	action := m.awaitRun(ctx, threadID, runID)
	metrics.AssistantRunDuration.Observe(m.clock.Now().Sub(started).Seconds())
	metrics.AssistantRuns.WithLabelValues(action.String()).Inc()

	if action != ActionFetchReply {
		log.WithFields(logrus.Fields{"run_id": runID, "action": action.String()}).Warn("[ASSISTANT] Run ended without reply")
		return nil
	}

	reply, err := m.latestAssistantText(ctx, threadID)
	if err != nil {
		log.WithError(err).Warn("[ASSISTANT] Failed to read reply")
		return nil
	}
	if reply == "" {
		log.Warn("[ASSISTANT] Run completed but no text block was found")
		return nil
	}

	log.WithField("run_id", runID).Debug("[ASSISTANT] Reply received")
	return &AssistantReply{Text: reply, ThreadID: threadID}
}

// resolveThread reuses the newest stored thread when it still exists.
func (m *SessionManager) resolveThread(ctx context.Context, phone, assistantID string) (string, error) {
	stored, err := m.threads.GetRecentThreadID(ctx, phone, assistantID)
	if err != nil {
		logrus.WithError(err).WithField("phone", phone).Warn("[ASSISTANT] Thread lookup failed, creating a new one")
	}

	if stored != "" {
		err := m.api.GetThread(ctx, stored)
		if err == nil {
			return stored, nil
		}
		if !errors.Is(err, domain.ErrThreadNotFound) {
			logrus.WithError(err).WithField("thread_id", stored).Warn("[ASSISTANT] Thread validation failed, creating a new one")
		}
	}

	return m.api.CreateThread(ctx)
}

// awaitRun drives Step until a terminal action. The context deadline caps
// the whole loop at timeout plus one interval even if a call hangs.
func (m *SessionManager) awaitRun(ctx context.Context, threadID, runID string) RunAction {
	pollCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout+m.cfg.PollInterval)
	defer cancel()

	start := m.clock.Now()
	for {
		status, err := m.api.GetRun(pollCtx, threadID, runID)
		if err != nil {
			if pollCtx.Err() != nil {
				return ActionTimeout
			}
			logrus.WithError(err).WithField("run_id", runID).Debug("[ASSISTANT] Run status read failed")
			status = ""
		}

		action := Step(status, m.clock.Now().Sub(start), m.cfg.Timeout)
		if action != ActionPoll {
			return action
		}

		if err := m.clock.Sleep(pollCtx, m.cfg.PollInterval); err != nil {
			return ActionTimeout
		}
	}
}

func (m *SessionManager) latestAssistantText(ctx context.Context, threadID string) (string, error) {
	messages, err := m.api.ListMessages(ctx, threadID, 1)
	if err != nil {
		return "", err
	}
	for _, msg := range messages {
		if msg.Role != domain.RoleAssistant {
			continue
		}
		for _, t := range msg.Texts {
			if t != "" {
				return t, nil
			}
		}
	}
	return "", nil
}
