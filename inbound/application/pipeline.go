package application

import (
	"context"
	"errors"
	"time"

	botApp "github.com/AzielCF/az-devocional/botengine/application"
	botDomain "github.com/AzielCF/az-devocional/botengine/domain"
	"github.com/AzielCF/az-devocional/botengine/domain/assistant"
	convDomain "github.com/AzielCF/az-devocional/conversations/domain"
	settingsDomain "github.com/AzielCF/az-devocional/core/settings/domain"
	"github.com/AzielCF/az-devocional/inbound/domain"
	"github.com/AzielCF/az-devocional/integrations/whatsapp"
	"github.com/AzielCF/az-devocional/pkg/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SettingsLoader entrega el snapshot de settings de un request
type SettingsLoader interface {
	Load(ctx context.Context, keys ...string) settingsDomain.Bag
}

// Sender envía texto por WhatsApp
type Sender interface {
	SendText(ctx context.Context, phone, message string) (whatsapp.SendResult, error)
}

type AssistantSelector interface {
	Select(text string, roster assistant.Roster, preferSupport bool) *assistant.Assistant
}

type AssistantResponder interface {
	Reply(ctx context.Context, phone string, a assistant.Assistant, text string) *botApp.AssistantReply
}

type CompletionResponder interface {
	Reply(ctx context.Context, in botApp.FallbackInput) (string, string)
}

type PipelineConfig struct {
	ReminderEvery     int
	WelcomeRetryDelay time.Duration
	HistoryTurns      int
}

// PipelineDeps agrupa los colaboradores del pipeline. Assistants y
// Completion pueden ser nil.
type PipelineDeps struct {
	Settings      SettingsLoader
	Conversations convDomain.ConversationRepository
	Users         convDomain.UserRepository
	Dedup         *Deduplicator
	Router        AssistantSelector
	Assistants    AssistantResponder
	Completion    CompletionResponder
	Sender        Sender
}

// Pipeline procesa un mensaje entrante ya normalizado
type Pipeline struct {
	deps  PipelineDeps
	cfg   PipelineConfig
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPipeline(deps PipelineDeps, cfg PipelineConfig) *Pipeline {
	if cfg.ReminderEvery <= 0 {
		cfg.ReminderEvery = 5
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = 3
	}
	if cfg.WelcomeRetryDelay < 0 {
		cfg.WelcomeRetryDelay = 0
	}
	return &Pipeline{deps: deps, cfg: cfg, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func settingsKeys() []string {
	keys := []string{
		settingsDomain.KeyWelcomeEnabled,
		settingsDomain.KeyWelcomeMessage,
		settingsDomain.KeyMenuEnabled,
		settingsDomain.KeyMenuMessage,
		settingsDomain.KeyReminderEnabled,
		settingsDomain.KeyReminderMessage,
		settingsDomain.KeyReminderEvery,
		settingsDomain.KeyAIEnabled,
		settingsDomain.KeyAIAssistants,
		settingsDomain.KeyAITriggerWords,
	}
	for _, intent := range domain.AllIntents {
		keys = append(keys, settingsDomain.PromptKey(intent.String()))
	}
	return keys
}

// Process runs one message through dedup, claim, reply generation and
// dispatch. It never returns an error: every failure is reported in Result
// or degraded to a fallback tier.
func (p *Pipeline) Process(ctx context.Context, msg domain.InboundMessage) domain.Result {
	log := logrus.WithFields(logrus.Fields{
		"phone":      msg.Phone,
		"message_id": msg.MessageID,
	})

	bag := p.deps.Settings.Load(ctx, settingsKeys()...)

	if reason := p.deps.Dedup.Check(ctx, msg); reason != "" {
		log.WithField("reason", reason).Info("[WEBHOOK] Duplicate delivery ignored")
		return domain.Ignored(reason)
	}

	isFirst := p.registerUser(ctx, msg)
	intent := Classify(msg.Text, ParseTriggerTable(bag.String(settingsDomain.KeyAITriggerWords)))
	log = log.WithField("intent", intent.String())

	claim := &convDomain.Conversation{
		ID:               uuid.NewString(),
		UserPhone:        msg.Phone,
		ConversationType: intent.String(),
		MessageContent:   msg.Text,
		ResponseContent:  convDomain.ClaimPlaceholder,
		MessageType:      convDomain.MessageTypeText,
		MessageID:        msg.MessageID,
	}
	claimed := true
	if err := p.deps.Conversations.InsertClaim(ctx, claim); err != nil {
		if errors.Is(err, convDomain.ErrDuplicateMessageID) {
			log.Info("[WEBHOOK] Message id already claimed")
			return domain.Ignored(domain.ReasonDuplicateMessageID)
		}
		log.WithError(err).Warn("[WEBHOOK] Claim insert failed, continuing without claim")
		claimed = false
	}

	result := domain.Result{
		Status:    domain.StatusSuccess,
		MessageID: msg.MessageID,
		Intent:    intent,
	}

	reply := p.generateReply(ctx, msg, intent, bag, claim.ID, &result)

	if dup := p.persist(ctx, claim, claimed, reply); dup {
		log.Info("[WEBHOOK] Final insert hit an existing message id, reply not sent")
		return domain.Ignored(domain.ReasonDuplicateMessageID)
	}

	sent, sendErr := p.dispatch(ctx, msg.Phone, reply.text, "reply")
	result.ReplySent = sent
	result.SendError = sendErr

	if sent {
		flipped, err := p.deps.Users.MarkFirstMessageSent(ctx, msg.Phone)
		if err != nil {
			log.WithError(err).Warn("[WEBHOOK] Could not mark first message")
		}
		if isFirst && flipped {
			result.WelcomeSent = p.sendWelcome(ctx, msg.Phone, bag)
		}
	}

	result.ReminderSent = p.sendReminder(ctx, msg.Phone, bag)

	log.WithFields(logrus.Fields{
		"source":     result.ReplySource,
		"assistant":  result.Assistant,
		"reply_sent": result.ReplySent,
	}).Info("[WEBHOOK] Message processed")
	return result
}

// registerUser reports whether this is the user's first contact. Store
// failures are treated as not-first so no welcome is sent by mistake.
func (p *Pipeline) registerUser(ctx context.Context, msg domain.InboundMessage) bool {
	if err := p.deps.Users.Upsert(ctx, msg.Phone, msg.SenderName); err != nil {
		logrus.WithError(err).WithField("phone", msg.Phone).Warn("[WEBHOOK] User upsert failed")
	}
	user, err := p.deps.Users.Find(ctx, msg.Phone)
	if err != nil {
		if errors.Is(err, convDomain.ErrUserNotFound) {
			return true
		}
		logrus.WithError(err).WithField("phone", msg.Phone).Warn("[WEBHOOK] User lookup failed")
		return false
	}
	return !user.HasSentFirstMessage
}

type generatedReply struct {
	text        string
	threadID    string
	assistantID string
}

// generateReply tries the routed assistant, then a completion, then canned text.
func (p *Pipeline) generateReply(ctx context.Context, msg domain.InboundMessage, intent domain.Intent, bag settingsDomain.Bag, claimID string, result *domain.Result) generatedReply {
	if !bag.Bool(settingsDomain.KeyAIEnabled, true) {
		metrics.ReplySources.WithLabelValues(botApp.SourceCanned).Inc()
		result.ReplySource = botApp.SourceCanned
		return generatedReply{text: botApp.CannedReply(msg.Text)}
	}

	if p.deps.Router != nil && p.deps.Assistants != nil {
		roster := assistant.ParseRoster(bag.String(settingsDomain.KeyAIAssistants))
		if a := p.deps.Router.Select(msg.Text, roster, intent == domain.IntentSupportRequest); a != nil {
			result.Assistant = a.ID
			if reply := p.deps.Assistants.Reply(ctx, msg.Phone, *a, msg.Text); reply != nil {
				metrics.ReplySources.WithLabelValues(botApp.SourceAssistant).Inc()
				result.ReplySource = botApp.SourceAssistant
				result.ThreadID = reply.ThreadID
				return generatedReply{text: reply.Text, threadID: reply.ThreadID, assistantID: a.ID}
			}
		}
	}

	in := botApp.FallbackInput{
		Phone:          msg.Phone,
		Intent:         intent,
		PromptOverride: bag.String(settingsDomain.PromptKey(intent.String())),
		History:        p.history(ctx, msg.Phone, claimID),
		Text:           msg.Text,
	}
	if p.deps.Completion == nil {
		metrics.ReplySources.WithLabelValues(botApp.SourceCanned).Inc()
		result.ReplySource = botApp.SourceCanned
		return generatedReply{text: botApp.CannedReply(msg.Text)}
	}
	text, source := p.deps.Completion.Reply(ctx, in)
	result.ReplySource = source
	return generatedReply{text: text}
}

func (p *Pipeline) history(ctx context.Context, phone, excludeID string) []botDomain.ChatTurn {
	rows, err := p.deps.Conversations.ListHistory(ctx, phone, p.cfg.HistoryTurns, excludeID)
	if err != nil {
		logrus.WithError(err).WithField("phone", phone).Debug("[WEBHOOK] History unavailable")
		return nil
	}
	turns := make([]botDomain.ChatTurn, 0, len(rows)*2)
	for _, row := range rows {
		turns = append(turns,
			botDomain.ChatTurn{Role: botDomain.RoleUser, Text: row.MessageContent},
			botDomain.ChatTurn{Role: botDomain.RoleAssistant, Text: row.ResponseContent},
		)
	}
	return turns
}

// persist completes the claim row, or inserts a final row when no claim
// exists. It returns true when the final insert lost a message id race.
func (p *Pipeline) persist(ctx context.Context, claim *convDomain.Conversation, claimed bool, reply generatedReply) bool {
	if claimed {
		err := p.deps.Conversations.Update(ctx, claim.ID, convDomain.ConversationUpdate{
			ConversationType: claim.ConversationType,
			ResponseContent:  reply.text,
			ThreadID:         reply.threadID,
			AssistantID:      reply.assistantID,
		})
		if err != nil {
			logrus.WithError(err).WithField("conversation_id", claim.ID).Error("[WEBHOOK] Failed to update claimed conversation")
		}
		return false
	}

	final := *claim
	final.ID = uuid.NewString()
	final.ResponseContent = reply.text
	final.ThreadID = reply.threadID
	final.AssistantID = reply.assistantID
	if err := p.deps.Conversations.InsertClaim(ctx, &final); err != nil {
		if errors.Is(err, convDomain.ErrDuplicateMessageID) {
			return true
		}
		logrus.WithError(err).WithField("phone", claim.UserPhone).Error("[WEBHOOK] Fallback conversation insert failed")
	}
	return false
}

func (p *Pipeline) dispatch(ctx context.Context, phone, text, kind string) (bool, string) {
	if p.deps.Sender == nil {
		metrics.OutboundMessages.WithLabelValues(kind, "skipped").Inc()
		return false, "sender not configured"
	}
	res, err := p.deps.Sender.SendText(ctx, phone, text)
	if err == nil && res.Success {
		metrics.OutboundMessages.WithLabelValues(kind, "sent").Inc()
		return true, ""
	}

	msg := res.Error
	if err != nil {
		msg = err.Error()
	}
	metrics.OutboundMessages.WithLabelValues(kind, "failed").Inc()
	logrus.WithFields(logrus.Fields{"phone": phone, "kind": kind}).Warnf("[DISPATCH] Send failed: %s", msg)
	return false, msg
}

// sendWelcome retries once after the configured delay.
func (p *Pipeline) sendWelcome(ctx context.Context, phone string, bag settingsDomain.Bag) bool {
	text := ComposeWelcome(bag)
	if text == "" {
		return false
	}
	if ok, _ := p.dispatch(ctx, phone, text, "welcome"); ok {
		return true
	}
	if err := p.sleep(ctx, p.cfg.WelcomeRetryDelay); err != nil {
		return false
	}
	ok, _ := p.dispatch(ctx, phone, text, "welcome")
	return ok
}

func (p *Pipeline) sendReminder(ctx context.Context, phone string, bag settingsDomain.Bag) bool {
	if !bag.Bool(settingsDomain.KeyReminderEnabled, false) {
		return false
	}
	text := bag.String(settingsDomain.KeyReminderMessage)
	if text == "" {
		return false
	}
	count, err := p.deps.Conversations.Count(ctx, phone)
	if err != nil {
		logrus.WithError(err).WithField("phone", phone).Warn("[WEBHOOK] Conversation count failed, skipping reminder")
		return false
	}
	if !ReminderDue(count, bag.Int(settingsDomain.KeyReminderEvery, p.cfg.ReminderEvery)) {
		return false
	}
	ok, _ := p.dispatch(ctx, phone, text, "reminder")
	return ok
}
