package application

import (
	"context"
	"strings"

	"github.com/AzielCF/az-devocional/botengine/domain"
	inbound "github.com/AzielCF/az-devocional/inbound/domain"
	"github.com/AzielCF/az-devocional/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// Reply sources reported to the caller and to metrics.
const (
	SourceAssistant  = "assistant"
	SourceCompletion = "completion"
	SourceCanned     = "canned"
)

// CompletionFallback answers with a single chat completion when no
// assistant thread produced a reply.
type CompletionFallback struct {
	completer domain.ChatCompleter
	model     string
}

func NewCompletionFallback(completer domain.ChatCompleter, model string) *CompletionFallback {
	return &CompletionFallback{completer: completer, model: model}
}

// FallbackInput agrupa lo necesario para una completion
type FallbackInput struct {
	Phone          string
	Intent         inbound.Intent
	PromptOverride string
	History        []domain.ChatTurn
	Text           string
}

// Reply never fails: provider errors and empty answers become a canned reply.
func (f *CompletionFallback) Reply(ctx context.Context, in FallbackInput) (string, string) {
	if f == nil || f.completer == nil {
		metrics.ReplySources.WithLabelValues(SourceCanned).Inc()
		return CannedReply(in.Text), SourceCanned
	}

	text, err := f.completer.ChatComplete(ctx, domain.ChatRequest{
		SystemPrompt: SystemPrompt(in.Intent, in.PromptOverride),
		History:      in.History,
		UserText:     in.Text,
		Model:        f.model,
		ChatKey:      in.Phone,
	})
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		logrus.WithError(err).WithField("phone", in.Phone).Warn("[FALLBACK] Completion failed, using canned reply")
		metrics.ReplySources.WithLabelValues(SourceCanned).Inc()
		return CannedReply(in.Text), SourceCanned
	}

	metrics.ReplySources.WithLabelValues(SourceCompletion).Inc()
	return text, SourceCompletion
}
