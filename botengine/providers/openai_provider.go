package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	domain "github.com/AzielCF/az-devocional/botengine/domain"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider is the adapter for the OpenAI API. It serves one-shot chat
// completions and the stateful Assistants threads.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider. Extra request options
// (base URL, HTTP client) are mostly useful in tests.
func NewOpenAIProvider(apiKey, model string, opts ...option.RequestOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("openai provider requires an API key")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// ChatComplete implements domain.ChatCompleter
func (p *OpenAIProvider) ChatComplete(ctx context.Context, req domain.ChatRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, t := range req.History {
		if t.Role == domain.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(t.Text))
		} else {
			messages = append(messages, openai.UserMessage(t.Text))
		}
	}
	if req.UserText != "" {
		messages = append(messages, openai.UserMessage(req.UserText))
	}

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(300),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	logrus.WithFields(logrus.Fields{
		"chat_key":      req.ChatKey,
		"model":         model,
		"input_tokens":  completion.Usage.PromptTokens,
		"output_tokens": completion.Usage.CompletionTokens,
	}).Debug("[OPENAI] Chat completed")

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// --- Assistants (threads & runs) ---

func (p *OpenAIProvider) CreateThread(ctx context.Context) (string, error) {
	thread, err := p.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return thread.ID, nil
}

func (p *OpenAIProvider) GetThread(ctx context.Context, threadID string) error {
	_, err := p.client.Beta.Threads.Get(ctx, threadID)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrThreadNotFound
		}
		return fmt.Errorf("get thread: %w", err)
	}
	return nil
}

func (p *OpenAIProvider) PostMessage(ctx context.Context, threadID, text string) error {
	_, err := p.client.Beta.Threads.Messages.New(ctx, threadID, openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRoleUser,
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}

func (p *OpenAIProvider) StartRun(ctx context.Context, threadID string, params domain.RunParams) (string, error) {
	run, err := p.client.Beta.Threads.Runs.New(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: params.AssistantID,
		Temperature: openai.Float(params.Temperature),
		TopP:        openai.Float(params.TopP),
	})
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return run.ID, nil
}

func (p *OpenAIProvider) GetRun(ctx context.Context, threadID, runID string) (domain.RunStatus, error) {
	run, err := p.client.Beta.Threads.Runs.Get(ctx, threadID, runID)
	if err != nil {
		return "", fmt.Errorf("get run: %w", err)
	}
	return domain.RunStatus(run.Status), nil
}

func (p *OpenAIProvider) ListMessages(ctx context.Context, threadID string, limit int) ([]domain.ThreadMessage, error) {
	page, err := p.client.Beta.Threads.Messages.List(ctx, threadID, openai.BetaThreadMessageListParams{
		Limit: openai.Int(int64(limit)),
		Order: openai.BetaThreadMessageListParamsOrderDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	out := make([]domain.ThreadMessage, 0, len(page.Data))
	for _, m := range page.Data {
		msg := domain.ThreadMessage{ID: m.ID, Role: string(m.Role)}
		for _, c := range m.Content {
			if c.Type == "text" && c.Text.Value != "" {
				msg.Texts = append(msg.Texts, c.Text.Value)
			}
		}
		out = append(out, msg)
	}
	return out, nil
}

func isNotFound(err error) bool {
	var apiErr *openai.Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
