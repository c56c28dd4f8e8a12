package services

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/pkg/errors"

	"github.com/rohits-web03/insurguide/internal/config"
	"github.com/rohits-web03/insurguide/internal/repositories"
)

var ErrChatDisabled = stderrors.New("chat is not configured")

const advisorPrompt = "You are a professional insurance advisor. Answer the user's question clearly and accurately."

// Turn is one earlier exchange in a conversation.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

type ChatService struct {
	completions openai.ChatCompletionService
	model       string
	temperature float64
	enabled     bool
}

func NewChatService(cfg config.LLMConfig, httpClient *http.Client) *ChatService {
	if cfg.APIKey == "" {
		return &ChatService{}
	}
	client := newOpenAIClient(cfg, httpClient)
	return &ChatService{
		completions: client.Chat.Completions,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		enabled:     true,
	}
}

func (s *ChatService) Enabled() bool { return s.enabled }

func (s *ChatService) Reply(ctx context.Context, message string, history []Turn) (string, error) {
	if !s.enabled {
		return "", ErrChatDisabled
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", &InputError{Reason: "message is required"}
	}

	msgs := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(advisorPrompt)}
	for _, t := range history {
		if t.User != "" {
			msgs = append(msgs, openai.UserMessage(t.User))
		}
		if t.Assistant != "" {
			msgs = append(msgs, openai.AssistantMessage(t.Assistant))
		}
	}
	msgs = append(msgs, openai.UserMessage(message))

	completion, err := s.completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.model),
		Messages:    msgs,
		Temperature: openai.Float(s.temperature),
	})
	if err != nil {
		return "", classifyOpenAIError("chat", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.Wrap(repositories.ErrUpstream, "openai chat: no choices returned")
	}
	return completion.Choices[0].Message.Content, nil
}
