package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/config"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/pkg/utils"
)

// ContentService generates outreach copy (follow-up emails, call scripts,
// social posts) for sales reps.
type ContentService struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      utils.Logger
}

func NewContentService(cfg *config.OpenAIConfig, logger utils.Logger) *ContentService {
	return &ContentService{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

var contentPrompts = map[string]string{
	"follow_up_email": "Write a short, warm follow-up email from a sales rep to a prospect. Plain text, no subject line, under 150 words.",
	"call_script":     "Write a concise discovery call opening script for a sales rep. Bullet the key questions.",
	"social_post":     "Write a short social media post a sales professional could publish. No hashtag spam, at most two hashtags.",
}

// GenerateContent produces copy of the requested kind using the client's
// name and any extra context the rep supplies.
func (s *ContentService) GenerateContent(ctx context.Context, kind, clientName, extraContext string) (string, error) {
	prompt, ok := contentPrompts[kind]
	if !ok {
		return "", fmt.Errorf("unknown content kind %q", kind)
	}

	userMessage := fmt.Sprintf("Prospect name: %s", clientName)
	if extraContext != "" {
		userMessage += "\nContext: " + extraContext
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	if err != nil {
		s.logger.Error("content generation failed", utils.LogFields{
			"kind":  kind,
			"error": err.Error(),
		})
		return "", fmt.Errorf("content generation failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("content generation returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ContentKinds lists the supported generation kinds for the handler layer.
func ContentKinds() []string {
	kinds := make([]string, 0, len(contentPrompts))
	for k := range contentPrompts {
		kinds = append(kinds, k)
	}
	return kinds
}
