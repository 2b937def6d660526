package model

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"medassist-backend/internal/config"
	"medassist-backend/internal/utils"
	"medassist-backend/pkg/logger"
)

var errEmptyClaudeResponse = errors.New("claude returned no text")

type claudeChatModel struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float32
}

func createClaudeModel(_ context.Context, cfg config.ClaudeConfig, mc config.ModelConfig) (einoModel.BaseChatModel, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	logger.WithFields(logger.Fields{"model": cfg.Model, "api_key": utils.MaskKey(cfg.APIKey)}).Info("using Claude model")

	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(utils.NewHTTPClient(mc.Timeout)),
	)

	return &claudeChatModel{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (m *claudeChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.Message, error) {
	options := einoModel.GetCommonOptions(&einoModel.Options{
		Model:     &m.model,
		MaxTokens: &m.maxTokens,
	}, opts...)

	systemText, turns := splitSystem(messages)
	claudeMessages := make([]anthropic.MessageParam, 0, len(turns))
	for _, msg := range turns {
		if msg.Role == schema.Assistant {
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
			continue
		}
		claudeMessages = append(claudeMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(*options.Model),
		MaxTokens: int64(*options.MaxTokens),
		Messages:  claudeMessages,
	}
	if options.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*options.Temperature))
	} else if m.temperature > 0 {
		params.Temperature = anthropic.Float(float64(m.temperature))
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemText}}
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, errEmptyClaudeResponse
	}
	return schema.AssistantMessage(text.String(), nil), nil
}

func (m *claudeChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	return singleMessageStream(msg), nil
}
