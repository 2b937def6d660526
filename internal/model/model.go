package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	einoModel "github.com/cloudwego/eino/components/model"

	"medassist-backend/internal/config"
	"medassist-backend/internal/metrics"
	"medassist-backend/internal/utils"
	"medassist-backend/pkg/logger"
)

var ErrMissingAPIKey = errors.New("missing API key")

// NewChatModel builds the chat model for the configured provider, wrapped with
// retries (when model.max_retries > 0) and metrics/logging.
func NewChatModel(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (einoModel.BaseChatModel, error) {
	var (
		chatModel einoModel.BaseChatModel
		err       error
	)

	provider := cfg.Model.Provider
	switch provider {
	case config.ProviderGemini:
		chatModel, err = createGeminiModel(ctx, cfg.Gemini, cfg.Model)
	case config.ProviderOpenAI:
		chatModel, err = createOpenAIModel(ctx, cfg.OpenAI, cfg.Model)
	case config.ProviderDoubao:
		chatModel, err = createDoubaoModel(ctx, cfg.Doubao, cfg.Model)
	case config.ProviderQwen:
		chatModel, err = createQwenModel(ctx, cfg.Qwen, cfg.Model)
	case config.ProviderClaude:
		chatModel, err = createClaudeModel(ctx, cfg.Claude, cfg.Model)
	case config.ProviderOffline:
		chatModel = NewOfflineChatModel()
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", provider, err)
	}

	if cfg.Model.MaxRetries > 0 {
		chatModel = WithRetry(chatModel, RetryPolicy{
			MaxRetries: cfg.Model.MaxRetries,
			Delay:      cfg.Model.RetryDelay,
		})
	}

	return Instrument(chatModel, provider, cfg.Model.Timeout, m), nil
}

func createDoubaoModel(ctx context.Context, cfg config.DoubaoConfig, mc config.ModelConfig) (einoModel.BaseChatModel, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	logger.WithFields(logger.Fields{"model": cfg.Model, "api_key": utils.MaskKey(cfg.APIKey)}).Info("using Doubao model")

	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		HTTPClient: utils.NewHTTPClient(mc.Timeout),
		CustomHeader: map[string]string{
			"X-Ark-Thinking-Mode": "disable",
		},
	})
	if err != nil {
		return nil, err
	}
	return chatModel, nil
}

func createOpenAIModel(ctx context.Context, cfg config.OpenAIConfig, mc config.ModelConfig) (einoModel.BaseChatModel, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	logger.WithFields(logger.Fields{"model": cfg.Model, "base_url": cfg.BaseURL}).Info("using OpenAI model")

	return newOpenAIChatModel(ctx, cfg, utils.NewHTTPClient(mc.Timeout))
}

func createQwenModel(ctx context.Context, cfg config.QwenConfig, mc config.ModelConfig) (einoModel.BaseChatModel, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	logger.WithFields(logger.Fields{
		"model":    cfg.Model,
		"base_url": cfg.BaseURL,
		"api_key":  utils.MaskKey(cfg.APIKey),
		"debug":    cfg.DebugRequest,
	}).Info("using Qwen model")

	httpClient := utils.NewHTTPClient(mc.Timeout)
	if cfg.DebugRequest {
		httpClient = utils.NewDebugHTTPClient(mc.Timeout, config.ProviderQwen)
	}

	chatModel, err := qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   &cfg.MaxTokens,
		Temperature: &cfg.Temperature,
		TopP:        &cfg.TopP,
		Timeout:     mc.Timeout,
		HTTPClient:  httpClient,
	})
	if err != nil {
		return nil, err
	}
	return chatModel, nil
}
