package model

import (
	"context"
	"errors"
	"fmt"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"medassist-backend/internal/config"
	"medassist-backend/internal/utils"
	"medassist-backend/pkg/logger"
)

var errEmptyGeminiResponse = errors.New("gemini returned no text")

type geminiChatModel struct {
	client         *genai.Client
	model          string
	temperature    float32
	thinkingBudget int32
}

func createGeminiModel(ctx context.Context, cfg config.GeminiConfig, mc config.ModelConfig) (einoModel.BaseChatModel, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	logger.WithFields(logger.Fields{
		"model":           cfg.Model,
		"api_key":         utils.MaskKey(cfg.APIKey),
		"thinking_budget": cfg.ThinkingBudget,
	}).Info("using Gemini model")

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: utils.NewHTTPClient(mc.Timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("initialize genai client: %w", err)
	}

	return &geminiChatModel{
		client:         client,
		model:          cfg.Model,
		temperature:    cfg.Temperature,
		thinkingBudget: cfg.ThinkingBudget,
	}, nil
}

func (m *geminiChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.Message, error) {
	options := einoModel.GetCommonOptions(&einoModel.Options{Model: &m.model}, opts...)

	systemText, turns := splitSystem(messages)
	contents := make([]*genai.Content, 0, len(turns))
	for _, msg := range turns {
		role := genai.RoleUser
		if msg.Role == schema.Assistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	genConfig := &genai.GenerateContentConfig{}
	if options.Temperature != nil {
		genConfig.Temperature = genai.Ptr(*options.Temperature)
	} else if m.temperature > 0 {
		genConfig.Temperature = genai.Ptr(m.temperature)
	}
	if options.MaxTokens != nil {
		genConfig.MaxOutputTokens = int32(*options.MaxTokens)
	}
	if systemText != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}
	if m.thinkingBudget > 0 {
		genConfig.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(m.thinkingBudget),
		}
	}

	resp, err := m.client.Models.GenerateContent(ctx, *options.Model, contents, genConfig)
	if err != nil {
		return nil, err
	}

	text := resp.Text()
	if text == "" {
		return nil, errEmptyGeminiResponse
	}
	return schema.AssistantMessage(text, nil), nil
}

func (m *geminiChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	return singleMessageStream(msg), nil
}
