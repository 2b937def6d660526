package service

import (
	"context"
	"fmt"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"

	"medassist-backend/internal/sanitizer"
)

// generate renders tmpl, makes exactly one model call and sanitizes the reply.
// Both the analysis stages and follow-up chat go through here.
func generate(ctx context.Context, chatModel einoModel.BaseChatModel, tmpl prompt.ChatTemplate, vars map[string]any) (string, error) {
	messages, err := tmpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("%w: render prompt: %v", ErrAnalysis, err)
	}

	reply, err := chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	if reply == nil {
		return "", fmt.Errorf("%w: empty model response", ErrAnalysis)
	}

	text := sanitizer.Sanitize(reply.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty model response", ErrAnalysis)
	}
	return text, nil
}
