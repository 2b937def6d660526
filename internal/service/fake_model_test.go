package service

import (
	"context"
	"sync"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// fakeModel records every prompt and answers with reply.
type fakeModel struct {
	mu      sync.Mutex
	prompts [][]*schema.Message
	reply   func(ctx context.Context, call int, prompt string) (string, error)
}

func replies(texts ...string) *fakeModel {
	return &fakeModel{reply: func(_ context.Context, call int, _ string) (string, error) {
		if call < len(texts) {
			return texts[call], nil
		}
		return "default reply", nil
	}}
}

func (f *fakeModel) Generate(ctx context.Context, messages []*schema.Message, _ ...einoModel.Option) (*schema.Message, error) {
	f.mu.Lock()
	call := len(f.prompts)
	f.prompts = append(f.prompts, messages)
	f.mu.Unlock()

	text, err := f.reply(ctx, call, messages[len(messages)-1].Content)
	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(text, nil), nil
}

func (f *fakeModel) Stream(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// userPrompt returns the user turn of the i-th call.
func (f *fakeModel) userPrompt(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.prompts[i]
	return msgs[len(msgs)-1].Content
}

func (f *fakeModel) systemPrompt(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[i][0].Content
}
