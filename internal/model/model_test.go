package model

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist-backend/internal/config"
	"medassist-backend/internal/metrics"
)

type scriptedModel struct {
	calls   atomic.Int32
	replies []string
	errs    []error
}

func (s *scriptedModel) Generate(ctx context.Context, _ []*schema.Message, _ ...einoModel.Option) (*schema.Message, error) {
	i := int(s.calls.Add(1)) - 1
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.replies) {
		return schema.AssistantMessage(s.replies[i], nil), nil
	}
	return schema.AssistantMessage("", nil), nil
}

func (s *scriptedModel) Stream(ctx context.Context, msgs []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := s.Generate(ctx, msgs, opts...)
	if err != nil {
		return nil, err
	}
	return singleMessageStream(msg), nil
}

func offlineConfig() *config.Config {
	return &config.Config{
		Model:     config.ModelConfig{Provider: config.ProviderOffline, Timeout: time.Second},
		Extractor: config.ExtractorConfig{ChunkSize: 1000, ChunkOverlap: 200},
	}
}

func TestNewChatModel_Offline(t *testing.T) {
	m, err := NewChatModel(context.Background(), offlineConfig(), metrics.New())
	require.NoError(t, err)

	msg, err := m.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("You are a helpful medical assistant."),
		schema.UserMessage("Summarize the following medical history in paragraph form. Ignore all personal info:\n\none two three"),
	})
	require.NoError(t, err)
	assert.Contains(t, msg.Content, "3 words")
}

func TestNewChatModel_MissingKey(t *testing.T) {
	for _, provider := range []string{
		config.ProviderGemini, config.ProviderOpenAI, config.ProviderDoubao,
		config.ProviderQwen, config.ProviderClaude,
	} {
		cfg := offlineConfig()
		cfg.Model.Provider = provider
		_, err := NewChatModel(context.Background(), cfg, nil)
		assert.ErrorIs(t, err, ErrMissingAPIKey, provider)
	}
}

func TestNewChatModel_UnknownProvider(t *testing.T) {
	cfg := offlineConfig()
	cfg.Model.Provider = "palm"
	_, err := NewChatModel(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestOffline_Suggestion(t *testing.T) {
	prompt := "You are given a patient's information.\n\n### Patient Medical History\nStable.\n\n" +
		"### Current Problem\npersistent headache\nFormat the response clearly with headings and bullet points.\n\n" +
		"## Important: Give response in concise manner."
	msg, err := NewOfflineChatModel().Generate(context.Background(), []*schema.Message{schema.UserMessage(prompt)})
	require.NoError(t, err)
	assert.Contains(t, msg.Content, `"persistent headache"`)
}

func TestOffline_FollowUpKeywords(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"Which medicine helps?", "medication considerations"},
		{"should I see a doctor?", "Recommended healthcare providers"},
		{"any food to avoid?", "Dietary recommendations"},
		{"is it serious?", `I understand your question: "is it serious?"`},
	}

	for _, tt := range tests {
		prompt := "### Previous Medical Analysis Context\nOriginal Symptoms: back pain\n\n" +
			"### Patient's Follow-up Question\n" + tt.question + "\n\nPlease provide a helpful response."
		msg, err := NewOfflineChatModel().Generate(context.Background(), []*schema.Message{schema.UserMessage(prompt)})
		require.NoError(t, err)
		assert.Contains(t, msg.Content, tt.want, tt.question)
		if !strings.Contains(tt.want, "I understand") {
			assert.Contains(t, msg.Content, "back pain", tt.question)
		}
	}
}

func TestRetry_RecoversFromTransientError(t *testing.T) {
	inner := &scriptedModel{
		errs:    []error{errors.New("Error 429 RESOURCE_EXHAUSTED"), nil},
		replies: []string{"", "ok"},
	}
	m := WithRetry(inner, RetryPolicy{MaxRetries: 2, Delay: time.Millisecond})

	msg, err := m.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", msg.Content)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestRetry_DoesNotRetryPermanentError(t *testing.T) {
	inner := &scriptedModel{errs: []error{errors.New("invalid api key")}}
	m := WithRetry(inner, RetryPolicy{MaxRetries: 3, Delay: time.Millisecond})

	_, err := m.Generate(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestRetry_GivesUp(t *testing.T) {
	transient := errors.New("503 unavailable")
	inner := &scriptedModel{errs: []error{transient, transient, transient}}
	m := WithRetry(inner, RetryPolicy{MaxRetries: 2, Delay: time.Millisecond})

	_, err := m.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestInstrument_RejectsEmptyReply(t *testing.T) {
	m := Instrument(&scriptedModel{replies: []string{""}}, "fake", 0, metrics.New())
	_, err := m.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestSplitSystem(t *testing.T) {
	system, turns := splitSystem([]*schema.Message{
		schema.SystemMessage("a"),
		schema.UserMessage("u"),
		schema.SystemMessage("b"),
	})
	assert.Equal(t, "a\n\nb", system)
	require.Len(t, turns, 1)
	assert.Equal(t, "u", turns[0].Content)
}

func TestConvertOpenAIMessages_SkipsEmptyAssistant(t *testing.T) {
	out := convertOpenAIMessages([]*schema.Message{
		schema.SystemMessage("s"),
		schema.AssistantMessage("", nil),
		schema.UserMessage("u"),
	})
	require.Len(t, out, 2)
	assert.Equal(t, "system", out[0].Role)
	assert.Equal(t, "user", out[1].Role)
}
