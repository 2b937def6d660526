package model

import (
	"context"
	"errors"
	"time"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"medassist-backend/internal/metrics"
	"medassist-backend/pkg/logger"
)

var ErrEmptyResponse = errors.New("model returned an empty response")

type instrumentedChatModel struct {
	inner    einoModel.BaseChatModel
	provider string
	timeout  time.Duration
	metrics  *metrics.Metrics
}

// Instrument bounds every Generate call by timeout (when positive), rejects
// empty replies and records latency per provider.
func Instrument(inner einoModel.BaseChatModel, provider string, timeout time.Duration, m *metrics.Metrics) einoModel.BaseChatModel {
	return &instrumentedChatModel{inner: inner, provider: provider, timeout: timeout, metrics: m}
}

func (i *instrumentedChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.Message, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	start := time.Now()
	msg, err := i.inner.Generate(ctx, messages, opts...)
	if err == nil && (msg == nil || msg.Content == "") {
		err = ErrEmptyResponse
	}
	elapsed := time.Since(start)
	i.metrics.ObserveModelCall(i.provider, err, elapsed)

	entry := logger.WithFields(logger.Fields{
		"provider": i.provider,
		"messages": len(messages),
		"elapsed":  elapsed.String(),
	})
	if err != nil {
		entry.Warnf("model call failed: %v", err)
		return nil, err
	}
	entry.WithField("reply_chars", len(msg.Content)).Debug("model call completed")
	return msg, nil
}

func (i *instrumentedChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	return i.inner.Stream(ctx, messages, opts...)
}
