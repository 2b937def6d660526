package model

import (
	"context"
	"strings"
	"time"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"medassist-backend/pkg/logger"
)

type RetryPolicy struct {
	MaxRetries int
	// Delay is the first backoff; it doubles after each failed attempt.
	Delay time.Duration
}

type retryingChatModel struct {
	inner  einoModel.BaseChatModel
	policy RetryPolicy
}

// WithRetry retries transient failures (rate limits, 5xx, timeouts) of
// Generate. Cancellation of the caller's context is never retried.
func WithRetry(inner einoModel.BaseChatModel, policy RetryPolicy) einoModel.BaseChatModel {
	return &retryingChatModel{inner: inner, policy: policy}
}

func (r *retryingChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.Message, error) {
	delay := r.policy.Delay
	for attempt := 0; ; attempt++ {
		msg, err := r.inner.Generate(ctx, messages, opts...)
		if err == nil {
			return msg, nil
		}
		if attempt >= r.policy.MaxRetries || ctx.Err() != nil || !IsRetryable(err) {
			return nil, err
		}

		logger.WithFields(logger.Fields{
			"attempt": attempt + 1,
			"max":     r.policy.MaxRetries,
			"backoff": delay.String(),
		}).Warnf("model call failed, retrying: %v", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func (r *retryingChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	return r.inner.Stream(ctx, messages, opts...)
}

// IsRetryable reports whether err looks like a rate limit or a transient
// upstream failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"429", "resource_exhausted", "rate limit", "quota", "overloaded",
		"500", "502", "503", "504", "unavailable", "timeout", "connection reset",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
