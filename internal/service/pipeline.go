package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"

	"medassist-backend/internal/extractor"
	"medassist-backend/internal/metrics"
	"medassist-backend/internal/model"
	"medassist-backend/pkg/logger"
)

// analysisState is threaded through the stages; each stage fills in its part.
type analysisState struct {
	chunks     []extractor.Chunk
	symptoms   string
	history    string
	summary    string
	suggestion string
}

type stage struct {
	name string
	run  func(ctx context.Context, state analysisState) (analysisState, error)
}

// AnalysisPipeline runs summarize then suggest. A failure in either stage
// fails the whole analysis; no partial result is returned.
type AnalysisPipeline struct {
	chatModel        einoModel.BaseChatModel
	metrics          *metrics.Metrics
	summaryPrompt    prompt.ChatTemplate
	suggestionPrompt prompt.ChatTemplate
	stages           []stage
}

func NewAnalysisPipeline(chatModel einoModel.BaseChatModel, m *metrics.Metrics) *AnalysisPipeline {
	p := &AnalysisPipeline{
		chatModel:        chatModel,
		metrics:          m,
		summaryPrompt:    newSummaryPrompt(),
		suggestionPrompt: newSuggestionPrompt(),
	}
	p.stages = []stage{
		{name: "summarize", run: p.summarize},
		{name: "suggest", run: p.suggest},
	}
	return p
}

func (p *AnalysisPipeline) Analyze(ctx context.Context, chunks []extractor.Chunk, symptoms string) (*model.AnalysisResult, error) {
	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return nil, fmt.Errorf("%w: symptoms must not be empty", ErrInvalidInput)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document has no text", ErrInvalidInput)
	}

	state := analysisState{chunks: chunks, symptoms: symptoms}
	for _, st := range p.stages {
		start := time.Now()
		next, err := st.run(ctx, state)
		elapsed := time.Since(start)
		p.metrics.ObserveStage(st.name, elapsed)

		fields := logger.Fields{"stage": st.name, "elapsed": elapsed.String()}
		if err != nil {
			logger.WithFields(fields).Errorf("analysis stage failed: %v", err)
			return nil, err
		}
		logger.WithFields(fields).Debug("analysis stage completed")
		state = next
	}

	result := model.NewAnalysisResult(state.summary, state.suggestion)
	return &result, nil
}

func (p *AnalysisPipeline) summarize(ctx context.Context, state analysisState) (analysisState, error) {
	state.history = extractor.Merge(state.chunks)

	summary, err := generate(ctx, p.chatModel, p.summaryPrompt, map[string]any{
		"history": state.history,
	})
	if err != nil {
		return state, fmt.Errorf("summarize history: %w", err)
	}
	state.summary = summary
	return state, nil
}

func (p *AnalysisPipeline) suggest(ctx context.Context, state analysisState) (analysisState, error) {
	suggestion, err := generate(ctx, p.chatModel, p.suggestionPrompt, map[string]any{
		"history_summarized": state.summary,
		"user_prob":          state.symptoms,
	})
	if err != nil {
		return state, fmt.Errorf("suggest care: %w", err)
	}
	state.suggestion = suggestion
	return state, nil
}
