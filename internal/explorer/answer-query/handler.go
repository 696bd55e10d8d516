// internal/explorer/answer-query/handler.go
package answerquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "edudata-explorer/internal/common/errors"
	"edudata-explorer/internal/common/llm"
	"edudata-explorer/internal/common/logger"
	"edudata-explorer/internal/common/metrics"
	builddigest "edudata-explorer/internal/explorer/build-digest"
	"edudata-explorer/internal/models"
)

const (
	TaskType = "answer-query"

	promptTemplate = "Using the following data:\n%s\n\nAnswer this question: %s"
)

// Completer is the completion endpoint. *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error)
}

type Handler struct {
	config    *Config
	completer Completer
	digest    *builddigest.Handler
	logger    logger.Logger
}

func NewHandler(config *Config, completer Completer, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		completer: completer,
		digest:    builddigest.NewHandler(builddigest.LoadConfig(), log),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// BuildPrompt places the digest ahead of the question.
func BuildPrompt(digest, question string) string {
	return fmt.Sprintf(promptTemplate, digest, question)
}

// Execute answers question against the dataset held in session. The
// question is checked before the slot; neither failure reaches the network.
func (h *Handler) Execute(ctx context.Context, session *models.Session, input *Input) (*Output, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, apperrors.NewValidationError("please enter a query")
	}

	var dataset *models.Dataset
	if session != nil {
		dataset, _ = session.LastDataset()
	}
	if dataset == nil {
		return nil, apperrors.NewStateError("no data available; fetch first")
	}

	digest, err := h.digest.Execute(ctx, &builddigest.Input{Data: dataset.Data})
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(digest.Digest, question)

	h.logger.Info("submitting query", map[string]interface{}{
		"sessionId":     session.ID,
		"dataset":       dataset.Selector.String(),
		"digestEntries": digest.Entries,
		"promptChars":   len(prompt),
	})

	start := time.Now()
	completion, err := h.completer.Complete(ctx, llm.CompletionRequest{
		System:    h.config.SystemPrompt,
		Prompt:    prompt,
		MaxTokens: h.config.MaxTokens,
	})
	metrics.CompletionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CompletionRequests.WithLabelValues(metrics.OutcomeError).Inc()
		h.logger.Error("completion failed", map[string]interface{}{
			"sessionId": session.ID,
			"error":     err.Error(),
		})
		if apperrors.CodeOf(err) != apperrors.ErrCodeUpstream {
			err = apperrors.NewUpstreamError("completion request failed", err)
		}
		return nil, err
	}
	metrics.CompletionRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()

	session.UpdateActivity()

	return &Output{
		Answer: strings.TrimSpace(completion.Text),
		Prompt: prompt,
		Digest: digest.Digest,
	}, nil
}
