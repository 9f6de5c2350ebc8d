package evaluation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/article-eval/backend/internal/llm"
	"github.com/article-eval/backend/internal/metrics"
	"github.com/article-eval/backend/internal/storage/models"
	"github.com/article-eval/backend/pkg/logger"
)

// Completer is the part of *llm.Client the evaluator needs.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

type Evaluator struct {
	llmClient Completer
}

type Result struct {
	Review string
	Score  *int
}

func NewEvaluator(llmClient Completer) *Evaluator {
	return &Evaluator{
		llmClient: llmClient,
	}
}

// Evaluate asks the LLM to grade article against the user's history (oldest
// first) and returns the normalized review with its best-effort score.
func (e *Evaluator) Evaluate(ctx context.Context, article *models.Article, history []models.PastEvaluation) (*Result, error) {
	prompt := BuildPrompt(article, history)

	logger.Debug("Evaluation prompt built",
		zap.String("article_id", article.ID),
		zap.Int("history_entries", len(history)),
		zap.String("history_digest", HistoryDigest(history)),
	)

	resp, err := e.llmClient.Complete(ctx, llm.CompletionRequest{UserPrompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to get LLM evaluation: %w", err)
	}

	review := NormalizeReview(resp.Content)
	if review == "" {
		return nil, fmt.Errorf("failed to get LLM evaluation: %w", llm.ErrEmptyCompletion)
	}

	score := ExtractScore(review)
	if score != nil {
		metrics.ScoreExtracted.WithLabelValues("matched").Inc()
		metrics.Score.Observe(float64(*score))
	} else {
		metrics.ScoreExtracted.WithLabelValues("missing").Inc()
		logger.Warn("No score found in LLM review", zap.String("article_id", article.ID))
	}

	logger.Info("Article evaluated",
		zap.String("article_id", article.ID),
		zap.Int("review_length", len([]rune(review))),
		zap.Bool("score_found", score != nil),
	)

	return &Result{
		Review: review,
		Score:  score,
	}, nil
}
