package review

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/article-eval/backend/internal/evaluation"
	"github.com/article-eval/backend/internal/metrics"
	"github.com/article-eval/backend/internal/qiita"
	"github.com/article-eval/backend/internal/storage/models"
	"github.com/article-eval/backend/pkg/apperrors"
	"github.com/article-eval/backend/pkg/logger"
)

const MsgArticleNotFound = "Qiita記事が取得できませんでした。IDを確認してください。"

type ArticleFetcher interface {
	FetchArticle(ctx context.Context, id string) (*models.Article, error)
}

type ArticleEvaluator interface {
	Evaluate(ctx context.Context, article *models.Article, history []models.PastEvaluation) (*evaluation.Result, error)
}

type Store interface {
	RecordHistory(ctx context.Context, user string) ([]models.PastEvaluation, error)
	AppendEvaluation(ctx context.Context, record *models.EvaluationRecord) error
	FullHistory(ctx context.Context, user string) ([]models.HistoryEntry, error)
}

// Engine runs the evaluation pipeline: history, article, LLM, store.
type Engine struct {
	store     Store
	fetcher   ArticleFetcher
	evaluator ArticleEvaluator
}

type EvaluateResponse struct {
	User   string `json:"user"`
	Score  *int   `json:"score"`
	Review string `json:"review"`
}

type HistoryResponse struct {
	User    string                `json:"user"`
	History []models.HistoryEntry `json:"history"`
}

func NewEngine(store Store, fetcher ArticleFetcher, evaluator ArticleEvaluator) *Engine {
	return &Engine{
		store:     store,
		fetcher:   fetcher,
		evaluator: evaluator,
	}
}

// Evaluate grades articleID for user and appends exactly one record on
// success. Nothing is stored when any stage fails.
func (e *Engine) Evaluate(ctx context.Context, articleID, user string) (*EvaluateResponse, error) {
	startTime := time.Now()
	log := logger.With(
		zap.String("evaluation_id", uuid.New().String()),
		zap.String("article_id", articleID),
		zap.String("user", user),
	)

	history, err := e.store.RecordHistory(ctx, user)
	if err != nil {
		metrics.EvaluationTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Unexpected("failed to load evaluation history", err)
	}
	log.Debug("Loaded evaluation history", zap.Int("entries", len(history)))

	article, err := e.fetcher.FetchArticle(ctx, articleID)
	if err != nil {
		if errors.Is(err, qiita.ErrArticleNotFound) {
			log.Warn("Article unavailable", zap.Error(err))
			metrics.EvaluationTotal.WithLabelValues("not_found").Inc()
			return nil, apperrors.ArticleNotFound(MsgArticleNotFound, err)
		}
		metrics.EvaluationTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Unexpected("failed to fetch article", err)
	}

	result, err := e.evaluator.Evaluate(ctx, article, history)
	if err != nil {
		metrics.EvaluationTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Unexpected("failed to evaluate article", err)
	}

	record := &models.EvaluationRecord{
		User:      user,
		ArticleID: article.ID,
		Title:     article.Title,
		Score:     result.Score,
		Review:    result.Review,
	}
	if err := e.store.AppendEvaluation(ctx, record); err != nil {
		metrics.EvaluationTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Unexpected("failed to store evaluation", err)
	}

	metrics.EvaluationTotal.WithLabelValues("ok").Inc()
	metrics.EvaluationDuration.Observe(time.Since(startTime).Seconds())

	fields := []zap.Field{
		zap.Int64("record_id", record.ID),
		zap.Duration("latency", time.Since(startTime)),
	}
	if result.Score != nil {
		fields = append(fields, zap.Int("score", *result.Score))
	}
	log.Info("Evaluation stored", fields...)

	return &EvaluateResponse{
		User:   user,
		Score:  result.Score,
		Review: result.Review,
	}, nil
}

// UserHistory lists every evaluation of user, newest first.
func (e *Engine) UserHistory(ctx context.Context, user string) (*HistoryResponse, error) {
	entries, err := e.store.FullHistory(ctx, user)
	if err != nil {
		metrics.HistoryRequests.WithLabelValues("error").Inc()
		return nil, apperrors.Unexpected("failed to load full history", err)
	}

	if entries == nil {
		entries = []models.HistoryEntry{}
	}

	metrics.HistoryRequests.WithLabelValues("ok").Inc()
	logger.Debug("History loaded", zap.String("user", user), zap.Int("entries", len(entries)))

	return &HistoryResponse{
		User:    user,
		History: entries,
	}, nil
}
