package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EvaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "article_eval_evaluation_duration_seconds",
			Help:    "End-to-end evaluation pipeline duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40},
		},
	)

	EvaluationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_eval_evaluations_total",
			Help: "Total number of evaluation requests by outcome",
		},
		[]string{"status"},
	)

	ScoreExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_eval_score_extraction_total",
			Help: "Score extraction attempts by result",
		},
		[]string{"result"},
	)

	Score = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "article_eval_score",
			Help:    "Extracted evaluation scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	ArticleFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_eval_article_fetch_total",
			Help: "Content API fetches by upstream status",
		},
		[]string{"status"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_eval_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	HistoryRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_eval_history_requests_total",
			Help: "History requests by outcome",
		},
		[]string{"status"},
	)
)

func Init() {
	prometheus.MustRegister(EvaluationDuration)
	prometheus.MustRegister(EvaluationTotal)
	prometheus.MustRegister(ScoreExtracted)
	prometheus.MustRegister(Score)
	prometheus.MustRegister(ArticleFetchTotal)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(HistoryRequests)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
