package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/article-eval/backend/internal/middleware/validation"
	"github.com/article-eval/backend/internal/review"
	"github.com/article-eval/backend/pkg/apperrors"
	"github.com/article-eval/backend/pkg/logger"
)

const (
	msgEvaluateFailed = "予期しないエラーが発生しました。"
	msgHistoryFailed  = "履歴取得時にエラーが発生しました。"
)

type ReviewService interface {
	Evaluate(ctx context.Context, articleID, user string) (*review.EvaluateResponse, error)
	UserHistory(ctx context.Context, user string) (*review.HistoryResponse, error)
}

type EvaluationHandler struct {
	service ReviewService
}

func NewEvaluationHandler(service ReviewService) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
	}
}

// Evaluate serves GET /evaluate/:articleId?user=.
func (h *EvaluationHandler) Evaluate(c *fiber.Ctx) error {
	params := validation.EvaluateParams{
		ArticleID: c.Params("articleId"),
		User:      c.Query("user"),
	}
	if err := validation.Struct(params); err != nil {
		return h.respondError(c, apperrors.InvalidInput(err.Error(), err), msgEvaluateFailed)
	}

	resp, err := h.service.Evaluate(c.UserContext(), params.ArticleID, params.User)
	if err != nil {
		return h.respondError(c, err, msgEvaluateFailed)
	}

	return c.JSON(resp)
}

// GetUserHistory serves GET /history/:user.
func (h *EvaluationHandler) GetUserHistory(c *fiber.Ctx) error {
	params := validation.HistoryParams{
		User: c.Params("user"),
	}
	if err := validation.Struct(params); err != nil {
		return h.respondError(c, apperrors.InvalidInput(err.Error(), err), msgHistoryFailed)
	}

	resp, err := h.service.UserHistory(c.UserContext(), params.User)
	if err != nil {
		return h.respondError(c, err, msgHistoryFailed)
	}

	return c.JSON(resp)
}

// respondError maps an error kind to the {error} payload. Not-found and
// unexpected failures share one status code; only invalid input is a 400.
func (h *EvaluationHandler) respondError(c *fiber.Ctx, err error, genericMessage string) error {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Unexpected(genericMessage, err)
	}

	switch appErr.Kind {
	case apperrors.KindInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": appErr.Message,
		})
	case apperrors.KindArticleNotFound:
		return c.JSON(fiber.Map{
			"error": appErr.Message,
		})
	default:
		logger.Error("Request failed",
			zap.String("path", c.Path()),
			zap.String("stage", appErr.Message),
			zap.Error(appErr.Err),
		)
		return c.JSON(fiber.Map{
			"error": genericMessage,
		})
	}
}

// ErrorHandler is the fiber-level fallback for errors that escape a handler,
// including panics converted by the recover middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
		})
	}

	message := msgEvaluateFailed
	if strings.HasPrefix(c.Path(), "/history") {
		message = msgHistoryFailed
	}

	logger.Error("Unhandled request error", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(fiber.Map{
		"error": message,
	})
}
