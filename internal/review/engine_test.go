package review

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/article-eval/backend/internal/evaluation"
	"github.com/article-eval/backend/internal/llm"
	"github.com/article-eval/backend/internal/qiita"
	"github.com/article-eval/backend/internal/storage/models"
	"github.com/article-eval/backend/internal/storage/sqlite"
	"github.com/article-eval/backend/pkg/apperrors"
)

type fakeFetcher struct {
	articles map[string]*models.Article
	err      error
	calls    int
}

func (f *fakeFetcher) FetchArticle(ctx context.Context, id string) (*models.Article, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.articles[id]
	if !ok {
		return nil, fmt.Errorf("%w: status 404", qiita.ErrArticleNotFound)
	}
	return a, nil
}

type fakeCompleter struct {
	answers []string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.prompts = append(f.prompts, req.UserPrompt)
	if f.err != nil {
		return nil, f.err
	}
	answer := f.answers[0]
	if len(f.answers) > 1 {
		f.answers = f.answers[1:]
	}
	return &llm.CompletionResponse{Content: answer}, nil
}

type failingStore struct {
	*sqlite.Client
	historyErr error
	appendErr  error
}

func (s *failingStore) RecordHistory(ctx context.Context, user string) ([]models.PastEvaluation, error) {
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return s.Client.RecordHistory(ctx, user)
}

func (s *failingStore) AppendEvaluation(ctx context.Context, record *models.EvaluationRecord) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	return s.Client.AppendEvaluation(ctx, record)
}

func (s *failingStore) FullHistory(ctx context.Context, user string) ([]models.HistoryEntry, error) {
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return s.Client.FullHistory(ctx, user)
}

func newTestStore(t *testing.T) *sqlite.Client {
	t.Helper()
	c, err := sqlite.NewClient(filepath.Join(t.TempDir(), "evaluation.db"))
	require.NoError(t, err)
	require.NoError(t, c.InitSchema())
	t.Cleanup(func() { c.Close() })
	return c
}

func testArticles() map[string]*models.Article {
	return map[string]*models.Article{
		"a1": {ID: "a1", Title: "記事1", Body: "本文1", LikesCount: 3, Tags: []models.Tag{{Name: "go"}}},
		"a2": {ID: "a2", Title: "記事2", Body: "本文2", LikesCount: 5, Tags: []models.Tag{{Name: "sql"}}},
	}
}

func TestEvaluateStoresAndReturnsResult(t *testing.T) {
	store := newTestStore(t)
	completer := &fakeCompleter{answers: []string{"85点\n理由: 読みやすい"}}
	engine := NewEngine(store, &fakeFetcher{articles: testArticles()}, evaluation.NewEvaluator(completer))

	resp, err := engine.Evaluate(context.Background(), "a1", "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", resp.User)
	require.NotNil(t, resp.Score)
	assert.Equal(t, 85, *resp.Score)
	assert.Equal(t, "85点 理由: 読みやすい", resp.Review)
	assert.NotContains(t, resp.Review, "\n")

	entries, err := store.FullHistory(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a1", entries[0].ArticleID)
	assert.Equal(t, "記事1", entries[0].Title)
}

func TestEvaluateArticleNotFoundStoresNothing(t *testing.T) {
	store := newTestStore(t)
	completer := &fakeCompleter{answers: []string{"90点"}}
	engine := NewEngine(store, &fakeFetcher{articles: testArticles()}, evaluation.NewEvaluator(completer))

	resp, err := engine.Evaluate(context.Background(), "missing", "alice")
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindArticleNotFound, apperrors.KindOf(err))

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, MsgArticleNotFound, appErr.Message)

	assert.Empty(t, completer.prompts)
	entries, err := store.FullHistory(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEvaluateNullScoreIsNotAnError(t *testing.T) {
	store := newTestStore(t)
	completer := &fakeCompleter{answers: []string{"とても良い記事です"}}
	engine := NewEngine(store, &fakeFetcher{articles: testArticles()}, evaluation.NewEvaluator(completer))

	resp, err := engine.Evaluate(context.Background(), "a1", "bob")
	require.NoError(t, err)
	assert.Nil(t, resp.Score)
	assert.Equal(t, "とても良い記事です", resp.Review)

	history, err := store.RecordHistory(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].Score)
}

func TestEvaluateLLMFailureIsUnexpected(t *testing.T) {
	store := newTestStore(t)
	completer := &fakeCompleter{err: errors.New("openai: 500")}
	engine := NewEngine(store, &fakeFetcher{articles: testArticles()}, evaluation.NewEvaluator(completer))

	_, err := engine.Evaluate(context.Background(), "a1", "alice")
	assert.Equal(t, apperrors.KindUnexpected, apperrors.KindOf(err))

	entries, _ := store.FullHistory(context.Background(), "alice")
	assert.Empty(t, entries)
}

func TestEvaluateStoreFailures(t *testing.T) {
	t.Run("history read fails before fetching", func(t *testing.T) {
		fetcher := &fakeFetcher{articles: testArticles()}
		store := &failingStore{Client: newTestStore(t), historyErr: errors.New("database is locked")}
		engine := NewEngine(store, fetcher, evaluation.NewEvaluator(&fakeCompleter{answers: []string{"1点"}}))

		_, err := engine.Evaluate(context.Background(), "a1", "alice")
		assert.Equal(t, apperrors.KindUnexpected, apperrors.KindOf(err))
		assert.Zero(t, fetcher.calls)
	})

	t.Run("append fails", func(t *testing.T) {
		cause := errors.New("disk I/O error")
		store := &failingStore{Client: newTestStore(t), appendErr: cause}
		engine := NewEngine(store, &fakeFetcher{articles: testArticles()}, evaluation.NewEvaluator(&fakeCompleter{answers: []string{"1点"}}))

		_, err := engine.Evaluate(context.Background(), "a1", "alice")
		assert.Equal(t, apperrors.KindUnexpected, apperrors.KindOf(err))
		assert.ErrorIs(t, err, cause)
	})
}

func TestEvaluateFeedsHistoryIntoPrompt(t *testing.T) {
	store := newTestStore(t)
	completer := &fakeCompleter{answers: []string{"60点 初回", "70点 二回目", "80点 三回目"}}
	engine := NewEngine(store, &fakeFetcher{articles: testArticles()}, evaluation.NewEvaluator(completer))

	for _, id := range []string{"a1", "a2", "a1"} {
		_, err := engine.Evaluate(context.Background(), id, "carol")
		require.NoError(t, err)
	}

	require.Len(t, completer.prompts, 3)
	assert.Contains(t, completer.prompts[0], "今回が初めての評価なので")
	assert.Contains(t, completer.prompts[1], "・1回前の評価: スコア 60点, 要約: 60点 初回...")
	assert.Contains(t, completer.prompts[2], "・1回前の評価: スコア 70点, 要約: 70点 二回目...")
	assert.Contains(t, completer.prompts[2], "・2回前の評価: スコア 60点, 要約: 60点 初回...")
}

func TestUserHistoryAfterRepeatedEvaluations(t *testing.T) {
	store := newTestStore(t)
	completer := &fakeCompleter{answers: []string{"50点", "55点", "65点", "75点"}}
	engine := NewEngine(store, &fakeFetcher{articles: testArticles()}, evaluation.NewEvaluator(completer))

	for i := 0; i < 4; i++ {
		_, err := engine.Evaluate(context.Background(), "a1", "dave")
		require.NoError(t, err)
	}

	resp, err := engine.UserHistory(context.Background(), "dave")
	require.NoError(t, err)
	assert.Equal(t, "dave", resp.User)
	require.Len(t, resp.History, 4)

	scores := make([]int, 0, 4)
	for _, e := range resp.History {
		assert.Equal(t, "a1", e.ArticleID)
		scores = append(scores, *e.Score)
	}
	assert.Equal(t, []int{75, 65, 55, 50}, scores)
}

func TestUserHistoryEmpty(t *testing.T) {
	engine := NewEngine(newTestStore(t), &fakeFetcher{}, evaluation.NewEvaluator(&fakeCompleter{}))

	resp, err := engine.UserHistory(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, resp.History)
	assert.Empty(t, resp.History)
}

func TestUserHistoryStoreFailure(t *testing.T) {
	store := &failingStore{Client: newTestStore(t), historyErr: errors.New("no such table")}
	engine := NewEngine(store, &fakeFetcher{}, evaluation.NewEvaluator(&fakeCompleter{}))

	_, err := engine.UserHistory(context.Background(), "alice")
	assert.Equal(t, apperrors.KindUnexpected, apperrors.KindOf(err))
}
