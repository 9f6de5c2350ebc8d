package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/article-eval/backend/internal/storage/models"
	"github.com/article-eval/backend/pkg/logger"
)

// createdAtLayout matches the strftime default of evaluations.created_at.
const createdAtLayout = "2006-01-02 15:04:05.000"

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	_, err = db.Exec("PRAGMA busy_timeout = 5000")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS evaluations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user TEXT NOT NULL,
		article_id TEXT NOT NULL,
		title TEXT,
		score INTEGER,
		review TEXT,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
	);
	CREATE INDEX IF NOT EXISTS idx_evaluations_user ON evaluations(user, created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// AppendEvaluation inserts one row. created_at is assigned by the database.
func (c *Client) AppendEvaluation(ctx context.Context, record *models.EvaluationRecord) error {
	query := `INSERT INTO evaluations (user, article_id, title, score, review) VALUES (?, ?, ?, ?, ?)`

	var score sql.NullInt64
	if record.Score != nil {
		score = sql.NullInt64{Int64: int64(*record.Score), Valid: true}
	}

	result, err := c.db.ExecContext(
		ctx,
		query,
		record.User,
		record.ArticleID,
		record.Title,
		score,
		record.Review,
	)
	if err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		record.ID = id
	}

	logger.Debug("Evaluation inserted",
		zap.Int64("id", record.ID),
		zap.String("user", record.User),
		zap.String("article_id", record.ArticleID),
	)
	return nil
}

// RecordHistory returns the user's (score, review) pairs, oldest first.
func (c *Client) RecordHistory(ctx context.Context, user string) ([]models.PastEvaluation, error) {
	query := `SELECT score, review FROM evaluations WHERE user = ? ORDER BY created_at ASC, id ASC`

	rows, err := c.db.QueryContext(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("failed to get record history: %w", err)
	}
	defer rows.Close()

	var history []models.PastEvaluation
	for rows.Next() {
		var score sql.NullInt64
		var review sql.NullString

		if err := rows.Scan(&score, &review); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		history = append(history, models.PastEvaluation{
			Score:  nullableInt(score),
			Review: review.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate record history: %w", err)
	}

	return history, nil
}

// FullHistory returns every evaluation of the user, newest first.
func (c *Client) FullHistory(ctx context.Context, user string) ([]models.HistoryEntry, error) {
	query := `
		SELECT article_id, title, score, created_at
		FROM evaluations
		WHERE user = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := c.db.QueryContext(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("failed to get full history: %w", err)
	}
	defer rows.Close()

	entries := make([]models.HistoryEntry, 0)
	for rows.Next() {
		var e models.HistoryEntry
		var title sql.NullString
		var score sql.NullInt64
		var createdAt string

		if err := rows.Scan(&e.ArticleID, &title, &score, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		e.Title = title.String
		e.Score = nullableInt(score)
		e.CreatedAt, err = time.ParseInLocation(createdAtLayout, createdAt, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate full history: %w", err)
	}

	return entries, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
