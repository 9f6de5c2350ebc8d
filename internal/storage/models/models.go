package models

import "time"

type Tag struct {
	Name string `json:"name"`
}

// Article is a Qiita item as returned by the content API. It is read-only and
// never stored verbatim.
type Article struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	RenderedBody  string `json:"rendered_body"`
	URL           string `json:"url"`
	LikesCount    int    `json:"likes_count"`
	CommentsCount int    `json:"comments_count"`
	Tags          []Tag  `json:"tags"`

	// Outline holds the h1-h3 heading texts of RenderedBody.
	Outline []string `json:"-"`
}

func (a *Article) TagNames() []string {
	names := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		names = append(names, t.Name)
	}
	return names
}

type EvaluationRecord struct {
	ID        int64
	User      string
	ArticleID string
	Title     string
	Score     *int
	Review    string
	CreatedAt time.Time
}

// PastEvaluation is one (score, review) pair of a user's evaluation history.
type PastEvaluation struct {
	Score  *int
	Review string
}

type HistoryEntry struct {
	ArticleID string    `json:"article_id"`
	Title     string    `json:"title"`
	Score     *int      `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
