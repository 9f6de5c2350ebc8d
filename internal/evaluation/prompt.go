package evaluation

import (
	"fmt"
	"strings"

	"github.com/article-eval/backend/internal/storage/models"
)

// digestReviewRunes is how much of each past review is quoted in the digest.
const digestReviewRunes = 100

const rubric = `以下のQiita記事について100点満点で評価し、理由を添えてください。さらに、以下の評価ポイントに従ってください。

【評価ポイント】
- 読みやすさ（初心者にもわかりやすいか）
- 論理性（見出し構造、流れ）
- 情報の網羅性
- 実用性（役立つ情報かどうか）
- 人気度（LGTM数、コメント数）
- 説明の深さ（背景や仕組みの理解を助ける内容があるか）
- 独自性（他の記事にはない工夫やアイデアがあるか）

また、以下の3つのルールが守られているか必ず確認し、**守られていない場合は必ず指摘してください**:
- **記事タイトルに「何のために」「何を解決したいか」の目的意識が示されているか**
- **記事のタグが3つ以上設定されているか**
- **マークダウン形式で正しく記載されているか**
`

const outputFormat = `評価結果は以下の形式で返してください。
・点数（100点満点）
・理由（箇条書きで3つ以上）
・改善点（箇条書きで3つ以上）
・振り返りコメント（過去の評価がある場合は「前回と比較して…」のように、過去データと比較したコメントを含めてください。過去の評価がない場合は「今回が初めての評価なので、振り返りコメントはありません」と記載してください。）
`

const (
	historyHeader      = "【これまでの評価履歴（最新→過去）】"
	historyInstruction = "今回の評価ではこれまでの履歴と比較して成長点や改善点を含めてコメントしてください。"
	firstEvaluation    = "今回が初めての評価なので、振り返りコメントはありません。"
)

// BuildPrompt renders the grading prompt for article. history is the user's
// past evaluations, oldest first; the digest lists them newest first.
func BuildPrompt(article *models.Article, history []models.PastEvaluation) string {
	var b strings.Builder

	b.WriteString(rubric)

	b.WriteString("\n【タイトル】\n")
	b.WriteString(article.Title)
	b.WriteString("\n\n【本文】\n")
	b.WriteString(article.Body)
	b.WriteString("\n\n【補足データ】\n")
	fmt.Fprintf(&b, "- 文字数: %d文字\n", len([]rune(article.Body)))
	fmt.Fprintf(&b, "- LGTM数: %d\n", article.LikesCount)
	fmt.Fprintf(&b, "- コメント数: %d\n", article.CommentsCount)
	fmt.Fprintf(&b, "- タグ: %s\n", strings.Join(article.TagNames(), ", "))
	if article.RenderedBody != "" {
		fmt.Fprintf(&b, "- 見出し数: %d\n", len(article.Outline))
	}

	b.WriteString("\n")
	b.WriteString(HistoryDigest(history))
	b.WriteString("\n\n")
	b.WriteString(outputFormat)

	return b.String()
}

// HistoryDigest renders the reverse-chronological summary of history, or the
// first-evaluation sentence when history is empty.
func HistoryDigest(history []models.PastEvaluation) string {
	if len(history) == 0 {
		return firstEvaluation
	}

	var b strings.Builder
	b.WriteString(historyHeader)
	b.WriteString("\n")

	for idx := 1; idx <= len(history); idx++ {
		past := history[len(history)-idx]
		fmt.Fprintf(&b, "・%d回前の評価: スコア %s点, 要約: %s...\n",
			idx, formatScore(past.Score), truncateRunes(past.Review, digestReviewRunes))
	}

	b.WriteString(historyInstruction)
	return b.String()
}

func formatScore(score *int) string {
	if score == nil {
		return "なし"
	}
	return fmt.Sprintf("%d", *score)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
