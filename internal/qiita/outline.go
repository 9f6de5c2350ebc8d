package qiita

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Outline returns the text of the h1-h3 headings of rendered article HTML, in
// document order. It returns nil for empty or unparsable input.
func Outline(renderedHTML string) []string {
	if strings.TrimSpace(renderedHTML) == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(renderedHTML))
	if err != nil {
		return nil
	}

	var headings []string
	doc.Find("h1, h2, h3").Each(func(i int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text != "" {
			headings = append(headings, text)
		}
	})

	return headings
}
