// Package quality implements the heuristic scoring of generated drafts and
// the accept/reject decision applied before publication.
package quality

import (
	"fmt"
	"strings"

	"github.com/example/autonote/internal/core/article"
)

// Criterion names used as subscore keys.
const (
	CriterionTitleLength    = "title_length"
	CriterionBodyLength     = "body_length"
	CriterionHeadings       = "headings"
	CriterionHashtags       = "hashtags"
	CriterionKeywordDensity = "keyword_density"
)

// Score is the result of evaluating one draft. Total is 0-100; each
// criterion contributes at most 20 points.
type Score struct {
	Total       int
	Subscores   map[string]int
	Grade       string
	Issues      []string
	Suggestions []string
}

// Thresholds are the accept cutoffs. Each must be satisfied independently;
// a draft can fail on word count alone regardless of its total score.
type Thresholds struct {
	MinTotalScore   int `json:"min_total_score"`
	MinWordCount    int `json:"min_word_count"`
	MinHeadingCount int `json:"min_heading_count"`
}

// Evaluate scores a draft against its theme. Pure and deterministic: the
// same draft always yields the same score.
func Evaluate(draft article.Draft) Score {
	s := Score{Subscores: make(map[string]int)}

	s.add(CriterionTitleLength, scoreTitle(draft.Title, &s))
	s.add(CriterionBodyLength, scoreBody(draft.WordCount, &s))
	s.add(CriterionHeadings, scoreHeadings(draft.HeadingCount, &s))
	s.add(CriterionHashtags, scoreHashtags(draft.Hashtags, &s))
	s.add(CriterionKeywordDensity, scoreKeywords(draft.Title, draft.Body, &s))

	s.Grade = gradeFor(s.Total)
	return s
}

// Accept applies the thresholds to a score. All cutoffs must pass.
func Accept(s Score, draft article.Draft, t Thresholds) bool {
	if s.Total < t.MinTotalScore {
		return false
	}
	if draft.WordCount < t.MinWordCount {
		return false
	}
	if draft.HeadingCount < t.MinHeadingCount {
		return false
	}
	return true
}

func (s *Score) add(criterion string, points int) {
	s.Subscores[criterion] = points * 5 // per-criterion score on a 0-100 scale
	s.Total += points
}

func scoreTitle(title string, s *Score) int {
	n := len([]rune(title))
	switch {
	case n >= 25 && n <= 60:
		return 20
	case n < 25:
		s.Issues = append(s.Issues, fmt.Sprintf("title is short (%d chars, 25-60 recommended)", n))
		return 10
	default:
		s.Issues = append(s.Issues, fmt.Sprintf("title is too long (%d chars, 25-60 recommended)", n))
		return 10
	}
}

func scoreBody(length int, s *Score) int {
	switch {
	case length >= 3000:
		return 20
	case length >= 1500:
		s.Suggestions = append(s.Suggestions, "bodies of 3,000+ characters rank better")
		return 13
	case length >= 800:
		s.Suggestions = append(s.Suggestions, "body is on the short side; aim for 1,500+ characters")
		return 7
	default:
		s.Issues = append(s.Issues, fmt.Sprintf("body is too short (%d chars, 3,000+ recommended)", length))
		return 0
	}
}

func scoreHeadings(count int, s *Score) int {
	switch {
	case count >= 4:
		return 20
	case count >= 2:
		s.Suggestions = append(s.Suggestions, "four or more headings make the structure clearer")
		return 13
	case count == 1:
		s.Suggestions = append(s.Suggestions, "only one heading; split the article into sections")
		return 5
	default:
		s.Issues = append(s.Issues, "no headings; the article needs sections")
		return 0
	}
}

func scoreHashtags(tags []string, s *Score) int {
	n := 0
	for _, t := range tags {
		if strings.TrimSpace(t) != "" {
			n++
		}
	}
	switch {
	case n >= 4:
		return 20
	case n >= 2:
		s.Suggestions = append(s.Suggestions, "4-5 hashtags are recommended")
		return 13
	case n == 1:
		s.Issues = append(s.Issues, "only one hashtag set")
		return 5
	default:
		s.Issues = append(s.Issues, "no hashtags set")
		return 0
	}
}

func scoreKeywords(title, body string, s *Score) int {
	words := article.TitleKeywords(title)
	if len(words) == 0 {
		return 10
	}

	seen := make(map[string]bool)
	matched := 0
	total := 0
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		total++
		if strings.Contains(body, w) {
			matched++
		}
	}

	ratio := float64(matched) / float64(total)
	switch {
	case ratio >= 0.6:
		return 20
	case ratio >= 0.3:
		s.Suggestions = append(s.Suggestions, "use the title keywords more in the body")
		return 10
	default:
		s.Suggestions = append(s.Suggestions, "title and body keywords do not match")
		return 0
	}
}

func gradeFor(total int) string {
	switch {
	case total >= 90:
		return "S"
	case total >= 80:
		return "A"
	case total >= 60:
		return "B"
	case total >= 40:
		return "C"
	default:
		return "D"
	}
}
