package scoring

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	highRelevanceBonus  = 10.0
	mediumAnchorBonus   = 1.0
	mediumAnchorPenalty = -15.0
	localPlaceBonus     = 3.0
	clickbaitPenalty    = -5.0

	// minimum token length for the keyword learning hook
	minTokenLength = 4
)

// Config is the per-tenant scoring configuration, decoded from storage.
type Config struct {
	HighRelevance     []string           `json:"high_relevance"`
	MediumRelevance   []string           `json:"medium_relevance"`
	LocalPlaces       []string           `json:"local_places"`
	TopicKeywords     map[string]float64 `json:"topic_keywords"`
	SourceCredibility map[string]float64 `json:"source_credibility"`
	ClickbaitPatterns []string           `json:"clickbait_patterns"`
	AnchorTerms       []string           `json:"anchor_terms"`
}

// DefaultAnchorTerms returns the home-locality spelling variants used when a
// tenant has not configured its own anchor.
func DefaultAnchorTerms() []string {
	return []string{"fall river", "fallriver"}
}

// Input holds the article fields the scorer reads.
type Input struct {
	Title   string
	Content string
	Summary string
	Source  string
}

// Breakdown shows how each signal contributed to the final score.
type Breakdown struct {
	HighRelevance     float64
	MediumRelevance   float64
	LocalPlaces       float64
	Topics            float64
	SourceCredibility float64
	Clickbait         float64
	AnchorPresent     bool
	Final             float64
}

// Score computes the weighted relevance score for an article. Pure and
// deterministic; the result is clamped to >= 0.
func Score(in Input, cfg Config) float64 {
	return ScoreWithBreakdown(in, cfg).Final
}

// ScoreWithBreakdown computes the relevance score with per-signal detail.
// Matching is case-insensitive substring matching, counted once per configured
// entry regardless of how often the keyword occurs in the text.
func ScoreWithBreakdown(in Input, cfg Config) Breakdown {
	body := in.Content
	if body == "" {
		body = in.Summary
	}
	combined := strings.ToLower(in.Title + " " + body)

	var b Breakdown

	for _, kw := range cfg.HighRelevance {
		if containsKeyword(combined, kw) {
			b.HighRelevance += highRelevanceBonus
		}
	}

	b.AnchorPresent = anchorPresent(combined, cfg.AnchorTerms)

	for _, kw := range cfg.MediumRelevance {
		if containsKeyword(combined, kw) {
			if b.AnchorPresent {
				b.MediumRelevance += mediumAnchorBonus
			} else {
				b.MediumRelevance += mediumAnchorPenalty
			}
		}
	}

	for _, kw := range cfg.LocalPlaces {
		if containsKeyword(combined, kw) {
			b.LocalPlaces += localPlaceBonus
		}
	}

	for kw, weight := range cfg.TopicKeywords {
		if containsKeyword(combined, kw) {
			b.Topics += weight
		}
	}

	if in.Source != "" {
		if weight, ok := cfg.SourceCredibility[in.Source]; ok {
			b.SourceCredibility = weight
		}
	}

	for _, phrase := range cfg.ClickbaitPatterns {
		if containsKeyword(combined, phrase) {
			b.Clickbait += clickbaitPenalty
		}
	}

	total := b.HighRelevance + b.MediumRelevance + b.LocalPlaces +
		b.Topics + b.SourceCredibility + b.Clickbait
	if total < 0 {
		total = 0
	}
	b.Final = total

	return b
}

// anchorPresent reports whether any home-locality spelling variant appears in
// the combined text. The anchor is plain substring matching, so a high
// relevance keyword that happens to contain the locality name also satisfies it.
func anchorPresent(combined string, anchors []string) bool {
	if len(anchors) == 0 {
		anchors = DefaultAnchorTerms()
	}
	for _, a := range anchors {
		if containsKeyword(combined, a) {
			return true
		}
	}
	return false
}

func containsKeyword(combined, keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return false
	}
	return strings.Contains(combined, keyword)
}

// Tokens extracts the lowercase tokens of length >= 4 from title and summary,
// for the good-fit keyword learning table. Duplicates are kept so repeated
// tokens count once per occurrence.
func Tokens(title, summary string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(title + " " + summary)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if utf8.RuneCountInString(word) >= minTokenLength {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
