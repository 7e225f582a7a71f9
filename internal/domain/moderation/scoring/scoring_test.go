package scoring

import (
	"testing"
)

func TestScore_EmptyConfigScoresZero(t *testing.T) {
	in := Input{
		Title:   "Council approves new waterfront budget",
		Content: "The city council voted on the plan last night.",
		Source:  "herald",
	}

	got := Score(in, Config{})
	if got != 0 {
		t.Errorf("Expected score 0 for empty config, got %v", got)
	}
}

func TestScore_HighRelevanceKeywords(t *testing.T) {
	cfg := Config{
		HighRelevance: []string{"fall river", "city council"},
	}
	in := Input{Title: "Fall River city council meets tonight"}

	got := Score(in, cfg)
	if got != 20 {
		t.Errorf("Expected 20 (two high relevance hits), got %v", got)
	}
}

func TestScore_KeywordCountedOncePerEntry(t *testing.T) {
	cfg := Config{
		HighRelevance: []string{"fall river"},
	}
	in := Input{
		Title:   "Fall River updates",
		Content: "Fall River announced that Fall River schools reopen.",
	}

	got := Score(in, cfg)
	if got != 10 {
		t.Errorf("Expected 10 (one hit per configured entry), got %v", got)
	}
}

func TestScore_MediumRelevanceAnchorBranch(t *testing.T) {
	cfg := Config{
		MediumRelevance: []string{"somerset"},
	}

	t.Run("WithoutAnchor_Penalized", func(t *testing.T) {
		in := Input{Title: "Somerset board meeting recap"}
		got := Score(in, cfg)
		if got != 0 {
			t.Errorf("Expected 0 (clamped -15), got %v", got)
		}

		b := ScoreWithBreakdown(in, cfg)
		if b.AnchorPresent {
			t.Error("Expected anchor absent")
		}
		if b.MediumRelevance != -15 {
			t.Errorf("Expected medium contribution -15, got %v", b.MediumRelevance)
		}
	})

	t.Run("WithAnchor_Bonus", func(t *testing.T) {
		in := Input{Title: "Somerset board meeting recap", Content: "Fall River residents attended."}
		b := ScoreWithBreakdown(in, cfg)
		if !b.AnchorPresent {
			t.Error("Expected anchor present")
		}
		if b.MediumRelevance != 1 {
			t.Errorf("Expected medium contribution +1, got %v", b.MediumRelevance)
		}
	})

	t.Run("WithAnchorNeverBelowWithout", func(t *testing.T) {
		in := Input{Title: "Somerset news"}
		without := Score(in, cfg)
		in.Content = "fall river"
		with := Score(in, cfg)
		if without > with {
			t.Errorf("Anchor-absent score %v exceeds anchor-present score %v", without, with)
		}
	})
}

// Pins the anchor-detection semantics: a high relevance keyword containing the
// locality name itself satisfies the anchor, so the medium keyword nets +1.
func TestScore_AnchorSatisfiedByHighRelevanceKeyword(t *testing.T) {
	cfg := Config{
		HighRelevance:   []string{"fall river"},
		MediumRelevance: []string{"somerset"},
	}
	in := Input{Title: "Fall River and Somerset"}

	got := Score(in, cfg)
	if got != 11 {
		t.Errorf("Expected 11 (10 high + 1 medium with anchor), got %v", got)
	}
}

func TestScore_LocalPlacesAndTopics(t *testing.T) {
	cfg := Config{
		LocalPlaces: []string{"battleship cove", "kennedy park"},
		TopicKeywords: map[string]float64{
			"school":  4.5,
			"traffic": -2.0,
		},
	}
	in := Input{
		Title:   "School zone traffic near Kennedy Park",
		Content: "Crossing guards return to the school zone.",
	}

	b := ScoreWithBreakdown(in, cfg)
	if b.LocalPlaces != 3 {
		t.Errorf("Expected local places contribution 3, got %v", b.LocalPlaces)
	}
	if b.Topics != 2.5 {
		t.Errorf("Expected topics contribution 2.5, got %v", b.Topics)
	}
	if b.Final != 5.5 {
		t.Errorf("Expected final score 5.5, got %v", b.Final)
	}
}

func TestScore_TopicWeightMonotonic(t *testing.T) {
	in := Input{Title: "School budget vote"}

	low := Score(in, Config{TopicKeywords: map[string]float64{"school": 2}})
	high := Score(in, Config{TopicKeywords: map[string]float64{"school": 5}})
	if low > high {
		t.Errorf("Score not monotonic in topic weight: %v > %v", low, high)
	}
}

func TestScore_SourceCredibility(t *testing.T) {
	cfg := Config{
		SourceCredibility: map[string]float64{"herald": 7.5},
	}

	t.Run("MatchingSource", func(t *testing.T) {
		got := Score(Input{Title: "anything", Source: "herald"}, cfg)
		if got != 7.5 {
			t.Errorf("Expected 7.5, got %v", got)
		}
	})

	t.Run("MissingSourceIsNotAnError", func(t *testing.T) {
		got := Score(Input{Title: "anything"}, cfg)
		if got != 0 {
			t.Errorf("Expected 0 for unset source, got %v", got)
		}
	})

	t.Run("UnknownSourceDoesNotMatch", func(t *testing.T) {
		got := Score(Input{Title: "anything", Source: "gazette"}, cfg)
		if got != 0 {
			t.Errorf("Expected 0 for unknown source, got %v", got)
		}
	})
}

func TestScore_ClickbaitPenaltyAndClamp(t *testing.T) {
	cfg := Config{
		ClickbaitPatterns: []string{"you won't believe", "shocking"},
	}
	in := Input{Title: "You won't believe this shocking discovery"}

	b := ScoreWithBreakdown(in, cfg)
	if b.Clickbait != -10 {
		t.Errorf("Expected clickbait contribution -10, got %v", b.Clickbait)
	}
	if b.Final != 0 {
		t.Errorf("Expected clamped final 0, got %v", b.Final)
	}
}

func TestScore_ContentFallsBackToSummary(t *testing.T) {
	cfg := Config{HighRelevance: []string{"harbor"}}
	in := Input{
		Title:   "Waterfront notes",
		Summary: "New harbor lights installed.",
	}

	if got := Score(in, cfg); got != 10 {
		t.Errorf("Expected summary to be scored when content is empty, got %v", got)
	}
}

func TestScore_CaseInsensitiveMatching(t *testing.T) {
	cfg := Config{HighRelevance: []string{"FALL RIVER"}}
	in := Input{Title: "fall river mills reopen"}

	if got := Score(in, cfg); got != 10 {
		t.Errorf("Expected case-insensitive match, got %v", got)
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("Big Fire on Main Street!", "Crews responded quickly, again quickly.")

	want := []string{"fire", "main", "street", "crews", "responded", "quickly", "again", "quickly"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i, token := range want {
		if got[i] != token {
			t.Errorf("Token %d: expected %q, got %q", i, token, got[i])
		}
	}
}

func TestTokens_ShortTokensDropped(t *testing.T) {
	got := Tokens("A big dog ran far", "")
	if len(got) != 0 {
		t.Errorf("Expected no tokens of length >= 4, got %v", got)
	}
}
