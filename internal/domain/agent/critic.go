package agent

import (
	"strings"
	"unicode/utf8"
)

// passThreshold is the minimum score for a "pass" verdict.
const passThreshold = 70

// CriticReview scores a draft heuristically (0–100) and returns a verdict
// plus concrete suggestions. Deterministic: same text, same review.
func CriticReview(text string) map[string]any {
	trimmed := strings.TrimSpace(text)
	score := 50
	var suggestions []string

	if trimmed == "" {
		return map[string]any{
			"score":       0,
			"verdict":     "revise",
			"suggestions": []string{"draft is empty"},
		}
	}

	length := utf8.RuneCountInString(trimmed)
	switch {
	case length < 40:
		score -= 15
		suggestions = append(suggestions, "expand the draft; it is too short to be useful")
	case length >= 200:
		score += 15
	default:
		score += 5
	}

	// Structure: bullets, numbering, or paragraphs all count.
	if strings.Contains(trimmed, "\n-") || strings.Contains(trimmed, "\n*") ||
		strings.Contains(trimmed, "\n1.") || strings.Count(trimmed, "\n\n") >= 1 {
		score += 15
	} else {
		suggestions = append(suggestions, "add structure (bullets or paragraphs)")
	}

	// Sentences ending properly suggest finished prose.
	if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, "!") || strings.HasSuffix(trimmed, "?") {
		score += 10
	} else {
		suggestions = append(suggestions, "finish the final sentence")
	}

	// Hedging filler drags the score down.
	lower := strings.ToLower(trimmed)
	for _, filler := range []string{"as an ai", "i cannot", "lorem ipsum", "todo"} {
		if strings.Contains(lower, filler) {
			score -= 20
			suggestions = append(suggestions, "remove filler or placeholder text")
			break
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	verdict := "revise"
	if score >= passThreshold {
		verdict = "pass"
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	return map[string]any{
		"score":       score,
		"verdict":     verdict,
		"suggestions": suggestions,
	}
}
