package agent

import (
	"regexp"
	"sort"
	"strings"
)

// maxConsensusBullets caps the merged output size.
const maxConsensusBullets = 12

var (
	sentenceSplitPattern = regexp.MustCompile(`[.!?\n]+`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
)

// MergeConsensus merges several answers into a deduplicated bullet list.
// Sentences are normalized for comparison (case and whitespace folded) and
// ordered by how many answers contain them, ties broken by first appearance.
// The first-seen original casing is kept for display.
func MergeConsensus(answers []string) []string {
	type bullet struct {
		display string
		count   int
		first   int
	}

	seen := make(map[string]*bullet)
	var orderCounter int

	for _, answer := range answers {
		// Count each distinct sentence once per answer.
		inThisAnswer := make(map[string]bool)
		for _, raw := range sentenceSplitPattern.Split(answer, -1) {
			display := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(raw), "-*• "))
			if display == "" {
				continue
			}
			norm := normalizeSentence(display)
			if norm == "" || inThisAnswer[norm] {
				continue
			}
			inThisAnswer[norm] = true

			if b, ok := seen[norm]; ok {
				b.count++
			} else {
				seen[norm] = &bullet{display: display, count: 1, first: orderCounter}
				orderCounter++
			}
		}
	}

	bullets := make([]*bullet, 0, len(seen))
	for _, b := range seen {
		bullets = append(bullets, b)
	}
	sort.Slice(bullets, func(i, j int) bool {
		if bullets[i].count != bullets[j].count {
			return bullets[i].count > bullets[j].count
		}
		return bullets[i].first < bullets[j].first
	})

	if len(bullets) > maxConsensusBullets {
		bullets = bullets[:maxConsensusBullets]
	}

	out := make([]string, len(bullets))
	for i, b := range bullets {
		out[i] = b.display
	}
	return out
}

func normalizeSentence(s string) string {
	return whitespacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}
