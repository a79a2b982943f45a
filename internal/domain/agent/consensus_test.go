package agent

import (
	"fmt"
	"strings"
	"testing"
)

func TestMergeConsensus_DeduplicatesAcrossAnswers(t *testing.T) {
	t.Parallel()

	answers := []string{
		"Go is fast. Go is compiled.",
		"go is fast! It has goroutines.",
		"Go   is  FAST. It has goroutines.",
	}

	bullets := MergeConsensus(answers)
	if len(bullets) != 3 {
		t.Fatalf("bullets = %v; want 3 distinct points", bullets)
	}
	// "Go is fast" appears in all three answers, so it ranks first, keeping
	// the first-seen casing.
	if bullets[0] != "Go is fast" {
		t.Fatalf("bullets[0] = %q; want \"Go is fast\"", bullets[0])
	}
}

func TestMergeConsensus_FrequencyThenFirstSeen(t *testing.T) {
	t.Parallel()

	answers := []string{
		"alpha. beta.",
		"beta. gamma.",
	}

	bullets := MergeConsensus(answers)
	if len(bullets) != 3 {
		t.Fatalf("bullets = %v; want 3", bullets)
	}
	if bullets[0] != "beta" {
		t.Fatalf("bullets[0] = %q; want beta (appears twice)", bullets[0])
	}
	if bullets[1] != "alpha" || bullets[2] != "gamma" {
		t.Fatalf("tie order = %v; want first-seen alpha then gamma", bullets[1:])
	}
}

func TestMergeConsensus_CapsAtTwelveBullets(t *testing.T) {
	t.Parallel()

	var sentences []string
	for i := 0; i < 30; i++ {
		sentences = append(sentences, fmt.Sprintf("distinct point number %d", i))
	}
	bullets := MergeConsensus([]string{strings.Join(sentences, ". ")})
	if len(bullets) != maxConsensusBullets {
		t.Fatalf("bullets = %d; want capped at %d", len(bullets), maxConsensusBullets)
	}
}

func TestMergeConsensus_StripsBulletMarkers(t *testing.T) {
	t.Parallel()

	bullets := MergeConsensus([]string{"- point one\n- point two"})
	if len(bullets) != 2 {
		t.Fatalf("bullets = %v; want 2", bullets)
	}
	for _, b := range bullets {
		if strings.HasPrefix(b, "-") {
			t.Fatalf("bullet %q retains marker", b)
		}
	}
}

func TestMergeConsensus_Empty(t *testing.T) {
	t.Parallel()

	if bullets := MergeConsensus(nil); len(bullets) != 0 {
		t.Fatalf("bullets = %v; want empty", bullets)
	}
	if bullets := MergeConsensus([]string{"", "   "}); len(bullets) != 0 {
		t.Fatalf("bullets = %v; want empty", bullets)
	}
}
