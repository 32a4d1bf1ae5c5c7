package flash

import (
	"math/rand"
	"testing"
)

func weightsOf(m map[string]float64) func(string) float64 {
	return func(c string) float64 {
		w, ok := m[c]
		if !ok {
			return 1
		}
		return w
	}
}

func TestPickWeightedDistribution(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	weight := weightsOf(map[string]float64{"a": 3, "b": 1})
	counts := map[string]int{}
	const draws = 20000
	for i := 0; i < draws; i++ {
		counts[pickWeighted(rnd, []string{"a", "b"}, weight)]++
	}
	if counts["a"]+counts["b"] != draws {
		t.Fatalf("unexpected categories drawn: %v", counts)
	}
	ratio := float64(counts["a"]) / float64(counts["b"])
	if ratio < 2.7 || ratio > 3.3 {
		t.Fatalf("expected ratio near 3, got %.3f (%v)", ratio, counts)
	}
}

func TestPickWeightedSkipsZeroWeight(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	weight := weightsOf(map[string]float64{"muted": 0, "live": 0.5})
	for i := 0; i < 5000; i++ {
		if got := pickWeighted(rnd, []string{"muted", "live"}, weight); got != "live" {
			t.Fatalf("draw %d: expected live, got %q", i, got)
		}
	}
}

func TestPickWeightedFallsBackToFirst(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	weight := weightsOf(map[string]float64{"x": 0, "y": 0})
	if got := pickWeighted(rnd, []string{"x", "y"}, weight); got != "x" {
		t.Fatalf("expected first candidate, got %q", got)
	}
	if got := pickWeighted(rnd, nil, weight); got != "" {
		t.Fatalf("expected empty result for no candidates, got %q", got)
	}
}

func TestPickerNoRepeatTwoMessages(t *testing.T) {
	p := picker{rnd: rand.New(rand.NewSource(3))}
	msgs := []string{"one", "two"}
	prev := p.message(msgs, true)
	repeats := 0
	const draws = 10000
	for i := 0; i < draws; i++ {
		got := p.message(msgs, true)
		if got == prev {
			repeats++
		}
		prev = got
	}
	// Eleven identical draws in a row are needed to repeat: about 5 per 10k.
	if repeats > 40 {
		t.Fatalf("too many consecutive repeats: %d", repeats)
	}
}

func TestPickerNoRepeatSingleMessage(t *testing.T) {
	p := picker{rnd: rand.New(rand.NewSource(3))}
	for i := 0; i < 3; i++ {
		if got := p.message([]string{"only"}, true); got != "only" {
			t.Fatalf("expected only, got %q", got)
		}
	}
}

func TestPickerNoRepeatIsGlobal(t *testing.T) {
	p := picker{rnd: rand.New(rand.NewSource(11))}
	repeats := 0
	for i := 0; i < 1000; i++ {
		// The last message came from another category's pool.
		p.message([]string{"shared"}, true)
		if got := p.message([]string{"shared", "other"}, true); got == "shared" {
			repeats++
		}
	}
	if repeats > 10 {
		t.Fatalf("expected last message to be avoided across pools, got %d repeats", repeats)
	}
}

func TestPickerEmptyPool(t *testing.T) {
	p := picker{rnd: rand.New(rand.NewSource(1))}
	if got := p.message(nil, true); got != "" {
		t.Fatalf("expected empty message, got %q", got)
	}
}

func TestPickerWordRoundRobin(t *testing.T) {
	p := picker{}
	want := []string{"alpha", "beta", "gamma", "alpha"}
	for i, w := range want {
		if got := p.word("alpha beta gamma"); got != w {
			t.Fatalf("word %d: expected %q, got %q", i, w, got)
		}
	}
}

func TestPickerWordIndexSpansMessages(t *testing.T) {
	p := picker{}
	if got := p.word("a b"); got != "a" {
		t.Fatalf("expected a, got %q", got)
	}
	if got := p.word("x  y\tz"); got != "y" {
		t.Fatalf("expected y, got %q", got)
	}
	if got := p.word("   "); got != "   " {
		t.Fatalf("expected blank message unchanged, got %q", got)
	}
	if p.wordIdx != 2 {
		t.Fatalf("expected blank message not to advance index, got %d", p.wordIdx)
	}
}
