package flash

import (
	"math/rand"
	"strings"
)

const maxRepeatRetries = 10

type weightedCategory struct {
	name   string
	weight float64
}

// pickWeighted selects a category by roulette-wheel sampling.
// Zero-weight categories are skipped; if none remain the first candidate wins.
func pickWeighted(rnd *rand.Rand, candidates []string, weight func(string) float64) string {
	items := make([]weightedCategory, 0, len(candidates))
	total := 0.0
	for _, c := range candidates {
		w := weight(c)
		if w <= 0 {
			continue
		}
		items = append(items, weightedCategory{name: c, weight: w})
		total += w
	}
	if len(items) == 0 {
		if len(candidates) == 0 {
			return ""
		}
		return candidates[0]
	}
	r := rnd.Float64() * total
	for _, it := range items {
		r -= it.weight
		if r <= 0 {
			return it.name
		}
	}
	return items[len(items)-1].name
}

// picker holds the selection state shared across ticks and categories.
type picker struct {
	rnd     *rand.Rand
	last    string
	hasLast bool
	wordIdx int
}

// message draws a message uniformly, retrying a bounded number of times
// to avoid repeating the last shown message.
func (p *picker) message(msgs []string, noRepeat bool) string {
	if len(msgs) == 0 {
		return ""
	}
	msg := msgs[p.rnd.Intn(len(msgs))]
	if noRepeat && len(msgs) > 1 && p.hasLast {
		for guard := 0; msg == p.last && guard < maxRepeatRetries; guard++ {
			msg = msgs[p.rnd.Intn(len(msgs))]
		}
	}
	p.last = msg
	p.hasLast = true
	return msg
}

// word returns the next word of msg in a round-robin that spans messages.
func (p *picker) word(msg string) string {
	words := strings.Fields(msg)
	if len(words) == 0 {
		return msg
	}
	w := words[p.wordIdx%len(words)]
	p.wordIdx++
	return w
}
