// Package generator picks and builds typing texts.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// Generator produces randomized typing text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate selects words uniformly and applies caps/punctuation rules.
func (g *Generator) Generate(words []string, count int, capsPct, punctPct float64, punctSet []rune) []string {
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := words[g.rnd.Intn(len(words))]
		word = applyCaps(g.rnd, word, capsPct)
		word = applyPunct(g.rnd, word, punctPct, punctSet)
		result = append(result, word)
	}
	return result
}

// Pick returns a random passage different from prev when there is a choice.
// When every passage equals prev, prev itself is returned.
func (g *Generator) Pick(passages []string, prev string) string {
	if len(passages) == 0 {
		return ""
	}
	candidates := make([]string, 0, len(passages))
	for _, p := range passages {
		if p != prev {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return passages[0]
	}
	return candidates[g.rnd.Intn(len(candidates))]
}

// Text builds a typing text from generated words joined by spaces.
func (g *Generator) Text(words []string, count int, capsPct, punctPct float64, punctSet []rune) string {
	if len(words) == 0 || count <= 0 {
		return ""
	}
	return strings.Join(g.Generate(words, count, capsPct, punctPct, punctSet), " ")
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 {
		return word
	}
	if rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 {
		return word
	}
	if rnd.Float64() > punctPct {
		return word
	}
	punct := punctSet[rnd.Intn(len(punctSet))]
	return word + string(punct)
}
