// Package vocab corrects mis-heard terms in final transcripts against a
// user-supplied vocabulary.
//
// Speech models reliably garble names, jargon and product terms that never
// appeared in their training data ("eldrinax" becomes "elder nacks"). The
// corrector compares each transcript token, and each adjacent token pair,
// against the configured vocabulary in two stages:
//
//  1. Phonetic filtering: Double Metaphone codes are computed for the
//     transcript tokens and for each vocabulary term. A term whose codes
//     overlap with the input becomes a candidate.
//
//  2. Jaro-Winkler ranking: among candidates, the term with the highest
//     Jaro-Winkler similarity to the original text wins, provided it clears
//     the phonetic threshold. When no phonetic candidate exists, a stricter
//     pure-similarity fallback threshold applies.
//
// The corrector is read-only after construction and safe for concurrent use.
package vocab

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// Option is a functional option for configuring a [Corrector].
type Option func(*Corrector)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically-matched term to be accepted. Default: 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(c *Corrector) { c.phoneticThreshold = threshold }
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score required when no
// phonetic match is found. Default: 0.85.
func WithFuzzyThreshold(threshold float64) Option {
	return func(c *Corrector) { c.fuzzyThreshold = threshold }
}

// term is one vocabulary entry with its precomputed phonetic codes.
type term struct {
	text   string
	tokens []string
	codes  map[string]struct{}
}

// Corrector replaces mis-heard words in transcripts with vocabulary terms.
type Corrector struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
	terms             []term
}

// New builds a Corrector for the given vocabulary. Empty and duplicate
// entries are ignored.
func New(vocabulary []string, opts ...Option) *Corrector {
	c := &Corrector{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(c)
	}

	seen := make(map[string]struct{}, len(vocabulary))
	for _, v := range vocabulary {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		tokens := strings.Fields(key)
		c.terms = append(c.terms, term{
			text:   v,
			tokens: tokens,
			codes:  codesForTokens(tokens),
		})
	}
	return c
}

// Empty reports whether the corrector has no vocabulary and Correct is a
// no-op.
func (c *Corrector) Empty() bool { return len(c.terms) == 0 }

// Correct rewrites text, replacing tokens (and adjacent token pairs) that
// match a vocabulary term. Punctuation adjacent to a replaced token is
// preserved.
func (c *Corrector) Correct(text string) string {
	if c.Empty() || strings.TrimSpace(text) == "" {
		return text
	}

	words := strings.Fields(text)
	out := make([]string, 0, len(words))

	for i := 0; i < len(words); i++ {
		// Prefer a two-token match so multi-word terms win over their
		// halves ("elder nacks" corrects as one unit).
		if i+1 < len(words) {
			pair := words[i] + " " + words[i+1]
			if repl, ok := c.match(pair, false); ok {
				lead, _ := splitPunct(words[i])
				_, trail := splitPunct(words[i+1])
				out = append(out, strings.Fields(lead+repl+trail)...)
				i++
				continue
			}
		}
		if repl, ok := c.match(words[i], true); ok {
			lead, trail := splitPunct(words[i])
			out = append(out, lead+repl+trail)
			continue
		}
		out = append(out, words[i])
	}

	return strings.Join(out, " ")
}

// match finds the best vocabulary term for the given word or phrase.
// pairwise additionally considers per-token similarity; it must be off for
// multi-word inputs so a phrase cannot match on one of its words alone.
func (c *Corrector) match(word string, pairwise bool) (string, bool) {
	core := strings.ToLower(trimPunct(word))
	if core == "" {
		return "", false
	}
	tokens := strings.Fields(core)

	// Text already containing a vocabulary term verbatim needs no
	// correction; without this, pairwise scoring would rewrite phrases
	// around an exact hit.
	for _, tok := range tokens {
		for _, t := range c.terms {
			if tok == strings.ToLower(t.text) || core == strings.Join(t.tokens, " ") {
				return "", false
			}
		}
	}

	inputCodes := codesForTokens(tokens)

	var (
		best         string
		bestScore    float64
		bestPhonetic bool
	)

	for _, t := range c.terms {
		phonetic := codesOverlap(inputCodes, t.codes)
		score := bestSimilarity(tokens, t.tokens, core, pairwise)

		switch {
		case phonetic && score >= c.phoneticThreshold:
			if !bestPhonetic || score > bestScore {
				best, bestScore, bestPhonetic = t.text, score, true
			}
		case !phonetic && !bestPhonetic:
			if score >= c.fuzzyThreshold && score > bestScore {
				best, bestScore = t.text, score
			}
		}
	}

	return best, best != ""
}

// codesForTokens returns the union of all Double Metaphone codes for tokens.
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestSimilarity computes the highest Jaro-Winkler score between the input
// and a term: full strings, space-stripped strings, and optionally the best
// pairwise token score.
func bestSimilarity(inputTokens, termTokens []string, inputFull string, pairwise bool) float64 {
	termFull := strings.Join(termTokens, " ")
	score := matchr.JaroWinkler(inputFull, termFull, false)

	if len(inputTokens) > 1 || len(termTokens) > 1 {
		a := strings.Join(inputTokens, "")
		b := strings.Join(termTokens, "")
		if s := matchr.JaroWinkler(a, b, false); s > score {
			score = s
		}
	}

	if pairwise {
		for _, it := range inputTokens {
			for _, tt := range termTokens {
				if s := matchr.JaroWinkler(it, tt, false); s > score {
					score = s
				}
			}
		}
	}
	return score
}

// splitPunct separates leading and trailing punctuation from a word.
func splitPunct(word string) (lead, trail string) {
	start := 0
	for start < len(word) && !isWordByte(word[start]) {
		start++
	}
	end := len(word)
	for end > start && !isWordByte(word[end-1]) {
		end--
	}
	return word[:start], word[end:]
}

// trimPunct strips leading and trailing punctuation.
func trimPunct(word string) string {
	lead, trail := splitPunct(word)
	return word[len(lead) : len(word)-len(trail)]
}

func isWordByte(b byte) bool {
	r := rune(b)
	return unicode.IsLetter(r) || unicode.IsDigit(r) || b >= 0x80
}
