// Package sentiment labels headlines with a keyword-count heuristic.
package sentiment

import (
	"strings"
	"unicode"
)

// Label is the sentiment of a headline.
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

var positiveWords = toSet(
	"surge", "surges", "surged", "surging",
	"soar", "soars", "soared", "soaring",
	"gain", "gains", "gained",
	"jump", "jumps", "jumped",
	"rally", "rallies", "rallied",
	"rise", "rises", "rising", "rose",
	"climb", "climbs", "climbed",
	"record", "profit", "profits", "profitable",
	"beat", "beats", "growth", "grows", "expands", "expansion",
	"upgrade", "upgrades", "upgraded", "outperform", "outperforms",
	"bullish", "strong", "stronger", "boost", "boosts", "boosted",
	"breakthrough", "wins", "approval", "approved", "dividend",
)

var negativeWords = toSet(
	"plunge", "plunges", "plunged", "plunging",
	"crash", "crashes", "crashed",
	"fall", "falls", "fell", "falling",
	"drop", "drops", "dropped",
	"slump", "slumps", "slumped",
	"tumble", "tumbles", "tumbled",
	"sink", "sinks", "sank",
	"loss", "losses", "lose", "loses",
	"decline", "declines", "declined",
	"miss", "misses", "missed",
	"downgrade", "downgrades", "downgraded", "underperform",
	"bearish", "weak", "weaker", "fear", "fears",
	"lawsuit", "probe", "layoffs", "recall", "bankruptcy", "fraud", "warning",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Tokenize lower-cases text and splits it on every non-letter rune.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// Score returns the number of positive and negative lexicon tokens in text.
func Score(text string) (pos, neg int) {
	for _, tok := range Tokenize(text) {
		if _, ok := positiveWords[tok]; ok {
			pos++
		}
		if _, ok := negativeWords[tok]; ok {
			neg++
		}
	}
	return pos, neg
}

// Classify labels a headline: positive when positive tokens outnumber negative ones, negative for the reverse, neutral otherwise.
func Classify(headline string) Label {
	pos, neg := Score(headline)
	switch {
	case pos > neg:
		return Positive
	case neg > pos:
		return Negative
	default:
		return Neutral
	}
}

// Majority returns the most frequent label in labels. Ties and empty input yield Neutral.
func Majority(labels []Label) Label {
	var pos, neg, neu int
	for _, l := range labels {
		switch l {
		case Positive:
			pos++
		case Negative:
			neg++
		default:
			neu++
		}
	}
	switch {
	case pos > neg && pos > neu:
		return Positive
	case neg > pos && neg > neu:
		return Negative
	default:
		return Neutral
	}
}
