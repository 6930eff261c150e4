package normalize

import (
	"strings"

	"github.com/agext/levenshtein"
)

// fillerWords are dropped before token-set comparison; they carry no
// identity ("Clos de la Roche" vs "Clos la Roche").
var fillerWords = map[string]bool{
	"the": true, "de": true, "di": true, "du": true,
	"della": true, "des": true, "le": true, "la": true, "del": true,
}

// substringBoost is the floor applied when one normalized name contains the
// other; containment is strong evidence even when edit distance is poor
// ("Lafleur" vs "Lafleur Pomerol Grand Vin").
const substringBoost = 0.7

// Similarity scores two wine names in [0, 1]. Both names are normalized
// first; the score combines whole-string edit similarity with token-set
// overlap, whichever is stronger.
func Similarity(a, b string) float64 {
	an, bn := Name(a), Name(b)
	if an == "" || bn == "" {
		return 0
	}

	full := levenshtein.Similarity(an, bn, nil)
	if strings.Contains(an, bn) || strings.Contains(bn, an) {
		if full < substringBoost {
			full = substringBoost
		}
	}

	overlap := tokenOverlap(an, bn)
	if combined := overlap * 0.9; combined > full {
		return combined
	}
	return full
}

// tokenOverlap is the Jaccard index of the two names' significant tokens.
func tokenOverlap(a, b string) float64 {
	as, bs := tokenSet(a), tokenSet(b)
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}

	inter := 0
	for tok := range as {
		if bs[tok] {
			inter++
		}
	}
	union := len(as) + len(bs) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		if !fillerWords[tok] {
			set[tok] = true
		}
	}
	return set
}
