package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/avu-sa/winematch/internal/model"
)

// Context probe windows around a price, in characters. Quantity and size
// hints must sit tight against the price or they belong to another wine.
const (
	quantityBefore = 30
	quantityAfter  = 35
	sizeBefore     = 50
	vintageAfter   = 100
)

var (
	colonLabelRe   = regexp.MustCompile(`([A-ZÀ-ÿ][^\n:]{3,60}):\s*`)
	quotedRe       = regexp.MustCompile(`["“”]([^"“”]{3,60})["“”]`)
	estateRe       = regexp.MustCompile(`\b([CcDd]h[âa]teau|Domaine|Dom\.)\s+([A-ZÀ-ÿ][^\n:,.]{3,40})`)
	lineLabelRe    = regexp.MustCompile(`^([A-ZÀ-ÿ][^\n:–-]{3,60}?)[:–-]`)
	capPhraseRe    = regexp.MustCompile(`\b[A-ZÀ-Þ][a-zà-ÿ]+(?:\s+[A-ZÀ-Þ][a-zà-ÿ]+){0,3}`)
	priceNoiseRe   = regexp.MustCompile(`(?i)chf|price|offer`)
	trailingYearRe = regexp.MustCompile(`\s+\d{4}\s*$`)
	noiseTailRe    = regexp.MustCompile(`(?i)\s+(at|from|for|with|price|the|a|an)$`)
	capitalRe      = regexp.MustCompile(`[A-ZÀ-ÿ]`)
	emojiRe        = regexp.MustCompile(`[✨💎💼🍷🏆⭐🎯]`)

	yearRe = regexp.MustCompile(`\b(199\d|20[0-3]\d)\b`)
	nvRe   = regexp.MustCompile(`\bN\.?V\.?\b`)

	magnumRe = regexp.MustCompile(`(?i)\bmagnum\b`)

	qtyTimesRe       = regexp.MustCompile(`36\s*x\b`)
	qtyPlusBottleRe  = regexp.MustCompile(`36\s*\+\s*bottle`)
	qtyPlusAfterRe   = regexp.MustCompile(`^[^a-z]*36\s*\+\s*bottle`)
	qtyTakeRe        = regexp.MustCompile(`if\s+you\s+take\s+36\s+bottle`)
	qtyBottlesAtRe   = regexp.MustCompile(`36\s+bottles?\s*(at|for)?\s*chf`)
)

// wineName scans the window before a price for name candidates and returns
// the longest cleaned one. The first colon-delimited label in the window is
// usually the wine heading; quoted names, estate phrases and the current
// line's label are fallbacks.
func (e *Extractor) wineName(text string, pos int) string {
	before := window(text, pos-e.opts.NameWindow, pos)

	var candidates []string

	colons := colonLabelRe.FindAllStringSubmatch(before, -1)
	if len(colons) > 0 {
		candidates = append(candidates, colons[0][1])
		if last := colons[len(colons)-1][1]; last != colons[0][1] && !priceNoiseRe.MatchString(last) {
			candidates = append(candidates, last)
		}
	}

	for _, m := range quotedRe.FindAllStringSubmatch(before, -1) {
		if capitalRe.MatchString(m[1]) {
			candidates = append(candidates, m[1])
		}
	}

	for _, m := range estateRe.FindAllStringSubmatch(before, -1) {
		candidates = append(candidates, m[1]+" "+m[2])
	}

	// Plain capitalized phrases near the price catch names with no other
	// markup at all ("Lafleur 2022 is offered at ..."). Only the last few
	// are plausible.
	if phrases := capPhraseRe.FindAllString(before, -1); len(phrases) > 0 {
		lo := len(phrases) - 3
		if lo < 0 {
			lo = 0
		}
		candidates = append(candidates, phrases[lo:]...)
	}

	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		if m := lineLabelRe.FindStringSubmatch(strings.TrimSpace(before[i+1:])); m != nil {
			candidates = append(candidates, m[1])
		}
	} else if m := lineLabelRe.FindStringSubmatch(strings.TrimSpace(before)); m != nil {
		candidates = append(candidates, m[1])
	}

	best := ""
	bestSpaces := -1
	for _, c := range candidates {
		c = cleanCandidate(c)
		if len(c) < 3 {
			continue
		}
		spaces := strings.Count(c, " ")
		if len(c) > len(best) || (len(c) == len(best) && spaces > bestSpaces) {
			best, bestSpaces = c, spaces
		}
	}
	return best
}

func cleanCandidate(c string) string {
	c = emojiRe.ReplaceAllString(c, "")
	c = trailingYearRe.ReplaceAllString(c, "")
	c = noiseTailRe.ReplaceAllString(c, "")
	return strings.Join(strings.Fields(c), " ")
}

// guessProducer derives a producer hint from the extracted name. The first
// token is usually the house ("Krug Grande Cuvée", "Penfolds Grange");
// estate prefixes carry no producer signal on their own.
func guessProducer(name string) string {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return ""
	}
	first := strings.ToLower(fields[0])
	switch first {
	case "château", "chateau", "domaine", "dom.", "ch.", "ch":
		return ""
	}
	return fields[0]
}

// vintage finds the last plausible vintage year mentioned near the price.
// The window reaches well back because vintages usually open the paragraph.
// An explicit NV marker is a known vintage, not a missing one.
func (e *Extractor) vintage(text string, pos int) (int, bool) {
	ctx := window(text, pos-e.opts.VintageWindow, pos+vintageAfter)

	years := yearRe.FindAllString(ctx, -1)
	if len(years) == 0 {
		if nvRe.MatchString(ctx) {
			return model.NonVintage, true
		}
		return model.NonVintage, false
	}

	year, err := strconv.Atoi(years[len(years)-1])
	if err != nil {
		return model.NonVintage, false
	}
	return year, true
}

// bottleSize reads a size hint directly before the price.
func bottleSize(text string, pos int) float64 {
	if magnumRe.MatchString(window(text, pos-sizeBefore, pos)) {
		return model.SizeMagnum
	}
	return model.SizeStandard
}

// minQuantity detects bulk-quantity phrasing tight around the price.
func minQuantity(text string, pos int) int {
	before := strings.ToLower(window(text, pos-quantityBefore, pos))
	after := strings.ToLower(window(text, pos, pos+quantityAfter))

	tail := before
	if len(tail) > 10 {
		tail = tail[len(tail)-10:]
	}
	switch {
	case qtyTimesRe.MatchString(tail),
		qtyPlusBottleRe.MatchString(before),
		qtyPlusAfterRe.MatchString(after),
		qtyTakeRe.MatchString(after),
		qtyBottlesAtRe.MatchString(before):
		return 36
	}
	return 0
}

// window clamps [lo, hi) to the text bounds.
func window(text string, lo, hi int) string {
	if lo < 0 {
		lo = 0
	}
	if hi > len(text) {
		hi = len(text)
	}
	if lo >= hi {
		return ""
	}
	return text[lo:hi]
}
