package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// amountRe matches decimal amounts, including the Swiss thousands format
// that survives an unsanitized input ("1'500.00").
var amountRe = regexp.MustCompile(`\d+(?:['’]\d{3})*\.\d{2}`)

// yearGuardWindow is how close a currency marker must sit for a bare
// 4-digit integer to count as a price instead of a vintage year.
const yearGuardWindow = 20

type span struct {
	start, end int
	value      float64
}

// findPrices locates every price amount in the text, in document order.
// Decimal amounts always qualify; integer amounts need a currency marker
// next to them, and integer amounts that look like years are dropped unless
// a currency marker sits within the guard window.
func (e *Extractor) findPrices(text string) []span {
	var spans []span

	overlaps := func(start, end int) bool {
		for _, sp := range spans {
			if start < sp.end && end > sp.start {
				return true
			}
		}
		return false
	}

	add := func(start, end int) {
		if overlaps(start, end) {
			return
		}
		value, err := parseAmount(text[start:end])
		if err != nil {
			return
		}
		if e.isBareYear(text, start, end, value) {
			return
		}
		spans = append(spans, span{start: start, end: end, value: value})
	}

	for _, m := range amountRe.FindAllStringIndex(text, -1) {
		add(m[0], m[1])
	}

	// "CHF 100" without decimals. The amount must not continue with a
	// decimal point or more digits; those were claimed above.
	for _, m := range e.noDecimalRe.FindAllStringSubmatchIndex(text, -1) {
		if next := m[3]; next < len(text) && (text[next] == '.' || isDigit(text[next])) {
			continue
		}
		add(m[2], m[3])
	}

	// "190 CHF" without decimals. Reject digit runs that are the tail of a
	// decimal amount ("230.00 CHF" must not also yield "00").
	for _, m := range e.numberThenCurRe.FindAllStringSubmatchIndex(text, -1) {
		if prev := m[2] - 1; prev >= 0 && (text[prev] == '.' || isDigit(text[prev])) {
			continue
		}
		add(m[2], m[3])
	}

	// Abbreviated marker left by truncated mails: "29.00 CH ". Only decimal
	// amounts, already found above; nothing new to add, but kept here as
	// documentation of the accepted form.

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}

// isBareYear reports whether an integer amount in the 4-digit range is a
// vintage year rather than a price. A currency marker within the guard
// window overrides.
func (e *Extractor) isBareYear(text string, start, end int, value float64) bool {
	if value != float64(int(value)) {
		return false
	}
	n := int(value)
	if n < 1000 || n > 9999 {
		return false
	}

	lo := start - yearGuardWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + yearGuardWindow
	if hi > len(text) {
		hi = len(text)
	}
	return !e.currencyNearRe.MatchString(text[lo:hi])
}

func parseAmount(raw string) (float64, error) {
	raw = strings.NewReplacer("'", "", "’", "").Replace(raw)
	return strconv.ParseFloat(raw, 64)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
