// Package extract finds source-currency prices in free-text wine offers and
// captures the context needed to identify each one: wine name, vintage,
// bottle size and minimum quantity. Price lists are pasted from mails and
// chat threads, so the text is noisy and nothing about its layout can be
// trusted beyond proximity.
package extract

import (
	"regexp"
	"strings"

	"github.com/avu-sa/winematch/internal/model"
)

// Options tunes price detection. The zero value is unusable; start from
// DefaultOptions.
type Options struct {
	Currency       string // currency word, e.g. "CHF"
	CurrencyAbbrev string // truncated marker sometimes left by mail clients, e.g. "CH"
	NameWindow     int    // chars before a price searched for the wine name
	VintageWindow  int    // chars before a price searched for a vintage year
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{
		Currency:       "CHF",
		CurrencyAbbrev: "CH",
		NameWindow:     400,
		VintageWindow:  600,
	}
}

// Extractor detects prices for one currency configuration.
type Extractor struct {
	opts Options

	noDecimalRe     *regexp.Regexp // "CHF 100", "CHF 1'500"
	numberThenCurRe *regexp.Regexp // "190 CHF"
	currencyNearRe  *regexp.Regexp // year guard context probe
}

// New compiles an extractor for the given options.
func New(opts Options) *Extractor {
	cur := regexp.QuoteMeta(opts.Currency)
	return &Extractor{
		opts:            opts,
		noDecimalRe:     regexp.MustCompile(`(?i)` + cur + `\s+(\d+(?:['’]\d{3})*)`),
		numberThenCurRe: regexp.MustCompile(`(?i)(\d+(?:['’]\d{3})*)\s+` + cur),
		currencyNearRe:  regexp.MustCompile(`(?i)\b(` + cur + `|eur)\b`),
	}
}

// pairWindow is how far past a price the "// second price" bulk notation is
// honored. Beyond this the two prices belong to different wines.
const pairWindow = 100

var pairBulkRe = regexp.MustCompile(`(?i)(36|for\s+36)`)

// Extract returns every detected price in document order, with context.
func (e *Extractor) Extract(text string) []model.ExtractedItem {
	text = Sanitize(text)
	spans := e.findPrices(text)

	items := make([]model.ExtractedItem, 0, len(spans))
	for i, sp := range spans {
		name := e.wineName(text, sp.start)
		vintage, hasVintage := e.vintage(text, sp.start)
		size := bottleSize(text, sp.start)

		if size == model.SizeMagnum && name != "" && !strings.Contains(strings.ToLower(name), "magnum") {
			name += " Magnum"
		}

		items = append(items, model.ExtractedItem{
			Position:    i + 1,
			Start:       sp.start,
			End:         sp.end,
			RawText:     text[sp.start:sp.end],
			SourcePrice: sp.value,
			WineName:    name,
			Producer:    guessProducer(name),
			Vintage:     vintage,
			HasVintage:  hasVintage,
			Size:        size,
			MinQuantity: minQuantity(text, sp.start),
		})
	}

	e.pairBulkPrices(text, items)
	return items
}

// pairBulkPrices handles the "29.00 // 26.00 for 36+" notation: the price
// after the double slash is the same wine's bulk tier. The second item
// inherits the first one's identity and gets the bulk quantity.
func (e *Extractor) pairBulkPrices(text string, items []model.ExtractedItem) {
	for i := 0; i+1 < len(items); i++ {
		between := text[items[i].End:items[i+1].Start]
		if len(between) > pairWindow {
			continue
		}
		// The quantity hint usually trails the second price ("// 26.00 for
		// 36+"), so the probe reaches a little past it.
		hint := window(text, items[i].End, items[i+1].End+40)
		if !strings.Contains(between, "//") || !pairBulkRe.MatchString(hint) {
			continue
		}

		items[i+1].WineName = items[i].WineName
		items[i+1].Producer = items[i].Producer
		items[i+1].Vintage = items[i].Vintage
		items[i+1].HasVintage = items[i].HasVintage
		items[i+1].Size = items[i].Size
		items[i+1].MinQuantity = 36
	}
}

var (
	// digit'digit thousands separators, straight or curly.
	apostropheRe = regexp.MustCompile(`(\d)['’‘ʼ](\d)`)
	// "1150.0.00" and "1150...00" artifacts from copy-pasted documents.
	doubleDecimalRe = regexp.MustCompile(`(\d+)\.\d\.(\d{2})`)
	dotRunRe        = regexp.MustCompile(`(\d+)\.{2,}(\d{2})`)
)

// Sanitize normalizes number renderings before extraction: thousands
// apostrophes are dropped and malformed decimals repaired. Extraction and
// replacement both operate on the sanitized text so spans stay valid.
func Sanitize(text string) string {
	for apostropheRe.MatchString(text) {
		text = apostropheRe.ReplaceAllString(text, "$1$2")
	}
	text = doubleDecimalRe.ReplaceAllString(text, "$1.$2")
	text = dotRunRe.ReplaceAllString(text, "$1.$2")
	return text
}
