package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/avu-sa/winematch/internal/model"
	"github.com/avu-sa/winematch/internal/report"
)

// convert rewrites the sanitized input text: every resolved amount is
// replaced by its target value, then the currency markers are swapped.
// Amount spans are replaced back to front so earlier offsets stay valid.
func (p *Pipeline) convert(text string, items []report.Item) string {
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if it.Match.Quality == model.QualityNoMatch {
			continue
		}
		text = text[:it.Extracted.Start] +
			fmt.Sprintf("%.2f", it.Match.TargetPrice) +
			text[it.Extracted.End:]
	}

	return p.swapCurrencyMarkers(text)
}

// swapCurrencyMarkers rewrites the source currency word into the target
// one, plus the truncated marker some mail clients leave ("29.00 CH ,").
// The truncated form is only swapped directly after an amount; elsewhere
// two capital letters are much more likely a real word or abbreviation.
func (p *Pipeline) swapCurrencyMarkers(text string) string {
	cur := regexp.QuoteMeta(p.cfg.Extract.Currency)
	target := p.cfg.Extract.TargetCurrency

	// No word boundaries: the marker also appears glued to amounts
	// ("33.00CHF") and those must swap too.
	wordRe := regexp.MustCompile(`(?i)` + cur)
	text = wordRe.ReplaceAllString(text, target)

	if abbrev := strings.TrimSpace(p.cfg.Extract.CurrencyAbbrev); abbrev != "" {
		abbrevRe := regexp.MustCompile(`(\d\.\d{2})\s+` + regexp.QuoteMeta(abbrev) + `\b`)
		text = abbrevRe.ReplaceAllString(text, "$1 "+target)
	}

	return text
}
