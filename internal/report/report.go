// Package report renders run results for humans: the conversion summary
// printed after a run and the review file for matches that need a second
// pair of eyes.
package report

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/avu-sa/winematch/internal/model"
	"github.com/avu-sa/winematch/internal/normalize"
)

// Item pairs an extracted price with its resolution.
type Item struct {
	Extracted model.ExtractedItem `json:"extracted"`
	Match     model.MatchResult   `json:"match"`
}

// NeedsReview reports whether the item belongs in the corrections file.
// Anything below the confident tiers is reviewed.
func (it Item) NeedsReview() bool {
	return !it.Match.Quality.Confident()
}

const rule = "===================================================================================================="
const thinRule = "----------------------------------------------------------------------------------------------------"

// FormatReport renders the run summary and the per-item results table in
// document order.
func FormatReport(items []Item, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString(rule + "\n")
	b.WriteString("WINE PRICE CONVERSION RESULTS\n")
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.Format("2006-01-02 15:04:05"))
	b.WriteString(rule + "\n\n")

	matched := 0
	byQuality := map[model.MatchQuality]int{}
	for _, it := range items {
		if it.Match.ItemNo != 0 {
			matched++
		}
		byQuality[it.Match.Quality]++
	}

	b.WriteString("SUMMARY\n")
	b.WriteString(thinRule + "\n")
	fmt.Fprintf(&b, "Prices processed:  %d\n", len(items))
	if len(items) > 0 {
		fmt.Fprintf(&b, "Matched to items:  %d (%.1f%%)\n", matched, float64(matched)/float64(len(items))*100)
		fmt.Fprintf(&b, "Unmatched:         %d (%.1f%%)\n", len(items)-matched, float64(len(items)-matched)/float64(len(items))*100)
	}
	for _, q := range []model.MatchQuality{
		model.QualityLearned, model.QualityItemNo, model.QualityExactUnique,
		model.QualityExactFiltered, model.QualityFuzzyName,
		model.QualityPriceProximity, model.QualityFallback, model.QualityNoMatch,
	} {
		if n := byQuality[q]; n > 0 {
			fmt.Fprintf(&b, "  %-16s %d\n", string(q)+":", n)
		}
	}
	b.WriteString("\n")

	b.WriteString("RESULTS\n")
	b.WriteString(thinRule + "\n")
	fmt.Fprintf(&b, "%-4s %-40s %-8s %10s %10s %-10s %s\n",
		"#", "Wine", "Vintage", "Source", "Target", "Item No.", "Quality")
	for _, it := range items {
		name := it.Extracted.WineName
		if name == "" {
			name = "(unidentified)"
		}
		if utf8.RuneCountInString(name) > 40 {
			name = string([]rune(name)[:37]) + "..."
		}

		itemNo := "-"
		if it.Match.ItemNo != 0 {
			itemNo = fmt.Sprintf("%d", it.Match.ItemNo)
		}

		fmt.Fprintf(&b, "%-4d %-40s %-8s %10.2f %10.2f %-10s %s\n",
			it.Extracted.Position, name, normalize.VintageKey(it.Extracted.Vintage),
			it.Extracted.SourcePrice, it.Match.TargetPrice, itemNo, it.Match.Quality)
	}

	return b.String()
}
