package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/avu-sa/winematch/internal/learned"
	"github.com/avu-sa/winematch/internal/model"
	"github.com/avu-sa/winematch/internal/normalize"
)

// Placeholder a reviewer replaces with the real item number.
const itemNoPlaceholder = "YOUR_ITEM_NO_HERE"

// FormatCorrections renders the review file for items that need a human
// decision. Returns "" when nothing needs review.
func FormatCorrections(items []Item, generatedAt time.Time) string {
	var review []Item
	for _, it := range items {
		if it.NeedsReview() {
			review = append(review, it)
		}
	}
	if len(review) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("WINE CORRECTIONS FILE\n")
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.Format("2006-01-02 15:04:05"))
	b.WriteString(rule + "\n\n")

	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString(thinRule + "\n")
	b.WriteString("1. For each wine below, look up the correct item number in the catalog\n")
	fmt.Fprintf(&b, "2. Replace '%s' with the actual item number\n", itemNoPlaceholder)
	b.WriteString("3. Run: winematch corrections apply\n")
	b.WriteString("   (the most recent corrections file is picked up automatically)\n\n")
	b.WriteString("Format: Wine Name | Vintage | Item No. | Notes\n")
	b.WriteString(rule + "\n\n")

	for i, it := range review {
		name := it.Extracted.WineName
		if name == "" {
			name = "(unidentified)"
		}

		fmt.Fprintf(&b, "[%d] %s\n", i+1, contextLine(it.Extracted))

		vintage := normalize.VintageKey(it.Extracted.Vintage)
		if it.Match.ItemNo == 0 {
			fmt.Fprintf(&b, "%s | %s | %s | NOT FOUND - please add the correct item number\n\n",
				name, vintage, itemNoPlaceholder)
			continue
		}

		matchedName := ""
		if it.Match.Catalog != nil {
			matchedName = it.Match.Catalog.WineName
		}
		fmt.Fprintf(&b, "%s | %s | %d | LOW CONFIDENCE (%s) - matched to '%s', verify\n\n",
			name, vintage, it.Match.ItemNo, it.Match.Quality, matchedName)
	}

	return b.String()
}

// WriteCorrections writes the review file into dir, named with the run
// timestamp. Returns the written path, or "" when nothing needed review.
func WriteCorrections(dir string, items []Item, generatedAt time.Time) (string, error) {
	content := FormatCorrections(items, generatedAt)
	if content == "" {
		return "", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "report: create output dir")
	}

	path := filepath.Join(dir, fmt.Sprintf("%s%s.txt",
		learned.CorrectionsPrefix, generatedAt.Format("20060102_150405")))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", eris.Wrap(err, "report: write corrections file")
	}
	return path, nil
}

// contextLine is a one-line reminder of where the price sat in the text.
func contextLine(item model.ExtractedItem) string {
	parts := []string{}
	if item.WineName != "" {
		parts = append(parts, item.WineName)
	}
	if item.HasVintage {
		parts = append(parts, normalize.VintageKey(item.Vintage))
	}
	parts = append(parts, fmt.Sprintf("%.2f (price #%d)", item.SourcePrice, item.Position))
	return strings.Join(parts, " ")
}
