package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avu-sa/winematch/internal/learned"
	"github.com/avu-sa/winematch/internal/model"
)

var testTime = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func sampleItems() []Item {
	return []Item{
		{
			Extracted: model.ExtractedItem{
				Position: 1, WineName: "Château Lafleur", Vintage: 2022,
				HasVintage: true, SourcePrice: 1150.00,
			},
			Match: model.MatchResult{
				ItemNo: 5001, TargetPrice: 1245.00, Quality: model.QualityLearned,
			},
		},
		{
			Extracted: model.ExtractedItem{
				Position: 2, WineName: "Mystery Wine", SourcePrice: 42.00,
			},
			Match: model.MatchResult{
				ItemNo: 7, TargetPrice: 45.50, Quality: model.QualityPriceProximity,
				Catalog: &model.CatalogRecord{ItemNo: 7, WineName: "Wine A"},
			},
		},
		{
			Extracted: model.ExtractedItem{Position: 3, SourcePrice: 100.00},
			Match:     model.MatchResult{TargetPrice: 108.00, Quality: model.QualityFallback},
		},
	}
}

func TestFormatReport(t *testing.T) {
	out := FormatReport(sampleItems(), testTime)

	assert.Contains(t, out, "WINE PRICE CONVERSION RESULTS")
	assert.Contains(t, out, "Generated: 2025-06-01 10:00:00")
	assert.Contains(t, out, "Prices processed:  3")
	assert.Contains(t, out, "Matched to items:  2 (66.7%)")
	assert.Contains(t, out, "learned:")
	assert.Contains(t, out, "Château Lafleur")
	assert.Contains(t, out, "(unidentified)")

	// Document order preserved.
	first := strings.Index(out, "Château Lafleur")
	second := strings.Index(out, "Mystery Wine")
	assert.Less(t, first, second)
}

func TestFormatCorrections(t *testing.T) {
	out := FormatCorrections(sampleItems(), testTime)

	assert.NotContains(t, out, "Château Lafleur", "confident matches are not reviewed")
	assert.Contains(t, out, "Mystery Wine | NV | 7 | LOW CONFIDENCE (price-proximity)")
	assert.Contains(t, out, "matched to 'Wine A'")
	assert.Contains(t, out, "(unidentified) | NV | YOUR_ITEM_NO_HERE | NOT FOUND")
}

func TestFormatCorrections_NothingToReview(t *testing.T) {
	items := []Item{{
		Extracted: model.ExtractedItem{Position: 1, SourcePrice: 10},
		Match:     model.MatchResult{ItemNo: 1, Quality: model.QualityItemNo},
	}}
	assert.Empty(t, FormatCorrections(items, testTime))
}

func TestWriteCorrections(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs")

	path, err := WriteCorrections(dir, sampleItems(), testTime)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "CORRECTIONS_NEEDED_20250601_100000.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// The file round-trips through the corrections parser: the uncorrected
	// placeholder is skipped, the low-confidence line parses.
	tmp := filepath.Join(dir, "roundtrip.txt")
	require.NoError(t, os.WriteFile(tmp, data, 0o644))
	entries, err := learned.ParseCorrections(tmp)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Mystery Wine", entries[0].WineName)
	assert.Equal(t, 7, entries[0].ItemNo)
}

func TestWriteCorrections_Empty(t *testing.T) {
	path, err := WriteCorrections(t.TempDir(), nil, testTime)
	require.NoError(t, err)
	assert.Empty(t, path)
}
