package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avu-sa/winematch/internal/config"
	"github.com/avu-sa/winematch/internal/learned"
	"github.com/avu-sa/winematch/internal/model"
)

const testCatalogCSV = `No.,Wine Name,Producer Name,Vintage Code,Size
4501,Château Cantemerle,Cantemerle,2016,75
5001,Château Lafleur,Lafleur,2022,75
`

const testOffersCSV = `Item No.,Unit Price,Unit Price (EUR),Minimum Quantity,Campaign Type,Campaign Sub-Type,Campaign Status,Competitor Code,Schedule DateTime
4501,29.00,31.50,0,PRIVATE,Normal,Sent,,2025-06-01 09:00:00
5001,1150.00,1242.00,0,PRIVATE,Normal,Sent,,2025-06-01 09:00:00
`

func newTestPipeline(t *testing.T, input string) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()

	catalogPath := filepath.Join(dir, "catalog.csv")
	offersPath := filepath.Join(dir, "offers.csv")
	inputPath := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalogCSV), 0o644))
	require.NoError(t, os.WriteFile(offersPath, []byte(testOffersCSV), 0o644))
	require.NoError(t, os.WriteFile(inputPath, []byte(input), 0o644))

	cfg := &config.Config{
		Paths: config.PathsConfig{
			Catalog:      catalogPath,
			Offers:       offersPath,
			LearnedStore: filepath.Join(dir, "learned.txt"),
			Input:        inputPath,
			OutputDir:    filepath.Join(dir, "outputs"),
		},
		Matching: config.MatchingConfig{
			FXRate:              1.08,
			FuzzyThreshold:      1.0,
			SimilarityThreshold: 0.5,
			RoundAbove:          300,
			BulkQuantity:        36,
		},
		Extract: config.ExtractConfig{
			Currency:       "CHF",
			CurrencyAbbrev: "CH",
			TargetCurrency: "EUR",
			NameWindow:     400,
			VintageWindow:  600,
		},
	}

	p := New(cfg, learned.NewFileStore(cfg.Paths.LearnedStore))
	p.now = func() time.Time { return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) }
	return p, dir
}

func TestRun_EndToEnd(t *testing.T) {
	p, _ := newTestPipeline(t, "Château Cantemerle 2016: great value at CHF 29.00 per bottle")

	result, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	assert.Equal(t, model.QualityItemNo, item.Match.Quality)
	assert.Equal(t, 4501, item.Match.ItemNo)
	assert.Equal(t, 31.50, item.Match.TargetPrice)

	assert.Equal(t, "Château Cantemerle 2016: great value at EUR 31.50 per bottle", result.ConvertedText)

	// Outputs written.
	converted, err := os.ReadFile(result.ConvertedPath)
	require.NoError(t, err)
	assert.Equal(t, result.ConvertedText, string(converted))

	reportData, err := os.ReadFile(result.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(reportData), "item-no")

	assert.Empty(t, result.CorrectionsPath, "confident matches need no review file")

	// Confident match fed back into the learned store.
	assert.Equal(t, 1, result.LearnedAdded)
	lookup, _, err := learned.NewFileStore(p.cfg.Paths.LearnedStore).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4501, lookup[learned.NewKey("Château Cantemerle", "2016")])
}

func TestRun_LearnedLookup(t *testing.T) {
	p, _ := newTestPipeline(t, "Lafleur 2022 is offered at 1150.00 CHF today")

	store := learned.NewFileStore(p.cfg.Paths.LearnedStore)
	_, _, err := store.Append(context.Background(), []learned.Entry{
		{WineName: "Lafleur", VintageKey: "2022", ItemNo: 5001},
	})
	require.NoError(t, err)

	result, err := p.Run(context.Background(), RunOptions{DryRun: true})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	assert.Equal(t, model.QualityLearned, result.Items[0].Match.Quality)
	assert.Equal(t, 5001, result.Items[0].Match.ItemNo)
	// 1150 > 300: 1242 rounds up to 1245.
	assert.Equal(t, 1245.00, result.Items[0].Match.TargetPrice)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	p, _ := newTestPipeline(t, "Château Cantemerle 2016: CHF 29.00")

	result, err := p.Run(context.Background(), RunOptions{DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, result.ConvertedPath)
	assert.Zero(t, result.LearnedAdded)
	_, statErr := os.Stat(p.cfg.Paths.OutputDir)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(p.cfg.Paths.LearnedStore)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_NoLearn(t *testing.T) {
	p, _ := newTestPipeline(t, "Château Cantemerle 2016: CHF 29.00")

	result, err := p.Run(context.Background(), RunOptions{NoLearn: true})
	require.NoError(t, err)

	assert.NotEmpty(t, result.ConvertedPath)
	assert.Zero(t, result.LearnedAdded)
	_, statErr := os.Stat(p.cfg.Paths.LearnedStore)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_FallbackAndCorrections(t *testing.T) {
	p, _ := newTestPipeline(t, "Unknown Wine 2019: special offer CHF 77.00 this week")

	result, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	// 77.00 has no offer: arithmetic fallback floor(77 * 1.08) = 83.
	assert.Equal(t, model.QualityFallback, result.Items[0].Match.Quality)
	assert.Equal(t, 83.00, result.Items[0].Match.TargetPrice)
	assert.Contains(t, result.ConvertedText, "EUR 83.00")

	require.NotEmpty(t, result.CorrectionsPath)
	data, err := os.ReadFile(result.CorrectionsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "YOUR_ITEM_NO_HERE")

	assert.Zero(t, result.LearnedAdded, "fallbacks are never learned")
}

func TestConvert_AbbreviatedMarker(t *testing.T) {
	p, _ := newTestPipeline(t, "unused")

	text := "Château Cantemerle 2016: 29.00 CH , ex cellar"
	out := p.convert(text, nil)
	assert.Equal(t, "Château Cantemerle 2016: 29.00 EUR , ex cellar", out)
	assert.Contains(t, out, "Château", "estate names keep their CH prefix")
}
