// Package pipeline orchestrates a conversion run: load reference data and
// the learned store, extract prices from the input text, resolve each one,
// render the converted text and the reports, and feed confirmed matches
// back into the learned store.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/avu-sa/winematch/internal/config"
	"github.com/avu-sa/winematch/internal/extract"
	"github.com/avu-sa/winematch/internal/learned"
	"github.com/avu-sa/winematch/internal/model"
	"github.com/avu-sa/winematch/internal/normalize"
	"github.com/avu-sa/winematch/internal/refdata"
	"github.com/avu-sa/winematch/internal/report"
	"github.com/avu-sa/winematch/internal/resolve"
)

// Pipeline runs conversions against one configuration and learned store.
type Pipeline struct {
	cfg   *config.Config
	store learned.Store
	log   *zap.Logger

	// now is swappable for deterministic output names in tests.
	now func() time.Time
}

// RunOptions modifies a single run.
type RunOptions struct {
	DryRun  bool // resolve and report, but write no files and learn nothing
	NoLearn bool // write outputs but do not append to the learned store
}

// Result is everything a run produced.
type Result struct {
	Items         []report.Item
	ConvertedText string
	Report        string

	ConvertedPath   string
	ReportPath      string
	CorrectionsPath string

	LearnedAdded   int
	LearnedSkipped int
}

// New creates a pipeline.
func New(cfg *config.Config, store learned.Store) *Pipeline {
	return &Pipeline{
		cfg:   cfg,
		store: store,
		log:   zap.L().With(zap.String("component", "pipeline")),
		now:   time.Now,
	}
}

// Run executes one conversion over the configured input file.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	catalog, offers, err := refdata.Load(p.cfg.Paths.Catalog, p.cfg.Paths.Offers)
	if err != nil {
		return nil, err
	}
	p.log.Info("reference data loaded",
		zap.Int("catalog_records", catalog.Len()), zap.Int("offers", offers.Len()))

	learnedMap, _, err := p.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	p.log.Info("learned store loaded", zap.Int("mappings", len(learnedMap)))

	raw, err := os.ReadFile(p.cfg.Paths.Input)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: read input")
	}

	result := p.Process(string(raw), catalog, offers, learnedMap)

	if opts.DryRun {
		return result, nil
	}

	if err := p.writeOutputs(result); err != nil {
		return nil, err
	}

	if !opts.NoLearn {
		added, skipped, err := p.learnFrom(ctx, result.Items)
		if err != nil {
			return nil, err
		}
		result.LearnedAdded, result.LearnedSkipped = added, skipped
	}

	return result, nil
}

// Process runs extraction, resolution and rendering over in-memory inputs.
// It writes nothing; Run wraps it with the file I/O.
func (p *Pipeline) Process(text string, catalog *refdata.Catalog, offers *refdata.OfferBook, learnedMap map[learned.Key]int) *Result {
	// Extraction spans index into the sanitized text, so the replacement
	// pass must run over the same form.
	text = extract.Sanitize(text)

	extractor := extract.New(extract.Options{
		Currency:       p.cfg.Extract.Currency,
		CurrencyAbbrev: p.cfg.Extract.CurrencyAbbrev,
		NameWindow:     p.cfg.Extract.NameWindow,
		VintageWindow:  p.cfg.Extract.VintageWindow,
	})
	extracted := extractor.Extract(text)
	p.log.Info("prices extracted", zap.Int("count", len(extracted)))

	resolver := resolve.New(catalog, offers, learnedMap, resolve.Options{
		FXRate:              p.cfg.Matching.FXRate,
		FuzzyThreshold:      p.cfg.Matching.FuzzyThreshold,
		SimilarityThreshold: p.cfg.Matching.SimilarityThreshold,
		RoundAbove:          p.cfg.Matching.RoundAbove,
		BulkQuantity:        p.cfg.Matching.BulkQuantity,
	})

	items := make([]report.Item, 0, len(extracted))
	for _, ex := range extracted {
		match := resolver.Resolve(ex)
		p.log.Debug("price resolved",
			zap.Int("position", ex.Position),
			zap.Float64("source", ex.SourcePrice),
			zap.Float64("target", match.TargetPrice),
			zap.String("quality", string(match.Quality)))
		items = append(items, report.Item{Extracted: ex, Match: match})
	}

	now := p.now()
	return &Result{
		Items:         items,
		ConvertedText: p.convert(text, items),
		Report:        report.FormatReport(items, now),
	}
}

func (p *Pipeline) writeOutputs(result *Result) error {
	outDir := p.cfg.Paths.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return eris.Wrap(err, "pipeline: create output dir")
	}

	stamp := p.now().Format("20060102_150405")

	result.ConvertedPath = filepath.Join(outDir, fmt.Sprintf("Converted_%s.txt", stamp))
	if err := os.WriteFile(result.ConvertedPath, []byte(result.ConvertedText), 0o644); err != nil {
		return eris.Wrap(err, "pipeline: write converted text")
	}

	result.ReportPath = filepath.Join(outDir, fmt.Sprintf("Results_%s.txt", stamp))
	if err := os.WriteFile(result.ReportPath, []byte(result.Report), 0o644); err != nil {
		return eris.Wrap(err, "pipeline: write report")
	}

	path, err := report.WriteCorrections(outDir, result.Items, p.now())
	if err != nil {
		return err
	}
	result.CorrectionsPath = path

	return nil
}

// learnableQualities are the tiers trusted enough to seed the learned
// store without a human in the loop. Learned matches are already stored;
// proximity and fallback guesses never are.
var learnableQualities = map[model.MatchQuality]bool{
	model.QualityItemNo:        true,
	model.QualityExactUnique:   true,
	model.QualityExactFiltered: true,
	model.QualityFuzzyName:     true,
}

func (p *Pipeline) learnFrom(ctx context.Context, items []report.Item) (int, int, error) {
	var entries []learned.Entry
	for _, it := range items {
		if it.Extracted.WineName == "" || it.Match.ItemNo == 0 {
			continue
		}
		if !learnableQualities[it.Match.Quality] {
			continue
		}
		entries = append(entries, learned.Entry{
			WineName:   it.Extracted.WineName,
			VintageKey: normalize.VintageKey(it.Extracted.Vintage),
			ItemNo:     it.Match.ItemNo,
		})
	}
	if len(entries) == 0 {
		return 0, 0, nil
	}

	added, skipped, err := p.store.Append(ctx, entries)
	if err != nil {
		return 0, 0, err
	}
	p.log.Info("learned store updated", zap.Int("added", added), zap.Int("skipped", skipped))
	return added, skipped, nil
}
