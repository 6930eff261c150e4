package resolve

import (
	"math"

	"github.com/avu-sa/winematch/internal/model"
	"github.com/avu-sa/winematch/internal/normalize"
)

// Fuzzy score weights. The name dominates, the producer corroborates, and
// price proximity only breaks ties between equally plausible names.
const (
	weightName      = 2.0
	weightProducer  = 1.5
	weightProximity = 0.5
)

// fromFuzzy scores every candidate against the extracted context and
// accepts the best one if it clears the combined threshold.
func (r *Resolver) fromFuzzy(item model.ExtractedItem, candidates []model.OfferRecord) (model.MatchResult, bool) {
	best := model.OfferRecord{}
	bestScore := -1.0

	for _, o := range candidates {
		rec, ok := r.catalog.ByItemNo(o.ItemNo)
		if !ok {
			continue
		}

		score := 0.0
		if item.WineName != "" {
			if sim := normalize.Similarity(item.WineName, rec.WineName); sim >= r.opts.SimilarityThreshold {
				score += sim * weightName
			}
		}
		if item.Producer != "" && rec.Producer != "" {
			score += normalize.Similarity(item.Producer, rec.Producer) * weightProducer
		}
		score += r.priceProximity(item.SourcePrice, o.TargetPrice) * weightProximity

		if score > bestScore {
			best, bestScore = o, score
		}
	}

	if bestScore < r.opts.FuzzyThreshold {
		return model.MatchResult{}, false
	}
	return r.result(best, model.QualityFuzzyName, bestScore), true
}

// priceProximity maps the distance between a candidate target price and the
// arithmetic conversion onto [0, 1], 1 meaning identical.
func (r *Resolver) priceProximity(sourcePrice, targetPrice float64) float64 {
	expected := sourcePrice * r.opts.FXRate
	if expected == 0 {
		return 0
	}
	return math.Max(0, 1.0-math.Abs(targetPrice-expected)/expected)
}
