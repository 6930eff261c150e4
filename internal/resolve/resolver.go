// Package resolve binds extracted prices to catalog items and their
// target-currency amounts. Resolution is a confidence cascade: learned
// mappings and identifier closure first, then structural narrowing, then
// fuzzy name scoring, and finally arithmetic fallback when the catalog has
// nothing to offer.
package resolve

import (
	"math"

	"go.uber.org/zap"

	"github.com/avu-sa/winematch/internal/learned"
	"github.com/avu-sa/winematch/internal/model"
	"github.com/avu-sa/winematch/internal/normalize"
	"github.com/avu-sa/winematch/internal/refdata"
)

// Options holds the resolver tunables.
type Options struct {
	FXRate              float64 // source→target conversion anchor
	FuzzyThreshold      float64 // minimum combined score to accept a fuzzy match
	SimilarityThreshold float64 // minimum single-name similarity to count at all
	RoundAbove          float64 // source prices above this get the 5-step rounding
	BulkQuantity        int     // minimum quantity that marks a bulk tier
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{
		FXRate:              1.08,
		FuzzyThreshold:      1.0,
		SimilarityThreshold: 0.5,
		RoundAbove:          300,
		BulkQuantity:        36,
	}
}

// Resolver resolves extracted items against loaded reference data.
type Resolver struct {
	opts    Options
	catalog *refdata.Catalog
	offers  *refdata.OfferBook
	learned map[learned.Key]int
	log     *zap.Logger
}

// New builds a resolver. learnedMap may be nil when no store is loaded.
func New(catalog *refdata.Catalog, offers *refdata.OfferBook, learnedMap map[learned.Key]int, opts Options) *Resolver {
	return &Resolver{
		opts:    opts,
		catalog: catalog,
		offers:  offers,
		learned: learnedMap,
		log:     zap.L().With(zap.String("component", "resolve")),
	}
}

// Resolve runs the cascade for one extracted item.
func (r *Resolver) Resolve(item model.ExtractedItem) model.MatchResult {
	if item.SourcePrice <= 0 {
		return model.MatchResult{Quality: model.QualityNoMatch}
	}

	if res, ok := r.fromLearned(item); ok {
		return r.rounded(item, res)
	}
	if res, ok := r.fromItemNoClosure(item); ok {
		return r.rounded(item, res)
	}

	candidates := r.cleanAtPrice(item.SourcePrice)
	if len(candidates) == 0 {
		return r.fallback(item)
	}

	if len(candidates) == 1 {
		return r.rounded(item, r.result(candidates[0], model.QualityExactUnique, 0))
	}

	filtered := r.applyFilters(item, candidates)
	if len(filtered) == 1 {
		return r.rounded(item, r.result(filtered[0], model.QualityExactFiltered, 0))
	}

	if item.WineName != "" || item.Producer != "" {
		if res, ok := r.fromFuzzy(item, filtered); ok {
			return r.rounded(item, res)
		}
	}

	best := r.closestByPrice(item, filtered)
	return r.rounded(item, r.result(best, model.QualityPriceProximity, 0))
}

// fromLearned resolves through the learned store: the name and vintage were
// confirmed before, so only the offer for that item number at this price
// and quantity has to be located.
func (r *Resolver) fromLearned(item model.ExtractedItem) (model.MatchResult, bool) {
	if item.WineName == "" || len(r.learned) == 0 {
		return model.MatchResult{}, false
	}

	key := learned.NewKey(item.WineName, normalize.VintageKey(item.Vintage))
	itemNo, ok := r.learned[key]
	if !ok {
		return model.MatchResult{}, false
	}

	var matches []model.OfferRecord
	for _, o := range r.offers.ByItemNo(itemNo) {
		if refdata.RoundPrice(o.SourcePrice) == refdata.RoundPrice(item.SourcePrice) &&
			o.MinQuantity == item.MinQuantity &&
			o.CampaignType == model.ChannelPrivate &&
			o.Clean() {
			matches = append(matches, o)
		}
	}
	if len(matches) == 0 {
		r.log.Debug("learned mapping had no matching offer",
			zap.String("wine", item.WineName), zap.Int("item_no", itemNo))
		return model.MatchResult{}, false
	}

	return r.result(latest(matches), model.QualityLearned, 0), true
}

// fromItemNoClosure accepts an offer only when identifier, vintage, size,
// quantity and price all close the loop through the catalog.
func (r *Resolver) fromItemNoClosure(item model.ExtractedItem) (model.MatchResult, bool) {
	if !item.HasVintage {
		return model.MatchResult{}, false
	}

	var matches []model.OfferRecord
	for _, o := range r.cleanAtPrice(item.SourcePrice) {
		if o.MinQuantity != item.MinQuantity {
			continue
		}
		rec, ok := r.catalog.ByItemNo(o.ItemNo)
		if !ok {
			continue
		}
		if rec.Vintage == item.Vintage && rec.Size == item.Size {
			matches = append(matches, o)
		}
	}
	if len(matches) == 0 {
		return model.MatchResult{}, false
	}

	return r.result(latest(matches), model.QualityItemNo, 0), true
}

// cleanAtPrice gathers the eligible offers carrying a price. Competitor
// rows, unsent campaigns and non-Normal sub-types never enter the cascade;
// a lone ineligible offer must not pass as an exact match, and a clean one
// must stay unique when an ineligible row shares its price.
func (r *Resolver) cleanAtPrice(price float64) []model.OfferRecord {
	var out []model.OfferRecord
	for _, o := range r.offers.ByPrice(price) {
		if o.Clean() {
			out = append(out, o)
		}
	}
	return out
}

// fallback converts arithmetically when the offer book has nothing at this
// price: target = floor(source × rate).
func (r *Resolver) fallback(item model.ExtractedItem) model.MatchResult {
	target := math.Floor(item.SourcePrice * r.opts.FXRate)
	if item.SourcePrice > r.opts.RoundAbove {
		target = RoundTo5(target)
	}
	return model.MatchResult{
		TargetPrice: target,
		Quality:     model.QualityFallback,
	}
}

// closestByPrice picks the offer whose target price sits nearest the
// arithmetic conversion.
func (r *Resolver) closestByPrice(item model.ExtractedItem, offers []model.OfferRecord) model.OfferRecord {
	expected := item.SourcePrice * r.opts.FXRate

	best := offers[0]
	bestDiff := math.Abs(best.TargetPrice - expected)
	for _, o := range offers[1:] {
		if diff := math.Abs(o.TargetPrice - expected); diff < bestDiff {
			best, bestDiff = o, diff
		}
	}
	return best
}

// result assembles a match around an offer, attaching the catalog record
// when one exists.
func (r *Resolver) result(offer model.OfferRecord, quality model.MatchQuality, score float64) model.MatchResult {
	res := model.MatchResult{
		ItemNo:      offer.ItemNo,
		TargetPrice: offer.TargetPrice,
		Quality:     quality,
		Score:       score,
		Offer:       &offer,
	}
	if rec, ok := r.catalog.ByItemNo(offer.ItemNo); ok {
		res.Catalog = &rec
	}
	return res
}

// rounded applies the business rounding rule to a finished result.
func (r *Resolver) rounded(item model.ExtractedItem, res model.MatchResult) model.MatchResult {
	if item.SourcePrice > r.opts.RoundAbove {
		res.TargetPrice = RoundTo5(res.TargetPrice)
	}
	return res
}

// latest returns the offer with the most recent schedule time; offers with
// no parseable time sort last.
func latest(offers []model.OfferRecord) model.OfferRecord {
	best := offers[0]
	for _, o := range offers[1:] {
		if o.ScheduleTime.After(best.ScheduleTime) {
			best = o
		}
	}
	return best
}
