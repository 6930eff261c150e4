package resolve

import "github.com/avu-sa/winematch/internal/model"

// applyFilters narrows price-matched candidates structurally. Every filter
// is non-destructive: a filter that would leave nothing keeps the previous
// set instead, so a wrong context hint degrades confidence rather than
// losing the match.
func (r *Resolver) applyFilters(item model.ExtractedItem, candidates []model.OfferRecord) []model.OfferRecord {
	out := narrow(candidates, func(o model.OfferRecord) bool {
		return o.CampaignSub == model.SubTypeNormal
	})

	out = narrow(out, func(o model.OfferRecord) bool {
		rec, ok := r.catalog.ByItemNo(o.ItemNo)
		return ok && rec.Size == item.Size
	})

	out = r.filterQuantity(item, out)

	out = narrow(out, func(o model.OfferRecord) bool {
		return o.CompetitorCode == ""
	})

	if item.MinQuantity == 0 && len(out) > 1 {
		out = narrow(out, func(o model.OfferRecord) bool {
			return o.CampaignType == model.ChannelPrivate
		})
	}

	if item.HasVintage && len(out) > 1 {
		out = narrow(out, func(o model.OfferRecord) bool {
			rec, ok := r.catalog.ByItemNo(o.ItemNo)
			return ok && rec.Vintage == item.Vintage
		})
	}

	return out
}

// filterQuantity keeps offers at the item's quantity tier. For a detected
// bulk tier the narrowed offers are additionally validated: a bulk offer
// whose target price equals the same item's normal tier is a phantom (the
// quantity hint matched someone else's text), and if validation throws out
// every bulk offer the quantity hint itself is distrusted and the filter is
// skipped.
func (r *Resolver) filterQuantity(item model.ExtractedItem, candidates []model.OfferRecord) []model.OfferRecord {
	out := narrow(candidates, func(o model.OfferRecord) bool {
		return o.MinQuantity == item.MinQuantity
	})

	if item.MinQuantity != r.opts.BulkQuantity || len(out) == len(candidates) {
		return out
	}

	var validated []model.OfferRecord
	for _, bulk := range out {
		phantom := false
		for _, o := range candidates {
			if o.ItemNo == bulk.ItemNo && o.MinQuantity == 0 && o.TargetPrice == bulk.TargetPrice {
				phantom = true
				break
			}
		}
		if !phantom {
			validated = append(validated, bulk)
		}
	}
	if len(validated) == 0 {
		// Every bulk offer collided with its normal tier; the hint was a
		// false positive.
		return candidates
	}
	return validated
}

// narrow filters a candidate slice but never to empty.
func narrow(candidates []model.OfferRecord, keep func(model.OfferRecord) bool) []model.OfferRecord {
	var out []model.OfferRecord
	for _, o := range candidates {
		if keep(o) {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return candidates
	}
	return out
}
