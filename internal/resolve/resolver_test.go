package resolve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avu-sa/winematch/internal/learned"
	"github.com/avu-sa/winematch/internal/model"
	"github.com/avu-sa/winematch/internal/refdata"
)

func cleanOffer(itemNo int, source, target float64, minQty int) model.OfferRecord {
	return model.OfferRecord{
		ItemNo:       itemNo,
		SourcePrice:  source,
		TargetPrice:  target,
		MinQuantity:  minQty,
		CampaignType: model.ChannelPrivate,
		CampaignSub:  model.SubTypeNormal,
		Status:       model.StatusSent,
	}
}

func newResolver(catalog []model.CatalogRecord, offers []model.OfferRecord, learnedMap map[learned.Key]int) *Resolver {
	return New(refdata.NewCatalog(catalog), refdata.NewOfferBook(offers), learnedMap, DefaultOptions())
}

func TestResolve_LearnedBeatsEverything(t *testing.T) {
	catalog := []model.CatalogRecord{
		{ItemNo: 5001, WineName: "Château Lafleur", Vintage: 2022, Size: 75},
		{ItemNo: 6001, WineName: "Some Other Wine", Vintage: 2022, Size: 75},
	}
	offers := []model.OfferRecord{
		cleanOffer(5001, 1150.00, 1242.00, 0),
		cleanOffer(6001, 1150.00, 1190.00, 0),
	}
	learnedMap := map[learned.Key]int{
		learned.NewKey("lafleur", "2022"): 5001,
	}

	r := newResolver(catalog, offers, learnedMap)
	res := r.Resolve(model.ExtractedItem{
		SourcePrice: 1150.00,
		WineName:    "Lafleur",
		Vintage:     2022,
		HasVintage:  true,
		Size:        75,
	})

	assert.Equal(t, model.QualityLearned, res.Quality)
	assert.Equal(t, 5001, res.ItemNo)
	assert.True(t, res.Quality.Confident())
	// 1150 > 300 so the 5-step rounding applies: 1242 -> 1245.
	assert.Equal(t, 1245.00, res.TargetPrice)
}

func TestResolve_ItemNoClosure(t *testing.T) {
	catalog := []model.CatalogRecord{
		{ItemNo: 101, WineName: "Château Palmer", Vintage: 2019, Size: 75},
		{ItemNo: 102, WineName: "Château Palmer", Vintage: 2020, Size: 75},
	}
	offers := []model.OfferRecord{
		cleanOffer(101, 95.00, 102.00, 0),
		cleanOffer(102, 95.00, 104.00, 0),
	}

	r := newResolver(catalog, offers, nil)
	res := r.Resolve(model.ExtractedItem{
		SourcePrice: 95.00,
		WineName:    "Palmer",
		Vintage:     2019,
		HasVintage:  true,
		Size:        75,
	})

	assert.Equal(t, model.QualityItemNo, res.Quality)
	assert.Equal(t, 101, res.ItemNo)
	assert.Equal(t, 102.00, res.TargetPrice)
}

func TestResolve_ExactUnique(t *testing.T) {
	offers := []model.OfferRecord{cleanOffer(300, 48.00, 52.00, 0)}

	r := newResolver(nil, offers, nil)
	res := r.Resolve(model.ExtractedItem{SourcePrice: 48.00, Size: 75})

	assert.Equal(t, model.QualityExactUnique, res.Quality)
	assert.Equal(t, 300, res.ItemNo)
	require.NotNil(t, res.Offer)
}

func TestResolve_QuantityFilterThenProximity(t *testing.T) {
	// Three clean offers at 42.00: A and B at quantity 0, C at the bulk
	// tier. A quantity hint of 0 drops C; with no name context the winner
	// is whichever target sits closest to 42.00 * 1.08 = 45.36.
	catalog := []model.CatalogRecord{
		{ItemNo: 1, WineName: "Wine A", Vintage: 2019, Size: 75},
		{ItemNo: 2, WineName: "Wine B", Vintage: 2020, Size: 75},
		{ItemNo: 3, WineName: "Wine C", Vintage: 2021, Size: 75},
	}
	offers := []model.OfferRecord{
		cleanOffer(1, 42.00, 45.50, 0),
		cleanOffer(2, 42.00, 48.00, 0),
		cleanOffer(3, 42.00, 44.00, 36),
	}

	r := newResolver(catalog, offers, nil)
	res := r.Resolve(model.ExtractedItem{SourcePrice: 42.00, Size: 75})

	assert.Equal(t, model.QualityPriceProximity, res.Quality)
	assert.Equal(t, 1, res.ItemNo)
	assert.Equal(t, 45.50, res.TargetPrice)
}

func TestResolve_ExactFiltered(t *testing.T) {
	// Vintage narrows two same-price candidates down to one.
	catalog := []model.CatalogRecord{
		{ItemNo: 1, WineName: "Wine A", Vintage: 2019, Size: 75},
		{ItemNo: 2, WineName: "Wine B", Vintage: 2020, Size: 75},
	}
	offers := []model.OfferRecord{
		cleanOffer(1, 60.00, 64.00, 0),
		cleanOffer(2, 60.00, 66.00, 0),
	}

	r := newResolver(catalog, offers, nil)
	res := r.Resolve(model.ExtractedItem{
		SourcePrice: 60.00,
		Vintage:     2020,
		HasVintage:  true,
		Size:        75,
	})

	// Item-no closure already pins vintage+size+quantity to item 2.
	assert.Equal(t, 2, res.ItemNo)
	assert.True(t, res.Quality == model.QualityItemNo || res.Quality == model.QualityExactFiltered)
}

func TestResolve_FuzzyName(t *testing.T) {
	catalog := []model.CatalogRecord{
		{ItemNo: 1, WineName: "Château Cantemerle", Producer: "Cantemerle", Vintage: 2016, Size: 75},
		{ItemNo: 2, WineName: "Completely Different", Producer: "Other", Vintage: 2016, Size: 75},
	}
	offers := []model.OfferRecord{
		cleanOffer(1, 29.00, 31.00, 0),
		cleanOffer(2, 29.00, 33.00, 0),
	}

	r := newResolver(catalog, offers, nil)
	res := r.Resolve(model.ExtractedItem{
		SourcePrice: 29.00,
		WineName:    "Cantemerle",
		Size:        75,
	})

	assert.Equal(t, model.QualityFuzzyName, res.Quality)
	assert.Equal(t, 1, res.ItemNo)
	assert.Greater(t, res.Score, 1.0)
	assert.False(t, res.Quality.Confident())
}

func TestResolve_FallbackConversion(t *testing.T) {
	r := newResolver(nil, nil, nil)

	res := r.Resolve(model.ExtractedItem{SourcePrice: 100.00, Size: 75})
	assert.Equal(t, model.QualityFallback, res.Quality)
	assert.Equal(t, 108.00, res.TargetPrice, "floor(100 * 1.08)")
	assert.Zero(t, res.ItemNo)
	assert.Nil(t, res.Offer)

	res = r.Resolve(model.ExtractedItem{SourcePrice: 1150.00, Size: 75})
	assert.Equal(t, model.QualityFallback, res.Quality)
	// floor(1150 * 1.08) = 1242, then up to the next 5-step.
	assert.Equal(t, 1245.00, res.TargetPrice)
}

func TestResolve_NoMatchOnZeroPrice(t *testing.T) {
	r := newResolver(nil, nil, nil)
	res := r.Resolve(model.ExtractedItem{SourcePrice: 0})
	assert.Equal(t, model.QualityNoMatch, res.Quality)
}

func TestResolve_DirtyOffersLoseToCleanOnes(t *testing.T) {
	catalog := []model.CatalogRecord{
		{ItemNo: 1, WineName: "Wine A", Vintage: 2019, Size: 75},
		{ItemNo: 2, WineName: "Wine B", Vintage: 2019, Size: 75},
	}
	dirty := cleanOffer(1, 70.00, 80.00, 0)
	dirty.CompetitorCode = "COMP"
	offers := []model.OfferRecord{
		dirty,
		cleanOffer(2, 70.00, 75.00, 0),
	}

	r := newResolver(catalog, offers, nil)
	res := r.Resolve(model.ExtractedItem{SourcePrice: 70.00, Size: 75})

	assert.Equal(t, model.QualityExactUnique, res.Quality, "ineligible row must not cost the clean one its uniqueness")
	assert.Equal(t, 2, res.ItemNo, "competitor-coded offer filtered out")
}

func TestResolve_CancelledOfferDoesNotShadowCleanOne(t *testing.T) {
	catalog := []model.CatalogRecord{
		{ItemNo: 1, WineName: "Wine A", Vintage: 2019, Size: 75},
		{ItemNo: 2, WineName: "Wine B", Vintage: 2019, Size: 75},
	}
	cancelled := cleanOffer(1, 70.00, 80.00, 0)
	cancelled.Status = "Cancelled"
	offers := []model.OfferRecord{
		cancelled,
		cleanOffer(2, 70.00, 75.00, 0),
	}

	r := newResolver(catalog, offers, nil)
	res := r.Resolve(model.ExtractedItem{SourcePrice: 70.00, Size: 75})

	assert.Equal(t, model.QualityExactUnique, res.Quality)
	assert.Equal(t, 2, res.ItemNo)
}

func TestResolve_LoneIneligibleOfferNeverMatches(t *testing.T) {
	// A single cancelled offer at the price must not resolve (and certainly
	// not as a confident tier the pipeline would learn from); with no
	// eligible candidates the arithmetic fallback applies.
	cancelled := cleanOffer(9, 55.00, 61.00, 0)
	cancelled.Status = "Cancelled"

	r := newResolver(nil, []model.OfferRecord{cancelled}, nil)
	res := r.Resolve(model.ExtractedItem{SourcePrice: 55.00, Size: 75})

	assert.Equal(t, model.QualityFallback, res.Quality)
	assert.Zero(t, res.ItemNo)
	assert.Equal(t, 59.00, res.TargetPrice, "floor(55 * 1.08)")
}

func TestFilterQuantity_PhantomBulkHint(t *testing.T) {
	// The bulk offer carries the same target as the item's normal tier, so
	// the quantity hint is distrusted and the filter skipped.
	catalog := []model.CatalogRecord{{ItemNo: 1, WineName: "Wine A", Vintage: 2019, Size: 75}}
	offers := []model.OfferRecord{
		cleanOffer(1, 50.00, 54.00, 0),
		cleanOffer(1, 50.00, 54.00, 36),
	}

	r := newResolver(catalog, offers, nil)
	out := r.filterQuantity(model.ExtractedItem{SourcePrice: 50.00, MinQuantity: 36}, offers)
	assert.Len(t, out, 2, "validation emptied the bulk set, so the hint is ignored")

	// A genuinely distinct bulk tier survives validation.
	offers[1].TargetPrice = 50.00
	out = r.filterQuantity(model.ExtractedItem{SourcePrice: 50.00, MinQuantity: 36}, offers)
	require.Len(t, out, 1)
	assert.Equal(t, 36, out[0].MinQuantity)
}

func TestLatestScheduleWins(t *testing.T) {
	older := cleanOffer(1, 42.00, 45.00, 0)
	older.ScheduleTime = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	newer := cleanOffer(1, 42.00, 46.00, 0)
	newer.ScheduleTime = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	got := latest([]model.OfferRecord{older, newer})
	assert.Equal(t, 46.00, got.TargetPrice)
}

func TestRoundTo5(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1160, 1160},
		{1162, 1165},
		{1163, 1165},
		{1165, 1165},
		{1167, 1170},
		{1169, 1170},
		// Fractional prices whose integer part ends in 0/5 pass through.
		{435.50, 435.50},
		{437.25, 440},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundTo5(tt.in))
	}
}
