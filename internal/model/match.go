package model

// MatchQuality tags every resolution outcome with the confidence tier that
// produced it. Everything below QualityExactUnique is routed to the
// correction workflow for human review.
type MatchQuality string

const (
	// QualityLearned: the (name, vintage) pair was already confirmed by a
	// prior run or a human correction.
	QualityLearned MatchQuality = "learned"
	// QualityItemNo: item number closure. Identifier, vintage, size,
	// quantity and price all agreed without consulting the learned store.
	QualityItemNo MatchQuality = "item-no"
	// QualityExactUnique: exactly one clean offer carries the price.
	QualityExactUnique MatchQuality = "exact-unique"
	// QualityExactFiltered: structural filters narrowed the candidates to one.
	QualityExactFiltered MatchQuality = "exact-filtered"
	// QualityFuzzyName: fuzzy name scoring picked the winner.
	QualityFuzzyName MatchQuality = "fuzzy-name"
	// QualityPriceProximity: last-resort pick by converted-price distance.
	QualityPriceProximity MatchQuality = "price-proximity"
	// QualityFallback: no catalog grounding at all; pure arithmetic conversion.
	QualityFallback MatchQuality = "fallback"
	// QualityNoMatch: nothing usable was found.
	QualityNoMatch MatchQuality = "no-match"
)

// Confident reports whether the quality tier is trusted without human review.
func (q MatchQuality) Confident() bool {
	switch q {
	case QualityLearned, QualityItemNo, QualityExactUnique:
		return true
	}
	return false
}

// MatchResult is the resolver's verdict for one extracted price occurrence.
// ItemNo 0 with a nil Offer means the price has no catalog grounding; the
// TargetPrice is then the arithmetic fallback (or 0 for no-match).
type MatchResult struct {
	ItemNo      int            `json:"item_no,omitempty"`
	TargetPrice float64        `json:"target_price"`
	Quality     MatchQuality   `json:"quality"`
	Score       float64        `json:"score,omitempty"` // fuzzy score, when stage 5 ran
	Offer       *OfferRecord   `json:"offer,omitempty"`
	Catalog     *CatalogRecord `json:"catalog,omitempty"`
}

// ExtractedItem is one detected price occurrence with its surrounding
// context, produced by the extraction pass and consumed once by the
// resolver. Position preserves document order end-to-end.
type ExtractedItem struct {
	Position    int     `json:"position"` // 1-based occurrence index
	Start       int     `json:"start"`    // byte offset of the amount in the source text
	End         int     `json:"end"`
	RawText     string  `json:"raw_text"`
	SourcePrice float64 `json:"source_price"`
	WineName    string  `json:"wine_name,omitempty"`
	Producer    string  `json:"producer,omitempty"`
	Vintage     int     `json:"vintage,omitempty"`
	HasVintage  bool    `json:"has_vintage"`
	Size        float64 `json:"size"`
	MinQuantity int     `json:"min_quantity"`
}
