package model

import "time"

// NonVintage is the vintage sentinel for wines without a declared year
// (Champagne NV bottlings and similar).
const NonVintage = 0

// Standard bottle sizes in centiliters.
const (
	SizeStandard = 75.0
	SizeMagnum   = 150.0
)

// CatalogRecord is one row of the stock catalog: the authoritative identity
// of a wine. ItemNo is unique across the catalog; every resolved match must
// bind to exactly one ItemNo.
type CatalogRecord struct {
	ItemNo   int     `json:"item_no"`
	WineName string  `json:"wine_name"`
	Producer string  `json:"producer"`
	Vintage  int     `json:"vintage"` // NonVintage (0) for NV wines
	Size     float64 `json:"size"`    // bottle volume in cl
}

// OfferRecord is one row of the offer list. Many offers share an ItemNo
// (the same wine offered at different quantities, channels and times), and
// distinct wines can carry the same CHF price. Disambiguating among them is
// the resolver's job.
type OfferRecord struct {
	ItemNo         int       `json:"item_no"`
	SourcePrice    float64   `json:"source_price"` // CHF unit price
	TargetPrice    float64   `json:"target_price"` // EUR unit price
	MinQuantity    int       `json:"min_quantity"` // 0, or a bulk threshold like 36
	CampaignType   string    `json:"campaign_type"`
	CampaignSub    string    `json:"campaign_sub_type"`
	CompetitorCode string    `json:"competitor_code"`
	Status         string    `json:"status"`
	ScheduleTime   time.Time `json:"schedule_time"`
}

// Campaign attribute sentinels an offer must carry to be eligible for
// matching (the "clean offer" filter).
const (
	StatusSent     = "Sent"
	SubTypeNormal  = "Normal"
	ChannelPrivate = "PRIVATE"
)

// Clean reports whether the offer passes the competitor/status/sub-type
// filter and is eligible for matching. The PRIVATE channel check is applied
// separately because bulk offers do not use the channel consistently.
func (o *OfferRecord) Clean() bool {
	return o.CompetitorCode == "" && o.Status == StatusSent && o.CampaignSub == SubTypeNormal
}
