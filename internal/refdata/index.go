package refdata

import (
	"math"

	"github.com/avu-sa/winematch/internal/model"
)

// RoundPrice rounds a price to two decimals. Every price key in the indexes
// and every lookup goes through this so float noise cannot split a bucket.
func RoundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}

// Catalog is the stock table indexed by item number.
type Catalog struct {
	byItem  map[int]model.CatalogRecord
	records []model.CatalogRecord
}

// NewCatalog indexes catalog records by item number. On duplicate item
// numbers the first record wins.
func NewCatalog(records []model.CatalogRecord) *Catalog {
	c := &Catalog{
		byItem:  make(map[int]model.CatalogRecord, len(records)),
		records: records,
	}
	for _, rec := range records {
		if _, ok := c.byItem[rec.ItemNo]; !ok {
			c.byItem[rec.ItemNo] = rec
		}
	}
	return c
}

// ByItemNo looks up a catalog record by its item number.
func (c *Catalog) ByItemNo(itemNo int) (model.CatalogRecord, bool) {
	rec, ok := c.byItem[itemNo]
	return rec, ok
}

// Records returns all catalog records in file order.
func (c *Catalog) Records() []model.CatalogRecord {
	return c.records
}

// Len reports the number of indexed records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// OfferBook is the offer table indexed by rounded source price and by item
// number.
type OfferBook struct {
	byPrice map[float64][]model.OfferRecord
	byItem  map[int][]model.OfferRecord
	count   int
}

// NewOfferBook indexes offers by rounded source price and item number.
func NewOfferBook(offers []model.OfferRecord) *OfferBook {
	b := &OfferBook{
		byPrice: make(map[float64][]model.OfferRecord),
		byItem:  make(map[int][]model.OfferRecord),
		count:   len(offers),
	}
	for _, o := range offers {
		key := RoundPrice(o.SourcePrice)
		b.byPrice[key] = append(b.byPrice[key], o)
		b.byItem[o.ItemNo] = append(b.byItem[o.ItemNo], o)
	}
	return b
}

// ByPrice returns all offers whose source price rounds to the same two
// decimals as p.
func (b *OfferBook) ByPrice(p float64) []model.OfferRecord {
	return b.byPrice[RoundPrice(p)]
}

// ByItemNo returns all offers for an item number.
func (b *OfferBook) ByItemNo(itemNo int) []model.OfferRecord {
	return b.byItem[itemNo]
}

// Len reports the number of indexed offers.
func (b *OfferBook) Len() int {
	return b.count
}
