// Package refdata loads the stock catalog and the offer list into indexed
// in-memory tables. Both tables are accepted as .xlsx or .csv, dispatched by
// file extension; headers are located by name and a missing required column
// is a fatal load error.
package refdata

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/avu-sa/winematch/internal/model"
)

// Catalog column headers.
const (
	colCatItemNo   = "No."
	colCatWineName = "Wine Name"
	colCatProducer = "Producer Name"
	colCatVintage  = "Vintage Code"
	colCatSize     = "Size"
)

// Offer list column headers.
const (
	colOfferItemNo     = "Item No."
	colOfferUnitPrice  = "Unit Price"
	colOfferEURPrice   = "Unit Price (EUR)"
	colOfferMinQty     = "Minimum Quantity"
	colOfferType       = "Campaign Type"
	colOfferSubType    = "Campaign Sub-Type"
	colOfferStatus     = "Campaign Status"
	colOfferCompetitor = "Competitor Code"
	colOfferSchedule   = "Schedule DateTime"
)

// catalogRow is one raw catalog line before parsing. Field tags are the
// exact column headers of the exported table.
type catalogRow struct {
	ItemNo   string `csv:"No."`
	WineName string `csv:"Wine Name"`
	Producer string `csv:"Producer Name"`
	Vintage  string `csv:"Vintage Code"`
	Size     string `csv:"Size"`
}

// offerRow is one raw offer line before parsing.
type offerRow struct {
	ItemNo      string `csv:"Item No."`
	UnitPrice   string `csv:"Unit Price"`
	EURPrice    string `csv:"Unit Price (EUR)"`
	MinQuantity string `csv:"Minimum Quantity"`
	Campaign    string `csv:"Campaign Type"`
	SubType     string `csv:"Campaign Sub-Type"`
	Status      string `csv:"Campaign Status"`
	Competitor  string `csv:"Competitor Code"`
	Schedule    string `csv:"Schedule DateTime"`
}

var catalogColumns = []string{colCatItemNo, colCatWineName, colCatProducer, colCatVintage, colCatSize}

var offerColumns = []string{
	colOfferItemNo, colOfferUnitPrice, colOfferEURPrice, colOfferMinQty,
	colOfferType, colOfferSubType, colOfferStatus, colOfferCompetitor, colOfferSchedule,
}

// Load reads and indexes both reference tables.
func Load(catalogPath, offersPath string) (*Catalog, *OfferBook, error) {
	records, err := LoadCatalog(catalogPath)
	if err != nil {
		return nil, nil, err
	}

	offers, err := LoadOffers(offersPath)
	if err != nil {
		return nil, nil, err
	}

	return NewCatalog(records), NewOfferBook(offers), nil
}

// LoadCatalog reads the stock catalog from an .xlsx or .csv file.
func LoadCatalog(path string) ([]model.CatalogRecord, error) {
	var (
		rows []catalogRow
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readCatalogXLSX(path)
	case ".csv":
		rows, err = readCatalogCSV(path)
	default:
		return nil, eris.Errorf("refdata: unsupported catalog format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return parseCatalog(rows), nil
}

// LoadOffers reads the offer list from an .xlsx or .csv file.
func LoadOffers(path string) ([]model.OfferRecord, error) {
	var (
		rows []offerRow
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readOfferXLSX(path)
	case ".csv":
		rows, err = readOfferCSV(path)
	default:
		return nil, eris.Errorf("refdata: unsupported offer format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return parseOffers(rows), nil
}

// parseCatalog converts raw rows into catalog records. Rows whose item
// identifier is not numeric (section dividers, accessories) are skipped.
func parseCatalog(rows []catalogRow) []model.CatalogRecord {
	log := zap.L().With(zap.String("component", "refdata"))

	records := make([]model.CatalogRecord, 0, len(rows))
	for i, row := range rows {
		itemNo, err := strconv.Atoi(strings.TrimSpace(row.ItemNo))
		if err != nil {
			log.Debug("skipping catalog row with non-numeric item number",
				zap.Int("row", i+2), zap.String("item_no", row.ItemNo))
			continue
		}

		records = append(records, model.CatalogRecord{
			ItemNo:   itemNo,
			WineName: strings.TrimSpace(row.WineName),
			Producer: strings.TrimSpace(row.Producer),
			Vintage:  parseVintage(row.Vintage),
			Size:     parseSize(row.Size),
		})
	}

	return records
}

// parseOffers converts raw rows into offer records, skipping rows without a
// numeric item number.
func parseOffers(rows []offerRow) []model.OfferRecord {
	log := zap.L().With(zap.String("component", "refdata"))

	offers := make([]model.OfferRecord, 0, len(rows))
	for i, row := range rows {
		itemNo, err := strconv.Atoi(strings.TrimSpace(row.ItemNo))
		if err != nil {
			log.Debug("skipping offer row with non-numeric item number",
				zap.Int("row", i+2), zap.String("item_no", row.ItemNo))
			continue
		}

		offers = append(offers, model.OfferRecord{
			ItemNo:         itemNo,
			SourcePrice:    parseFloat(row.UnitPrice),
			TargetPrice:    parseFloat(row.EURPrice),
			MinQuantity:    int(parseFloat(row.MinQuantity)),
			CampaignType:   strings.TrimSpace(row.Campaign),
			CampaignSub:    strings.TrimSpace(row.SubType),
			Status:         strings.TrimSpace(row.Status),
			CompetitorCode: strings.TrimSpace(row.Competitor),
			ScheduleTime:   parseSchedule(row.Schedule),
		})
	}

	return offers
}

// parseVintage reads a vintage code. "NV", blanks and anything non-numeric
// map to the non-vintage sentinel.
func parseVintage(s string) int {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "NV") {
		return model.NonVintage
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return model.NonVintage
	}
	return year
}

// parseSize reads a bottle size in centiliters, defaulting to a standard
// bottle when the cell is blank or unreadable.
func parseSize(s string) float64 {
	size := parseFloat(s)
	if size == 0 {
		return model.SizeStandard
	}
	return size
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, "'", ""))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// scheduleLayouts covers the datetime renderings seen in exported tables.
var scheduleLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"01-02-06 15:04:05",
	"1/2/06 15:04",
}

// parseSchedule reads a schedule timestamp; unparseable values yield the
// zero time, which sorts last when picking the most recent offer.
func parseSchedule(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
