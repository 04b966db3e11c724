package products

import (
	"github.com/sellerstats/wbsync/internal/wbapi"
	"github.com/sellerstats/wbsync/pkg/logger"
)

// sizeFallback labels sizes of one-size goods, whose cards carry neither
// techSize nor wbSize.
const sizeFallback = "Без размера"

// Product is one flat row for the products table.
type Product struct {
	NMID        int64
	ImtID       int64
	VendorCode  string
	Title       string
	SubjectName string
}

// ProductSize is one size variant, keyed by barcode.
type ProductSize struct {
	NMID     int64
	Barcode  string
	TechSize string
}

// NormalizeReport counts what normalization dropped.
type NormalizeReport struct {
	SkippedCards      int // cards missing imtID, vendorCode or title
	ExcludedCards     int // cards on the exclusion list
	DuplicateCards    int // repeated nm_id within one fetch
	DuplicateBarcodes int
}

// Normalizer flattens content cards into product and size rows.
type Normalizer struct {
	logger *logger.Logger
}

// NewNormalizer creates a normalizer.
func NewNormalizer(log *logger.Logger) *Normalizer {
	return &Normalizer{logger: log}
}

// Normalize turns raw content cards into deduplicated product and size rows.
// Cards without an article ID, imt ID, vendor code or title are dropped with
// a warning; cards on the exclusion list are dropped silently. The first
// occurrence of an nm_id or barcode wins.
func (n *Normalizer) Normalize(cards []wbapi.ContentCard, excluded []int64) ([]Product, []ProductSize, NormalizeReport) {
	report := NormalizeReport{}

	skip := make(map[int64]bool, len(excluded))
	for _, id := range excluded {
		skip[id] = true
	}

	seenNM := make(map[int64]bool, len(cards))
	seenBarcode := make(map[string]bool)

	var products []Product
	var sizes []ProductSize

	for _, card := range cards {
		if card.NMID == nil {
			report.SkippedCards++
			n.logger.Warn("content card missing nmID, skipping")
			continue
		}
		nmID := *card.NMID

		if skip[nmID] {
			report.ExcludedCards++
			continue
		}

		if card.ImtID == nil || card.VendorCode == nil || card.Title == nil {
			report.SkippedCards++
			n.logger.WithField("nm_id", nmID).Warn("content card missing imtID, vendorCode or title, skipping")
			continue
		}

		if seenNM[nmID] {
			report.DuplicateCards++
			continue
		}
		seenNM[nmID] = true

		subject := ""
		if card.SubjectName != nil {
			subject = *card.SubjectName
		}

		products = append(products, Product{
			NMID:        nmID,
			ImtID:       *card.ImtID,
			VendorCode:  *card.VendorCode,
			Title:       *card.Title,
			SubjectName: subject,
		})

		for _, size := range card.Sizes {
			label := sizeFallback
			if size.TechSize != nil && *size.TechSize != "" {
				label = *size.TechSize
			} else if size.WbSize != nil && *size.WbSize != "" {
				label = *size.WbSize
			}

			for _, barcode := range size.Skus {
				if barcode == "" {
					continue
				}
				if seenBarcode[barcode] {
					report.DuplicateBarcodes++
					continue
				}
				seenBarcode[barcode] = true

				sizes = append(sizes, ProductSize{
					NMID:     nmID,
					Barcode:  barcode,
					TechSize: label,
				})
			}
		}
	}

	return products, sizes, report
}
