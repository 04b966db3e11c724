package advstats

import (
	"fmt"
	"sort"
)

// ValidationError describes one invariant violation in a transformed record.
type ValidationError struct {
	Index  int    // position in the validated batch
	Key    string // record identity (advertId:nmId:date)
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("record %d (%s): %s", e.Index, e.Key, e.Reason)
}

// BatchResult is the outcome of validating one batch.
type BatchResult struct {
	Valid        bool
	Total        int
	ValidCount   int
	InvalidCount int
	Errors       []ValidationError
}

// ValidateBatch checks every record against the output invariants. With
// failFast set it stops at the first invalid record; otherwise all errors
// are collected. Validation never mutates or drops records.
func ValidateBatch(records []CampaignDailyStat, failFast bool) BatchResult {
	result := BatchResult{Valid: true, Total: len(records)}

	for i, r := range records {
		errs := validateRecord(r)
		if len(errs) == 0 {
			result.ValidCount++
			continue
		}

		result.Valid = false
		result.InvalidCount++
		for _, reason := range errs {
			result.Errors = append(result.Errors, ValidationError{
				Index:  i,
				Key:    r.Key(),
				Reason: reason,
			})
		}

		if failFast {
			// Counts reflect only the records examined before the stop.
			break
		}
	}

	return result
}

func validateRecord(r CampaignDailyStat) []string {
	var errs []string

	if r.AdvertID <= 0 {
		errs = append(errs, fmt.Sprintf("advertId must be positive, got %d", r.AdvertID))
	}
	if r.NMID <= 0 {
		errs = append(errs, fmt.Sprintf("nmId must be positive, got %d", r.NMID))
	}
	if r.VendorCode == "" {
		errs = append(errs, "vendor code is empty")
	}
	if r.Date.IsZero() {
		errs = append(errs, "date is zero")
	}

	if r.Views < 0 {
		errs = append(errs, fmt.Sprintf("views must be >= 0, got %d", r.Views))
	}
	if r.Clicks < 0 {
		errs = append(errs, fmt.Sprintf("clicks must be >= 0, got %d", r.Clicks))
	}
	if r.Orders < 0 {
		errs = append(errs, fmt.Sprintf("orders must be >= 0, got %d", r.Orders))
	}
	if r.Clicks > r.Views {
		errs = append(errs, fmt.Sprintf("clicks (%d) exceed views (%d)", r.Clicks, r.Views))
	}
	if r.Sum.IsNegative() {
		errs = append(errs, fmt.Sprintf("sum must be >= 0, got %s", r.Sum))
	}
	if r.OrdersSum.IsNegative() {
		errs = append(errs, fmt.Sprintf("orders sum must be >= 0, got %s", r.OrdersSum))
	}

	// Each derived metric must be present exactly when its denominator is
	// positive.
	if r.Clicks > 0 && r.CPC == nil {
		errs = append(errs, "cpc missing despite clicks > 0")
	}
	if r.Clicks == 0 && r.CPC != nil {
		errs = append(errs, "cpc set but clicks = 0")
	}
	if r.Views > 0 && r.CTR == nil {
		errs = append(errs, "ctr missing despite views > 0")
	}
	if r.Views == 0 && r.CTR != nil {
		errs = append(errs, "ctr set but views = 0")
	}
	if r.Views > 0 && r.CPM == nil {
		errs = append(errs, "cpm missing despite views > 0")
	}
	if r.Views == 0 && r.CPM != nil {
		errs = append(errs, "cpm set but views = 0")
	}

	if r.CTR != nil && (r.CTR.IsNegative() || r.CTR.GreaterThan(hundred)) {
		// Clicks and views are summed over the same platform set, so an
		// out-of-range CTR means the upstream counters disagree.
		errs = append(errs, fmt.Sprintf("ctr %s outside [0,100]: upstream click/view counters disagree", r.CTR))
	}

	return errs
}

// FindDuplicateKeys returns one diagnostic line per repeated
// (advertId, nmId, date) identity. Detection is read-only: duplicates are
// reported, never removed.
func FindDuplicateKeys(records []CampaignDailyStat) []string {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Key()]++
	}

	var dups []string
	for key, n := range counts {
		if n > 1 {
			dups = append(dups, fmt.Sprintf("%s appears %d times", key, n))
		}
	}
	sort.Strings(dups)
	return dups
}
