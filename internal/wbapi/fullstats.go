package wbapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	fullstatsPath = "/adv/v3/fullstats"

	// MaxFullstatsIDs is the upstream limit on campaign IDs per request.
	MaxFullstatsIDs = 100

	// MaxFullstatsPeriodDays is the upstream limit on the reporting period.
	MaxFullstatsPeriodDays = 31
)

// FetchFullstats fetches daily campaign statistics for the given campaign IDs
// over [begin, end]. The upstream caps a single request at MaxFullstatsIDs
// campaigns and MaxFullstatsPeriodDays days; violations are rejected locally
// before any network call.
func (c *Client) FetchFullstats(ctx context.Context, ids []int64, begin, end time.Time) ([]FullstatsCampaign, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("fetch fullstats: no campaign IDs")
	}
	if len(ids) > MaxFullstatsIDs {
		return nil, fmt.Errorf("fetch fullstats: %d campaign IDs exceeds limit of %d", len(ids), MaxFullstatsIDs)
	}
	if end.Before(begin) {
		return nil, fmt.Errorf("fetch fullstats: end date %s before begin date %s",
			end.Format("2006-01-02"), begin.Format("2006-01-02"))
	}
	if days := int(end.Sub(begin).Hours()/24) + 1; days > MaxFullstatsPeriodDays {
		return nil, fmt.Errorf("fetch fullstats: period of %d days exceeds limit of %d", days, MaxFullstatsPeriodDays)
	}

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = strconv.FormatInt(id, 10)
	}

	url := fmt.Sprintf("%s%s?ids=%s&beginDate=%s&endDate=%s",
		c.advertBaseURL, fullstatsPath,
		strings.Join(idStrs, ","),
		begin.Format("2006-01-02"),
		end.Format("2006-01-02"))

	resp, err := c.fullstatsHTTP.Get(ctx, url, c.authHeaders())
	if err != nil {
		return nil, fmt.Errorf("fetch fullstats: %w", err)
	}
	defer resp.Body.Close()

	// 204 means no statistics exist for the requested campaigns and period.
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch fullstats: status %d: %s", resp.StatusCode, body)
	}

	var campaigns []FullstatsCampaign
	if err := json.NewDecoder(resp.Body).Decode(&campaigns); err != nil {
		return nil, structuralErrorf(fullstatsPath, "decode failed: %v", err)
	}

	return campaigns, nil
}

// FetchFullstatsBatch fetches statistics for an arbitrary number of campaigns
// by splitting them into chunks of batchSize and sleeping delay between
// chunks to stay inside the endpoint quota. Partial results are returned with
// the error of the failing chunk.
func (c *Client) FetchFullstatsBatch(ctx context.Context, ids []int64, begin, end time.Time, batchSize int, delay time.Duration) ([]FullstatsCampaign, error) {
	if batchSize <= 0 || batchSize > MaxFullstatsIDs {
		batchSize = MaxFullstatsIDs
	}

	var all []FullstatsCampaign
	for i := 0; i < len(ids); i += batchSize {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return all, ctx.Err()
			case <-time.After(delay):
			}
		}

		chunk := ids[i:min(i+batchSize, len(ids))]

		c.logger.WithFields(map[string]interface{}{
			"batch":     i/batchSize + 1,
			"batches":   (len(ids) + batchSize - 1) / batchSize,
			"campaigns": len(chunk),
		}).Debug("fetching fullstats batch")

		campaigns, err := c.FetchFullstats(ctx, chunk, begin, end)
		if err != nil {
			return all, fmt.Errorf("batch %d: %w", i/batchSize+1, err)
		}
		all = append(all, campaigns...)
	}

	return all, nil
}
