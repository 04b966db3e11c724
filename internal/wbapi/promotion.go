package wbapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const promotionCountPath = "/adv/v1/promotion/count"

// FetchPromotionCount fetches the list of all seller campaigns grouped by
// type and status.
func (c *Client) FetchPromotionCount(ctx context.Context) (*PromotionCountResponse, error) {
	url := c.advertBaseURL + promotionCountPath

	resp, err := c.promotionHTTP.Get(ctx, url, c.authHeaders())
	if err != nil {
		return nil, fmt.Errorf("fetch promotion count: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch promotion count: status %d: %s", resp.StatusCode, body)
	}

	var result PromotionCountResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, structuralErrorf(promotionCountPath, "decode failed: %v", err)
	}

	return &result, nil
}

// ExtractCampaignIDs extracts campaign IDs from the promotion count response.
// When filterStatuses is non-empty only groups with a matching status are
// included.
func ExtractCampaignIDs(resp *PromotionCountResponse, filterStatuses []int) []int64 {
	statusOK := func(status *int) bool {
		if len(filterStatuses) == 0 {
			return true
		}
		if status == nil {
			return false
		}
		for _, s := range filterStatuses {
			if *status == s {
				return true
			}
		}
		return false
	}

	var ids []int64
	for _, group := range resp.Adverts {
		if !statusOK(group.Status) {
			continue
		}
		for _, campaign := range group.AdvertList {
			if campaign.AdvertID != nil {
				ids = append(ids, *campaign.AdvertID)
			}
		}
	}

	return ids
}

// CampaignStats summarizes the campaign list by status and type.
type CampaignStats struct {
	Total    int
	ByStatus map[int]int
	ByType   map[int]int
}

// Stats aggregates campaign counts by status and type for operator output.
func (r *PromotionCountResponse) Stats() CampaignStats {
	stats := CampaignStats{
		ByStatus: make(map[int]int),
		ByType:   make(map[int]int),
	}

	for _, group := range r.Adverts {
		n := len(group.AdvertList)
		if group.Count != nil {
			n = *group.Count
		}

		stats.Total += n
		if group.Status != nil {
			stats.ByStatus[*group.Status] += n
		}
		if group.Type != nil {
			stats.ByType[*group.Type] += n
		}
	}

	return stats
}
