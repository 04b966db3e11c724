package wbapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const contentCardsPath = "/content/v2/get/cards/list"

// MaxContentCardsPageSize is the upstream limit on cards per page.
const MaxContentCardsPageSize = 100

// ContentCardsResponse is one page of the content cards list.
type ContentCardsResponse struct {
	Cards  []ContentCard  `json:"cards"`
	Cursor *ContentCursor `json:"cursor"`
	Total  *int           `json:"total"`
}

// ContentCursor is the pagination cursor of the content API.
type ContentCursor struct {
	UpdatedAt *string `json:"updatedAt"`
	NMID      *int64  `json:"nmID"`
	Total     *int    `json:"total"`
}

// ContentCard is one product card.
type ContentCard struct {
	NMID        *int64            `json:"nmID"`
	ImtID       *int64            `json:"imtID"`
	VendorCode  *string           `json:"vendorCode"`
	Title       *string           `json:"title"`
	SubjectName *string           `json:"subjectName"`
	Sizes       []ContentCardSize `json:"sizes"`
}

// ContentCardSize is one size variant with its barcodes.
type ContentCardSize struct {
	TechSize *string  `json:"techSize"`
	WbSize   *string  `json:"wbSize"`
	Skus     []string `json:"skus"`
}

// Validate checks the structural requirements of a content cards page: the
// first card (template for the whole list) must carry an article ID, imt ID,
// vendor code, title, subject name and a non-empty sizes list with skus.
func (r *ContentCardsResponse) Validate() error {
	const ep = "content/cards/list"

	if r.Cards == nil {
		return structuralErrorf(ep, "missing 'cards'")
	}
	if len(r.Cards) == 0 {
		// An empty card list is valid: the cursor walked past the end.
		return nil
	}

	card := r.Cards[0]
	if card.NMID == nil {
		return structuralErrorf(ep, "card[0]: missing 'nmID'")
	}
	if card.ImtID == nil {
		return structuralErrorf(ep, "card[0] (nmID=%d): missing 'imtID'", *card.NMID)
	}
	if card.VendorCode == nil {
		return structuralErrorf(ep, "card[0] (nmID=%d): missing 'vendorCode'", *card.NMID)
	}
	if card.Title == nil {
		return structuralErrorf(ep, "card[0] (nmID=%d): missing 'title'", *card.NMID)
	}
	if card.SubjectName == nil {
		return structuralErrorf(ep, "card[0] (nmID=%d): missing 'subjectName'", *card.NMID)
	}
	if len(card.Sizes) == 0 {
		return structuralErrorf(ep, "card[0] (nmID=%d): empty 'sizes'", *card.NMID)
	}
	if card.Sizes[0].Skus == nil {
		return structuralErrorf(ep, "card[0] (nmID=%d): missing 'sizes[0].skus'", *card.NMID)
	}

	return nil
}

// contentCardsRequest is the POST body of the cards list endpoint.
type contentCardsRequest struct {
	Settings contentCardsSettings `json:"settings"`
}

type contentCardsSettings struct {
	Cursor contentCardsCursor `json:"cursor"`
	Filter contentCardsFilter `json:"filter"`
	Locale string             `json:"locale,omitempty"`
}

type contentCardsCursor struct {
	Limit     int     `json:"limit"`
	UpdatedAt *string `json:"updatedAt,omitempty"`
	NMID      *int64  `json:"nmID,omitempty"`
}

type contentCardsFilter struct {
	WithPhoto int `json:"withPhoto"`
}

// FetchContentCardsPage fetches one page of the seller's product cards.
// cursor is nil for the first page.
func (c *Client) FetchContentCardsPage(ctx context.Context, cursor *ContentCursor) (*ContentCardsResponse, error) {
	payload := contentCardsRequest{
		Settings: contentCardsSettings{
			Cursor: contentCardsCursor{Limit: MaxContentCardsPageSize},
			Filter: contentCardsFilter{WithPhoto: -1},
			Locale: "ru",
		},
	}
	if cursor != nil {
		payload.Settings.Cursor.UpdatedAt = cursor.UpdatedAt
		payload.Settings.Cursor.NMID = cursor.NMID
	}

	url := c.contentBaseURL + contentCardsPath

	resp, err := c.contentHTTP.PostJSON(ctx, url, payload, c.authHeaders())
	if err != nil {
		return nil, fmt.Errorf("fetch content cards: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch content cards: status %d: %s", resp.StatusCode, body)
	}

	var result ContentCardsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, structuralErrorf(contentCardsPath, "decode failed: %v", err)
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return &result, nil
}

// FetchAllContentCards walks the cursor until the upstream reports a page
// shorter than the limit or stops returning cards.
func (c *Client) FetchAllContentCards(ctx context.Context) ([]ContentCard, error) {
	var all []ContentCard
	var cursor *ContentCursor

	for page := 1; ; page++ {
		resp, err := c.FetchContentCardsPage(ctx, cursor)
		if err != nil {
			return all, fmt.Errorf("page %d: %w", page, err)
		}
		if len(resp.Cards) == 0 {
			break
		}

		all = append(all, resp.Cards...)

		c.logger.WithFields(map[string]interface{}{
			"page":  page,
			"cards": len(all),
		}).Debug("fetched content cards page")

		if resp.Total != nil && *resp.Total < MaxContentCardsPageSize {
			break
		}
		if resp.Cursor == nil {
			break
		}
		cursor = resp.Cursor
	}

	return all, nil
}
