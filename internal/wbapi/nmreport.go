package wbapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const nmReportPath = "/api/v2/nm-report/detail"

const nmReportTimeFormat = "2006-01-02 15:04:05"

// nmReportRequest is the POST body of the nm-report detail endpoint.
type nmReportRequest struct {
	BrandNames []string        `json:"brandNames"`
	ObjectIDs  []int64         `json:"objectIDs"`
	TagIDs     []int64         `json:"tagIDs"`
	NMIDs      []int64         `json:"nmIDs"`
	Timezone   string          `json:"timezone"`
	Period     nmReportPeriod  `json:"period"`
	OrderBy    nmReportOrderBy `json:"orderBy"`
	Page       int             `json:"page"`
}

type nmReportPeriod struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
}

type nmReportOrderBy struct {
	Field string `json:"field"`
	Mode  string `json:"mode"`
}

// FetchNMReport fetches today's product card report for all articles. The
// report period runs from midnight to the current moment in loc, so the
// selectedPeriod describes today and the previousPeriod describes yesterday.
// The response is structurally validated before it is returned.
func (c *Client) FetchNMReport(ctx context.Context, loc *time.Location) (*NMReportResponse, error) {
	now := time.Now().In(loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	payload := nmReportRequest{
		BrandNames: []string{},
		ObjectIDs:  []int64{},
		TagIDs:     []int64{},
		NMIDs:      []int64{},
		Timezone:   loc.String(),
		Period: nmReportPeriod{
			Begin: midnight.Format(nmReportTimeFormat),
			End:   now.Format(nmReportTimeFormat),
		},
		OrderBy: nmReportOrderBy{Field: "openCard", Mode: "desc"},
		Page:    1,
	}

	url := c.analyticsBaseURL + nmReportPath

	resp, err := c.reportHTTP.PostJSON(ctx, url, payload, c.authHeaders())
	if err != nil {
		return nil, fmt.Errorf("fetch nm-report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch nm-report: status %d: %s", resp.StatusCode, body)
	}

	var result NMReportResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, structuralErrorf(nmReportPath, "decode failed: %v", err)
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return &result, nil
}
