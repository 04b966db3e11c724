package convrate

import (
	"context"
	"fmt"
	"time"

	"github.com/sellerstats/wbsync/internal/wbapi"
	"github.com/sellerstats/wbsync/pkg/logger"
)

// Fetcher is the slice of the WB API client the pipeline needs.
type Fetcher interface {
	FetchNMReport(ctx context.Context, loc *time.Location) (*wbapi.NMReportResponse, error)
}

// Store is the persistence surface of the pipeline.
type Store interface {
	UpsertToday(ctx context.Context, records []SnapshotRecord) (int, error)
	UpsertYesterday(ctx context.Context, records []SnapshotRecord) (int, error)
	CountByDate(ctx context.Context, date time.Time) (int, error)
}

// Pipeline runs one conversion-rate sync end to end.
type Pipeline struct {
	fetcher Fetcher
	store   Store
	builder *Builder
	logger  *logger.Logger
	loc     *time.Location
}

// NewPipeline wires a pipeline.
func NewPipeline(fetcher Fetcher, store Store, log *logger.Logger, loc *time.Location) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		store:   store,
		builder: NewBuilder(log, loc),
		logger:  log,
		loc:     loc,
	}
}

// Result describes one completed sync run.
type Result struct {
	Cards            int
	Report           BuildReport
	TodayWritten     int
	YesterdayWritten int
	StoredToday      int
}

// Run fetches today's nm-report and upserts both business-day snapshots.
// The report is fetched once; FetchNMReport already validated its structure.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	now := time.Now()

	resp, err := p.fetcher.FetchNMReport(ctx, p.loc)
	if err != nil {
		return nil, fmt.Errorf("nm-report: %w", err)
	}

	result := &Result{}
	if resp.Data != nil {
		result.Cards = len(resp.Data.Cards)
	}
	if result.Cards == 0 {
		p.logger.Info("nm-report returned no cards")
		return result, nil
	}

	today, yesterday, report := p.builder.BuildSnapshots(resp, now)
	result.Report = report

	result.TodayWritten, err = p.store.UpsertToday(ctx, today)
	if err != nil {
		return result, fmt.Errorf("upsert today: %w", err)
	}

	result.YesterdayWritten, err = p.store.UpsertYesterday(ctx, yesterday)
	if err != nil {
		return result, fmt.Errorf("upsert yesterday: %w", err)
	}

	if len(today) > 0 {
		result.StoredToday, err = p.store.CountByDate(ctx, today[0].DateOfPeriod)
		if err != nil {
			return result, fmt.Errorf("verification: %w", err)
		}
		if result.StoredToday < result.TodayWritten {
			p.logger.WithFields(map[string]interface{}{
				"written": result.TodayWritten,
				"stored":  result.StoredToday,
			}).Warn("stored snapshot count below written count")
		}
	}

	p.logger.WithFields(map[string]interface{}{
		"cards":     result.Cards,
		"today":     result.TodayWritten,
		"yesterday": result.YesterdayWritten,
		"skipped":   report.SkippedCards,
	}).Info("conversion rate sync complete")

	return result, nil
}
