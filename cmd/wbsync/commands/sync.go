package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// syncCmd groups the manual sync commands.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a sync manually",
	Long: `Runs one sync outside the scheduler.

Subcommands:
  adv      - advertising campaign statistics (fullstats)
  cr       - conversion rate snapshot (nm-report)
  products - product catalog (content cards)

Example:
  go run ./cmd/wbsync sync adv --begin 2025-06-01 --end 2025-06-07
  go run ./cmd/wbsync sync cr
  go run ./cmd/wbsync sync products`,
}

var (
	advBegin    string
	advEnd      string
	advMinViews int
	advNoSQLAgg bool
)

var syncAdvCmd = &cobra.Command{
	Use:   "adv",
	Short: "Sync advertising campaign statistics",
	Long: `Fetches campaign daily statistics for the given period, flattens
them into per-article records, validates the batch and upserts it, then
rolls the records up into per-article daily totals.

Without --begin/--end the window covers today and the previous 3 days.

Example:
  go run ./cmd/wbsync sync adv
  go run ./cmd/wbsync sync adv --begin 2025-06-01 --end 2025-06-07
  go run ./cmd/wbsync sync adv --min-views 10 --no-sql-agg`,
	RunE: runSyncAdv,
}

var syncCRCmd = &cobra.Command{
	Use:   "cr",
	Short: "Sync the conversion rate snapshot",
	Long: `Fetches today's product funnel report and upserts the today and
yesterday snapshots. Today's record carries current stocks; yesterday's
record leaves stored stocks untouched.

Example:
  go run ./cmd/wbsync sync cr`,
	RunE: runSyncCR,
}

var syncProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "Sync the product catalog",
	Long: `Fetches all content cards of the seller and upserts the product
catalog with its size/barcode rows. The vendor-code cache is invalidated
afterwards so the next stats sync picks up fresh codes.

Example:
  go run ./cmd/wbsync sync products`,
	RunE: runSyncProducts,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncAdvCmd)
	syncCmd.AddCommand(syncCRCmd)
	syncCmd.AddCommand(syncProductsCmd)

	syncAdvCmd.Flags().StringVar(&advBegin, "begin", "", "period start (YYYY-MM-DD)")
	syncAdvCmd.Flags().StringVar(&advEnd, "end", "", "period end (YYYY-MM-DD)")
	syncAdvCmd.Flags().IntVar(&advMinViews, "min-views", -1, "views threshold override")
	syncAdvCmd.Flags().BoolVar(&advNoSQLAgg, "no-sql-agg", false, "aggregate in memory instead of SQL")
}

func runSyncAdv(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	begin, end, err := resolvePeriod(advBegin, advEnd)
	if err != nil {
		return err
	}

	if advMinViews >= 0 {
		d.cfg.Sync.MinViewsThreshold = advMinViews
	}

	printHeader("Advertising Stats Sync",
		fmt.Sprintf("Period    : %s ~ %s", begin.Format("2006-01-02"), end.Format("2006-01-02")))

	start := time.Now()
	result, err := d.advPipeline(!advNoSQLAgg).Run(context.Background(), begin, end)
	if err != nil {
		return fmt.Errorf("adv sync: %w", err)
	}

	printSeparator()
	fmt.Printf("  Campaigns     : %d\n", result.Campaigns)
	fmt.Printf("  Records       : %d written\n", result.Written)
	fmt.Printf("  Aggregated    : %d article-days\n", result.Aggregated)
	fmt.Printf("  Lookup misses : %d\n", result.Report.LookupMisses)
	fmt.Printf("  Below threshold: %d\n", result.Report.ThresholdDrops)
	if len(result.Duplicates) > 0 {
		fmt.Printf("  Duplicate keys : %d\n", len(result.Duplicates))
	}
	printCompletion(time.Since(start))

	return nil
}

func runSyncCR(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	printHeader("Conversion Rate Sync",
		fmt.Sprintf("Timezone  : %s", d.cfg.Sync.Timezone))

	start := time.Now()
	result, err := d.crPipeline().Run(context.Background())
	if err != nil {
		return fmt.Errorf("cr sync: %w", err)
	}

	printSeparator()
	fmt.Printf("  Cards     : %d\n", result.Cards)
	fmt.Printf("  Today     : %d written\n", result.TodayWritten)
	fmt.Printf("  Yesterday : %d written\n", result.YesterdayWritten)
	if result.Report.SkippedCards > 0 {
		fmt.Printf("  Skipped   : %d cards\n", result.Report.SkippedCards)
	}
	printCompletion(time.Since(start))

	return nil
}

func runSyncProducts(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	printHeader("Products Sync",
		fmt.Sprintf("Excluded  : %d articles", len(d.cfg.Sync.ExcludedNMIDs)))

	start := time.Now()
	result, err := d.productsPipeline().Run(context.Background())
	if err != nil {
		return fmt.Errorf("products sync: %w", err)
	}

	printSeparator()
	fmt.Printf("  Cards     : %d\n", result.Cards)
	fmt.Printf("  Products  : %d written\n", result.ProductsWritten)
	fmt.Printf("  Sizes     : %d written\n", result.SizesWritten)
	if result.Report.SkippedCards > 0 {
		fmt.Printf("  Skipped   : %d cards\n", result.Report.SkippedCards)
	}
	if result.Report.ExcludedCards > 0 {
		fmt.Printf("  Excluded  : %d cards\n", result.Report.ExcludedCards)
	}
	printCompletion(time.Since(start))

	return nil
}

// resolvePeriod parses --begin/--end, defaulting to a window that covers
// today and the previous 3 days.
func resolvePeriod(beginStr, endStr string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	begin := end.AddDate(0, 0, -3)

	var err error
	if beginStr != "" {
		begin, err = time.Parse("2006-01-02", beginStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --begin: %w", err)
		}
	}
	if endStr != "" {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
		}
	}
	if end.Before(begin) {
		return time.Time{}, time.Time{}, fmt.Errorf("--end before --begin")
	}
	return begin, end, nil
}
