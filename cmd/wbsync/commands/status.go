package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sellerstats/wbsync/internal/wbapi"
)

// statusCmd reports connectivity and campaign counts without writing
// anything.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity and campaign counts",
	Long: `Checks the database connection and queries the WB API for the
campaign list, printing counts by status and type. No data is written.

Example:
  go run ./cmd/wbsync status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	printHeader("wbsync status")

	health, err := d.db.HealthCheck(ctx)
	if err != nil {
		fmt.Printf("  Database : ❌ %s\n", health.Error)
	} else {
		fmt.Printf("  Database : ✅ %s (%d/%d conns)\n",
			health.ResponseTime, health.TotalConns, health.MaxConns)
	}

	promo, err := d.wb.FetchPromotionCount(ctx)
	if err != nil {
		fmt.Printf("  WB API   : ❌ %v\n", err)
		return nil
	}

	stats := promo.Stats()
	fmt.Printf("  WB API   : ✅ %d campaigns\n", stats.Total)

	printSeparator()
	fmt.Println("  Campaigns by status:")
	for _, s := range []struct {
		code int
		name string
	}{
		{wbapi.CampaignStatusDone, "done"},
		{wbapi.CampaignStatusActive, "active"},
		{wbapi.CampaignStatusPaused, "paused"},
	} {
		fmt.Printf("    %-7s (%d): %d\n", s.name, s.code, stats.ByStatus[s.code])
	}

	synced := wbapi.ExtractCampaignIDs(promo, []int{
		wbapi.CampaignStatusDone,
		wbapi.CampaignStatusActive,
		wbapi.CampaignStatusPaused,
	})
	fmt.Printf("\n  Synced campaign IDs: %d\n", len(synced))

	return nil
}
