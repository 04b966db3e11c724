package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sellerstats/wbsync/internal/api"
)

// apiCmd starts the ops HTTP server together with the scheduler, so the
// /jobs endpoints report live history.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the ops HTTP server",
	Long: `Starts the scheduler and the ops HTTP server.

Endpoints:
  GET /health              - service and database health
  GET /jobs                - per-job run statistics
  GET /jobs/{name}/history - recent runs of one job

Example:
  go run ./cmd/wbsync api`,
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	d, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer d.close()

	sched.Start()
	defer sched.Stop()

	router := api.NewRouter(d.db, sched, d.log)
	server := api.New(d.cfg, d.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("✅ Ops server listening on :%s\n", d.cfg.APIPort)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
