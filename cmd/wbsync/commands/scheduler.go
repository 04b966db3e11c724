package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sellerstats/wbsync/internal/scheduler"
	"github.com/sellerstats/wbsync/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the sync scheduler",
	Long: `Starts the scheduler daemon or inspects its jobs.

Registered jobs:
- products_sync:  daily at 5 AM (product catalog refresh)
- adv_stats_sync: daily at 6 AM (advertising statistics)
- cr_stats_sync:  hourly at minute 15 (conversion rate snapshot)

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run one job immediately
  status  - show job run statistics

Example:
  go run ./cmd/wbsync scheduler start
  go run ./cmd/wbsync scheduler run adv_stats_sync`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler and registers all sync jobs.

The scheduler runs until interrupted with Ctrl+C; a running job is
allowed to finish before shutdown.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show job run statistics",
		RunE:  showSchedulerStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	d, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.close()

	sched.Start()

	fmt.Println("✅ Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	d, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.close()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	d, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.close()

	fmt.Printf("Running job: %s\n", jobName)
	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// Jobs run in the background; wait for the interrupt so the process
	// does not exit under the job.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	fmt.Println("Job started; press Ctrl+C to exit")
	<-quit

	return nil
}

func showSchedulerStatus(cmd *cobra.Command, args []string) error {
	d, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.close()

	stats := sched.GetJobStats()

	fmt.Println("Job Statistics:")
	fmt.Println()

	for jobName, stat := range stats {
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		if stat.LastSuccess != nil {
			fmt.Printf("   Last Success: %s\n", stat.LastSuccess.Format("2006-01-02 15:04:05"))
		}
		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}

		fmt.Println()
	}

	return nil
}

// initScheduler builds the dependency graph and registers all jobs.
func initScheduler() (*deps, *scheduler.Scheduler, error) {
	d, err := initDeps()
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(d.log)

	productsJob := jobs.NewProductsJob(d.productsPipeline(), d.log)
	if err := sched.AddJob(productsJob); err != nil {
		d.close()
		return nil, nil, err
	}

	advJob := jobs.NewAdvStatsJob(d.advPipeline(true), d.cfg, d.log)
	if err := sched.AddJob(advJob); err != nil {
		d.close()
		return nil, nil, err
	}

	crJob := jobs.NewConvRateJob(d.crPipeline(), d.log)
	if err := sched.AddJob(crJob); err != nil {
		d.close()
		return nil, nil, err
	}

	return d, sched, nil
}
