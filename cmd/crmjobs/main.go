package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"crm-service/config"
	"crm-service/internal/jobs"
	"crm-service/internal/scheduler"
	"crm-service/internal/upstream"
	"crm-service/internal/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// crmjobs runs any of the scheduled jobs once, against a live API.
// Useful for cron-less environments and for checking job output by hand.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		upstreamURL   string
		logDir        string
		timeoutSec    int
		restockAmount int
		cutoffDays    int
	)

	cfg := config.Load()

	root := &cobra.Command{
		Use:   "crmjobs",
		Short: "Run CRM scheduled jobs on demand",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return util.InitLogger(cfg.Server.Env)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			util.SyncLogger()
		},
	}

	root.PersistentFlags().StringVar(&upstreamURL, "upstream", cfg.Jobs.UpstreamURL, "base URL of the CRM API")
	root.PersistentFlags().StringVar(&logDir, "log-dir", cfg.Jobs.LogDir, "directory for per-job log files")
	root.PersistentFlags().IntVar(&timeoutSec, "timeout", int(cfg.Jobs.UpstreamTimeout/time.Second), "API request timeout in seconds")

	buildJob := func(jobName string, construct func(api jobs.API, logger *zap.Logger) scheduler.Job) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			logger, err := jobs.NewJobLogger(logDir, jobName)
			if err != nil {
				return fmt.Errorf("failed to open job log: %w", err)
			}
			client := upstream.NewClient(upstreamURL, time.Duration(timeoutSec)*time.Second)
			job := construct(client, logger)

			run := scheduler.Execute(cmd.Context(), job, 1)
			log.Printf("Job %s finished: state=%s summary=%v", job.Name(), run.State, run.Summary)
			if run.Err != nil {
				return run.Err
			}
			return nil
		}
	}

	heartbeatCmd := &cobra.Command{
		Use:   "heartbeat",
		Short: "Check that the CRM API is alive",
		RunE: buildJob(jobs.HeartbeatJobName, func(api jobs.API, logger *zap.Logger) scheduler.Job {
			return jobs.NewHeartbeatMonitor(api, logger)
		}),
	}

	stockCmd := &cobra.Command{
		Use:   "stock-scan",
		Short: "Restock products below the low stock floor",
		RunE: buildJob(jobs.StockUpdateJobName, func(api jobs.API, logger *zap.Logger) scheduler.Job {
			return jobs.NewStockScanJob(api, logger, restockAmount)
		}),
	}
	stockCmd.Flags().IntVar(&restockAmount, "restock-amount", cfg.Jobs.RestockAmount, "units to add per low stock product")

	remindersCmd := &cobra.Command{
		Use:   "order-reminders",
		Short: "Log reminders for pending orders older than the cutoff",
		RunE: buildJob(jobs.OrderRemindersJobName, func(api jobs.API, logger *zap.Logger) scheduler.Job {
			return jobs.NewOrderReminderScanner(api, logger, cutoffDays)
		}),
	}
	remindersCmd.Flags().IntVar(&cutoffDays, "cutoff-days", cfg.Jobs.ReminderCutoff, "minimum age in days for a pending order to get a reminder")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the weekly CRM summary report",
		RunE: buildJob(jobs.ReportJobName, func(api jobs.API, logger *zap.Logger) scheduler.Job {
			return jobs.NewReportGenerator(api, logger)
		}),
	}

	root.AddCommand(heartbeatCmd, stockCmd, remindersCmd, reportCmd)
	root.SetContext(context.Background())
	return root
}
