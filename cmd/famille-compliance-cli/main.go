package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/junkusano/famille-shift-matching-sub002/internal/checks"
	"github.com/junkusano/famille-shift-matching-sub002/internal/config"
	"github.com/junkusano/famille-shift-matching-sub002/internal/logger"
	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
	"github.com/junkusano/famille-shift-matching-sub002/internal/report"
	"github.com/junkusano/famille-shift-matching-sub002/internal/service"
)

// Operations CLI: manual/scoped check runs and alert export, sharing the
// wiring of the HTTP service.
func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "famille-compliance-cli",
		Short: "Compliance batch runner for the famille portal",
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(alertsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService() (*service.ComplianceService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, "console", "famille-compliance-cli")
	if err != nil {
		return nil, err
	}

	return service.NewComplianceService(cfg, log)
}

func runCmd() *cobra.Command {
	var dryRun bool
	var onlyCheck string
	var targetID string
	var fromDate string
	var triggeredBy string

	cmd := &cobra.Command{
		Use:   "run <checkset>",
		Short: "Run a compliance checkset (daily, shift, master)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			defer svc.Close()

			opts := checks.Options{
				DryRun:   dryRun,
				TargetID: targetID,
			}
			if fromDate != "" {
				from, err := time.Parse("2006-01-02", fromDate)
				if err != nil {
					return fmt.Errorf("invalid --from date: %w", err)
				}
				opts.FromDate = &from
			}

			result, err := svc.Batch().Run(context.Background(), service.RunParams{
				RunType:     models.RunTypeManual,
				TriggeredBy: triggeredBy,
				Checkset:    args[0],
				OnlyCheck:   onlyCheck,
				Options:     opts,
			})
			if err != nil {
				return err
			}

			printRunResult(result)
			if !result.OK {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "scan without writing alerts")
	cmd.Flags().StringVar(&onlyCheck, "check", "", "run only the named check")
	cmd.Flags().StringVar(&targetID, "target", "", "restrict to one subject/worker id")
	cmd.Flags().StringVar(&fromDate, "from", "", "scan window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&triggeredBy, "by", "cli", "who triggered the run")

	return cmd
}

func alertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Inspect and export alerts",
	}

	var out string
	var status string

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export alerts to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			defer svc.Close()

			alerts, err := svc.Alerts().ListAlerts(context.Background(), status, 10000)
			if err != nil {
				return err
			}

			workbook, err := report.GenerateAlertsWorkbook(alerts)
			if err != nil {
				return err
			}

			if err := os.WriteFile(out, workbook, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			color.Green("exported %d alerts to %s", len(alerts), out)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&out, "out", "alerts.xlsx", "output file")
	exportCmd.Flags().StringVar(&status, "status", "", "filter by status (default: live alerts)")

	cmd.AddCommand(exportCmd)
	return cmd
}

func printRunResult(result service.RunResult) {
	if result.OK {
		color.Green("batch run %s finished", result.BatchRunID)
	} else {
		color.Red("batch run %s failed: %s", result.BatchRunID, result.Error)
	}

	names := make([]string, 0, len(result.Stats.Checks))
	for name := range result.Stats.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		r := result.Stats.Checks[name]
		line := fmt.Sprintf("  %-32s scanned=%d created=%d failed=%d", name, r.Scanned, r.Created, r.Failed)
		if r.Failed > 0 {
			color.Yellow(line)
		} else {
			fmt.Println(line)
		}
	}

	totals := result.Stats.Totals
	fmt.Printf("  %-32s scanned=%d created=%d failed=%d\n", "total", totals.Scanned, totals.Created, totals.Failed)
}
