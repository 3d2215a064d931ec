package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one promotion scan and exit",
	Long:  `Evaluate all active employees against the tariff schedule, raise notifications, and print the run report.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to initialize: %v", err)
		}
		defer deps.DB.Close()

		report, err := deps.Scheduler.RunNow(context.Background())
		if err != nil {
			log.Fatalf("scan failed: %v", err)
		}

		fmt.Printf("scan %s: evaluated=%d notified=%d suppressed=%d dispatch_failures=%d\n",
			report.RunID, report.Evaluated, report.Notified, report.Suppressed, report.DispatchFailures)
	},
}
