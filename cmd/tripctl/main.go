// Command tripctl manages the trip database and runs planner queries locally.
package main

import (
	"fmt"
	"os"
	"triptracks-service/internal/config"
	"triptracks-service/internal/platform/obs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "tripctl",
	Short: "Trip coordination service tooling",
	Long: `Administrative tooling for the trip coordination service.
Initializes and seeds the Postgres schema and runs itinerary and autocomplete queries without the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		config.LoadDotEnv()

		logger, err := obs.NewLogger(config.Get("LOG_LEVEL", "warn"))
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
