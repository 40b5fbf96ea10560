package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"triptracks-service/internal/adapters/repositories"
	"triptracks-service/internal/config"
	"triptracks-service/internal/platform/db"

	"github.com/spf13/cobra"
)

var flagSeedPath string

func init() {
	seedCmd.Flags().StringVar(&flagSeedPath, "file", "", "Traveler seed JSON (defaults to SEED_PATH)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		conn, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := repositories.InitSchema(cmd.Context(), conn); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Schema ready.")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the schema and load traveler profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := flagSeedPath
		if path == "" {
			path = config.Get("SEED_PATH", "data/seeds/travelers.json")
		}

		conn, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := repositories.InitSchema(cmd.Context(), conn); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}

		n, err := repositories.SeedFromJSON(cmd.Context(), conn, path)
		if err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d travelers from %s.\n", n, path)
		return nil
	},
}

func openDatabase(ctx context.Context) (*sql.DB, error) {
	url := config.Get("DATABASE_URL", "")
	if url == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return db.Open(ctx, url)
}
