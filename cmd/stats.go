package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pidex/pidex/internal/db"
	"github.com/pidex/pidex/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Open(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	st := store.New(database)

	total, err := st.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting entries: %w", err)
	}
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	fmt.Printf("Pokémon:  %d\n", total)
	if total == 0 {
		fmt.Println("\nThe database is empty. Run `pidex seed` to fill it.")
		return nil
	}

	byGen, err := st.CountByGeneration(ctx)
	if err != nil {
		return fmt.Errorf("counting by generation: %w", err)
	}
	fmt.Println("\nBy generation:")
	for _, g := range byGen {
		fmt.Printf("  gen %-3s %d\n", g.Key, g.Count)
	}

	byType, err := st.CountByType(ctx)
	if err != nil {
		return fmt.Errorf("counting by type: %w", err)
	}
	fmt.Println("\nBy type:")
	for _, t := range byType {
		fmt.Printf("  %-10s %d\n", t.Key, t.Count)
	}

	if run, err := st.LastSeedRun(ctx); err == nil && run != nil {
		fmt.Printf("\nLast seed: %s  #%d–#%d  %d ok, %d failed\n",
			run.FinishedAt.Format("2006-01-02 15:04"), run.FromID, run.ToID, run.OKCount, run.FailCount)
		if run.Notes != "" {
			fmt.Printf("  %s\n", run.Notes)
		}
	}
	return nil
}
