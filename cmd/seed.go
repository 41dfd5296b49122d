package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/pidex/pidex/internal/db"
	"github.com/pidex/pidex/internal/logging"
	"github.com/pidex/pidex/internal/pokeapi"
	"github.com/pidex/pidex/internal/seed"
	"github.com/pidex/pidex/internal/sprite"
	"github.com/pidex/pidex/internal/store"
	"github.com/pidex/pidex/internal/ui"
)

var (
	seedFrom    int
	seedTo      int
	seedSprites bool
	seedNoUI    bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database from PokéAPI",
	Long: `Fetch a dex id range from PokéAPI and store it in the local
database. Entries that fail are skipped and reported; rerunning the
same range retries them. Requests are rate limited to stay polite.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed()
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedFrom, "from", 1, "first dex id")
	seedCmd.Flags().IntVar(&seedTo, "to", 151, "last dex id")
	seedCmd.Flags().BoolVar(&seedSprites, "sprites", true, "also download sprite images")
	seedCmd.Flags().BoolVar(&seedNoUI, "no-ui", false, "plain line output instead of the progress display")
	rootCmd.AddCommand(seedCmd)
}

func runSeed() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.Setup(cfg.Logging.Level, cfg.Logging.Directory)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}

	lockPath := db.LockPath(cfg.Database.Path)
	if err := db.AcquireLock(lockPath); err != nil {
		return err
	}
	defer db.ReleaseLock(lockPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	var sprites seed.SpriteSink
	if seedSprites {
		disk, err := sprite.NewDiskStore(cfg.Sprites.Directory)
		if err != nil {
			return fmt.Errorf("opening sprite store: %w", err)
		}
		sprites = disk
	}

	client := pokeapi.New(cfg.PokeAPI, &http.Client{Timeout: cfg.PokeAPI.Timeout}, clockwork.NewRealClock())
	seeder := seed.New(client, store.New(database), sprites, logger)
	opts := seed.Options{Sprites: seedSprites}

	if seedNoUI {
		opts.Progress = func(p seed.Progress) {
			fmt.Printf("\r#%04d  %d/%d done, %d failed", p.CurrentID, p.Done, p.Total, p.Failed)
		}
		result, err := seeder.Run(ctx, seedFrom, seedTo, opts)
		fmt.Println()
		return reportSeed(result, err)
	}

	display := ui.NewSeedModel()
	opts.Progress = display.ReportProgress

	seedCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	display.SetCancel(cancel)

	go func() {
		result, err := seeder.Run(seedCtx, seedFrom, seedTo, opts)
		display.Finish(&result, err)
	}()

	program := tea.NewProgram(display)
	if _, err := program.Run(); err != nil {
		cancel()
		return fmt.Errorf("running progress display: %w", err)
	}

	result, runErr := display.Result()
	if result == nil {
		return runErr
	}
	return reportSeed(*result, runErr)
}

func reportSeed(result seed.Result, err error) error {
	if err != nil && result.OK == 0 && len(result.Failures) == 0 {
		return err
	}

	fmt.Printf("Seeded %d entries", result.OK)
	if len(result.Failures) > 0 {
		fmt.Printf(", %d failed:\n", len(result.Failures))
		for _, f := range result.Failures {
			fmt.Printf("  #%04d: %v\n", f.ID, f.Err)
		}
		fmt.Println("Rerun the same range to retry the failures.")
	} else {
		fmt.Println()
	}

	if err != nil {
		return fmt.Errorf("seed interrupted: %w", err)
	}
	return nil
}
