package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/pidex/pidex/internal/config"
	"github.com/pidex/pidex/internal/db"
	"github.com/pidex/pidex/internal/logging"
	"github.com/pidex/pidex/internal/pokeapi"
	"github.com/pidex/pidex/internal/sprite"
	"github.com/pidex/pidex/internal/store"
)

var (
	spritesPrefetch bool
	spritesTrim     bool
)

var spritesCmd = &cobra.Command{
	Use:   "sprites",
	Short: "Manage the sprite image store",
	Long: `Show the sprite store size, prefetch missing sprites for every
Pokémon already in the database, and trim the store back under the
configured disk limit (oldest files first).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSprites()
	},
}

func init() {
	spritesCmd.Flags().BoolVar(&spritesPrefetch, "prefetch", false, "download missing sprites for seeded entries")
	spritesCmd.Flags().BoolVar(&spritesTrim, "trim", false, "delete oldest sprites over the disk limit")
	rootCmd.AddCommand(spritesCmd)
}

func runSprites() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.Setup(cfg.Logging.Level, cfg.Logging.Directory)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}

	disk, err := sprite.NewDiskStore(cfg.Sprites.Directory)
	if err != nil {
		return fmt.Errorf("opening sprite store: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if spritesPrefetch {
		if err := prefetchSprites(ctx, cfg, disk, logger); err != nil {
			return err
		}
	}

	if spritesTrim {
		removed, err := disk.Trim(int64(cfg.Sprites.DiskLimitMB) * 1024 * 1024)
		if err != nil {
			return fmt.Errorf("trimming sprite store: %w", err)
		}
		fmt.Printf("Removed %d sprite(s)\n", removed)
	}

	size, err := disk.Size()
	if err != nil {
		return fmt.Errorf("sizing sprite store: %w", err)
	}
	fmt.Printf("Sprite store: %s, %.1f MB (limit %d MB)\n",
		cfg.Sprites.Directory, float64(size)/1024/1024, cfg.Sprites.DiskLimitMB)
	return nil
}

func prefetchSprites(ctx context.Context, cfg *config.Config, disk *sprite.DiskStore, logger *slog.Logger) error {
	database, err := db.Open(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	entries, err := store.New(database).List(ctx, store.Filter{})
	if err != nil {
		return fmt.Errorf("listing entries: %w", err)
	}

	client := pokeapi.New(cfg.PokeAPI, &http.Client{Timeout: cfg.PokeAPI.Timeout}, clockwork.NewRealClock())

	fetched, missing := 0, 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if disk.Has(e.ID) {
			continue
		}
		data, err := client.SpritePNG(ctx, e.ID)
		if errors.Is(err, pokeapi.ErrNotFound) {
			missing++
			continue
		}
		if err != nil {
			logger.Warn("sprite fetch failed", "id", e.ID, "error", err)
			continue
		}
		if err := disk.Put(e.ID, data); err != nil {
			return fmt.Errorf("storing sprite %d: %w", e.ID, err)
		}
		fetched++
		fmt.Printf("\rFetched %d sprite(s)", fetched)
	}
	if fetched > 0 {
		fmt.Println()
	}
	if missing > 0 {
		fmt.Printf("%d entries have no sprite upstream\n", missing)
	}
	return nil
}
