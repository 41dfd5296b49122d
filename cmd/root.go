package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pidex/pidex/internal/config"
	"github.com/pidex/pidex/internal/db"
	"github.com/pidex/pidex/internal/input"
	"github.com/pidex/pidex/internal/logging"
	"github.com/pidex/pidex/internal/sprite"
	"github.com/pidex/pidex/internal/state"
	"github.com/pidex/pidex/internal/store"
	"github.com/pidex/pidex/internal/ui"
)

var (
	cfgFile  string
	logLevel string
	version  = "dev"
	commit   = "none"
	date     = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pidex",
	Short: "pidex — a pocket Pokédex for small screens",
	Long: `pidex browses a local Pokédex database on a terminal or a
Raspberry Pi with a small display and six buttons.

Running without a subcommand opens the browse interface. Fill the
database first with ` + "`pidex seed`" + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse()
	},
}

func Execute() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.pidex/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// loadConfig applies the --config and --log-level flags on top of the file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runBrowse() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// the UI owns the terminal, so logs go to file only
	logger, err := logging.SetupFileOnly(cfg.Logging.Level, cfg.Logging.Directory)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}

	lockPath := db.LockPath(cfg.Database.Path)
	if err := db.AcquireLock(lockPath); err != nil {
		return err
	}
	defer db.ReleaseLock(lockPath)

	ctx := context.Background()
	database, err := db.Open(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	disk, err := sprite.NewDiskStore(cfg.Sprites.Directory)
	if err != nil {
		return fmt.Errorf("opening sprite store: %w", err)
	}

	var gpio *input.GPIOReader
	if cfg.Input.Backend == "gpio" {
		debounce := time.Duration(cfg.Input.DebounceMS) * time.Millisecond
		gpio, err = input.NewGPIOReader(cfg.Input.GPIOPins, debounce)
		if err != nil {
			return fmt.Errorf("setting up gpio: %w", err)
		}
	}

	statePath := config.ExpandHome(state.DefaultPath)
	session, err := state.Load(statePath)
	if err != nil {
		logger.Warn("session state unreadable, starting fresh", "error", err)
		session = state.New()
	}

	app := &ui.App{
		Store:   store.New(database),
		Sprites: sprite.NewCache(disk, cfg.Sprites.MemoryEntries),
		Cfg:     cfg,
		Session: session,
		Log:     logger,
		GPIO:    gpio,
	}

	logger.Info("starting browse ui", "version", version, "input", cfg.Input.Backend)
	program := tea.NewProgram(ui.New(app), tea.WithAltScreen())
	_, runErr := program.Run()

	if err := session.Save(statePath); err != nil {
		logger.Warn("saving session state", "error", err)
	}
	if runErr != nil {
		return fmt.Errorf("running ui: %w", runErr)
	}
	return nil
}
