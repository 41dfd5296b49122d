package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pidex/pidex/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and validate the pidex configuration file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective config",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		fmt.Println("Effective configuration:")
		fmt.Println()
		fmt.Printf("  Database:\n")
		fmt.Printf("    Path:           %s\n", cfg.Database.Path)
		fmt.Println()
		fmt.Printf("  Sprites:\n")
		fmt.Printf("    Directory:      %s\n", cfg.Sprites.Directory)
		fmt.Printf("    Memory entries: %d\n", cfg.Sprites.MemoryEntries)
		fmt.Printf("    Disk limit:     %d MB\n", cfg.Sprites.DiskLimitMB)
		fmt.Println()
		fmt.Printf("  PokeAPI:\n")
		fmt.Printf("    Base URL:       %s\n", cfg.PokeAPI.BaseURL)
		fmt.Printf("    Sprite URL:     %s\n", cfg.PokeAPI.SpriteBaseURL)
		fmt.Printf("    Timeout:        %s\n", cfg.PokeAPI.Timeout)
		fmt.Printf("    Rate:           %d req/s\n", cfg.PokeAPI.RequestsPerSecond)
		fmt.Println()
		fmt.Printf("  Input:\n")
		fmt.Printf("    Backend:        %s\n", cfg.Input.Backend)
		fmt.Printf("    Debounce:       %d ms\n", cfg.Input.DebounceMS)
		if len(cfg.Input.GPIOPins) > 0 {
			names := make([]string, 0, len(cfg.Input.GPIOPins))
			for name := range cfg.Input.GPIOPins {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("    Pin %-6s      %d\n", name+":", cfg.Input.GPIOPins[name])
			}
		}
		fmt.Println()
		fmt.Printf("  UI:\n")
		fmt.Printf("    Sprite width:   %d\n", cfg.UI.SpriteWidth)
		fmt.Printf("    Debug overlay:  %v\n", cfg.UI.ShowDebug)
		fmt.Println()
		fmt.Printf("  Logging:\n")
		fmt.Printf("    Level:          %s\n", cfg.Logging.Level)
		fmt.Printf("    Directory:      %s\n", cfg.Logging.Directory)

		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}
		fmt.Println("Configuration is valid.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
