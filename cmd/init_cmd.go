package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pidex/pidex/internal/config"
	"github.com/pidex/pidex/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file interactively",
	Long:  `Walk through prompts to create a pidex configuration file at ~/.pidex/config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		fmt.Println("pidex Configuration Setup")
		fmt.Println("=========================")
		fmt.Println()

		fmt.Println("Input")
		fmt.Println("-----")
		backend := prompt(reader, "Button backend (keyboard/gpio)", "keyboard")

		cfg := &config.Config{
			Version: config.CurrentVersion,
			Input:   config.InputConfig{Backend: backend},
		}

		if backend == "gpio" {
			pins := map[string]int{}
			for _, name := range []string{"up", "down", "left", "right", "a", "b"} {
				pinStr := prompt(reader, "BCM pin for "+name, defaultPin(name))
				pin, err := strconv.Atoi(pinStr)
				if err != nil {
					return fmt.Errorf("invalid pin for %s: %s", name, pinStr)
				}
				pins[name] = pin
			}
			cfg.Input.GPIOPins = pins
		}
		fmt.Println()

		fmt.Println("Display")
		fmt.Println("-------")
		widthStr := prompt(reader, "Sprite width in cells", "24")
		width, err := strconv.Atoi(widthStr)
		if err != nil {
			return fmt.Errorf("invalid sprite width: %s", widthStr)
		}
		cfg.UI.SpriteWidth = width
		fmt.Println()

		cfgPath := config.ExpandHome(config.DefaultPath)
		if cfgFile != "" {
			cfgPath = cfgFile
		}

		if err := cfg.Save(cfgPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Config written to %s\n", cfgPath)

		// create the database and bring the schema up to date
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("reloading config: %w", err)
		}
		ctx := context.Background()
		database, err := db.Open(ctx, loaded.Database.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		fmt.Printf("Database ready at %s\n", loaded.Database.Path)
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  pidex seed   — Fill the database from PokéAPI")
		fmt.Println("  pidex        — Open the browse interface")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func prompt(reader *bufio.Reader, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("  %s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("  %s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

// defaultPin suggests the wiring used by common Pi button hats.
func defaultPin(name string) string {
	switch name {
	case "up":
		return "17"
	case "down":
		return "22"
	case "left":
		return "27"
	case "right":
		return "23"
	case "a":
		return "5"
	default:
		return "6"
	}
}
