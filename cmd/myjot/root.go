// ABOUTME: Root Cobra command for myjot CLI.
// ABOUTME: Handles config, logger, and gateway lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/myjot/internal/config"
	"github.com/harperreed/myjot/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	logger  *log.Logger
	gateway storage.Gateway

	backendFlag string
	dataDirFlag string
)

// commands that never touch the journal
var noGateway = map[string]bool{
	"help":          true,
	"install-skill": true,
	"link":          true,
	"unlink":        true,
	"wipe":          true,
	"repair":        true,
	"reset":         true,
	"status":        true,
}

var rootCmd = &cobra.Command{
	Use:   "myjot",
	Short: "Personal workout and meal journal",
	Long: `myjot is a CLI journal for workouts, routines, and meals.

WHAT IT TRACKS:

  Workouts   exercises with sets (Strength Training, Cardio, Flexibility)
  Routines   reusable workout templates to start a workout from
  Meals      logged meals and reusable custom meals

QUICK START:

  $ myjot user set sam                             # Name the journal
  $ myjot workout add -f pull-day.yaml             # Log a workout from a draft
  $ myjot workout add -f legs.yaml --routine       # Save a routine
  $ myjot workout from-routine 1 --body-weight 180 # Log a routine as done today
  $ myjot workout list                             # See recent workouts
  $ myjot meal add --name Lunch --meal Burrito --type Lunch --calories 650

SAVE FILES:

  $ myjot export savefile -o journal.txt   # Portable base64 save file
  $ myjot import journal.txt               # Replace the journal with a save file

STORAGE:

  The default backend is an embedded badger store at ~/.local/share/myjot/badger.
  Set "backend": "charm" in ~/.config/myjot/config.json (or pass --backend charm)
  to keep the journal in Charm KV, synced and E2E encrypted with your SSH key.

MCP INTEGRATION:

  Run 'myjot mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants. Add to your Claude
  config:

  {
    "mcpServers": {
      "myjot": { "command": "myjot", "args": ["mcp"] }
    }
  }`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if backendFlag != "" {
			cfg.Backend = backendFlag
		}
		if dataDirFlag != "" {
			cfg.DataDir = dataDirFlag
		}
		logger = cfg.NewLogger()

		if noGateway[cmd.Name()] {
			return nil
		}
		gateway, err = cfg.OpenGateway(logger)
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeGateway()
	},
}

func closeGateway() error {
	if gateway == nil {
		return nil
	}
	err := gateway.Close()
	gateway = nil
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend: badger or charm (default from config)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default ~/.local/share/myjot)")
}
