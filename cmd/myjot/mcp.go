// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for Claude integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/myjot/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to build and log workouts and meals
through a standardized protocol. The server communicates via stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "myjot": {
        "command": "myjot",
        "args": ["mcp"]
      }
    }
  }

  On macOS, the config is at:
    ~/Library/Application Support/Claude/claude_desktop_config.json

WORKOUT SESSIONS:

  start_workout       Open an editing session (new, from a routine, or edit)
  add_exercise        Append an exercise with one default set
  update_exercise     Rename, recategorize, or annotate an exercise
  reorder_exercises   Reorder exercises by id
  delete_exercise     Remove the exercise at a position
  add_set             Append a set to an exercise
  update_set          Record a set's measurements
  delete_set          Remove the set at a position
  validate_workout    Check the session without saving
  submit_workout      Validate and save the session
  discard_workout     Drop the session without saving

RECORDS:

  list_workouts       List workouts (newest first) or routines
  get_workout         Get a workout or routine with all sets
  delete_workout      Delete a workout or routine
  list_routines       Routine names for the picker
  add_meal            Log a meal or save a custom meal

AVAILABLE RESOURCES:

  myjot://workouts/recent   Recent workouts and meals
  myjot://routines          Every saved routine`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(gateway, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
