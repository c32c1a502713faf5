// ABOUTME: CLI commands for the journal's user profile.
// ABOUTME: The user name travels with the save file.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/myjot/internal/meal"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Show or set the journal's user name",
}

var userSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Set the user name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := meal.NewService(gateway, logger).SetUser(cmd.Context(), args[0]); err != nil {
			return err
		}
		color.Green("✓ User set")
		return nil
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the user name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := meal.NewService(gateway, logger).User(cmd.Context())
		if errors.Is(err, meal.ErrNoUser) {
			fmt.Println("No user set. Run 'myjot user set <name>'.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println(u.UserName)
		return nil
	},
}

func init() {
	userCmd.AddCommand(userSetCmd)
	userCmd.AddCommand(userShowCmd)
	rootCmd.AddCommand(userCmd)
}
