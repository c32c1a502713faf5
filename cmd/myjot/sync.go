// ABOUTME: sync command group for journals kept on the Charm backend.
// ABOUTME: Links devices, reports per-collection counts, and repairs or rebuilds the local copy.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/harperreed/myjot/internal/charm"
	"github.com/harperreed/myjot/internal/storage"
	"github.com/spf13/cobra"
)

// collectionLabels names each journal collection the way the CLI prints it.
var collectionLabels = map[storage.Collection]string{
	storage.CollUser:             "User profile",
	storage.CollExerciseLog:      "Workouts",
	storage.CollExerciseRoutines: "Routines",
	storage.CollMealLog:          "Meals",
	storage.CollCustomMeals:      "Custom meals",
}

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Keep the journal in step across devices",
	Long: `Keep the journal in step across devices with Charm Cloud.

Only journals on the charm backend sync. Workouts, routines and meals are
encrypted with your Charm key before they leave the device, and every
committed transaction is pushed as a whole.

To move an existing journal over:

  myjot sync link              # once per device
  myjot migrate --to charm     # on the device that has the data
  myjot sync status            # counts per collection

Maintenance:

  repair   check and repair the local copy of the journal
  reset    drop the local copy and pull it again from the cloud
  wipe     delete the journal everywhere`,
}

// runCharm runs the charm CLI attached to the terminal.
func runCharm(args ...string) error {
	c := exec.Command("charm", args...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

// confirmTyped asks the user to type want and reports whether they did.
func confirmTyped(prompt, want string) bool {
	fmt.Print(prompt)
	var answer string
	_, _ = fmt.Scanln(&answer)
	return answer == want
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to your Charm account",
	Long: `Link this device to your Charm account and pull the journal.

A new account is created from your SSH key when you have none yet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("link"); err != nil {
			return fmt.Errorf("link device: %w (is the charm CLI installed?)", err)
		}
		color.Green("\n✓ Device linked")

		client, err := charm.InitClient(logger)
		if err != nil {
			color.Yellow("⚠ Linked, but the journal store could not be opened: %v", err)
			return nil
		}
		defer client.Close()
		if err := client.Sync(); err != nil {
			color.Yellow("⚠ First pull failed: %v", err)
			return nil
		}
		color.Green("✓ Journal pulled from the cloud")
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Unlink this device",
	Long: `Unlink this device from Charm. The local journal stays readable;
link again with 'myjot sync link' to resume syncing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("unlink"); err != nil {
			return fmt.Errorf("unlink device: %w", err)
		}
		color.Green("✓ Device unlinked; the local journal is kept")
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the account and how many records each collection holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Backend:", cfg.GetBackend())
		if cfg.GetBackend() != "charm" {
			fmt.Println("This journal does not sync. Move it with 'myjot migrate --to charm'.")
		}

		client, err := charm.InitClient(logger)
		if err != nil {
			color.Yellow("Charm store unavailable: %v", err)
			return nil
		}
		defer client.Close()

		id, err := client.ID()
		if err != nil {
			color.Yellow("Not linked. Run 'myjot sync link' first.")
			return nil
		}
		fmt.Printf("Account: %s (%s)\n", id, charm.Host)
		if client.IsReadOnly() {
			color.Yellow("Read-only: another myjot process (mcp?) holds the journal")
		}

		counts, err := client.KeyCount()
		if err != nil {
			return fmt.Errorf("count records: %w", err)
		}
		fmt.Println()
		for _, coll := range storage.AllCollections {
			fmt.Printf("  %-13s %d\n", collectionLabels[coll]+":", counts[coll])
		}
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete the journal locally and in the cloud",
	Long: `Delete every workout, routine and meal, locally and in Charm Cloud.
Export a save file first if you may want the data back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		color.Red("This permanently deletes the whole journal on every linked device.")
		if !confirmTyped("Type 'wipe' to confirm: ", "wipe") {
			fmt.Println("Canceled.")
			return nil
		}

		result, err := kv.Wipe(charm.DBName)
		if err != nil {
			return fmt.Errorf("wipe journal: %w", err)
		}
		color.Green("✓ Journal wiped")
		fmt.Printf("  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Printf("  Local files deleted:   %d\n", result.LocalFilesDeleted)
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Check and repair the local journal copy",
	Long: `Check the local copy of the journal and repair it.

Run this after lock errors or a crash. With --force the repair continues
even when the integrity check fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		fmt.Println("Checking the local journal...")
		result, err := kv.Repair(charm.DBName, force)

		steps := []struct {
			done bool
			msg  string
		}{
			{result.WalCheckpointed, "write-ahead log checkpointed"},
			{result.ShmRemoved, "stale shared-memory file removed"},
			{result.Vacuumed, "storage compacted"},
		}
		for _, s := range steps {
			if s.done {
				color.Green("  ✓ %s", s.msg)
			}
		}
		if result.IntegrityOK {
			color.Green("  ✓ integrity check passed")
		} else {
			color.Red("  ✗ integrity check failed")
		}

		if err != nil {
			if !force {
				color.Yellow("\nRetry with --force, or 'myjot sync reset' to pull a fresh copy.")
			}
			return fmt.Errorf("repair journal: %w", err)
		}
		color.Green("\n✓ Local journal repaired")
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop the local copy and pull the journal again",
	Long: `Drop the local copy of the journal and rebuild it from Charm Cloud.
Entries that never reached the cloud are lost.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmTyped("Drop the local journal and pull it again? [y/N]: ", "y") {
			fmt.Println("Canceled.")
			return nil
		}

		client, err := charm.InitClient(logger)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.Reset(); err != nil {
			return fmt.Errorf("reset journal: %w", err)
		}
		color.Green("✓ Local journal rebuilt from the cloud")
		return nil
	},
}

func init() {
	syncCmd.AddCommand(syncLinkCmd, syncUnlinkCmd, syncStatusCmd, syncRepairCmd, syncResetCmd, syncWipeCmd)
	syncRepairCmd.Flags().Bool("force", false, "keep repairing when the integrity check fails")
	rootCmd.AddCommand(syncCmd)
}
