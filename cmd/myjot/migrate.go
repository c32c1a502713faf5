// ABOUTME: CLI command for moving the journal between storage backends.
// ABOUTME: Copies every record from the configured backend to the other one.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/myjot/internal/charm"
	"github.com/harperreed/myjot/internal/config"
	"github.com/harperreed/myjot/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo     string
	migrateDryRun bool
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy the journal to another storage backend",
	Long: `Copy every record from the configured backend to another one.

BACKENDS:

  badger   Embedded store at ~/.local/share/myjot/badger
  charm    Charm KV, synced and E2E encrypted with your SSH key

IMPORTANT:

  - The destination must be empty unless --force is given
  - Record ids are kept, so routines and custom meals stay addressable
  - Run with --dry-run first to see what would be migrated
  - The config file is updated to the new backend after a successful copy

USAGE:

  myjot migrate --to charm --dry-run   # Preview what would be migrated
  myjot migrate --to charm             # Perform the migration`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		from := cfg.GetBackend()
		if migrateTo == from {
			return fmt.Errorf("journal already uses the %s backend", from)
		}

		sf, err := storage.BuildSaveFile(ctx, gateway)
		if err != nil {
			return fmt.Errorf("failed to read %s backend: %w", from, err)
		}

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Println()
			fmt.Printf("Would migrate from %s to %s:\n", from, migrateTo)
			fmt.Printf("  Workouts: %d\n", len(sf.ExerciseLogs))
			fmt.Printf("  Routines: %d\n", len(sf.ExerciseRoutines))
			fmt.Printf("  Meals: %d\n", len(sf.MealLogs))
			fmt.Printf("  Custom meals: %d\n", len(sf.CustomMeals))
			return nil
		}

		dst, finish, err := openDestination(migrateTo)
		if err != nil {
			return err
		}
		summary, err := storage.MigrateData(ctx, gateway, dst)
		if ferr := finish(); err == nil {
			err = ferr
		}
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		cfg.Backend = migrateTo
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		color.Green("✓ Migrated %d records from %s to %s", summary.Total(), from, migrateTo)
		for _, coll := range storage.AllCollections {
			fmt.Printf("  %s: %d\n", coll, summary.Records[coll])
		}
		fmt.Printf("Config updated: %s\n", config.GetConfigPath())
		return nil
	},
}

// openDestination opens the target backend after checking it is empty.
// The returned finish func flushes and closes it.
func openDestination(backend string) (storage.Gateway, func() error, error) {
	switch backend {
	case config.BackendBadger:
		dir := cfg.BadgerDir()
		nonEmpty, err := storage.IsDirNonEmpty(dir)
		if err != nil {
			return nil, nil, err
		}
		if nonEmpty && !migrateForce {
			return nil, nil, fmt.Errorf("badger store at %s already has data (use --force to merge into it)", dir)
		}
		dst, err := storage.Open(storage.BadgerConfig{Dir: dir, SyncWrites: true, Logger: logger})
		if err != nil {
			return nil, nil, err
		}
		return dst, dst.Close, nil

	case config.BackendCharm:
		client, err := charm.InitClient(logger)
		if err != nil {
			return nil, nil, err
		}
		if client.IsReadOnly() {
			return nil, nil, charm.ErrDatabaseLocked
		}
		counts, err := client.KeyCount()
		if err != nil {
			return nil, nil, err
		}
		if len(counts) > 0 && !migrateForce {
			return nil, nil, fmt.Errorf("charm backend already has data (use --force to merge into it)")
		}
		client.SetAutoSync(false)
		finish := func() error {
			client.SetAutoSync(true)
			if err := client.Sync(); err != nil {
				logger.Warn("charm sync after migration failed", "err", err)
			}
			return client.Close()
		}
		return charm.NewGateway(client), finish, nil
	}
	return nil, nil, fmt.Errorf("unknown backend: %q (use badger or charm)", backend)
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend: badger or charm")
	_ = migrateCmd.MarkFlagRequired("to")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "write into a destination that already has data")
	rootCmd.AddCommand(migrateCmd)
}
