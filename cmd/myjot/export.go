// ABOUTME: CLI commands for exporting and importing the journal.
// ABOUTME: Supports the base64 save file plus JSON, YAML, and Markdown exports.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/harperreed/myjot/internal/storage"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export the journal",
	Long: `Export the journal in various formats.

FORMATS:

  savefile   Base64 save file (the only format 'myjot import' reads)
  json       Full JSON export
  yaml       YAML export (human-readable)
  markdown   Markdown summary (for documentation/sharing)

EXAMPLES:

  myjot export savefile -o journal.txt   # Portable backup
  myjot export json                      # Print every record as JSON
  myjot export markdown -o journal.md    # Readable summary`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"savefile", "json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		format := args[0]

		var data []byte
		var err error

		switch format {
		case "savefile":
			var sf *storage.SaveFile
			sf, err = storage.BuildSaveFile(ctx, gateway)
			if err == nil {
				data, err = sf.Encode()
			}
		case "json":
			data, err = storage.ExportJSON(ctx, gateway)
		case "yaml":
			data, err = storage.ExportYAML(ctx, gateway)
		case "markdown":
			var md string
			md, err = storage.ExportMarkdown(ctx, gateway)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use savefile, json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the journal with a save file",
	Long: `Replace the journal with the contents of a save file.

Every existing workout, routine, meal, and custom meal is deleted first.
If the save file cannot be read or written, the journal is left unchanged.

EXAMPLES:

  myjot import journal.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filepath.Clean(filename))
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		sf, err := storage.DecodeSaveFile(data)
		if err != nil {
			return err
		}

		summary, err := storage.ImportSaveFile(cmd.Context(), gateway, sf)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported from %s", filename)
		fmt.Printf("  Workouts: %d\n", summary.ExerciseLogs)
		fmt.Printf("  Routines: %d\n", summary.ExerciseRoutines)
		fmt.Printf("  Meals: %d\n", summary.MealLogs)
		fmt.Printf("  Custom meals: %d\n", summary.CustomMeals)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
