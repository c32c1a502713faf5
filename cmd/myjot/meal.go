// ABOUTME: CLI commands for meal logs and custom meals.
// ABOUTME: Supports add, log-custom, list, and delete.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/myjot/internal/meal"
	"github.com/harperreed/myjot/internal/models"
	"github.com/spf13/cobra"
)

var (
	mealLogName string
	mealName    string
	mealType    string
	mealNotes   string
	mealAt      string
	mealCustom  bool
	mealLimit   int

	mealCalories float64
	mealProtein  float64
	mealCarbs    float64
	mealFats     float64
)

var mealCmd = &cobra.Command{
	Use:     "meal",
	Aliases: []string{"m"},
	Short:   "Log meals and manage custom meals",
	Long: `Log meals and keep reusable custom meals.

MEAL TYPES:

  Breakfast, Lunch, Dinner, Snack, Misc

MACROS:

  --calories, --protein, --carbs, and --fats are optional. A macro that is
  not passed stays empty rather than zero.

EXAMPLES:

  myjot meal add --name Lunch --meal Burrito --type Lunch --calories 650
  myjot meal add --custom --name "Usual oats" --meal Oatmeal --type Breakfast --protein 12
  myjot meal log-custom 1 --at "2025-03-10 08:00"
  myjot meal list
  myjot meal list --custom
  myjot meal delete 3`,
}

var mealAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a meal or save a custom meal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entry := &models.MealEntry{
			LogName:  mealLogName,
			LogNotes: mealNotes,
			MealName: mealName,
			MealType: models.MealType(mealType),
		}
		if !mealCustom {
			dt, err := entryDateTime(mealAt)
			if err != nil {
				return err
			}
			entry.DateTime = &dt
		}

		flags := cmd.Flags()
		macro := func(name string, v float64) *float64 {
			if !flags.Changed(name) {
				return nil
			}
			return &v
		}
		entry.Calories = macro("calories", mealCalories)
		entry.Protein = macro("protein", mealProtein)
		entry.Carbs = macro("carbs", mealCarbs)
		entry.Fats = macro("fats", mealFats)

		id, err := meal.NewService(gateway, logger).Add(cmd.Context(), entry, mealCustom)
		if err != nil {
			return err
		}

		if mealCustom {
			color.Green("✓ Saved custom meal %q", entry.LogName)
		} else {
			color.Green("✓ Logged %s: %s", entry.MealType, entry.MealName)
		}
		printID(id)
		return nil
	},
}

var mealLogCustomCmd = &cobra.Command{
	Use:   "log-custom <custom-meal-id>",
	Short: "Log a custom meal as eaten",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		customID, err := parseID(args[0])
		if err != nil {
			return err
		}
		dt, err := entryDateTime(mealAt)
		if err != nil {
			return err
		}
		id, err := meal.NewService(gateway, logger).FromCustom(cmd.Context(), customID, dt)
		if err != nil {
			return err
		}
		color.Green("✓ Logged custom meal %d", customID)
		printID(id)
		return nil
	},
}

var mealListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List logged meals or custom meals",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		meals, err := meal.NewService(gateway, logger).List(cmd.Context(), mealCustom, mealLimit)
		if err != nil {
			return fmt.Errorf("failed to list meals: %w", err)
		}
		if len(meals) == 0 {
			fmt.Println("No meals found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, m := range meals {
			when := "custom"
			if m.DateTime != nil {
				when = strings.Replace(*m.DateTime, "T", " ", 1)
			}
			line := fmt.Sprintf("%s  %s  %s  %s",
				faint.Sprintf("%4d", m.ID),
				padRight(when, 16),
				padRight(string(m.MealType), 9),
				truncate(m.MealName, 30),
			)
			if m.Calories != nil {
				line += fmt.Sprintf("  %g kcal", *m.Calories)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var mealDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a logged meal or custom meal",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := meal.NewService(gateway, logger).Delete(cmd.Context(), id, mealCustom); err != nil {
			return fmt.Errorf("failed to delete meal: %w", err)
		}
		color.Yellow("✗ Deleted meal %d", id)
		return nil
	},
}

func init() {
	mealAddCmd.Flags().StringVar(&mealLogName, "name", "", "log name")
	mealAddCmd.Flags().StringVar(&mealName, "meal", "", "what was eaten")
	mealAddCmd.Flags().StringVarP(&mealType, "type", "t", "", "meal type: Breakfast, Lunch, Dinner, Snack, Misc")
	mealAddCmd.Flags().StringVar(&mealNotes, "notes", "", "notes")
	mealAddCmd.Flags().StringVar(&mealAt, "at", "", "when it was eaten (YYYY-MM-DD HH:MM), default now")
	mealAddCmd.Flags().BoolVar(&mealCustom, "custom", false, "save as a custom meal template")
	mealAddCmd.Flags().Float64Var(&mealCalories, "calories", 0, "calories")
	mealAddCmd.Flags().Float64Var(&mealProtein, "protein", 0, "protein (g)")
	mealAddCmd.Flags().Float64Var(&mealCarbs, "carbs", 0, "carbs (g)")
	mealAddCmd.Flags().Float64Var(&mealFats, "fats", 0, "fats (g)")

	mealLogCustomCmd.Flags().StringVar(&mealAt, "at", "", "when it was eaten (YYYY-MM-DD HH:MM), default now")

	mealListCmd.Flags().BoolVar(&mealCustom, "custom", false, "list custom meals")
	mealListCmd.Flags().IntVarP(&mealLimit, "limit", "n", 20, "max number of results (0 for all)")

	mealDeleteCmd.Flags().BoolVar(&mealCustom, "custom", false, "delete a custom meal")

	mealCmd.AddCommand(mealAddCmd)
	mealCmd.AddCommand(mealLogCustomCmd)
	mealCmd.AddCommand(mealListCmd)
	mealCmd.AddCommand(mealDeleteCmd)
	rootCmd.AddCommand(mealCmd)
}
