// ABOUTME: CLI commands for workouts and routines.
// ABOUTME: Supports add, from-routine, edit, list, show, and delete.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/myjot/internal/models"
	"github.com/harperreed/myjot/internal/workout"
	"github.com/spf13/cobra"
)

var (
	workoutFile    string
	workoutRoutine bool
	workoutAt      string
	workoutLimit   int

	fromName       string
	fromBodyWeight float64
	fromUnit       string
	fromNotes      string
)

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"w"},
	Short:   "Log and manage workouts and routines",
	Long: `Log workouts and manage reusable routines.

DRAFT FILES:

  Workouts are written as YAML (or JSON) drafts:

    log_name: Pull day
    date_time: "2025-03-10 07:30"     # omitted for routines, defaults to now
    body_weight: 180
    weight_unit: lbs
    notes: felt strong
    exercises:
      - name: Deadlift
        category: Strength Training  # Strength Training, Cardio, Flexibility
        sets:
          - {reps: 5, weight: 315, weight_unit: lbs}
          - {reps: 5, weight: 315, weight_unit: lbs, type: Warm-up}
      - name: Row
        category: Cardio
        sets:
          - {minutes: 10, seconds: 30, distance: 2, distance_unit: kilometers, calories: 120}

EXAMPLES:

  myjot workout add -f pull-day.yaml
  myjot workout add -f legs.yaml --routine
  myjot workout from-routine 2 --body-weight 181 --at "2025-03-12 06:00"
  myjot workout edit 4 -f pull-day.yaml
  myjot workout list --routines
  myjot workout show 4
  myjot workout delete 4`,
}

var workoutAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a workout (or save a routine) from a draft file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := readDraft(workoutFile)
		if err != nil {
			return err
		}
		fields, err := d.fields(workoutRoutine, workoutAt)
		if err != nil {
			return err
		}

		store := workout.NewStore(gateway)
		if err := d.replay(ctx, store); err != nil {
			return err
		}

		target := targetOf(workoutRoutine)
		id, err := workout.NewAssembler(gateway, logger).Submit(ctx, store, fields, workout.EditContext{Target: target})
		if err != nil {
			return err
		}

		color.Green("✓ Saved %s %q", target, fields.LogName)
		printID(id)
		return nil
	},
}

var workoutFromRoutineCmd = &cobra.Command{
	Use:   "from-routine <routine-id>",
	Short: "Log a workout that copies a routine",
	Long: `Log a workout whose exercises and sets are copied from a routine.

The log name and body weight default to the routine's own values.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		routineID, err := parseID(args[0])
		if err != nil {
			return err
		}

		asm := workout.NewAssembler(gateway, logger)
		routine, err := asm.Get(ctx, workout.TargetRoutine, routineID)
		if err != nil {
			return err
		}

		store := workout.NewStore(gateway)
		if err := store.AddExercise(ctx, workout.AddOptions{Setup: workout.SetupNewFromExisting, RoutineID: routineID}); err != nil {
			return err
		}

		dt, err := entryDateTime(workoutAt)
		if err != nil {
			return err
		}
		fields := workout.EntryFields{
			LogName:        routine.LogName,
			DateTime:       &dt,
			BodyWeight:     routine.BodyWeight,
			WeightUnitType: routine.WeightUnitType,
			LogNotes:       fromNotes,
		}
		if fromName != "" {
			fields.LogName = fromName
		}
		if fromBodyWeight != 0 {
			fields.BodyWeight = fromBodyWeight
		}
		if fromUnit != "" {
			fields.WeightUnitType = fromUnit
		}

		id, err := asm.Submit(ctx, store, fields, workout.EditContext{Target: workout.TargetWorkout})
		if err != nil {
			return err
		}

		color.Green("✓ Logged %q from routine %d", fields.LogName, routineID)
		printID(id)
		return nil
	},
}

var workoutEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Replace a workout or routine with a draft file",
	Long: `Replace the exercises and fields of an existing record with a draft.

A workout keeps its original date unless the draft or --at sets one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		d, err := readDraft(workoutFile)
		if err != nil {
			return err
		}

		target := targetOf(workoutRoutine)
		asm := workout.NewAssembler(gateway, logger)
		store, loaded, err := asm.LoadForEdit(ctx, target, id)
		if err != nil {
			return err
		}
		if d.DateTime == "" && workoutAt == "" && loaded.DateTime != nil {
			d.DateTime = *loaded.DateTime
		}
		fields, err := d.fields(workoutRoutine, workoutAt)
		if err != nil {
			return err
		}

		if err := clearStore(store); err != nil {
			return err
		}
		if err := d.replay(ctx, store); err != nil {
			return err
		}

		if _, err := asm.Submit(ctx, store, fields, workout.EditContext{Target: target, ID: id}); err != nil {
			return err
		}

		color.Green("✓ Updated %s %d", target, id)
		return nil
	},
}

var workoutListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List workouts or routines",
	Long: `List logged workouts, newest first, or saved routines by name.

Each line shows: ID  DATE  NAME  EXERCISES  SETS`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := targetOf(workoutRoutine)
		entries, err := workout.NewAssembler(gateway, logger).List(cmd.Context(), target, workoutLimit)
		if err != nil {
			return fmt.Errorf("failed to list %ss: %w", target, err)
		}
		if len(entries) == 0 {
			fmt.Printf("No %ss found.\n", target)
			return nil
		}

		faint := color.New(color.Faint)
		for _, e := range entries {
			when := "routine"
			if e.DateTime != nil {
				when = strings.Replace(*e.DateTime, "T", " ", 1)
			}
			fmt.Printf("%s  %s  %s  %d exercises  %d sets\n",
				faint.Sprintf("%4d", e.ID),
				padRight(when, 16),
				padRight(truncate(e.LogName, 24), 24),
				len(e.Exercises),
				e.SetCount(),
			)
		}
		return nil
	},
}

var workoutShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a workout or routine with all sets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		target := targetOf(workoutRoutine)
		e, err := workout.NewAssembler(gateway, logger).Get(cmd.Context(), target, id)
		if err != nil {
			return err
		}
		printEntry(e)
		return nil
	},
}

var workoutDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a workout or routine",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		target := targetOf(workoutRoutine)
		if err := workout.NewAssembler(gateway, logger).Delete(cmd.Context(), target, id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", target, err)
		}
		color.Yellow("✗ Deleted %s %d", target, id)
		return nil
	},
}

func printEntry(e *models.WorkoutEntry) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Printf("%s", e.LogName)
	faint.Printf("  #%d\n", e.ID)
	if e.DateTime != nil {
		fmt.Printf("Date:        %s\n", strings.Replace(*e.DateTime, "T", " ", 1))
	}
	fmt.Printf("Body weight: %g %s\n", e.BodyWeight, e.WeightUnitType)
	if e.LogNotes != "" {
		fmt.Printf("Notes:       %s\n", e.LogNotes)
	}

	for _, ex := range e.Exercises {
		fmt.Println()
		bold.Printf("%d. %s", ex.Order, ex.Name)
		faint.Printf("  (%s)\n", ex.Category)
		if ex.Notes != "" {
			fmt.Printf("   %s\n", ex.Notes)
		}
		for _, s := range ex.Sets {
			line := fmt.Sprintf("   set %d: %s", s.Order, s.Summary())
			if s.Notes != "" {
				line += "  " + faint.Sprintf("(%s)", s.Notes)
			}
			fmt.Println(line)
		}
	}
}

func targetOf(routine bool) workout.Target {
	if routine {
		return workout.TargetRoutine
	}
	return workout.TargetWorkout
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func printID(id int64) {
	faint := color.New(color.Faint)
	faint.Printf("  id: %d\n", id)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	workoutAddCmd.Flags().StringVarP(&workoutFile, "file", "f", "", "draft file (YAML or JSON)")
	_ = workoutAddCmd.MarkFlagRequired("file")
	workoutAddCmd.Flags().BoolVar(&workoutRoutine, "routine", false, "save as a routine instead of a workout")
	workoutAddCmd.Flags().StringVar(&workoutAt, "at", "", "workout date (YYYY-MM-DD HH:MM), overrides the draft")

	workoutFromRoutineCmd.Flags().StringVar(&workoutAt, "at", "", "workout date (YYYY-MM-DD HH:MM), default now")
	workoutFromRoutineCmd.Flags().StringVar(&fromName, "name", "", "log name (default: routine name)")
	workoutFromRoutineCmd.Flags().Float64Var(&fromBodyWeight, "body-weight", 0, "body weight (default: routine value)")
	workoutFromRoutineCmd.Flags().StringVar(&fromUnit, "unit", "", "body weight unit (default: routine value)")
	workoutFromRoutineCmd.Flags().StringVar(&fromNotes, "notes", "", "workout notes")

	workoutEditCmd.Flags().StringVarP(&workoutFile, "file", "f", "", "draft file (YAML or JSON)")
	_ = workoutEditCmd.MarkFlagRequired("file")
	workoutEditCmd.Flags().BoolVar(&workoutRoutine, "routine", false, "edit a routine instead of a workout")
	workoutEditCmd.Flags().StringVar(&workoutAt, "at", "", "workout date (YYYY-MM-DD HH:MM)")

	workoutListCmd.Flags().BoolVar(&workoutRoutine, "routines", false, "list routines instead of workouts")
	workoutListCmd.Flags().IntVarP(&workoutLimit, "limit", "n", 20, "max number of results (0 for all)")

	workoutShowCmd.Flags().BoolVar(&workoutRoutine, "routine", false, "show a routine instead of a workout")
	workoutDeleteCmd.Flags().BoolVar(&workoutRoutine, "routine", false, "delete a routine instead of a workout")

	workoutCmd.AddCommand(workoutAddCmd)
	workoutCmd.AddCommand(workoutFromRoutineCmd)
	workoutCmd.AddCommand(workoutEditCmd)
	workoutCmd.AddCommand(workoutListCmd)
	workoutCmd.AddCommand(workoutShowCmd)
	workoutCmd.AddCommand(workoutDeleteCmd)
	rootCmd.AddCommand(workoutCmd)
}
