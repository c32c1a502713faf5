// ABOUTME: MCP tool implementations for the myjot journal.
// ABOUTME: Workout editing goes through sessions; records are read and deleted directly.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/myjot/internal/models"
	"github.com/harperreed/myjot/internal/workout"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// start_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "start_workout",
		Description: "Open a workout or routine editing session, optionally seeded from a routine or an existing record",
	}, s.handleStartWorkout)

	// add_exercise
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_exercise",
		Description: "Append an exercise with one default set to a session",
	}, s.handleAddExercise)

	// update_exercise
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_exercise",
		Description: "Rename an exercise or change its category and notes. A category change clears its sets",
	}, s.handleUpdateExercise)

	// reorder_exercises
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "reorder_exercises",
		Description: "Reorder the exercises of a session by listing every exercise id in the new order",
	}, s.handleReorderExercises)

	// delete_exercise
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_exercise",
		Description: "Remove the exercise at a 1-based position",
	}, s.handleDeleteExercise)

	// add_set
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_set",
		Description: "Append a default set to an exercise",
	}, s.handleAddSet)

	// update_set
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_set",
		Description: "Record the values of a set. Only the measurements of the exercise's category are kept",
	}, s.handleUpdateSet)

	// delete_set
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_set",
		Description: "Remove the set at a 1-based position. The last set of an exercise is kept",
	}, s.handleDeleteSet)

	// validate_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "validate_workout",
		Description: "Check whether a session's exercises can be saved",
	}, s.handleValidateWorkout)

	// submit_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "submit_workout",
		Description: "Save a session as a workout entry or routine and close it",
	}, s.handleSubmitWorkout)

	// discard_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "discard_workout",
		Description: "Close a session without saving",
	}, s.handleDiscardWorkout)

	// list_workouts
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List saved workouts (newest first) or routines",
	}, s.handleListWorkouts)

	// get_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_workout",
		Description: "Get a saved workout or routine with all its exercises and sets",
	}, s.handleGetWorkout)

	// delete_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_workout",
		Description: "Delete a saved workout or routine",
	}, s.handleDeleteWorkout)

	// list_routines
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_routines",
		Description: "List the id and name of every routine",
	}, s.handleListRoutines)

	// add_meal
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_meal",
		Description: "Log a meal, or save a custom meal template",
	}, s.handleAddMeal)
}

// Tool input/output types

type startWorkoutInput struct {
	Routine       bool  `json:"routine,omitempty" jsonschema:"Edit a routine instead of a workout entry"`
	FromRoutineID int64 `json:"from_routine_id,omitempty" jsonschema:"Seed the session with the exercises of this routine"`
	EditID        int64 `json:"edit_id,omitempty" jsonschema:"Load this saved record for editing; submit replaces it"`
}

// sessionOutput is returned as an untyped result; set fields are an
// interface and carry no inferable schema.
type sessionOutput struct {
	SessionID string               `json:"session_id"`
	Exercises []models.Exercise    `json:"exercises"`
	Fields    *workout.EntryFields `json:"fields,omitempty"`
	Message   string               `json:"message"`
}

type addExerciseInput struct {
	SessionID string `json:"session_id" jsonschema:"Session id from start_workout"`
	Category  string `json:"category,omitempty" jsonschema:"Strength Training (default), Cardio, or Flexibility"`
	Name      string `json:"name,omitempty" jsonschema:"Exercise name"`
	Notes     string `json:"notes,omitempty" jsonschema:"Exercise notes"`
}

type idOutput struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
}

type updateExerciseInput struct {
	SessionID  string `json:"session_id" jsonschema:"Session id from start_workout"`
	ExerciseID int    `json:"exercise_id" jsonschema:"Exercise id"`
	Name       string `json:"name" jsonschema:"Exercise name"`
	Category   string `json:"category" jsonschema:"Strength Training, Cardio, or Flexibility"`
	Notes      string `json:"notes,omitempty" jsonschema:"Exercise notes"`
}

type reorderInput struct {
	SessionID   string `json:"session_id" jsonschema:"Session id from start_workout"`
	ExerciseIDs []int  `json:"exercise_ids" jsonschema:"Every exercise id of the session in the new order"`
}

type positionInput struct {
	SessionID  string `json:"session_id" jsonschema:"Session id from start_workout"`
	ExerciseID int    `json:"exercise_id,omitempty" jsonschema:"Exercise id (for set operations)"`
	Position   int    `json:"position" jsonschema:"1-based position"`
}

type exerciseInput struct {
	SessionID  string `json:"session_id" jsonschema:"Session id from start_workout"`
	ExerciseID int    `json:"exercise_id" jsonschema:"Exercise id"`
}

type updateSetInput struct {
	SessionID    string  `json:"session_id" jsonschema:"Session id from start_workout"`
	ExerciseID   int     `json:"exercise_id" jsonschema:"Exercise id"`
	SetID        int     `json:"set_id" jsonschema:"Set id"`
	Type         string  `json:"type,omitempty" jsonschema:"Normal (default) or Warm-up"`
	Notes        string  `json:"notes,omitempty" jsonschema:"Set notes"`
	Reps         int     `json:"reps,omitempty" jsonschema:"Strength: repetitions"`
	Weight       float64 `json:"weight,omitempty" jsonschema:"Strength: weight lifted"`
	WeightUnit   string  `json:"weight_unit,omitempty" jsonschema:"Strength: lbs or kgs"`
	Minutes      int     `json:"minutes,omitempty" jsonschema:"Cardio: minutes"`
	Seconds      int     `json:"seconds,omitempty" jsonschema:"Cardio: seconds"`
	Distance     float64 `json:"distance,omitempty" jsonschema:"Cardio: distance covered"`
	DistanceUnit string  `json:"distance_unit,omitempty" jsonschema:"Cardio: miles or kilometers"`
	Calories     *int    `json:"calories,omitempty" jsonschema:"Cardio: calories burned"`
}

type sessionInput struct {
	SessionID string `json:"session_id" jsonschema:"Session id from start_workout"`
}

type validateOutput struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type submitInput struct {
	SessionID  string  `json:"session_id" jsonschema:"Session id from start_workout"`
	LogName    string  `json:"log_name" jsonschema:"Name of the workout or routine"`
	DateTime   string  `json:"date_time,omitempty" jsonschema:"When the workout happened, e.g. 2025-03-10T07:30 (not used for routines)"`
	BodyWeight float64 `json:"body_weight" jsonschema:"Bodyweight at the time of the workout"`
	WeightUnit string  `json:"weight_unit,omitempty" jsonschema:"Bodyweight unit, lbs or kgs"`
	Notes      string  `json:"notes,omitempty" jsonschema:"Entry notes"`
}

type recordOutput struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type listWorkoutsInput struct {
	Routines bool `json:"routines,omitempty" jsonschema:"List routines instead of workouts"`
	Limit    int  `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type getWorkoutInput struct {
	ID      int64 `json:"id" jsonschema:"Record id"`
	Routine bool  `json:"routine,omitempty" jsonschema:"The id names a routine"`
}

type addMealInput struct {
	LogName  string   `json:"log_name" jsonschema:"Name of the log entry"`
	MealName string   `json:"meal_name" jsonschema:"What was eaten"`
	MealType string   `json:"meal_type" jsonschema:"Breakfast, Lunch, Dinner, Snack, or Misc"`
	DateTime string   `json:"date_time,omitempty" jsonschema:"When the meal was eaten, e.g. 2025-03-10T12:30 (not used for custom meals)"`
	Notes    string   `json:"notes,omitempty" jsonschema:"Meal notes"`
	Calories *float64 `json:"calories,omitempty" jsonschema:"Calories"`
	Protein  *float64 `json:"protein,omitempty" jsonschema:"Protein in grams"`
	Carbs    *float64 `json:"carbs,omitempty" jsonschema:"Carbohydrates in grams"`
	Fats     *float64 `json:"fats,omitempty" jsonschema:"Fats in grams"`
	Custom   bool     `json:"custom,omitempty" jsonschema:"Save as a reusable custom meal"`
}

// Tool handlers

func (s *Server) handleStartWorkout(ctx context.Context, req *mcp.CallToolRequest, input startWorkoutInput) (*mcp.CallToolResult, any, error) {
	sess, fields, err := s.openSession(ctx, input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start workout: %w", err)
	}

	return nil, &sessionOutput{
		SessionID: sess.store.ID().String(),
		Exercises: sess.store.Snapshot(),
		Fields:    fields,
		Message:   fmt.Sprintf("Started %s session with %d exercises", sess.edit.Target, sess.store.Len()),
	}, nil
}

func (s *Server) handleAddExercise(ctx context.Context, req *mcp.CallToolRequest, input addExerciseInput) (*mcp.CallToolResult, idOutput, error) {
	var out idOutput
	err := s.withSession(input.SessionID, func(sess *session) error {
		category := models.Category(input.Category)
		if category == "" {
			category = models.CategoryStrength
		}
		if !category.IsValid() {
			return fmt.Errorf("unknown category: %s", input.Category)
		}
		if err := sess.store.AddExercise(ctx, workout.AddOptions{Setup: workout.SetupNew, Category: category}); err != nil {
			return err
		}
		snap := sess.store.Snapshot()
		added := snap[len(snap)-1]
		if input.Name != "" || input.Notes != "" {
			if err := sess.store.UpdateExercise(added.ID, input.Name, category, input.Notes); err != nil {
				return err
			}
		}
		out = idOutput{ID: added.ID, Message: fmt.Sprintf("Added %s exercise %q (ID: %d)", category, input.Name, added.ID)}
		return nil
	})
	if err != nil {
		return nil, idOutput{}, fmt.Errorf("failed to add exercise: %w", err)
	}
	return nil, out, nil
}

func (s *Server) handleUpdateExercise(ctx context.Context, req *mcp.CallToolRequest, input updateExerciseInput) (*mcp.CallToolResult, simpleOutput, error) {
	err := s.withSession(input.SessionID, func(sess *session) error {
		return sess.store.UpdateExercise(input.ExerciseID, input.Name, models.Category(input.Category), input.Notes)
	})
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to update exercise: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Updated exercise %d", input.ExerciseID)}, nil
}

func (s *Server) handleReorderExercises(ctx context.Context, req *mcp.CallToolRequest, input reorderInput) (*mcp.CallToolResult, simpleOutput, error) {
	err := s.withSession(input.SessionID, func(sess *session) error {
		return sess.store.UpdateExerciseOrder(input.ExerciseIDs)
	})
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to reorder exercises: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Reordered %d exercises", len(input.ExerciseIDs))}, nil
}

func (s *Server) handleDeleteExercise(ctx context.Context, req *mcp.CallToolRequest, input positionInput) (*mcp.CallToolResult, simpleOutput, error) {
	err := s.withSession(input.SessionID, func(sess *session) error {
		return sess.store.DeleteExercise(input.Position)
	})
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete exercise: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted exercise at position %d", input.Position)}, nil
}

func (s *Server) handleAddSet(ctx context.Context, req *mcp.CallToolRequest, input exerciseInput) (*mcp.CallToolResult, idOutput, error) {
	var id int
	err := s.withSession(input.SessionID, func(sess *session) error {
		var err error
		id, err = sess.store.AddExerciseSet(input.ExerciseID)
		return err
	})
	if err != nil {
		return nil, idOutput{}, fmt.Errorf("failed to add set: %w", err)
	}
	return nil, idOutput{ID: id, Message: fmt.Sprintf("Added set %d to exercise %d", id, input.ExerciseID)}, nil
}

func (s *Server) handleUpdateSet(ctx context.Context, req *mcp.CallToolRequest, input updateSetInput) (*mcp.CallToolResult, simpleOutput, error) {
	update := workout.SetUpdate{
		Type:             models.SetType(input.Type),
		Notes:            input.Notes,
		Reps:             input.Reps,
		Weight:           input.Weight,
		WeightUnitType:   models.WeightUnit(input.WeightUnit),
		Minutes:          input.Minutes,
		Seconds:          input.Seconds,
		Distance:         input.Distance,
		DistanceUnitType: models.DistanceUnit(input.DistanceUnit),
		Calories:         input.Calories,
	}
	var summary string
	err := s.withSession(input.SessionID, func(sess *session) error {
		if err := sess.store.UpdateExerciseSet(input.ExerciseID, input.SetID, update); err != nil {
			return err
		}
		e, _ := sess.store.Exercise(input.ExerciseID)
		for _, set := range e.Sets {
			if set.ID == input.SetID {
				summary = set.Summary()
			}
		}
		return nil
	})
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to update set: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Set %d: %s", input.SetID, summary)}, nil
}

func (s *Server) handleDeleteSet(ctx context.Context, req *mcp.CallToolRequest, input positionInput) (*mcp.CallToolResult, simpleOutput, error) {
	err := s.withSession(input.SessionID, func(sess *session) error {
		return sess.store.DeleteExerciseSet(input.ExerciseID, input.Position)
	})
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete set: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted set at position %d of exercise %d", input.Position, input.ExerciseID)}, nil
}

func (s *Server) handleValidateWorkout(ctx context.Context, req *mcp.CallToolRequest, input sessionInput) (*mcp.CallToolResult, validateOutput, error) {
	var out validateOutput
	err := s.withSession(input.SessionID, func(sess *session) error {
		verr := sess.store.ValidateAllExercises()
		var v *workout.ValidationError
		switch {
		case verr == nil:
			out = validateOutput{Valid: true, Message: "Workout is ready to save."}
		case errors.As(verr, &v):
			out = validateOutput{Valid: false, Message: v.Msg}
		default:
			return verr
		}
		return nil
	})
	if err != nil {
		return nil, validateOutput{}, fmt.Errorf("failed to validate workout: %w", err)
	}
	return nil, out, nil
}

func (s *Server) handleSubmitWorkout(ctx context.Context, req *mcp.CallToolRequest, input submitInput) (*mcp.CallToolResult, recordOutput, error) {
	fields := workout.EntryFields{
		LogName:        input.LogName,
		BodyWeight:     input.BodyWeight,
		WeightUnitType: input.WeightUnit,
		LogNotes:       input.Notes,
	}
	if input.DateTime != "" {
		fields.DateTime = &input.DateTime
	}

	var (
		id     int64
		target workout.Target
	)
	err := s.withSession(input.SessionID, func(sess *session) error {
		var err error
		target = sess.edit.Target
		id, err = s.assembler.Submit(ctx, sess.store, fields, sess.edit)
		if err != nil {
			return err
		}
		s.closeSession(sess)
		return nil
	})
	if err != nil {
		return nil, recordOutput{}, fmt.Errorf("failed to save workout: %w", err)
	}
	return nil, recordOutput{ID: id, Message: fmt.Sprintf("Saved %s %q (ID: %d)", target, input.LogName, id)}, nil
}

func (s *Server) handleDiscardWorkout(ctx context.Context, req *mcp.CallToolRequest, input sessionInput) (*mcp.CallToolResult, simpleOutput, error) {
	err := s.withSession(input.SessionID, func(sess *session) error {
		s.closeSession(sess)
		return nil
	})
	if err != nil {
		return nil, simpleOutput{}, err
	}
	return nil, simpleOutput{Message: "Discarded workout session"}, nil
}

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listWorkoutsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	entries, err := s.assembler.List(ctx, targetOf(input.Routines), input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	if len(entries) == 0 {
		return nil, map[string]interface{}{"message": "No workouts found."}, nil
	}

	return nil, map[string]interface{}{"workouts": entries}, nil
}

func (s *Server) handleGetWorkout(ctx context.Context, req *mcp.CallToolRequest, input getWorkoutInput) (*mcp.CallToolResult, any, error) {
	entry, err := s.assembler.Get(ctx, targetOf(input.Routine), input.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("workout not found: %d", input.ID)
	}

	return nil, entry, nil
}

func (s *Server) handleDeleteWorkout(ctx context.Context, req *mcp.CallToolRequest, input getWorkoutInput) (*mcp.CallToolResult, simpleOutput, error) {
	target := targetOf(input.Routine)
	if err := s.assembler.Delete(ctx, target, input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete %s: %w", target, err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted %s: %d", target, input.ID),
	}, nil
}

func (s *Server) handleListRoutines(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	names, err := s.assembler.ListRoutineNames(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list routines: %w", err)
	}
	return nil, map[string]interface{}{"routines": names}, nil
}

func (s *Server) handleAddMeal(ctx context.Context, req *mcp.CallToolRequest, input addMealInput) (*mcp.CallToolResult, recordOutput, error) {
	m := &models.MealEntry{
		LogName:  input.LogName,
		LogNotes: input.Notes,
		MealName: input.MealName,
		MealType: models.MealType(input.MealType),
		Calories: input.Calories,
		Protein:  input.Protein,
		Carbs:    input.Carbs,
		Fats:     input.Fats,
	}
	if input.DateTime != "" {
		m.DateTime = &input.DateTime
	}

	id, err := s.meals.Add(ctx, m, input.Custom)
	if err != nil {
		return nil, recordOutput{}, fmt.Errorf("failed to add meal: %w", err)
	}

	kind := "meal"
	if input.Custom {
		kind = "custom meal"
	}
	return nil, recordOutput{ID: id, Message: fmt.Sprintf("Added %s %q (ID: %d)", kind, input.MealName, id)}, nil
}
