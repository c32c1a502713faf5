// ABOUTME: Submission rules for the exercises of a workout store.
// ABOUTME: The first failing rule is reported as a user-facing ValidationError.
package workout

import (
	"errors"
	"strings"

	"github.com/harperreed/myjot/internal/models"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError carries a message meant for the person editing the entry.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is makes errors.Is(err, ErrValidation) hold for validation errors.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

const (
	MsgNoExercises     = "Please add at least one exercise before saving your workout."
	MsgExerciseName    = "Every exercise must include a name."
	MsgExerciseSets    = "Each exercise must include at least one set."
	MsgUnknownCategory = "The selected exercise category is not recognized."
	MsgStrengthReps    = "Please enter the number of reps for each strength training set."
	MsgStrengthWeight  = "Please enter the weight used for each strength training set."
	MsgCardioMinutes   = "Please enter the number of minutes for each cardio set."
	MsgCardioSeconds   = "Please enter the number of seconds for each cardio set."
	MsgCardioDistance  = "Please enter the distance for each cardio set."
	MsgEntryLogName    = "A valid log name is required."
	MsgEntryDateTime   = "A valid date & time is required."
	MsgEntryBodyWeight = "A valid bodyweight is required."
)

// ValidateAllExercises checks that the store can be submitted. It never
// mutates the store.
func (s *Store) ValidateAllExercises() error {
	if len(s.exercises) == 0 {
		return invalid(MsgNoExercises)
	}
	for _, e := range s.exercises {
		if strings.TrimSpace(e.Name) == "" {
			return invalid(MsgExerciseName)
		}
		if len(e.Sets) == 0 {
			return invalid(MsgExerciseSets)
		}
		var err error
		switch e.Category {
		case models.CategoryStrength:
			err = validateStrengthSets(e.Sets)
		case models.CategoryCardio:
			err = validateCardioSets(e.Sets)
		case models.CategoryFlexibility:
		default:
			err = invalid(MsgUnknownCategory)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func validateStrengthSets(sets []models.Set) error {
	for _, set := range sets {
		f, _ := set.Strength()
		if f.Reps == 0 {
			return invalid(MsgStrengthReps)
		}
		if f.Weight == 0 {
			return invalid(MsgStrengthWeight)
		}
	}
	return nil
}

// validateCardioSets requires every duration part to be filled in, seconds
// included.
func validateCardioSets(sets []models.Set) error {
	for _, set := range sets {
		f, _ := set.Cardio()
		if f.Minutes == 0 {
			return invalid(MsgCardioMinutes)
		}
		if f.Seconds == 0 {
			return invalid(MsgCardioSeconds)
		}
		if f.Distance == 0 {
			return invalid(MsgCardioDistance)
		}
	}
	return nil
}
