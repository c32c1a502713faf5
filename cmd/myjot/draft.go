// ABOUTME: Workout drafts read from YAML or JSON files.
// ABOUTME: A draft is replayed into a workout store one edit at a time.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/myjot/internal/models"
	"github.com/harperreed/myjot/internal/workout"
	"gopkg.in/yaml.v3"
)

// dateTimeLayout is how entry dates are stored.
const dateTimeLayout = "2006-01-02T15:04"

type draftSet struct {
	Type         string  `yaml:"type"`
	Notes        string  `yaml:"notes"`
	Reps         int     `yaml:"reps"`
	Weight       float64 `yaml:"weight"`
	WeightUnit   string  `yaml:"weight_unit"`
	Minutes      int     `yaml:"minutes"`
	Seconds      int     `yaml:"seconds"`
	Distance     float64 `yaml:"distance"`
	DistanceUnit string  `yaml:"distance_unit"`
	Calories     *int    `yaml:"calories"`
}

type draftExercise struct {
	Name     string     `yaml:"name"`
	Category string     `yaml:"category"`
	Notes    string     `yaml:"notes"`
	Sets     []draftSet `yaml:"sets"`
}

type draft struct {
	LogName    string          `yaml:"log_name"`
	DateTime   string          `yaml:"date_time"`
	BodyWeight float64         `yaml:"body_weight"`
	WeightUnit string          `yaml:"weight_unit"`
	Notes      string          `yaml:"notes"`
	Exercises  []draftExercise `yaml:"exercises"`
}

// readDraft loads a draft file. YAML is a superset of JSON, so both parse.
func readDraft(path string) (*draft, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read draft: %w", err)
	}
	var d draft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse draft %s: %w", path, err)
	}
	return &d, nil
}

// fields returns the entry fields of the draft. A date override wins over
// the draft's own date; routines never carry one.
func (d *draft) fields(routine bool, at string) (workout.EntryFields, error) {
	f := workout.EntryFields{
		LogName:        d.LogName,
		BodyWeight:     d.BodyWeight,
		WeightUnitType: d.WeightUnit,
		LogNotes:       d.Notes,
	}
	if routine {
		return f, nil
	}
	when := d.DateTime
	if at != "" {
		when = at
	}
	dt, err := entryDateTime(when)
	if err != nil {
		return f, err
	}
	f.DateTime = &dt
	return f, nil
}

// replay appends the draft's exercises to the store.
func (d *draft) replay(ctx context.Context, store *workout.Store) error {
	for i, ex := range d.Exercises {
		category := models.Category(ex.Category)
		if category == "" {
			category = models.CategoryStrength
		}
		if !category.IsValid() {
			return fmt.Errorf("exercise %d: unknown category %q", i+1, ex.Category)
		}
		if err := store.AddExercise(ctx, workout.AddOptions{Setup: workout.SetupNew, Category: category}); err != nil {
			return err
		}
		added := store.Snapshot()[store.Len()-1]
		if err := store.UpdateExercise(added.ID, ex.Name, category, ex.Notes); err != nil {
			return err
		}

		for j, s := range ex.Sets {
			setID := added.Sets[0].ID
			if j > 0 {
				id, err := store.AddExerciseSet(added.ID)
				if err != nil {
					return err
				}
				setID = id
			}
			if err := store.UpdateExerciseSet(added.ID, setID, s.update()); err != nil {
				return fmt.Errorf("exercise %d set %d: %w", i+1, j+1, err)
			}
		}
	}
	return nil
}

func (s draftSet) update() workout.SetUpdate {
	return workout.SetUpdate{
		Type:             models.SetType(s.Type),
		Notes:            s.Notes,
		Reps:             s.Reps,
		Weight:           s.Weight,
		WeightUnitType:   models.WeightUnit(s.WeightUnit),
		Minutes:          s.Minutes,
		Seconds:          s.Seconds,
		Distance:         s.Distance,
		DistanceUnitType: models.DistanceUnit(s.DistanceUnit),
		Calories:         s.Calories,
	}
}

// clearStore deletes every exercise, leaving the store empty.
func clearStore(store *workout.Store) error {
	for store.Len() > 0 {
		if err := store.DeleteExercise(1); err != nil {
			return err
		}
	}
	return nil
}

// entryDateTime normalizes a user supplied date to the stored layout.
// An empty string means now.
func entryDateTime(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return time.Now().Format(dateTimeLayout), nil
	}
	t, err := parseTime(s)
	if err != nil {
		return "", err
	}
	return t.Format(dateTimeLayout), nil
}

// parseTime parses a time string in various formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format: %s (use YYYY-MM-DD HH:MM or YYYY-MM-DD)", s)
}
