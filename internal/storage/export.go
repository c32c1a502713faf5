// ABOUTME: Save-file round trip plus JSON, YAML, and Markdown exports.
// ABOUTME: The save file is base64 of a JSON document holding every collection.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/myjot/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrEmptySaveFile is returned for a save file with no readable content.
var ErrEmptySaveFile = errors.New("The uploaded save file is empty or could not be read.") //nolint:staticcheck // shown to users verbatim

// SaveFile is the portable snapshot of the whole journal.
type SaveFile struct {
	UserName         string                 `json:"userName"`
	ExerciseLogs     []*models.WorkoutEntry `json:"exerciseLogs"`
	MealLogs         []*models.MealEntry    `json:"mealLogs"`
	ExerciseRoutines []*models.WorkoutEntry `json:"exerciseRoutines"`
	CustomMeals      []*models.MealEntry    `json:"customMeals"`
}

// ImportSummary holds counts of imported records.
type ImportSummary struct {
	ExerciseLogs     int
	MealLogs         int
	ExerciseRoutines int
	CustomMeals      int
}

// BuildSaveFile reads every collection in one read transaction.
func BuildSaveFile(ctx context.Context, g Gateway) (*SaveFile, error) {
	sf := &SaveFile{}
	err := g.RunInTransaction(ctx, ModeRead, AllCollections, func(tx Tx) error {
		users, err := listTx[models.UserProfile](tx, CollUser)
		if err != nil {
			return err
		}
		if len(users) > 0 {
			sf.UserName = users[0].UserName
		}
		if sf.ExerciseLogs, err = listTx[models.WorkoutEntry](tx, CollExerciseLog); err != nil {
			return err
		}
		if sf.MealLogs, err = listTx[models.MealEntry](tx, CollMealLog); err != nil {
			return err
		}
		if sf.ExerciseRoutines, err = listTx[models.WorkoutEntry](tx, CollExerciseRoutines); err != nil {
			return err
		}
		sf.CustomMeals, err = listTx[models.MealEntry](tx, CollCustomMeals)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("build save file: %w", err)
	}
	return sf, nil
}

func listTx[T any](tx Tx, coll Collection) ([]*T, error) {
	raws, err := tx.List(coll)
	if err != nil {
		return nil, err
	}
	return DecodeAll[T](coll, raws)
}

// Encode renders the save file as base64 text.
func (sf *SaveFile) Encode() ([]byte, error) {
	data, err := json.Marshal(sf)
	if err != nil {
		return nil, fmt.Errorf("marshal save file: %w", err)
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
	base64.StdEncoding.Encode(out, data)
	return out, nil
}

// DecodeSaveFile parses base64 save-file text.
func DecodeSaveFile(data []byte) (*SaveFile, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptySaveFile
	}
	decoded, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, fmt.Errorf("decode save file: %w", err)
	}
	if len(bytes.TrimSpace(decoded)) == 0 {
		return nil, ErrEmptySaveFile
	}
	var sf SaveFile
	if err := json.Unmarshal(decoded, &sf); err != nil {
		return nil, fmt.Errorf("parse save file: %w", err)
	}
	return &sf, nil
}

// Validate checks every meal record of the save file.
func (sf *SaveFile) Validate() error {
	for i, m := range sf.MealLogs {
		if m == nil {
			return fmt.Errorf("meal log %d: empty record", i+1)
		}
		if err := m.Validate(false); err != nil {
			return fmt.Errorf("meal log %d: %w", i+1, err)
		}
	}
	for i, m := range sf.CustomMeals {
		if m == nil {
			return fmt.Errorf("custom meal %d: empty record", i+1)
		}
		if err := m.Validate(true); err != nil {
			return fmt.Errorf("custom meal %d: %w", i+1, err)
		}
	}
	for i, w := range append(append([]*models.WorkoutEntry{}, sf.ExerciseLogs...), sf.ExerciseRoutines...) {
		if w == nil {
			return fmt.Errorf("workout record %d: empty record", i+1)
		}
	}
	return nil
}

// ImportSaveFile replaces the whole journal with the save file's content.
// The wipe and every insert share one read-write transaction, so a failed
// import leaves the previous data in place.
func ImportSaveFile(ctx context.Context, g Gateway, sf *SaveFile) (*ImportSummary, error) {
	if err := sf.Validate(); err != nil {
		return nil, fmt.Errorf("validate save file: %w", err)
	}

	summary := &ImportSummary{}
	err := g.RunInTransaction(ctx, ModeReadWrite, AllCollections, func(tx Tx) error {
		for _, coll := range AllCollections {
			if err := tx.Clear(coll); err != nil {
				return err
			}
		}
		if sf.UserName != "" {
			if _, err := tx.Put(CollUser, &models.UserProfile{UserName: sf.UserName}); err != nil {
				return err
			}
		}
		var err error
		if summary.ExerciseLogs, err = putAll(tx, CollExerciseLog, sf.ExerciseLogs); err != nil {
			return err
		}
		if summary.MealLogs, err = putAll(tx, CollMealLog, sf.MealLogs); err != nil {
			return err
		}
		if summary.ExerciseRoutines, err = putAll(tx, CollExerciseRoutines, sf.ExerciseRoutines); err != nil {
			return err
		}
		if summary.CustomMeals, err = putAll(tx, CollCustomMeals, sf.CustomMeals); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import save file: %w", err)
	}
	return summary, nil
}

// putAll writes records that carry an id before the ones that need one, so
// an assigned id never lands on a record still waiting to be written.
func putAll[R Record](tx Tx, coll Collection, recs []R) (int, error) {
	n := 0
	for _, keyed := range []bool{true, false} {
		for _, r := range recs {
			if (r.RecordID() != 0) != keyed {
				continue
			}
			if _, err := tx.Put(coll, r); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

// ExportData is the readable export format.
type ExportData struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Tool       string    `json:"tool"`
	*SaveFile
}

// GetAllData retrieves all data for export.
func GetAllData(ctx context.Context, g Gateway) (*ExportData, error) {
	sf, err := BuildSaveFile(ctx, g)
	if err != nil {
		return nil, err
	}
	return &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "myjot",
		SaveFile:   sf,
	}, nil
}

// ExportJSON exports all data as indented JSON.
func ExportJSON(ctx context.Context, g Gateway) ([]byte, error) {
	data, err := GetAllData(ctx, g)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

type yamlExport struct {
	Version    string        `yaml:"version"`
	ExportedAt string        `yaml:"exported_at"`
	Tool       string        `yaml:"tool"`
	UserName   string        `yaml:"user_name,omitempty"`
	Workouts   []yamlWorkout `yaml:"workouts"`
	Routines   []yamlWorkout `yaml:"routines"`
	Meals      []yamlMeal    `yaml:"meals"`
	Custom     []yamlMeal    `yaml:"custom_meals"`
}

type yamlWorkout struct {
	models.WorkoutEntry `yaml:",inline"`
	Exercises           []yamlExercise `yaml:"exercises"`
}

type yamlExercise struct {
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Notes    string   `yaml:"notes,omitempty"`
	Sets     []string `yaml:"sets"`
}

type yamlMeal struct {
	models.MealEntry `yaml:",inline"`
}

// ExportYAML exports all data as YAML with one line per set.
func ExportYAML(ctx context.Context, g Gateway) ([]byte, error) {
	data, err := GetAllData(ctx, g)
	if err != nil {
		return nil, err
	}
	out := yamlExport{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		UserName:   data.UserName,
		Workouts:   toYAMLWorkouts(data.ExerciseLogs),
		Routines:   toYAMLWorkouts(data.ExerciseRoutines),
		Meals:      toYAMLMeals(data.MealLogs),
		Custom:     toYAMLMeals(data.CustomMeals),
	}
	return yaml.Marshal(out)
}

func toYAMLWorkouts(entries []*models.WorkoutEntry) []yamlWorkout {
	out := make([]yamlWorkout, 0, len(entries))
	for _, w := range entries {
		yw := yamlWorkout{WorkoutEntry: *w}
		for _, e := range w.Exercises {
			ye := yamlExercise{Name: e.Name, Category: string(e.Category), Notes: e.Notes}
			for _, s := range e.Sets {
				ye.Sets = append(ye.Sets, s.Summary())
			}
			yw.Exercises = append(yw.Exercises, ye)
		}
		out = append(out, yw)
	}
	return out
}

func toYAMLMeals(entries []*models.MealEntry) []yamlMeal {
	out := make([]yamlMeal, 0, len(entries))
	for _, m := range entries {
		out = append(out, yamlMeal{MealEntry: *m})
	}
	return out
}

// ExportMarkdown exports workouts, routines, and meals as Markdown.
func ExportMarkdown(ctx context.Context, g Gateway) (string, error) {
	data, err := GetAllData(ctx, g)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	title := "MyJot Export"
	if data.UserName != "" {
		title += " - " + data.UserName
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "Generated: %s\n\n", data.ExportedAt.Format(time.RFC3339))

	workouts := append([]*models.WorkoutEntry(nil), data.ExerciseLogs...)
	sort.SliceStable(workouts, func(i, j int) bool {
		return deref(workouts[i].DateTime) > deref(workouts[j].DateTime)
	})
	if len(workouts) > 0 {
		sb.WriteString("## Workouts\n\n")
		for _, w := range workouts {
			writeWorkoutMarkdown(&sb, w, deref(w.DateTime))
		}
	}

	if len(data.ExerciseRoutines) > 0 {
		sb.WriteString("## Routines\n\n")
		for _, w := range data.ExerciseRoutines {
			writeWorkoutMarkdown(&sb, w, "")
		}
	}

	if len(data.MealLogs) > 0 {
		sb.WriteString("## Meals\n\n")
		sb.WriteString("| Date | Type | Meal | Calories | Protein | Carbs | Fats |\n")
		sb.WriteString("|------|------|------|----------|---------|-------|------|\n")
		for _, m := range data.MealLogs {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s | %s |\n",
				deref(m.DateTime), m.MealType, m.MealName,
				optFloat(m.Calories), optFloat(m.Protein), optFloat(m.Carbs), optFloat(m.Fats))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func writeWorkoutMarkdown(sb *strings.Builder, w *models.WorkoutEntry, when string) {
	if when != "" {
		fmt.Fprintf(sb, "### %s (%s)\n\n", w.LogName, when)
	} else {
		fmt.Fprintf(sb, "### %s\n\n", w.LogName)
	}
	if w.BodyWeight != 0 {
		fmt.Fprintf(sb, "Bodyweight: %g %s\n\n", w.BodyWeight, w.WeightUnitType)
	}
	if w.LogNotes != "" {
		fmt.Fprintf(sb, "%s\n\n", w.LogNotes)
	}
	sb.WriteString("| # | Exercise | Category | Sets |\n")
	sb.WriteString("|---|----------|----------|------|\n")
	for _, e := range w.Exercises {
		sets := make([]string, len(e.Sets))
		for i, s := range e.Sets {
			sets[i] = s.Summary()
		}
		fmt.Fprintf(sb, "| %d | %s | %s | %s |\n", e.Order, e.Name, e.Category, strings.Join(sets, ", "))
	}
	sb.WriteString("\n")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%g", *f)
}
