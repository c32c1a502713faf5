// ABOUTME: Tests for save-file encode/decode/import and readable exports.
// ABOUTME: Import must replace the journal atomically and keep record ids.
package storage_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/harperreed/myjot/internal/models"
	"github.com/harperreed/myjot/internal/storage"
	"github.com/harperreed/myjot/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func seedJournal(t *testing.T, g storage.Gateway) {
	t.Helper()
	ctx := context.Background()

	_, err := g.Put(ctx, storage.CollUser, &models.UserProfile{UserName: "sam"})
	require.NoError(t, err)

	w := routine("Leg day")
	w.DateTime = strPtr("2025-03-10T07:30")
	_, err = g.Put(ctx, storage.CollExerciseLog, w)
	require.NoError(t, err)

	_, err = g.Put(ctx, storage.CollExerciseRoutines, routine("Legs template"))
	require.NoError(t, err)

	_, err = g.Put(ctx, storage.CollMealLog, &models.MealEntry{
		LogName: "Lunch", DateTime: strPtr("2025-03-10T12:00"),
		MealName: "Burrito", MealType: models.MealLunch, Calories: floatPtr(650),
	})
	require.NoError(t, err)

	_, err = g.Put(ctx, storage.CollCustomMeals, &models.MealEntry{
		LogName: "Usual", MealName: "Oats", MealType: models.MealBreakfast,
	})
	require.NoError(t, err)
}

func TestSaveFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := storagetest.NewBadger(t)
	seedJournal(t, src)

	sf, err := storage.BuildSaveFile(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, "sam", sf.UserName)

	encoded, err := sf.Encode()
	require.NoError(t, err)

	decoded, err := storage.DecodeSaveFile(encoded)
	require.NoError(t, err)

	dst := storagetest.NewBadger(t)
	summary, err := storage.ImportSaveFile(ctx, dst, decoded)
	require.NoError(t, err)
	assert.Equal(t, storage.ImportSummary{ExerciseLogs: 1, MealLogs: 1, ExerciseRoutines: 1, CustomMeals: 1}, *summary)

	got, err := storage.Get[models.WorkoutEntry](ctx, dst, storage.CollExerciseLog, sf.ExerciseLogs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Leg day", got.LogName)
	assert.Equal(t, sf.ExerciseLogs[0].Exercises, got.Exercises)
}

func TestSaveFileUsesWireKeys(t *testing.T) {
	sf := &storage.SaveFile{UserName: "sam", MealLogs: []*models.MealEntry{}}
	encoded, err := sf.Encode()
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(string(encoded))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{"userName", "exerciseLogs", "mealLogs", "exerciseRoutines", "customMeals"} {
		assert.Contains(t, m, key)
	}
}

func TestDecodeEmptySaveFile(t *testing.T) {
	_, err := storage.DecodeSaveFile([]byte("  \n"))
	assert.ErrorIs(t, err, storage.ErrEmptySaveFile)
	assert.EqualError(t, err, "The uploaded save file is empty or could not be read.")

	_, err = storage.DecodeSaveFile([]byte("not base64!"))
	assert.Error(t, err)
}

func TestImportReplacesExistingData(t *testing.T) {
	ctx := context.Background()
	repo := storagetest.NewBadger(t)
	seedJournal(t, repo)

	sf := &storage.SaveFile{
		UserName: "alex",
		ExerciseRoutines: []*models.WorkoutEntry{
			{ID: 5, LogName: "Push", BodyWeight: 70},
			{LogName: "Pull", BodyWeight: 70},
		},
	}
	_, err := storage.ImportSaveFile(ctx, repo, sf)
	require.NoError(t, err)

	assert.Equal(t, 0, storagetest.Count(t, repo, storage.CollExerciseLog))
	assert.Equal(t, 0, storagetest.Count(t, repo, storage.CollMealLog))
	assert.Equal(t, 1, storagetest.Count(t, repo, storage.CollUser))

	routines, err := storage.List[models.WorkoutEntry](ctx, repo, storage.CollExerciseRoutines)
	require.NoError(t, err)
	require.Len(t, routines, 2)
	assert.Equal(t, int64(5), routines[0].ID)
	assert.Equal(t, "Push", routines[0].LogName)
	assert.Equal(t, int64(6), routines[1].ID)
}

func TestImportFailureKeepsPreviousData(t *testing.T) {
	ctx := context.Background()
	inner := storagetest.NewBadger(t)
	seedJournal(t, inner)
	failing := storagetest.NewFailOnNthPut(inner, 2, errors.New("write failed"))

	sf := &storage.SaveFile{
		UserName:     "alex",
		ExerciseLogs: []*models.WorkoutEntry{{LogName: "A", DateTime: strPtr("2025-01-01T00:00")}},
	}
	_, err := storage.ImportSaveFile(ctx, failing, sf)
	require.Error(t, err)

	assert.Equal(t, 1, storagetest.Count(t, inner, storage.CollMealLog))
	assert.Equal(t, "sam", storagetest.Raw(t, inner, storage.CollUser, 1)["userName"])
}

func TestImportRejectsInvalidMeal(t *testing.T) {
	repo := storagetest.NewBadger(t)
	sf := &storage.SaveFile{
		MealLogs: []*models.MealEntry{{LogName: "x", DateTime: strPtr("2025-01-01T00:00"), MealType: models.MealLunch}},
	}

	_, err := storage.ImportSaveFile(context.Background(), repo, sf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A valid meal name is required.")
}

func TestExportJSON(t *testing.T) {
	repo := storagetest.NewBadger(t)
	seedJournal(t, repo)

	data, err := storage.ExportJSON(context.Background(), repo)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "myjot", m["tool"])
	assert.Equal(t, "sam", m["userName"])
	assert.Len(t, m["exerciseLogs"], 1)
}

func TestExportYAML(t *testing.T) {
	repo := storagetest.NewBadger(t)
	seedJournal(t, repo)

	data, err := storage.ExportYAML(context.Background(), repo)
	require.NoError(t, err)

	var out struct {
		Workouts []struct {
			LogName   string `yaml:"log_name"`
			Exercises []struct {
				Name string   `yaml:"name"`
				Sets []string `yaml:"sets"`
			} `yaml:"exercises"`
		} `yaml:"workouts"`
		Meals []struct {
			MealName string `yaml:"meal_name"`
		} `yaml:"meals"`
	}
	require.NoError(t, yaml.Unmarshal(data, &out))
	require.Len(t, out.Workouts, 1)
	assert.Equal(t, "Leg day", out.Workouts[0].LogName)
	assert.Equal(t, []string{"5 x 225 lbs"}, out.Workouts[0].Exercises[0].Sets)
	assert.Equal(t, "Burrito", out.Meals[0].MealName)
}

func TestExportMarkdown(t *testing.T) {
	repo := storagetest.NewBadger(t)
	seedJournal(t, repo)

	md, err := storage.ExportMarkdown(context.Background(), repo)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(md, "# MyJot Export - sam"))
	assert.Contains(t, md, "## Workouts")
	assert.Contains(t, md, "### Leg day (2025-03-10T07:30)")
	assert.Contains(t, md, "| 1 | Squat | Strength Training | 5 x 225 lbs |")
	assert.Contains(t, md, "## Routines")
	assert.Contains(t, md, "| 2025-03-10T12:00 | Lunch | Burrito | 650 |")
}
