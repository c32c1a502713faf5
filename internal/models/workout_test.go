// ABOUTME: Tests for Exercise and Set models and their JSON wire format.
// ABOUTME: Covers cloning, resets, and category-bound decoding of flat set records.
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSet(t *testing.T) {
	s := NewSet(3)

	assert.Equal(t, 3, s.ID)
	assert.Equal(t, 3, s.Order)
	assert.Equal(t, SetNormal, s.Type)
	assert.Nil(t, s.Fields)
}

func TestCategoryIsValid(t *testing.T) {
	for _, c := range AllCategories {
		assert.True(t, c.IsValid(), "category %q", c)
	}
	assert.False(t, Category("Yoga").IsValid())
	assert.False(t, Category("").IsValid())
}

func TestSetCloneDoesNotShareCalories(t *testing.T) {
	cal := 120
	s := Set{ID: 1, Order: 1, Type: SetNormal, Fields: CardioFields{Minutes: 5, Calories: &cal}}

	c := s.Clone()
	cf, ok := c.Cardio()
	require.True(t, ok)
	*cf.Calories = 999

	orig, _ := s.Cardio()
	assert.Equal(t, 120, *orig.Calories)
}

func TestSetReset(t *testing.T) {
	s := Set{ID: 2, Order: 2, Type: SetWarmUp, Notes: "easy", Fields: StrengthFields{Reps: 5, Weight: 100}}
	s.Reset()

	assert.Equal(t, 2, s.ID)
	assert.Equal(t, SetWarmUp, s.Type)
	assert.Empty(t, s.Notes)
	assert.Nil(t, s.Fields)
}

func TestExerciseCloneIsDeep(t *testing.T) {
	e := Exercise{ID: 1, Name: "Squat", Category: CategoryStrength, Sets: []Set{NewSet(1)}}
	c := e.Clone()
	c.Sets[0].Notes = "changed"
	c.Sets = append(c.Sets, NewSet(2))

	assert.Empty(t, e.Sets[0].Notes)
	assert.Len(t, e.Sets, 1)
}

func TestExerciseMaxSetID(t *testing.T) {
	e := Exercise{Sets: []Set{NewSet(4), NewSet(2), NewSet(7)}}
	assert.Equal(t, 7, e.MaxSetID())
	assert.Equal(t, 0, Exercise{}.MaxSetID())
}

func TestStrengthSetJSONOmitsCardioKeys(t *testing.T) {
	s := Set{ID: 1, Order: 1, Type: SetNormal, Fields: StrengthFields{Reps: 10, Weight: 20, WeightUnitType: WeightLbs}}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, float64(10), m["reps"])
	assert.Equal(t, float64(20), m["weight"])
	assert.Equal(t, "lbs", m["weightUnitType"])
	assert.NotContains(t, m, "minutes")
	assert.NotContains(t, m, "distance")
	assert.NotContains(t, m, "notes")
}

func TestResetSetJSONKeepsOnlyIdentity(t *testing.T) {
	s := Set{ID: 4, Order: 2, Type: SetWarmUp}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":4,"order":2,"type":"Warm-up"}`, string(data))
}

func TestExerciseJSONBindsSetsToCategory(t *testing.T) {
	raw := `{
		"id": 1, "order": 1, "name": "Run", "category": "Cardio",
		"sets": [
			{"id": 1, "order": 1, "type": "Normal", "minutes": 30, "seconds": 15,
			 "distance": 5, "distanceUnitType": "kilometers", "reps": 12},
			{"id": 2, "order": 2, "type": "Warm-up"}
		]
	}`

	var e Exercise
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	require.Len(t, e.Sets, 2)
	cf, ok := e.Sets[0].Cardio()
	require.True(t, ok, "first set should decode as cardio")
	assert.Equal(t, 30, cf.Minutes)
	assert.Equal(t, 15, cf.Seconds)
	assert.Equal(t, 5.0, cf.Distance)
	assert.Equal(t, DistanceKilometers, cf.DistanceUnitType)
	assert.Nil(t, cf.Calories)
	assert.Nil(t, e.Sets[1].Fields, "set without measurements stays empty")
}

func TestFlexibilityExerciseDropsMeasurements(t *testing.T) {
	raw := `{"id":1,"order":1,"name":"Stretch","category":"Flexibility",
		"sets":[{"id":1,"order":1,"type":"Normal","reps":3}]}`

	var e Exercise
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Nil(t, e.Sets[0].Fields)
}

func TestWorkoutEntryJSONShape(t *testing.T) {
	dt := "2025-03-10T07:30"
	w := &WorkoutEntry{
		LogName:    "Leg day",
		DateTime:   &dt,
		BodyWeight: 180,
		Exercises: []Exercise{{
			ID: 1, Order: 1, Name: "Squat", Category: CategoryStrength,
			Sets: []Set{{ID: 1, Order: 1, Type: SetNormal, Fields: StrengthFields{Reps: 5, Weight: 225, WeightUnitType: WeightLbs}}},
		}},
	}
	w.SetRecordID(7)

	data, err := json.Marshal(w)
	require.NoError(t, err)

	var back WorkoutEntry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, int64(7), back.RecordID())
	assert.Equal(t, "Leg day", back.LogName)
	assert.False(t, back.IsRoutine())
	assert.Equal(t, 1, back.SetCount())
	sf, ok := back.Exercises[0].Sets[0].Strength()
	require.True(t, ok)
	assert.Equal(t, 225.0, sf.Weight)
}

func TestRoutineOmitsDateTime(t *testing.T) {
	w := &WorkoutEntry{LogName: "Push", BodyWeight: 80}

	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dateTime")
	assert.True(t, w.IsRoutine())
}

func TestSetSummary(t *testing.T) {
	cal := 300
	tests := []struct {
		name string
		set  Set
		want string
	}{
		{"strength", Set{Type: SetNormal, Fields: StrengthFields{Reps: 5, Weight: 225, WeightUnitType: WeightLbs}}, "5 x 225 lbs"},
		{"cardio", Set{Type: SetNormal, Fields: CardioFields{Minutes: 30, Seconds: 5, Distance: 5, DistanceUnitType: DistanceKilometers, Calories: &cal}}, "30:05 5 kilometers 300 cal"},
		{"warm-up without measurements", Set{Type: SetWarmUp}, "(warm-up)"},
		{"empty", Set{Type: SetNormal}, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.set.Summary())
		})
	}
}
