// ABOUTME: Exercise and Set models for workout entries and routines.
// ABOUTME: Set measurements are a tagged union keyed by the exercise category.
package models

import (
	"fmt"
	"strings"
)

// Category is the kind of activity an exercise records.
type Category string

const (
	CategoryStrength    Category = "Strength Training"
	CategoryCardio      Category = "Cardio"
	CategoryFlexibility Category = "Flexibility"
)

// AllCategories lists the selectable categories in display order.
var AllCategories = []Category{CategoryCardio, CategoryStrength, CategoryFlexibility}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryStrength, CategoryCardio, CategoryFlexibility:
		return true
	}
	return false
}

// SetType distinguishes working sets from warm-ups.
type SetType string

const (
	SetNormal SetType = "Normal"
	SetWarmUp SetType = "Warm-up"
)

// IsValid reports whether t is a known set type.
func (t SetType) IsValid() bool {
	return t == SetNormal || t == SetWarmUp
}

// WeightUnit is the unit a strength set's weight is recorded in.
type WeightUnit string

const (
	WeightLbs WeightUnit = "lbs"
	WeightKgs WeightUnit = "kgs"
)

// DistanceUnit is the unit a cardio set's distance is recorded in.
type DistanceUnit string

const (
	DistanceMiles      DistanceUnit = "miles"
	DistanceKilometers DistanceUnit = "kilometers"
)

// SetFields holds the measurements of one set. Exactly one variant is
// populated at a time; a nil SetFields means no measurements (flexibility
// work, or a set whose exercise just switched category).
type SetFields interface {
	Category() Category
	clone() SetFields
}

// StrengthFields are the measurements of a strength training set.
type StrengthFields struct {
	Reps           int
	Weight         float64
	WeightUnitType WeightUnit
}

func (StrengthFields) Category() Category { return CategoryStrength }

func (f StrengthFields) clone() SetFields { return f }

// CardioFields are the measurements of a cardio set.
type CardioFields struct {
	Minutes          int
	Seconds          int
	Distance         float64
	DistanceUnitType DistanceUnit
	Calories         *int
}

func (CardioFields) Category() Category { return CategoryCardio }

func (f CardioFields) clone() SetFields {
	if f.Calories != nil {
		c := *f.Calories
		f.Calories = &c
	}
	return f
}

// Set is one performed unit of effort within an exercise.
type Set struct {
	ID     int
	Order  int
	Type   SetType
	Notes  string
	Fields SetFields
}

// NewSet creates a default Normal set with the given id.
func NewSet(id int) Set {
	return Set{ID: id, Order: id, Type: SetNormal}
}

// Clone returns a copy that shares no memory with s.
func (s Set) Clone() Set {
	if s.Fields != nil {
		s.Fields = s.Fields.clone()
	}
	return s
}

// Reset drops everything but the identity and type of the set.
func (s *Set) Reset() {
	s.Notes = ""
	s.Fields = nil
}

// Strength returns the strength measurements, if that variant is set.
func (s Set) Strength() (StrengthFields, bool) {
	f, ok := s.Fields.(StrengthFields)
	return f, ok
}

// Cardio returns the cardio measurements, if that variant is set.
func (s Set) Cardio() (CardioFields, bool) {
	f, ok := s.Fields.(CardioFields)
	return f, ok
}

// Summary renders the set's measurements on one line, e.g. "5 x 225 lbs".
func (s Set) Summary() string {
	var parts []string
	switch f := s.Fields.(type) {
	case StrengthFields:
		parts = append(parts, fmt.Sprintf("%d x %g %s", f.Reps, f.Weight, f.WeightUnitType))
	case CardioFields:
		parts = append(parts, fmt.Sprintf("%d:%02d", f.Minutes, f.Seconds))
		if f.Distance != 0 {
			parts = append(parts, fmt.Sprintf("%g %s", f.Distance, f.DistanceUnitType))
		}
		if f.Calories != nil {
			parts = append(parts, fmt.Sprintf("%d cal", *f.Calories))
		}
	}
	if s.Type == SetWarmUp {
		parts = append(parts, "(warm-up)")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// Exercise is one movement or activity within a workout entry or routine.
type Exercise struct {
	ID       int
	Order    int
	Name     string
	Notes    string
	Category Category
	Sets     []Set
}

// Clone returns a deep copy of the exercise and its sets.
func (e Exercise) Clone() Exercise {
	sets := make([]Set, len(e.Sets))
	for i, s := range e.Sets {
		sets[i] = s.Clone()
	}
	e.Sets = sets
	return e
}

// MaxSetID returns the largest set id in the exercise, or 0 when it has none.
func (e Exercise) MaxSetID() int {
	maxID := 0
	for _, s := range e.Sets {
		if s.ID > maxID {
			maxID = s.ID
		}
	}
	return maxID
}

// CloneExercises deep-copies a list of exercises.
func CloneExercises(exercises []Exercise) []Exercise {
	out := make([]Exercise, len(exercises))
	for i, e := range exercises {
		out[i] = e.Clone()
	}
	return out
}

// WorkoutEntry is the persisted shape of a logged workout or a routine.
// Routines carry no DateTime.
type WorkoutEntry struct {
	ID             int64      `json:"id,omitempty" yaml:"id,omitempty"`
	LogName        string     `json:"logName" yaml:"log_name"`
	DateTime       *string    `json:"dateTime,omitempty" yaml:"date_time,omitempty"`
	BodyWeight     float64    `json:"bodyWeight" yaml:"body_weight"`
	WeightUnitType string     `json:"weightUnitType,omitempty" yaml:"weight_unit_type,omitempty"`
	LogNotes       string     `json:"logNotes,omitempty" yaml:"log_notes,omitempty"`
	Exercises      []Exercise `json:"exercises" yaml:"-"`
}

// RecordID returns the storage id of the entry.
func (w *WorkoutEntry) RecordID() int64 { return w.ID }

// SetRecordID assigns the storage id of the entry.
func (w *WorkoutEntry) SetRecordID(id int64) { w.ID = id }

// IsRoutine reports whether the entry has no date, i.e. is a routine template.
func (w *WorkoutEntry) IsRoutine() bool { return w.DateTime == nil }

// SetCount returns the number of sets across all exercises.
func (w *WorkoutEntry) SetCount() int {
	n := 0
	for _, e := range w.Exercises {
		n += len(e.Sets)
	}
	return n
}
