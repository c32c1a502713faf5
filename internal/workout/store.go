// ABOUTME: In-memory editing session for one workout entry or routine.
// ABOUTME: Owns the exercise/set tree and keeps ids stable and orders contiguous.
package workout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/myjot/internal/models"
	"github.com/harperreed/myjot/internal/storage"
)

var (
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrSetNotFound        = errors.New("set not found")
	ErrInvalidOrder       = errors.New("invalid exercise order")
	ErrPositionOutOfRange = errors.New("position out of range")
	ErrUnknownSetup       = errors.New("unknown exercise setup")
	ErrInvalidSetType     = errors.New("invalid set type")
	ErrNoGateway          = errors.New("store has no gateway to read routines from")
)

// Setup selects how AddExercise builds the exercises it appends.
type Setup int

const (
	// SetupNew appends one fresh exercise with a single default set.
	SetupNew Setup = iota
	// SetupNewFromExisting copies every exercise of a stored routine.
	SetupNewFromExisting
	// SetupExisting appends already-shaped exercises, e.g. to edit a record.
	SetupExisting
)

func (s Setup) String() string {
	switch s {
	case SetupNew:
		return "new"
	case SetupNewFromExisting:
		return "newFromExisting"
	case SetupExisting:
		return "existing"
	}
	return fmt.Sprintf("Setup(%d)", int(s))
}

// ParseSetup maps a setup name to its Setup.
func ParseSetup(name string) (Setup, error) {
	for _, s := range []Setup{SetupNew, SetupNewFromExisting, SetupExisting} {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownSetup)
}

// AddOptions configures AddExercise. Category applies to SetupNew,
// RoutineID to SetupNewFromExisting and Exercises to SetupExisting.
type AddOptions struct {
	Setup     Setup
	Category  models.Category
	RoutineID int64
	Exercises []models.Exercise
}

// SetUpdate carries the editable values of a set. Only the measurements
// matching the exercise's current category are kept.
type SetUpdate struct {
	Type             models.SetType
	Notes            string
	Reps             int
	Weight           float64
	WeightUnitType   models.WeightUnit
	Minutes          int
	Seconds          int
	Distance         float64
	DistanceUnitType models.DistanceUnit
	Calories         *int
}

// Store is the editing aggregate of one workout or routine. It is not safe
// for concurrent use; one goroutine owns a store for its whole session.
type Store struct {
	id             uuid.UUID
	gateway        storage.Gateway
	exercises      []*models.Exercise
	nextExerciseID int
	nextSetID      map[int]int
	observers
}

// NewStore returns an empty store. The gateway is only needed to seed
// exercises from a routine and may be nil otherwise.
func NewStore(g storage.Gateway) *Store {
	return &Store{
		id:             uuid.New(),
		gateway:        g,
		nextExerciseID: 1,
		nextSetID:      make(map[int]int),
	}
}

// ID identifies the editing session.
func (s *Store) ID() uuid.UUID { return s.id }

// Len returns the number of exercises.
func (s *Store) Len() int { return len(s.exercises) }

// Snapshot returns a deep copy of the exercises in order.
func (s *Store) Snapshot() []models.Exercise {
	out := make([]models.Exercise, len(s.exercises))
	for i, e := range s.exercises {
		out[i] = e.Clone()
	}
	return out
}

// Exercise returns a copy of the exercise with the given id.
func (s *Store) Exercise(id int) (models.Exercise, bool) {
	e := s.find(id)
	if e == nil {
		return models.Exercise{}, false
	}
	return e.Clone(), true
}

// AddExercise appends one or more exercises according to opts.Setup.
// On error the store is unchanged.
func (s *Store) AddExercise(ctx context.Context, opts AddOptions) error {
	var batch []models.Exercise
	switch opts.Setup {
	case SetupNew:
		category := opts.Category
		if category == "" {
			category = models.CategoryStrength
		}
		batch = []models.Exercise{{Category: category}}
	case SetupNewFromExisting:
		routine, err := s.loadRoutine(ctx, opts.RoutineID)
		if err != nil {
			return err
		}
		batch = routine.Exercises
	case SetupExisting:
		batch = opts.Exercises
	default:
		return fmt.Errorf("add exercise: %w", ErrUnknownSetup)
	}

	for _, src := range batch {
		s.appendCopy(src)
	}
	return nil
}

func (s *Store) loadRoutine(ctx context.Context, id int64) (*models.WorkoutEntry, error) {
	if s.gateway == nil {
		return nil, ErrNoGateway
	}
	var routine models.WorkoutEntry
	err := s.gateway.RunInTransaction(ctx, storage.ModeRead, []storage.Collection{storage.CollExerciseRoutines}, func(tx storage.Tx) error {
		return tx.Get(storage.CollExerciseRoutines, id, &routine)
	})
	if err != nil {
		return nil, fmt.Errorf("load routine %d: %w", id, err)
	}
	return &routine, nil
}

// appendCopy appends a deep copy of src under a fresh exercise id. Set ids
// are kept so copies stay value-equal to their source, except that a
// missing or repeated id is replaced by one above the current maximum.
func (s *Store) appendCopy(src models.Exercise) {
	e := &models.Exercise{
		ID:       s.nextExerciseID,
		Name:     src.Name,
		Notes:    src.Notes,
		Category: src.Category,
	}
	s.nextExerciseID++

	seen := make(map[int]bool, len(src.Sets))
	spare := src.MaxSetID() + 1
	for _, set := range src.Sets {
		c := set.Clone()
		if c.ID <= 0 || seen[c.ID] {
			c.ID = spare
			spare++
		}
		seen[c.ID] = true
		e.Sets = append(e.Sets, c)
	}
	if len(e.Sets) == 0 {
		e.Sets = []models.Set{models.NewSet(1)}
	}
	renumberSets(e)
	s.nextSetID[e.ID] = e.MaxSetID() + 1

	s.exercises = append(s.exercises, e)
	e.Order = len(s.exercises)
	s.emit(Change{Kind: ExerciseAdded, ExerciseID: e.ID})
}

// UpdateExercise overwrites the name, category and notes of an exercise.
// A category change first resets every set of the exercise.
func (s *Store) UpdateExercise(id int, name string, category models.Category, notes string) error {
	e := s.find(id)
	if e == nil {
		return fmt.Errorf("update exercise %d: %w", id, ErrExerciseNotFound)
	}
	if e.Category != category {
		for i := range e.Sets {
			e.Sets[i].Reset()
		}
	}
	e.Name = name
	e.Notes = notes
	e.Category = category
	s.emit(Change{Kind: ExerciseUpdated, ExerciseID: id})
	return nil
}

// UpdateExerciseOrder reorders the exercises to follow ids, which must be a
// permutation of the current exercise ids.
func (s *Store) UpdateExerciseOrder(ids []int) error {
	if len(ids) != len(s.exercises) {
		return fmt.Errorf("%w: got %d ids for %d exercises", ErrInvalidOrder, len(ids), len(s.exercises))
	}
	byID := make(map[int]*models.Exercise, len(s.exercises))
	for _, e := range s.exercises {
		byID[e.ID] = e
	}

	reordered := make([]*models.Exercise, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown exercise id %d", ErrInvalidOrder, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: exercise id %d appears twice", ErrInvalidOrder, id)
		}
		seen[id] = true
		reordered = append(reordered, e)
	}

	s.exercises = reordered
	s.renumberExercises()
	s.emit(Change{Kind: ExercisesReordered})
	return nil
}

// DeleteExercise removes the exercise at the 1-based position order.
func (s *Store) DeleteExercise(order int) error {
	if order < 1 || order > len(s.exercises) {
		return fmt.Errorf("delete exercise at %d of %d: %w", order, len(s.exercises), ErrPositionOutOfRange)
	}
	removed := s.exercises[order-1]
	s.exercises = append(s.exercises[:order-1], s.exercises[order:]...)
	delete(s.nextSetID, removed.ID)
	s.renumberExercises()
	s.emit(Change{Kind: ExerciseDeleted, ExerciseID: removed.ID})
	return nil
}

// AddExerciseSet appends a default Normal set and returns its id.
func (s *Store) AddExerciseSet(exerciseID int) (int, error) {
	e := s.find(exerciseID)
	if e == nil {
		return 0, fmt.Errorf("add set to exercise %d: %w", exerciseID, ErrExerciseNotFound)
	}
	id := s.nextSetID[exerciseID]
	s.nextSetID[exerciseID] = id + 1

	set := models.NewSet(id)
	set.Order = len(e.Sets) + 1
	e.Sets = append(e.Sets, set)
	s.emit(Change{Kind: SetAdded, ExerciseID: exerciseID, SetID: id})
	return id, nil
}

// UpdateExerciseSet overwrites a set's type and notes and installs the
// measurements of the exercise's current category.
func (s *Store) UpdateExerciseSet(exerciseID, setID int, u SetUpdate) error {
	e := s.find(exerciseID)
	if e == nil {
		return fmt.Errorf("update set %d: %w", setID, ErrExerciseNotFound)
	}
	idx := setIndex(e, setID)
	if idx < 0 {
		return fmt.Errorf("update set %d of exercise %d: %w", setID, exerciseID, ErrSetNotFound)
	}
	if u.Type == "" {
		u.Type = models.SetNormal
	}
	if !u.Type.IsValid() {
		return fmt.Errorf("update set %d: %q: %w", setID, u.Type, ErrInvalidSetType)
	}

	set := &e.Sets[idx]
	set.Type = u.Type
	set.Notes = u.Notes
	switch e.Category {
	case models.CategoryCardio:
		f := models.CardioFields{
			Minutes:          u.Minutes,
			Seconds:          u.Seconds,
			Distance:         u.Distance,
			DistanceUnitType: u.DistanceUnitType,
		}
		if u.Calories != nil {
			c := *u.Calories
			f.Calories = &c
		}
		set.Fields = f
	case models.CategoryStrength:
		set.Fields = models.StrengthFields{
			Reps:           u.Reps,
			Weight:         u.Weight,
			WeightUnitType: u.WeightUnitType,
		}
	default:
		set.Fields = nil
	}
	s.emit(Change{Kind: SetUpdated, ExerciseID: exerciseID, SetID: setID})
	return nil
}

// DeleteExerciseSet removes the set at the 1-based position order. An
// exercise always keeps at least one set, so deleting its last set is a
// no-op.
func (s *Store) DeleteExerciseSet(exerciseID, order int) error {
	e := s.find(exerciseID)
	if e == nil {
		return fmt.Errorf("delete set of exercise %d: %w", exerciseID, ErrExerciseNotFound)
	}
	if len(e.Sets) <= 1 {
		return nil
	}
	if order < 1 || order > len(e.Sets) {
		return fmt.Errorf("delete set at %d of %d: %w", order, len(e.Sets), ErrPositionOutOfRange)
	}
	removed := e.Sets[order-1].ID
	e.Sets = append(e.Sets[:order-1], e.Sets[order:]...)
	renumberSets(e)
	s.emit(Change{Kind: SetDeleted, ExerciseID: exerciseID, SetID: removed})
	return nil
}

func (s *Store) find(id int) *models.Exercise {
	for _, e := range s.exercises {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (s *Store) renumberExercises() {
	for i, e := range s.exercises {
		e.Order = i + 1
	}
}

func renumberSets(e *models.Exercise) {
	for i := range e.Sets {
		e.Sets[i].Order = i + 1
	}
}

func setIndex(e *models.Exercise, setID int) int {
	for i, set := range e.Sets {
		if set.ID == setID {
			return i
		}
	}
	return -1
}
