// ABOUTME: Turns a validated workout store into a persisted entry or routine.
// ABOUTME: Also replays stored records into stores for editing.
package workout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/harperreed/myjot/internal/logging"
	"github.com/harperreed/myjot/internal/models"
	"github.com/harperreed/myjot/internal/storage"
)

var (
	// ErrPersistence wraps every storage failure during a submit.
	ErrPersistence = errors.New("could not save entry")
	// ErrSubmitInFlight is returned when the same store is already being submitted.
	ErrSubmitInFlight = errors.New("a submit for this workout is already in progress")
)

// Target selects the collection an entry is written to.
type Target int

const (
	TargetWorkout Target = iota
	TargetRoutine
)

func (t Target) String() string {
	if t == TargetRoutine {
		return "routine"
	}
	return "workout"
}

// Collection returns the collection holding records of this target.
func (t Target) Collection() storage.Collection {
	if t == TargetRoutine {
		return storage.CollExerciseRoutines
	}
	return storage.CollExerciseLog
}

// EntryFields are the entry-level values entered alongside the exercises.
type EntryFields struct {
	LogName        string
	DateTime       *string
	BodyWeight     float64
	WeightUnitType string
	LogNotes       string
}

// EditContext says where a submit goes. A zero ID creates a new record;
// any other ID replaces that record.
type EditContext struct {
	Target Target
	ID     int64
}

// RoutineName is one entry of the routine picker.
type RoutineName struct {
	ID      int64  `json:"id"`
	LogName string `json:"logName"`
}

// Assembler writes stores through a gateway.
type Assembler struct {
	gateway  storage.Gateway
	log      *log.Logger
	inFlight sync.Map
}

// NewAssembler returns an assembler writing to g.
func NewAssembler(g storage.Gateway, logger *log.Logger) *Assembler {
	return &Assembler{gateway: g, log: logging.OrDiscard(logger)}
}

// Gateway returns the gateway the assembler writes to.
func (a *Assembler) Gateway() storage.Gateway { return a.gateway }

// Validate runs the entry field checks and then the exercise checks.
func Validate(store *Store, fields EntryFields, target Target) error {
	if strings.TrimSpace(fields.LogName) == "" {
		return invalid(MsgEntryLogName)
	}
	if target != TargetRoutine && (fields.DateTime == nil || strings.TrimSpace(*fields.DateTime) == "") {
		return invalid(MsgEntryDateTime)
	}
	if fields.BodyWeight == 0 {
		return invalid(MsgEntryBodyWeight)
	}
	return store.ValidateAllExercises()
}

// Build assembles the record that Submit would write, sharing no memory
// with the store.
func Build(store *Store, fields EntryFields, edit EditContext) *models.WorkoutEntry {
	entry := &models.WorkoutEntry{
		ID:             edit.ID,
		LogName:        fields.LogName,
		BodyWeight:     fields.BodyWeight,
		WeightUnitType: fields.WeightUnitType,
		LogNotes:       fields.LogNotes,
		Exercises:      store.Snapshot(),
	}
	if edit.Target != TargetRoutine && fields.DateTime != nil {
		dt := *fields.DateTime
		entry.DateTime = &dt
	}
	return entry
}

// Submit validates the store and writes it as one record inside a single
// read-write transaction. It returns the id of the written record. The
// store is never modified, so a failed submit can simply be retried.
func (a *Assembler) Submit(ctx context.Context, store *Store, fields EntryFields, edit EditContext) (int64, error) {
	if _, busy := a.inFlight.LoadOrStore(store.ID(), struct{}{}); busy {
		return 0, ErrSubmitInFlight
	}
	defer a.inFlight.Delete(store.ID())

	if err := Validate(store, fields, edit.Target); err != nil {
		return 0, err
	}

	entry := Build(store, fields, edit)
	coll := edit.Target.Collection()
	var id int64
	err := a.gateway.RunInTransaction(ctx, storage.ModeReadWrite, []storage.Collection{coll}, func(tx storage.Tx) error {
		var err error
		id, err = tx.Put(coll, entry)
		return err
	})
	if err != nil {
		a.log.Error("submit failed", "target", edit.Target, "id", edit.ID, "err", err)
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	a.log.Info("entry saved", "target", edit.Target, "id", id, "exercises", len(entry.Exercises), "sets", entry.SetCount())
	return id, nil
}

// LoadForEdit reads a stored record and replays its exercises into a new
// store, returning the store and the entry fields to edit alongside it.
func (a *Assembler) LoadForEdit(ctx context.Context, target Target, id int64) (*Store, EntryFields, error) {
	coll := target.Collection()
	var entry models.WorkoutEntry
	err := a.gateway.RunInTransaction(ctx, storage.ModeRead, []storage.Collection{coll}, func(tx storage.Tx) error {
		return tx.Get(coll, id, &entry)
	})
	if err != nil {
		return nil, EntryFields{}, fmt.Errorf("load %s %d: %w", target, id, err)
	}

	store := NewStore(a.gateway)
	if err := store.AddExercise(ctx, AddOptions{Setup: SetupExisting, Exercises: entry.Exercises}); err != nil {
		return nil, EntryFields{}, err
	}
	fields := EntryFields{
		LogName:        entry.LogName,
		DateTime:       entry.DateTime,
		BodyWeight:     entry.BodyWeight,
		WeightUnitType: entry.WeightUnitType,
		LogNotes:       entry.LogNotes,
	}
	return store, fields, nil
}

// ListRoutineNames returns the id and name of every stored routine.
func (a *Assembler) ListRoutineNames(ctx context.Context) ([]RoutineName, error) {
	routines, err := storage.List[models.WorkoutEntry](ctx, a.gateway, storage.CollExerciseRoutines)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	out := make([]RoutineName, 0, len(routines))
	for _, r := range routines {
		out = append(out, RoutineName{ID: r.ID, LogName: r.LogName})
	}
	return out, nil
}

// Get returns one stored workout entry or routine.
func (a *Assembler) Get(ctx context.Context, target Target, id int64) (*models.WorkoutEntry, error) {
	entry, err := storage.Get[models.WorkoutEntry](ctx, a.gateway, target.Collection(), id)
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", target, id, err)
	}
	return entry, nil
}

// List returns stored records of the target. Workouts come newest first,
// routines in id order. A positive limit caps the result.
func (a *Assembler) List(ctx context.Context, target Target, limit int) ([]*models.WorkoutEntry, error) {
	entries, err := storage.List[models.WorkoutEntry](ctx, a.gateway, target.Collection())
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", target, err)
	}
	if target == TargetWorkout {
		sort.SliceStable(entries, func(i, j int) bool {
			return dateOf(entries[i]) > dateOf(entries[j])
		})
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func dateOf(e *models.WorkoutEntry) string {
	if e.DateTime == nil {
		return ""
	}
	return *e.DateTime
}

// Delete removes one stored record.
func (a *Assembler) Delete(ctx context.Context, target Target, id int64) error {
	if err := a.gateway.Delete(ctx, target.Collection(), id); err != nil {
		return fmt.Errorf("delete %s %d: %w", target, id, err)
	}
	a.log.Info("entry deleted", "target", target, "id", id)
	return nil
}
