// ABOUTME: Change notifications emitted by the workout store.
// ABOUTME: Callers subscribe explicitly; the data model itself stays passive.
package workout

// ChangeKind names the mutation that produced a Change.
type ChangeKind int

const (
	ExerciseAdded ChangeKind = iota + 1
	ExerciseUpdated
	ExercisesReordered
	ExerciseDeleted
	SetAdded
	SetUpdated
	SetDeleted
)

var changeKindNames = map[ChangeKind]string{
	ExerciseAdded:      "exercise_added",
	ExerciseUpdated:    "exercise_updated",
	ExercisesReordered: "exercises_reordered",
	ExerciseDeleted:    "exercise_deleted",
	SetAdded:           "set_added",
	SetUpdated:         "set_updated",
	SetDeleted:         "set_deleted",
}

func (k ChangeKind) String() string {
	if name, ok := changeKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Change describes one successful mutation. ExerciseID is zero for
// reorders; SetID is zero for exercise-level changes.
type Change struct {
	Kind       ChangeKind
	ExerciseID int
	SetID      int
}

type subscriber struct {
	id int
	fn func(Change)
}

type observers struct {
	subs   []subscriber
	nextID int
}

// Subscribe registers fn to be called after every successful mutation, in
// the mutating goroutine and in subscription order. The returned func
// removes the subscription.
func (o *observers) Subscribe(fn func(Change)) (cancel func()) {
	id := o.nextID
	o.nextID++
	o.subs = append(o.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range o.subs {
			if sub.id == id {
				o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

func (o *observers) emit(c Change) {
	for _, sub := range o.subs {
		sub.fn(c)
	}
}
