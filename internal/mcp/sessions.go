// ABOUTME: Open workout editing sessions held by the MCP server.
// ABOUTME: Each session owns one store and is keyed by the store's uuid.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/harperreed/myjot/internal/workout"
)

var errUnknownSession = errors.New("unknown or finished workout session")

// session serializes tool calls against one store, which is not safe
// for concurrent use on its own.
type session struct {
	mu    sync.Mutex
	store *workout.Store
	edit  workout.EditContext
}

// openSession starts a session. In edit mode it also returns the entry
// fields of the loaded record.
func (s *Server) openSession(ctx context.Context, in startWorkoutInput) (*session, *workout.EntryFields, error) {
	edit := workout.EditContext{Target: targetOf(in.Routine), ID: in.EditID}

	var (
		sess   *session
		fields *workout.EntryFields
	)
	switch {
	case in.EditID > 0:
		store, loaded, err := s.assembler.LoadForEdit(ctx, edit.Target, in.EditID)
		if err != nil {
			return nil, nil, err
		}
		sess = &session{store: store, edit: edit}
		fields = &loaded
	default:
		store := workout.NewStore(s.gateway)
		if in.FromRoutineID > 0 {
			err := store.AddExercise(ctx, workout.AddOptions{Setup: workout.SetupNewFromExisting, RoutineID: in.FromRoutineID})
			if err != nil {
				return nil, nil, err
			}
		}
		sess = &session{store: store, edit: edit}
	}

	s.mu.Lock()
	s.sessions[sess.store.ID()] = sess
	s.mu.Unlock()
	s.log.Debug("workout session opened", "session", sess.store.ID(), "target", edit.Target, "edit_id", edit.ID)
	return sess, fields, nil
}

// withSession runs fn while holding the session's lock.
func (s *Server) withSession(id string, fn func(*session) error) error {
	key, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("session id %q: %w", id, errUnknownSession)
	}
	s.mu.Lock()
	sess, ok := s.sessions[key]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, errUnknownSession)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess)
}

func (s *Server) closeSession(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess.store.ID())
	s.mu.Unlock()
	s.log.Debug("workout session closed", "session", sess.store.ID())
}

func targetOf(routine bool) workout.Target {
	if routine {
		return workout.TargetRoutine
	}
	return workout.TargetWorkout
}
