// Package tasklist maintains the in-memory task collection for one
// identity and keeps it convergent with the remote store.
package tasklist

import (
	"context"
	"strings"
	"sync"

	"taskpad/internal/service"
)

// Synchronizer mediates every task mutation through the backend.
// The collection it holds is the single source of truth for rendering:
// an ordered sequence (newest first) of value copies, not live references
// into the store. Each operation is one round trip; there is no retry
// policy and no cache.
//
// Methods are safe for concurrent use. In practice they run on the UI
// program's command goroutines, one per user action.
type Synchronizer struct {
	svc      service.Service
	identity service.Identity

	mu    sync.Mutex
	tasks []service.Task
}

// New creates a synchronizer scoped to the given identity.
func New(svc service.Service, identity service.Identity) *Synchronizer {
	return &Synchronizer{svc: svc, identity: identity}
}

// Tasks returns a copy of the current collection, newest first.
func (s *Synchronizer) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Load fetches the identity's tasks and replaces the collection.
// On failure the prior collection is left untouched.
func (s *Synchronizer) Load(ctx context.Context) error {
	tasks, err := s.svc.ListTasks(ctx, s.identity.UserID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	return nil
}

// Add creates a task from text. Whitespace-only text is a silent no-op:
// no request is issued and ok is false. On success the store-returned row
// is prepended; the store assigns the id, never the client. On failure
// the collection is unchanged because nothing was inserted optimistically.
func (s *Synchronizer) Add(ctx context.Context, text string) (task service.Task, ok bool, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return service.Task{}, false, nil
	}

	created, err := s.svc.CreateTask(ctx, s.identity.UserID, text)
	if err != nil {
		return service.Task{}, false, err
	}

	s.mu.Lock()
	s.tasks = append([]service.Task{created}, s.tasks...)
	s.mu.Unlock()
	return created, true, nil
}

// Toggle flips the done flag of the task identified by id. The remote
// update is issued first; the local flip is applied only after a success
// acknowledgment. On failure local state is unchanged.
func (s *Synchronizer) Toggle(ctx context.Context, id int64) error {
	s.mu.Lock()
	var current, found bool
	for _, t := range s.tasks {
		if t.ID == id {
			current = t.Done
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return service.NewOperationError("toggle", "no such task")
	}

	if err := s.svc.SetTaskDone(ctx, id, !current); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Done = !current
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// Delete removes the task identified by id optimistically: the local
// removal happens before the remote request resolves. If the request
// fails, the exact pre-delete snapshot is restored.
//
// Known limitation: the rollback overwrites the whole collection, so a
// concurrent Add or Toggle that lands between the optimistic removal and
// a failed acknowledgment is silently discarded with it.
func (s *Synchronizer) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	snapshot := make([]service.Task, len(s.tasks))
	copy(snapshot, s.tasks)

	idx := -1
	for i, t := range s.tasks {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return service.NewOperationError("delete", "no such task")
	}
	s.tasks = append(s.tasks[:idx:idx], s.tasks[idx+1:]...)
	s.mu.Unlock()

	if err := s.svc.DeleteTask(ctx, id); err != nil {
		s.mu.Lock()
		s.tasks = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// TotalCount returns the number of tasks in the collection.
func (s *Synchronizer) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// CompletedCount returns the number of completed tasks.
func (s *Synchronizer) CompletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if t.Done {
			n++
		}
	}
	return n
}

// CompletionPercentage returns 100*completed/total, or 0 for an empty
// collection.
func (s *Synchronizer) CompletionPercentage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range s.tasks {
		if t.Done {
			done++
		}
	}
	return float64(done) / float64(len(s.tasks)) * 100
}
