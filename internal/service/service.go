// Package service defines the backend-agnostic interface for auth and task operations.
package service

import "context"

// Service defines the interface for the hosted backend.
// All auth and row operations go through this interface.
// The gate, synchronizer and UI never import the backend client directly.
type Service interface {
	// CurrentSession returns the active session, if any.
	// ok is false when no session exists; err is reserved for transport failures.
	CurrentSession(ctx context.Context) (id Identity, ok bool, err error)

	// OnAuthStateChange registers a callback invoked on every auth transition
	// (sign-in, sign-out, token refresh). ok is false when the session ended.
	// The returned func releases the registration; calling it twice is safe.
	OnAuthStateChange(fn func(id Identity, ok bool)) (unsubscribe func())

	// SignUp registers a new account. Success means verification is pending,
	// not that a session exists.
	SignUp(ctx context.Context, email, password string) error

	// SignIn exchanges credentials for a session. The resulting session is
	// delivered through OnAuthStateChange, never assumed from the return.
	SignIn(ctx context.Context, email, password string) error

	// SignOut invalidates the current session. The transition is delivered
	// through OnAuthStateChange.
	SignOut(ctx context.Context) error

	// ListTasks returns all tasks owned by userID, newest first.
	ListTasks(ctx context.Context, userID string) ([]Task, error)

	// CreateTask inserts a task and returns the stored row.
	// The returned Task carries the store-assigned ID and timestamp.
	CreateTask(ctx context.Context, userID, text string) (Task, error)

	// SetTaskDone updates the done flag of the task identified by id.
	SetTaskDone(ctx context.Context, id int64, done bool) error

	// DeleteTask removes the task identified by id.
	DeleteTask(ctx context.Context, id int64) error
}
