// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"
	"time"

	"taskpad/internal/service"
)

// FakeBackend is an in-memory implementation of service.Service for
// testing. Error injection fields make the next matching call fail with
// the given error.
type FakeBackend struct {
	mu        sync.RWMutex
	users     map[string]string // email -> password
	session   service.Identity
	signedIn  bool
	tasks     []service.Task // insertion order; ListTasks reverses
	nextID    int64
	listeners map[int]func(service.Identity, bool)
	nextSub   int
	calls     []string

	// Error injection for testing
	CurrentSessionErr error
	SignUpErr         error
	SignInErr         error
	SignOutErr        error
	ListTasksErr      error
	CreateTaskErr     error
	SetTaskDoneErr    error
	DeleteTaskErr     error
}

// NewFakeBackend creates an empty fake backend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		users:     make(map[string]string),
		nextID:    1,
		listeners: make(map[int]func(service.Identity, bool)),
	}
}

// AddUser registers an account without going through SignUp.
func (f *FakeBackend) AddUser(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = password
}

// SeedSession installs an active session so CurrentSession resolves to it.
func (f *FakeBackend) SeedSession(id service.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = id
	f.signedIn = true
}

// SeedTask appends a task row directly to the store.
func (f *FakeBackend) SeedTask(userID, text string, done bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{
		ID:        f.nextID,
		UserID:    userID,
		Text:      text,
		Done:      done,
		CreatedAt: time.Now(),
	}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t
}

// Calls returns the names of the backend calls issued so far.
func (f *FakeBackend) Calls() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// FireAuthChange simulates an externally driven auth transition, such as
// session expiry on the server.
func (f *FakeBackend) FireAuthChange(id service.Identity, ok bool) {
	f.mu.Lock()
	f.session = id
	f.signedIn = ok
	f.mu.Unlock()
	f.notify(id, ok)
}

func (f *FakeBackend) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *FakeBackend) notify(id service.Identity, ok bool) {
	f.mu.RLock()
	fns := make([]func(service.Identity, bool), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.RUnlock()
	for _, fn := range fns {
		fn(id, ok)
	}
}

// CurrentSession implements service.Service.
func (f *FakeBackend) CurrentSession(ctx context.Context) (service.Identity, bool, error) {
	f.record("CurrentSession")
	if f.CurrentSessionErr != nil {
		return service.Identity{}, false, f.CurrentSessionErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.session, f.signedIn, nil
}

// OnAuthStateChange implements service.Service.
func (f *FakeBackend) OnAuthStateChange(fn func(service.Identity, bool)) func() {
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.listeners[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.listeners, id)
			f.mu.Unlock()
		})
	}
}

// SignUp implements service.Service. Success registers the account but
// establishes no session (verification pending).
func (f *FakeBackend) SignUp(ctx context.Context, email, password string) error {
	f.record("SignUp")
	if f.SignUpErr != nil {
		return f.SignUpErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[email]; exists {
		return service.NewAuthError("user already registered")
	}
	f.users[email] = password
	return nil
}

// SignIn implements service.Service.
func (f *FakeBackend) SignIn(ctx context.Context, email, password string) error {
	f.record("SignIn")
	if f.SignInErr != nil {
		return f.SignInErr
	}
	f.mu.Lock()
	stored, exists := f.users[email]
	if !exists || stored != password {
		f.mu.Unlock()
		return service.NewAuthError("invalid login credentials")
	}
	id := service.Identity{
		UserID:      "user-" + email,
		Email:       email,
		AccessToken: "fake-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	f.session = id
	f.signedIn = true
	f.mu.Unlock()

	f.notify(id, true)
	return nil
}

// SignOut implements service.Service.
func (f *FakeBackend) SignOut(ctx context.Context) error {
	f.record("SignOut")
	if f.SignOutErr != nil {
		return f.SignOutErr
	}
	f.mu.Lock()
	f.session = service.Identity{}
	f.signedIn = false
	f.mu.Unlock()

	f.notify(service.Identity{}, false)
	return nil
}

// ListTasks implements service.Service. Rows come back newest first,
// matching the created_at descending order of the real store.
func (f *FakeBackend) ListTasks(ctx context.Context, userID string) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []service.Task
	for i := len(f.tasks) - 1; i >= 0; i-- {
		if f.tasks[i].UserID == userID {
			out = append(out, f.tasks[i])
		}
	}
	return out, nil
}

// CreateTask implements service.Service.
func (f *FakeBackend) CreateTask(ctx context.Context, userID, text string) (service.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{
		ID:        f.nextID,
		UserID:    userID,
		Text:      text,
		Done:      false,
		CreatedAt: time.Now(),
	}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t, nil
}

// SetTaskDone implements service.Service.
func (f *FakeBackend) SetTaskDone(ctx context.Context, id int64, done bool) error {
	f.record("SetTaskDone")
	if f.SetTaskDoneErr != nil {
		return f.SetTaskDoneErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Done = done
			return nil
		}
	}
	return service.NewOperationError("toggle", "no such task")
}

// DeleteTask implements service.Service.
func (f *FakeBackend) DeleteTask(ctx context.Context, id int64) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.NewOperationError("delete", "no such task")
}
