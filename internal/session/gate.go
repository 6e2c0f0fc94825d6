// Package session owns the authentication state machine. It decides
// whether the application shows the credential form or the task view.
package session

import (
	"context"
	"sync"

	"taskpad/internal/service"
)

// State is the gate's authentication state.
type State int

const (
	// StateLoading means the initial session has not settled yet.
	StateLoading State = iota

	// StateUnauthenticated means no valid session exists.
	StateUnauthenticated

	// StateAuthenticated means a valid session exists.
	StateAuthenticated
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Mode selects between signing in and signing up.
type Mode int

const (
	// SignIn authenticates an existing account.
	SignIn Mode = iota

	// SignUp registers a new account; success means verification pending.
	SignUp
)

// Gate resolves and tracks the authentication state. State transitions
// after the initial resolution are driven exclusively by backend
// auth-change notifications, never by the return value of
// SubmitCredentials.
type Gate struct {
	svc service.Service

	mu          sync.Mutex
	state       State
	identity    service.Identity
	subscribers map[int]func(service.Identity, bool)
	nextID      int
	release     func() // backend listener registration
	closed      bool
}

// Subscription is a listener registration against the gate.
// Unsubscribe releases it; calling Unsubscribe more than once is safe.
type Subscription struct {
	once    sync.Once
	release func()
}

// Unsubscribe releases the registration exactly once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.release)
}

// NewGate creates a gate over the backend and registers its auth-change
// listener. Close must be called on teardown to release the registration.
func NewGate(svc service.Service) *Gate {
	g := &Gate{
		svc:         svc,
		state:       StateLoading,
		subscribers: make(map[int]func(service.Identity, bool)),
	}
	g.release = svc.OnAuthStateChange(g.onAuthChange)
	return g
}

// State returns the current state and, when authenticated, the identity.
func (g *Gate) State() (State, service.Identity) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state, g.identity
}

// ResolveInitial queries the backend once for the current session and
// settles the initial state. The result determines the first render.
func (g *Gate) ResolveInitial(ctx context.Context) (service.Identity, bool, error) {
	id, ok, err := g.svc.CurrentSession(ctx)
	if err != nil {
		g.setState(StateUnauthenticated, service.Identity{})
		return service.Identity{}, false, err
	}
	if ok {
		g.setState(StateAuthenticated, id)
	} else {
		g.setState(StateUnauthenticated, service.Identity{})
	}
	return id, ok, nil
}

// Subscribe registers a callback invoked on every auth transition the
// gate observes. The callback receives the new identity, or ok=false
// when the session ended.
func (g *Gate) Subscribe(fn func(id service.Identity, ok bool)) *Subscription {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.subscribers[id] = fn
	g.mu.Unlock()

	return &Subscription{release: func() {
		g.mu.Lock()
		delete(g.subscribers, id)
		g.mu.Unlock()
	}}
}

// SubmitCredentials submits email and password in the given mode.
// A nil return does not mean authenticated: sign-in lands through the
// auth-change listener, and sign-up success only means verification is
// pending. Failures carry an AuthError.
func (g *Gate) SubmitCredentials(ctx context.Context, email, password string, mode Mode) error {
	switch mode {
	case SignUp:
		return g.svc.SignUp(ctx, email, password)
	default:
		return g.svc.SignIn(ctx, email, password)
	}
}

// SignOut requests session invalidation. The resulting state change is
// observed through the auth-change listener rather than assumed here.
func (g *Gate) SignOut(ctx context.Context) error {
	return g.svc.SignOut(ctx)
}

// Close releases the backend listener registration. The gate stops
// observing transitions afterwards; Close is idempotent.
func (g *Gate) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	release := g.release
	g.mu.Unlock()
	if release != nil {
		release()
	}
}

// onAuthChange is the single registration held against the backend.
// It updates the state machine and fans out to subscribers.
func (g *Gate) onAuthChange(id service.Identity, ok bool) {
	if ok {
		g.setState(StateAuthenticated, id)
	} else {
		g.setState(StateUnauthenticated, service.Identity{})
	}

	g.mu.Lock()
	fns := make([]func(service.Identity, bool), 0, len(g.subscribers))
	for _, fn := range g.subscribers {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(id, ok)
	}
}

func (g *Gate) setState(s State, id service.Identity) {
	g.mu.Lock()
	g.state = s
	g.identity = id
	g.mu.Unlock()
}
