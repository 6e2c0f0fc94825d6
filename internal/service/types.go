// Package service defines the backend-agnostic interface for auth and task operations.
package service

import "time"

// Identity is an authenticated session handle.
type Identity struct {
	// UserID is the backend-assigned unique user identifier.
	UserID string

	// Email is the address the session was established for.
	Email string

	// AccessToken is the bearer token for data calls.
	AccessToken string

	// ExpiresAt is when the access token stops being valid.
	ExpiresAt time.Time
}

// Task represents a single to-do item owned by an Identity.
type Task struct {
	ID        int64
	UserID    string
	Text      string
	Done      bool
	CreatedAt time.Time
}
