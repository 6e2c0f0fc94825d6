// Package exitcode defines process exit codes.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad flags, missing config).
	UserError = 1

	// AuthError indicates an auth/session setup error.
	AuthError = 2

	// BackendError indicates a backend/UI runtime failure.
	BackendError = 3
)
