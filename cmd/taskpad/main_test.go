package main

import (
	"testing"

	"taskpad/internal/exitcode"
)

func TestRun_Version(t *testing.T) {
	if code := run([]string{"-version"}); code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	if code := run([]string{"-unknown"}); code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
}

func TestRun_MissingBackendSettings(t *testing.T) {
	t.Setenv("TASKPAD_CONFIG_DIR", t.TempDir())
	t.Setenv("TASKPAD_URL", "")
	t.Setenv("TASKPAD_ANON_KEY", "")

	if code := run(nil); code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
}
