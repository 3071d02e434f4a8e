// Package testutil provides helpers for end-to-end tests that drive the
// podboard binary.
package testutil

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// Result holds the output of a podboard command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// podboardBinary returns the path to the podboard binary built in the
// project root, or "" when there is none on disk or in PATH.
func podboardBinary() string {
	_, filename, _, ok := runtime.Caller(0)
	if ok {
		// Navigate from tests/testutil to project root
		projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
		binary := filepath.Join(projectRoot, "podboard")
		if _, err := os.Stat(binary); err == nil {
			return binary
		}
	}
	if path, err := exec.LookPath("podboard"); err == nil {
		return path
	}
	return ""
}

// RequireBinary skips the test when no podboard binary has been built.
func RequireBinary(t *testing.T) {
	t.Helper()
	if podboardBinary() == "" {
		t.Skip("podboard binary not found; run 'go build ./cmd/podboard' in the project root")
	}
}

// RunInDir executes podboard in dir with an isolated environment.
func RunInDir(t *testing.T, dir string, args ...string) Result {
	t.Helper()
	return RunWithInput(t, dir, "", args...)
}

// RunWithInput executes podboard in dir, feeding input on stdin.
func RunWithInput(t *testing.T, dir, input string, args ...string) Result {
	t.Helper()
	RequireBinary(t)

	cmd := exec.Command(podboardBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(cleanEnv(), "PODBOARD_ACTOR=integration")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = strings.NewReader(input)

	// Run command and capture exit code
	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("failed to run podboard: %v", err)
		}
	}

	return Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// cleanEnv drops PODBOARD_* variables so the host cannot leak a backend or
// default collection into a test.
func cleanEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "PODBOARD_") {
			env = append(env, kv)
		}
	}
	return env
}

// MustSucceedInDir calls RunInDir and fails if exit code != 0.
func MustSucceedInDir(t *testing.T, dir string, args ...string) Result {
	t.Helper()

	result := RunInDir(t, dir, args...)
	if result.ExitCode != 0 {
		t.Fatalf("expected podboard %s to succeed, but got exit code %d\nstdout: %s\nstderr: %s",
			strings.Join(args, " "), result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// MustFailInDir calls RunInDir and fails if exit code == 0.
func MustFailInDir(t *testing.T, dir string, args ...string) Result {
	t.Helper()

	result := RunInDir(t, dir, args...)
	if result.ExitCode == 0 {
		t.Fatalf("expected podboard %s to fail, but it succeeded\nstdout: %s\nstderr: %s",
			strings.Join(args, " "), result.Stdout, result.Stderr)
	}
	return result
}
