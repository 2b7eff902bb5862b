// Package executil provides shell execution utilities.
package executil

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Executor runs external commands.
type Executor interface {
	// Run executes a command and returns its combined output.
	Run(ctx context.Context, cmd string, args ...string) ([]byte, error)
	// RunStream executes a command and streams stdout/stderr to the provided writers.
	RunStream(ctx context.Context, stdout, stderr io.Writer, cmd string, args ...string) error
}

// Shell runs script with "sh -c".
func Shell(ctx context.Context, e Executor, script string) ([]byte, error) {
	return e.Run(ctx, "sh", "-c", script)
}

// ShellStream runs script with "sh -c", streaming its output.
func ShellStream(ctx context.Context, e Executor, stdout, stderr io.Writer, script string) error {
	return e.RunStream(ctx, stdout, stderr, "sh", "-c", script)
}

// RealExecutor calls actual commands.
type RealExecutor struct{}

// Run executes a command and returns its combined output.
func (e *RealExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, cmd, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("exec %s: %w", cmd, err)
	}
	return out, nil
}

// RunStream executes a command and streams stdout/stderr to the provided writers.
func (e *RealExecutor) RunStream(ctx context.Context, stdout, stderr io.Writer, cmd string, args ...string) error {
	c := exec.CommandContext(ctx, cmd, args...)
	c.Stdout = stdout
	c.Stderr = stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("exec %s: %w", cmd, err)
	}
	return nil
}
