package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"
)

// ToolNotFoundError is returned when the command's executable is not
// on PATH, so the caller can suggest installing the media tool instead
// of surfacing a raw OS error.
type ToolNotFoundError struct {
	Tool string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("%q not found on PATH: is it installed?", e.Tool)
}

// ExecutionError is returned when the child process exits non-zero.
type ExecutionError struct {
	ExitCode int
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.ExitCode)
}

// Execute runs a confirmed command and streams its output
func Execute(ctx context.Context, command string) error {
	return ExecuteWithDebug(ctx, command, false)
}

// ExecuteWithDebug runs a confirmed command with optional debug logging.
// The command is tokenized and executed directly (no shell), inheriting
// the working directory and terminal. ffmpeg writes its progress to
// stderr, so both streams pass through unbuffered.
func ExecuteWithDebug(ctx context.Context, command string, debug bool) error {
	args, err := shellquote.Split(command)
	if err != nil {
		return fmt.Errorf("failed to parse command: %w", err)
	}
	if len(args) == 0 {
		return fmt.Errorf("empty command")
	}

	path, err := exec.LookPath(args[0])
	if err != nil {
		if debug {
			fmt.Fprintf(os.Stderr, "[DEBUG] Executor: lookup failed for %q: %v\n", args[0], err)
		}
		return &ToolNotFoundError{Tool: args[0]}
	}

	if debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] Executor: executing %s with args %q\n", path, args[1:])
	}

	cmd := exec.CommandContext(ctx, path, args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			if debug {
				fmt.Fprintf(os.Stderr, "[DEBUG] Executor: command failed with exit code %d\n", exitError.ExitCode())
			}
			return &ExecutionError{ExitCode: exitError.ExitCode()}
		}
		return fmt.Errorf("command failed: %w", err)
	}

	if debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] Executor: command completed successfully\n")
	}

	return nil
}
