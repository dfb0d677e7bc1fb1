// Package engine bridges to the out-of-process answer generator.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"time"
)

var ErrOutputTooLarge = errors.New("answer engine output exceeds configured limit")

// Engine produces a free-text answer for a question on behalf of a user.
type Engine interface {
	Run(ctx context.Context, question, userID string) (string, error)
}

// ExecEngine invokes an external command, appending the question and the
// user id as two positional arguments. The command's stdout is the whole
// answer; stderr and non-zero exits are failures.
type ExecEngine struct {
	name      string
	args      []string
	maxOutput int64
	timeout   time.Duration
}

// NewExecEngine builds an engine from the command line in cfg order:
// program first, fixed arguments after. maxOutput caps stdout in bytes;
// timeout of 0 leaves the call without a deadline.
func NewExecEngine(command []string, maxOutput int64, timeout time.Duration) (*ExecEngine, error) {
	if len(command) == 0 {
		return nil, errors.New("engine command must not be empty")
	}
	if maxOutput <= 0 {
		return nil, errors.New("engine output limit must be positive")
	}
	return &ExecEngine{
		name:      command[0],
		args:      command[1:],
		maxOutput: maxOutput,
		timeout:   timeout,
	}, nil
}

func (e *ExecEngine) Run(ctx context.Context, question, userID string) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := make([]string, 0, len(e.args)+2)
	args = append(args, e.args...)
	args = append(args, question, userID)

	cmd := exec.CommandContext(ctx, e.name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("attach engine stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start answer engine: %w", err)
	}

	// Read one byte past the cap so an overrun is detectable rather than
	// silently truncated.
	output, readErr := io.ReadAll(io.LimitReader(stdout, e.maxOutput+1))

	if int64(len(output)) > e.maxOutput {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return "", ErrOutputTooLarge
	}

	waitErr := cmd.Wait()

	if readErr != nil {
		return "", fmt.Errorf("read engine output: %w", readErr)
	}

	if waitErr != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("answer engine timed out: %w", ctx.Err())
		}
		// stderr stays in the server log; it must never reach a client.
		if stderr.Len() > 0 {
			log.Printf("[engine] stderr: %s", truncateForLog(stderr.String()))
		}
		return "", fmt.Errorf("answer engine failed: %w", waitErr)
	}

	return string(output), nil
}

func truncateForLog(s string) string {
	const limit = 512
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
