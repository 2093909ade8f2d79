package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"
)

// MockProcessRunner is a mock implementation of ProcessRunner for testing.
type MockProcessRunner struct {
	// RunFunc allows tests to provide custom behavior.
	RunFunc func(ctx context.Context, path string, args []string, stdin io.Reader, stdout, stderr io.Writer) error

	// Delay simulates slow process execution.
	Delay time.Duration

	// ShouldTimeout if true, will block until context is cancelled.
	ShouldTimeout bool

	CallCount int
	LastPath  string
	LastArgs  []string
	LastStdin []byte
}

// Run executes the mock behavior.
func (m *MockProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	m.CallCount++
	m.LastPath = path
	m.LastArgs = args
	if stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return err
		}
		m.LastStdin = data
	}

	if m.ShouldTimeout {
		<-ctx.Done()
		return ctx.Err()
	}

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if m.RunFunc != nil {
		return m.RunFunc(ctx, path, args, bytes.NewReader(m.LastStdin), stdout, stderr)
	}
	return nil
}

// NewMockProcessRunner creates a new mock process runner.
func NewMockProcessRunner() *MockProcessRunner {
	return &MockProcessRunner{}
}

// NewTimeoutMockProcessRunner creates a mock that simulates a process that never exits.
func NewTimeoutMockProcessRunner() *MockProcessRunner {
	return &MockProcessRunner{ShouldTimeout: true}
}

// NewErrorMockProcessRunner creates a mock that writes errMsg to stderr and fails.
func NewErrorMockProcessRunner(errMsg string) *MockProcessRunner {
	return &MockProcessRunner{
		RunFunc: func(_ context.Context, _ string, _ []string, _ io.Reader, _, stderr io.Writer) error {
			_, _ = io.WriteString(stderr, errMsg)
			return errors.New("exit status 1")
		},
	}
}
