package census

import (
	"context"
	"errors"
	"os/exec"
)

// ErrEnumerationUnavailable marks an enumeration source that could not run
// or produced no output.
var ErrEnumerationUnavailable = errors.New("process enumeration unavailable")

// Enumerator returns the raw process table: a header line followed by
// "pid cpu mem name" rows.
type Enumerator interface {
	Enumerate(ctx context.Context) ([]byte, error)
}

// EnumeratorFunc adapts a function to Enumerator.
type EnumeratorFunc func(ctx context.Context) ([]byte, error)

func (f EnumeratorFunc) Enumerate(ctx context.Context) ([]byte, error) { return f(ctx) }

// Executor runs an external command and returns its stdout.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type RealExecutor struct{}

func (RealExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PsEnumerator shells out to ps.
type PsEnumerator struct {
	exec Executor
}

var psArgs = []string{"-eo", "pid,pcpu,pmem,comm"}

// NewPsEnumerator returns an enumerator using exec, or the real ps when nil.
func NewPsEnumerator(e Executor) *PsEnumerator {
	if e == nil {
		e = RealExecutor{}
	}
	return &PsEnumerator{exec: e}
}

func (p *PsEnumerator) Enumerate(ctx context.Context) ([]byte, error) {
	return p.exec.Run(ctx, "ps", psArgs...)
}
