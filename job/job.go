// Package job defines the descriptor the execution engine consumes for
// every node of a pipeline graph, and a small builder for the shell
// commands the descriptors render.
package job

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// Job is one node of a pipeline graph. Implementations declare their
// input and output ports and render a single shell command.
type Job interface {
	// Name is the job name shown by the execution engine. It need not be
	// unique, but usually is.
	Name() string
	// Command renders the shell command. It fails only when a required
	// input is unset, with a *MissingInputError.
	Command() (string, error)
	// Inputs lists the files the command reads.
	Inputs() []string
	// Outputs lists the files the command creates.
	Outputs() []string
	// Intermediate reports whether the outputs may be removed once every
	// consumer has finished.
	Intermediate() bool
	// Scratch is the directory the command may use for temporary files.
	Scratch() string
	// Threads is the number of threads the command uses. Zero means unset.
	Threads() int
}

// Base holds the attributes common to all jobs. Job templates embed it.
type Base struct {
	JobName        string
	ScratchDir     string
	NumThreads     int
	IsIntermediate bool
}

// Name implements Job.
func (b *Base) Name() string { return b.JobName }

// Scratch implements Job.
func (b *Base) Scratch() string { return b.ScratchDir }

// Threads implements Job.
func (b *Base) Threads() int { return b.NumThreads }

// Intermediate implements Job.
func (b *Base) Intermediate() bool { return b.IsIntermediate }

// TempPath returns a fresh path under scratch of the form
// <scratch>/<tag>-<uuid>. Concurrently running jobs that share a scratch
// root therefore never collide. A new token is drawn on every call. If
// scratch is unset, TempPath returns "" so that rendering reports it as a
// missing input.
func TempPath(scratch, tag string) string {
	if scratch == "" {
		return ""
	}
	return filepath.Join(scratch, fmt.Sprintf("%s-%s", tag, uuid.New().String()))
}

// MissingInputError reports that a job was rendered with a required
// argument unset. It indicates a bug in graph construction, not a runtime
// failure of the wrapped tool.
type MissingInputError struct {
	// Job is the name of the job being rendered.
	Job string
	// Flag is the flag (or redirect) whose value was missing. It is empty
	// for positional arguments.
	Flag string
	// Program is the command the argument belongs to.
	Program string
}

func (e *MissingInputError) Error() string {
	if e.Flag == "" {
		return fmt.Sprintf("job %q: %s: missing required positional input", e.Job, e.Program)
	}
	return fmt.Sprintf("job %q: %s: missing required input for %q", e.Job, e.Program, e.Flag)
}
