package job

import (
	"strconv"
	"strings"

	"github.com/alessio/shellescape"
)

// Cmd accumulates the argument list of one shell command. Arguments are
// appended in call order. The first missing required argument is recorded
// and reported when the enclosing Script is rendered.
type Cmd struct {
	program string
	args    []string
	err     *MissingInputError
}

// Command starts a command line with the given program and literal
// arguments.
func Command(program string, args ...string) *Cmd {
	return &Cmd{program: program, args: append([]string{program}, args...)}
}

// Arg appends literal arguments.
func (c *Cmd) Arg(args ...string) *Cmd {
	c.args = append(c.args, args...)
	return c
}

// Required appends flag and value. An empty value records a missing input.
// An empty flag appends value as a positional argument.
func (c *Cmd) Required(flag, value string) *Cmd {
	if value == "" {
		c.missing(flag)
		return c
	}
	c.args = append(c.args, flagged(flag, value)...)
	return c
}

// RequiredQuoted is like Required, but shell-quotes value so that it is
// passed as a single token.
func (c *Cmd) RequiredQuoted(flag, value string) *Cmd {
	if value == "" {
		c.missing(flag)
		return c
	}
	c.args = append(c.args, flagged(flag, shellescape.Quote(value))...)
	return c
}

// Optional appends flag and value if value is set. Nothing is emitted
// otherwise; the tool's own default applies.
func (c *Cmd) Optional(flag, value string) *Cmd {
	if value != "" {
		c.args = append(c.args, flagged(flag, value)...)
	}
	return c
}

// OptionalInt appends flag and value if value is positive.
func (c *Cmd) OptionalInt(flag string, value int) *Cmd {
	if value > 0 {
		c.args = append(c.args, flagged(flag, strconv.Itoa(value))...)
	}
	return c
}

// OptionalFloat appends flag and value if value is positive.
func (c *Cmd) OptionalFloat(flag string, value float64) *Cmd {
	if value > 0 {
		c.args = append(c.args, flagged(flag, strconv.FormatFloat(value, 'g', -1, 64))...)
	}
	return c
}

// Conditional appends flag if cond holds.
func (c *Cmd) Conditional(cond bool, flag string) *Cmd {
	if cond {
		c.args = append(c.args, flag)
	}
	return c
}

// Repeat appends flag and value once per value. At least one value is
// required, and none may be empty.
func (c *Cmd) Repeat(flag string, values []string) *Cmd {
	if len(values) == 0 {
		c.missing(flag)
		return c
	}
	for _, v := range values {
		c.Required(flag, v)
	}
	return c
}

// Stdout redirects standard output to path.
func (c *Cmd) Stdout(path string) *Cmd { return c.Required(">", path) }

// Stderr redirects the diagnostic stream to path.
func (c *Cmd) Stderr(path string) *Cmd { return c.Required("2>", path) }

// String renders the command line, ignoring missing inputs.
func (c *Cmd) String() string { return strings.Join(c.args, " ") }

func (c *Cmd) missing(flag string) {
	if c.err == nil {
		c.err = &MissingInputError{Flag: flag, Program: c.program}
	}
}

// flagged renders a flag/value pair. Flags ending in '=' (picard style)
// are glued to their value.
func flagged(flag, value string) []string {
	switch {
	case flag == "":
		return []string{value}
	case strings.HasSuffix(flag, "="):
		return []string{flag + value}
	default:
		return []string{flag, value}
	}
}

// Script is an ordered list of stages. Stages run one after another,
// joined by "&&"; the commands inside a stage are joined by pipes.
type Script struct {
	stages [][]*Cmd
}

// Then appends a stage made of the given commands, piped into each other.
func (s *Script) Then(cmds ...*Cmd) *Script {
	if len(cmds) > 0 {
		s.stages = append(s.stages, cmds)
	}
	return s
}

// Pipe appends cmd to the last stage.
func (s *Script) Pipe(cmd *Cmd) *Script {
	if len(s.stages) == 0 {
		return s.Then(cmd)
	}
	last := len(s.stages) - 1
	s.stages[last] = append(s.stages[last], cmd)
	return s
}

// Render renders the script for the named job. It returns a
// *MissingInputError for the first command with a missing required input.
// Scripts that contain a pipe run with pipefail, so that the failure of
// any pipe stage fails the job.
func (s *Script) Render(jobName string) (string, error) {
	var (
		stages = make([]string, 0, len(s.stages)+1)
		piped  bool
	)
	for _, stage := range s.stages {
		cmds := make([]string, len(stage))
		for i, c := range stage {
			if c.err != nil {
				err := *c.err
				err.Job = jobName
				return "", &err
			}
			cmds[i] = c.String()
		}
		piped = piped || len(stage) > 1
		stages = append(stages, strings.Join(cmds, " | "))
	}
	if piped {
		stages = append([]string{"set -o pipefail"}, stages...)
	}
	return strings.Join(stages, " && "), nil
}
