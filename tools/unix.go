package tools

import "github.com/grailbio/clinseq/job"

// Cat concatenates files. Gzipped FASTQs can be concatenated as-is.
type Cat struct {
	job.Base
	Input  []string
	Output string
}

// Inputs implements job.Job.
func (j *Cat) Inputs() []string { return nonEmpty(j.Input...) }

// Outputs implements job.Job.
func (j *Cat) Outputs() []string { return nonEmpty(j.Output) }

// Command implements job.Job.
func (j *Cat) Command() (string, error) {
	return new(job.Script).Then(concatenate(j.Input, j.Output, 0)...).Render(j.JobName)
}
