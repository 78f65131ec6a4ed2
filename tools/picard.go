package tools

import "github.com/grailbio/clinseq/job"

// MergeAndMarkDuplicates merges the per-library BAMs of one capture and
// marks duplicates across them. A single input still goes through the
// merge step.
type MergeAndMarkDuplicates struct {
	job.Base
	Input   []string
	Output  string
	Metrics string
}

// Inputs implements job.Job.
func (j *MergeAndMarkDuplicates) Inputs() []string { return nonEmpty(j.Input...) }

// Outputs implements job.Job.
func (j *MergeAndMarkDuplicates) Outputs() []string { return nonEmpty(j.Output, j.Metrics) }

// Command implements job.Job.
func (j *MergeAndMarkDuplicates) Command() (string, error) {
	tmpDir := job.TempPath(j.ScratchDir, "markdup")
	merged := within(tmpDir, "merged.bam")
	s := new(job.Script).
		Then(job.Command("mkdir", "-p").Required("", tmpDir)).
		Then(job.Command("picard", "MergeSamFiles", "VALIDATION_STRINGENCY=LENIENT", "ASSUME_SORTED=true").
			Required("TMP_DIR=", tmpDir).
			Repeat("INPUT=", j.Input).
			Required("OUTPUT=", merged)).
		Then(job.Command("picard", "MarkDuplicates", "VALIDATION_STRINGENCY=LENIENT", "CREATE_INDEX=true").
			Required("TMP_DIR=", tmpDir).
			Required("INPUT=", merged).
			Required("OUTPUT=", j.Output).
			Required("METRICS_FILE=", j.Metrics)).
		Then(job.Command("rm", "-r").Required("", tmpDir))
	return s.Render(j.JobName)
}
