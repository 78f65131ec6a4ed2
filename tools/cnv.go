package tools

import (
	"path/filepath"
	"strings"

	"github.com/grailbio/clinseq/job"
)

// CNVkit estimates copy number from a targeted BAM. When Reference (a
// pooled .cnn reference) is unset, a flat reference is built from
// TargetBed and Fasta.
type CNVkit struct {
	job.Base
	InputBam  string
	Reference string
	TargetBed string
	Fasta     string
	OutputCNR string
	OutputCNS string
}

// Inputs implements job.Job.
func (j *CNVkit) Inputs() []string {
	if j.Reference != "" {
		return nonEmpty(j.InputBam, j.Reference)
	}
	return nonEmpty(j.InputBam, j.TargetBed, j.Fasta)
}

// Outputs implements job.Job.
func (j *CNVkit) Outputs() []string { return nonEmpty(j.OutputCNR, j.OutputCNS) }

// Command implements job.Job.
func (j *CNVkit) Command() (string, error) {
	tmpDir := job.TempPath(j.ScratchDir, "cnvkit")
	var sample string
	if j.InputBam != "" {
		sample = strings.TrimSuffix(filepath.Base(j.InputBam), ".bam")
	}
	batch := job.Command("cnvkit.py", "batch").
		Required("", j.InputBam).
		OptionalInt("-p", j.NumThreads)
	if j.Reference != "" {
		batch.Required("--reference", j.Reference)
	} else {
		batch.Arg("--normal").
			Required("--targets", j.TargetBed).
			Required("--fasta", j.Fasta)
	}
	batch.Required("--output-dir", tmpDir)
	s := new(job.Script).
		Then(job.Command("mkdir", "-p").Required("", tmpDir)).
		Then(batch).
		Then(job.Command("cp").Required("", within(tmpDir, suffixed(sample, ".cnr"))).Required("", j.OutputCNR)).
		Then(job.Command("cp").Required("", within(tmpDir, suffixed(sample, ".cns"))).Required("", j.OutputCNS)).
		Then(job.Command("rm", "-r").Required("", tmpDir))
	return s.Render(j.JobName)
}
