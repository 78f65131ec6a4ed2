package tools

import (
	"path/filepath"
	"strings"

	"github.com/grailbio/clinseq/job"
)

// FastQC runs fastqc over the FASTQ files of one library.
type FastQC struct {
	job.Base
	Input     []string
	OutputDir string
}

var fastqSuffixes = []string{".fastq.gz", ".fq.gz", ".fastq", ".fq"}

// Inputs implements job.Job.
func (j *FastQC) Inputs() []string { return nonEmpty(j.Input...) }

// Outputs implements job.Job. fastqc writes one zip archive per input,
// named after the input with its FASTQ suffix removed.
func (j *FastQC) Outputs() []string {
	if j.OutputDir == "" {
		return nil
	}
	var out []string
	for _, in := range j.Input {
		base := filepath.Base(in)
		for _, suffix := range fastqSuffixes {
			if strings.HasSuffix(base, suffix) {
				base = strings.TrimSuffix(base, suffix)
				break
			}
		}
		out = append(out, filepath.Join(j.OutputDir, base+"_fastqc.zip"))
	}
	return out
}

// Command implements job.Job.
func (j *FastQC) Command() (string, error) {
	tmpDir := job.TempPath(j.ScratchDir, "fastqc")
	s := new(job.Script).
		Then(job.Command("mkdir", "-p").Required("", j.OutputDir).Required("", tmpDir)).
		Then(job.Command("fastqc").
			Required("-o", j.OutputDir).
			Arg("--extract").
			OptionalInt("-t", j.NumThreads).
			Required("-d", tmpDir).
			Repeat("", j.Input)).
		Then(job.Command("rm", "-r").Required("", tmpDir))
	return s.Render(j.JobName)
}

// CoverageHistogram computes the read depth histogram of a BAM over a set
// of target regions, keeping only the genome-wide ("all") rows.
type CoverageHistogram struct {
	job.Base
	InputBam string
	InputBed string
	// MinMapq drops reads below this mapping quality. Zero keeps all reads.
	MinMapq int
	Output  string
}

// Inputs implements job.Job.
func (j *CoverageHistogram) Inputs() []string { return nonEmpty(j.InputBam, j.InputBed) }

// Outputs implements job.Job.
func (j *CoverageHistogram) Outputs() []string { return nonEmpty(j.Output) }

// Command implements job.Job.
func (j *CoverageHistogram) Command() (string, error) {
	s := new(job.Script).Then(
		job.Command("samtools", "view", "-b").
			Required("-L", j.InputBed).
			OptionalInt("-q", j.MinMapq).
			Required("", j.InputBam),
		job.Command("bedtools", "coverage", "-hist").
			Required("-a", j.InputBed).
			Arg("-b", "stdin"),
		job.Command("grep", "^all").Stdout(j.Output))
	return s.Render(j.JobName)
}

// CoverageCaveat classifies a coverage histogram as sufficient or not: at
// least LowThreshFraction of the targets must be covered LowThreshFoldCov
// times, and HighThreshFraction HighThreshFoldCov times.
type CoverageCaveat struct {
	job.Base
	InputHistogram     string
	LowThreshFoldCov   int
	LowThreshFraction  float64
	HighThreshFoldCov  int
	HighThreshFraction float64
	Output             string
}

// Inputs implements job.Job.
func (j *CoverageCaveat) Inputs() []string { return nonEmpty(j.InputHistogram) }

// Outputs implements job.Job.
func (j *CoverageCaveat) Outputs() []string { return nonEmpty(j.Output) }

// Command implements job.Job.
func (j *CoverageCaveat) Command() (string, error) {
	s := new(job.Script).Then(
		job.Command("coverage_caveat.py").
			OptionalInt("--low-thresh-fold-cov", j.LowThreshFoldCov).
			OptionalFloat("--low-thresh-fraction", j.LowThreshFraction).
			OptionalInt("--high-thresh-fold-cov", j.HighThreshFoldCov).
			OptionalFloat("--high-thresh-fraction", j.HighThreshFraction).
			Required("", j.InputHistogram).
			Stdout(j.Output))
	return s.Render(j.JobName)
}
