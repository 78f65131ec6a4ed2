package tools

import (
	"strings"

	"github.com/grailbio/clinseq/job"
)

// compressAndIndex returns the stages that bgzip a VCF stream into output
// and tabix-index it.
func compressAndIndex(output string) (*job.Cmd, *job.Cmd) {
	return job.Command("bgzip", "-c").Stdout(output),
		job.Command("tabix", "-p", "vcf").Required("", output)
}

// Freebayes calls germline variants over a set of target regions.
type Freebayes struct {
	job.Base
	InputBams []string
	Reference string
	TargetBed string
	Output    string
}

// Inputs implements job.Job.
func (j *Freebayes) Inputs() []string {
	return nonEmpty(append(append([]string{}, j.InputBams...), j.Reference, j.TargetBed)...)
}

// Outputs implements job.Job.
func (j *Freebayes) Outputs() []string { return nonEmpty(j.Output, suffixed(j.Output, ".tbi")) }

// Command implements job.Job.
func (j *Freebayes) Command() (string, error) {
	compress, index := compressAndIndex(j.Output)
	s := new(job.Script).
		Then(
			job.Command("freebayes").
				Required("-f", j.Reference).
				Required("-t", j.TargetBed).
				Repeat("", j.InputBams),
			compress).
		Then(index)
	return s.Render(j.JobName)
}

// VEP annotates a VCF with the Ensembl variant effect predictor, using an
// offline cache.
type VEP struct {
	job.Base
	InputVCF  string
	Reference string
	CacheDir  string
	// AdditionalOptions is passed to vep verbatim, split on white space.
	AdditionalOptions string
	Output            string
}

// Inputs implements job.Job.
func (j *VEP) Inputs() []string { return nonEmpty(j.InputVCF, j.Reference) }

// Outputs implements job.Job.
func (j *VEP) Outputs() []string { return nonEmpty(j.Output, suffixed(j.Output, ".tbi")) }

// Command implements job.Job.
func (j *VEP) Command() (string, error) {
	compress, index := compressAndIndex(j.Output)
	s := new(job.Script).
		Then(
			job.Command("vep", "--vcf", "--offline", "--cache", "--force_overwrite").
				Required("--dir_cache", j.CacheDir).
				Required("--fasta", j.Reference).
				OptionalInt("--fork", j.NumThreads).
				Required("-i", j.InputVCF).
				Arg("--output_file", "STDOUT").
				Arg(strings.Fields(j.AdditionalOptions)...),
			compress).
		Then(index)
	return s.Render(j.JobName)
}

// VarDict calls somatic variants of a tumor sample against its matched
// normal.
type VarDict struct {
	job.Base
	InputTumor  string
	InputNormal string
	TumorName   string
	NormalName  string
	Reference   string
	TargetBed   string
	MinAltFrac  float64
	MinNumReads int
	Output      string
}

// Inputs implements job.Job.
func (j *VarDict) Inputs() []string {
	return nonEmpty(j.InputTumor, j.InputNormal, j.Reference, j.TargetBed)
}

// Outputs implements job.Job.
func (j *VarDict) Outputs() []string { return nonEmpty(j.Output, suffixed(j.Output, ".tbi")) }

// pair joins a and b with '|' as vardict expects, or returns "" if either
// is unset.
func pair(a, b string) string {
	if a == "" || b == "" {
		return ""
	}
	return a + "|" + b
}

// Command implements job.Job.
func (j *VarDict) Command() (string, error) {
	compress, index := compressAndIndex(j.Output)
	s := new(job.Script).
		Then(
			job.Command("vardict-java").
				Required("-G", j.Reference).
				OptionalFloat("-f", j.MinAltFrac).
				OptionalInt("-r", j.MinNumReads).
				OptionalInt("-th", j.NumThreads).
				Required("-N", j.TumorName).
				RequiredQuoted("-b", pair(j.InputTumor, j.InputNormal)).
				Arg("-c", "1", "-S", "2", "-E", "3", "-g", "4").
				Required("", j.TargetBed),
			job.Command("testsomatic.R"),
			job.Command("var2vcf_paired.pl").
				RequiredQuoted("-N", pair(j.TumorName, j.NormalName)).
				OptionalFloat("-f", j.MinAltFrac),
			compress).
		Then(index)
	return s.Render(j.JobName)
}
