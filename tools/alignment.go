package tools

import (
	"fmt"

	"github.com/grailbio/clinseq/job"
)

// ReadGroup returns the SAM read group header line for a library. The
// library id serves as read group id, sample and library name. The tab
// separators are left escaped for bwa to expand.
func ReadGroup(lib string) string {
	return fmt.Sprintf(`@RG\tID:%s\tSM:%s\tLB:%s\tPL:ILLUMINA`, lib, lib, lib)
}

// Bwa aligns reads with bwa mem, marks (or removes) duplicates with
// samblaster, and writes a coordinate sorted, indexed BAM.
type Bwa struct {
	job.Base
	InputFastq1        string
	InputFastq2        string
	InputReference     string
	ReadGroup          string
	RemoveDuplicates   bool
	DuplicationMetrics string
	Output             string
}

// NewBwa returns a Bwa job with duplicate removal enabled.
func NewBwa() *Bwa {
	return &Bwa{Base: job.Base{JobName: "bwa"}, RemoveDuplicates: true}
}

// Inputs implements job.Job.
func (j *Bwa) Inputs() []string { return nonEmpty(j.InputFastq1, j.InputFastq2, j.InputReference) }

// Outputs implements job.Job.
func (j *Bwa) Outputs() []string { return nonEmpty(j.Output, j.DuplicationMetrics) }

// Command implements job.Job.
func (j *Bwa) Command() (string, error) {
	bwaLog := suffixed(j.Output, ".bwa.log")
	samblasterLog := suffixed(j.Output, ".samblaster.log")
	s := new(job.Script).
		Then(
			job.Command("bwa", "mem", "-M", "-v", "1").
				RequiredQuoted("-R", j.ReadGroup).
				OptionalInt("-t", j.NumThreads).
				Required("", j.InputReference).
				Required("", j.InputFastq1).
				Optional("", j.InputFastq2).
				Stderr(bwaLog),
			job.Command("samblaster", "-M", "--addMateTags").
				Conditional(j.RemoveDuplicates, "--removeDups").
				Optional("--metricsFile", j.DuplicationMetrics).
				Stderr(samblasterLog),
			job.Command("samtools", "view", "-Sb", "-u", "-"),
			job.Command("samtools", "sort").
				Required("-T", job.TempPath(j.ScratchDir, "bwa")).
				OptionalInt("-@", j.NumThreads).
				Required("-o", j.Output).
				Arg("-")).
		Then(job.Command("samtools", "index").Required("", j.Output)).
		Then(job.Command("cat").Required("", bwaLog).Required("", samblasterLog)).
		Then(job.Command("rm").Required("", bwaLog).Required("", samblasterLog))
	return s.Render(j.JobName)
}

// SkewerSE trims adapters from a single-end FASTQ file.
type SkewerSE struct {
	job.Base
	Input  string
	Output string
	Stats  string
}

// Inputs implements job.Job.
func (j *SkewerSE) Inputs() []string { return nonEmpty(j.Input) }

// Outputs implements job.Job.
func (j *SkewerSE) Outputs() []string { return nonEmpty(j.Output, j.Stats) }

// Command implements job.Job.
func (j *SkewerSE) Command() (string, error) {
	tmpDir := job.TempPath(j.ScratchDir, "skewer")
	prefix := within(tmpDir, "skewer")
	s := new(job.Script).
		Then(job.Command("mkdir", "-p").Required("", tmpDir)).
		Then(job.Command("skewer", "-z").
			OptionalInt("-t", j.NumThreads).
			Arg("--quiet").
			Required("-o", prefix).
			Required("", j.Input)).
		Then(job.Command("cp").Required("", suffixed(prefix, "-trimmed.fastq.gz")).Required("", j.Output)).
		Then(job.Command("cp").Required("", suffixed(prefix, "-trimmed.log")).Required("", j.Stats)).
		Then(job.Command("rm", "-r").Required("", tmpDir))
	return s.Render(j.JobName)
}

// SkewerPE trims adapters from a pair of FASTQ files, keeping mates in
// order.
type SkewerPE struct {
	job.Base
	Input1  string
	Input2  string
	Output1 string
	Output2 string
	Stats   string
}

// Inputs implements job.Job.
func (j *SkewerPE) Inputs() []string { return nonEmpty(j.Input1, j.Input2) }

// Outputs implements job.Job.
func (j *SkewerPE) Outputs() []string { return nonEmpty(j.Output1, j.Output2, j.Stats) }

// Command implements job.Job.
func (j *SkewerPE) Command() (string, error) {
	tmpDir := job.TempPath(j.ScratchDir, "skewer")
	prefix := within(tmpDir, "skewer")
	s := new(job.Script).
		Then(job.Command("mkdir", "-p").Required("", tmpDir)).
		Then(job.Command("skewer", "-z").
			OptionalInt("-t", j.NumThreads).
			Arg("--quiet").
			Required("-o", prefix).
			Required("", j.Input1).
			Required("", j.Input2)).
		Then(job.Command("cp").Required("", suffixed(prefix, "-trimmed-pair1.fastq.gz")).Required("", j.Output1)).
		Then(job.Command("cp").Required("", suffixed(prefix, "-trimmed-pair2.fastq.gz")).Required("", j.Output2)).
		Then(job.Command("cp").Required("", suffixed(prefix, "-trimmed.log")).Required("", j.Stats)).
		Then(job.Command("rm", "-r").Required("", tmpDir))
	return s.Render(j.JobName)
}

// CatAndSkewer concatenates the read-1 and read-2 FASTQs of a library,
// optionally downsamples them, and trims the result as one pair.
type CatAndSkewer struct {
	job.Base
	Input1  []string
	Input2  []string
	Output1 string
	Output2 string
	Stats   string
	// Downsample keeps only the first Downsample read pairs. Values <= 0
	// disable downsampling.
	Downsample int
}

// Inputs implements job.Job.
func (j *CatAndSkewer) Inputs() []string { return nonEmpty(append(append([]string{}, j.Input1...), j.Input2...)...) }

// Outputs implements job.Job.
func (j *CatAndSkewer) Outputs() []string { return nonEmpty(j.Output1, j.Output2, j.Stats) }

// Command implements job.Job.
func (j *CatAndSkewer) Command() (string, error) {
	tmpDir := job.TempPath(j.ScratchDir, "skewer")
	prefix := within(tmpDir, "skewer")
	tmp1 := suffixed(prefix, "-input_1.fastq.gz")
	tmp2 := suffixed(prefix, "-input_2.fastq.gz")
	s := new(job.Script).
		Then(job.Command("mkdir", "-p").Required("", tmpDir)).
		Then(concatenate(j.Input1, tmp1, j.Downsample)...).
		Then(concatenate(j.Input2, tmp2, j.Downsample)...).
		Then(job.Command("skewer", "-z").
			OptionalInt("-t", j.NumThreads).
			Arg("--quiet").
			Required("-o", prefix).
			Required("", tmp1).
			Required("", tmp2)).
		Then(job.Command("cp").Required("", suffixed(prefix, "-pair1.fastq.gz")).Required("", j.Output1)).
		Then(job.Command("cp").Required("", suffixed(prefix, "-pair2.fastq.gz")).Required("", j.Output2)).
		Then(job.Command("cp").Required("", suffixed(prefix, ".log")).Required("", j.Stats)).
		Then(job.Command("rm", "-r").Required("", tmpDir))
	return s.Render(j.JobName)
}

// Adapter sequences trimmed by Cutadapt, for read 1 and read 2.
const (
	cutadaptAdapter1 = "AGATCGGAAGAGCACACGTCTGAACTCCAGTCAC"
	cutadaptAdapter2 = "AGATCGGAAGAGCGTCGTGTAGGGAAAGAGTGTAGATCTCGGTGGTCGCCGTATCATT"
)

// Cutadapt is the cutadapt flavor of CatAndSkewer.
type Cutadapt struct {
	job.Base
	Input1  []string
	Input2  []string
	Output1 string
	Output2 string
	// Stats optionally captures the cutadapt report.
	Stats      string
	Downsample int
}

// Inputs implements job.Job.
func (j *Cutadapt) Inputs() []string { return nonEmpty(append(append([]string{}, j.Input1...), j.Input2...)...) }

// Outputs implements job.Job.
func (j *Cutadapt) Outputs() []string { return nonEmpty(j.Output1, j.Output2, j.Stats) }

// Command implements job.Job.
func (j *Cutadapt) Command() (string, error) {
	tmpDir := job.TempPath(j.ScratchDir, "cutadapt")
	prefix := within(tmpDir, "cutadapt")
	tmp1 := suffixed(prefix, "-input_1.fastq.gz")
	tmp2 := suffixed(prefix, "-input_2.fastq.gz")
	out1 := suffixed(prefix, "-pair1.fastq.gz")
	out2 := suffixed(prefix, "-pair2.fastq.gz")
	s := new(job.Script).
		Then(job.Command("mkdir", "-p").Required("", tmpDir)).
		Then(concatenate(j.Input1, tmp1, j.Downsample)...).
		Then(concatenate(j.Input2, tmp2, j.Downsample)...).
		Then(job.Command("cutadapt", "-a", cutadaptAdapter1, "-A", cutadaptAdapter2).
			OptionalInt("-j", j.NumThreads).
			Required("-o", out1).
			Required("-p", out2).
			Required("", tmp1).
			Required("", tmp2).
			Optional(">", j.Stats)).
		Then(job.Command("cp").Required("", out1).Required("", j.Output1)).
		Then(job.Command("cp").Required("", out2).Required("", j.Output2)).
		Then(job.Command("rm", "-r").Required("", tmpDir))
	return s.Render(j.JobName)
}
