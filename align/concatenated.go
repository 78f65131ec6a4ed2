package align

import (
	"fmt"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/clinseq/job"
	"github.com/grailbio/clinseq/tools"
)

// Trimmer names the adapter trimmer used by Concatenated.
type Trimmer string

const (
	Skewer   Trimmer = "skewer"
	Cutadapt Trimmer = "cutadapt"
)

// ConcatOpts configures Concatenated.
type ConcatOpts struct {
	Trimmer Trimmer
	// Downsample keeps only the first Downsample read pairs of the
	// library. Zero keeps all reads.
	Downsample int
}

// Concatenated is the paired end variant of Library that concatenates
// (and optionally downsamples) all FASTQs of a read first, then trims the
// library with a single job. It adds two jobs.
func Concatenated(p Pipeline, fq1, fq2 []string, lib, ref, outdir string, maxCores int, opts ConcatOpts) (string, error) {
	if len(fq1) == 0 || len(fq1) != len(fq2) {
		return "", errors.E(errors.Invalid,
			fmt.Sprintf("library %s: %d read-1 and %d read-2 fastq files", lib, len(fq1), len(fq2)))
	}
	if opts.Trimmer == "" {
		opts.Trimmer = Skewer
	}
	fq1, err := absAll(fq1)
	if err != nil {
		return "", err
	}
	if fq2, err = absAll(fq2); err != nil {
		return "", err
	}
	base := job.Base{
		JobName:        string(opts.Trimmer) + "-" + lib,
		ScratchDir:     p.Scratch(),
		NumThreads:     maxCores,
		IsIntermediate: true,
	}
	dir := filepath.Join(outdir, string(opts.Trimmer))
	out1 := filepath.Join(dir, lib+"-trimmed_1.fastq.gz")
	out2 := filepath.Join(dir, lib+"-trimmed_2.fastq.gz")
	stats := filepath.Join(dir, string(opts.Trimmer)+"-stats-"+lib+".log")
	var trim job.Job
	switch opts.Trimmer {
	case Skewer:
		trim = &tools.CatAndSkewer{
			Base: base, Input1: fq1, Input2: fq2,
			Output1: out1, Output2: out2, Stats: stats,
			Downsample: opts.Downsample,
		}
	case Cutadapt:
		trim = &tools.Cutadapt{
			Base: base, Input1: fq1, Input2: fq2,
			Output1: out1, Output2: out2, Stats: stats,
			Downsample: opts.Downsample,
		}
	default:
		return "", errors.E(errors.Invalid, fmt.Sprintf("unknown fastq trimmer %q", opts.Trimmer))
	}
	log.Debug.Printf("library %s: %s, downsample %d", lib, trim.Name(), opts.Downsample)
	if err := p.Add(trim); err != nil {
		return "", err
	}
	return addBwa(p, out1, out2, lib, ref, outdir, maxCores)
}
