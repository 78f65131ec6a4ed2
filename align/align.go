// Package align adds the jobs that turn the FASTQ files of one sequencing
// library into a coordinate sorted BAM.
package align

import (
	"fmt"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/clinseq/job"
	"github.com/grailbio/clinseq/tools"
)

// Pipeline is the part of a pipeline the aligner needs: somewhere to add
// jobs, and the scratch root they run in.
type Pipeline interface {
	Add(j job.Job) error
	Scratch() string
}

// Library adds the jobs that trim and align one library and returns the
// path of the BAM they produce. An empty fq2 selects single end
// alignment. Otherwise fq1[k] is paired with fq2[k]; the lists must have
// the same length.
func Library(p Pipeline, fq1, fq2 []string, lib, ref, outdir string, maxCores int) (string, error) {
	if len(fq1) == 0 {
		return "", errors.E(errors.Invalid, fmt.Sprintf("library %s: no read-1 fastq files", lib))
	}
	if len(fq2) == 0 {
		log.Debug.Printf("library %s is single end", lib)
		return singleEnd(p, fq1, lib, ref, outdir, maxCores)
	}
	log.Debug.Printf("library %s is paired end", lib)
	return pairedEnd(p, fq1, fq2, lib, ref, outdir, maxCores)
}

func absAll(paths []string) ([]string, error) {
	r := make([]string, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.E(err, "resolve", p)
		}
		r[i] = abs
	}
	return r, nil
}

func singleEnd(p Pipeline, fq1 []string, lib, ref, outdir string, maxCores int) (string, error) {
	fq1, err := absAll(fq1)
	if err != nil {
		return "", err
	}
	libs := filepath.Join(outdir, "skewer", "libs", lib)
	var trimmed []string
	for _, fq := range fq1 {
		base := filepath.Base(fq)
		skewer := &tools.SkewerSE{
			Base: job.Base{
				JobName:        "skewer-" + lib + "-" + base,
				ScratchDir:     p.Scratch(),
				NumThreads:     maxCores,
				IsIntermediate: true,
			},
			Input:  fq,
			Output: filepath.Join(libs, base),
			Stats:  filepath.Join(libs, "skewer-stats-"+base+".log"),
		}
		if err := p.Add(skewer); err != nil {
			return "", err
		}
		trimmed = append(trimmed, skewer.Output)
	}
	cat := &tools.Cat{
		Base:   job.Base{JobName: "cat-" + lib},
		Input:  trimmed,
		Output: filepath.Join(outdir, "skewer", lib+"_1.fastq.gz"),
	}
	if err := p.Add(cat); err != nil {
		return "", err
	}
	return addBwa(p, cat.Output, "", lib, ref, outdir, maxCores)
}

func pairedEnd(p Pipeline, fq1, fq2 []string, lib, ref, outdir string, maxCores int) (string, error) {
	if len(fq1) != len(fq2) {
		return "", errors.E(errors.Invalid,
			fmt.Sprintf("library %s: %d read-1 but %d read-2 fastq files", lib, len(fq1), len(fq2)))
	}
	fq1, err := absAll(fq1)
	if err != nil {
		return "", err
	}
	if fq2, err = absAll(fq2); err != nil {
		return "", err
	}
	log.Debug.Printf("trimming %v and %v", fq1, fq2)
	libs := filepath.Join(outdir, "skewer", "libs", lib)
	var trimmed1, trimmed2 []string
	for k := range fq1 {
		base1, base2 := filepath.Base(fq1[k]), filepath.Base(fq2[k])
		skewer := &tools.SkewerPE{
			Base: job.Base{
				JobName:        "skewer-" + lib + "-" + base1,
				ScratchDir:     p.Scratch(),
				NumThreads:     maxCores,
				IsIntermediate: true,
			},
			Input1:  fq1[k],
			Input2:  fq2[k],
			Output1: filepath.Join(libs, base1),
			Output2: filepath.Join(libs, base2),
			Stats:   filepath.Join(libs, "skewer-stats-"+base1+".log"),
		}
		if err := p.Add(skewer); err != nil {
			return "", err
		}
		trimmed1 = append(trimmed1, skewer.Output1)
		trimmed2 = append(trimmed2, skewer.Output2)
	}
	cat1 := &tools.Cat{
		Base:   job.Base{JobName: "cat1-" + lib, IsIntermediate: true},
		Input:  trimmed1,
		Output: filepath.Join(outdir, "skewer", lib+"-concatenated_1.fastq.gz"),
	}
	cat2 := &tools.Cat{
		Base:   job.Base{JobName: "cat2-" + lib, IsIntermediate: true},
		Input:  trimmed2,
		Output: filepath.Join(outdir, "skewer", lib+"-concatenated_2.fastq.gz"),
	}
	for _, cat := range []*tools.Cat{cat1, cat2} {
		if err := p.Add(cat); err != nil {
			return "", err
		}
	}
	return addBwa(p, cat1.Output, cat2.Output, lib, ref, outdir, maxCores)
}

func addBwa(p Pipeline, fq1, fq2, lib, ref, outdir string, maxCores int) (string, error) {
	bwa := tools.NewBwa()
	bwa.JobName = "bwa-" + lib
	bwa.ScratchDir = p.Scratch()
	bwa.NumThreads = maxCores
	bwa.InputFastq1 = fq1
	bwa.InputFastq2 = fq2
	bwa.InputReference = ref
	bwa.ReadGroup = tools.ReadGroup(lib)
	bwa.Output = filepath.Join(outdir, lib+".bam")
	if err := p.Add(bwa); err != nil {
		return "", err
	}
	return bwa.Output, nil
}
