package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/clinseq/align"
	"github.com/grailbio/clinseq/barcode"
	"github.com/grailbio/clinseq/job"
	"github.com/grailbio/clinseq/params"
	"github.com/grailbio/clinseq/tools"
)

// Configure runs all stages of the pipeline, in order.
func (p *Pipeline) Configure(ctx context.Context) error {
	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"check sample data", p.CheckSampleData},
		{"fastq qc", func(ctx context.Context) error {
			_, err := p.ConfigureFastqQCs(ctx)
			return err
		}},
		{"align and merge", p.ConfigureAlignAndMerge},
		{"germline calls", p.ConfigureGermlineCalls},
		{"somatic calls", p.ConfigureSomaticCalls},
		{"cnvkit", p.ConfigureCNVKit},
		{"coverage qc", p.ConfigureCoverageQC},
	}
	for _, stage := range stages {
		before := p.graph.Len()
		if err := stage.fn(ctx); err != nil {
			return err
		}
		log.Printf("%s: %d jobs added", stage.name, p.graph.Len()-before)
	}
	return nil
}

// CheckSampleData removes from the sample data, in place, the barcodes
// whose data is not available. The availability of all barcodes is checked
// in parallel. A sample type left without barcodes keeps an empty list.
func (p *Pipeline) CheckSampleData(ctx context.Context) error {
	var (
		types     = p.sampleData.Types()
		barcodes  []string
		available []bool
	)
	for _, t := range types {
		barcodes = append(barcodes, p.sampleData.Barcodes[t]...)
	}
	available = make([]bool, len(barcodes))
	err := traverse.Each(len(barcodes), func(i int) error {
		ok, err := p.data.IsDataAvailable(ctx, barcodes[i])
		available[i] = ok
		return err
	})
	if err != nil {
		return err
	}
	i := 0
	for _, t := range types {
		kept := []string{}
		for _, b := range p.sampleData.Barcodes[t] {
			if available[i] {
				kept = append(kept, b)
			} else {
				log.Error.Printf("%s: no data available, dropped", b)
			}
			i++
		}
		p.sampleData.Barcodes[t] = kept
	}
	return nil
}

// ConfigureFastqQCs adds one FastQC job per barcode with FASTQ files. It
// returns the QC artifacts of the added jobs, which are also appended to
// QCFiles.
func (p *Pipeline) ConfigureFastqQCs(ctx context.Context) ([]string, error) {
	var qc []string
	for _, b := range p.AllClinseqBarcodes() {
		r1, r2, err := p.data.FindFastqs(ctx, b)
		if err != nil {
			return nil, err
		}
		fastqs := append(append([]string{}, r1...), r2...)
		if len(fastqs) == 0 {
			log.Debug.Printf("%s: no fastq files, no qc", b)
			continue
		}
		fastqc := &tools.FastQC{
			Base:      job.Base{JobName: "fastqc-" + b, ScratchDir: p.opts.Scratch, NumThreads: p.opts.MaxCores},
			Input:     fastqs,
			OutputDir: filepath.Join(p.opts.OutDir, "qc", "fastqc", b),
		}
		outputs := fastqc.Outputs()
		if _, ok := p.graph.Producer(outputs[0]); ok {
			log.Debug.Printf("%s: fastqc already configured", b)
			continue
		}
		if err := p.Add(fastqc); err != nil {
			return nil, err
		}
		qc = append(qc, outputs...)
	}
	p.qcFiles = append(p.qcFiles, qc...)
	return qc, nil
}

// alignLibrary aligns one library into outdir. Paired end libraries are
// downsampled when the fastq-downsample job parameter is positive.
func (p *Pipeline) alignLibrary(fq1, fq2 []string, lib, outdir string) (string, error) {
	downsample, err := p.params.Int(params.FastqDownsample)
	if err != nil {
		return "", err
	}
	if downsample > 0 && len(fq2) > 0 {
		trimmer, err := p.params.String(params.FastqTrimmer)
		if err != nil {
			return "", err
		}
		return align.Concatenated(p, fq1, fq2, lib, p.refData.BwaIndex, outdir, p.opts.MaxCores,
			align.ConcatOpts{Trimmer: align.Trimmer(trimmer), Downsample: downsample})
	}
	return p.align(p, fq1, fq2, lib, p.refData.BwaIndex, outdir, p.opts.MaxCores)
}

// ConfigureAlignAndMerge aligns every library and merges the libraries of
// each capture into one duplicate-marked BAM. Captures that already have a
// merged BAM are skipped.
func (p *Pipeline) ConfigureAlignAndMerge(ctx context.Context) error {
	groups, err := p.UniqueCaptureToClinseqBarcodes()
	if err != nil {
		return err
	}
	captures := make([]barcode.UniqueCapture, 0, len(groups))
	for c := range groups {
		captures = append(captures, c)
	}
	for _, c := range sortCaptures(captures) {
		if bam, ok := p.CaptureBAM(c); ok {
			log.Debug.Printf("%s: already merged into %s", c, bam)
			continue
		}
		kit, err := barcode.CaptureKitName(c.CaptureKit)
		if err != nil {
			return err
		}
		var bams []string
		for _, b := range groups[c] {
			r1, r2, err := p.data.FindFastqs(ctx, b)
			if err != nil {
				return err
			}
			if len(r1) == 0 {
				log.Error.Printf("%s: no read-1 fastq files, not aligned", b)
				continue
			}
			bam, err := p.alignLibrary(r1, r2, b, filepath.Join(p.opts.OutDir, "bams", kit))
			if err != nil {
				return err
			}
			bams = append(bams, bam)
		}
		if len(bams) == 0 {
			continue
		}
		if _, err := p.MergeAndRmDup(c, bams); err != nil {
			return err
		}
	}
	return nil
}

// ConfigureGermlineCalls calls germline variants of every targeted normal
// capture with a merged BAM.
func (p *Pipeline) ConfigureGermlineCalls(ctx context.Context) error {
	for _, c := range p.UniqueNormalCaptures() {
		bam, ok := p.CaptureBAM(c)
		if c.IsWGS() || !ok {
			continue
		}
		if _, err := p.CallGermlineVariants(c, bam); err != nil {
			return err
		}
	}
	return nil
}

// ConfigureSomaticCalls calls somatic variants of every targeted cancer
// capture against each normal capture of the same subject and capture kit.
func (p *Pipeline) ConfigureSomaticCalls(ctx context.Context) error {
	minAltFrac, err := p.params.Float(params.VardictMinAltFrac)
	if err != nil {
		return err
	}
	minNumReads, err := p.params.Int(params.VardictMinNumReads)
	if err != nil {
		return err
	}
	normals := p.UniqueNormalCaptures()
	for _, cancer := range p.UniqueCancerCaptures() {
		cancerBam, ok := p.CaptureBAM(cancer)
		if cancer.IsWGS() || !ok {
			continue
		}
		for _, normal := range normals {
			if normal.SDID != cancer.SDID || normal.CaptureKit != cancer.CaptureKit {
				continue
			}
			normalBam, ok := p.CaptureBAM(normal)
			if !ok {
				continue
			}
			if _, ok := p.SomaticVCF(cancer, normal); ok {
				continue
			}
			target, err := p.target(cancer)
			if err != nil {
				return err
			}
			name := fmt.Sprintf("%s-and-%s", cancer, normal)
			vardict := &tools.VarDict{
				Base:        job.Base{JobName: "vardict-" + name, NumThreads: p.opts.MaxCores},
				InputTumor:  cancerBam,
				InputNormal: normalBam,
				TumorName:   cancer.String(),
				NormalName:  normal.String(),
				Reference:   p.refData.ReferenceGenome,
				TargetBed:   target.BedSlopped20,
				MinAltFrac:  minAltFrac,
				MinNumReads: minNumReads,
				Output:      filepath.Join(p.opts.OutDir, "variants", name+".vardict.vcf.gz"),
			}
			if err := p.Add(vardict); err != nil {
				return err
			}
			if err := p.SetSomaticVCF(cancer, normal, vardict.Output); err != nil {
				return err
			}
		}
	}
	return nil
}

// ConfigureCNVKit adds a copy number job for every targeted capture with a
// merged BAM and no copy number results yet.
func (p *Pipeline) ConfigureCNVKit(ctx context.Context) error {
	for _, c := range p.UniqueCapturesNoWGS() {
		bam, ok := p.CaptureBAM(c)
		if !ok {
			continue
		}
		if _, ok := p.CaptureCNR(c); ok {
			continue
		}
		target, err := p.target(c)
		if err != nil {
			return err
		}
		dir := filepath.Join(p.opts.OutDir, "cnv")
		cnvkit := &tools.CNVkit{
			Base:      job.Base{JobName: "cnvkit-" + c.String(), ScratchDir: p.opts.Scratch, NumThreads: p.opts.MaxCores},
			InputBam:  bam,
			Reference: target.CNVkitRef,
			TargetBed: target.BedSlopped20,
			Fasta:     p.refData.ReferenceGenome,
			OutputCNR: filepath.Join(dir, c.String()+".cnr"),
			OutputCNS: filepath.Join(dir, c.String()+".cns"),
		}
		if err := p.Add(cnvkit); err != nil {
			return err
		}
		if err := p.SetCaptureCNR(c, cnvkit.OutputCNR); err != nil {
			return err
		}
		if err := p.SetCaptureCNS(c, cnvkit.OutputCNS); err != nil {
			return err
		}
	}
	return nil
}

// ConfigureCoverageQC adds, for every targeted capture with a merged BAM,
// a coverage histogram over the capture's targets and the coverage caveat
// call derived from it. Both are QC artifacts.
func (p *Pipeline) ConfigureCoverageQC(ctx context.Context) error {
	var (
		lowFrac, highFrac float64
		lowCov, highCov   int
		err               error
	)
	if lowFrac, err = p.params.Float(params.CovLowThreshFraction); err != nil {
		return err
	}
	if highFrac, err = p.params.Float(params.CovHighThreshFraction); err != nil {
		return err
	}
	if lowCov, err = p.params.Int(params.CovLowThreshFoldCov); err != nil {
		return err
	}
	if highCov, err = p.params.Int(params.CovHighThreshFoldCov); err != nil {
		return err
	}
	dir := filepath.Join(p.opts.OutDir, "qc", "coverage")
	for _, c := range p.UniqueCapturesNoWGS() {
		bam, ok := p.CaptureBAM(c)
		if !ok {
			continue
		}
		hist := &tools.CoverageHistogram{
			Base:     job.Base{JobName: "coverage-hist-" + c.String()},
			InputBam: bam,
			Output:   filepath.Join(dir, c.String()+".coverage-histogram.txt"),
		}
		if _, ok := p.graph.Producer(hist.Output); ok {
			continue
		}
		target, err := p.target(c)
		if err != nil {
			return err
		}
		hist.InputBed = target.BedSlopped20
		caveat := &tools.CoverageCaveat{
			Base:               job.Base{JobName: "coverage-caveat-" + c.String()},
			InputHistogram:     hist.Output,
			LowThreshFoldCov:   lowCov,
			LowThreshFraction:  lowFrac,
			HighThreshFoldCov:  highCov,
			HighThreshFraction: highFrac,
			Output:             filepath.Join(dir, c.String()+".coverage-qc-call.json"),
		}
		for _, j := range []job.Job{hist, caveat} {
			if err := p.Add(j); err != nil {
				return err
			}
		}
		p.qcFiles = append(p.qcFiles, hist.Output, caveat.Output)
	}
	return nil
}
