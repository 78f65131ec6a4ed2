package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/clinseq/barcode"
	"github.com/grailbio/clinseq/job"
	"github.com/grailbio/clinseq/params"
	"github.com/grailbio/clinseq/tools"
)

// setOnce stores path in *field. Storing the value already held is a
// no-op. Replacing a different value is an errors.Exists error, since two
// jobs would then claim the same artifact.
func setOnce(field *string, what string, key fmt.Stringer, path string) error {
	switch *field {
	case "":
		*field = path
		return nil
	case path:
		return nil
	default:
		return errors.E(errors.Exists,
			fmt.Sprintf("%s of %s is already %s, refusing to set %s", what, key, *field, path))
	}
}

func (p *Pipeline) results(c barcode.UniqueCapture) *CaptureResults {
	r := p.captureResults[c]
	if r == nil {
		r = new(CaptureResults)
		p.captureResults[c] = r
	}
	return r
}

func validPath(what string, c fmt.Stringer, path string) error {
	if path == "" {
		return errors.E(errors.Invalid, fmt.Sprintf("%s of %s: empty path", what, c))
	}
	return nil
}

// Results returns a copy of the artifacts recorded for c.
func (p *Pipeline) Results(c barcode.UniqueCapture) (CaptureResults, bool) {
	r, ok := p.captureResults[c]
	if !ok {
		return CaptureResults{}, false
	}
	return *r, true
}

// SetCaptureBAM records the merged BAM of c.
func (p *Pipeline) SetCaptureBAM(c barcode.UniqueCapture, path string) error {
	if err := validPath("merged BAM", c, path); err != nil {
		return err
	}
	return setOnce(&p.results(c).MergedBAM, "merged BAM", c, path)
}

// CaptureBAM returns the merged BAM of c, if one has been configured.
func (p *Pipeline) CaptureBAM(c barcode.UniqueCapture) (string, bool) {
	r, ok := p.captureResults[c]
	if !ok || r.MergedBAM == "" {
		return "", false
	}
	return r.MergedBAM, true
}

// SetCaptureCNR records the copy number ratio file of c.
func (p *Pipeline) SetCaptureCNR(c barcode.UniqueCapture, path string) error {
	if err := validPath("CNV ratios", c, path); err != nil {
		return err
	}
	return setOnce(&p.results(c).CNR, "CNV ratios", c, path)
}

// CaptureCNR returns the copy number ratio file of c.
func (p *Pipeline) CaptureCNR(c barcode.UniqueCapture) (string, bool) {
	r, ok := p.captureResults[c]
	if !ok || r.CNR == "" {
		return "", false
	}
	return r.CNR, true
}

// SetCaptureCNS records the copy number segment file of c.
func (p *Pipeline) SetCaptureCNS(c barcode.UniqueCapture, path string) error {
	if err := validPath("CNV segments", c, path); err != nil {
		return err
	}
	return setOnce(&p.results(c).CNS, "CNV segments", c, path)
}

// CaptureCNS returns the copy number segment file of c.
func (p *Pipeline) CaptureCNS(c barcode.UniqueCapture) (string, bool) {
	r, ok := p.captureResults[c]
	if !ok || r.CNS == "" {
		return "", false
	}
	return r.CNS, true
}

// SetGermlineVCF records the germline VCF of a normal capture. Other
// sample types are an errors.Invalid error.
func (p *Pipeline) SetGermlineVCF(normal barcode.UniqueCapture, path string) error {
	if !normal.IsNormal() {
		return errors.E(errors.Invalid, fmt.Sprintf("germline VCF of %s: not a normal capture", normal))
	}
	if err := validPath("germline VCF", normal, path); err != nil {
		return err
	}
	cur := p.normalCaptureToVCF[normal]
	if err := setOnce(&cur, "germline VCF", normal, path); err != nil {
		return err
	}
	p.normalCaptureToVCF[normal] = cur
	return nil
}

// GermlineVCF returns the germline VCF of a normal capture.
func (p *Pipeline) GermlineVCF(normal barcode.UniqueCapture) (string, bool) {
	vcf, ok := p.normalCaptureToVCF[normal]
	return vcf, ok
}

type pairName capturePair

func (k pairName) String() string { return k.cancer.String() + " vs " + k.normal.String() }

// SetSomaticVCF records the somatic VCF of a cancer capture called
// against a normal capture.
func (p *Pipeline) SetSomaticVCF(cancer, normal barcode.UniqueCapture, path string) error {
	if !cancer.IsCancer() || !normal.IsNormal() {
		return errors.E(errors.Invalid, fmt.Sprintf("somatic VCF of %s vs %s: need a cancer and a normal capture", cancer, normal))
	}
	key := capturePair{cancer, normal}
	if err := validPath("somatic VCF", pairName(key), path); err != nil {
		return err
	}
	r := p.cancerVsNormal[key]
	if r == nil {
		r = new(CancerVsNormalResults)
		p.cancerVsNormal[key] = r
	}
	return setOnce(&r.SomaticVCF, "somatic VCF", pairName(key), path)
}

// SomaticVCF returns the somatic VCF of a cancer capture called against a
// normal capture.
func (p *Pipeline) SomaticVCF(cancer, normal barcode.UniqueCapture) (string, bool) {
	r, ok := p.cancerVsNormal[capturePair{cancer, normal}]
	if !ok || r.SomaticVCF == "" {
		return "", false
	}
	return r.SomaticVCF, true
}

// VEPIsSet reports whether germline calls are annotated with VEP, that is,
// whether the reference data names a VEP cache.
func (p *Pipeline) VEPIsSet() bool { return p.refData.VEPDir != "" }

// MergeAndRmDup adds the job that merges the per-library BAMs of c and
// marks duplicates, and records its output as the merged BAM of c. It
// always adds exactly one job, even for a single BAM, and records its
// duplication metrics as a QC artifact. Callers must call it at most once
// per capture.
func (p *Pipeline) MergeAndRmDup(c barcode.UniqueCapture, bams []string) (string, error) {
	kit, err := barcode.CaptureKitName(c.CaptureKit)
	if err != nil {
		return "", err
	}
	md := &tools.MergeAndMarkDuplicates{
		Base:    job.Base{JobName: "markdup-" + c.String(), ScratchDir: p.opts.Scratch},
		Input:   bams,
		Output:  filepath.Join(p.opts.OutDir, "bams", kit, c.String()+"-nodups.bam"),
		Metrics: filepath.Join(p.opts.OutDir, "qc", "picard", kit, c.String()+"-markdups-metrics.txt"),
	}
	if cur, ok := p.CaptureBAM(c); ok && cur != md.Output {
		return "", errors.E(errors.Exists, fmt.Sprintf("merged BAM of %s is already %s", c, cur))
	}
	if err := p.Add(md); err != nil {
		return "", err
	}
	p.qcFiles = append(p.qcFiles, md.Metrics)
	return md.Output, p.SetCaptureBAM(c, md.Output)
}

// CallGermlineVariants returns the germline VCF of a normal capture,
// adding the jobs that call it from bam unless an earlier call did so. The
// calls are annotated with VEP if VEPIsSet.
func (p *Pipeline) CallGermlineVariants(normal barcode.UniqueCapture, bam string) (string, error) {
	if !normal.IsNormal() {
		return "", errors.E(errors.Invalid, fmt.Sprintf("germline calls of %s: not a normal capture", normal))
	}
	if vcf, ok := p.GermlineVCF(normal); ok {
		log.Debug.Printf("%s: reusing germline calls %s", normal, vcf)
		return vcf, nil
	}
	target, err := p.target(normal)
	if err != nil {
		return "", err
	}
	var vepOpts string
	if p.VEPIsSet() {
		if vepOpts, err = p.params.String(params.VEPAdditionalOptions); err != nil {
			return "", err
		}
	}
	dir := filepath.Join(p.opts.OutDir, "variants")
	fb := &tools.Freebayes{
		Base:      job.Base{JobName: "freebayes-" + normal.String()},
		InputBams: []string{bam},
		Reference: p.refData.ReferenceGenome,
		TargetBed: target.BedSlopped20,
		Output:    filepath.Join(dir, normal.String()+".freebayes.vcf.gz"),
	}
	if err := p.Add(fb); err != nil {
		return "", err
	}
	vcf := fb.Output
	if p.VEPIsSet() {
		vep := &tools.VEP{
			Base:              job.Base{JobName: "vep-freebayes-" + normal.String(), NumThreads: p.opts.MaxCores},
			InputVCF:          fb.Output,
			Reference:         p.refData.ReferenceGenome,
			CacheDir:          p.refData.VEPDir,
			AdditionalOptions: vepOpts,
			Output:            filepath.Join(dir, normal.String()+".freebayes.vep.vcf.gz"),
		}
		if err := p.Add(vep); err != nil {
			return "", err
		}
		vcf = vep.Output
	}
	return vcf, p.SetGermlineVCF(normal, vcf)
}
