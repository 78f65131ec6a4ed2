// Package pipeline builds the job graph of a clinseq analysis run. A
// Pipeline holds the run's sample and reference metadata, job parameters,
// and a registry of the artifacts derived so far per capture. Each
// Configure* stage consults the registry before adding jobs, so that every
// artifact is computed at most once per run.
//
// A Pipeline is not safe for concurrent use.
package pipeline

import (
	"context"

	"github.com/grailbio/base/log"
	"github.com/grailbio/clinseq/align"
	"github.com/grailbio/clinseq/barcode"
	"github.com/grailbio/clinseq/graph"
	"github.com/grailbio/clinseq/job"
	"github.com/grailbio/clinseq/metadata"
	"github.com/grailbio/clinseq/params"
)

// DataSource locates the raw sequencing data of a library.
type DataSource interface {
	// IsDataAvailable reports whether the library with the given clinseq
	// barcode has data to analyze.
	IsDataAvailable(ctx context.Context, barcode string) (bool, error)
	// FindFastqs returns the read-1 and read-2 FASTQ files of the library.
	// r2 is empty for single end libraries.
	FindFastqs(ctx context.Context, barcode string) (r1, r2 []string, err error)
}

// Opts configures a Pipeline.
type Opts struct {
	// OutDir is the root of all job outputs.
	OutDir string
	// Scratch is the root of job temporary files.
	Scratch string
	// MaxCores is the thread count of multithreaded jobs. Values < 1 are
	// treated as 1.
	MaxCores int
}

// CaptureResults are the artifacts derived from one capture. Unset fields
// are empty.
type CaptureResults struct {
	MergedBAM string
	CNR       string
	CNS       string
}

// CancerVsNormalResults are the artifacts derived from a cancer capture
// and its matched normal.
type CancerVsNormalResults struct {
	SomaticVCF string
}

// capturePair keys CancerVsNormalResults.
type capturePair struct {
	cancer, normal barcode.UniqueCapture
}

type alignFunc func(p align.Pipeline, fq1, fq2 []string, lib, ref, outdir string, maxCores int) (string, error)

// Pipeline is the graph builder of one analysis run.
type Pipeline struct {
	opts       Opts
	sampleData *metadata.SampleData
	refData    *metadata.RefData
	params     *params.Resolver
	data       DataSource

	captureResults     map[barcode.UniqueCapture]*CaptureResults
	normalCaptureToVCF map[barcode.UniqueCapture]string
	cancerVsNormal     map[capturePair]*CancerVsNormalResults

	graph   *graph.Graph
	qcFiles []string

	// align aligns one library. It is align.Library except in tests.
	align alignFunc
}

// New returns a Pipeline over the given metadata. jobParams holds the
// run's job parameter overrides. sampleData is modified in place by
// CheckSampleData.
func New(sampleData *metadata.SampleData, refData *metadata.RefData, jobParams map[string]interface{}, data DataSource, opts Opts) *Pipeline {
	if opts.MaxCores < 1 {
		opts.MaxCores = 1
	}
	return &Pipeline{
		opts:               opts,
		sampleData:         sampleData,
		refData:            refData,
		params:             params.New(jobParams),
		data:               data,
		captureResults:     make(map[barcode.UniqueCapture]*CaptureResults),
		normalCaptureToVCF: make(map[barcode.UniqueCapture]string),
		cancerVsNormal:     make(map[capturePair]*CancerVsNormalResults),
		graph:              graph.New(),
		align:              align.Library,
	}
}

// Add adds j to the job graph. It implements align.Pipeline.
func (p *Pipeline) Add(j job.Job) error {
	n, err := p.graph.Add(j)
	if err != nil {
		return err
	}
	log.Debug.Printf("added job %d: %s", n.ID, j.Name())
	return nil
}

// Scratch returns the scratch root of the run's jobs. It implements
// align.Pipeline.
func (p *Pipeline) Scratch() string { return p.opts.Scratch }

// Graph returns the job graph built so far.
func (p *Pipeline) Graph() *graph.Graph { return p.graph }

// QCFiles returns the QC artifacts of the jobs added so far, in the order
// they were added.
func (p *Pipeline) QCFiles() []string { return append([]string(nil), p.qcFiles...) }

// SampleData returns the run's sample data.
func (p *Pipeline) SampleData() *metadata.SampleData { return p.sampleData }

// RefData returns the run's reference data.
func (p *Pipeline) RefData() *metadata.RefData { return p.refData }

// JobParams returns the run's job parameter overrides.
func (p *Pipeline) JobParams() map[string]interface{} { return p.params.Overrides() }

// JobParam returns the value of a job parameter: the run's override if
// present, else the built-in default. Unknown names are an
// errors.NotExist error.
func (p *Pipeline) JobParam(name string) (interface{}, error) { return p.params.Get(name) }
