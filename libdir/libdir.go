// Package libdir finds the FASTQ files of a sequencing library in a
// library directory laid out as <dir>/<barcode>/*.fastq.gz. The directory
// may be local or any path github.com/grailbio/base/file supports.
package libdir

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cenkalti/backoff"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	pkgerrors "github.com/pkg/errors"
)

// Opts configures a Source.
type Opts struct {
	// Dir is the library directory.
	Dir string
	// Verify makes availability checks parse the first record of every
	// FASTQ file.
	Verify bool
	// Retries is the number of times a failed listing is retried, with
	// exponential backoff. Missing directories are not retried.
	Retries int
}

// Source discovers FASTQ files. It is safe for concurrent use.
type Source struct {
	opts Opts
}

// New returns a Source reading opts.Dir.
func New(opts Opts) *Source {
	return &Source{opts: opts}
}

var (
	fastqSuffixes = []string{".fastq.gz", ".fq.gz", ".fastq", ".fq"}
	read1Markers  = []string{"_1.fastq.gz", "_R1"}
	read2Markers  = []string{"_2.fastq.gz", "_R2"}
)

func isFastq(name string) bool {
	for _, s := range fastqSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

func containsAny(name string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// FindFastqs returns the read-1 and read-2 FASTQ files of the library
// with the given clinseq barcode, each sorted by path. A missing library
// directory yields no files and no error.
func (s *Source) FindFastqs(ctx context.Context, barcode string) (r1, r2 []string, err error) {
	paths, err := s.list(ctx, filepath.Join(s.opts.Dir, barcode))
	if err != nil {
		return nil, nil, err
	}
	for _, p := range paths {
		name := filepath.Base(p)
		if !isFastq(name) {
			continue
		}
		switch {
		case containsAny(name, read1Markers):
			r1 = append(r1, p)
		case containsAny(name, read2Markers):
			r2 = append(r2, p)
		default:
			log.Debug.Printf("%s: %s is not marked as read 1 or read 2, ignored", barcode, p)
		}
	}
	sort.Strings(r1)
	sort.Strings(r2)
	return r1, r2, nil
}

// IsDataAvailable reports whether the library has at least one read-1
// FASTQ file. With Opts.Verify, every FASTQ file must also start with a
// well-formed record.
func (s *Source) IsDataAvailable(ctx context.Context, barcode string) (bool, error) {
	r1, r2, err := s.FindFastqs(ctx, barcode)
	if err != nil {
		return false, err
	}
	if len(r1) == 0 {
		log.Printf("%s: no read-1 fastq files under %s", barcode, s.opts.Dir)
		return false, nil
	}
	if !s.opts.Verify {
		return true, nil
	}
	for _, p := range append(r1, r2...) {
		if err := probe(ctx, p); err != nil {
			log.Error.Printf("%s: %v", barcode, err)
			return false, nil
		}
	}
	return true, nil
}

func isNotExist(err error) bool {
	err = pkgerrors.Cause(err)
	return os.IsNotExist(err) || errors.Is(errors.NotExist, err)
}

// list returns the files directly under dir.
func (s *Source) list(ctx context.Context, dir string) ([]string, error) {
	var paths []string
	op := func() error {
		paths = paths[:0]
		lister := file.List(ctx, dir, false)
		for lister.Scan() {
			if !lister.IsDir() {
				paths = append(paths, lister.Path())
			}
		}
		err := lister.Err()
		switch {
		case err == nil:
			return nil
		case isNotExist(err):
			paths = nil
			return nil
		case ctx.Err() != nil:
			return backoff.Permanent(err)
		default:
			log.Debug.Printf("list %s: %v", dir, err)
			return err
		}
	}
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxInt(s.opts.Retries, 0)))
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return nil, errors.E(err, "list", dir)
	}
	return paths, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
