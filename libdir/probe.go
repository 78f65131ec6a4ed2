package libdir

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// probe checks that the FASTQ file at path starts with a well-formed
// record: an ID line starting with '@', a sequence, a '+' line and a
// quality string as long as the sequence. Gzipped files are decompressed
// on the fly.
func probe(ctx context.Context, path string) (err error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer file.CloseAndReport(ctx, f, &err)
	var r io.Reader = f.Reader(ctx)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return errors.Wrapf(err, "%s", path)
		}
		defer gz.Close() // nolint: errcheck
		r = gz
	}
	if err := firstRecord(r); err != nil {
		return errors.Wrapf(err, "%s", path)
	}
	return nil
}

func firstRecord(r io.Reader) error {
	var (
		b     = bufio.NewScanner(r)
		lines [4]string
	)
	for i := range lines {
		if !b.Scan() {
			if err := b.Err(); err != nil {
				return err
			}
			if i == 0 {
				return errors.New("empty FASTQ file")
			}
			return errors.New("short FASTQ file")
		}
		lines[i] = b.Text()
	}
	switch {
	case !strings.HasPrefix(lines[0], "@"):
		return errors.Errorf("invalid FASTQ record: ID line %q does not start with '@'", lines[0])
	case !strings.HasPrefix(lines[2], "+"):
		return errors.Errorf("invalid FASTQ record: line 3 %q does not start with '+'", lines[2])
	case len(lines[1]) != len(lines[3]):
		return errors.Errorf("invalid FASTQ record: %d bases but %d qualities", len(lines[1]), len(lines[3]))
	}
	return nil
}
