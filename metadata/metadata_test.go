package metadata

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
sdid: P-NA12877
CFDNA:
  - LB-P-NA12877-CFDNA-03098850-TD1-TT1
  - LB-P-NA12877-CFDNA-03098850-TD1-WGS
N:
  - AL-P-NA12877-N-03098121-TD1-TT1
T:
  - AL-P-NA12877-T-03098849-TD1-TT1
XY: []
`

const refJSON = `{
  "bwaIndex": "bwa/test-genome-masked.fasta",
  "reference_genome": "genome/test-genome-masked.fasta",
  "icgc": "variants/icgc.vcf.gz",
  "extra_resource": "x.txt",
  "targets": {
    "test-regions": {
      "cnvkit-ref": null,
      "msisites": "intervals/targets/test-regions.msisites.tsv",
      "targets-bed-slopped20": "intervals/targets/test-regions-GRCh37.slopped20.bed",
      "targets-interval_list": "intervals/targets/test-regions-GRCh37.interval_list",
      "targets-interval_list-slopped20": "intervals/targets/test-regions-GRCh37.slopped20.interval_list"
    }
  },
  "contest_vcfs": {"test-regions": "test_contest.vcf"},
  "vep_dir": null
}`

func write(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSampleData(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	s, err := LoadSampleData(ctx, write(t, dir, "sample.yaml", sampleYAML))
	require.NoError(t, err)
	expect.EQ(t, s.SDID, "P-NA12877")
	expect.EQ(t, s.Types(), []string{"T", "N", "CFDNA", "XY"})
	expect.EQ(t, s.Barcodes["XY"], []string{})
	expect.EQ(t, s.AllBarcodes(), []string{
		"AL-P-NA12877-T-03098849-TD1-TT1",
		"AL-P-NA12877-N-03098121-TD1-TT1",
		"LB-P-NA12877-CFDNA-03098850-TD1-TT1",
		"LB-P-NA12877-CFDNA-03098850-TD1-WGS",
	})
}

func TestLoadSampleDataPlainKeys(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	s, err := LoadSampleData(ctx, write(t, dir, "sample.yaml",
		"sdid: P-1\nN: [AL-P-1-N-1-TD1-TT1]\nY: [a]\non: []\noff: [b]\nT: []\n"))
	require.NoError(t, err)
	expect.EQ(t, s.Types(), []string{"T", "N", "Y", "off", "on"})
	expect.EQ(t, s.Barcodes["N"], []string{"AL-P-1-N-1-TD1-TT1"})
	expect.EQ(t, s.Barcodes["Y"], []string{"a"})
	expect.EQ(t, s.Barcodes["off"], []string{"b"})
	_, ok := s.Barcodes["false"]
	assert.False(t, ok)

	_, err = LoadSampleData(ctx, write(t, dir, "boolkey.yaml", "sdid: P-1\ntrue: [a]\n"))
	assert.True(t, errors.Is(errors.Invalid, err))
}

func TestLoadRefData(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	r, err := LoadRefData(ctx, write(t, dir, "ref.json", refJSON))
	require.NoError(t, err)
	expect.EQ(t, r.BwaIndex, "bwa/test-genome-masked.fasta")
	expect.EQ(t, r.ICGC, "variants/icgc.vcf.gz")
	expect.EQ(t, r.VEPDir, "")
	expect.EQ(t, r.ContestVCFs["test-regions"], "test_contest.vcf")
	expect.EQ(t, r.Other["extra_resource"], "x.txt")

	tgt, err := r.Target("test-regions")
	require.NoError(t, err)
	expect.EQ(t, tgt.CNVkitRef, "")
	expect.EQ(t, tgt.BedSlopped20, "intervals/targets/test-regions-GRCh37.slopped20.bed")

	_, err = r.Target("monitor")
	assert.True(t, errors.Is(errors.NotExist, err))
}

func TestLoadJobParams(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	m, err := LoadJobParams(ctx, write(t, dir, "params.yml", "cov-low-thresh-fraction: 0.8\nfastq-trimmer: cutadapt\n"))
	require.NoError(t, err)
	expect.EQ(t, m, map[string]interface{}{"cov-low-thresh-fraction": 0.8, "fastq-trimmer": "cutadapt"})

	m, err = LoadJobParams(ctx, write(t, dir, "empty.yaml", ""))
	require.NoError(t, err)
	expect.EQ(t, len(m), 0)
}

func TestLoadErrors(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	_, err := LoadSampleData(ctx, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadSampleData(ctx, write(t, dir, "list.yaml", "- a\n- b\n"))
	assert.True(t, errors.Is(errors.Invalid, err))

	_, err = LoadSampleData(ctx, write(t, dir, "nosdid.yaml", "T: [a]\n"))
	assert.True(t, errors.Is(errors.Invalid, err))

	_, err = LoadSampleData(ctx, write(t, dir, "bad.json", "{"))
	assert.True(t, errors.Is(errors.Invalid, err))

	_, err = DecodeSampleData(map[string]interface{}{"sdid": "P-1", "T": "not-a-list"})
	assert.True(t, errors.Is(errors.Invalid, err))
}
