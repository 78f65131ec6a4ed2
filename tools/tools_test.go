package tools

import (
	"regexp"
	"strings"
	"testing"

	"github.com/grailbio/clinseq/job"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uuidRE matches the scratch tokens drawn by job.TempPath.
var uuidRE = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

func render(t *testing.T, j job.Job) string {
	t.Helper()
	cmd, err := j.Command()
	require.NoError(t, err)
	return uuidRE.ReplaceAllString(cmd, "UUID")
}

func TestBwa(t *testing.T) {
	bwa := NewBwa()
	bwa.JobName = "bwa-lib1"
	bwa.ScratchDir = "/scratch"
	bwa.InputFastq1 = "/data/lib1_1.fastq.gz"
	bwa.InputReference = "/ref/genome.fasta"
	bwa.ReadGroup = ReadGroup("lib1")
	bwa.Output = "/out/lib1.bam"

	expect.EQ(t, render(t, bwa),
		`set -o pipefail && `+
			`bwa mem -M -v 1 -R '@RG\tID:lib1\tSM:lib1\tLB:lib1\tPL:ILLUMINA' /ref/genome.fasta /data/lib1_1.fastq.gz 2> /out/lib1.bam.bwa.log | `+
			`samblaster -M --addMateTags --removeDups 2> /out/lib1.bam.samblaster.log | `+
			`samtools view -Sb -u - | `+
			`samtools sort -T /scratch/bwa-UUID -o /out/lib1.bam - && `+
			`samtools index /out/lib1.bam && `+
			`cat /out/lib1.bam.bwa.log /out/lib1.bam.samblaster.log && `+
			`rm /out/lib1.bam.bwa.log /out/lib1.bam.samblaster.log`)
	expect.EQ(t, bwa.Inputs(), []string{"/data/lib1_1.fastq.gz", "/ref/genome.fasta"})
	expect.EQ(t, bwa.Outputs(), []string{"/out/lib1.bam"})

	bwa.InputFastq2 = "/data/lib1_2.fastq.gz"
	bwa.NumThreads = 8
	bwa.RemoveDuplicates = false
	bwa.DuplicationMetrics = "/out/lib1.dups.txt"
	cmd := render(t, bwa)
	assert.Contains(t, cmd, "-t 8 /ref/genome.fasta /data/lib1_1.fastq.gz /data/lib1_2.fastq.gz 2>")
	assert.Contains(t, cmd, "samblaster -M --addMateTags --metricsFile /out/lib1.dups.txt 2>")
	assert.Contains(t, cmd, "-@ 8 -o /out/lib1.bam")
	assert.NotContains(t, cmd, "--removeDups")
	expect.EQ(t, bwa.Outputs(), []string{"/out/lib1.bam", "/out/lib1.dups.txt"})
}

func TestBwaFreshScratchToken(t *testing.T) {
	bwa := NewBwa()
	bwa.ScratchDir = "/scratch"
	bwa.InputFastq1 = "a.fq.gz"
	bwa.InputReference = "ref.fa"
	bwa.ReadGroup = ReadGroup("lib")
	bwa.Output = "lib.bam"
	a, err := bwa.Command()
	require.NoError(t, err)
	b, err := bwa.Command()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestMissingInputs(t *testing.T) {
	tests := []struct {
		name string
		job  job.Job
	}{
		{"bwa without reads", &Bwa{Base: job.Base{JobName: "bwa", ScratchDir: "/s"}, InputReference: "r", ReadGroup: "rg", Output: "o"}},
		{"bwa without scratch", &Bwa{Base: job.Base{JobName: "bwa"}, InputFastq1: "a", InputReference: "r", ReadGroup: "rg", Output: "o"}},
		{"skewer without input", &SkewerSE{Base: job.Base{JobName: "skewer", ScratchDir: "/s"}, Output: "o", Stats: "s"}},
		{"skewer-pe without mate", &SkewerPE{Base: job.Base{JobName: "skewer", ScratchDir: "/s"}, Input1: "a", Output1: "o1", Output2: "o2", Stats: "s"}},
		{"cat without inputs", &Cat{Base: job.Base{JobName: "cat"}, Output: "o"}},
		{"merge without output", &MergeAndMarkDuplicates{Base: job.Base{JobName: "md", ScratchDir: "/s"}, Input: []string{"a.bam"}, Metrics: "m"}},
		{"freebayes without bed", &Freebayes{Base: job.Base{JobName: "fb"}, InputBams: []string{"a.bam"}, Reference: "r", Output: "o.vcf.gz"}},
		{"vardict without normal", &VarDict{Base: job.Base{JobName: "vd"}, InputTumor: "t.bam", TumorName: "t", NormalName: "n", Reference: "r", TargetBed: "b", Output: "o"}},
		{"vep without cache", &VEP{Base: job.Base{JobName: "vep"}, InputVCF: "i", Reference: "r", Output: "o"}},
		{"cnvkit without bam", &CNVkit{Base: job.Base{JobName: "cnvkit", ScratchDir: "/s"}, Reference: "r.cnn", OutputCNR: "a", OutputCNS: "b"}},
	}
	for _, test := range tests {
		_, err := test.job.Command()
		require.Error(t, err, test.name)
		mi, ok := err.(*job.MissingInputError)
		require.True(t, ok, "%s: %T", test.name, err)
		expect.EQ(t, mi.Job, test.job.Name(), test.name)
	}
}

func TestSkewer(t *testing.T) {
	se := &SkewerSE{
		Base:   job.Base{JobName: "skewer-a", ScratchDir: "/scratch", NumThreads: 2, IsIntermediate: true},
		Input:  "/data/a.fastq.gz",
		Output: "/out/skewer/a.fastq.gz",
		Stats:  "/out/skewer/skewer-stats-a.fastq.gz.log",
	}
	expect.EQ(t, render(t, se),
		"mkdir -p /scratch/skewer-UUID && "+
			"skewer -z -t 2 --quiet -o /scratch/skewer-UUID/skewer /data/a.fastq.gz && "+
			"cp /scratch/skewer-UUID/skewer-trimmed.fastq.gz /out/skewer/a.fastq.gz && "+
			"cp /scratch/skewer-UUID/skewer-trimmed.log /out/skewer/skewer-stats-a.fastq.gz.log && "+
			"rm -r /scratch/skewer-UUID")
	// All stages of one rendering share the same scratch directory.
	cmd, err := se.Command()
	require.NoError(t, err)
	dirs := map[string]bool{}
	for _, m := range regexp.MustCompile(`/scratch/skewer-[0-9a-f-]{36}`).FindAllString(cmd, -1) {
		dirs[m] = true
	}
	expect.EQ(t, len(dirs), 1)

	pe := &SkewerPE{
		Base:    job.Base{JobName: "skewer-a", ScratchDir: "/scratch"},
		Input1:  "/data/a_1.fastq.gz",
		Input2:  "/data/a_2.fastq.gz",
		Output1: "/out/a_1.fastq.gz",
		Output2: "/out/a_2.fastq.gz",
		Stats:   "/out/a.log",
	}
	cmd = render(t, pe)
	assert.Contains(t, cmd, "skewer -z --quiet -o /scratch/skewer-UUID/skewer /data/a_1.fastq.gz /data/a_2.fastq.gz")
	assert.Contains(t, cmd, "cp /scratch/skewer-UUID/skewer-trimmed-pair2.fastq.gz /out/a_2.fastq.gz")
	expect.EQ(t, pe.Outputs(), []string{"/out/a_1.fastq.gz", "/out/a_2.fastq.gz", "/out/a.log"})
}

func TestDownsample(t *testing.T) {
	cs := &CatAndSkewer{
		Base:    job.Base{JobName: "skewer-lib", ScratchDir: "/scratch", NumThreads: 4},
		Input1:  []string{"a_1.fq.gz", "b_1.fq.gz"},
		Input2:  []string{"a_2.fq.gz", "b_2.fq.gz"},
		Output1: "lib_1.fq.gz",
		Output2: "lib_2.fq.gz",
		Stats:   "lib.log",
	}
	cmd := render(t, cs)
	assert.Contains(t, cmd, "cat a_1.fq.gz b_1.fq.gz > /scratch/skewer-UUID/skewer-input_1.fastq.gz")
	assert.Contains(t, cmd, "cat a_2.fq.gz b_2.fq.gz > /scratch/skewer-UUID/skewer-input_2.fastq.gz")
	assert.NotContains(t, cmd, "gzip")
	assert.False(t, strings.HasPrefix(cmd, "set -o pipefail"))

	cs.Downsample = 100
	cmd = render(t, cs)
	assert.Contains(t, cmd,
		"cat a_1.fq.gz b_1.fq.gz | gzip -cd | awk -v n=400 'NR <= n' | gzip > /scratch/skewer-UUID/skewer-input_1.fastq.gz")
	assert.True(t, strings.HasPrefix(cmd, "set -o pipefail && "))

	cs.Downsample = -1
	assert.NotContains(t, render(t, cs), "awk")

	ca := &Cutadapt{
		Base:       job.Base{JobName: "cutadapt-lib", ScratchDir: "/scratch"},
		Input1:     []string{"a_1.fq.gz"},
		Input2:     []string{"a_2.fq.gz"},
		Output1:    "lib_1.fq.gz",
		Output2:    "lib_2.fq.gz",
		Downsample: 10,
	}
	cmd = render(t, ca)
	assert.Contains(t, cmd, "awk -v n=40 'NR <= n'")
	assert.Contains(t, cmd, "cutadapt -a "+cutadaptAdapter1+" -A "+cutadaptAdapter2+
		" -o /scratch/cutadapt-UUID/cutadapt-pair1.fastq.gz -p /scratch/cutadapt-UUID/cutadapt-pair2.fastq.gz")
	expect.EQ(t, ca.Inputs(), []string{"a_1.fq.gz", "a_2.fq.gz"})
}

func TestCat(t *testing.T) {
	c := &Cat{Base: job.Base{JobName: "cat"}, Input: []string{"a", "b", "c"}, Output: "d"}
	expect.EQ(t, render(t, c), "cat a b c > d")
}

func TestFastQC(t *testing.T) {
	f := &FastQC{
		Base:      job.Base{JobName: "fastqc", ScratchDir: "/scratch", NumThreads: 2},
		Input:     []string{"/d/x_1.fastq.gz", "/d/x_2.fq.gz"},
		OutputDir: "/out/qc/fastqc",
	}
	expect.EQ(t, f.Outputs(), []string{"/out/qc/fastqc/x_1_fastqc.zip", "/out/qc/fastqc/x_2_fastqc.zip"})
	expect.EQ(t, render(t, f),
		"mkdir -p /out/qc/fastqc /scratch/fastqc-UUID && "+
			"fastqc -o /out/qc/fastqc --extract -t 2 -d /scratch/fastqc-UUID /d/x_1.fastq.gz /d/x_2.fq.gz && "+
			"rm -r /scratch/fastqc-UUID")
}

func TestMergeAndMarkDuplicates(t *testing.T) {
	m := &MergeAndMarkDuplicates{
		Base:    job.Base{JobName: "markdup", ScratchDir: "/scratch"},
		Input:   []string{"a.bam"},
		Output:  "/out/c.bam",
		Metrics: "/out/c.metrics",
	}
	expect.EQ(t, render(t, m),
		"mkdir -p /scratch/markdup-UUID && "+
			"picard MergeSamFiles VALIDATION_STRINGENCY=LENIENT ASSUME_SORTED=true TMP_DIR=/scratch/markdup-UUID INPUT=a.bam OUTPUT=/scratch/markdup-UUID/merged.bam && "+
			"picard MarkDuplicates VALIDATION_STRINGENCY=LENIENT CREATE_INDEX=true TMP_DIR=/scratch/markdup-UUID INPUT=/scratch/markdup-UUID/merged.bam OUTPUT=/out/c.bam METRICS_FILE=/out/c.metrics && "+
			"rm -r /scratch/markdup-UUID")
	m.Input = append(m.Input, "b.bam")
	assert.Contains(t, render(t, m), "INPUT=a.bam INPUT=b.bam OUTPUT=")
}

func TestVariantCallers(t *testing.T) {
	fb := &Freebayes{
		Base:      job.Base{JobName: "freebayes"},
		InputBams: []string{"n.bam"},
		Reference: "ref.fa",
		TargetBed: "t.bed",
		Output:    "n.vcf.gz",
	}
	expect.EQ(t, render(t, fb),
		"set -o pipefail && freebayes -f ref.fa -t t.bed n.bam | bgzip -c > n.vcf.gz && tabix -p vcf n.vcf.gz")
	expect.EQ(t, fb.Outputs(), []string{"n.vcf.gz", "n.vcf.gz.tbi"})

	vep := &VEP{
		Base:              job.Base{JobName: "vep", NumThreads: 4},
		InputVCF:          "n.vcf.gz",
		Reference:         "ref.fa",
		CacheDir:          "/vep",
		AdditionalOptions: " --everything  --check_existing ",
		Output:            "n.vep.vcf.gz",
	}
	expect.EQ(t, render(t, vep),
		"set -o pipefail && vep --vcf --offline --cache --force_overwrite --dir_cache /vep --fasta ref.fa --fork 4 "+
			"-i n.vcf.gz --output_file STDOUT --everything --check_existing | bgzip -c > n.vep.vcf.gz && tabix -p vcf n.vep.vcf.gz")

	vd := &VarDict{
		Base:        job.Base{JobName: "vardict"},
		InputTumor:  "t.bam",
		InputNormal: "n.bam",
		TumorName:   "T1",
		NormalName:  "N1",
		Reference:   "ref.fa",
		TargetBed:   "t.bed",
		MinAltFrac:  0.02,
		Output:      "s.vcf.gz",
	}
	cmd := render(t, vd)
	assert.Contains(t, cmd, "vardict-java -G ref.fa -f 0.02 -N T1 -b 't.bam|n.bam' -c 1 -S 2 -E 3 -g 4 t.bed | testsomatic.R | ")
	assert.Contains(t, cmd, "var2vcf_paired.pl -N 'T1|N1' -f 0.02 | bgzip -c > s.vcf.gz")
	assert.NotContains(t, cmd, " -r ")
	vd.MinNumReads = 3
	assert.Contains(t, render(t, vd), "-f 0.02 -r 3 -N T1")
}

func TestCNVkit(t *testing.T) {
	c := &CNVkit{
		Base:      job.Base{JobName: "cnvkit", ScratchDir: "/scratch"},
		InputBam:  "/out/bams/cap.bam",
		TargetBed: "t.bed",
		Fasta:     "ref.fa",
		OutputCNR: "/out/cnv/cap.cnr",
		OutputCNS: "/out/cnv/cap.cns",
	}
	expect.EQ(t, render(t, c),
		"mkdir -p /scratch/cnvkit-UUID && "+
			"cnvkit.py batch /out/bams/cap.bam --normal --targets t.bed --fasta ref.fa --output-dir /scratch/cnvkit-UUID && "+
			"cp /scratch/cnvkit-UUID/cap.cnr /out/cnv/cap.cnr && "+
			"cp /scratch/cnvkit-UUID/cap.cns /out/cnv/cap.cns && "+
			"rm -r /scratch/cnvkit-UUID")
	expect.EQ(t, c.Inputs(), []string{"/out/bams/cap.bam", "t.bed", "ref.fa"})

	c.Reference = "ref.cnn"
	cmd := render(t, c)
	assert.Contains(t, cmd, "cnvkit.py batch /out/bams/cap.bam --reference ref.cnn --output-dir")
	assert.NotContains(t, cmd, "--normal")
	expect.EQ(t, c.Inputs(), []string{"/out/bams/cap.bam", "ref.cnn"})
}

func TestCoverage(t *testing.T) {
	h := &CoverageHistogram{
		Base:     job.Base{JobName: "cov"},
		InputBam: "c.bam",
		InputBed: "t.bed",
		MinMapq:  20,
		Output:   "c.hist",
	}
	expect.EQ(t, render(t, h),
		"set -o pipefail && samtools view -b -L t.bed -q 20 c.bam | bedtools coverage -hist -a t.bed -b stdin | grep ^all > c.hist")

	cc := &CoverageCaveat{
		Base:               job.Base{JobName: "caveat"},
		InputHistogram:     "c.hist",
		LowThreshFoldCov:   50,
		LowThreshFraction:  0.8,
		HighThreshFoldCov:  100,
		HighThreshFraction: 0.95,
		Output:             "c.caveat.json",
	}
	expect.EQ(t, render(t, cc),
		"coverage_caveat.py --low-thresh-fold-cov 50 --low-thresh-fraction 0.8 --high-thresh-fold-cov 100 --high-thresh-fraction 0.95 c.hist > c.caveat.json")
}
