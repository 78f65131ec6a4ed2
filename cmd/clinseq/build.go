package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/clinseq/config"
	"github.com/grailbio/clinseq/libdir"
	"github.com/grailbio/clinseq/metadata"
	"github.com/grailbio/clinseq/pipeline"
	"v.io/x/lib/cmdline"
)

type buildFlags struct {
	sample, ref, params, manifest *string
	outDir, libDir, scratch       *string
	maxCores, retries             *int
	verifyFastqs                  *bool
}

func newCmdBuild() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "build",
		Short: "Configure the full pipeline and write its job manifest",
		Long: `
Build loads the sample data, reference data and optional job parameter
overrides, drops the libraries without data, configures every stage of the
pipeline and writes the resulting jobs, in dependency order, as a TSV
manifest.`,
	}
	flags := buildFlags{
		sample:       cmd.Flags.String("sample", "", "Sample data (YAML or .json). Required."),
		ref:          cmd.Flags.String("ref", "", "Reference data (YAML or .json). Required."),
		params:       cmd.Flags.String("params", "", "Job parameter overrides (YAML or .json)"),
		manifest:     cmd.Flags.String("manifest", "", "Path of the job manifest. By default it is written to stdout."),
		outDir:       cmd.Flags.String("outdir", "", "Output root. Overrides CLINSEQ_OUTDIR."),
		libDir:       cmd.Flags.String("libdir", "", "Library directory. Overrides CLINSEQ_LIBDIR."),
		scratch:      cmd.Flags.String("scratch", "", "Scratch root of jobs. Overrides CLINSEQ_SCRATCH."),
		maxCores:     cmd.Flags.Int("max-cores", 0, "Threads per job. Overrides CLINSEQ_MAX_CORES."),
		retries:      cmd.Flags.Int("retries", 0, "Retries of failed library listings. Overrides CLINSEQ_RETRIES."),
		verifyFastqs: cmd.Flags.Bool("verify-fastqs", false, "Check the first record of every FASTQ. Overrides CLINSEQ_VERIFY_FASTQS."),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("build takes no arguments, but got %v", argv)
		}
		if *flags.sample == "" || *flags.ref == "" {
			return fmt.Errorf("build: -sample and -ref are required")
		}
		c, err := config.FromEnv()
		if err != nil {
			return err
		}
		if err := applyFlags(&cmd.Flags, flags, &c); err != nil {
			return err
		}
		return build(vcontext.Background(), flags, c, env.Stdout)
	})
	return cmd
}

// applyFlags overrides c with the flags set on the command line.
func applyFlags(fs *flag.FlagSet, flags buildFlags, c *config.Config) error {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "outdir":
			c.OutDir = *flags.outDir
		case "libdir":
			c.LibDir = *flags.libDir
		case "scratch":
			c.Scratch = *flags.scratch
		case "max-cores":
			c.MaxCores = *flags.maxCores
		case "retries":
			c.Retries = *flags.retries
		case "verify-fastqs":
			c.VerifyFastqs = *flags.verifyFastqs
		}
	})
	return c.Validate()
}

func build(ctx context.Context, flags buildFlags, c config.Config, stdout io.Writer) (err error) {
	sampleData, err := metadata.LoadSampleData(ctx, *flags.sample)
	if err != nil {
		return err
	}
	refData, err := metadata.LoadRefData(ctx, *flags.ref)
	if err != nil {
		return err
	}
	var jobParams map[string]interface{}
	if *flags.params != "" {
		if jobParams, err = metadata.LoadJobParams(ctx, *flags.params); err != nil {
			return err
		}
	}
	data := libdir.New(libdir.Opts{Dir: c.LibDir, Verify: c.VerifyFastqs, Retries: c.Retries})
	p := pipeline.New(sampleData, refData, jobParams, data, pipeline.Opts{
		OutDir:   c.OutDir,
		Scratch:  c.Scratch,
		MaxCores: c.MaxCores,
	})
	if err := p.Configure(ctx); err != nil {
		return err
	}
	log.Printf("%s: %d jobs, %d qc files", sampleData.SDID, p.Graph().Len(), len(p.QCFiles()))
	if *flags.manifest == "" {
		return p.Graph().WriteTSV(stdout)
	}
	out, err := file.Create(ctx, *flags.manifest)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	return p.Graph().WriteTSV(out.Writer(ctx))
}
