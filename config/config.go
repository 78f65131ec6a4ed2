// Package config holds the run settings of the clinseq CLI. Settings are
// read from CLINSEQ_* environment variables and may then be overridden by
// command line flags.
package config

import (
	"runtime"

	"github.com/grailbio/base/errors"
	"github.com/kelseyhightower/envconfig"
)

// Config is the set of run settings.
type Config struct {
	// OutDir is the root of all pipeline outputs.
	OutDir string `envconfig:"CLINSEQ_OUTDIR" default:"."`
	// LibDir is the library directory holding <barcode>/*.fastq.gz.
	LibDir string `envconfig:"CLINSEQ_LIBDIR"`
	// Scratch is the root for job temporary files.
	Scratch string `envconfig:"CLINSEQ_SCRATCH" default:"/tmp"`
	// MaxCores caps the threads of any single job. Zero means the number
	// of CPUs of this machine.
	MaxCores int `envconfig:"CLINSEQ_MAX_CORES"`
	// VerifyFastqs makes availability checks parse the first FASTQ record
	// of each library file.
	VerifyFastqs bool `envconfig:"CLINSEQ_VERIFY_FASTQS"`
	// Retries is the number of retries of failed library listings.
	Retries int `envconfig:"CLINSEQ_RETRIES" default:"3"`
}

// FromEnv returns the configuration found in the environment.
func FromEnv() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, errors.E(errors.Invalid, "environment", err)
	}
	if c.MaxCores <= 0 {
		c.MaxCores = runtime.NumCPU()
	}
	return c, c.Validate()
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch {
	case c.OutDir == "":
		return errors.E(errors.Invalid, "output directory is not set")
	case c.Scratch == "":
		return errors.E(errors.Invalid, "scratch directory is not set")
	case c.Retries < 0:
		return errors.E(errors.Invalid, "retries must not be negative")
	}
	return nil
}
