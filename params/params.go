// Package params resolves the tunable job parameters of a pipeline run.
// A parameter is taken from the run's overrides if present, and from the
// built-in defaults otherwise.
package params

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/mitchellh/mapstructure"
)

// Parameter names.
const (
	CovLowThreshFraction  = "cov-low-thresh-fraction"
	CovLowThreshFoldCov   = "cov-low-thresh-fold-cov"
	CovHighThreshFraction = "cov-high-thresh-fraction"
	CovHighThreshFoldCov  = "cov-high-thresh-fold-cov"
	VardictMinAltFrac     = "vardict-min-alt-frac"
	VardictMinNumReads    = "vardict-min-num-reads"
	VEPAdditionalOptions  = "vep-additional-options"
	FastqDownsample       = "fastq-downsample"
	FastqTrimmer          = "fastq-trimmer"
)

// Defaults holds the built-in value of every known parameter.
var Defaults = map[string]interface{}{
	CovLowThreshFraction:  0.8,
	CovLowThreshFoldCov:   50,
	CovHighThreshFraction: 0.95,
	CovHighThreshFoldCov:  100,
	VardictMinAltFrac:     0.02,
	VardictMinNumReads:    0,
	VEPAdditionalOptions:  "",
	FastqDownsample:       0,
	FastqTrimmer:          "skewer",
}

// Resolver answers parameter lookups. The zero value resolves defaults
// only.
type Resolver struct {
	overrides map[string]interface{}
}

// New returns a resolver with the given overrides. The map is copied.
func New(overrides map[string]interface{}) *Resolver {
	r := &Resolver{overrides: make(map[string]interface{}, len(overrides))}
	for k, v := range overrides {
		r.overrides[k] = v
	}
	return r
}

// Overrides returns a copy of the overrides.
func (r *Resolver) Overrides() map[string]interface{} {
	m := make(map[string]interface{}, len(r.overrides))
	for k, v := range r.overrides {
		m[k] = v
	}
	return m
}

// Get returns the value of the named parameter. Names that are neither
// overridden nor have a default are an errors.NotExist error.
func (r *Resolver) Get(name string) (interface{}, error) {
	if v, ok := r.overrides[name]; ok {
		return v, nil
	}
	if v, ok := Defaults[name]; ok {
		return v, nil
	}
	return nil, errors.E(errors.NotExist, fmt.Sprintf("job parameter %q has no value and no default", name))
}

// Float returns the named parameter as a float64. Strings and integers
// are converted.
func (r *Resolver) Float(name string) (float64, error) {
	var f float64
	err := r.decode(name, &f)
	return f, err
}

// Int returns the named parameter as an int.
func (r *Resolver) Int(name string) (int, error) {
	var i int
	err := r.decode(name, &i)
	return i, err
}

// String returns the named parameter as a string.
func (r *Resolver) String(name string) (string, error) {
	var s string
	err := r.decode(name, &s)
	return s, err
}

func (r *Resolver) decode(name string, out interface{}) error {
	v, err := r.Get(name)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if err := mapstructure.WeakDecode(v, out); err != nil {
		return errors.E(errors.Invalid, fmt.Sprintf("job parameter %q", name), err)
	}
	return nil
}

// Names returns the names of all known parameters, sorted.
func Names() []string {
	names := make([]string, 0, len(Defaults))
	for name := range Defaults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
