// Package metadata loads the descriptions a pipeline run is built from:
// the sample data (which barcodes belong to the subject), the reference
// data (genome, indexes and target sets) and job parameter overrides.
package metadata

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/clinseq/barcode"
	"github.com/mitchellh/mapstructure"
)

// SampleData lists, per sample type, the clinseq barcodes sequenced for
// one subject.
type SampleData struct {
	// SDID identifies the subject, e.g. "P-NA12877".
	SDID string
	// Barcodes maps a sample type key ("T", "N", "CFDNA", ...) to its
	// barcodes.
	Barcodes map[string][]string
}

// Types returns the sample type keys: the known types first, in the order
// of barcode.SampleTypes, then any others sorted.
func (s *SampleData) Types() []string {
	var (
		types []string
		known = make(map[string]bool)
	)
	for _, t := range barcode.SampleTypes {
		known[string(t)] = true
		if _, ok := s.Barcodes[string(t)]; ok {
			types = append(types, string(t))
		}
	}
	var other []string
	for t := range s.Barcodes {
		if !known[t] {
			other = append(other, t)
		}
	}
	sort.Strings(other)
	return append(types, other...)
}

// AllBarcodes returns every barcode, grouped by sample type in Types
// order.
func (s *SampleData) AllBarcodes() []string {
	var all []string
	for _, t := range s.Types() {
		all = append(all, s.Barcodes[t]...)
	}
	return all
}

// DecodeSampleData decodes sample data from its generic form:
// an "sdid" string plus one barcode list per sample type.
func DecodeSampleData(m map[string]interface{}) (*SampleData, error) {
	s := &SampleData{Barcodes: make(map[string][]string)}
	for k, v := range m {
		if k == "sdid" {
			if err := mapstructure.Decode(v, &s.SDID); err != nil {
				return nil, errors.E(errors.Invalid, "sample data: sdid", err)
			}
			continue
		}
		var list []string
		if v != nil {
			if err := mapstructure.Decode(v, &list); err != nil {
				return nil, errors.E(errors.Invalid, fmt.Sprintf("sample data: sample type %s", k), err)
			}
		}
		if list == nil {
			list = []string{}
		}
		s.Barcodes[k] = list
	}
	if s.SDID == "" {
		return nil, errors.E(errors.Invalid, "sample data: missing sdid")
	}
	return s, nil
}

// Targets describes one target set (capture kit) of the reference data.
type Targets struct {
	CNVkitRef             string `mapstructure:"cnvkit-ref"`
	MSISites              string `mapstructure:"msisites"`
	BedSlopped20          string `mapstructure:"targets-bed-slopped20"`
	IntervalList          string `mapstructure:"targets-interval_list"`
	IntervalListSlopped20 string `mapstructure:"targets-interval_list-slopped20"`
}

// RefData names the reference resources of a run. Paths are as given;
// resources the pipeline does not use are kept in Other.
type RefData struct {
	BwaIndex        string `mapstructure:"bwaIndex"`
	ReferenceGenome string `mapstructure:"reference_genome"`
	ReferenceDict   string `mapstructure:"reference_dict"`
	ChrSizes        string `mapstructure:"chrsizes"`
	ClinVar         string `mapstructure:"clinvar"`
	Cosmic          string `mapstructure:"cosmic"`
	DbSNP           string `mapstructure:"dbSNP"`
	ExAC            string `mapstructure:"exac"`
	ICGC            string `mapstructure:"icgc"`
	SwegenCommon    string `mapstructure:"swegene_common"`
	// Targets maps a capture kit name to its target set.
	Targets map[string]Targets `mapstructure:"targets"`
	// ContestVCFs maps a capture kit name to its contamination VCF.
	ContestVCFs map[string]string `mapstructure:"contest_vcfs"`
	// VEPDir is the VEP cache directory. Annotation is enabled iff set.
	VEPDir string                 `mapstructure:"vep_dir"`
	Other  map[string]interface{} `mapstructure:",remain"`
}

// DecodeRefData decodes reference data from its generic form.
func DecodeRefData(m map[string]interface{}) (*RefData, error) {
	r := new(RefData)
	if err := mapstructure.Decode(m, r); err != nil {
		return nil, errors.E(errors.Invalid, "reference data", err)
	}
	return r, nil
}

// Target returns the target set for the named capture kit.
func (r *RefData) Target(kit string) (Targets, error) {
	t, ok := r.Targets[kit]
	if !ok {
		return Targets{}, errors.E(errors.NotExist, fmt.Sprintf("reference data: no target set %q", kit))
	}
	return t, nil
}
