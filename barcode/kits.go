package barcode

import (
	"fmt"
	"sort"

	"github.com/antzucaro/matchr"
	"github.com/grailbio/base/errors"
)

// WGSCaptureKit is the capture kit code of low-pass whole genome
// sequencing. Captures with this code are not targeted panels.
const WGSCaptureKit = "WG"

var prepKits = map[string]string{
	"BN": "BIOO_NEXTFLEX",
	"KH": "KAPA_HYPERPREP",
	"TD": "THRUPLEX_DNASEQ",
	"TP": "THRUPLEX_PLASMASEQ",
	"TF": "THRUPLEX_FD",
	"TS": "TRUSEQ_RNA",
	"NN": "NEBNEXT_RNA",
	"VI": "VILO_RNA",
}

var captureKits = map[string]string{
	"CS":          "clinseq_v3_targets",
	"CZ":          "clinseq_v4",
	"EX":          "EXOMEV3",
	"EO":          "EXOMEV1",
	"RF":          "fusion_v1",
	"CC":          "core_design",
	"CD":          "discovery_coho",
	"CB":          "big_design",
	"AL":          "alascca_targets",
	"TT":          "test-regions",
	"CP":          "progression",
	"CM":          "monitor",
	WGSCaptureKit: "lowpass_wgs",
}

// PrepKitName returns the canonical name of a library prep kit code, e.g.
// "BN" -> "BIOO_NEXTFLEX".
func PrepKitName(code string) (string, error) {
	return lookup("prep kit", prepKits, code)
}

// CaptureKitName returns the canonical name of a capture kit code, e.g.
// "CM" -> "monitor". The name doubles as the key of the capture's target
// resources in the reference data.
func CaptureKitName(code string) (string, error) {
	return lookup("capture kit", captureKits, code)
}

// lookup never falls back to a default: kit names end up in output paths.
func lookup(kind string, table map[string]string, code string) (string, error) {
	if name, ok := table[code]; ok {
		return name, nil
	}
	msg := fmt.Sprintf("unknown %s code %q", kind, code)
	if c := closest(table, code); c != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", c)
	}
	return "", errors.E(errors.NotExist, msg)
}

// closest returns the known code one edit away from code, or "" if there
// is none. Ties go to the lexicographically smallest code.
func closest(table map[string]string, code string) string {
	codes := make([]string, 0, len(table))
	for c := range table {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	for _, c := range codes {
		if matchr.Levenshtein(c, code) == 1 {
			return c
		}
	}
	return ""
}
