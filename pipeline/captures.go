package pipeline

import (
	"sort"

	"github.com/grailbio/clinseq/barcode"
	"github.com/grailbio/clinseq/metadata"
)

// AllClinseqBarcodes returns the barcodes of the sample data, grouped by
// sample type.
func (p *Pipeline) AllClinseqBarcodes() []string { return p.sampleData.AllBarcodes() }

// UniqueCaptureToClinseqBarcodes groups the barcodes of the sample data by
// capture. Barcodes that do not parse are an errors.Invalid error.
func (p *Pipeline) UniqueCaptureToClinseqBarcodes() (map[barcode.UniqueCapture][]string, error) {
	m := make(map[barcode.UniqueCapture][]string)
	for _, s := range p.AllClinseqBarcodes() {
		b, err := barcode.Parse(s)
		if err != nil {
			return nil, err
		}
		m[b.Capture()] = append(m[b.Capture()], s)
	}
	return m, nil
}

func sortCaptures(captures []barcode.UniqueCapture) []barcode.UniqueCapture {
	sort.Slice(captures, func(i, j int) bool { return captures[i].String() < captures[j].String() })
	return captures
}

func (p *Pipeline) filterCaptures(keep func(barcode.UniqueCapture) bool) []barcode.UniqueCapture {
	captures := []barcode.UniqueCapture{}
	for c := range p.captureResults {
		if keep(c) {
			captures = append(captures, c)
		}
	}
	return sortCaptures(captures)
}

// AllUniqueCaptures returns the captures with recorded results, sorted by
// name.
func (p *Pipeline) AllUniqueCaptures() []barcode.UniqueCapture {
	return p.filterCaptures(func(barcode.UniqueCapture) bool { return true })
}

// UniqueCapturesNoWGS returns the targeted captures among
// AllUniqueCaptures.
func (p *Pipeline) UniqueCapturesNoWGS() []barcode.UniqueCapture {
	return p.filterCaptures(func(c barcode.UniqueCapture) bool { return !c.IsWGS() })
}

// UniqueCapturesOnlyWGS returns the whole genome captures among
// AllUniqueCaptures.
func (p *Pipeline) UniqueCapturesOnlyWGS() []barcode.UniqueCapture {
	return p.filterCaptures(barcode.UniqueCapture.IsWGS)
}

// UniqueNormalCaptures returns the normal captures among
// AllUniqueCaptures.
func (p *Pipeline) UniqueNormalCaptures() []barcode.UniqueCapture {
	return p.filterCaptures(barcode.UniqueCapture.IsNormal)
}

// UniqueCancerCaptures returns the tumor and cell-free captures among
// AllUniqueCaptures.
func (p *Pipeline) UniqueCancerCaptures() []barcode.UniqueCapture {
	return p.filterCaptures(barcode.UniqueCapture.IsCancer)
}

// target returns the target set of the capture kit of c.
func (p *Pipeline) target(c barcode.UniqueCapture) (metadata.Targets, error) {
	kit, err := barcode.CaptureKitName(c.CaptureKit)
	if err != nil {
		return metadata.Targets{}, err
	}
	return p.refData.Target(kit)
}
