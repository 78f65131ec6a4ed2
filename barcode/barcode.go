// Package barcode parses clinseq barcodes and derives the unique capture
// identity that groups sequencing libraries of one sample.
//
// A clinseq barcode has the form
//
//   <assay>-<subject>-<type>-<sample#>-<prepkit><ver>-<capturekit><ver>
//
// for example "AL-P-NA12877-T-03098849-TD1-TT1". The subject id contains a
// hyphen itself, so a valid barcode always has seven '-' separated fields.
package barcode

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
)

// SampleType distinguishes the biological material a capture was made from.
type SampleType string

const (
	// Tumor is tumor tissue.
	Tumor SampleType = "T"
	// Normal is normal (germline) tissue or blood.
	Normal SampleType = "N"
	// CFDNA is cell-free DNA from plasma.
	CFDNA SampleType = "CFDNA"
)

// SampleTypes lists the known sample types in their canonical order.
var SampleTypes = []SampleType{Tumor, Normal, CFDNA}

const (
	nFields = 7
	// kitCodeLen is the length of the prep and capture kit codes. The rest
	// of the field is the prep/capture id.
	kitCodeLen = 2
)

// Barcode is a parsed clinseq barcode.
type Barcode struct {
	Project    string
	SDID       string
	SampleType SampleType
	SampleID   string
	PrepKit    string
	PrepID     string
	CaptureKit string
	CaptureID  string
}

// Parse parses a clinseq barcode string.
func Parse(s string) (Barcode, error) {
	fields := strings.Split(s, "-")
	if len(fields) != nFields {
		return Barcode{}, errors.E(errors.Invalid,
			fmt.Sprintf("clinseq barcode %q: expected %d '-' separated fields, found %d", s, nFields, len(fields)))
	}
	for i, f := range fields {
		if f == "" {
			return Barcode{}, errors.E(errors.Invalid, fmt.Sprintf("clinseq barcode %q: field %d is empty", s, i))
		}
	}
	prep, capture := fields[5], fields[6]
	if len(prep) <= kitCodeLen || len(capture) <= kitCodeLen {
		return Barcode{}, errors.E(errors.Invalid,
			fmt.Sprintf("clinseq barcode %q: kit fields must be a %d letter code followed by an id", s, kitCodeLen))
	}
	return Barcode{
		Project:    fields[0],
		SDID:       fields[1] + "-" + fields[2],
		SampleType: SampleType(fields[3]),
		SampleID:   fields[4],
		PrepKit:    prep[:kitCodeLen],
		PrepID:     prep[kitCodeLen:],
		CaptureKit: capture[:kitCodeLen],
		CaptureID:  capture[kitCodeLen:],
	}, nil
}

// MustParse is like Parse, but panics on error.
func MustParse(s string) Barcode {
	b, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return b
}

// String reassembles the barcode.
func (b Barcode) String() string {
	return strings.Join([]string{
		b.Project, b.SDID, string(b.SampleType), b.SampleID,
		b.PrepKit + b.PrepID, b.CaptureKit + b.CaptureID}, "-")
}

// Capture returns the unique capture the barcode's library belongs to.
// Libraries that differ only in their prep or capture ids are merged into
// one capture.
func (b Barcode) Capture() UniqueCapture {
	return UniqueCapture{
		Project:    b.Project,
		SDID:       b.SDID,
		SampleType: b.SampleType,
		SampleID:   b.SampleID,
		PrepKit:    b.PrepKit,
		CaptureKit: b.CaptureKit,
	}
}

// UniqueCapture identifies one library-prep/assay combination for one
// sample. It is comparable and used as a map key.
type UniqueCapture struct {
	Project    string
	SDID       string
	SampleType SampleType
	SampleID   string
	PrepKit    string
	CaptureKit string
}

// String renders the capture in barcode form, without kit ids, e.g.
// "AL-P-NA12877-T-03098849-TD-TT". It is used in output file names.
func (c UniqueCapture) String() string {
	return strings.Join([]string{
		c.Project, c.SDID, string(c.SampleType), c.SampleID, c.PrepKit, c.CaptureKit}, "-")
}

// IsWGS reports whether the capture is whole genome sequencing rather than
// a targeted panel.
func (c UniqueCapture) IsWGS() bool { return c.CaptureKit == WGSCaptureKit }

// IsNormal reports whether the capture comes from normal material.
func (c UniqueCapture) IsNormal() bool { return c.SampleType == Normal }

// IsCancer reports whether the capture comes from tumor or cell-free
// material.
func (c UniqueCapture) IsCancer() bool {
	return c.SampleType == Tumor || c.SampleType == CFDNA
}
