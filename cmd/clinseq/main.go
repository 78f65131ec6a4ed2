// Command clinseq builds the job graph of a clinical sequencing analysis
// run.
//
//	clinseq build -sample sample.yaml -ref ref.json -manifest jobs.tsv
//	clinseq barcode AL-P-NA12877-T-03098849-TD1-TT1
//
// Run settings default to the CLINSEQ_* environment variables (see
// package config); flags override them.
package main

import (
	"log"

	"v.io/x/lib/cmdline"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "clinseq",
			Short:    "Build clinseq analysis pipelines",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdBuild(),
				newCmdBarcode(),
			},
		})
}
