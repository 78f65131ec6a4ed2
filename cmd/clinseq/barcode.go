package main

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/clinseq/barcode"
	"v.io/x/lib/cmdline"
)

func newCmdBarcode() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "barcode",
		Short:    "Decode clinseq barcodes",
		ArgsName: "barcode...",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) == 0 {
			return fmt.Errorf("barcode takes at least one barcode")
		}
		w := tsv.NewWriter(env.Stdout)
		for _, s := range argv {
			b, err := barcode.Parse(s)
			if err != nil {
				return err
			}
			prep, err := barcode.PrepKitName(b.PrepKit)
			if err != nil {
				return err
			}
			capture, err := barcode.CaptureKitName(b.CaptureKit)
			if err != nil {
				return err
			}
			w.WriteString(s)
			w.WriteString(b.Capture().String())
			w.WriteString(prep)
			w.WriteString(capture)
			if err := w.EndLine(); err != nil {
				return err
			}
		}
		return w.Flush()
	})
	return cmd
}
