// Package tools contains the job templates of the clinseq pipeline. Each
// template wraps one external program (or a short chain of them), declares
// its input and output files, and renders a shell command. Templates do
// not run anything.
package tools

import (
	"path/filepath"
	"strconv"

	"github.com/grailbio/clinseq/job"
)

// nonEmpty returns the set paths among paths, in order.
func nonEmpty(paths ...string) []string {
	var r []string
	for _, p := range paths {
		if p != "" {
			r = append(r, p)
		}
	}
	return r
}

// suffixed returns path+suffix, or "" if path is unset.
func suffixed(path, suffix string) string {
	if path == "" {
		return ""
	}
	return path + suffix
}

// within returns dir/name, or "" if dir is unset.
func within(dir, name string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}

// dirOf returns the directory of path, or "" if path is unset.
func dirOf(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Dir(path)
}

// concatenate returns the pipe that writes the concatenation of inputs to
// output. If downsample is positive, only the first downsample records
// (four FASTQ lines each) are kept; awk rather than head consumes the
// whole stream so that the upstream stages never see SIGPIPE.
func concatenate(inputs []string, output string, downsample int) []*job.Cmd {
	cat := job.Command("cat").Repeat("", inputs)
	if downsample <= 0 {
		return []*job.Cmd{cat.Stdout(output)}
	}
	return []*job.Cmd{
		cat,
		job.Command("gzip", "-cd"),
		job.Command("awk", "-v", "n="+strconv.Itoa(4*downsample), "'NR <= n'"),
		job.Command("gzip").Stdout(output),
	}
}
