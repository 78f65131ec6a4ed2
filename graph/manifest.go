package graph

import (
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/tsv"
)

// ManifestHeader lists the columns written by WriteTSV.
var ManifestHeader = []string{
	"id", "name", "threads", "intermediate", "scratch", "dependencies", "outputs", "command",
}

// WriteTSV writes the graph as a job manifest, one node per line in
// topological order. List columns are comma separated.
func (g *Graph) WriteTSV(w io.Writer) error {
	order, err := g.TopologicalOrder()
	if err != nil {
		return err
	}
	out := tsv.NewWriter(w)
	for _, col := range ManifestHeader {
		out.WriteString(col)
	}
	if err := out.EndLine(); err != nil {
		return err
	}
	for _, n := range order {
		deps := g.DependenciesOf(n)
		ids := make([]string, len(deps))
		for i, d := range deps {
			ids[i] = strconv.Itoa(d.ID)
		}
		out.WriteString(strconv.Itoa(n.ID))
		out.WriteString(n.Job.Name())
		out.WriteString(strconv.Itoa(n.Job.Threads()))
		out.WriteString(strconv.FormatBool(n.Job.Intermediate()))
		out.WriteString(n.Job.Scratch())
		out.WriteString(strings.Join(ids, ","))
		out.WriteString(strings.Join(n.Job.Outputs(), ","))
		out.WriteString(n.Command)
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}
