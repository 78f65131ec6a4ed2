// Package graph holds the job DAG of a pipeline run. Edges are implied by
// files: a job depends on every job that produces one of its inputs. A
// graph is append-only and is not safe for concurrent use.
package graph

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/clinseq/job"
)

// Node is one job in the graph, together with the command it rendered
// when it was added.
type Node struct {
	// ID is the insertion index of the node.
	ID      int
	Job     job.Job
	Command string
}

// Graph is a DAG of jobs.
type Graph struct {
	nodes []*Node
	// producer maps an output path to the node that writes it.
	producer map[string]*Node
	// consumers maps an input path to the nodes that read it.
	consumers map[string][]*Node
	// deps maps a node ID to the set of node IDs it depends on.
	deps map[int]map[int]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		producer:  make(map[string]*Node),
		consumers: make(map[string][]*Node),
		deps:      make(map[int]map[int]struct{}),
	}
}

// Add renders the command of j and adds j to the graph. It links j to the
// producers of its inputs, and links existing consumers of its outputs to
// j. Add fails with a *job.MissingInputError if j cannot be rendered, and
// with an errors.Exists error if another job already produces one of j's
// outputs; the graph is left unchanged in both cases.
func (g *Graph) Add(j job.Job) (*Node, error) {
	cmd, err := j.Command()
	if err != nil {
		return nil, err
	}
	outputs := j.Outputs()
	seen := make(map[string]bool, len(outputs))
	for _, out := range outputs {
		if p, ok := g.producer[out]; ok {
			return nil, errors.E(errors.Exists,
				fmt.Sprintf("job %q: output %s is already produced by job %q", j.Name(), out, p.Job.Name()))
		}
		if seen[out] {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("job %q: output %s declared twice", j.Name(), out))
		}
		seen[out] = true
	}
	n := &Node{ID: len(g.nodes), Job: j, Command: cmd}
	g.nodes = append(g.nodes, n)
	for _, in := range j.Inputs() {
		if p, ok := g.producer[in]; ok {
			g.link(n, p)
		}
		g.consumers[in] = append(g.consumers[in], n)
	}
	for _, out := range outputs {
		g.producer[out] = n
		for _, c := range g.consumers[out] {
			if c != n {
				g.link(c, n)
			}
		}
	}
	return n, nil
}

// link records that n depends on dep.
func (g *Graph) link(n, dep *Node) {
	set := g.deps[n.ID]
	if set == nil {
		set = make(map[int]struct{})
		g.deps[n.ID] = set
	}
	set[dep.ID] = struct{}{}
}

// Len returns the number of jobs in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return append([]*Node(nil), g.nodes...)
}

// Jobs returns the jobs in insertion order.
func (g *Graph) Jobs() []job.Job {
	jobs := make([]job.Job, len(g.nodes))
	for i, n := range g.nodes {
		jobs[i] = n.Job
	}
	return jobs
}

// Producer returns the node that produces path.
func (g *Graph) Producer(path string) (*Node, bool) {
	n, ok := g.producer[path]
	return n, ok
}

// DependenciesOf returns the nodes n depends on, ordered by ID.
func (g *Graph) DependenciesOf(n *Node) []*Node {
	ids := make([]int, 0, len(g.deps[n.ID]))
	for id := range g.deps[n.ID] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	deps := make([]*Node, len(ids))
	for i, id := range ids {
		deps[i] = g.nodes[id]
	}
	return deps
}

// TopologicalOrder returns the nodes ordered so that every node follows
// its dependencies. Among ready nodes, insertion order is kept. It returns
// an errors.Invalid error if the jobs form a cycle.
func (g *Graph) TopologicalOrder() ([]*Node, error) {
	var (
		indegree   = make([]int, len(g.nodes))
		dependents = make([][]int, len(g.nodes))
	)
	for id, set := range g.deps {
		indegree[id] = len(set)
		for dep := range set {
			dependents[dep] = append(dependents[dep], id)
		}
	}
	var ready []int
	for id, d := range indegree {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	order := make([]*Node, 0, len(g.nodes))
	for len(ready) > 0 {
		sort.Ints(ready)
		id := ready[0]
		ready = ready[1:]
		order = append(order, g.nodes[id])
		for _, d := range dependents[id] {
			if indegree[d]--; indegree[d] == 0 {
				ready = append(ready, d)
			}
		}
	}
	if len(order) != len(g.nodes) {
		for id, d := range indegree {
			if d > 0 {
				return nil, errors.E(errors.Invalid,
					fmt.Sprintf("cycle detected involving job %q", g.nodes[id].Job.Name()))
			}
		}
	}
	return order, nil
}
