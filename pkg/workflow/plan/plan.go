// Package plan orders workflow statements by the objects they depend on.
package plan

import (
	"fmt"
	"io"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/pkg/errors"

	"github.com/snowforge/snowforge/pkg/ddl"
)

var (
	ErrCycle           = errors.New("dependency cycle")
	ErrDuplicateObject = errors.New("object defined more than once")
)

type node struct {
	key       string
	statement ddl.Statement
}

func nodeKey(n node) string { return n.key }

// Plan is the dependency graph of a set of statements. Edges point from a
// dependency to the statement that needs it.
type Plan struct {
	graph    graph.Graph[string, node]
	nodes    []node
	position map[string]int
}

// Key returns the graph key of stmt. Statements that create an object are
// keyed by kind and name; put, copy_into and sql statements are actions and
// also carry their position so they may repeat.
func Key(stmt ddl.Statement, position int) string {
	key := objectKey(stmt.Kind(), stmt.ObjectName())
	switch stmt.Kind() {
	case ddl.KindPut, ddl.KindCopyInto, ddl.KindSQL:
		return fmt.Sprintf("%s#%d", key, position)
	}
	return key
}

func objectKey(kind ddl.Kind, name string) string {
	return kind.String() + ":" + strings.ToLower(name)
}

// New builds the plan for statements given in file order.
func New(statements []ddl.Statement) (*Plan, error) {
	p := &Plan{
		graph:    graph.New(nodeKey, graph.Directed(), graph.PreventCycles()),
		position: make(map[string]int, len(statements)),
	}

	for i, stmt := range statements {
		n := node{key: Key(stmt, i+1), statement: stmt}
		if prev, ok := p.position[n.key]; ok {
			return nil, errors.Wrapf(ErrDuplicateObject, "%s at statements %d and %d", n.key, prev+1, i+1)
		}
		err := p.graph.AddVertex(n,
			graph.VertexAttribute("label", n.key),
			graph.VertexAttribute("shape", shape(stmt.Kind())),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add vertex %s", n.key)
		}
		p.position[n.key] = i
		p.nodes = append(p.nodes, n)
	}

	for _, n := range p.nodes {
		for _, dep := range p.dependencies(n.statement) {
			if _, ok := p.position[dep]; !ok {
				// defined outside this workflow
				continue
			}
			if err := p.addEdge(dep, n.key); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func (p *Plan) addEdge(from, to string) error {
	err := p.graph.AddEdge(from, to)
	switch {
	case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
		return nil
	case errors.Is(err, graph.ErrEdgeCreatesCycle):
		return errors.Wrapf(ErrCycle, "%s -> %s", from, to)
	default:
		return errors.Wrapf(err, "unable to add edge from %s to %s", from, to)
	}
}

func locationKey(l ddl.Location) string {
	if l.Kind == ddl.LocationStage {
		return objectKey(ddl.KindStage, l.Name)
	}
	return objectKey(ddl.KindTable, l.Name)
}

func stageRefKey(ref ddl.StageRef) string {
	switch ref.Kind {
	case ddl.NamedStageRef:
		return objectKey(ddl.KindStage, ref.Name)
	case ddl.TableStageRef:
		return objectKey(ddl.KindTable, ref.Name)
	}
	return ""
}

func (p *Plan) dependencies(stmt ddl.Statement) []string {
	var deps []string
	switch s := stmt.(type) {
	case *ddl.Stream:
		deps = append(deps, objectKey(ddl.KindTable, s.Source))
	case *ddl.Task:
		for _, after := range s.After {
			deps = append(deps, objectKey(ddl.KindTask, after))
		}
	case *ddl.Stage:
		if s.FileFormat != nil && s.FileFormat.Name != "" {
			deps = append(deps, objectKey(ddl.KindFileFormat, s.FileFormat.Name))
		}
	case *ddl.Put:
		if key := stageRefKey(s.Stage); key != "" {
			deps = append(deps, key)
		}
	case *ddl.CopyInto:
		deps = append(deps, locationKey(s.Target), locationKey(s.Source))
		if s.FileFormat != nil && s.FileFormat.Name != "" {
			deps = append(deps, objectKey(ddl.KindFileFormat, s.FileFormat.Name))
		}
		// files must be uploaded before they are loaded
		if s.Source.Kind == ddl.LocationStage {
			for _, n := range p.nodes {
				if put, ok := n.statement.(*ddl.Put); ok && stageRefKey(put.Stage) == locationKey(s.Source) {
					deps = append(deps, n.key)
				}
			}
		}
	}
	return deps
}

func shape(kind ddl.Kind) string {
	switch kind {
	case ddl.KindPut, ddl.KindCopyInto, ddl.KindSQL:
		return "box"
	}
	return "ellipse"
}

// Step is one statement of an ordered plan.
type Step struct {
	Key       string
	Statement ddl.Statement
	DependsOn []string
}

// Order returns the statements with every dependency before its dependents.
// Among the statements that are ready, the one earliest in the file goes
// first, so independent statements keep their file order.
func (p *Plan) Order() ([]ddl.Statement, error) {
	indexes, err := p.order()
	if err != nil {
		return nil, err
	}
	ordered := make([]ddl.Statement, len(indexes))
	for i, index := range indexes {
		ordered[i] = p.nodes[index].statement
	}
	return ordered, nil
}

// Steps is Order with the key and direct dependencies of each statement.
func (p *Plan) Steps() ([]Step, error) {
	indexes, err := p.order()
	if err != nil {
		return nil, err
	}
	steps := make([]Step, len(indexes))
	for i, index := range indexes {
		n := p.nodes[index]
		deps, err := p.DependsOn(n.key)
		if err != nil {
			return nil, err
		}
		steps[i] = Step{Key: n.key, Statement: n.statement, DependsOn: deps}
	}
	return steps, nil
}

func (p *Plan) order() ([]int, error) {
	predecessors, err := p.graph.PredecessorMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get predecessor map")
	}
	remaining := make(map[string]int, len(p.nodes))
	for key, edges := range predecessors {
		remaining[key] = len(edges)
	}
	adjacency, err := p.graph.AdjacencyMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get adjacency map")
	}

	done := make([]bool, len(p.nodes))
	ordered := make([]int, 0, len(p.nodes))
	for len(ordered) < len(p.nodes) {
		next := -1
		for i, n := range p.nodes {
			if !done[i] && remaining[n.key] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, errors.Wrap(ErrCycle, "unable to sort statements")
		}
		done[next] = true
		ordered = append(ordered, next)
		for dependent := range adjacency[p.nodes[next].key] {
			remaining[dependent]--
		}
	}
	return ordered, nil
}

// DependsOn lists the keys the statement at key directly depends on, in file
// order.
func (p *Plan) DependsOn(key string) ([]string, error) {
	predecessors, err := p.graph.PredecessorMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get predecessor map")
	}
	edges, ok := predecessors[key]
	if !ok {
		return nil, errors.Wrapf(graph.ErrVertexNotFound, "%s", key)
	}
	deps := make([]string, 0, len(edges))
	for _, n := range p.nodes {
		if _, ok := edges[n.key]; ok {
			deps = append(deps, n.key)
		}
	}
	return deps, nil
}

// WriteDOT writes the graph in Graphviz DOT format.
func (p *Plan) WriteDOT(w io.Writer) error {
	if err := draw.DOT(p.graph, w, draw.GraphAttribute("rankdir", "LR")); err != nil {
		return errors.Wrap(err, "unable to draw plan")
	}
	return nil
}
