// Package depgraph maintains the dependency graph of the equation engine: a
// directed graph over names where an edge (from, to) states that from depends
// on to.
//
// Two properties distinguish it from a plain DAG container:
//
//   - Edges are latent. An edge may be inserted before either endpoint exists;
//     it only becomes active (visible in adjacency sets) while both endpoints
//     are present. Removing a node downgrades its edges to latent, and
//     re-adding the node re-activates them.
//   - Cycles are detected at commit time, not at insertion. Mutations run
//     inside a batch whose commit performs the cycle check and rolls every
//     recorded change back when one is found.
//
// Each node additionally carries a dirty flag (BFS-propagated to dependents)
// and a monotone event stamp used by the engine's staleness filter.
//
// The graph is intentionally not goroutine-safe: it is owned by the equation
// manager, which is single-threaded by contract.
package depgraph

import "sort"

// Stamp is a global monotone event counter value. The zero value means the
// node has never been stamped.
type Stamp uint64

// Edge is an ordered dependency pair: From depends on To.
type Edge struct {
	From string
	To   string
}

type node struct {
	seq        int
	deps       map[string]struct{}
	dependents map[string]struct{}
	dirty      bool
	stamp      Stamp
}

// Graph is a directed dependency graph with latent edges.
type Graph struct {
	nodes map[string]*node
	// order lists the current nodes ascending by insertion sequence; it is
	// the tie-break source for topological sorts.
	order     []string
	edgesFrom map[string]map[string]struct{}
	edgesTo   map[string]map[string]struct{}

	stamp   Stamp
	nextSeq int
	batch   *Batch
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[string]*node),
		edgesFrom: make(map[string]map[string]struct{}),
		edgesTo:   make(map[string]map[string]struct{}),
	}
}

// AddNode creates the node if absent and activates every latent edge that
// touches it. Re-adding an existing name is a no-op.
func (g *Graph) AddNode(name string) {
	if _, ok := g.nodes[name]; ok {
		return
	}
	g.insertNode(name, g.nextSeq, false, 0)
	g.nextSeq++
	g.record(op{kind: opAddNode, node: name})
}

// insertNode materializes a node with an explicit sequence number; rollback
// uses it to restore a removed node at its original position with its
// original dirty flag and stamp.
func (g *Graph) insertNode(name string, seq int, dirty bool, stamp Stamp) {
	n := &node{
		seq:        seq,
		deps:       make(map[string]struct{}),
		dependents: make(map[string]struct{}),
		dirty:      dirty,
		stamp:      stamp,
	}
	g.nodes[name] = n

	i := sort.Search(len(g.order), func(i int) bool { return g.nodes[g.order[i]].seq > seq })
	g.order = append(g.order, "")
	copy(g.order[i+1:], g.order[i:])
	g.order[i] = name

	for to := range g.edgesFrom[name] {
		g.activate(name, to)
	}
	for from := range g.edgesTo[name] {
		g.activate(from, name)
	}
}

// RemoveNode deactivates the node's edges (they stay in the index, latent)
// and deletes the node. Removing an absent name is a no-op.
func (g *Graph) RemoveNode(name string) {
	n, ok := g.nodes[name]
	if !ok {
		return
	}
	g.record(op{kind: opRemoveNode, node: name, seq: n.seq, dirty: n.dirty, stamp: n.stamp})

	for to := range g.edgesFrom[name] {
		g.deactivate(name, to)
	}
	for from := range g.edgesTo[name] {
		g.deactivate(from, name)
	}
	delete(g.nodes, name)
	for i, o := range g.order {
		if o == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// AddEdge records that from depends on to. The edge is stored even when one
// or both endpoints are absent; it activates once both exist. Inserting an
// existing edge is a no-op. A self-edge is representable and will be rejected
// as a cycle at commit time.
func (g *Graph) AddEdge(from, to string) {
	if g.HasEdge(from, to) {
		return
	}
	if g.edgesFrom[from] == nil {
		g.edgesFrom[from] = make(map[string]struct{})
	}
	g.edgesFrom[from][to] = struct{}{}
	if g.edgesTo[to] == nil {
		g.edgesTo[to] = make(map[string]struct{})
	}
	g.edgesTo[to][from] = struct{}{}
	g.activate(from, to)
	g.record(op{kind: opAddEdge, edge: Edge{From: from, To: to}})
}

// RemoveEdge deletes the edge from the index, active or latent. Removing an
// absent edge is a no-op.
func (g *Graph) RemoveEdge(from, to string) {
	if !g.HasEdge(from, to) {
		return
	}
	g.deactivate(from, to)
	delete(g.edgesFrom[from], to)
	if len(g.edgesFrom[from]) == 0 {
		delete(g.edgesFrom, from)
	}
	delete(g.edgesTo[to], from)
	if len(g.edgesTo[to]) == 0 {
		delete(g.edgesTo, to)
	}
	g.record(op{kind: opRemoveEdge, edge: Edge{From: from, To: to}})
}

// RemoveEdgesFrom deletes every edge whose From endpoint is name. The engine
// uses it to rewire a node whose dependency list changed.
func (g *Graph) RemoveEdgesFrom(name string) {
	targets := make([]string, 0, len(g.edgesFrom[name]))
	for to := range g.edgesFrom[name] {
		targets = append(targets, to)
	}
	sort.Strings(targets)
	for _, to := range targets {
		g.RemoveEdge(name, to)
	}
}

func (g *Graph) activate(from, to string) {
	nf, okFrom := g.nodes[from]
	nt, okTo := g.nodes[to]
	if !okFrom || !okTo {
		return
	}
	nf.deps[to] = struct{}{}
	nt.dependents[from] = struct{}{}
}

func (g *Graph) deactivate(from, to string) {
	if nf, ok := g.nodes[from]; ok {
		delete(nf.deps, to)
	}
	if nt, ok := g.nodes[to]; ok {
		delete(nt.dependents, from)
	}
}

// HasNode reports whether name exists as a node.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// HasEdge reports whether the edge exists in the index, active or latent.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.edgesFrom[from][to]
	return ok
}

// Nodes returns the current node names in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Dependencies returns the active dependencies of name, sorted.
func (g *Graph) Dependencies(name string) []string {
	n, ok := g.nodes[name]
	if !ok {
		return nil
	}
	return sortedKeys(n.deps)
}

// Dependents returns the active dependents of name, sorted.
func (g *Graph) Dependents(name string) []string {
	n, ok := g.nodes[name]
	if !ok {
		return nil
	}
	return sortedKeys(n.dependents)
}

// EdgesFrom returns every edge target recorded for name, active or latent,
// sorted.
func (g *Graph) EdgesFrom(name string) []string {
	return sortedKeys(g.edgesFrom[name])
}

// MarkDirty flags name and all of its transitive active dependents as dirty.
// Marking an absent name is a no-op.
func (g *Graph) MarkDirty(name string) {
	start, ok := g.nodes[name]
	if !ok {
		return
	}
	// A plain "stop at dirty nodes" walk would strand clean nodes behind an
	// already-dirty intermediate, so the walk tracks visits separately.
	visited := map[string]struct{}{name: {}}
	queue := []string{name}
	start.dirty = true
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for dep := range g.nodes[current].dependents {
			if _, seen := visited[dep]; seen {
				continue
			}
			visited[dep] = struct{}{}
			g.nodes[dep].dirty = true
			queue = append(queue, dep)
		}
	}
}

// ClearDirty resets the dirty flag of name.
func (g *Graph) ClearDirty(name string) {
	if n, ok := g.nodes[name]; ok {
		n.dirty = false
	}
}

// IsDirty reports whether name is flagged dirty. Absent names are clean.
func (g *Graph) IsDirty(name string) bool {
	n, ok := g.nodes[name]
	return ok && n.dirty
}

// StampNode assigns the next global event stamp to name and returns it.
func (g *Graph) StampNode(name string) Stamp {
	n, ok := g.nodes[name]
	if !ok {
		return 0
	}
	g.stamp++
	n.stamp = g.stamp
	return n.stamp
}

// NodeStamp returns the current event stamp of name; zero when the node is
// absent or was never stamped.
func (g *Graph) NodeStamp(name string) Stamp {
	n, ok := g.nodes[name]
	if !ok {
		return 0
	}
	return n.stamp
}

// Invalidate zeroes the node's own stamp and marks it and its transitive
// dependents dirty. The engine calls it when an equation's inputs genuinely
// changed; a plain MarkDirty leaves stamps alone so an unchanged node can be
// skipped by the staleness filter.
func (g *Graph) Invalidate(name string) {
	if n, ok := g.nodes[name]; ok {
		n.stamp = 0
	}
	g.MarkDirty(name)
}

// Reset drops all nodes, edges, and any open batch. The stamp counter keeps
// counting so stamps stay monotone across resets.
func (g *Graph) Reset() {
	g.nodes = make(map[string]*node)
	g.order = nil
	g.edgesFrom = make(map[string]map[string]struct{})
	g.edgesTo = make(map[string]map[string]struct{})
	g.batch = nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
