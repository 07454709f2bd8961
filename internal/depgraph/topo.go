package depgraph

import "sort"

// TopologicalSort returns every node name ordered so dependencies precede
// dependents. Nodes whose in-degree reaches zero at the same time are emitted
// in insertion order. On a cyclic graph only the acyclic prefix is returned;
// use HasCycle or a batch commit to detect that case.
func (g *Graph) TopologicalSort() []string {
	inDegree := make(map[string]int, len(g.order))
	var ready []string
	for _, name := range g.order {
		d := len(g.nodes[name].deps)
		inDegree[name] = d
		if d == 0 {
			ready = append(ready, name)
		}
	}
	return g.drainReady(ready, inDegree, nil)
}

// TopologicalSortFrom returns the nodes reachable from seed via active
// dependents (seed included), in the same order discipline as
// TopologicalSort. An absent seed yields nil.
func (g *Graph) TopologicalSortFrom(seed string) []string {
	if _, ok := g.nodes[seed]; !ok {
		return nil
	}
	reachable := map[string]struct{}{seed: {}}
	queue := []string{seed}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for dep := range g.nodes[current].dependents {
			if _, seen := reachable[dep]; seen {
				continue
			}
			reachable[dep] = struct{}{}
			queue = append(queue, dep)
		}
	}

	inDegree := make(map[string]int, len(reachable))
	var ready []string
	for _, name := range g.order {
		if _, ok := reachable[name]; !ok {
			continue
		}
		d := 0
		for dep := range g.nodes[name].deps {
			if _, ok := reachable[dep]; ok {
				d++
			}
		}
		inDegree[name] = d
		if d == 0 {
			ready = append(ready, name)
		}
	}
	return g.drainReady(ready, inDegree, reachable)
}

// drainReady runs Kahn's emission loop. ready must be ascending by node
// sequence; restrict, when non-nil, limits the walk to a subgraph.
func (g *Graph) drainReady(ready []string, inDegree map[string]int, restrict map[string]struct{}) []string {
	out := make([]string, 0, len(inDegree))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		out = append(out, name)
		for dependent := range g.nodes[name].dependents {
			if restrict != nil {
				if _, ok := restrict[dependent]; !ok {
					continue
				}
			}
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = g.insertBySeq(ready, dependent)
			}
		}
	}
	return out
}

// insertBySeq keeps the ready queue ordered by node insertion sequence, which
// is what makes equal in-degree ties deterministic.
func (g *Graph) insertBySeq(ready []string, name string) []string {
	seq := g.nodes[name].seq
	i := sort.Search(len(ready), func(i int) bool { return g.nodes[ready[i]].seq > seq })
	ready = append(ready, "")
	copy(ready[i+1:], ready[i:])
	ready[i] = name
	return ready
}

// HasCycle reports whether the graph currently contains a dependency cycle.
func (g *Graph) HasCycle() bool {
	return len(g.TopologicalSort()) != len(g.nodes)
}

// FindCycle returns one cycle as a path that starts and ends with the same
// name, or nil when the graph is acyclic. The walk starts from the most
// recently inserted node that Kahn's algorithm could not emit and follows
// active dependency edges, so the reported path begins at the node whose
// insertion completed the cycle.
func (g *Graph) FindCycle() []string {
	emitted := make(map[string]struct{})
	for _, name := range g.TopologicalSort() {
		emitted[name] = struct{}{}
	}
	if len(emitted) == len(g.nodes) {
		return nil
	}
	start := ""
	for _, name := range g.order {
		if _, ok := emitted[name]; !ok {
			start = name
		}
	}

	var (
		path    []string
		onStack = make(map[string]int)
		visited = make(map[string]struct{})
		cycle   []string
	)
	var walk func(name string) bool
	walk = func(name string) bool {
		if idx, ok := onStack[name]; ok {
			cycle = append(cycle, path[idx:]...)
			cycle = append(cycle, name)
			return true
		}
		if _, ok := visited[name]; ok {
			return false
		}
		visited[name] = struct{}{}
		onStack[name] = len(path)
		path = append(path, name)

		deps := make([]string, 0, len(g.nodes[name].deps))
		for dep := range g.nodes[name].deps {
			deps = append(deps, dep)
		}
		sort.Slice(deps, func(i, j int) bool { return g.nodes[deps[i]].seq < g.nodes[deps[j]].seq })
		for _, dep := range deps {
			if walk(dep) {
				return true
			}
		}

		delete(onStack, name)
		path = path[:len(path)-1]
		return false
	}
	walk(start)
	return cycle
}
