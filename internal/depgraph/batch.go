package depgraph

type opKind int

const (
	opAddNode opKind = iota
	opRemoveNode
	opAddEdge
	opRemoveEdge
)

// op records one committed mutation. Node removals keep the node's sequence,
// dirty flag, and stamp so a rollback restores it exactly where it was.
type op struct {
	kind  opKind
	node  string
	seq   int
	dirty bool
	stamp Stamp
	edge  Edge
}

// Batch collects graph mutations so they can be checked for cycles and undone
// as one unit. Obtain one with Graph.Begin; every mutation on the graph while
// the batch is open is recorded automatically.
//
// The usual shape is:
//
//	b := g.Begin()
//	defer b.Rollback()
//	// ... mutations ...
//	if err := b.Commit(); err != nil { ... }
//
// Rollback after a successful Commit is a no-op, so the defer is safe.
type Batch struct {
	g      *Graph
	ops    []op
	closed bool
}

// Begin opens a batch. Batches do not nest; opening a second one while the
// first is still active is a programming error and panics.
func (g *Graph) Begin() *Batch {
	if g.batch != nil {
		panic("depgraph: batch already in progress")
	}
	b := &Batch{g: g}
	g.batch = b
	return b
}

// record appends the op to the open batch, if any. Mutations performed while
// no batch is open (including rollback replay) are not recorded.
func (g *Graph) record(o op) {
	if g.batch != nil {
		g.batch.ops = append(g.batch.ops, o)
	}
}

// Commit runs the cycle check. When the batch introduced a cycle every
// recorded mutation is undone in reverse order and a *CycleError carrying the
// cycle path is returned; otherwise the log is discarded and the mutations
// stand. Dirty flags and stamps touched during the batch are not reverted;
// the effect of a rolled-back batch is at worst a spurious dirty mark.
func (b *Batch) Commit() error {
	if b.closed {
		panic("depgraph: commit on a closed batch")
	}
	if b.g.HasCycle() {
		path := b.g.FindCycle()
		b.revert()
		return &CycleError{Path: path}
	}
	b.closed = true
	b.g.batch = nil
	b.ops = nil
	return nil
}

// Rollback undoes every recorded mutation in reverse order. It is a no-op on
// a closed batch.
func (b *Batch) Rollback() {
	if b.closed {
		return
	}
	b.revert()
}

func (b *Batch) revert() {
	b.closed = true
	// Detach first so the inverse mutations are not recorded again.
	b.g.batch = nil
	for i := len(b.ops) - 1; i >= 0; i-- {
		o := b.ops[i]
		switch o.kind {
		case opAddNode:
			b.g.RemoveNode(o.node)
		case opRemoveNode:
			b.g.insertNode(o.node, o.seq, o.dirty, o.stamp)
		case opAddEdge:
			b.g.RemoveEdge(o.edge.From, o.edge.To)
		case opRemoveEdge:
			b.g.AddEdge(o.edge.From, o.edge.To)
		}
	}
	b.ops = nil
}
