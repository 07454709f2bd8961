// Package engine is the reactive core of the application. The Manager owns
// the registered equation groups, the dependency graph, and the value
// context, and turns statement edits into graph transactions and topological
// re-evaluation.
//
// The Manager is single-threaded by contract: every call must come from one
// goroutine or be externally serialized, which the app does by running update
// tasks with a concurrency limit of one. Signal handlers run synchronously on
// the calling goroutine and may re-enter the Manager.
package engine
