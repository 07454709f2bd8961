// Package app wires the equation engine into a runnable application: it
// owns the configuration, the logger, the language adapters, the engine, and
// the background task manager, and drives one script through a full update.
//
// The engine itself is single-goroutine (see internal/engine); the app
// upholds that contract by running the task manager with a concurrency limit
// of one and touching the engine only from task callbacks after the queue
// has drained.
package app
