// Package task dispatches admitted worker tasks to the handlers that do the
// actual processing.
//
// A QueueProcessor is what the task router sees: it accepts a saved task and
// pushes it onto a bounded in-memory queue. A WorkerPool drains that queue,
// marks each task as started, runs the handler registered for its type and
// marks the task done when the handler succeeds. A Runner wires the queue,
// the processors and the pool together, and re-enqueues unfinished tasks
// left over from a previous run.
package task
