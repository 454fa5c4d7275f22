// Package domain contains the core entities of the page task-queue: the
// captured Page and the WorkerTask that tracks processing of a page by one
// processor type. Entities carry no resources of their own; persistence is
// handled by the store implementations.
package domain
