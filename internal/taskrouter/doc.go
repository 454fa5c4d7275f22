// Package taskrouter decides which captured pages need background processing
// and fans admitted pages out to the processors registered for their message
// type.
//
// Admission is a test-and-set over the page and task stores: a page is
// admitted when no task references its URL and there is no fresh copy of it
// already stored. All routers in a process share one admission gate, so two
// captures of the same URL can never both pass the check. A message that
// arrives while the gate is held is deferred and replayed by the goroutine
// holding the gate once its own admission completes, most recent first.
package taskrouter
