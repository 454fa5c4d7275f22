// Package mocks provides hand-written test doubles for the store interfaces
// and for task processors.
//
// The store mocks keep their data in memory and behave like the SQLite
// stores, so most tests need no setup beyond the constructor. Set a function
// field such as SaveTaskFn to inject a failure or observe a call:
//
//	tasks := mocks.NewMockTaskStore()
//	tasks.GetTaskByURLFn = func(ctx context.Context, url string) (*domain.WorkerTask, error) {
//	    return nil, store.ErrBusy
//	}
//
// MockProcessor records the tasks handed to it, which lets router tests
// check fan-out without a worker pool.
package mocks
