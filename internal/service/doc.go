// Package service contains the application-level use cases.
//
// TaskListController mediates between user intents and the task store. It
// owns the in-memory task list and the view derived from it under the
// current filter, and it is the only component that mutates either one.
//
// Every store-touching operation runs on a serial executor from
// internal/job:
//  1. the store is written,
//  2. the full list is reloaded,
//  3. the view is recomputed under the current filter,
//  4. a Snapshot is published through the event emitter.
//
// A failed operation leaves the state untouched, publishes nothing and
// returns a *TaskListError wrapping the cause, so callers can match store
// and domain sentinels with errors.Is.
//
// The service layer depends on domain entities and the store interfaces,
// never on a specific database implementation.
package service
