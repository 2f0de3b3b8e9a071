// Package events provides a small publish/subscribe mechanism.
//
// Components emit events without knowing who observes them. The task list
// controller publishes a TaskListChanged event carrying a state snapshot after
// every successful change; presentation adapters and loggers register
// handlers to observe it.
package events
