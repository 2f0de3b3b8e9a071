// Package domain contains the core business entities of the task list:
// the Task record, the Filter that derives the visible view, and the
// validation errors shared by the store, service and API layers.
package domain
