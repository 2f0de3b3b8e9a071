// Package testutils provides shared helpers for tests that need a real
// task store: a migrated in-memory SQLite database and a loaded task list
// controller on top of it.
//
//	db := testutils.OpenSQLite(t)
//	controller := testutils.NewController(t, db)
//	testutils.SeedTasks(t, controller, "Buy milk", "Walk dog")
package testutils
