// Package api exposes the task list over JSON HTTP endpoints. Handlers
// translate requests into task list controller operations and render the
// resulting view; errors are mapped to status codes and safe messages while
// the detailed, redacted error is logged.
package api
