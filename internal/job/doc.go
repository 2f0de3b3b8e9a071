// Package job manages background job queuing, processing, and scheduling.
// It provides a bounded queue drained by a worker pool, a serial executor
// built on a single-worker pool, and a scheduler that runs uniquely named
// jobs periodically while persisting their registration.
package job
