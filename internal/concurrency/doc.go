// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Job scheduling core for hioload-jobs: a fixed pool of worker threads fed by
// a single dispatcher, with dependency-gated execution and generation-stamped
// handles into a fixed table of job slots.
//
// Scheduler is the threaded implementation; Inline runs jobs synchronously
// for targets without OS threads. Build with -tags jobsdebug to get a
// deadlock-detecting mutex and panics on misuse.
package concurrency
