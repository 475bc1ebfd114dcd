// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection for the job system.
//
// Provides concurrent-safe state handling primitives including:
//   - Config defaults, YAML loading and JOBS_* environment overrides
//   - Snapshot config reads with reload listeners
//   - A metrics registry for descriptive runtime values
//   - Debug probe registration and state dumps
package control
