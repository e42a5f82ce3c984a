package tx

import "github.com/rs/zerolog"

// logger is the package's diagnostic logger, a no-op unless a caller
// installs one. The engine only emits debug-level breadcrumbs on its own
// input — verdicts travel in the returned error, never in the log.
var logger = zerolog.Nop()

// SetLogger installs the zerolog logger the builder and validator emit
// debug breadcrumbs to. Call once at startup, before any concurrent use.
func SetLogger(l zerolog.Logger) { logger = l }
