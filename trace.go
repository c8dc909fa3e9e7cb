package iceaxe

import (
	"log"
	"os"

	"github.com/piercefreeman/iceaxe/internal/env"
)

// TraceFunc receives hydration diagnostics in printf form. Tracing is off by
// default and never affects results; install a tracer with WithTracer or set
// ICEAXE_TRACE=1 to log to stderr.
type TraceFunc func(format string, args ...any)

// defaultTracer is nil unless tracing was enabled through the environment.
var defaultTracer TraceFunc = func() TraceFunc {
	if !env.TraceEnabled {
		return nil
	}
	logger := log.New(os.Stderr, "[iceaxe] ", log.LstdFlags)
	return logger.Printf
}()
