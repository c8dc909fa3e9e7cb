package env

import "os"

// TraceEnabled reports whether hydration tracing was switched on through the
// environment. Off unless ICEAXE_TRACE is set to a non-empty value other
// than "0" or "false".
var TraceEnabled = func() bool {
	v := os.Getenv("ICEAXE_TRACE")
	return len(v) != 0 && v != "0" && v != "false"
}()
