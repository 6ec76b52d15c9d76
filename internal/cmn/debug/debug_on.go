//go:build debug

package debug

import "fmt"

const enabled = true

// Assert panics with args if cond is false. Used for the invariants that
// tracing kernels treat as unconditional (no recoverable errors inside a
// kernel), and for sanity-trace mismatches (InconsistentHeap).
func Assert(cond bool, args ...any) {
	if !cond {
		panic(fmt.Sprint(args...))
	}
}

// Assertf is Assert with a format string.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

// AssertNoErr panics if err is non-nil.
func AssertNoErr(err error) {
	if err != nil {
		panic(err)
	}
}

// AssertFunc evaluates cond lazily — useful when computing the condition is
// itself expensive and should be skipped entirely outside debug builds.
func AssertFunc(cond func() bool, args ...any) {
	if !cond() {
		panic(fmt.Sprint(args...))
	}
}
