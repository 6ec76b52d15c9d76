//go:build !debug

package debug

const enabled = false

// Assert is a no-op outside debug builds.
func Assert(bool, ...any) {}

// Assertf is a no-op outside debug builds.
func Assertf(bool, string, ...any) {}

// AssertNoErr is a no-op outside debug builds.
func AssertNoErr(error) {}

// AssertFunc is a no-op outside debug builds; cond is not evaluated.
func AssertFunc(func() bool, ...any) {}
