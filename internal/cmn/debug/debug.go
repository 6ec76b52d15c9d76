// Package debug mirrors aistore's cmn/debug: assertions that vanish in
// release builds. Build with -tags debug to enable them.
/*
 * Copyright (c) 2024, tracebench authors.
 */
package debug

// Enabled reports whether debug assertions are compiled in. Overridden by
// the `debug` build tag (see debug_on.go / debug_off.go).
var Enabled = enabled
