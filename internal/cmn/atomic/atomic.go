// Package atomic mirrors aistore's cmn/atomic: thin wrapper types over
// sync/atomic, without cache-line padding. No other package of this module
// imports it.
/*
 * Copyright (c) 2024, tracebench authors.
 */
package atomic

import "sync/atomic"

// Int32 is an atomic int32.
type Int32 struct{ v int32 }

func (i *Int32) Load() int32        { return atomic.LoadInt32(&i.v) }
func (i *Int32) Store(n int32)      { atomic.StoreInt32(&i.v, n) }
func (i *Int32) Add(n int32) int32  { return atomic.AddInt32(&i.v, n) }
func (i *Int32) CAS(old, new int32) bool {
	return atomic.CompareAndSwapInt32(&i.v, old, new)
}

// Int64 is an atomic int64.
type Int64 struct{ v int64 }

func (i *Int64) Load() int64       { return atomic.LoadInt64(&i.v) }
func (i *Int64) Store(n int64)     { atomic.StoreInt64(&i.v, n) }
func (i *Int64) Add(n int64) int64 { return atomic.AddInt64(&i.v, n) }

// Uint32 is an atomic uint32.
type Uint32 struct{ v uint32 }

func (i *Uint32) Load() uint32       { return atomic.LoadUint32(&i.v) }
func (i *Uint32) Store(n uint32)     { atomic.StoreUint32(&i.v, n) }
func (i *Uint32) Add(n uint32) uint32 { return atomic.AddUint32(&i.v, n) }
func (i *Uint32) CAS(old, new uint32) bool {
	return atomic.CompareAndSwapUint32(&i.v, old, new)
}

// Uint64 is an atomic uint64.
type Uint64 struct{ v uint64 }

func (i *Uint64) Load() uint64       { return atomic.LoadUint64(&i.v) }
func (i *Uint64) Store(n uint64)     { atomic.StoreUint64(&i.v, n) }
func (i *Uint64) Add(n uint64) uint64 { return atomic.AddUint64(&i.v, n) }

// Bool is an atomic bool, backed by a uint32.
type Bool struct{ v uint32 }

func (b *Bool) Load() bool {
	return atomic.LoadUint32(&b.v) != 0
}

func (b *Bool) Store(val bool) {
	if val {
		atomic.StoreUint32(&b.v, 1)
	} else {
		atomic.StoreUint32(&b.v, 0)
	}
}

// CAS implements a bool compare-and-swap.
func (b *Bool) CAS(old, new bool) bool {
	var o, n uint32
	if old {
		o = 1
	}
	if new {
		n = 1
	}
	return atomic.CompareAndSwapUint32(&b.v, o, n)
}
