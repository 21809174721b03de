// Copyright 2017, Pulumi Corporation.  All rights reserved.

// Package analysis houses the module analyses the lowering pass consumes: scratch-memory allocation, barrier
// placement, and per-value alignment facts.  All of them read operand chains of the original tile-parallel IR,
// so every analysis must run before the first structural rewrite invalidates those chains.
package analysis

import (
	"github.com/golang/glog"
	uuid "github.com/satori/go.uuid"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
)

// sharedAlignment is the alignment, in bytes, of every scratch-memory assignment.
const sharedAlignment = 16

// Allocation assigns byte offsets in the module's scratch memory to every operation that demands some, and
// records the total size.  Offsets key on stable operation IDs so they survive later structural rewrites.
type Allocation struct {
	offsets map[uuid.UUID]int64
	total   int64
}

// NewAllocation computes scratch-memory offsets for the given module.  An operation demands scratch memory by
// carrying an allocation.size attribute; each demand receives a 16-byte aligned offset.  Functions containing at
// least one demand are marked offset-fixed via the allocation.offset attribute, which later call lowering reads
// to decide how a caller obtains its scratch base.
func NewAllocation(m *ir.Module) *Allocation {
	a := &Allocation{offsets: make(map[uuid.UUID]int64)}

	for _, f := range m.Funcs() {
		base := align(a.total)
		fixed := false
		f.WalkOps(func(op *ir.Operation) {
			size, has := op.Attrs.Int(ir.AttrAllocationSize)
			if !has || size == 0 {
				return
			}
			off := align(a.total)
			a.offsets[op.ID()] = off
			a.total = off + size
			fixed = true
		})
		if fixed {
			f.Attrs.SetInt(ir.AttrAllocationOffset, base)
		}
	}

	glog.V(2).Infof("Allocation: %v scratch byte(s) across %v operation(s)", a.total, len(a.offsets))
	return a
}

// Offset returns the scratch byte offset assigned to the given operation, if any.
func (a *Allocation) Offset(op *ir.Operation) (int64, bool) {
	off, has := a.offsets[op.ID()]
	return off, has
}

// SharedMemorySize returns the total number of scratch bytes the module requires.
func (a *Allocation) SharedMemorySize() int64 {
	return a.total
}

func align(n int64) int64 {
	return (n + sharedAlignment - 1) / sharedAlignment * sharedAlignment
}
