// Copyright 2017, Pulumi Corporation.  All rights reserved.

package analysis

import (
	"github.com/golang/glog"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
)

// Membar places synchronization barriers between operations whose scratch-memory accesses may conflict.  It is
// conservative: any two scratch-touching operations in a block are treated as conflicting unless a barrier
// already separates them.  Barriers are inserted in place, before any ABI rewrite runs.
type Membar struct {
	allocation *Allocation
}

// NewMembar creates a barrier-placement analysis over the given allocation.
func NewMembar(allocation *Allocation) *Membar {
	return &Membar{allocation: allocation}
}

// Run inserts gpu.barrier operations into the module.
func (mb *Membar) Run(m *ir.Module) {
	inserted := 0
	for _, f := range m.Funcs() {
		for _, b := range f.Blocks() {
			pending := false // a scratch access with no barrier after it yet.
			for _, op := range b.Ops() {
				if op.Kind() == ir.GPUBarrier {
					pending = false
					continue
				}
				if _, has := mb.allocation.Offset(op); !has {
					continue
				}
				if pending {
					bld := ir.NewBuilderBefore(op)
					bld.New(ir.GPUBarrier, nil)
					inserted++
				}
				pending = true
			}
		}
	}
	glog.V(2).Infof("Membar: inserted %v barrier(s)", inserted)
}
