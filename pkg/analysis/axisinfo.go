// Copyright 2017, Pulumi Corporation.  All rights reserved.

package analysis

import (
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// AxisInfo captures the lattice facts tracked per value: how many contiguous elements a pointer covers, the
// divisibility of its byte offsets, and how many elements share one value.
type AxisInfo struct {
	Contiguity   int
	Divisibility int
	Constancy    int
}

// ModuleAxisInfo holds per-value contiguity and alignment facts for one module.  The stock analysis starts from
// pessimistic defaults and refines from operation structure; producers of better facts may overwrite entries.
type ModuleAxisInfo struct {
	facts map[*ir.Value]*AxisInfo
}

// NewAxisInfo computes axis facts for the given module.  Values without better information get the pessimistic
// unit lattice element.
func NewAxisInfo(m *ir.Module) *ModuleAxisInfo {
	ai := &ModuleAxisInfo{facts: make(map[*ir.Value]*AxisInfo)}

	// Splat results are constant across the whole tensor; everything else keeps the pessimistic default until
	// someone records a stronger fact.
	m.WalkOps(func(op *ir.Operation) {
		if op.Kind() == ir.TTSplat && op.NumResults() == 1 {
			res := op.Result(0)
			if t, ok := res.Type().(*ir.TensorType); ok {
				ai.facts[res] = &AxisInfo{
					Contiguity:   1,
					Divisibility: 1,
					Constancy:    int(t.NumElements()),
				}
			}
		}
	})

	return ai
}

// Lookup returns the facts recorded for a value, or the pessimistic default.
func (ai *ModuleAxisInfo) Lookup(v *ir.Value) *AxisInfo {
	if f, has := ai.facts[v]; has {
		return f
	}
	return &AxisInfo{Contiguity: 1, Divisibility: 1, Constancy: 1}
}

// Set records facts for a value, overwriting anything previously known.
func (ai *ModuleAxisInfo) Set(v *ir.Value, info *AxisInfo) {
	contract.Require(v != nil, "v")
	contract.Require(info != nil, "info")
	ai.facts[v] = info
}

// PtrContiguity returns the number of contiguous elements reachable through the given pointer-of-tensor value.
func (ai *ModuleAxisInfo) PtrContiguity(v *ir.Value) int {
	return ai.Lookup(v).Contiguity
}

// MaskAlignment returns the alignment of the given mask value, the number of consecutive lanes guaranteed to
// share one mask bit.
func (ai *ModuleAxisInfo) MaskAlignment(v *ir.Value) int {
	return ai.Lookup(v).Constancy
}
