// Copyright 2017, Pulumi Corporation.  All rights reserved.

package conversion

import (
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
)

// TypeConverter maps tile-parallel types onto the target's low-level types.  Scalars and pointers pass through;
// distributed tensors become per-thread register aggregates; shared tensors become scratch pointers.
type TypeConverter struct {
	threadsPerBlock int
}

// NewTypeConverter creates a converter for a module whose blocks run the given total thread count.
func NewTypeConverter(threadsPerBlock int) *TypeConverter {
	if threadsPerBlock <= 0 {
		threadsPerBlock = 1
	}
	return &TypeConverter{threadsPerBlock: threadsPerBlock}
}

// ConvertType lowers a single type.
func (tc *TypeConverter) ConvertType(t ir.Type) ir.Type {
	switch t := t.(type) {
	case *ir.TensorType:
		if _, shared := t.Encoding.(*ir.SharedEncoding); shared {
			// Shared tensors live in scratch memory and are carried as a pointer into it.
			return ir.NewPointerType(ir.SharedAddressSpace)
		}
		// Distributed tensors become one struct of register values per thread.
		n := int(t.NumElements()) / tc.threadsPerBlock
		if n < 1 {
			n = 1
		}
		fields := make([]ir.Type, n)
		elem := tc.ConvertType(t.Elem)
		for i := range fields {
			fields[i] = elem
		}
		return ir.NewStructType(fields)
	default:
		return t
	}
}

// PackFunctionResults packs a result type list into the single value the native calling convention supports:
// nil for no results, the converted type for one, and a struct aggregating all of them otherwise.  It returns
// false when the types cannot be packed.
func (tc *TypeConverter) PackFunctionResults(results []ir.Type) (ir.Type, bool) {
	for _, r := range results {
		if !packable(r) {
			return nil, false
		}
	}
	switch len(results) {
	case 0:
		return nil, true
	case 1:
		return tc.ConvertType(results[0]), true
	default:
		fields := make([]ir.Type, len(results))
		for i, r := range results {
			fields[i] = tc.ConvertType(r)
		}
		return ir.NewStructType(fields), true
	}
}

// packable decides whether a result type may appear inside a packed aggregate.
func packable(t ir.Type) bool {
	switch t.(type) {
	case *ir.VoidType, *ir.FunctionType:
		return false
	default:
		return true
	}
}
