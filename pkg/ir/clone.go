// Copyright 2017, Pulumi Corporation.  All rights reserved.

package ir

import (
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// Clone deep-copies a module: functions, blocks, operations, and attribute dictionaries.  Lowering mutates its
// input in place and a failed pass leaves it partially rewritten, so anything that must survive a lowering
// attempt -- shared test fixtures above all -- hands the pass a clone instead of the original.
func (m *Module) Clone() *Module {
	c := &Module{Attrs: m.Attrs.Copy()}

	for _, g := range m.globals {
		gc := *g
		c.globals = append(c.globals, &gc)
	}

	// First materialize every function with its blocks and block arguments, so that operand remapping below can
	// resolve references across blocks.
	vmap := make(map[*Value]*Value)
	fmap := make(map[*Function]*Function)
	for _, f := range m.funcs {
		fc := &Function{
			module: c,
			name:   f.name,
			typ:    f.typ,
			Attrs:  f.Attrs.Copy(),
		}
		for _, aa := range f.ArgAttrs {
			fc.ArgAttrs = append(fc.ArgAttrs, aa.Copy())
		}
		for _, b := range f.blocks {
			bc := fc.NewBlock()
			for _, arg := range b.args {
				vmap[arg] = bc.AddArg(arg.typ)
			}
		}
		c.funcs = append(c.funcs, fc)
		fmap[f] = fc
	}

	// Now copy the operations in order.  SSA guarantees defs precede uses within a block, so a single forward
	// sweep finds every operand already remapped.
	for _, f := range m.funcs {
		fc := fmap[f]
		for bi, b := range f.blocks {
			bld := NewBuilderAtEnd(fc.blocks[bi])
			for _, op := range b.ops {
				var operands []*Value
				for _, operand := range op.operands {
					mapped, has := vmap[operand]
					contract.Assertf(has, "Operand of %v not yet cloned; use before def?", op.kind)
					operands = append(operands, mapped)
				}
				var resultTypes []Type
				for _, res := range op.results {
					resultTypes = append(resultTypes, res.typ)
				}
				opc := bld.New(op.kind, resultTypes, operands...)
				opc.Attrs = op.Attrs.Copy()
				for i, res := range op.results {
					vmap[res] = opc.results[i]
				}
			}
		}
	}

	return c
}
