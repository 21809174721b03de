// Copyright 2017, Pulumi Corporation.  All rights reserved.

package ir

import (
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// Value is an SSA value: either the result of an operation or a block argument.  Values are consumed through
// operand edges, and every value knows its uses so that rewrites can redirect them.
type Value struct {
	typ   Type
	def   *Operation // the defining operation, or nil for block arguments.
	block *Block     // the owning block, for block arguments only.
	index int        // the result index (operation results) or argument index (block arguments).
	uses  []Use
}

// Use is one operand edge: the consuming operation and the operand position.
type Use struct {
	Op    *Operation
	Index int
}

// Type returns the value's type.
func (v *Value) Type() Type { return v.typ }

// DefiningOp returns the operation that produced this value, or nil for a block argument.
func (v *Value) DefiningOp() *Operation { return v.def }

// IsBlockArg returns true if this value is a block argument rather than an operation result.
func (v *Value) IsBlockArg() bool { return v.def == nil }

// Block returns the owning block for block arguments, and the defining operation's block otherwise.
func (v *Value) Block() *Block {
	if v.def != nil {
		return v.def.block
	}
	return v.block
}

// Index returns the result or argument index of this value.
func (v *Value) Index() int { return v.index }

// Uses returns a snapshot of the operand edges consuming this value.
func (v *Value) Uses() []Use {
	uses := make([]Use, len(v.uses))
	copy(uses, v.uses)
	return uses
}

// HasUses returns true if any operation consumes this value.
func (v *Value) HasUses() bool { return len(v.uses) > 0 }

// ReplaceAllUsesWith redirects every use of this value to the given replacement.
func (v *Value) ReplaceAllUsesWith(repl *Value) {
	contract.Require(repl != nil, "repl")
	if v == repl {
		return
	}
	for _, use := range v.Uses() {
		use.Op.SetOperand(use.Index, repl)
	}
}

func (v *Value) addUse(op *Operation, index int) {
	v.uses = append(v.uses, Use{Op: op, Index: index})
}

func (v *Value) removeUse(op *Operation, index int) {
	for i, use := range v.uses {
		if use.Op == op && use.Index == index {
			v.uses = append(v.uses[:i], v.uses[i+1:]...)
			return
		}
	}
	contract.Failf("No use of value %v at operand %v of %v to remove", v.typ, index, op.kind)
}
