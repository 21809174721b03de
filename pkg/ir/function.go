// Copyright 2017, Pulumi Corporation.  All rights reserved.

package ir

import (
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/diag"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// Function is a kernel entry point or an internal device function: a name, a function type, attribute
// dictionaries for the function and each argument, and a body of blocks.
type Function struct {
	module *Module
	name   string
	typ    *FunctionType
	blocks []*Block

	// Attrs holds function-level attributes; ArgAttrs holds one dictionary per parameter.
	Attrs    Attributes
	ArgAttrs []Attributes
}

// Name returns the function's symbol name.
func (f *Function) Name() string { return f.name }

// Type returns the function's type.
func (f *Function) Type() *FunctionType { return f.typ }

// Module returns the module that owns this function, or nil once erased.
func (f *Function) Module() *Module { return f.module }

// Kernel returns true if this function is a kernel entry point invoked directly by the launch mechanism, as
// opposed to an internal device function reachable only via calls.
func (f *Function) Kernel() bool { return f.Attrs.Bool(AttrKernel) }

// Blocks returns a snapshot of the function's block list.
func (f *Function) Blocks() []*Block {
	blocks := make([]*Block, len(f.blocks))
	copy(blocks, f.blocks)
	return blocks
}

// Entry returns the function's entry block.
func (f *Function) Entry() *Block {
	contract.Assertf(len(f.blocks) > 0, "Function %v has no entry block", f.name)
	return f.blocks[0]
}

// Params returns the function's parameter values, which are the entry block's arguments.
func (f *Function) Params() []*Value { return f.Entry().Args() }

// NewBlock appends a fresh block to the function body and returns it.
func (f *Function) NewBlock() *Block {
	b := &Block{fn: f}
	f.blocks = append(f.blocks, b)
	return b
}

// MoveBodyTo transfers this function's blocks, including all block arguments and operations, into the given
// destination function, leaving this function without a body.  The destination must be empty.  Values are moved
// rather than copied, so operand edges inside the body remain valid.
func (f *Function) MoveBodyTo(dst *Function) {
	contract.Require(dst != nil, "dst")
	contract.Assertf(len(dst.blocks) == 0, "Cannot move body into %v: it already has one", dst.name)
	dst.blocks = f.blocks
	for _, b := range dst.blocks {
		b.fn = dst
	}
	f.blocks = nil
}

// WalkOps visits every operation in the function, in block order then operation order, calling visit on each.
// The visit callback sees a pre-walk snapshot, so it may erase or insert operations freely.
func (f *Function) WalkOps(visit func(*Operation)) {
	for _, b := range f.Blocks() {
		for _, op := range b.Ops() {
			visit(op)
		}
	}
}

// Where returns the diagnostic location of this function.
func (f *Function) Where() diag.Location {
	return diag.Location{Function: f.name}
}

var _ diag.Diagable = (*Function)(nil)
