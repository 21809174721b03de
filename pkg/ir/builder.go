// Copyright 2017, Pulumi Corporation.  All rights reserved.

package ir

import (
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// Builder creates operations at a movable insertion point inside a block.
type Builder struct {
	block *Block
	at    int
}

// NewBuilderAtEnd returns a builder that appends to the end of the given block.
func NewBuilderAtEnd(b *Block) *Builder {
	contract.Require(b != nil, "b")
	return &Builder{block: b, at: len(b.ops)}
}

// NewBuilderBefore returns a builder that inserts immediately before the given operation.
func NewBuilderBefore(op *Operation) *Builder {
	contract.Require(op != nil, "op")
	contract.Require(op.block != nil, "op")
	return &Builder{block: op.block, at: op.block.indexOf(op)}
}

// NewBuilderAfter returns a builder that inserts immediately after the given operation.
func NewBuilderAfter(op *Operation) *Builder {
	contract.Require(op != nil, "op")
	contract.Require(op.block != nil, "op")
	return &Builder{block: op.block, at: op.block.indexOf(op) + 1}
}

// Block returns the block the builder currently inserts into.
func (bld *Builder) Block() *Block { return bld.block }

// New creates an operation of the given kind, result types, and operands, inserts it at the current insertion
// point, and advances the point past it.
func (bld *Builder) New(kind Kind, resultTypes []Type, operands ...*Value) *Operation {
	op := newOperation(kind, resultTypes, operands)
	bld.block.insert(op, bld.at)
	bld.at++
	return op
}

// ConstantI32 materializes a 32-bit integer constant.
func (bld *Builder) ConstantI32(v int64) *Operation {
	op := bld.New(LLVMConstant, []Type{I32})
	op.Attrs.SetInt(AttrValue, v)
	return op
}

// Undef materializes an undefined value of the given type.
func (bld *Builder) Undef(t Type) *Operation {
	return bld.New(LLVMUndef, []Type{t})
}
