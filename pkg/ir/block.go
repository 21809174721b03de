// Copyright 2017, Pulumi Corporation.  All rights reserved.

package ir

import (
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// Block is an ordered list of operations plus a list of block arguments, owned by a function.
type Block struct {
	fn   *Function
	args []*Value
	ops  []*Operation
}

// Function returns the function that owns this block.
func (b *Block) Function() *Function { return b.fn }

// NumArgs returns the number of block arguments.
func (b *Block) NumArgs() int { return len(b.args) }

// Arg returns the i'th block argument.
func (b *Block) Arg(i int) *Value { return b.args[i] }

// Args returns a snapshot of the block argument list.
func (b *Block) Args() []*Value {
	args := make([]*Value, len(b.args))
	copy(args, b.args)
	return args
}

// AddArg appends a new block argument of the given type and returns it.
func (b *Block) AddArg(t Type) *Value {
	contract.Require(t != nil, "t")
	arg := &Value{typ: t, block: b, index: len(b.args)}
	b.args = append(b.args, arg)
	return arg
}

// NumOps returns the number of operations currently in the block.
func (b *Block) NumOps() int { return len(b.ops) }

// Ops returns a snapshot of the block's operation list, safe to iterate while rewriting.
func (b *Block) Ops() []*Operation {
	ops := make([]*Operation, len(b.ops))
	copy(ops, b.ops)
	return ops
}

// Terminator returns the block's final operation, or nil for an empty block.
func (b *Block) Terminator() *Operation {
	if len(b.ops) == 0 {
		return nil
	}
	return b.ops[len(b.ops)-1]
}

func (b *Block) insert(op *Operation, at int) {
	contract.Assertf(op.block == nil, "Operation %v already belongs to a block", op.kind)
	contract.Assertf(at >= 0 && at <= len(b.ops), "Insertion point %v out of range", at)
	b.ops = append(b.ops, nil)
	copy(b.ops[at+1:], b.ops[at:])
	b.ops[at] = op
	op.block = b
}

func (b *Block) remove(op *Operation) {
	at := b.indexOf(op)
	contract.Assertf(at != -1, "Operation %v not found in its block", op.kind)
	b.ops = append(b.ops[:at], b.ops[at+1:]...)
}

func (b *Block) indexOf(op *Operation) int {
	for i, o := range b.ops {
		if o == op {
			return i
		}
	}
	return -1
}
