// Copyright 2017, Pulumi Corporation.  All rights reserved.

package ir

import (
	uuid "github.com/satori/go.uuid"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/diag"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// Operation is a typed IR node.  It consumes operand values, produces result values, carries an attribute
// dictionary, and lives inside exactly one block.  Every operation is assigned a stable unique identifier at
// creation time; side tables that must survive structural rewrites key on it rather than on object identity.
type Operation struct {
	id       uuid.UUID
	kind     Kind
	operands []*Value
	results  []*Value
	block    *Block

	// Attrs holds this operation's attributes.  Callers may read and write it freely; ownership and role
	// metadata is forwarded to replacements via PropagateMetadata.
	Attrs Attributes
}

func newOperation(kind Kind, resultTypes []Type, operands []*Value) *Operation {
	op := &Operation{
		id:    uuid.NewV4(),
		kind:  kind,
		Attrs: Attributes{},
	}
	for i, operand := range operands {
		contract.Assertf(operand != nil, "Operand %v of new %v operation must be non-nil", i, kind)
		op.operands = append(op.operands, operand)
		operand.addUse(op, i)
	}
	for i, t := range resultTypes {
		op.results = append(op.results, &Value{typ: t, def: op, index: i})
	}
	return op
}

// ID returns the operation's stable unique identifier.
func (op *Operation) ID() uuid.UUID { return op.id }

// Kind returns the operation's dialect-qualified kind.
func (op *Operation) Kind() Kind { return op.kind }

// Block returns the block this operation currently lives in, or nil once erased.
func (op *Operation) Block() *Block { return op.block }

// Function returns the function this operation currently lives in, or nil once erased.
func (op *Operation) Function() *Function {
	if op.block == nil {
		return nil
	}
	return op.block.fn
}

// NumOperands returns the operand count.
func (op *Operation) NumOperands() int { return len(op.operands) }

// Operand returns the i'th operand value.
func (op *Operation) Operand(i int) *Value { return op.operands[i] }

// Operands returns a snapshot of the operand list.
func (op *Operation) Operands() []*Value {
	operands := make([]*Value, len(op.operands))
	copy(operands, op.operands)
	return operands
}

// SetOperand redirects the i'th operand edge to a new value, maintaining both values' use lists.
func (op *Operation) SetOperand(i int, v *Value) {
	contract.Require(v != nil, "v")
	old := op.operands[i]
	if old == v {
		return
	}
	old.removeUse(op, i)
	op.operands[i] = v
	v.addUse(op, i)
}

// NumResults returns the result count.
func (op *Operation) NumResults() int { return len(op.results) }

// Result returns the i'th result value.
func (op *Operation) Result(i int) *Value { return op.results[i] }

// Results returns a snapshot of the result list.
func (op *Operation) Results() []*Value {
	results := make([]*Value, len(op.results))
	copy(results, op.results)
	return results
}

// ReplaceAllUsesWith redirects every use of this operation's results to the given replacement values, which must
// match the result list positionally.
func (op *Operation) ReplaceAllUsesWith(repls ...*Value) {
	contract.Assertf(len(repls) == len(op.results),
		"Expected %v replacement value(s) for %v, got %v", len(op.results), op.kind, len(repls))
	for i, res := range op.results {
		res.ReplaceAllUsesWith(repls[i])
	}
}

// Erase removes this operation from its block and drops its operand edges.  The operation's results must be
// unused by the time it is erased.
func (op *Operation) Erase() {
	for i, res := range op.results {
		contract.Assertf(!res.HasUses(), "Cannot erase %v: result %v still has uses", op.kind, i)
	}
	for i := len(op.operands) - 1; i >= 0; i-- {
		op.operands[i].removeUse(op, i)
	}
	op.operands = nil
	if op.block != nil {
		op.block.remove(op)
		op.block = nil
	}
}

// Where returns the diagnostic location of this operation.
func (op *Operation) Where() diag.Location {
	loc := diag.Location{Operation: string(op.kind)}
	if fn := op.Function(); fn != nil {
		loc.Function = fn.name
	}
	return loc
}

var _ diag.Diagable = (*Operation)(nil)
