// Copyright 2017, Pulumi Corporation.  All rights reserved.

package conversion

import (
	irerrors "github.com/chsasank/intel-xpu-backend-for-triton/pkg/errors"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// The calling-convention phase rewrites tt.return and tt.call to the native single-result convention.  It runs
// after the signature phase, never with it: converting a call requires every function's scratch base to be
// fixed already, including the caller's own.

// returnPattern lowers tt.return.  Kernel entries lower to a bare terminator and reject operands outright;
// device functions return their single value directly, or pack two or more into one aggregate.
type returnPattern struct {
	pass *Pass
}

func (pat *returnPattern) Kind() ir.Kind { return ir.TTReturn }
func (pat *returnPattern) Benefit() int  { return 1 }

func (pat *returnPattern) MatchAndRewrite(op *ir.Operation, rw *Rewriter) (bool, error) {
	fn := op.Function()
	bld := ir.NewBuilderBefore(op)

	if fn.Kernel() {
		if op.NumOperands() > 0 {
			rw.sink.Errorf(irerrors.ErrorInvalidKernelSignature.At(op), fn.Name(), op.NumOperands())
			return false, &InvalidKernelSignatureError{Kernel: fn.Name(), Operands: op.NumOperands()}
		}
		ret := bld.New(ir.LLVMReturn, nil)
		ret.Attrs = op.Attrs.Copy()
		op.Erase()
		return true, nil
	}

	operands := op.Operands()
	var ret *ir.Operation
	if len(operands) < 2 {
		// Single or no return value.
		ret = bld.New(ir.LLVMReturn, nil, operands...)
	} else {
		// Pack the results into a struct.
		packedTy, ok := rw.tc.PackFunctionResults(fn.Type().Results)
		contract.Assertf(ok, "Device function %v's results survived signature lowering but cannot pack", fn.Name())
		packed := bld.Undef(packedTy).Result(0)
		var inserts []*ir.Operation
		for i, v := range operands {
			ins := bld.New(ir.LLVMInsertValue, []ir.Type{packedTy}, packed, v)
			ins.Attrs.SetInt(ir.AttrIndex, int64(i))
			inserts = append(inserts, ins)
			packed = ins.Result(0)
		}
		ret = bld.New(ir.LLVMReturn, nil, packed)
		ir.PropagateMetadata(op, inserts...)
	}
	ret.Attrs = op.Attrs.Copy()
	op.Erase()
	return true, nil
}

// callPattern lowers tt.call.  The caller's scratch base is appended as a trailing argument, the callee's
// results are packed into one aggregate if there are two or more, and each field is extracted back out so that
// callers observe the original result arity.
type callPattern struct {
	pass *Pass
}

func (pat *callPattern) Kind() ir.Kind { return ir.TTCall }
func (pat *callPattern) Benefit() int  { return 1 }

func (pat *callPattern) MatchAndRewrite(op *ir.Operation, rw *Rewriter) (bool, error) {
	caller := op.Function()
	callee, _ := op.Attrs[ir.AttrCallee].(*ir.StringAttr)
	contract.Assertf(callee != nil, "Call without a callee attribute")
	bld := ir.NewBuilderBefore(op)

	// Thread the caller's scratch base through as the trailing argument.
	operands := op.Operands()
	operands = append(operands, pat.pass.callerScratchBase(bld, caller))

	// Pack the result types into a struct.
	var resultTypes []ir.Type
	for _, res := range op.Results() {
		resultTypes = append(resultTypes, res.Type())
	}
	packedTy, ok := rw.tc.PackFunctionResults(resultTypes)
	if !ok {
		rw.sink.Errorf(irerrors.ErrorUnpackableResultType.At(op), callee.Value)
		return false, &UnpackableResultTypeError{Callee: callee.Value}
	}

	var callResults []ir.Type
	if packedTy != nil {
		callResults = []ir.Type{packedTy}
	}
	call := bld.New(ir.LLVMCall, callResults, operands...)
	call.Attrs = op.Attrs.Copy()

	// If < 2 results, packing did not do anything and the call's results stand in directly.  Otherwise extract
	// the individual fields so the original result list is recovered positionally.
	var repls []*ir.Value
	if op.NumResults() < 2 {
		repls = call.Results()
	} else {
		var extracts []*ir.Operation
		for i, t := range resultTypes {
			ext := bld.New(ir.LLVMExtractValue, []ir.Type{rw.tc.ConvertType(t)}, call.Result(0))
			ext.Attrs.SetInt(ir.AttrIndex, int64(i))
			extracts = append(extracts, ext)
			repls = append(repls, ext.Result(0))
		}
		ir.PropagateMetadata(op, extracts...)
	}
	rw.ReplaceOp(op, repls...)
	return true, nil
}

// callerScratchBase materializes the scratch base a call site must pass: the caller's own base, offset by the
// allocation analysis's assignment when one has been fixed, else obtained fresh.
func (p *Pass) callerScratchBase(bld *ir.Builder, caller *ir.Function) *ir.Value {
	base := p.stackPointer(bld, caller)
	if off, fixed := caller.Attrs.Int(ir.AttrAllocationOffset); fixed && off > 0 {
		ptrTy := ir.NewPointerType(ir.SharedAddressSpace)
		gep := bld.New(ir.LLVMGEP, []ir.Type{ptrTy}, base, bld.ConstantI32(off).Result(0))
		return gep.Result(0)
	}
	return base
}

// stackPointer returns a function's scratch base: device functions read their trailing parameter, kernels read
// the module-wide symbol (or the family's intrinsic when no symbol exists).
func (p *Pass) stackPointer(bld *ir.Builder, f *ir.Function) *ir.Value {
	ptrTy := ir.NewPointerType(ir.SharedAddressSpace)
	if !f.Kernel() {
		return scratchParam(f)
	}
	if p.cfg.emitScratchGlobal {
		addr := bld.New(ir.LLVMAddressOf, []ir.Type{ptrTy})
		addr.Attrs.SetString(ir.AttrGlobal, scratchGlobalName)
		return addr.Result(0)
	}
	base := bld.New(p.cfg.kernelScratchBase, []ir.Type{ptrTy})
	return base.Result(0)
}
