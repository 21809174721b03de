// Copyright 2017, Pulumi Corporation.  All rights reserved.

package conversion

import (
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/analysis"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
)

// PopulateFunc is the shape of an instruction-selection rule library: an opaque function contributing rules for
// one operation family.  Libraries are black boxes to the orchestrator; it only sequences them.
type PopulateFunc func(tc *TypeConverter, set *PatternSet, numWarps int,
	axisInfo *analysis.ModuleAxisInfo, target Target, benefit int)

// PopulateCapabilityFunc is a rule library that additionally depends on the hardware version (elementwise and
// reduction families).
type PopulateCapabilityFunc func(tc *TypeConverter, set *PatternSet, numWarps int,
	axisInfo *analysis.ModuleAxisInfo, capability int, target Target, benefit int)

// PopulateTensorPtrFunc is a rule library that additionally consumes the tensor-pointer provenance map and emits
// tensor-descriptor metadata (memory and tensor-pointer families).
type PopulateTensorPtrFunc func(tc *TypeConverter, set *PatternSet, numWarps int,
	axisInfo *analysis.ModuleAxisInfo, tma *TMAMetadata, ptrs TensorPointerMap, target Target, benefit int)

// kindPattern rewrites one operation kind into another 1:1: same operands, converted result types, attributes
// carried over.  Most generic arithmetic, control-flow, and native-intrinsic rules are instances of it.
type kindPattern struct {
	from    ir.Kind
	to      ir.Kind
	benefit int
}

func (pat *kindPattern) Kind() ir.Kind { return pat.from }
func (pat *kindPattern) Benefit() int  { return pat.benefit }

func (pat *kindPattern) MatchAndRewrite(op *ir.Operation, rw *Rewriter) (bool, error) {
	bld := ir.NewBuilderBefore(op)
	var resultTypes []ir.Type
	for _, res := range op.Results() {
		resultTypes = append(resultTypes, rw.tc.ConvertType(res.Type()))
	}
	repl := bld.New(pat.to, resultTypes, op.Operands()...)
	repl.Attrs = op.Attrs.Copy()
	rw.ReplaceOp(op, repl.Results()...)
	return true, nil
}

// populateArithToLLVMPatterns contributes the generic arithmetic and math lowerings.
func populateArithToLLVMPatterns(set *PatternSet, benefit int) {
	for from, to := range map[ir.Kind]ir.Kind{
		ir.ArithConstant: ir.LLVMConstant,
		ir.ArithAddI:     ir.LLVMAdd,
		ir.ArithMulI:     ir.LLVMMul,
		ir.ArithAddF:     ir.LLVMFAdd,
		ir.ArithMulF:     ir.LLVMFMul,
		ir.MathExp:       ir.LLVMExp,
	} {
		set.Add(&kindPattern{from: from, to: to, benefit: benefit})
	}
}

// populateSCFToCFPatterns contributes the structured-control-flow lowering: structured loops and conditionals
// become their flat branch forms.
func populateSCFToCFPatterns(set *PatternSet, benefit int) {
	for from, to := range map[ir.Kind]ir.Kind{
		ir.SCFFor:   ir.CFBranch,
		ir.SCFIf:    ir.CFCondBranch,
		ir.SCFYield: ir.CFBranch,
	} {
		set.Add(&kindPattern{from: from, to: to, benefit: benefit})
	}
}

// populateCFToLLVMPatterns contributes the flat control-flow lowering.
func populateCFToLLVMPatterns(set *PatternSet, benefit int) {
	set.Add(&kindPattern{from: ir.CFBranch, to: ir.LLVMBranch, benefit: benefit})
	set.Add(&kindPattern{from: ir.CFCondBranch, to: ir.LLVMCondBranch, benefit: benefit})
}

// populateGPUToNVVMPatterns maps the generic GPU-block vocabulary onto NVIDIA intrinsics.
func populateGPUToNVVMPatterns(set *PatternSet, tc *TypeConverter) {
	set.Add(&kindPattern{from: ir.GPUThreadID, to: ir.NVVMThreadIDX, benefit: 1})
	set.Add(&kindPattern{from: ir.GPUBlockID, to: ir.NVVMBlockIDX, benefit: 1})
	set.Add(&kindPattern{from: ir.GPUBarrier, to: ir.NVVMBarrier0, benefit: 1})
}

// populateGPUToGENXPatterns maps the generic GPU-block vocabulary onto Intel intrinsics.
func populateGPUToGENXPatterns(set *PatternSet, tc *TypeConverter) {
	set.Add(&kindPattern{from: ir.GPUThreadID, to: ir.GENXThreadIDX, benefit: 1})
	set.Add(&kindPattern{from: ir.GPUBlockID, to: ir.GENXBlockIDX, benefit: 1})
	set.Add(&kindPattern{from: ir.GPUBarrier, to: ir.GENXBarrier, benefit: 1})
}
