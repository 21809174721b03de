// Copyright 2017, Pulumi Corporation.  All rights reserved.

// Package conversion lowers tile-parallel GPU IR into the flat, target-specific low-level instruction form
// expected by the native backends.  The pass runs three ordered legalization phases -- signature lowering,
// calling-convention lowering, and bulk instruction lowering -- each against its own definition of legal IR.
// Phases either fully legalize their operation set or fail the whole pass; nothing is rolled back.
package conversion

import (
	"github.com/golang/glog"
	uuid "github.com/satori/go.uuid"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/analysis"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/diag"
	irerrors "github.com/chsasank/intel-xpu-backend-for-triton/pkg/errors"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// TensorPointerMap records, per asynchronous tensor-copy operation, the operation that originally materialized
// the tensor pointer it accesses.  The map is keyed by stable operation IDs and captured before the ABI rewrite,
// because that rewrite destroys the operand chains the provenance is derived from.
type TensorPointerMap map[uuid.UUID]*ir.Operation

// TMADescriptor is one entry of the tensor-descriptor metadata some memory rules emit for the launcher.
type TMADescriptor struct {
	Kernel   string  // the kernel the descriptor belongs to.
	ArgIndex int     // which kernel argument carries the tensor base address.
	ElemType ir.Type // the tensor element type.
	BoxDims  []int64 // the per-dimension tile extents.
}

// TMAMetadata collects tensor descriptors across the pass.
type TMAMetadata []TMADescriptor

// Options configures one lowering pass.
type Options struct {
	// ComputeCapability is the hardware version integer.
	ComputeCapability int
	// Target selects the backend family.
	Target Target
	// TMAMetadata, when non-nil, receives the tensor-descriptor metadata produced during lowering; when nil, a
	// local slot is used and discarded after the pass.
	TMAMetadata *TMAMetadata

	// The instruction-selection rule libraries participating in the bulk phase, one per operation family.
	Libraries           []PopulateFunc
	CapabilityLibraries []PopulateCapabilityFunc
	TensorPtrLibraries  []PopulateTensorPtrFunc

	// Diag is the diagnostics sink; a default stderr sink is used when nil.
	Diag diag.Sink
}

// Pass is the lowering pass.  A Pass may be reused across modules; a failed Run leaves its module partially
// rewritten and unusable, but the Pass itself carries no module state between runs except the provenance
// snapshot of the run in flight.
type Pass struct {
	opts         Options
	cfg          *targetConfig
	sink         diag.Sink
	tensorPtrMap TensorPointerMap
}

// NewPass creates a lowering pass for the given options, resolving the backend identifier into the dispatch
// table row every component consumes.
func NewPass(opts Options) (*Pass, error) {
	sink := opts.Diag
	if sink == nil {
		sink = diag.DefaultSink(diag.FormatOptions{})
	}
	cfg, ok := newTargetConfig(opts.Target)
	if !ok {
		sink.Errorf(irerrors.ErrorUnrecognizedTarget, int(opts.Target))
		return nil, &UnrecognizedTargetError{Target: opts.Target}
	}
	return &Pass{opts: opts, cfg: cfg, sink: sink}, nil
}

// Diag returns the pass's diagnostics sink.
func (p *Pass) Diag() diag.Sink { return p.sink }

// Run lowers the module in place.  On error the module is partially rewritten and must not be reused.
func (p *Pass) Run(m *ir.Module) error {
	contract.Require(m != nil, "m")
	glog.Infof("Lowering module to %v (capability %v)", p.cfg.target, p.opts.ComputeCapability)
	if glog.V(2) {
		defer glog.V(2).Infof("Lowering to %v completed w/ %v warnings and %v errors",
			p.cfg.target, p.sink.Warnings(), p.sink.Errors())
	}

	// Warp specialization may have changed the effective warp count without updating the base attribute.
	numWarps := m.NumWarps() * m.WarpGroupsPerCTA()

	// Preprocess: rewrite async copies the target cannot lower natively.
	p.decomposeAsyncCopies(m)

	// Allocate scratch memory and place barriers.  Both read operand chains of the original IR, so they must
	// finish before the first structural rewrite below.
	alloc := analysis.NewAllocation(m)
	analysis.NewMembar(alloc).Run(m)

	// Snapshot tensor-pointer provenance while the operand chains still exist.
	p.tensorPtrMap = snapshotTensorPointers(m)
	p.foldSplatMasks(m)

	tc := NewTypeConverter(numWarps * m.ThreadsPerWarp())
	rw := &Rewriter{tc: tc, sink: p.sink}

	// Phase 1: signature lowering plus structured-control-flow lowering.
	p.lowerSignatures(m, numWarps)
	sigTarget := p.functionConversionTarget()
	for _, k := range []ir.Kind{ir.SCFFor, ir.SCFIf, ir.SCFYield, ir.CFBranch, ir.CFCondBranch} {
		sigTarget.AddIllegalKind(k)
	}
	sigPatterns := NewPatternSet()
	populateSCFToCFPatterns(sigPatterns, 1)
	populateCFToLLVMPatterns(sigPatterns, 1)
	if err := applyPartialConversion(m, "signature lowering", sigTarget, sigPatterns, rw); err != nil {
		return err
	}

	// The scratch declaration precedes call lowering: converting a call requires every function's base.
	p.initSharedMemory(m)

	// Phase 2: calling convention.  Kept apart from phase 1 because the caller's own scratch base must already
	// be fixed when its calls are rewritten.
	callTarget := p.functionConversionTarget()
	callTarget.AddIllegalKind(ir.TTCall)
	callTarget.AddIllegalKind(ir.TTReturn)
	callPatterns := NewPatternSet()
	callPatterns.Add(&callPattern{pass: p}, &returnPattern{pass: p})
	if err := applyPartialConversion(m, "calling convention", callTarget, callPatterns, rw); err != nil {
		return err
	}

	// Phase 3: bulk instruction lowering against the target vocabulary, with the full rule libraries plus the
	// generic arithmetic, control-flow, and native-intrinsic lowerings.
	axisInfo := analysis.NewAxisInfo(m)
	tma := p.opts.TMAMetadata
	if tma == nil {
		var local TMAMetadata
		tma = &local
	}
	set := NewPatternSet()
	for _, lib := range p.opts.Libraries {
		lib(tc, set, numWarps, axisInfo, p.cfg.target, 10)
	}
	for _, lib := range p.opts.CapabilityLibraries {
		lib(tc, set, numWarps, axisInfo, p.opts.ComputeCapability, p.cfg.target, 10)
	}
	for _, lib := range p.opts.TensorPtrLibraries {
		lib(tc, set, numWarps, axisInfo, tma, p.tensorPtrMap, p.cfg.target, 10)
	}
	populateArithToLLVMPatterns(set, 1)
	populateSCFToCFPatterns(set, 1)
	populateCFToLLVMPatterns(set, 1)
	p.cfg.nativePatterns(set, tc)
	bulkTarget := p.fullConversionTarget()
	if err := applyPartialConversion(m, "bulk lowering", bulkTarget, set, rw); err != nil {
		return err
	}

	// A degenerate single-group program has no meaningful cluster id; fold every read to zero so downstream
	// code never special-cases it.
	if m.NumCTAs() == 1 {
		p.foldClusterIDs(m)
	}
	return nil
}

// functionConversionTarget is the legal set of the signature and calling-convention phases: the minimal
// control-flow and pointer vocabulary plus the target's native dialects.
func (p *Pass) functionConversionTarget() *ConversionTarget {
	ct := newConversionTarget(false, ir.DialectIndex, ir.DialectLLVM)
	for _, d := range p.cfg.nativeDialects {
		ct.AddLegalDialect(d)
	}
	return ct
}

// fullConversionTarget is the bulk phase's legal set: the target instruction vocabulary exclusively.  The
// tile-parallel and generic GPU-block vocabularies are illegal, as is everything else outside the table.
func (p *Pass) fullConversionTarget() *ConversionTarget {
	ct := newConversionTarget(true, ir.DialectIndex, ir.DialectLLVM)
	for _, d := range p.cfg.nativeDialects {
		ct.AddLegalDialect(d)
	}
	return ct
}

// snapshotTensorPointers captures, for every asynchronous tensor-copy operation, the tt.make_tensor_ptr that
// originally materialized the pointer it accesses.
func snapshotTensorPointers(m *ir.Module) TensorPointerMap {
	ptrs := make(TensorPointerMap)
	m.WalkOps(func(op *ir.Operation) {
		switch op.Kind() {
		case ir.TTNGInsertSliceTMA, ir.TTNGStoreAsyncTMA:
			if maker := traceTensorPtr(op.Operand(0)); maker != nil {
				ptrs[op.ID()] = maker
			}
		}
	})
	glog.V(2).Infof("Captured %v tensor-pointer provenance entries", len(ptrs))
	return ptrs
}

// traceTensorPtr walks a pointer operand chain back to the operation that materialized it, looking through
// pointer advances.  Returns nil when the chain does not originate in a tensor-pointer materialization.
func traceTensorPtr(v *ir.Value) *ir.Operation {
	for {
		def := v.DefiningOp()
		if def == nil {
			return nil
		}
		switch def.Kind() {
		case ir.TTMakeTensorPtr:
			return def
		case ir.TTAdvance:
			v = def.Operand(0)
		default:
			return nil
		}
	}
}

// foldSplatMasks drops splat wrappers around asynchronous tensor-copy masks: a mask splatted from one scalar is
// the scalar itself as far as the copy is concerned.
func (p *Pass) foldSplatMasks(m *ir.Module) {
	m.WalkOps(func(op *ir.Operation) {
		if op.Kind() != ir.TTNGInsertSliceTMA || op.NumOperands() <= asyncCopyMask {
			return
		}
		mask := op.Operand(asyncCopyMask)
		if splat := mask.DefiningOp(); splat != nil && splat.Kind() == ir.TTSplat {
			op.SetOperand(asyncCopyMask, splat.Operand(0))
		}
	})
}

// foldClusterIDs replaces every linearized cluster id read with the constant zero.
func (p *Pass) foldClusterIDs(m *ir.Module) {
	m.WalkOps(func(op *ir.Operation) {
		if op.Kind() != ir.NVGPUClusterCTAID {
			return
		}
		bld := ir.NewBuilderBefore(op)
		zero := bld.ConstantI32(0)
		op.ReplaceAllUsesWith(zero.Result(0))
		op.Erase()
	})
}
