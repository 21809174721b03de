// Copyright 2017, Pulumi Corporation.  All rights reserved.

package conversion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/analysis"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/testutil"
)

// testTileLibrary stands in for the external instruction-selection rule libraries: it lowers the tile-parallel
// operations the test modules use into the low-level vocabulary.
func testTileLibrary(tc *TypeConverter, set *PatternSet, numWarps int,
	axisInfo *analysis.ModuleAxisInfo, target Target, benefit int) {
	set.Add(
		&kindPattern{from: ir.TTLoad, to: ir.LLVMLoad, benefit: benefit},
		&kindPattern{from: ir.TTStore, to: ir.LLVMStore, benefit: benefit},
		&kindPattern{from: ir.TTSplat, to: ir.LLVMBitcast, benefit: benefit},
		&kindPattern{from: ir.TTGetProgramID, to: ir.GPUBlockID, benefit: benefit},
		&kindPattern{from: ir.TTGConvertLayout, to: ir.LLVMBitcast, benefit: benefit},
		&kindPattern{from: ir.TensorInsertSlice, to: ir.LLVMStore, benefit: benefit},
	)
}

func newTestPass(t *testing.T, opts Options) (*Pass, *testutil.TestDiagSink) {
	sink := testutil.NewTestDiagSink()
	opts.Diag = sink
	if opts.Libraries == nil {
		opts.Libraries = []PopulateFunc{testTileLibrary}
	}
	p, err := NewPass(opts)
	assert.NoError(t, err)
	return p, sink
}

// moduleKindCounts tallies operation kinds across the whole module.
func moduleKindCounts(m *ir.Module) map[ir.Kind]int {
	counts := make(map[ir.Kind]int)
	m.WalkOps(func(op *ir.Operation) {
		counts[op.Kind()]++
	})
	return counts
}

func TestPassAmendsDeviceFunctions(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()
	helper := m.NewFunction("helper", ir.NewFunctionType([]ir.Type{ir.I32}, nil))
	ir.NewBuilderAtEnd(helper.Entry()).New(ir.TTReturn, nil)

	kern := m.NewKernel("kern", ir.NewFunctionType(nil, nil))
	bld := ir.NewBuilderAtEnd(kern.Entry())
	c0 := bld.ConstantI32(0)
	call := bld.New(ir.TTCall, nil, c0.Result(0))
	call.Attrs.SetString(ir.AttrCallee, "helper")
	bld.New(ir.TTReturn, nil)

	p, sink := newTestPass(t, Options{Target: NVVM, ComputeCapability: 90})
	assert.NoError(t, p.Run(m))
	assert.True(t, sink.Success())

	// The device function gained exactly one trailing scratch pointer parameter.
	amended := m.Func("helper")
	assert.NotNil(t, amended)
	assert.Equal(t, 2, len(amended.Type().Params))
	assert.Equal(t, 2, len(amended.Params()))
	assert.Equal(t, 2, len(amended.ArgAttrs))
	trailing, ok := amended.Params()[1].Type().(*ir.PointerType)
	assert.True(t, ok)
	assert.Equal(t, ir.SharedAddressSpace, trailing.AddressSpace)
	assert.True(t, amended.Attrs.Bool(ir.AttrNoinline))

	// The kernel signature is untouched; it is decorated with the NVIDIA launch bounds instead.
	kern = m.Func("kern")
	assert.Equal(t, 0, len(kern.Type().Params))
	assert.True(t, kern.Attrs.Bool(ir.AttrNVVMKernel))
	maxntid, _ := kern.Attrs.Int(ir.AttrNVVMMaxNTID)
	assert.Equal(t, int64(128), maxntid)

	// The call site threads the kernel's scratch base through as the trailing argument.
	var lowered *ir.Operation
	kern.WalkOps(func(op *ir.Operation) {
		if op.Kind() == ir.LLVMCall {
			lowered = op
		}
	})
	assert.NotNil(t, lowered)
	assert.Equal(t, 2, lowered.NumOperands())
	base := lowered.Operand(1).DefiningOp()
	assert.NotNil(t, base)
	assert.Equal(t, ir.LLVMAddressOf, base.Kind())
	global, _ := base.Attrs[ir.AttrGlobal].(*ir.StringAttr)
	assert.NotNil(t, global)
	assert.Equal(t, "global_smem", global.Value)

	// No tile-parallel leftovers anywhere.
	counts := moduleKindCounts(m)
	assert.Equal(t, 0, counts[ir.TTCall])
	assert.Equal(t, 0, counts[ir.TTReturn])
}

func TestPassDeclaresSharedMemory(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()
	kern := m.NewKernel("kern", ir.NewFunctionType(nil, nil))
	ir.NewBuilderAtEnd(kern.Entry()).New(ir.TTReturn, nil)

	p, _ := newTestPass(t, Options{Target: NVVM, ComputeCapability: 90})
	assert.NoError(t, p.Run(m))

	g := m.Global("global_smem")
	assert.NotNil(t, g)
	arr, ok := g.Type.(*ir.ArrayType)
	assert.True(t, ok)
	assert.Equal(t, int64(0), arr.Size)
	assert.Same(t, ir.Type(ir.I8), arr.Elem)
	assert.Equal(t, ir.ExternalLinkage, g.Linkage)
	assert.Equal(t, 16, g.Alignment)
	assert.Equal(t, ir.SharedAddressSpace, g.AddressSpace)
}

func TestPassGENXScratchBase(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()
	helper := m.NewFunction("helper", ir.NewFunctionType(nil, nil))
	ir.NewBuilderAtEnd(helper.Entry()).New(ir.TTReturn, nil)

	kern := m.NewKernel("kern", ir.NewFunctionType(nil, nil))
	bld := ir.NewBuilderAtEnd(kern.Entry())
	call := bld.New(ir.TTCall, nil)
	call.Attrs.SetString(ir.AttrCallee, "helper")
	bld.New(ir.TTReturn, nil)

	p, _ := newTestPass(t, Options{Target: GENX, ComputeCapability: 90})
	assert.NoError(t, p.Run(m))

	// No module-level scratch symbol for this family; the base comes from an intrinsic instead.
	assert.Nil(t, m.Global("global_smem"))

	var lowered *ir.Operation
	m.Func("kern").WalkOps(func(op *ir.Operation) {
		if op.Kind() == ir.LLVMCall {
			lowered = op
		}
	})
	assert.NotNil(t, lowered)
	base := lowered.Operand(0).DefiningOp()
	assert.NotNil(t, base)
	assert.Equal(t, ir.GENXLocalMemBase, base.Kind())

	kern = m.Func("kern")
	assert.True(t, kern.Attrs.Bool(ir.AttrGENXKernel))
	wg, _ := kern.Attrs[ir.AttrGENXMaxWGSize].(*ir.IntArrayAttr)
	assert.NotNil(t, wg)
	assert.Equal(t, []int64{128, 1, 1}, wg.Values)
}

func TestPassPacksMultipleResults(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()
	pair := m.NewFunction("pair", ir.NewFunctionType([]ir.Type{ir.I32}, []ir.Type{ir.I32, ir.F32}))
	pbld := ir.NewBuilderAtEnd(pair.Entry())
	fval := pbld.Undef(ir.F32)
	pbld.New(ir.TTReturn, nil, pair.Params()[0], fval.Result(0))

	kern := m.NewKernel("kern", ir.NewFunctionType(nil, nil))
	kbld := ir.NewBuilderAtEnd(kern.Entry())
	c0 := kbld.ConstantI32(0)
	call := kbld.New(ir.TTCall, []ir.Type{ir.I32, ir.F32}, c0.Result(0))
	call.Attrs.SetString(ir.AttrCallee, "pair")
	kbld.New(ir.ArithAddI, []ir.Type{ir.I32}, call.Result(0), call.Result(0))
	kbld.New(ir.ArithMulF, []ir.Type{ir.F32}, call.Result(1), call.Result(1))
	kbld.New(ir.TTReturn, nil)

	p, _ := newTestPass(t, Options{Target: NVVM, ComputeCapability: 90})
	assert.NoError(t, p.Run(m))

	// The device function returns one packed aggregate built by an insertvalue chain.
	ret := terminatorOf(m.Func("pair"))
	assert.Equal(t, ir.LLVMReturn, ret.Kind())
	assert.Equal(t, 1, ret.NumOperands())
	ins1 := ret.Operand(0).DefiningOp()
	assert.Equal(t, ir.LLVMInsertValue, ins1.Kind())
	ix1, _ := ins1.Attrs.Int(ir.AttrIndex)
	assert.Equal(t, int64(1), ix1)
	ins0 := ins1.Operand(0).DefiningOp()
	assert.Equal(t, ir.LLVMInsertValue, ins0.Kind())
	ix0, _ := ins0.Attrs.Int(ir.AttrIndex)
	assert.Equal(t, int64(0), ix0)
	assert.Equal(t, ir.LLVMUndef, ins0.Operand(0).DefiningOp().Kind())

	// The caller sees its two results extracted back out positionally.
	var loweredCall *ir.Operation
	var add, mul *ir.Operation
	m.Func("kern").WalkOps(func(op *ir.Operation) {
		switch op.Kind() {
		case ir.LLVMCall:
			loweredCall = op
		case ir.LLVMAdd:
			add = op
		case ir.LLVMFMul:
			mul = op
		}
	})
	assert.NotNil(t, loweredCall)
	assert.Equal(t, 1, loweredCall.NumResults())
	_, isStruct := loweredCall.Result(0).Type().(*ir.StructType)
	assert.True(t, isStruct)

	ext0 := add.Operand(0).DefiningOp()
	assert.Equal(t, ir.LLVMExtractValue, ext0.Kind())
	i0, _ := ext0.Attrs.Int(ir.AttrIndex)
	assert.Equal(t, int64(0), i0)
	ext1 := mul.Operand(0).DefiningOp()
	assert.Equal(t, ir.LLVMExtractValue, ext1.Kind())
	i1, _ := ext1.Attrs.Int(ir.AttrIndex)
	assert.Equal(t, int64(1), i1)
	assert.Same(t, loweredCall.Result(0), ext0.Operand(0))
	assert.Same(t, loweredCall.Result(0), ext1.Operand(0))
}

func terminatorOf(f *ir.Function) *ir.Operation {
	return f.Entry().Terminator()
}

func TestPassRejectsKernelReturnWithOperands(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()
	kern := m.NewKernel("kern", ir.NewFunctionType(nil, []ir.Type{ir.I32}))
	bld := ir.NewBuilderAtEnd(kern.Entry())
	c0 := bld.ConstantI32(0)
	bld.New(ir.TTReturn, nil, c0.Result(0))

	p, sink := newTestPass(t, Options{Target: NVVM, ComputeCapability: 90})
	err := p.Run(m)
	assert.Error(t, err)

	var bad *InvalidKernelSignatureError
	assert.True(t, errors.As(err, &bad))
	assert.Equal(t, "kern", bad.Kernel)
	assert.Equal(t, 1, bad.Operands)

	var leg *LegalizationError
	assert.True(t, errors.As(err, &leg))
	assert.Equal(t, "calling convention", leg.Phase)

	assert.False(t, sink.Success())
}

func TestPassFoldsClusterID(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()
	kern := m.NewKernel("kern", ir.NewFunctionType(nil, nil))
	bld := ir.NewBuilderAtEnd(kern.Entry())
	id := bld.New(ir.NVGPUClusterCTAID, []ir.Type{ir.I32})
	bld.New(ir.ArithAddI, []ir.Type{ir.I32}, id.Result(0), id.Result(0))
	bld.New(ir.TTReturn, nil)

	p, _ := newTestPass(t, Options{Target: NVVM, ComputeCapability: 90})
	assert.NoError(t, p.Run(m))

	counts := moduleKindCounts(m)
	assert.Equal(t, 0, counts[ir.NVGPUClusterCTAID])

	var add *ir.Operation
	m.Func("kern").WalkOps(func(op *ir.Operation) {
		if op.Kind() == ir.LLVMAdd {
			add = op
		}
	})
	assert.NotNil(t, add)
	zero := add.Operand(0).DefiningOp()
	assert.Equal(t, ir.LLVMConstant, zero.Kind())
	v, _ := zero.Attrs.Int(ir.AttrValue)
	assert.Equal(t, int64(0), v)
}

func TestPassKeepsClusterIDWithMultipleCTAs(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()
	m.Attrs.SetInt(ir.AttrNumCTAs, 2)
	kern := m.NewKernel("kern", ir.NewFunctionType(nil, nil))
	bld := ir.NewBuilderAtEnd(kern.Entry())
	id := bld.New(ir.NVGPUClusterCTAID, []ir.Type{ir.I32})
	bld.New(ir.ArithAddI, []ir.Type{ir.I32}, id.Result(0), id.Result(0))
	bld.New(ir.TTReturn, nil)

	p, _ := newTestPass(t, Options{Target: NVVM, ComputeCapability: 90})
	assert.NoError(t, p.Run(m))

	counts := moduleKindCounts(m)
	assert.Equal(t, 1, counts[ir.NVGPUClusterCTAID])
}

func TestPassLowersWholeKernel(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()
	kern := m.NewKernel("kern", ir.NewFunctionType(nil, nil))
	bld := ir.NewBuilderAtEnd(kern.Entry())
	tensorTy := ir.NewTensorType([]int64{128}, ir.I32, &ir.BlockedEncoding{})
	pid := bld.New(ir.TTGetProgramID, []ir.Type{ir.I32})
	splat := bld.New(ir.TTSplat, []ir.Type{tensorTy}, pid.Result(0))
	cl1 := bld.New(ir.TTGConvertLayout, []ir.Type{tensorTy}, splat.Result(0))
	cl1.Attrs.SetInt(ir.AttrAllocationSize, 128)
	cl2 := bld.New(ir.TTGConvertLayout, []ir.Type{tensorTy}, cl1.Result(0))
	cl2.Attrs.SetInt(ir.AttrAllocationSize, 128)
	bld.New(ir.TTStore, nil, cl2.Result(0))
	bld.New(ir.TTReturn, nil)

	p, sink := newTestPass(t, Options{Target: NVVM, ComputeCapability: 90})
	assert.NoError(t, p.Run(m))
	assert.True(t, sink.Success())

	// Only the target vocabulary remains.
	m.WalkOps(func(op *ir.Operation) {
		d := op.Kind().Dialect()
		legal := d == ir.DialectLLVM || d == ir.DialectNVVM || d == ir.DialectNVGPU ||
			d == ir.DialectIndex || op.Kind() == ir.BuiltinUnrealizedCast
		assert.True(t, legal, "unexpected leftover %v", op.Kind())
	})

	// The two scratch users conflicted, so exactly one barrier landed between them, lowered natively.
	counts := moduleKindCounts(m)
	assert.Equal(t, 1, counts[ir.NVVMBarrier0])

	// The kernel was marked offset-fixed at the base of the module's scratch block.
	base, fixed := m.Func("kern").Attrs.Int(ir.AttrAllocationOffset)
	assert.True(t, fixed)
	assert.Equal(t, int64(0), base)
}

func TestPassThreadsCallerScratchOffset(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()

	helper := m.NewFunction("helper", ir.NewFunctionType(nil, nil))
	hbld := ir.NewBuilderAtEnd(helper.Entry())
	hscratch := hbld.New(ir.TTGConvertLayout, nil)
	hscratch.Attrs.SetInt(ir.AttrAllocationSize, 16)
	hbld.New(ir.TTReturn, nil)

	kern := m.NewKernel("kern", ir.NewFunctionType(nil, nil))
	kbld := ir.NewBuilderAtEnd(kern.Entry())
	kscratch := kbld.New(ir.TTGConvertLayout, nil)
	kscratch.Attrs.SetInt(ir.AttrAllocationSize, 16)
	call := kbld.New(ir.TTCall, nil)
	call.Attrs.SetString(ir.AttrCallee, "helper")
	kbld.New(ir.TTReturn, nil)

	p, _ := newTestPass(t, Options{Target: NVVM, ComputeCapability: 90})
	assert.NoError(t, p.Run(m))

	// The kernel's scratch lives past the helper's 16 bytes, so the call site offsets the base accordingly.
	var lowered *ir.Operation
	m.Func("kern").WalkOps(func(op *ir.Operation) {
		if op.Kind() == ir.LLVMCall {
			lowered = op
		}
	})
	assert.NotNil(t, lowered)
	gep := lowered.Operand(0).DefiningOp()
	assert.Equal(t, ir.LLVMGEP, gep.Kind())
	assert.Equal(t, ir.LLVMAddressOf, gep.Operand(0).DefiningOp().Kind())
	off := gep.Operand(1).DefiningOp()
	assert.Equal(t, ir.LLVMConstant, off.Kind())
	v, _ := off.Attrs.Int(ir.AttrValue)
	assert.Equal(t, int64(16), v)
}

func TestPassEffectiveWarpCount(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()
	m.Attrs.SetInt(ir.AttrNumWarps, 4)
	m.Attrs.SetInt(ir.AttrWarpGroupsPerCTA, 3)
	kern := m.NewKernel("kern", ir.NewFunctionType(nil, nil))
	ir.NewBuilderAtEnd(kern.Entry()).New(ir.TTReturn, nil)

	p, _ := newTestPass(t, Options{Target: NVVM, ComputeCapability: 90})
	assert.NoError(t, p.Run(m))

	// Launch bounds account for every warp group, not just the base warp count.
	maxntid, _ := m.Func("kern").Attrs.Int(ir.AttrNVVMMaxNTID)
	assert.Equal(t, int64(32*4*3), maxntid)
}

func TestSnapshotTensorPointers(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()
	kern := m.NewKernel("kern", ir.NewFunctionType([]ir.Type{ir.NewPointerType(ir.GlobalAddressSpace)}, nil))
	bld := ir.NewBuilderAtEnd(kern.Entry())
	ptrTy := ir.NewPointerType(ir.GlobalAddressSpace)
	sharedTy := ir.NewTensorType([]int64{16, 16}, ir.F16, &ir.SharedEncoding{Vec: 1})

	maker := bld.New(ir.TTMakeTensorPtr, []ir.Type{ptrTy}, kern.Params()[0])
	adv1 := bld.New(ir.TTAdvance, []ir.Type{ptrTy}, maker.Result(0))
	adv2 := bld.New(ir.TTAdvance, []ir.Type{ptrTy}, adv1.Result(0))
	idx := bld.ConstantI32(0)
	tma := bld.New(ir.TTNGInsertSliceTMA, []ir.Type{sharedTy}, adv2.Result(0), idx.Result(0))

	// A copy whose pointer does not come from a materialization is not recorded.
	plain := bld.New(ir.TTNGStoreAsyncTMA, nil, kern.Params()[0])
	bld.New(ir.TTReturn, nil)

	ptrs := snapshotTensorPointers(m)
	assert.Equal(t, 1, len(ptrs))
	assert.Same(t, maker, ptrs[tma.ID()])
	_, has := ptrs[plain.ID()]
	assert.False(t, has)
}

func TestFoldSplatMasks(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()
	kern := m.NewKernel("kern", ir.NewFunctionType([]ir.Type{ir.NewPointerType(ir.GlobalAddressSpace), ir.I1}, nil))
	bld := ir.NewBuilderAtEnd(kern.Entry())
	sharedTy := ir.NewTensorType([]int64{16, 16}, ir.F16, &ir.SharedEncoding{Vec: 1})
	maskTy := ir.NewTensorType([]int64{16, 16}, ir.I1, &ir.BlockedEncoding{})

	dst := bld.Undef(ir.NewPointerType(ir.SharedAddressSpace))
	idx := bld.ConstantI32(0)
	mask := bld.New(ir.TTSplat, []ir.Type{maskTy}, kern.Params()[1])
	tma := bld.New(ir.TTNGInsertSliceTMA, []ir.Type{sharedTy},
		kern.Params()[0], dst.Result(0), idx.Result(0), mask.Result(0))
	bld.New(ir.TTReturn, nil)

	p, _ := newTestPass(t, Options{Target: NVVM, ComputeCapability: 90})
	p.foldSplatMasks(m)

	assert.Same(t, kern.Params()[1], tma.Operand(asyncCopyMask))
}

// testTMALibrary lowers the NVIDIA tensor-copy operations and records the provenance and metadata it was handed.
func testTMALibrary(sawPtrs *int) PopulateTensorPtrFunc {
	return func(tc *TypeConverter, set *PatternSet, numWarps int, axisInfo *analysis.ModuleAxisInfo,
		tma *TMAMetadata, ptrs TensorPointerMap, target Target, benefit int) {
		*sawPtrs = len(ptrs)
		*tma = append(*tma, TMADescriptor{Kernel: "kern", ArgIndex: 0, ElemType: ir.F16, BoxDims: []int64{16, 16}})
		set.Add(
			&kindPattern{from: ir.TTNGInsertSliceTMA, to: ir.LLVMStore, benefit: benefit},
			&kindPattern{from: ir.TTMakeTensorPtr, to: ir.LLVMBitcast, benefit: benefit},
			&kindPattern{from: ir.TTAdvance, to: ir.LLVMGEP, benefit: benefit},
		)
	}
}

func TestPassCollectsTMAMetadata(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()
	kern := m.NewKernel("kern", ir.NewFunctionType([]ir.Type{ir.NewPointerType(ir.GlobalAddressSpace)}, nil))
	bld := ir.NewBuilderAtEnd(kern.Entry())
	ptrTy := ir.NewPointerType(ir.GlobalAddressSpace)
	sharedTy := ir.NewTensorType([]int64{16, 16}, ir.F16, &ir.SharedEncoding{Vec: 1})

	maker := bld.New(ir.TTMakeTensorPtr, []ir.Type{ptrTy}, kern.Params()[0])
	adv := bld.New(ir.TTAdvance, []ir.Type{ptrTy}, maker.Result(0))
	idx := bld.ConstantI32(0)
	tmaOp := bld.New(ir.TTNGInsertSliceTMA, []ir.Type{sharedTy}, adv.Result(0), idx.Result(0))
	cl := bld.New(ir.TTGConvertLayout, []ir.Type{sharedTy}, tmaOp.Result(0))
	bld.New(ir.TTStore, nil, cl.Result(0))
	bld.New(ir.TTReturn, nil)

	var out TMAMetadata
	sawPtrs := 0
	p, sink := newTestPass(t, Options{
		Target:             NVVM,
		ComputeCapability:  90,
		TMAMetadata:        &out,
		TensorPtrLibraries: []PopulateTensorPtrFunc{testTMALibrary(&sawPtrs)},
	})
	assert.NoError(t, p.Run(m))
	assert.True(t, sink.Success())

	// The rule library observed the provenance snapshot and filled the metadata out-slot.
	assert.Equal(t, 1, sawPtrs)
	assert.Equal(t, 1, len(out))
	assert.Equal(t, "kern", out[0].Kernel)
	assert.Equal(t, []int64{16, 16}, out[0].BoxDims)
}
