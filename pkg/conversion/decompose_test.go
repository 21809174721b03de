// Copyright 2017, Pulumi Corporation.  All rights reserved.

package conversion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/testutil"
)

// asyncCopyModule builds a kernel containing one async tile copy bracketed by a commit and a wait marker.  The
// element type controls the effective copy width: f32 hits an eligible 4-byte width, f16 an ineligible 2-byte one.
func asyncCopyModule(elem ir.Type) (*ir.Module, *ir.Function) {
	m := ir.NewModule()
	ptrTensor := ir.NewTensorType([]int64{16, 16}, ir.NewPointerType(ir.GlobalAddressSpace), &ir.BlockedEncoding{})
	sharedTensor := ir.NewTensorType([]int64{16, 16}, elem, &ir.SharedEncoding{Vec: 1})
	f := m.NewKernel("kern", ir.NewFunctionType([]ir.Type{ptrTensor, sharedTensor}, nil))

	bld := ir.NewBuilderAtEnd(f.Entry())
	idx := bld.ConstantI32(0)
	copyOp := bld.New(ir.TTGInsertSliceAsync, []ir.Type{sharedTensor},
		f.Params()[0], f.Params()[1], idx.Result(0))
	bld.New(ir.TTGAsyncCommitGroup, nil)
	wait := bld.New(ir.TTGAsyncWait, nil)
	wait.Attrs.SetInt(ir.AttrWaitNum, 2)
	ret := bld.New(ir.TTReturn, nil)

	// Downstream consumer of the copied tile, so the rewrite has uses to redirect.
	ir.NewBuilderBefore(ret).New(ir.TTGConvertLayout, []ir.Type{sharedTensor}, copyOp.Result(0))
	return m, f
}

func kindCounts(f *ir.Function) map[ir.Kind]int {
	counts := make(map[ir.Kind]int)
	f.WalkOps(func(op *ir.Operation) {
		counts[op.Kind()]++
	})
	return counts
}

func newDecomposePass(t *testing.T, target Target, capability int) *Pass {
	p, err := NewPass(Options{
		Target:            target,
		ComputeCapability: capability,
		Diag:              testutil.NewTestDiagSink(),
	})
	assert.NoError(t, err)
	return p
}

func TestDecomposeBelowSupportThreshold(t *testing.T) {
	t.Parallel()

	m, f := asyncCopyModule(ir.F16)
	p := newDecomposePass(t, GENX, 70)
	p.decomposeAsyncCopies(m)

	counts := kindCounts(f)
	assert.Equal(t, 0, counts[ir.TTGInsertSliceAsync])
	assert.Equal(t, 1, counts[ir.TTLoad])
	assert.Equal(t, 1, counts[ir.TensorInsertSlice])

	// Below the support threshold the grouping markers are meaningless and vanish outright.
	assert.Equal(t, 0, counts[ir.TTGAsyncCommitGroup])
	assert.Equal(t, 0, counts[ir.TTGAsyncWait])
}

func TestDecomposeIneligibleWidthRewritesWaits(t *testing.T) {
	t.Parallel()

	m, f := asyncCopyModule(ir.F16)
	p := newDecomposePass(t, GENX, 90)
	p.decomposeAsyncCopies(m)

	counts := kindCounts(f)
	assert.Equal(t, 0, counts[ir.TTGInsertSliceAsync])
	assert.Equal(t, 1, counts[ir.TTLoad])

	// The commit marker survives, but the wait loses its precise count and waits for everything.
	assert.Equal(t, 1, counts[ir.TTGAsyncCommitGroup])
	assert.Equal(t, 1, counts[ir.TTGAsyncWait])
	f.WalkOps(func(op *ir.Operation) {
		if op.Kind() == ir.TTGAsyncWait {
			num, ok := op.Attrs.Int(ir.AttrWaitNum)
			assert.True(t, ok)
			assert.Equal(t, int64(0), num)
		}
	})
}

func TestDecomposeEligibleWidthIsUntouched(t *testing.T) {
	t.Parallel()

	// f32 under unit contiguity is a 4-byte copy, which the hardware accepts natively.
	m, f := asyncCopyModule(ir.F32)
	p := newDecomposePass(t, GENX, 90)
	p.decomposeAsyncCopies(m)

	counts := kindCounts(f)
	assert.Equal(t, 1, counts[ir.TTGInsertSliceAsync])
	assert.Equal(t, 0, counts[ir.TTLoad])
	f.WalkOps(func(op *ir.Operation) {
		if op.Kind() == ir.TTGAsyncWait {
			num, _ := op.Attrs.Int(ir.AttrWaitNum)
			assert.Equal(t, int64(2), num)
		}
	})
}

func TestDecomposeIsIdempotent(t *testing.T) {
	t.Parallel()

	m, f := asyncCopyModule(ir.F16)
	p := newDecomposePass(t, GENX, 90)
	p.decomposeAsyncCopies(m)
	first := kindCounts(f)
	p.decomposeAsyncCopies(m)
	assert.Equal(t, first, kindCounts(f))
}

func TestDecomposeIsOffForNVVM(t *testing.T) {
	t.Parallel()

	m, f := asyncCopyModule(ir.F16)
	before := kindCounts(f)
	p := newDecomposePass(t, NVVM, 90)
	p.decomposeAsyncCopies(m)
	assert.Equal(t, before, kindCounts(f))
}

func TestDecomposePropagatesAgentMetadata(t *testing.T) {
	t.Parallel()

	m, f := asyncCopyModule(ir.F16)
	f.WalkOps(func(op *ir.Operation) {
		if op.Kind() == ir.TTGInsertSliceAsync {
			op.Attrs.SetInt(ir.AttrAsyncAgent, 1)
		}
	})

	p := newDecomposePass(t, GENX, 90)
	p.decomposeAsyncCopies(m)

	f.WalkOps(func(op *ir.Operation) {
		if op.Kind() == ir.TTLoad || op.Kind() == ir.TensorInsertSlice {
			agent, ok := op.Attrs.Int(ir.AttrAsyncAgent)
			assert.True(t, ok)
			assert.Equal(t, int64(1), agent)
		}
	})
}
