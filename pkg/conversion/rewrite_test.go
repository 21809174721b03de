// Copyright 2017, Pulumi Corporation.  All rights reserved.

package conversion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/testutil"
)

func TestConversionTargetLegality(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()
	f := m.NewFunction("f", ir.NewFunctionType(nil, nil))
	bld := ir.NewBuilderAtEnd(f.Entry())
	llvmOp := bld.ConstantI32(0)
	ttOp := bld.New(ir.TTGetProgramID, []ir.Type{ir.I32})
	castOp := bld.New(ir.BuiltinUnrealizedCast, []ir.Type{ir.I32}, ttOp.Result(0))

	// Non-strict: only explicitly illegal kinds require conversion.
	lax := newConversionTarget(false, ir.DialectLLVM)
	assert.False(t, lax.Illegal(llvmOp))
	assert.False(t, lax.Illegal(ttOp))
	lax.AddIllegalKind(ir.TTGetProgramID)
	assert.True(t, lax.Illegal(ttOp))

	// Strict: everything outside the legal dialects requires conversion, except the conversion cast itself.
	strict := newConversionTarget(true, ir.DialectLLVM)
	assert.False(t, strict.Illegal(llvmOp))
	assert.True(t, strict.Illegal(ttOp))
	assert.False(t, strict.Illegal(castOp))
}

// recordingPattern tags every operation it rewrites so tests can observe which rule fired.
type recordingPattern struct {
	kind    ir.Kind
	benefit int
	tag     string
	fired   *[]string
}

func (p *recordingPattern) Kind() ir.Kind { return p.kind }
func (p *recordingPattern) Benefit() int  { return p.benefit }

func (p *recordingPattern) MatchAndRewrite(op *ir.Operation, rw *Rewriter) (bool, error) {
	*p.fired = append(*p.fired, p.tag)
	repl := ir.NewBuilderBefore(op).ConstantI32(0)
	rw.ReplaceOp(op, repl.Result(0))
	return true, nil
}

func TestPatternBenefitOrdering(t *testing.T) {
	t.Parallel()

	var fired []string
	set := NewPatternSet()
	set.Add(
		&recordingPattern{kind: ir.TTGetProgramID, benefit: 1, tag: "low", fired: &fired},
		&recordingPattern{kind: ir.TTGetProgramID, benefit: 10, tag: "high", fired: &fired},
	)

	pats := set.For(ir.TTGetProgramID)
	assert.Equal(t, 2, len(pats))
	assert.Equal(t, 10, pats[0].Benefit())

	m := ir.NewModule()
	f := m.NewFunction("f", ir.NewFunctionType(nil, nil))
	ir.NewBuilderAtEnd(f.Entry()).New(ir.TTGetProgramID, []ir.Type{ir.I32})

	ct := newConversionTarget(false, ir.DialectLLVM)
	ct.AddIllegalKind(ir.TTGetProgramID)
	sink := testutil.NewTestDiagSink()
	rw := &Rewriter{tc: NewTypeConverter(128), sink: sink}

	err := applyPartialConversion(m, "test", ct, set, rw)
	assert.NoError(t, err)
	assert.Equal(t, []string{"high"}, fired)
}

func TestConversionChainsAcrossSweeps(t *testing.T) {
	t.Parallel()

	// tt.get_program_id lowers to gpu.block_id, which a later sweep lowers to the native intrinsic.
	m := ir.NewModule()
	f := m.NewFunction("f", ir.NewFunctionType(nil, nil))
	ir.NewBuilderAtEnd(f.Entry()).New(ir.TTGetProgramID, []ir.Type{ir.I32})

	set := NewPatternSet()
	set.Add(&kindPattern{from: ir.TTGetProgramID, to: ir.GPUBlockID, benefit: 1})
	populateGPUToNVVMPatterns(set, NewTypeConverter(128))

	ct := newConversionTarget(true, ir.DialectLLVM, ir.DialectNVVM)
	sink := testutil.NewTestDiagSink()
	rw := &Rewriter{tc: NewTypeConverter(128), sink: sink}

	err := applyPartialConversion(m, "test", ct, set, rw)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.Entry().NumOps())
	assert.Equal(t, ir.NVVMBlockIDX, f.Entry().Ops()[0].Kind())
}

func TestConversionReportsEveryLeftover(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()
	f := m.NewFunction("f", ir.NewFunctionType(nil, nil))
	bld := ir.NewBuilderAtEnd(f.Entry())
	bld.New(ir.TTGetProgramID, []ir.Type{ir.I32})
	bld.New(ir.GPUBarrier, nil)

	ct := newConversionTarget(true, ir.DialectLLVM)
	sink := testutil.NewTestDiagSink()
	rw := &Rewriter{tc: NewTypeConverter(128), sink: sink}

	err := applyPartialConversion(m, "test", ct, NewPatternSet(), rw)
	assert.Error(t, err)

	// One diagnostic per leftover operation plus the phase summary.
	assert.Equal(t, 3, sink.Errors())

	lerr, ok := err.(*LegalizationError)
	assert.True(t, ok)
	assert.Equal(t, "test", lerr.Phase)
}
