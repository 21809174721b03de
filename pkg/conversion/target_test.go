// Copyright 2017, Pulumi Corporation.  All rights reserved.

package conversion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/testutil"
)

func TestTargetNames(t *testing.T) {
	t.Parallel()

	// Every target has a name and every name round-trips.
	for target, name := range Names {
		assert.Equal(t, target, Values[name])
		assert.Equal(t, name, target.String())
	}
	assert.Equal(t, "nvvm", NVVM.String())
	assert.Equal(t, "genx", GENX.String())
	assert.Equal(t, "rocdl", ROCDL.String())
}

func TestTargetConfigRows(t *testing.T) {
	t.Parallel()

	nv, ok := newTargetConfig(NVVM)
	assert.True(t, ok)
	assert.True(t, nv.emitScratchGlobal)
	assert.False(t, nv.decomposeAsyncCopies)
	assert.Contains(t, nv.nativeDialects, ir.DialectNVVM)
	assert.Contains(t, nv.nativeDialects, ir.DialectNVGPU)

	gx, ok := newTargetConfig(GENX)
	assert.True(t, ok)
	assert.False(t, gx.emitScratchGlobal)
	assert.True(t, gx.decomposeAsyncCopies)
	assert.Equal(t, ir.GENXLocalMemBase, gx.kernelScratchBase)
	assert.Contains(t, gx.nativeDialects, ir.DialectGENX)

	// The AMD family rides the NVVM row.
	am, ok := newTargetConfig(ROCDL)
	assert.True(t, ok)
	assert.True(t, am.emitScratchGlobal)
	assert.Equal(t, nv.nativeDialects, am.nativeDialects)

	_, ok = newTargetConfig(Target(42))
	assert.False(t, ok)
}

func TestKernelAttributes(t *testing.T) {
	t.Parallel()

	m := ir.NewModule()
	krn := m.NewKernel("krn", ir.NewFunctionType(nil, nil))
	dev := m.NewFunction("dev", ir.NewFunctionType(nil, nil))

	nv, _ := newTargetConfig(NVVM)
	nv.setFuncAttrs(krn, 8, 32)
	nv.setFuncAttrs(dev, 8, 32)

	assert.True(t, krn.Attrs.Bool(ir.AttrNVVMKernel))
	maxntid, ok := krn.Attrs.Int(ir.AttrNVVMMaxNTID)
	assert.True(t, ok)
	assert.Equal(t, int64(256), maxntid)

	// Launch bounds are a kernel-entry concern only.
	assert.False(t, dev.Attrs.Bool(ir.AttrNVVMKernel))
	_, ok = dev.Attrs.Int(ir.AttrNVVMMaxNTID)
	assert.False(t, ok)

	gx, _ := newTargetConfig(GENX)
	gx.setFuncAttrs(krn, 8, 16)
	assert.True(t, krn.Attrs.Bool(ir.AttrGENXKernel))
	wg, _ := krn.Attrs[ir.AttrGENXMaxWGSize].(*ir.IntArrayAttr)
	assert.NotNil(t, wg)
	assert.Equal(t, []int64{128, 1, 1}, wg.Values)
	sg, ok := krn.Attrs.Int(ir.AttrGENXSubGroupSize)
	assert.True(t, ok)
	assert.Equal(t, int64(16), sg)
}

func TestNewPassRejectsUnknownTarget(t *testing.T) {
	t.Parallel()

	sink := testutil.NewTestDiagSink()
	p, err := NewPass(Options{Target: Target(42), Diag: sink})
	assert.Nil(t, p)
	assert.Error(t, err)

	var unrec *UnrecognizedTargetError
	assert.True(t, errors.As(err, &unrec))
	assert.Equal(t, Target(42), unrec.Target)
	assert.Equal(t, 1, sink.Errors())
}
