// Copyright 2017, Pulumi Corporation.  All rights reserved.

package conversion

import (
	"github.com/golang/glog"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// lowerSignatures is the signature phase's ABI rewrite.  Every function that is not a kernel entry gains one
// trailing scratch-memory pointer parameter: the function type, the per-argument attribute list, and the entry
// block each grow by one.  The body is moved into a freshly created function and the original is erased, so that
// every later phase sees only ABI-final functions.  Kernel entries are left alone; they read the module-wide
// scratch symbol instead of taking a parameter.
func (p *Pass) lowerSignatures(m *ir.Module, numWarps int) {
	for _, f := range m.Funcs() {
		if !f.Kernel() {
			f = p.amendFunction(m, f)
		}
		p.cfg.setFuncAttrs(f, numWarps, m.ThreadsPerWarp())
		if !f.Kernel() {
			// The native backend must not inline device functions: inlining would detach their scratch
			// parameter from the call-site argument threaded through in the calling-convention phase.
			f.Attrs.SetBool(ir.AttrNoinline, true)
		}
	}
}

// amendFunction appends the scratch base parameter to a device function and returns the replacement function.
func (p *Pass) amendFunction(m *ir.Module, f *ir.Function) *ir.Function {
	contract.Require(!f.Kernel(), "f")
	glog.V(2).Infof("Amending device function %v with a scratch base parameter", f.Name())

	ptrTy := ir.NewPointerType(ir.SharedAddressSpace)

	// 1. Extend the function type with the new trailing parameter.
	oldTy := f.Type()
	params := make([]ir.Type, 0, len(oldTy.Params)+1)
	params = append(params, oldTy.Params...)
	params = append(params, ptrTy)
	newTy := ir.NewFunctionType(params, oldTy.Results)

	// 2. Extend the body and the per-argument attribute lists to match.
	f.Entry().AddArg(ptrTy)

	// 3. Move the body into a replacement function of the new type and erase the original.
	amended := m.NewBareFunction(f.Name(), newTy)
	for name, attr := range f.Attrs {
		amended.Attrs[name] = attr
	}
	amended.ArgAttrs = append(amended.ArgAttrs, f.ArgAttrs...)
	amended.ArgAttrs = append(amended.ArgAttrs, ir.Attributes{})
	f.MoveBodyTo(amended)
	m.EraseFunction(f)

	return amended
}

// scratchParam returns a device function's scratch base parameter, its trailing argument.
func scratchParam(f *ir.Function) *ir.Value {
	contract.Assertf(!f.Kernel(), "Kernel %v has no scratch parameter", f.Name())
	params := f.Params()
	contract.Assertf(len(params) > 0, "Device function %v is missing its scratch parameter", f.Name())
	base := params[len(params)-1]
	pt, ok := base.Type().(*ir.PointerType)
	contract.Assertf(ok && pt.AddressSpace == ir.SharedAddressSpace,
		"Device function %v's trailing parameter is not a scratch pointer", f.Name())
	return base
}
