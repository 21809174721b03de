// Copyright 2017, Pulumi Corporation.  All rights reserved.

package ir

import (
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// Module is the unit of lowering: an ordered list of functions, module-level global declarations, and an
// attribute dictionary carrying the launch configuration.
type Module struct {
	funcs   []*Function
	globals []*Global

	// Attrs holds the module attributes (warp counts, block-group counts, and friends).
	Attrs Attributes
}

// Global is a module-level global declaration, such as the shared scratch memory array.
type Global struct {
	Name         string
	Type         Type
	Linkage      Linkage
	Alignment    int
	AddressSpace int
}

// Linkage determines a global's visibility to the linker.
type Linkage string

const (
	ExternalLinkage Linkage = "external"
	InternalLinkage Linkage = "internal"
)

// NewModule creates an empty module with an empty attribute dictionary.
func NewModule() *Module {
	return &Module{Attrs: Attributes{}}
}

// NewFunction creates a function with the given name and type, appends it to the module, and materializes its
// entry block with one block argument per parameter.
func (m *Module) NewFunction(name string, typ *FunctionType) *Function {
	contract.Require(name != "", "name")
	contract.Require(typ != nil, "typ")
	f := &Function{
		module: m,
		name:   name,
		typ:    typ,
		Attrs:  Attributes{},
	}
	entry := f.NewBlock()
	for _, p := range typ.Params {
		entry.AddArg(p)
		f.ArgAttrs = append(f.ArgAttrs, Attributes{})
	}
	m.funcs = append(m.funcs, f)
	return f
}

// NewBareFunction creates a function with no body: no entry block and no argument dictionaries.  The caller is
// expected to supply the body, typically by moving another function's blocks in via MoveBodyTo.
func (m *Module) NewBareFunction(name string, typ *FunctionType) *Function {
	contract.Require(name != "", "name")
	contract.Require(typ != nil, "typ")
	f := &Function{
		module: m,
		name:   name,
		typ:    typ,
		Attrs:  Attributes{},
	}
	m.funcs = append(m.funcs, f)
	return f
}

// NewKernel creates a function marked as a kernel entry point.
func (m *Module) NewKernel(name string, typ *FunctionType) *Function {
	f := m.NewFunction(name, typ)
	f.Attrs.SetBool(AttrKernel, true)
	return f
}

// Func looks up a function by name, returning nil if absent.
func (m *Module) Func(name string) *Function {
	for _, f := range m.funcs {
		if f.name == name {
			return f
		}
	}
	return nil
}

// Funcs returns a snapshot of the module's functions, in insertion order.
func (m *Module) Funcs() []*Function {
	funcs := make([]*Function, len(m.funcs))
	copy(funcs, m.funcs)
	return funcs
}

// EraseFunction removes a function from the module.
func (m *Module) EraseFunction(f *Function) {
	for i, fn := range m.funcs {
		if fn == f {
			m.funcs = append(m.funcs[:i], m.funcs[i+1:]...)
			f.module = nil
			return
		}
	}
	contract.Failf("Function %v not found in module", f.name)
}

// AddGlobal declares a module-level global.  Duplicate names are rejected.
func (m *Module) AddGlobal(g *Global) {
	contract.Require(g != nil, "g")
	contract.Assertf(m.Global(g.Name) == nil, "Global %v already declared", g.Name)
	m.globals = append(m.globals, g)
}

// Global looks up a global declaration by name, returning nil if absent.
func (m *Module) Global(name string) *Global {
	for _, g := range m.globals {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Globals returns a snapshot of the module's global declarations.
func (m *Module) Globals() []*Global {
	globals := make([]*Global, len(m.globals))
	copy(globals, m.globals)
	return globals
}

// WalkOps visits every operation in the module, function by function.  Like Function.WalkOps, the callback sees
// a snapshot and may rewrite freely.
func (m *Module) WalkOps(visit func(*Operation)) {
	for _, f := range m.Funcs() {
		f.WalkOps(visit)
	}
}

// NumWarps returns the module's warp count.
func (m *Module) NumWarps() int {
	return int(m.Attrs.IntOr(AttrNumWarps, 4))
}

// NumCTAs returns the module's block-group (cluster) size.
func (m *Module) NumCTAs() int {
	return int(m.Attrs.IntOr(AttrNumCTAs, 1))
}

// ThreadsPerWarp returns the module's threads-per-warp count.
func (m *Module) ThreadsPerWarp() int {
	return int(m.Attrs.IntOr(AttrThreadsPerWarp, 32))
}

// WarpGroupsPerCTA returns the warp-group multiplier, defaulting to 1 when warp specialization has not changed
// the effective warp count.
func (m *Module) WarpGroupsPerCTA() int {
	return int(m.Attrs.IntOr(AttrWarpGroupsPerCTA, 1))
}

// WSSupported returns true if warp specialization is enabled for this module.
func (m *Module) WSSupported() bool {
	return m.Attrs.Bool(AttrWSSupported)
}
