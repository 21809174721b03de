// Copyright 2017, Pulumi Corporation.  All rights reserved.

package ir

import (
	"fmt"

	"github.com/mitchellh/copystructure"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// Attribute is a typed constant attached to a module, function, or operation.
type Attribute interface {
	fmt.Stringer
	attr()
}

type IntAttr struct{ Value int64 }
type BoolAttr struct{ Value bool }
type StringAttr struct{ Value string }
type IntArrayAttr struct{ Values []int64 }

func (a *IntAttr) attr()      {}
func (a *BoolAttr) attr()     {}
func (a *StringAttr) attr()   {}
func (a *IntArrayAttr) attr() {}

func (a *IntAttr) String() string      { return fmt.Sprintf("%v", a.Value) }
func (a *BoolAttr) String() string     { return fmt.Sprintf("%v", a.Value) }
func (a *StringAttr) String() string   { return fmt.Sprintf("%q", a.Value) }
func (a *IntArrayAttr) String() string { return fmt.Sprintf("%v", a.Values) }

// Attributes is a dictionary of named attributes.
type Attributes map[string]Attribute

// Int fetches an integer attribute, returning false if absent or of another type.
func (attrs Attributes) Int(name string) (int64, bool) {
	if a, has := attrs[name]; has {
		if ia, ok := a.(*IntAttr); ok {
			return ia.Value, true
		}
	}
	return 0, false
}

// IntOr fetches an integer attribute, returning the given default if absent.
func (attrs Attributes) IntOr(name string, def int64) int64 {
	if v, has := attrs.Int(name); has {
		return v
	}
	return def
}

// Bool fetches a boolean attribute, returning false if absent or of another type.
func (attrs Attributes) Bool(name string) bool {
	if a, has := attrs[name]; has {
		if ba, ok := a.(*BoolAttr); ok {
			return ba.Value
		}
	}
	return false
}

// SetInt stores an integer attribute.
func (attrs Attributes) SetInt(name string, v int64) { attrs[name] = &IntAttr{Value: v} }

// SetBool stores a boolean attribute.
func (attrs Attributes) SetBool(name string, v bool) { attrs[name] = &BoolAttr{Value: v} }

// SetString stores a string attribute.
func (attrs Attributes) SetString(name string, v string) { attrs[name] = &StringAttr{Value: v} }

// SetIntArray stores an integer array attribute.
func (attrs Attributes) SetIntArray(name string, vs []int64) {
	attrs[name] = &IntArrayAttr{Values: vs}
}

// Copy deep-copies an attribute dictionary so that mutations to the copy never alias the original.
func (attrs Attributes) Copy() Attributes {
	if attrs == nil {
		return nil
	}
	c, err := copystructure.Copy(map[string]Attribute(attrs))
	contract.Assertf(err == nil, "Unexpected failure deep-copying attributes: %v", err)
	return Attributes(c.(map[string]Attribute))
}

// Module-level attribute names.
const (
	AttrNumWarps         = "triton_gpu.num-warps"
	AttrNumCTAs          = "triton_gpu.num-ctas"
	AttrThreadsPerWarp   = "triton_gpu.threads-per-warp"
	AttrWarpGroupsPerCTA = "triton_gpu.num-warp-groups-per-cta"
	AttrWSSupported      = "triton_gpu.ws-supported"
)

// Function-level attribute names.
const (
	AttrKernel           = "tt.entry"           // marks a function as a kernel entry point.
	AttrNoinline         = "noinline"           // prevents the native backend from inlining a device function.
	AttrAllocationOffset = "allocation.offset"  // set once the allocation analysis has fixed a function's scratch base.
	AttrAllocationSize   = "allocation.size"    // per-operation scratch demand, in bytes.
	AttrNVVMKernel       = "nvvm.kernel"        // NVVM kernel marker.
	AttrNVVMMaxNTID      = "nvvm.maxntid"       // NVVM launch bound.
	AttrGENXKernel       = "genx.kernel"        // GENX kernel marker.
	AttrGENXMaxWGSize    = "genx.max_work_group_size"
	AttrGENXSubGroupSize = "genx.reqd_sub_group_size"
)

// Operation-level attribute names.
const (
	AttrAsyncAgent = "async_agent"      // the warp-specialization agent that owns an operation.
	AttrMutexRole  = "agent.mutex_role" // the mutex role an operation plays within its agent.
	AttrWaitNum    = "num"              // the number of outstanding copy groups an async wait tolerates.
	AttrAxis       = "axis"             // the tensor axis an insertion targets.
	AttrValue      = "value"            // a constant's value.
	AttrCallee     = "callee"           // the callee symbol on a call.
	AttrIndex      = "index"            // the field index on aggregate insert/extract operations.
	AttrGlobal     = "global"           // the symbol an addressof operation refers to.
)

// propagated is the closed set of metadata kinds that must be copied verbatim from a rewritten operation to every
// operation generated as its replacement.
var propagated = []string{AttrAsyncAgent, AttrMutexRole}

// PropagateMetadata copies the ownership and role metadata of src onto each of the given replacement operations.
func PropagateMetadata(src *Operation, repls ...*Operation) {
	for _, name := range propagated {
		a, has := src.Attrs[name]
		if !has {
			continue
		}
		for _, repl := range repls {
			repl.Attrs[name] = a
		}
	}
}
