// Copyright 2017, Pulumi Corporation.  All rights reserved.

package ir

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// Type is the interface implemented by all IR types.
type Type interface {
	fmt.Stringer
	typ()
}

// VoidType is the unit type for functions that produce no value.
type VoidType struct{}

// IntType is a fixed width integer type.
type IntType struct {
	Width int // the width in bits.
}

// FloatType is a fixed width floating point type.
type FloatType struct {
	Width int // the width in bits.
}

// PointerType is a pointer tagged with a target address space.  Address space 3 is the on-chip shared ("scratch")
// memory space; address space 1 is global memory.
type PointerType struct {
	AddressSpace int
}

// The address spaces recognized by the lowering.
const (
	GlobalAddressSpace = 1
	SharedAddressSpace = 3
)

// TensorType is a ranked tensor distributed across threads under an explicit layout encoding.
type TensorType struct {
	Shape    []int64  // the per-dimension extents.
	Elem     Type     // the element type.
	Encoding Encoding // the distribution layout, or nil when undistributed.
}

// ArrayType is a fixed length sequence of homogeneous elements.
type ArrayType struct {
	Elem Type
	Size int64 // zero-length arrays are legal and indicate dynamically sized storage.
}

// StructType is an ordered aggregate of heterogeneous fields, used to pack multiple results into one value.
type StructType struct {
	Fields []Type
}

// FunctionType carries a function's parameter and result types.
type FunctionType struct {
	Params  []Type
	Results []Type
}

func (t *VoidType) typ()     {}
func (t *IntType) typ()      {}
func (t *FloatType) typ()    {}
func (t *PointerType) typ()  {}
func (t *TensorType) typ()   {}
func (t *ArrayType) typ()    {}
func (t *StructType) typ()   {}
func (t *FunctionType) typ() {}

// Encoding describes how a tensor's elements are distributed across warps and threads.
type Encoding interface {
	fmt.Stringer
	encoding()
}

// BlockedEncoding distributes elements across threads in a blocked fashion; it is the layout produced by loads from
// global memory.
type BlockedEncoding struct{}

// SharedEncoding places a tensor in shared memory; Vec is the native vector width, in elements, used when swizzling.
type SharedEncoding struct {
	Vec int
}

func (e *BlockedEncoding) encoding() {}
func (e *SharedEncoding) encoding()  {}

func (e *BlockedEncoding) String() string { return "#blocked" }
func (e *SharedEncoding) String() string  { return fmt.Sprintf("#shared<vec=%v>", e.Vec) }

// Common types, interned for convenience.
var (
	Void = &VoidType{}
	I1   = &IntType{Width: 1}
	I8   = &IntType{Width: 8}
	I32  = &IntType{Width: 32}
	I64  = &IntType{Width: 64}
	F16  = &FloatType{Width: 16}
	F32  = &FloatType{Width: 32}
	F64  = &FloatType{Width: 64}
)

// NewPointerType creates a pointer type into the given address space.
func NewPointerType(addressSpace int) *PointerType {
	return &PointerType{AddressSpace: addressSpace}
}

// NewTensorType creates a ranked tensor type with the given shape, element type, and layout encoding.
func NewTensorType(shape []int64, elem Type, encoding Encoding) *TensorType {
	contract.Require(elem != nil, "elem")
	return &TensorType{Shape: shape, Elem: elem, Encoding: encoding}
}

// NewStructType creates an aggregate type with the given fields.
func NewStructType(fields []Type) *StructType {
	return &StructType{Fields: fields}
}

// NewFunctionType creates a function type with the given parameter and result types.
func NewFunctionType(params []Type, results []Type) *FunctionType {
	return &FunctionType{Params: params, Results: results}
}

// BitWidth returns the width in bits of an integer or float type, and 0 for anything else.
func BitWidth(t Type) int {
	switch t := t.(type) {
	case *IntType:
		return t.Width
	case *FloatType:
		return t.Width
	default:
		return 0
	}
}

// NumElements returns the total element count of a tensor type.
func (t *TensorType) NumElements() int64 {
	n := int64(1)
	for _, dim := range t.Shape {
		n *= dim
	}
	return n
}

// Rank returns the number of dimensions of a tensor type.
func (t *TensorType) Rank() int {
	return len(t.Shape)
}

// SameType compares two types structurally.
func SameType(t Type, u Type) bool {
	switch t := t.(type) {
	case *VoidType:
		_, ok := u.(*VoidType)
		return ok
	case *IntType:
		ut, ok := u.(*IntType)
		return ok && t.Width == ut.Width
	case *FloatType:
		ut, ok := u.(*FloatType)
		return ok && t.Width == ut.Width
	case *PointerType:
		ut, ok := u.(*PointerType)
		return ok && t.AddressSpace == ut.AddressSpace
	case *ArrayType:
		ut, ok := u.(*ArrayType)
		return ok && t.Size == ut.Size && SameType(t.Elem, ut.Elem)
	case *TensorType:
		ut, ok := u.(*TensorType)
		if !ok || len(t.Shape) != len(ut.Shape) || !SameType(t.Elem, ut.Elem) {
			return false
		}
		for i, dim := range t.Shape {
			if dim != ut.Shape[i] {
				return false
			}
		}
		return true
	case *StructType:
		ut, ok := u.(*StructType)
		if !ok || len(t.Fields) != len(ut.Fields) {
			return false
		}
		for i, f := range t.Fields {
			if !SameType(f, ut.Fields[i]) {
				return false
			}
		}
		return true
	case *FunctionType:
		ut, ok := u.(*FunctionType)
		if !ok || len(t.Params) != len(ut.Params) || len(t.Results) != len(ut.Results) {
			return false
		}
		for i, p := range t.Params {
			if !SameType(p, ut.Params[i]) {
				return false
			}
		}
		for i, r := range t.Results {
			if !SameType(r, ut.Results[i]) {
				return false
			}
		}
		return true
	default:
		contract.Failf("Unrecognized type: %v", t)
		return false
	}
}

func (t *VoidType) String() string    { return "void" }
func (t *IntType) String() string     { return "i" + strconv.Itoa(t.Width) }
func (t *FloatType) String() string   { return "f" + strconv.Itoa(t.Width) }
func (t *PointerType) String() string { return fmt.Sprintf("ptr<%v>", t.AddressSpace) }

func (t *TensorType) String() string {
	var buffer bytes.Buffer
	buffer.WriteString("tensor<")
	for _, dim := range t.Shape {
		buffer.WriteString(strconv.FormatInt(dim, 10))
		buffer.WriteRune('x')
	}
	buffer.WriteString(t.Elem.String())
	if t.Encoding != nil {
		buffer.WriteString(", ")
		buffer.WriteString(t.Encoding.String())
	}
	buffer.WriteRune('>')
	return buffer.String()
}

func (t *ArrayType) String() string {
	return fmt.Sprintf("array<%vx%v>", t.Size, t.Elem)
}

func (t *StructType) String() string {
	var buffer bytes.Buffer
	buffer.WriteString("struct<")
	for i, f := range t.Fields {
		if i > 0 {
			buffer.WriteString(", ")
		}
		buffer.WriteString(f.String())
	}
	buffer.WriteRune('>')
	return buffer.String()
}

func (t *FunctionType) String() string {
	var buffer bytes.Buffer
	buffer.WriteRune('(')
	for i, p := range t.Params {
		if i > 0 {
			buffer.WriteString(", ")
		}
		buffer.WriteString(p.String())
	}
	buffer.WriteString(") -> (")
	for i, r := range t.Results {
		if i > 0 {
			buffer.WriteString(", ")
		}
		buffer.WriteString(r.String())
	}
	buffer.WriteRune(')')
	return buffer.String()
}
