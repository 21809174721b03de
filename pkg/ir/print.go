// Copyright 2017, Pulumi Corporation.  All rights reserved.

package ir

import (
	"bytes"
	"fmt"
	"sort"
)

// String renders a module as text.  The format is for logging and test failure output only; nothing parses it.
func (m *Module) String() string {
	var buffer bytes.Buffer
	buffer.WriteString("module {")
	if len(m.Attrs) > 0 {
		buffer.WriteString(" // ")
		buffer.WriteString(stringifyAttrs(m.Attrs))
	}
	buffer.WriteRune('\n')
	for _, g := range m.globals {
		fmt.Fprintf(&buffer, "  global %v : %v linkage=%v align=%v addrspace=%v\n",
			g.Name, g.Type, g.Linkage, g.Alignment, g.AddressSpace)
	}
	for _, f := range m.funcs {
		buffer.WriteString(f.String())
	}
	buffer.WriteString("}\n")
	return buffer.String()
}

// String renders a function and its body as text.
func (f *Function) String() string {
	var buffer bytes.Buffer
	names := make(map[*Value]string)
	next := 0
	name := func(v *Value) string {
		if n, has := names[v]; has {
			return n
		}
		n := fmt.Sprintf("%%%v", next)
		next++
		names[v] = n
		return n
	}

	role := "func"
	if f.Kernel() {
		role = "kernel"
	}
	fmt.Fprintf(&buffer, "  %v @%v(", role, f.name)
	for i, arg := range f.Entry().Args() {
		if i > 0 {
			buffer.WriteString(", ")
		}
		fmt.Fprintf(&buffer, "%v: %v", name(arg), arg.Type())
	}
	fmt.Fprintf(&buffer, ") %v {\n", f.typ)
	for bi, b := range f.blocks {
		if bi > 0 {
			fmt.Fprintf(&buffer, "  ^bb%v(", bi)
			for i, arg := range b.Args() {
				if i > 0 {
					buffer.WriteString(", ")
				}
				fmt.Fprintf(&buffer, "%v: %v", name(arg), arg.Type())
			}
			buffer.WriteString("):\n")
		}
		for _, op := range b.ops {
			buffer.WriteString("    ")
			for i, res := range op.results {
				if i > 0 {
					buffer.WriteString(", ")
				}
				buffer.WriteString(name(res))
			}
			if len(op.results) > 0 {
				buffer.WriteString(" = ")
			}
			buffer.WriteString(string(op.kind))
			for i, operand := range op.operands {
				if i > 0 {
					buffer.WriteRune(',')
				}
				buffer.WriteRune(' ')
				buffer.WriteString(name(operand))
			}
			if len(op.Attrs) > 0 {
				fmt.Fprintf(&buffer, " {%v}", stringifyAttrs(op.Attrs))
			}
			buffer.WriteRune('\n')
		}
	}
	buffer.WriteString("  }\n")
	return buffer.String()
}

func stringifyAttrs(attrs Attributes) string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	var buffer bytes.Buffer
	for i, name := range names {
		if i > 0 {
			buffer.WriteString(", ")
		}
		fmt.Fprintf(&buffer, "%v = %v", name, attrs[name])
	}
	return buffer.String()
}
