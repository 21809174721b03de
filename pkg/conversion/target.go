// Copyright 2017, Pulumi Corporation.  All rights reserved.

package conversion

import (
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
)

// Target selects which native backend family the lowering emits.
type Target int

const (
	// NVVM targets the NVIDIA backend family.
	NVVM Target = iota
	// GENX targets the Intel backend family.
	GENX
	// ROCDL targets the AMD backend; it shares the NVVM family configuration.
	ROCDL
)

const (
	nvvm  = "nvvm"
	genx  = "genx"
	rocdl = "rocdl"
)

// Names maps Targets to human-friendly names.
var Names = map[Target]string{
	NVVM:  nvvm,
	GENX:  genx,
	ROCDL: rocdl,
}

// Values maps human-friendly names to the Targets for those names.
var Values = map[string]Target{
	nvvm:  NVVM,
	genx:  GENX,
	rocdl: ROCDL,
}

func (t Target) String() string { return Names[t] }

// targetConfig is one row of the target dispatch table: everything about a backend family that the rest of the
// pass consumes.  It is built once at pass construction and read-only afterwards; supporting a third backend
// means adding a row here, not branching in components.
type targetConfig struct {
	target Target

	// nativeDialects are the native vocabularies legal as conversion output for this family.
	nativeDialects []ir.Dialect
	// emitScratchGlobal is false for families that manage scratch memory through a different mechanism than a
	// module-level array symbol.
	emitScratchGlobal bool
	// decomposeAsyncCopies is true for the family lacking native asynchronous tile-copy instructions.
	decomposeAsyncCopies bool
	// kernelScratchBase is the operation kind that materializes a kernel's scratch base when no array symbol
	// exists; empty when the addressof-global path applies.
	kernelScratchBase ir.Kind

	// setFuncAttrs decorates a lowered function with the family's launch-bound attribute shapes.
	setFuncAttrs func(f *ir.Function, numWarps int, threadsPerWarp int)
	// nativePatterns contributes the family's native-intrinsic lowering rules to the bulk phase.
	nativePatterns func(set *PatternSet, tc *TypeConverter)
}

// newTargetConfig resolves a backend identifier into its dispatch table row.
func newTargetConfig(target Target) (*targetConfig, bool) {
	switch target {
	case NVVM, ROCDL:
		return &targetConfig{
			target:            target,
			nativeDialects:    []ir.Dialect{ir.DialectNVVM, ir.DialectNVGPU},
			emitScratchGlobal: true,
			setFuncAttrs: func(f *ir.Function, numWarps int, threadsPerWarp int) {
				if f.Kernel() {
					f.Attrs.SetBool(ir.AttrNVVMKernel, true)
					f.Attrs.SetInt(ir.AttrNVVMMaxNTID, int64(32*numWarps))
				}
			},
			nativePatterns: populateGPUToNVVMPatterns,
		}, true
	case GENX:
		return &targetConfig{
			target:               target,
			nativeDialects:       []ir.Dialect{ir.DialectGENX},
			emitScratchGlobal:    false,
			decomposeAsyncCopies: true,
			kernelScratchBase:    ir.GENXLocalMemBase,
			setFuncAttrs: func(f *ir.Function, numWarps int, threadsPerWarp int) {
				if f.Kernel() {
					f.Attrs.SetBool(ir.AttrGENXKernel, true)
					f.Attrs.SetIntArray(ir.AttrGENXMaxWGSize,
						[]int64{int64(threadsPerWarp * numWarps), 1, 1})
					f.Attrs.SetInt(ir.AttrGENXSubGroupSize, int64(threadsPerWarp))
				}
			},
			nativePatterns: populateGPUToGENXPatterns,
		}, true
	default:
		return nil, false
	}
}
