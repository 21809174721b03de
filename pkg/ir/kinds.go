// Copyright 2017, Pulumi Corporation.  All rights reserved.

package ir

import (
	"strings"
)

// Kind names an operation, qualified by the dialect that owns it (e.g. `ttg.async_wait`).
type Kind string

// Dialect returns the dialect portion of an operation kind.
func (k Kind) Dialect() Dialect {
	s := string(k)
	if ix := strings.Index(s, "."); ix != -1 {
		return Dialect(s[:ix])
	}
	return Dialect(s)
}

func (k Kind) String() string { return string(k) }

// Dialect groups operation kinds into vocabularies; legality during conversion is decided per dialect.
type Dialect string

const (
	DialectTT      Dialect = "tt"      // the tile-parallel frontend vocabulary.
	DialectTTG     Dialect = "ttg"     // the tile-parallel GPU vocabulary (layouts, async copies).
	DialectTTNG    Dialect = "ttng"    // the NVIDIA-specific tile vocabulary (TMA, warp specialization).
	DialectGPU     Dialect = "gpu"     // the generic GPU-block vocabulary.
	DialectTensor  Dialect = "tensor"  // tensor view updates.
	DialectArith   Dialect = "arith"   // generic arithmetic.
	DialectMath    Dialect = "math"    // transcendental math.
	DialectSCF     Dialect = "scf"     // structured control flow.
	DialectCF      Dialect = "cf"      // unstructured control flow.
	DialectIndex   Dialect = "index"   // index computations.
	DialectLLVM    Dialect = "llvm"    // the target-independent low-level vocabulary.
	DialectNVVM    Dialect = "nvvm"    // NVIDIA native intrinsics.
	DialectNVGPU   Dialect = "nvgpu"   // NVIDIA inline-asm level helpers (cluster ids and friends).
	DialectGENX    Dialect = "genx"    // Intel native intrinsics.
	DialectBuiltin Dialect = "builtin" // conversion plumbing (unrealized casts).
)

// Tile-parallel frontend operations.
const (
	TTLoad          Kind = "tt.load"
	TTStore         Kind = "tt.store"
	TTSplat         Kind = "tt.splat"
	TTMakeTensorPtr Kind = "tt.make_tensor_ptr"
	TTAdvance       Kind = "tt.advance"
	TTCall          Kind = "tt.call"
	TTReturn        Kind = "tt.return"
	TTGetProgramID  Kind = "tt.get_program_id"
)

// Tile-parallel GPU operations.
const (
	TTGInsertSliceAsync Kind = "ttg.insert_slice_async"
	TTGAsyncCommitGroup Kind = "ttg.async_commit_group"
	TTGAsyncWait        Kind = "ttg.async_wait"
	TTGConvertLayout    Kind = "ttg.convert_layout"
)

// NVIDIA tile operations.
const (
	TTNGInsertSliceTMA Kind = "ttng.insert_slice_tma"
	TTNGStoreAsyncTMA  Kind = "ttng.store_async_tma"
)

// Generic GPU-block and tensor operations.
const (
	GPUBarrier        Kind = "gpu.barrier"
	GPUThreadID       Kind = "gpu.thread_id"
	GPUBlockID        Kind = "gpu.block_id"
	TensorInsertSlice Kind = "tensor.insert_slice"
)

// Generic arithmetic and control flow.
const (
	ArithConstant Kind = "arith.constant"
	ArithAddI     Kind = "arith.addi"
	ArithMulI     Kind = "arith.muli"
	ArithAddF     Kind = "arith.addf"
	ArithMulF     Kind = "arith.mulf"
	MathExp       Kind = "math.exp"
	SCFFor        Kind = "scf.for"
	SCFIf         Kind = "scf.if"
	SCFYield      Kind = "scf.yield"
	CFBranch      Kind = "cf.br"
	CFCondBranch  Kind = "cf.cond_br"
)

// Low-level target operations.
const (
	LLVMReturn       Kind = "llvm.return"
	LLVMCall         Kind = "llvm.call"
	LLVMUndef        Kind = "llvm.mlir.undef"
	LLVMConstant     Kind = "llvm.mlir.constant"
	LLVMAddressOf    Kind = "llvm.mlir.addressof"
	LLVMInsertValue  Kind = "llvm.insertvalue"
	LLVMExtractValue Kind = "llvm.extractvalue"
	LLVMGEP          Kind = "llvm.getelementptr"
	LLVMBitcast      Kind = "llvm.bitcast"
	LLVMBranch       Kind = "llvm.br"
	LLVMCondBranch   Kind = "llvm.cond_br"
	LLVMAdd          Kind = "llvm.add"
	LLVMMul          Kind = "llvm.mul"
	LLVMFAdd         Kind = "llvm.fadd"
	LLVMFMul         Kind = "llvm.fmul"
	LLVMExp          Kind = "llvm.intr.exp"
	LLVMLoad         Kind = "llvm.load"
	LLVMStore        Kind = "llvm.store"

	BuiltinUnrealizedCast Kind = "builtin.unrealized_conversion_cast"
)

// Native intrinsics.
const (
	NVVMThreadIDX     Kind = "nvvm.read.ptx.sreg.tid.x"
	NVVMBlockIDX      Kind = "nvvm.read.ptx.sreg.ctaid.x"
	NVVMBarrier0      Kind = "nvvm.barrier0"
	NVGPUClusterCTAID Kind = "nvgpu.cluster_ctaid"
	GENXThreadIDX     Kind = "genx.workitem.id.x"
	GENXBlockIDX      Kind = "genx.workgroup.id.x"
	GENXBarrier       Kind = "genx.barrier"
	GENXLocalMemBase  Kind = "genx.local_mem_base"
)
