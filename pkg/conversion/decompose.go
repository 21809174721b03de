// Copyright 2017, Pulumi Corporation.  All rights reserved.

package conversion

import (
	"github.com/golang/glog"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/analysis"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// Operand layout of ttg.insert_slice_async: source pointer tensor, destination shared tensor, insertion index,
// then an optional mask and an optional other (fill) tensor.
const (
	asyncCopySrc   = 0
	asyncCopyDst   = 1
	asyncCopyIndex = 2
	asyncCopyMask  = 3
	asyncCopyOther = 4
)

// asyncCopySupported reports whether the hardware version has asynchronous copy instructions at all; grouping
// markers are meaningless below this threshold.
func asyncCopySupported(capability int) bool {
	return capability >= 80
}

// eligibleLoadByteWidths returns the load widths, in bytes, the hardware's async copy instruction accepts.
func eligibleLoadByteWidths(capability int) []int {
	if asyncCopySupported(capability) {
		return []int{4, 8, 16}
	}
	return nil
}

// decomposeAsyncCopies rewrites every asynchronous tile copy the target cannot lower natively into an explicit
// synchronous load followed by an in-place tensor update.  It applies only to the backend family without native
// async-copy instructions; for everyone else it is a no-op.
//
// Decomposition loses the link between a specific wait marker and the copies it guards, so when any copy is
// decomposed every remaining wait is rewritten to wait for all outstanding copies.  Precision is sacrificed for
// correctness; nothing tracks the precise dependency.
func (p *Pass) decomposeAsyncCopies(m *ir.Module) {
	if !p.cfg.decomposeAsyncCopies {
		return
	}

	axisInfo := analysis.NewAxisInfo(m)
	decomposed := false

	m.WalkOps(func(op *ir.Operation) {
		if op.Kind() != ir.TTGInsertSliceAsync {
			return
		}

		src := op.Operand(asyncCopySrc)
		dst := op.Operand(asyncCopyDst)
		srcTy, ok := src.Type().(*ir.TensorType)
		contract.Assertf(ok, "Async copy source is not a tensor")
		dstTy, ok := dst.Type().(*ir.TensorType)
		contract.Assertf(ok, "Async copy destination is not a tensor")
		shared, ok := dstTy.Encoding.(*ir.SharedEncoding)
		contract.Assertf(ok, "Async copy destination is not in shared memory")

		// Effective vector width: the source contiguity, narrowed by the mask's alignment and the
		// destination's native vector width, capped at max(128 bits, element width).
		inVec := axisInfo.PtrContiguity(src)
		if op.NumOperands() > asyncCopyMask {
			if maskAlign := axisInfo.MaskAlignment(op.Operand(asyncCopyMask)); maskAlign < inVec {
				inVec = maskAlign
			}
		}
		minVec := inVec
		if shared.Vec > 1 && shared.Vec < minVec {
			minVec = shared.Vec
		}
		elemBits := ir.BitWidth(dstTy.Elem)
		maxBitWidth := 128
		if elemBits > maxBitWidth {
			maxBitWidth = elemBits
		}
		bitWidth := elemBits * minVec
		if bitWidth > maxBitWidth {
			bitWidth = maxBitWidth
		}
		byteWidth := bitWidth / 8

		// An eligible width lowers natively; leave the operation untouched so the rewrite stays idempotent.
		for _, w := range eligibleLoadByteWidths(p.opts.ComputeCapability) {
			if w == byteWidth {
				return
			}
		}

		glog.V(2).Infof("Decomposing async copy in %v (effective width %v byte(s))",
			op.Function().Name(), byteWidth)
		bld := ir.NewBuilderBefore(op)

		// Explicit load of the source tile.
		loadOperands := []*ir.Value{src}
		for _, i := range []int{asyncCopyMask, asyncCopyOther} {
			if op.NumOperands() > i {
				loadOperands = append(loadOperands, op.Operand(i))
			}
		}
		tmpTy := ir.NewTensorType(srcTy.Shape, dstTy.Elem, srcTy.Encoding)
		load := bld.New(ir.TTLoad, []ir.Type{tmpTy}, loadOperands...)

		// In-place update of the destination tensor.
		insert := bld.New(ir.TensorInsertSlice, []ir.Type{dstTy},
			load.Result(0), dst, op.Operand(asyncCopyIndex))
		insert.Attrs.SetInt(ir.AttrAxis, op.Attrs.IntOr(ir.AttrAxis, 0))
		ir.PropagateMetadata(op, load, insert)

		op.ReplaceAllUsesWith(insert.Result(0))
		op.Erase()
		decomposed = true
	})

	// Normalize the bookkeeping markers.  Below the support threshold both marker kinds are meaningless and
	// erased; above it, any decomposition forces every wait to the conservative wait-for-all form.
	supported := asyncCopySupported(p.opts.ComputeCapability)
	m.WalkOps(func(op *ir.Operation) {
		switch op.Kind() {
		case ir.TTGAsyncCommitGroup:
			if !supported {
				op.Erase()
			}
		case ir.TTGAsyncWait:
			if !supported {
				op.Erase()
			} else if decomposed {
				wait := ir.NewBuilderBefore(op).New(ir.TTGAsyncWait, nil)
				wait.Attrs.SetInt(ir.AttrWaitNum, 0)
				ir.PropagateMetadata(op, wait)
				op.Erase()
			}
		}
	})
}
