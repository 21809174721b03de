// Copyright 2017, Pulumi Corporation.  All rights reserved.

package conversion

import (
	"fmt"
)

// LegalizationError is the fatal outcome of a phase that could not fully legalize its operation set: one or more
// illegal operations matched no lowering rule.  The wrapped error aggregates every offender.
type LegalizationError struct {
	Phase string // the phase that failed.
	Err   error  // the aggregated per-operation failures.
}

func (e *LegalizationError) Error() string {
	return fmt.Sprintf("%v phase failed to legalize the module: %v", e.Phase, e.Err)
}

func (e *LegalizationError) Unwrap() error { return e.Err }

// InvalidKernelSignatureError rejects a kernel entry whose return carries operands; the launch convention has no
// way to surface them.
type InvalidKernelSignatureError struct {
	Kernel   string // the offending kernel entry.
	Operands int    // how many return operands it carried.
}

func (e *InvalidKernelSignatureError) Error() string {
	return fmt.Sprintf("kernel entry %v returns %v value(s); kernel functions do not support return with operands",
		e.Kernel, e.Operands)
}

// UnpackableResultTypeError signals that a callee's result types cannot be packed into a single aggregate, so
// calls to it cannot be lowered to the single-result native convention.
type UnpackableResultTypeError struct {
	Callee string
}

func (e *UnpackableResultTypeError) Error() string {
	return fmt.Sprintf("the result types of callee %v cannot be packed into a single aggregate", e.Callee)
}

// UnrecognizedTargetError rejects a backend identifier outside the dispatch table.
type UnrecognizedTargetError struct {
	Target Target
}

func (e *UnrecognizedTargetError) Error() string {
	return fmt.Sprintf("the lowering target %v was not recognized", int(e.Target))
}
