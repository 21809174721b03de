// Copyright 2017, Pulumi Corporation.  All rights reserved.

package errors

import (
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/diag"
)

var ErrorUnrecognizedTarget = &diag.Diag{
	ID:      100,
	Message: "The lowering target '%v' was not recognized",
}

var ErrorStructuralLegalization = &diag.Diag{
	ID:      101,
	Message: "The %v phase left %v operation(s) that no lowering rule could legalize",
}

var ErrorIllegalOperationRemains = &diag.Diag{
	ID:      102,
	Message: "The operation '%v' is illegal for the active conversion target and matched no rule",
}

var ErrorInvalidKernelSignature = &diag.Diag{
	ID:      103,
	Message: "Kernel entry '%v' returns %v value(s); kernel functions do not support return with operands",
}

var ErrorUnpackableResultType = &diag.Diag{
	ID:      104,
	Message: "The result types of callee '%v' cannot be packed into a single aggregate",
}

var ErrorMalformedModuleAttribute = &diag.Diag{
	ID:      105,
	Message: "The module attribute '%v' is missing or malformed: %v",
}
