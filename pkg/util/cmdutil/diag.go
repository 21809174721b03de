// Copyright 2017, Pulumi Corporation.  All rights reserved.

package cmdutil

import (
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/diag"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

var snk diag.Sink

// Diag lazily allocates a sink to be used if we can't create a lowering pass.
func Diag() diag.Sink {
	if snk == nil {
		snk = diag.DefaultSink(diag.FormatOptions{})
	}
	return snk
}

// InitDiag forces initialization of the diagnostics sink with the given options.
func InitDiag(opts diag.FormatOptions) {
	contract.Assertf(snk == nil, "Cannot initialize diagnostics sink more than once")
	snk = diag.DefaultSink(opts)
}
