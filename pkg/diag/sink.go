// Copyright 2017, Pulumi Corporation.  All rights reserved.

package diag

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/golang/glog"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/diag/colors"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// Sink facilitates pluggable diagnostics messages.
type Sink interface {
	// Count fetches the total number of diagnostics issued (errors plus warnings).
	Count() int
	// Errors fetches the number of errors issued.
	Errors() int
	// Warnings fetches the number of warnings issued.
	Warnings() int
	// Success returns true if this sink is currently error-free.
	Success() bool

	// Errorf issues a new error diagnostic.
	Errorf(diag *Diag, args ...interface{})
	// Warningf issues a new warning diagnostic.
	Warningf(diag *Diag, args ...interface{})

	// Stringify stringifies a diagnostic in the usual way (e.g., "error TTGPU123: kernel 'matmul': message\n").
	Stringify(diag *Diag, cat Category, args ...interface{}) string
	// StringifyLocation stringifies an IR location.
	StringifyLocation(loc Location) string
}

// Category dictates the kind of diagnostic.
type Category string

const (
	Error   Category = "error"
	Warning Category = "warning"
)

// FormatOptions controls the output style and content.
type FormatOptions struct {
	Colors bool // if true, output will be colorized.
}

// DefaultSink returns a default sink that simply logs output to stderr/stdout.
func DefaultSink(opts FormatOptions) Sink {
	return newDefaultSink(opts, os.Stderr, os.Stdout)
}

func newDefaultSink(opts FormatOptions, errorW io.Writer, warningW io.Writer) *defaultSink {
	return &defaultSink{opts: opts, errorW: errorW, warningW: warningW}
}

const DefaultSinkIDPrefix = "TTGPU"
const DefaultSinkErrorPrefix = "error"

// defaultSink is the default sink which logs output to stderr/stdout.
type defaultSink struct {
	opts     FormatOptions // a set of options that control output style and content.
	errors   int           // the number of errors that have been issued.
	errorW   io.Writer     // the output stream to use for errors.
	warnings int           // the number of warnings that have been issued.
	warningW io.Writer     // the output stream to use for warnings.
}

func (d *defaultSink) Count() int {
	return d.errors + d.warnings
}

func (d *defaultSink) Errors() int {
	return d.errors
}

func (d *defaultSink) Warnings() int {
	return d.warnings
}

func (d *defaultSink) Success() bool {
	return d.errors == 0
}

func (d *defaultSink) Errorf(diag *Diag, args ...interface{}) {
	msg := d.Stringify(diag, Error, args...)
	if glog.V(3) {
		glog.V(3).Infof("defaultSink::Error(%v)", msg[:len(msg)-1])
	}
	fmt.Fprint(d.errorW, msg)
	d.errors++
}

func (d *defaultSink) Warningf(diag *Diag, args ...interface{}) {
	msg := d.Stringify(diag, Warning, args...)
	if glog.V(4) {
		glog.V(4).Infof("defaultSink::Warning(%v)", msg[:len(msg)-1])
	}
	fmt.Fprint(d.warningW, msg)
	d.warnings++
}

func (d *defaultSink) Stringify(diag *Diag, cat Category, args ...interface{}) string {
	var buffer bytes.Buffer

	// Now print the message category's prefix (error/warning).
	if d.opts.Colors {
		switch cat {
		case Error:
			buffer.WriteString(colors.SpecError)
		case Warning:
			buffer.WriteString(colors.SpecWarning)
		default:
			contract.Failf("Unrecognized diagnostic category: %v", cat)
		}
	}

	buffer.WriteString(string(cat))

	if diag.ID > 0 {
		buffer.WriteString(" ")
		buffer.WriteString(DefaultSinkIDPrefix)
		buffer.WriteString(strconv.Itoa(int(diag.ID)))
	}

	buffer.WriteString(": ")

	if d.opts.Colors {
		buffer.WriteString(colors.Reset)
	}

	// Next print the location, if there is one.
	if !diag.Loc.IsEmpty() {
		buffer.WriteString(d.StringifyLocation(diag.Loc))
		buffer.WriteString(": ")
	}

	// Finally, actually print the message itself.
	if d.opts.Colors {
		buffer.WriteString(colors.White)
	}

	buffer.WriteString(fmt.Sprintf(diag.Message, args...))

	if d.opts.Colors {
		buffer.WriteString(colors.Reset)
	}

	buffer.WriteRune('\n')

	s := buffer.String()

	// If colorization was requested, compile and execute the directives now.
	if d.opts.Colors {
		s = colors.Colorize(s)
	}

	return s
}

func (d *defaultSink) StringifyLocation(loc Location) string {
	var buffer bytes.Buffer

	if d.opts.Colors {
		buffer.WriteString(colors.SpecLocation)
	}

	if loc.Function != "" {
		buffer.WriteString(loc.Function)
	}
	if loc.Operation != "" {
		if loc.Function != "" {
			buffer.WriteRune('(')
			buffer.WriteString(loc.Operation)
			buffer.WriteRune(')')
		} else {
			buffer.WriteString(loc.Operation)
		}
	}

	if d.opts.Colors {
		buffer.WriteString(colors.Reset)
	}

	s := buffer.String()
	if d.opts.Colors {
		s = colors.Colorize(s)
	}
	return s
}
