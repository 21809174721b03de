// Copyright 2017, Pulumi Corporation.  All rights reserved.

package colors

import (
	"github.com/reconquest/loreley"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

const colorLeft = "<{%"
const colorRight = "%}>"

func init() {
	// Change the Loreley delimiters from { and }, to something more complex, to avoid accidental collisions.
	loreley.DelimLeft = colorLeft
	loreley.DelimRight = colorRight
}

func Command(s string) string {
	return colorLeft + s + colorRight
}

// Colorize compiles any color directives inside the given string and executes them, producing a string suitable
// for printing to a terminal.
func Colorize(s string) string {
	c, err := loreley.CompileAndExecuteToString(s, nil, nil)
	contract.Assertf(err == nil, "Expected no errors during string colorization; str=%v, err=%v", s, err)
	return c
}

// Basic
var (
	Red          = Command("fg 1")
	Cyan         = Command("fg 6")
	White        = Command("fg 7")
	BrightYellow = Command("fg 11")
	Reset        = Command("reset")
)

// Special predefined colors for logical conditions.
var (
	SpecError    = Red          // for errors.
	SpecWarning  = BrightYellow // for warnings.
	SpecLocation = Cyan         // for IR locations (functions and operations).
)
