// Copyright 2017, Pulumi Corporation.  All rights reserved.

package diag

// ID is a unique diagnostics identifier.
type ID int

// Diag is an instance of an error or warning generated by the compiler.
type Diag struct {
	ID      ID       // a unique identifier for this diagnostic.
	Message string   // a printf-style message, possibly with interpolated arguments.
	Loc     Location // an optional IR location to which this diagnostic pertains.
}

// Diagable can be used to determine a diagnostic's position inside of the IR being compiled.
type Diagable interface {
	Where() Location
}

// Location identifies the IR entity a diagnostic refers to.  Lowering operates on in-memory IR rather than source
// documents, so positions are function and operation names instead of files, lines, and columns.
type Location struct {
	Function  string // the enclosing function, if any.
	Operation string // the offending operation's kind, if any.
}

// EmptyLocation may be used when no position information is available.
var EmptyLocation = Location{}

// IsEmpty returns true if the Location information is missing.
func (loc Location) IsEmpty() bool {
	return loc.Function == "" && loc.Operation == ""
}

// At returns a copy of this diagnostic, associated with the given diagable entity's location.
func (diag *Diag) At(d Diagable) *Diag {
	return &Diag{
		ID:      diag.ID,
		Message: diag.Message,
		Loc:     d.Where(),
	}
}

// AtLocation returns a copy of this diagnostic, associated with the given location.
func (diag *Diag) AtLocation(loc Location) *Diag {
	return &Diag{
		ID:      diag.ID,
		Message: diag.Message,
		Loc:     loc,
	}
}
