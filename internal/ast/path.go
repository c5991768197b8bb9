package ast

import "fmt"

// Path builds strings in the scheme described by spec §4.2:
// "/$[i]/field/$[j]…", with function bodies rooted at
// "/fn[<fn-id-or-name>]/body/$[j]…".

// Root is the path of the top-level statement list.
func Root() string { return "" }

// Index appends an array index segment: "$[i]".
func Index(parent string, i int) string {
	return fmt.Sprintf("%s/$[%d]", parent, i)
}

// Field appends a named field segment.
func Field(parent, name string) string {
	return fmt.Sprintf("%s/%s", parent, name)
}

// FnBody builds the root path for a function's body, keyed by its id if
// present, else its name.
func FnBody(fnIDOrName string) string {
	return fmt.Sprintf("/fn[%s]/body", fnIDOrName)
}
