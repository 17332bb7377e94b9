// Package model defines the data structures shared by the scoping workflow.
package model

// Path represents a file system path.
type Path string

// Stylesheet pairs an input stylesheet with the file its scoped copy is written to.
type Stylesheet struct {
	Source Path
	Target Path
}
