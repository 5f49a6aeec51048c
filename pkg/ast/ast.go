// Package ast defines the abstract syntax tree consumed by the type resolver
// and the compiler.
//
// Trees are produced outside this module (see internal/script for the YAML
// interchange form). The node set is closed: expressions implement Exp,
// patterns implement Pat, declarations implement Decl.
package ast

import "github.com/leapstack-labs/leapml/pkg/token"

// Node is the base interface for all AST nodes.
type Node interface {
	// Op returns the node kind.
	Op() Op
	// Pos returns the position of the first character of the node.
	Pos() token.Position
	// String unparses the node in surface syntax.
	String() string
}

// Exp is a marker interface for expression nodes.
type Exp interface {
	Node
	expNode()
}

// Pat is a marker interface for pattern nodes.
type Pat interface {
	Node
	patNode()
}

// Decl is a marker interface for declaration nodes.
type Decl interface {
	Node
	declNode()
}

// Loc carries a node's source position. Every node embeds it.
type Loc struct {
	At token.Position
}

// Pos implements Node.
func (l Loc) Pos() token.Position { return l.At }

// IsStatement reports whether n can be compiled as a top-level statement:
// either an expression or a declaration.
func IsStatement(n Node) bool {
	switch n.(type) {
	case Exp, Decl:
		return true
	}
	return false
}
