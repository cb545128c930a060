// Package ast defines the abstract syntax tree produced by lang/parser and
// consumed by lang/module and lang/compiler.
package ast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/holoscript/holo/lang/token"
)

// Node represents any node in the AST.
type Node interface {
	// Every Node implements fmt.Formatter so it can print a description of
	// itself; only the 'v' and 's' verbs are supported. The '#' flag prints
	// child counts, a width pads or truncates the label (the '-' flag pads on
	// the right, '+' disables padding).
	fmt.Formatter

	// Span reports the start and end position of the node.
	Span() (start, end token.Pos)

	// Walk visits this node's direct children with v.
	Walk(v Visitor)
}

// Expr represents an expression.
type Expr interface {
	Node
	expr()
}

// Stmt represents a statement.
type Stmt interface {
	Node

	// BlockEnding reports whether this statement may only appear last in a
	// block (return, break, continue, advance).
	BlockEnding() bool
}

// Chunk is the AST of one parsed source file.
type Chunk struct {
	Name  string // file path
	Block *Block
	EOF   token.Pos
}

// Block is a brace-delimited sequence of statements.
type Block struct {
	Start token.Pos // position of '{' (or of first stmt for a chunk-level block)
	End   token.Pos // position of '}' (or EOF for a chunk-level block)
	Stmts []Stmt
}

// KeyVal is one key:value pair in a struct literal.
type KeyVal struct {
	Key   Expr
	Colon token.Pos
	Value Expr
}

func (n *Chunk) Format(f fmt.State, verb rune) {
	format(f, verb, n, "chunk "+n.Name, nil)
}
func (n *Chunk) Span() (start, end token.Pos) {
	if n.Block != nil {
		return n.Block.Span()
	}
	return n.EOF, n.EOF
}
func (n *Chunk) Walk(v Visitor) {
	if n.Block != nil {
		Walk(v, n.Block)
	}
}

func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}
func (n *Block) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

// Unwrap recursively unwraps ParenExpr until it reaches a non-ParenExpr.
func Unwrap(e Expr) Expr {
	if pe, ok := e.(*ParenExpr); ok {
		return Unwrap(pe.Expr)
	}
	return e
}

// IsAssignable reports whether e may appear on the left of an assignment:
// an identifier, a field selector or an index expression whose own prefix is
// assignable.
func IsAssignable(e Expr) bool {
	switch e := e.(type) {
	case *IdentExpr:
		return true
	case *DotExpr:
		return IsAssignable(Unwrap(e.Left))
	case *IndexExpr:
		return IsAssignable(Unwrap(e.Prefix))
	default:
		return false
	}
}

func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}

	label = strings.ReplaceAll(label, "\r\n", "⏎")
	label = strings.ReplaceAll(label, "\n", "⏎")
	label = strings.ReplaceAll(label, "\t", "⭾")

	if w, ok := f.Width(); ok {
		minus, plus := f.Flag('-'), f.Flag('+')
		runes := []rune(label)
		switch {
		case len(runes) >= w:
			runes = runes[:w]
		case minus:
			runes = append(runes, []rune(strings.Repeat(" ", w-len(runes)))...)
		case !plus:
			runes = append([]rune(strings.Repeat(" ", w-len(runes))), runes...)
		}
		label = string(runes)
	}

	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}
