package ast

import (
	"fmt"

	"github.com/holoscript/holo/lang/token"
)

type (
	// IdentExpr represents an identifier.
	IdentExpr struct {
		Start token.Pos
		Lit   string
	}

	// LiteralExpr represents an int, float, string, nil, true or false
	// literal.
	LiteralExpr struct {
		Type  token.Token
		Start token.Pos
		Raw   string
		Value any // string | int64 | float64 | nil
	}

	// ArrayExpr represents an array literal, e.g. [1, 2, 3].
	ArrayExpr struct {
		Lbrack token.Pos
		Items  []Expr
		Rbrack token.Pos
	}

	// StructLiteralExpr represents a struct literal, e.g. struct{x: 1, y: 2}.
	StructLiteralExpr struct {
		Struct token.Pos // position of the 'struct' keyword
		Lbrace token.Pos
		Items  []*KeyVal
		Rbrace token.Pos
	}

	// ParenExpr represents a parenthesized expression.
	ParenExpr struct {
		Lparen token.Pos
		Expr   Expr
		Rparen token.Pos
	}

	// CallExpr represents a function call, e.g. f(x, y).
	CallExpr struct {
		Fn     Expr
		Lparen token.Pos
		Args   []Expr
		Rparen token.Pos
	}

	// DotExpr represents a field/method selector, e.g. x.y.
	DotExpr struct {
		Left  Expr
		Dot   token.Pos
		Right *IdentExpr
	}

	// IndexExpr represents an index expression, e.g. x[y].
	IndexExpr struct {
		Prefix Expr
		Lbrack token.Pos
		Index  Expr
		Rbrack token.Pos
	}

	// UnaryOpExpr represents a unary operator expression, e.g. -x, !x, ~x.
	UnaryOpExpr struct {
		Type  token.Token
		Op    token.Pos
		Right Expr
	}

	// BinOpExpr represents a binary operator expression, e.g. x + y.
	BinOpExpr struct {
		Left  Expr
		Type  token.Token
		Op    token.Pos
		Right Expr
	}

	// FuncExpr represents a function literal.
	FuncExpr struct {
		Fn     token.Pos
		Params []*IdentExpr
		Body   *Block
		End    token.Pos
	}

	// ThisExpr represents the 'this' keyword used as an expression.
	ThisExpr struct {
		Start token.Pos
	}

	// SuperExpr represents a super.method reference inside a method body.
	SuperExpr struct {
		Start  token.Pos
		Dot    token.Pos
		Method *IdentExpr
	}

	// LaunchExpr represents launch <call>, which starts the call asynchronously
	// and evaluates to a Future.
	LaunchExpr struct {
		Launch token.Pos
		Call   *CallExpr
	}

	// AwaitExpr represents await <expr>, which blocks until a Future resolves.
	AwaitExpr struct {
		Await token.Pos
		Right Expr
	}

	// TernaryExpr represents a conditional expression, e.g. cond ? a : b.
	TernaryExpr struct {
		Cond     Expr
		Question token.Pos
		Then     Expr
		Colon    token.Pos
		Else     Expr
	}

	// BadExpr represents an expression that failed to parse.
	BadExpr struct {
		Start token.Pos
		End   token.Pos
	}
)

func (n *IdentExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Lit, nil) }
func (n *IdentExpr) Span() (start, end token.Pos) {
	return n.Start, n.Start + token.Pos(len(n.Lit))
}
func (n *IdentExpr) Walk(Visitor) {}
func (n *IdentExpr) expr()        {}

func (n *LiteralExpr) Format(f fmt.State, verb rune) {
	lbl := n.Type.String()
	if n.Value != nil {
		lbl += " " + n.Raw
	}
	format(f, verb, n, lbl, nil)
}
func (n *LiteralExpr) Span() (start, end token.Pos) {
	return n.Start, n.Start + token.Pos(len(n.Raw))
}
func (n *LiteralExpr) Walk(Visitor) {}
func (n *LiteralExpr) expr()        {}

func (n *ArrayExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "array", map[string]int{"items": len(n.Items)})
}
func (n *ArrayExpr) Span() (start, end token.Pos) {
	return n.Lbrack, n.Rbrack + token.Pos(len(token.RBRACK.String()))
}
func (n *ArrayExpr) Walk(v Visitor) {
	for _, e := range n.Items {
		Walk(v, e)
	}
}
func (n *ArrayExpr) expr() {}

func (n *StructLiteralExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "struct literal", map[string]int{"fields": len(n.Items)})
}
func (n *StructLiteralExpr) Span() (start, end token.Pos) {
	return n.Struct, n.Rbrace + token.Pos(len(token.RBRACE.String()))
}
func (n *StructLiteralExpr) Walk(v Visitor) {
	for _, kv := range n.Items {
		Walk(v, kv.Key)
		Walk(v, kv.Value)
	}
}
func (n *StructLiteralExpr) expr() {}

func (n *ParenExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "(expr)", nil) }
func (n *ParenExpr) Span() (start, end token.Pos) {
	return n.Lparen, n.Rparen + token.Pos(len(token.RPAREN.String()))
}
func (n *ParenExpr) Walk(v Visitor) { Walk(v, n.Expr) }
func (n *ParenExpr) expr()          {}

func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call", map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Span() (start, end token.Pos) {
	start, _ = n.Fn.Span()
	return start, n.Rparen + token.Pos(len(token.RPAREN.String()))
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Fn)
	for _, e := range n.Args {
		Walk(v, e)
	}
}
func (n *CallExpr) expr() {}

func (n *DotExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "expr.ident", nil) }
func (n *DotExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *DotExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *DotExpr) expr() {}

func (n *IndexExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "expr[index]", nil) }
func (n *IndexExpr) Span() (start, end token.Pos) {
	start, _ = n.Prefix.Span()
	return start, n.Rbrack + token.Pos(len(token.RBRACK.String()))
}
func (n *IndexExpr) Walk(v Visitor) {
	Walk(v, n.Prefix)
	Walk(v, n.Index)
}
func (n *IndexExpr) expr() {}

func (n *UnaryOpExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "unary "+n.Type.GoString(), nil)
}
func (n *UnaryOpExpr) Span() (start, end token.Pos) {
	_, end = n.Right.Span()
	return n.Op, end
}
func (n *UnaryOpExpr) Walk(v Visitor) { Walk(v, n.Right) }
func (n *UnaryOpExpr) expr()          {}

func (n *BinOpExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "binary "+n.Type.GoString(), nil)
}
func (n *BinOpExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *BinOpExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *BinOpExpr) expr() {}

func (n *FuncExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "fn", map[string]int{"params": len(n.Params)})
}
func (n *FuncExpr) Span() (start, end token.Pos) {
	return n.Fn, n.End + token.Pos(len(token.RBRACE.String()))
}
func (n *FuncExpr) Walk(v Visitor) {
	for _, p := range n.Params {
		Walk(v, p)
	}
	Walk(v, n.Body)
}
func (n *FuncExpr) expr() {}

func (n *ThisExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "this", nil) }
func (n *ThisExpr) Span() (start, end token.Pos) {
	return n.Start, n.Start + token.Pos(len(token.THIS.String()))
}
func (n *ThisExpr) Walk(Visitor) {}
func (n *ThisExpr) expr()        {}

func (n *SuperExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "super.method", nil) }
func (n *SuperExpr) Span() (start, end token.Pos) {
	_, end = n.Method.Span()
	return n.Start, end
}
func (n *SuperExpr) Walk(v Visitor) { Walk(v, n.Method) }
func (n *SuperExpr) expr()          {}

func (n *LaunchExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "launch", nil) }
func (n *LaunchExpr) Span() (start, end token.Pos) {
	_, end = n.Call.Span()
	return n.Launch, end
}
func (n *LaunchExpr) Walk(v Visitor) { Walk(v, n.Call) }
func (n *LaunchExpr) expr()          {}

func (n *AwaitExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "await", nil) }
func (n *AwaitExpr) Span() (start, end token.Pos) {
	_, end = n.Right.Span()
	return n.Await, end
}
func (n *AwaitExpr) Walk(v Visitor) { Walk(v, n.Right) }
func (n *AwaitExpr) expr()          {}

func (n *TernaryExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "cond ? a : b", nil) }
func (n *TernaryExpr) Span() (start, end token.Pos) {
	start, _ = n.Cond.Span()
	_, end = n.Else.Span()
	return start, end
}
func (n *TernaryExpr) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	Walk(v, n.Else)
}
func (n *TernaryExpr) expr() {}

func (n *BadExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "!bad expr!", nil) }
func (n *BadExpr) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *BadExpr) Walk(Visitor)                  {}
func (n *BadExpr) expr()                         {}
