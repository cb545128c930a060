package ast

import (
	"fmt"

	"github.com/holoscript/holo/lang/token"
)

type (
	// VarDecl represents a variable declaration, e.g. var x = 1;
	VarDecl struct {
		Export bool
		Var    token.Pos
		Name   *IdentExpr
		Assign token.Pos // zero if no initializer
		Value  Expr      // nil if no initializer
		Semi   token.Pos
	}

	// AssignStmt represents an assignment to an already-declared name, field
	// or index, e.g. x = y + z;
	AssignStmt struct {
		Left   Expr // IdentExpr, DotExpr or IndexExpr
		Assign token.Pos
		Right  Expr
		Semi   token.Pos
	}

	// ExprStmt represents an expression used as a statement (calls, launch,
	// await).
	ExprStmt struct {
		Expr Expr
		Semi token.Pos
	}

	// PrintStmt represents print <expr>;
	PrintStmt struct {
		Print token.Pos
		Value Expr
		Semi  token.Pos
	}

	// IfStmt represents an if/else if/else statement.
	IfStmt struct {
		If   token.Pos
		Cond Expr
		Then *Block
		Else token.Pos // zero if no else branch
		// ElseBlock is set for a trailing "else { ... }"; ElseIf is set for a
		// chained "else if ...". Exactly one of them is non-nil, or neither.
		ElseBlock *Block
		ElseIf    *IfStmt
	}

	// WhileStmt represents a while loop.
	WhileStmt struct {
		While token.Pos
		Cond  Expr
		Body  *Block
	}

	// ForStmt represents a C-style 3-clause for loop. Init, Cond and Post may
	// each be nil.
	ForStmt struct {
		For  token.Pos
		Init Stmt // VarDecl, AssignStmt or ExprStmt
		Cond Expr
		Post Stmt // AssignStmt or ExprStmt
		Body *Block
	}

	// BreakStmt represents break;
	BreakStmt struct{ Start token.Pos }

	// ContinueStmt represents continue;
	ContinueStmt struct{ Start token.Pos }

	// AdvanceStmt represents advance; inside a switch case, falling through to
	// the next case's body.
	AdvanceStmt struct{ Start token.Pos }

	// ReturnStmt represents return [expr];
	ReturnStmt struct {
		Start token.Pos
		Value Expr // nil for a bare return
	}

	// CaseClause is one case (or the default) of a SwitchStmt.
	CaseClause struct {
		Case    token.Pos
		Values  []Expr // empty for the default clause
		Default bool
		Colon   token.Pos
		Body    []Stmt
	}

	// SwitchStmt represents a switch statement.
	SwitchStmt struct {
		Switch token.Pos
		Tag    Expr
		Lbrace token.Pos
		Cases  []*CaseClause
		Rbrace token.Pos
	}

	// FuncDecl represents a named function declaration.
	FuncDecl struct {
		Export bool
		Fn     token.Pos
		Name   *IdentExpr
		Params []*IdentExpr
		Body   *Block
		End    token.Pos
	}

	// ClassDecl represents a class declaration, optionally inheriting from a
	// named superclass: class B : A { ... }
	ClassDecl struct {
		Export  bool
		Class   token.Pos
		Name    *IdentExpr
		Colon   token.Pos // zero if no superclass
		Super   *IdentExpr
		Lbrace  token.Pos
		Fields  []*VarDecl
		Methods []*FuncDecl
		Rbrace  token.Pos
	}

	// StructDecl represents a struct type declaration naming its fields, e.g.
	// struct Point { x; y; }
	StructDecl struct {
		Export bool
		Struct token.Pos
		Name   *IdentExpr
		Lbrace token.Pos
		Fields []*IdentExpr
		Rbrace token.Pos
	}

	// ImportDecl represents an import directive, e.g. import "path"; or
	// import "path" as Alias;
	ImportDecl struct {
		Import token.Pos
		Path   string
		Alias  *IdentExpr // nil if no alias
		Semi   token.Pos
	}

	// BadStmt represents a statement that failed to parse.
	BadStmt struct {
		Start token.Pos
		End   token.Pos
	}
)

func (n *VarDecl) Format(f fmt.State, verb rune) { format(f, verb, n, "var "+n.Name.Lit, nil) }
func (n *VarDecl) Span() (start, end token.Pos)  { return n.Var, n.Semi }
func (n *VarDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.Value != nil {
		Walk(v, n.Value)
	}
}
func (n *VarDecl) BlockEnding() bool { return false }

func (n *AssignStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "assignment", nil) }
func (n *AssignStmt) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	return start, n.Semi
}
func (n *AssignStmt) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *AssignStmt) BlockEnding() bool { return false }

func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr stmt", nil) }
func (n *ExprStmt) Span() (start, end token.Pos) {
	start, _ = n.Expr.Span()
	return start, n.Semi
}
func (n *ExprStmt) Walk(v Visitor)    { Walk(v, n.Expr) }
func (n *ExprStmt) BlockEnding() bool { return false }

func (n *PrintStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "print", nil) }
func (n *PrintStmt) Span() (start, end token.Pos)  { return n.Print, n.Semi }
func (n *PrintStmt) Walk(v Visitor)                { Walk(v, n.Value) }
func (n *PrintStmt) BlockEnding() bool             { return false }

func (n *IfStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "if", nil) }
func (n *IfStmt) Span() (start, end token.Pos) {
	end, _ = n.Then.Span()
	if n.ElseBlock != nil {
		_, end = n.ElseBlock.Span()
	} else if n.ElseIf != nil {
		_, end = n.ElseIf.Span()
	} else {
		_, end = n.Then.Span()
	}
	return n.If, end
}
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.ElseBlock != nil {
		Walk(v, n.ElseBlock)
	} else if n.ElseIf != nil {
		Walk(v, n.ElseIf)
	}
}
func (n *IfStmt) BlockEnding() bool { return false }

func (n *WhileStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "while", nil) }
func (n *WhileStmt) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.While, end
}
func (n *WhileStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
}
func (n *WhileStmt) BlockEnding() bool { return false }

func (n *ForStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "for", nil) }
func (n *ForStmt) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.For, end
}
func (n *ForStmt) Walk(v Visitor) {
	if n.Init != nil {
		Walk(v, n.Init)
	}
	if n.Cond != nil {
		Walk(v, n.Cond)
	}
	if n.Post != nil {
		Walk(v, n.Post)
	}
	Walk(v, n.Body)
}
func (n *ForStmt) BlockEnding() bool { return false }

func (n *BreakStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "break", nil) }
func (n *BreakStmt) Span() (start, end token.Pos) {
	return n.Start, n.Start + token.Pos(len(token.BREAK.String()))
}
func (n *BreakStmt) Walk(Visitor)       {}
func (n *BreakStmt) BlockEnding() bool  { return true }

func (n *ContinueStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "continue", nil) }
func (n *ContinueStmt) Span() (start, end token.Pos) {
	return n.Start, n.Start + token.Pos(len(token.CONTINUE.String()))
}
func (n *ContinueStmt) Walk(Visitor)      {}
func (n *ContinueStmt) BlockEnding() bool { return true }

func (n *AdvanceStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "advance", nil) }
func (n *AdvanceStmt) Span() (start, end token.Pos) {
	return n.Start, n.Start + token.Pos(len(token.ADVANCE.String()))
}
func (n *AdvanceStmt) Walk(Visitor)      {}
func (n *AdvanceStmt) BlockEnding() bool { return true }

func (n *ReturnStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *ReturnStmt) Span() (start, end token.Pos) {
	end = n.Start + token.Pos(len(token.RETURN.String()))
	if n.Value != nil {
		_, end = n.Value.Span()
	}
	return n.Start, end
}
func (n *ReturnStmt) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}
func (n *ReturnStmt) BlockEnding() bool { return true }

func (n *SwitchStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "switch", map[string]int{"cases": len(n.Cases)})
}
func (n *SwitchStmt) Span() (start, end token.Pos) {
	return n.Switch, n.Rbrace + token.Pos(len(token.RBRACE.String()))
}
func (n *SwitchStmt) Walk(v Visitor) {
	Walk(v, n.Tag)
	for _, c := range n.Cases {
		for _, e := range c.Values {
			Walk(v, e)
		}
		for _, s := range c.Body {
			Walk(v, s)
		}
	}
}
func (n *SwitchStmt) BlockEnding() bool { return false }

func (n *FuncDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "func "+n.Name.Lit, map[string]int{"params": len(n.Params)})
}
func (n *FuncDecl) Span() (start, end token.Pos) {
	return n.Fn, n.End + token.Pos(len(token.RBRACE.String()))
}
func (n *FuncDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, p := range n.Params {
		Walk(v, p)
	}
	Walk(v, n.Body)
}
func (n *FuncDecl) BlockEnding() bool { return false }

func (n *ClassDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "class "+n.Name.Lit, map[string]int{
		"fields": len(n.Fields), "methods": len(n.Methods),
	})
}
func (n *ClassDecl) Span() (start, end token.Pos) {
	return n.Class, n.Rbrace + token.Pos(len(token.RBRACE.String()))
}
func (n *ClassDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.Super != nil {
		Walk(v, n.Super)
	}
	for _, fl := range n.Fields {
		Walk(v, fl)
	}
	for _, m := range n.Methods {
		Walk(v, m)
	}
}
func (n *ClassDecl) BlockEnding() bool { return false }

func (n *StructDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "struct "+n.Name.Lit, map[string]int{"fields": len(n.Fields)})
}
func (n *StructDecl) Span() (start, end token.Pos) {
	return n.Struct, n.Rbrace + token.Pos(len(token.RBRACE.String()))
}
func (n *StructDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, fl := range n.Fields {
		Walk(v, fl)
	}
}
func (n *StructDecl) BlockEnding() bool { return false }

func (n *ImportDecl) Format(f fmt.State, verb rune) { format(f, verb, n, "import "+n.Path, nil) }
func (n *ImportDecl) Span() (start, end token.Pos)  { return n.Import, n.Semi }
func (n *ImportDecl) Walk(v Visitor) {
	if n.Alias != nil {
		Walk(v, n.Alias)
	}
}
func (n *ImportDecl) BlockEnding() bool { return false }

func (n *BadStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "!bad stmt!", nil) }
func (n *BadStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *BadStmt) Walk(Visitor)                  {}
func (n *BadStmt) BlockEnding() bool              { return false }
