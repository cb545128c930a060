package parser

import (
	"github.com/holoscript/holo/lang/ast"
	"github.com/holoscript/holo/lang/token"
)

// parseStmt parses a single statement, or returns nil to skip one that
// carries no AST node (an empty ";"). On a parse error it synchronizes to
// the next safe token and returns a BadStmt spanning the skipped tokens.
func (p *parser) parseStmt() (stmt ast.Stmt) {
	start := p.val.Pos

	defer func() {
		if err := recover(); err != nil {
			if err == errPanicMode {
				stmt = &ast.BadStmt{Start: start, End: p.syncAfterError()}
				return
			}
			panic(err)
		}
	}()

	export := false
	if p.tok == token.EXPORT {
		export = true
		p.expect(token.EXPORT)
	}

	switch p.tok {
	case token.SEMI:
		p.advance()
		return nil
	case token.VAR:
		return p.parseVarDecl(export)
	case token.FUNC:
		return p.parseFuncDecl(export)
	case token.CLASS:
		return p.parseClassDecl(export)
	case token.STRUCT:
		return p.parseStructDecl(export)
	case token.IMPORT:
		if export {
			p.errorExpected(start, "declaration after export")
		}
		return p.parseImportDecl()
	case token.IF:
		if export {
			p.errorExpected(start, "declaration after export")
		}
		return p.parseIfStmt()
	case token.WHILE:
		if export {
			p.errorExpected(start, "declaration after export")
		}
		return p.parseWhileStmt()
	case token.FOR:
		if export {
			p.errorExpected(start, "declaration after export")
		}
		return p.parseForStmt()
	case token.SWITCH:
		if export {
			p.errorExpected(start, "declaration after export")
		}
		return p.parseSwitchStmt()
	case token.BREAK:
		p.advance()
		return &ast.BreakStmt{Start: start}
	case token.CONTINUE:
		p.advance()
		return &ast.ContinueStmt{Start: start}
	case token.ADVANCE:
		p.advance()
		return &ast.AdvanceStmt{Start: start}
	case token.RETURN:
		return p.parseReturnStmt()
	case token.PRINT:
		return p.parsePrintStmt()
	default:
		if export {
			p.errorExpected(start, "declaration after export")
		}
		return p.parseExprOrAssignStmt()
	}
}

// parseStmtsUntil parses statements until the current token is one of ends
// (not consuming it) or EOF. A statement that may only end a block (return,
// break, continue, advance) is reported as an error if followed by more
// statements.
func (p *parser) parseStmtsUntil(ends ...token.Token) []ast.Stmt {
	ends = append(ends, token.EOF)

	var list []ast.Stmt
	var ending ast.Stmt
	for !tokenIn(p.tok, ends...) {
		stmt := p.parseStmt()
		if stmt == nil {
			continue
		}
		if ending != nil {
			pos, _ := stmt.Span()
			p.errorExpected(pos, "end of block")
		} else if stmt.BlockEnding() {
			ending = stmt
		}
		list = append(list, stmt)
	}
	return list
}

func (p *parser) parseBraceBlock() *ast.Block {
	var block ast.Block
	block.Start = p.expect(token.LBRACE)
	block.Stmts = p.parseStmtsUntil(token.RBRACE)
	block.End = p.expect(token.RBRACE)
	return &block
}

func (p *parser) parseVarDecl(export bool) *ast.VarDecl {
	var decl ast.VarDecl
	decl.Export = export
	decl.Var = p.expect(token.VAR)
	decl.Name = p.parseIdentExpr()
	if p.tok == token.EQ {
		decl.Assign = p.expect(token.EQ)
		decl.Value = p.parseExpr()
	}
	decl.Semi = p.expect(token.SEMI)
	return &decl
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	var stmt ast.IfStmt
	stmt.If = p.expect(token.IF)
	p.expect(token.LPAREN)
	stmt.Cond = p.parseExpr()
	p.expect(token.RPAREN)
	stmt.Then = p.parseBraceBlock()

	if p.tok == token.ELSE {
		stmt.Else = p.expect(token.ELSE)
		if p.tok == token.IF {
			stmt.ElseIf = p.parseIfStmt()
		} else {
			stmt.ElseBlock = p.parseBraceBlock()
		}
	}
	return &stmt
}

func (p *parser) parseWhileStmt() *ast.WhileStmt {
	var stmt ast.WhileStmt
	stmt.While = p.expect(token.WHILE)
	p.expect(token.LPAREN)
	stmt.Cond = p.parseExpr()
	p.expect(token.RPAREN)
	stmt.Body = p.parseBraceBlock()
	return &stmt
}

func (p *parser) parseForStmt() *ast.ForStmt {
	var stmt ast.ForStmt
	stmt.For = p.expect(token.FOR)
	p.expect(token.LPAREN)

	if p.tok != token.SEMI {
		stmt.Init = p.parseSimpleStmtNoSemi()
	}
	p.expect(token.SEMI)

	if p.tok != token.SEMI {
		stmt.Cond = p.parseExpr()
	}
	p.expect(token.SEMI)

	if p.tok != token.RPAREN {
		stmt.Post = p.parseSimpleStmtNoSemi()
	}
	p.expect(token.RPAREN)

	stmt.Body = p.parseBraceBlock()
	return &stmt
}

// parseSimpleStmtNoSemi parses the init/post clause of a for loop: a var
// declaration or an expression/assignment, without consuming a trailing
// semicolon (the caller does, via p.expect(token.SEMI) or RPAREN).
func (p *parser) parseSimpleStmtNoSemi() ast.Stmt {
	if p.tok == token.VAR {
		var decl ast.VarDecl
		decl.Var = p.expect(token.VAR)
		decl.Name = p.parseIdentExpr()
		if p.tok == token.EQ {
			decl.Assign = p.expect(token.EQ)
			decl.Value = p.parseExpr()
		}
		return &decl
	}
	return p.parseExprOrAssign()
}

func (p *parser) parseReturnStmt() *ast.ReturnStmt {
	var stmt ast.ReturnStmt
	stmt.Start = p.expect(token.RETURN)
	if p.tok != token.SEMI {
		stmt.Value = p.parseExpr()
	}
	p.expect(token.SEMI)
	return &stmt
}

func (p *parser) parsePrintStmt() *ast.PrintStmt {
	var stmt ast.PrintStmt
	stmt.Print = p.expect(token.PRINT)
	stmt.Value = p.parseExpr()
	stmt.Semi = p.expect(token.SEMI)
	return &stmt
}

func (p *parser) parseSwitchStmt() *ast.SwitchStmt {
	var stmt ast.SwitchStmt
	stmt.Switch = p.expect(token.SWITCH)
	p.expect(token.LPAREN)
	stmt.Tag = p.parseExpr()
	p.expect(token.RPAREN)
	stmt.Lbrace = p.expect(token.LBRACE)

	for !tokenIn(p.tok, token.RBRACE, token.EOF) {
		stmt.Cases = append(stmt.Cases, p.parseCaseClause())
	}
	stmt.Rbrace = p.expect(token.RBRACE)
	return &stmt
}

func (p *parser) parseCaseClause() *ast.CaseClause {
	var clause ast.CaseClause
	if p.tok == token.DEFAULT {
		clause.Default = true
		clause.Case = p.expect(token.DEFAULT)
	} else {
		clause.Case = p.expect(token.CASE)
		clause.Values = append(clause.Values, p.parseExpr())
		for p.tok == token.COMMA {
			p.expect(token.COMMA)
			clause.Values = append(clause.Values, p.parseExpr())
		}
	}
	clause.Colon = p.expect(token.COLON)
	clause.Body = p.parseStmtsUntil(token.CASE, token.DEFAULT, token.RBRACE)
	return &clause
}

func (p *parser) parseFuncDecl(export bool) *ast.FuncDecl {
	var decl ast.FuncDecl
	decl.Export = export
	decl.Fn = p.expect(token.FUNC)
	decl.Name = p.parseIdentExpr()
	decl.Params = p.parseParams()
	decl.Body = p.parseBraceBlock()
	decl.End = decl.Body.End
	return &decl
}

func (p *parser) parseClassDecl(export bool) *ast.ClassDecl {
	var decl ast.ClassDecl
	decl.Export = export
	decl.Class = p.expect(token.CLASS)
	decl.Name = p.parseIdentExpr()
	if p.tok == token.COLON {
		decl.Colon = p.expect(token.COLON)
		decl.Super = p.parseIdentExpr()
	}
	decl.Lbrace = p.expect(token.LBRACE)
	for !tokenIn(p.tok, token.RBRACE, token.EOF) {
		switch p.tok {
		case token.FUNC:
			decl.Methods = append(decl.Methods, p.parseFuncDecl(false))
		case token.IDENT:
			// a method may also be written without the func keyword: name(...) {...}
			var m ast.FuncDecl
			m.Name = p.parseIdentExpr()
			m.Fn = m.Name.Start
			m.Params = p.parseParams()
			m.Body = p.parseBraceBlock()
			m.End = m.Body.End
			decl.Methods = append(decl.Methods, &m)
		case token.VAR:
			decl.Fields = append(decl.Fields, p.parseVarDecl(false))
		default:
			p.expect(token.FUNC, token.VAR)
		}
	}
	decl.Rbrace = p.expect(token.RBRACE)
	return &decl
}

func (p *parser) parseStructDecl(export bool) *ast.StructDecl {
	var decl ast.StructDecl
	decl.Export = export
	decl.Struct = p.expect(token.STRUCT)
	decl.Name = p.parseIdentExpr()
	decl.Lbrace = p.expect(token.LBRACE)
	for p.tok == token.IDENT {
		decl.Fields = append(decl.Fields, p.parseIdentExpr())
		if p.tok == token.COMMA {
			p.expect(token.COMMA)
		} else {
			break
		}
	}
	decl.Rbrace = p.expect(token.RBRACE)
	return &decl
}

func (p *parser) parseImportDecl() *ast.ImportDecl {
	var decl ast.ImportDecl
	decl.Import = p.expect(token.IMPORT)
	decl.Path = p.val.Str
	p.expect(token.STRING)
	if p.tok == token.AS {
		p.expect(token.AS)
		decl.Alias = p.parseIdentExpr()
	}
	decl.Semi = p.expect(token.SEMI)
	return &decl
}

// parseExprOrAssignStmt parses a statement starting with an expression: a
// plain expression statement, an assignment, or a desugared x++/x--
// increment/decrement.
func (p *parser) parseExprOrAssignStmt() ast.Stmt {
	stmt := p.parseExprOrAssign()
	semi := p.expect(token.SEMI)
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		s.Semi = semi
	case *ast.AssignStmt:
		s.Semi = semi
	}
	return stmt
}

func (p *parser) parseExprOrAssign() ast.Stmt {
	expr := p.parseExpr()

	switch p.tok {
	case token.EQ:
		if !ast.IsAssignable(expr) {
			start, _ := expr.Span()
			p.errorExpected(start, "assignable expression")
		}
		assign := p.expect(token.EQ)
		return &ast.AssignStmt{Left: expr, Assign: assign, Right: p.parseExpr()}

	case token.PLUSPLUS, token.MINUSMINUS:
		if !ast.IsAssignable(expr) {
			start, _ := expr.Span()
			p.errorExpected(start, "assignable expression")
		}
		op := p.tok
		pos := p.expect(p.tok)
		binType := token.PLUS
		if op == token.MINUSMINUS {
			binType = token.MINUS
		}
		one := &ast.LiteralExpr{Type: token.INT, Start: pos, Raw: "1", Value: int64(1)}
		rhs := &ast.BinOpExpr{Left: expr, Type: binType, Op: pos, Right: one}
		return &ast.AssignStmt{Left: expr, Assign: pos, Right: rhs}

	default:
		return &ast.ExprStmt{Expr: expr}
	}
}
