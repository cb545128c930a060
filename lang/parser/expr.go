package parser

import (
	"github.com/holoscript/holo/lang/ast"
	"github.com/holoscript/holo/lang/token"
)

// parseExpr parses a full expression, including the ternary conditional
// operator, which binds more loosely than anything in parseSubExpr.
func (p *parser) parseExpr() ast.Expr {
	cond := p.parseSubExpr(0)
	if p.tok != token.QUESTION {
		return cond
	}

	var t ast.TernaryExpr
	t.Cond = cond
	t.Question = p.expect(token.QUESTION)
	t.Then = p.parseExpr()
	t.Colon = p.expect(token.COLON)
	t.Else = p.parseExpr()
	return &t
}

var binopPriority = map[token.Token]struct{ left, right int }{
	token.OR:         {1, 1},
	token.AND:        {2, 2},
	token.LT:         {3, 3},
	token.LE:         {3, 3},
	token.GT:         {3, 3},
	token.GE:         {3, 3},
	token.EQEQ:       {3, 3},
	token.NEQ:        {3, 3},
	token.PIPE:       {4, 4},
	token.CIRCUMFLEX: {5, 5},
	token.AMPERSAND:  {6, 6},
	token.LTLT:       {7, 7},
	token.GTGT:       {7, 7},
	token.PLUS:       {10, 10},
	token.MINUS:      {10, 10},
	token.STAR:       {11, 11},
	token.SLASH:      {11, 11},
	token.PERCENT:    {11, 11},
}

const unopPriority = 12

func isUnop(tok token.Token) bool {
	return tok == token.MINUS || tok == token.BANG || tok == token.TILDE
}

func isAtom(tok token.Token) bool {
	switch tok {
	case token.INT, token.FLOAT, token.STRING, token.NIL, token.TRUE, token.FALSE:
		return true
	default:
		return false
	}
}

// parseSubExpr parses an expression whose outermost binary operator binds
// tighter than priority, by precedence climbing.
func (p *parser) parseSubExpr(priority int) ast.Expr {
	var left ast.Expr

	if isUnop(p.tok) {
		var unop ast.UnaryOpExpr
		unop.Type = p.tok
		unop.Op = p.expect(p.tok)
		unop.Right = p.parseSubExpr(unopPriority)
		left = &unop
	} else {
		left = p.parseSimpleExpr()
	}

	for {
		prio, ok := binopPriority[p.tok]
		if !ok || prio.left <= priority {
			break
		}
		var bin ast.BinOpExpr
		bin.Left = left
		bin.Type = p.tok
		bin.Op = p.expect(p.tok)
		bin.Right = p.parseSubExpr(prio.right)
		left = &bin
	}
	return left
}

func (p *parser) parseSimpleExpr() ast.Expr {
	switch {
	case isAtom(p.tok):
		return p.parseAtomExpr()
	case p.tok == token.LBRACK:
		return p.parseArrayExpr()
	case p.tok == token.STRUCT:
		return p.parseStructLiteralExpr()
	case p.tok == token.FUNC:
		return p.parseFuncExpr()
	case p.tok == token.LAUNCH:
		return p.parseLaunchExpr()
	case p.tok == token.AWAIT:
		return p.parseAwaitExpr()
	default:
		return p.parseSuffixedExpr()
	}
}

func (p *parser) parseAtomExpr() *ast.LiteralExpr {
	var val any
	switch p.tok {
	case token.INT:
		val = p.val.Int
	case token.FLOAT:
		val = p.val.Float
	case token.STRING:
		val = p.val.Str
	case token.NIL:
		val = nil
	case token.TRUE:
		val = true
	case token.FALSE:
		val = false
	}
	lit := &ast.LiteralExpr{
		Type:  p.tok,
		Raw:   p.val.Raw,
		Value: val,
	}
	lit.Start = p.expect(p.tok)
	return lit
}

func (p *parser) parseArrayExpr() *ast.ArrayExpr {
	var expr ast.ArrayExpr
	expr.Lbrack = p.expect(token.LBRACK)

	for !tokenIn(p.tok, token.RBRACK, token.EOF) {
		expr.Items = append(expr.Items, p.parseExpr())
		if p.tok == token.COMMA {
			p.expect(token.COMMA)
		} else {
			break
		}
	}
	expr.Rbrack = p.expect(token.RBRACK)
	return &expr
}

func (p *parser) parseStructLiteralExpr() *ast.StructLiteralExpr {
	var expr ast.StructLiteralExpr
	expr.Struct = p.expect(token.STRUCT)
	expr.Lbrace = p.expect(token.LBRACE)

	for !tokenIn(p.tok, token.RBRACE, token.EOF) {
		expr.Items = append(expr.Items, p.parseKeyVal())
		if p.tok == token.COMMA {
			p.expect(token.COMMA)
		} else {
			break
		}
	}
	expr.Rbrace = p.expect(token.RBRACE)
	return &expr
}

func (p *parser) parseKeyVal() *ast.KeyVal {
	var kv ast.KeyVal
	kv.Key = p.parseIdentExpr()
	kv.Colon = p.expect(token.COLON)
	kv.Value = p.parseExpr()
	return &kv
}

func (p *parser) parseFuncExpr() *ast.FuncExpr {
	var expr ast.FuncExpr
	expr.Fn = p.expect(token.FUNC)
	expr.Params = p.parseParams()
	expr.Body = p.parseBraceBlock()
	expr.End = expr.Body.End
	return &expr
}

func (p *parser) parseParams() []*ast.IdentExpr {
	p.expect(token.LPAREN)
	var params []*ast.IdentExpr
	for p.tok == token.IDENT {
		params = append(params, p.parseIdentExpr())
		if p.tok == token.COMMA {
			p.expect(token.COMMA)
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *parser) parseThisExpr() *ast.ThisExpr {
	return &ast.ThisExpr{Start: p.expect(token.THIS)}
}

func (p *parser) parseSuperExpr() *ast.SuperExpr {
	var expr ast.SuperExpr
	expr.Start = p.expect(token.SUPER)
	expr.Dot = p.expect(token.DOT)
	expr.Method = p.parseIdentExpr()
	return &expr
}

func (p *parser) parseLaunchExpr() *ast.LaunchExpr {
	var expr ast.LaunchExpr
	expr.Launch = p.expect(token.LAUNCH)
	call := p.parseSuffixedExpr()
	ce, ok := call.(*ast.CallExpr)
	if !ok {
		start, _ := call.Span()
		p.errorExpected(start, "function call")
		ce = &ast.CallExpr{Fn: call}
	}
	expr.Call = ce
	return &expr
}

func (p *parser) parseAwaitExpr() *ast.AwaitExpr {
	var expr ast.AwaitExpr
	expr.Await = p.expect(token.AWAIT)
	expr.Right = p.parseSubExpr(unopPriority)
	return &expr
}

// parseSuffixedExpr parses an identifier, this, super.name or parenthesized
// expression followed by any chain of '.', '[...]' and '(...)' suffixes.
func (p *parser) parseSuffixedExpr() ast.Expr {
	var primary ast.Expr
	switch p.tok {
	case token.IDENT:
		primary = p.parseIdentExpr()
	case token.THIS:
		primary = p.parseThisExpr()
	case token.SUPER:
		primary = p.parseSuperExpr()
	default:
		lparen := p.expect(token.LPAREN)
		inner := p.parseExpr()
		primary = &ast.ParenExpr{
			Lparen: lparen,
			Expr:   inner,
			Rparen: p.expect(token.RPAREN),
		}
	}

loop:
	for {
		switch p.tok {
		case token.DOT, token.COLONCOLON:
			primary = p.parseDotExpr(primary)
		case token.LBRACK:
			primary = p.parseIndexExpr(primary)
		case token.LPAREN:
			primary = p.parseCallExpr(primary)
		default:
			break loop
		}
	}
	return primary
}

func (p *parser) parseDotExpr(left ast.Expr) *ast.DotExpr {
	var expr ast.DotExpr
	expr.Left = left
	expr.Dot = p.expect(token.DOT, token.COLONCOLON)
	expr.Right = p.parseIdentExpr()
	return &expr
}

func (p *parser) parseIndexExpr(prefix ast.Expr) *ast.IndexExpr {
	var expr ast.IndexExpr
	expr.Prefix = prefix
	expr.Lbrack = p.expect(token.LBRACK)
	expr.Index = p.parseExpr()
	expr.Rbrack = p.expect(token.RBRACK)
	return &expr
}

func (p *parser) parseCallExpr(fn ast.Expr) *ast.CallExpr {
	var expr ast.CallExpr
	expr.Fn = fn
	expr.Lparen = p.expect(token.LPAREN)
	if p.tok != token.RPAREN {
		expr.Args = p.parseExprList()
	}
	expr.Rparen = p.expect(token.RPAREN)
	return &expr
}

func (p *parser) parseIdentExpr() *ast.IdentExpr {
	var exp ast.IdentExpr
	exp.Lit = p.val.Raw
	exp.Start = p.expect(token.IDENT)
	return &exp
}

func (p *parser) parseExprList() []ast.Expr {
	var exprs []ast.Expr
	exprs = append(exprs, p.parseExpr())
	for p.tok == token.COMMA {
		p.expect(token.COMMA)
		exprs = append(exprs, p.parseExpr())
	}
	return exprs
}
