package scanner_test

import (
	"testing"

	"github.com/holoscript/holo/internal/diag"
	"github.com/holoscript/holo/lang/scanner"
	"github.com/holoscript/holo/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) ([]scanner.TokenAndValue, *diag.Sink) {
	t.Helper()
	fset := token.NewFileSet()
	f := fset.AddFile("test.holo", len(src))
	sink := diag.NewSink(fset)

	var s scanner.Scanner
	s.Init(f, []byte(src), sink)

	var out []scanner.TokenAndValue
	var val token.Value
	for {
		tok := s.Scan(&val)
		out = append(out, scanner.TokenAndValue{Token: tok, Value: val})
		if tok == token.EOF {
			break
		}
	}
	return out, sink
}

func toks(tvs []scanner.TokenAndValue) []token.Token {
	out := make([]token.Token, len(tvs))
	for i, tv := range tvs {
		out[i] = tv.Token
	}
	return out
}

func TestScanPunctuationAndOperators(t *testing.T) {
	tvs, sink := scanAll(t, "( ) [ ] { } , ; . ? ~ + - * / % & | ^ << >> < > <= >= == != && || ! ++ -- : ::")
	require.Equal(t, 0, sink.Len())
	require.Equal(t, []token.Token{
		token.LPAREN, token.RPAREN, token.LBRACK, token.RBRACK, token.LBRACE, token.RBRACE,
		token.COMMA, token.SEMI, token.DOT, token.QUESTION, token.TILDE,
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.AMPERSAND, token.PIPE, token.CIRCUMFLEX, token.LTLT, token.GTGT,
		token.LT, token.GT, token.LE, token.GE, token.EQEQ, token.NEQ,
		token.AND, token.OR, token.BANG, token.PLUSPLUS, token.MINUSMINUS,
		token.COLON, token.COLONCOLON, token.EOF,
	}, toks(tvs))
}

func TestScanKeywordsAndIdents(t *testing.T) {
	tvs, sink := scanAll(t, "var func class struct return if else while for break continue advance switch case default import export as this super launch await print nil true false foo _bar2")
	require.Equal(t, 0, sink.Len())
	want := []token.Token{
		token.VAR, token.FUNC, token.CLASS, token.STRUCT, token.RETURN, token.IF, token.ELSE,
		token.WHILE, token.FOR, token.BREAK, token.CONTINUE, token.ADVANCE, token.SWITCH,
		token.CASE, token.DEFAULT, token.IMPORT, token.EXPORT, token.AS, token.THIS,
		token.SUPER, token.LAUNCH, token.AWAIT, token.PRINT, token.NIL, token.TRUE,
		token.FALSE, token.IDENT, token.IDENT, token.EOF,
	}
	require.Equal(t, want, toks(tvs))
	require.Equal(t, "foo", tvs[len(want)-3].Value.Raw)
	require.Equal(t, "_bar2", tvs[len(want)-2].Value.Raw)
}

func TestScanNumbers(t *testing.T) {
	tvs, sink := scanAll(t, "123 3.14 0x1F 0o17 0b101 1_000 1.5e10")
	require.Equal(t, 0, sink.Len())

	require.Equal(t, token.INT, tvs[0].Token)
	require.EqualValues(t, 123, tvs[0].Value.Int)

	require.Equal(t, token.FLOAT, tvs[1].Token)
	require.InDelta(t, 3.14, tvs[1].Value.Float, 1e-9)

	require.Equal(t, token.INT, tvs[2].Token)
	require.EqualValues(t, 31, tvs[2].Value.Int)

	require.Equal(t, token.INT, tvs[3].Token)
	require.EqualValues(t, 15, tvs[3].Value.Int)

	require.Equal(t, token.INT, tvs[4].Token)
	require.EqualValues(t, 5, tvs[4].Value.Int)

	require.Equal(t, token.INT, tvs[5].Token)
	require.EqualValues(t, 1000, tvs[5].Value.Int)

	require.Equal(t, token.FLOAT, tvs[6].Token)
	require.InDelta(t, 1.5e10, tvs[6].Value.Float, 1)
}

func TestScanStrings(t *testing.T) {
	tvs, sink := scanAll(t, `"hello" "line\nbreak" "tab\tend" "quote\""`)
	require.Equal(t, 0, sink.Len())

	require.Equal(t, token.STRING, tvs[0].Token)
	require.Equal(t, "hello", tvs[0].Value.Str)
	require.Equal(t, "line\nbreak", tvs[1].Value.Str)
	require.Equal(t, "tab\tend", tvs[2].Value.Str)
	require.Equal(t, `quote"`, tvs[3].Value.Str)
}

func TestScanUnterminatedString(t *testing.T) {
	_, sink := scanAll(t, `"unterminated`)
	require.Equal(t, 1, sink.Len())
}

func TestScanCommentsSkipped(t *testing.T) {
	tvs, sink := scanAll(t, "var x = 1; // a comment\n/* block\ncomment */ var y = 2;")
	require.Equal(t, 0, sink.Len())
	require.Equal(t, []token.Token{
		token.VAR, token.IDENT, token.EQ, token.INT, token.SEMI,
		token.VAR, token.IDENT, token.EQ, token.INT, token.SEMI,
		token.EOF,
	}, toks(tvs))
}

func TestScanIllegalCharacter(t *testing.T) {
	_, sink := scanAll(t, "var x = `;")
	require.Equal(t, 1, sink.Len())
}
