// Package scanner tokenizes holo source files for the parser to consume.
//
// Some of the scanner is adapted from the Go source code:
// https://cs.opensource.google/go/go/+/refs/tags/go1.22.1:src/go/scanner/scanner.go
package scanner

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/holoscript/holo/internal/diag"
	"github.com/holoscript/holo/lang/token"
)

// TokenAndValue combines the token type with the token value type in the same
// struct.
type TokenAndValue struct {
	Token token.Token
	Value token.Value
}

// ScanFile reads and tokenizes a single source file, registering it in fset.
// Errors are accumulated in sink; the returned token slice always ends with
// an EOF token.
func ScanFile(fset *token.FileSet, sink *diag.Sink, path string) ([]TokenAndValue, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f := fset.AddFile(path, len(b))
	var s Scanner
	s.Init(f, b, sink)

	var out []TokenAndValue
	var val token.Value
	for {
		tok := s.Scan(&val)
		out = append(out, TokenAndValue{Token: tok, Value: val})
		if tok == token.EOF {
			break
		}
	}
	return out, nil
}

// Scanner tokenizes a single source file.
type Scanner struct {
	file *token.File
	src  []byte
	sink *diag.Sink

	sb               strings.Builder
	pendingSurrogate rune
	invalidByte      byte
	cur              rune
	off              int
	roff             int
}

var bom = [2]byte{0xEF, 0xBB}

// Init prepares s to scan src, the full contents of file. It panics if
// file.Size() does not match len(src).
func (s *Scanner) Init(file *token.File, src []byte, sink *diag.Sink) {
	if file.Size() != len(src) {
		panic(fmt.Sprintf("file size (%d) does not match src len (%d)", file.Size(), len(src)))
	}

	s.file = file
	s.src = src
	s.sink = sink
	s.sb.Reset()
	s.pendingSurrogate = 0
	s.invalidByte = 0
	s.cur = ' '
	s.off = 0
	s.roff = 0

	if len(src) >= len(bom) && bytes.Equal(src[:len(bom)], bom[:]) {
		s.off += len(bom)
		s.roff += len(bom)
	}
	s.advance()
}

func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		if s.cur == '\n' {
			s.file.AddLine(s.off)
		}
		s.cur = -1
		return
	}

	s.off = s.roff
	if s.cur == '\n' {
		s.file.AddLine(s.off)
	}

	s.invalidByte = 0
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.off, "illegal UTF-8 encoding")
			s.invalidByte = s.src[s.roff]
		}
	}
	s.roff += w
	s.cur = r
}

func (s *Scanner) error(off int, msg string) {
	if s.sink != nil {
		s.sink.Add(s.file.Pos(off), msg)
	}
}

func (s *Scanner) errorf(off int, format string, args ...any) {
	s.error(off, fmt.Sprintf(format, args...))
}

// advanceIf advances past cur and returns true if cur matches one of the
// given bytes.
func (s *Scanner) advanceIf(matches ...byte) bool {
	if bytes.ContainsRune(matches, s.cur) {
		s.advance()
		return true
	}
	return false
}

// Scan returns the next token, filling in val with its payload.
func (s *Scanner) Scan(val *token.Value) (tok token.Token) {
	s.skipWhitespaceAndComments()

	pos := s.file.Pos(s.off)
	start := s.off

	switch cur := s.cur; {
	case isLetter(cur):
		lit := s.ident()
		tok = token.LookupKw(lit)
		*val = token.Value{Raw: lit, Pos: pos}

	case isDecimal(cur) || (cur == '.' && isDecimal(rune(s.peek()))):
		var base int
		var lit string
		tok, base, lit = s.number()
		*val = token.Value{Raw: lit, Pos: pos}
		if tok == token.INT {
			val.Int = numberToInt(lit, base)
		} else if tok == token.FLOAT {
			val.Float = numberToFloat(lit)
		}

	default:
		s.advance() // always make progress
		switch cur {
		case '(', ')', '[', ']', '{', '}', ',', ';', '~', '?':
			tok = singleCharTokens[cur]
			*val = token.Value{Raw: tok.String(), Pos: pos}

		case '.':
			tok = token.DOT
			*val = token.Value{Raw: ".", Pos: pos}

		case '+':
			tok = token.PLUS
			if s.advanceIf('+') {
				tok = token.PLUSPLUS
			}
			*val = token.Value{Raw: tok.String(), Pos: pos}

		case '-':
			tok = token.MINUS
			if s.advanceIf('-') {
				tok = token.MINUSMINUS
			}
			*val = token.Value{Raw: tok.String(), Pos: pos}

		case '*':
			tok = token.STAR
			*val = token.Value{Raw: "*", Pos: pos}

		case '%':
			tok = token.PERCENT
			*val = token.Value{Raw: "%", Pos: pos}

		case '^':
			tok = token.CIRCUMFLEX
			*val = token.Value{Raw: "^", Pos: pos}

		case '&':
			tok = token.AMPERSAND
			if s.advanceIf('&') {
				tok = token.AND
			}
			*val = token.Value{Raw: tok.String(), Pos: pos}

		case '|':
			tok = token.PIPE
			if s.advanceIf('|') {
				tok = token.OR
			}
			*val = token.Value{Raw: tok.String(), Pos: pos}

		case '<':
			tok = token.LT
			if s.advanceIf('=') {
				tok = token.LE
			} else if s.advanceIf('<') {
				tok = token.LTLT
			}
			*val = token.Value{Raw: tok.String(), Pos: pos}

		case '>':
			tok = token.GT
			if s.advanceIf('=') {
				tok = token.GE
			} else if s.advanceIf('>') {
				tok = token.GTGT
			}
			*val = token.Value{Raw: tok.String(), Pos: pos}

		case '=':
			tok = token.EQ
			if s.advanceIf('=') {
				tok = token.EQEQ
			}
			*val = token.Value{Raw: tok.String(), Pos: pos}

		case '!':
			tok = token.BANG
			if s.advanceIf('=') {
				tok = token.NEQ
			}
			*val = token.Value{Raw: tok.String(), Pos: pos}

		case ':':
			tok = token.COLON
			if s.advanceIf(':') {
				tok = token.COLONCOLON
			}
			*val = token.Value{Raw: tok.String(), Pos: pos}

		case '/':
			tok = token.SLASH
			*val = token.Value{Raw: "/", Pos: pos}

		case '"':
			tok = token.STRING
			lit, str := s.shortString()
			*val = token.Value{Raw: lit, Pos: pos, Str: str}

		case -1:
			tok = token.EOF
			*val = token.Value{Raw: "", Pos: pos}

		default:
			if cur == utf8.RuneError && s.invalidByte > 0 {
				cur = rune(s.invalidByte)
				s.invalidByte = 0
			}
			s.errorf(start, "illegal character %#U", cur)
			tok = token.ILLEGAL
			*val = token.Value{Raw: string(cur), Pos: pos}
		}
	}
	return tok
}

var singleCharTokens = map[rune]token.Token{
	'(': token.LPAREN,
	')': token.RPAREN,
	'[': token.LBRACK,
	']': token.RBRACK,
	'{': token.LBRACE,
	'}': token.RBRACE,
	',': token.COMMA,
	';': token.SEMI,
	'~': token.TILDE,
	'?': token.QUESTION,
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

// skipWhitespaceAndComments consumes whitespace, "// line" comments and
// "/* block */" comments (which may not be nested).
func (s *Scanner) skipWhitespaceAndComments() {
	for {
		for isWhitespace(s.cur) {
			s.advance()
		}
		if s.cur == '/' && s.peek() == '/' {
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
			continue
		}
		if s.cur == '/' && s.peek() == '*' {
			start := s.off
			s.advance()
			s.advance()
			closed := false
			for s.cur != -1 {
				if s.cur == '*' && s.peek() == '/' {
					s.advance()
					s.advance()
					closed = true
					break
				}
				s.advance()
			}
			if !closed {
				s.error(start, "comment not terminated")
			}
			continue
		}
		break
	}
}

func isWhitespace(rn rune) bool {
	return rn == ' ' || rn == '\t' || rn == '\n' || rn == '\r'
}

func isLetter(rn rune) bool {
	return 'a' <= rn && rn <= 'z' ||
		'A' <= rn && rn <= 'Z' ||
		rn == '_' ||
		rn >= utf8.RuneSelf && unicode.IsLetter(rn)
}

func isDigit(rn rune) bool {
	return '0' <= rn && rn <= '9' ||
		rn >= utf8.RuneSelf && unicode.IsDigit(rn)
}
