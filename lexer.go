// lexer.go
//
// Hand-written tokenizer for the Rust-flavoured surface syntax. It is
// byte-indexed over the source string, produces precise line/col and byte
// spans per token, and applies maximal munch to punctuation so that
// multi-character operators ("::", "..=", "<<=", "||", ...) come out as
// single tokens. Keywords get dedicated token types; everything the parser
// treats as opaque (types, items, macro bodies, attributes) is still lexed
// here token by token and carried through verbatim.
package resyn

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Delimiters
	LPAREN   // "("
	RPAREN   // ")"
	LBRACKET // "["
	RBRACKET // "]"
	LBRACE   // "{"
	RBRACE   // "}"

	// Punctuation
	COMMA      // ","
	SEMI       // ";"
	COLON      // ":"
	COLONCOLON // "::"
	DOT        // "."
	DOTDOT     // ".."
	DOTDOTEQ   // "..="
	DOTDOTDOT  // "..."
	RARROW     // "->"
	LARROW     // "<-"
	FATARROW   // "=>"
	POUND      // "#"
	AT         // "@"
	QUESTION   // "?"
	DOLLAR     // "$" (macro bodies)

	// Operators
	PLUS    // "+"
	MINUS   // "-"
	STAR    // "*"
	SLASH   // "/"
	PERCENT // "%"
	CARET   // "^"
	BANG    // "!"
	AND     // "&"
	OR      // "|"
	ANDAND  // "&&"
	OROR    // "||"
	SHL     // "<<"
	SHR     // ">>"
	ASSIGN  // "="
	EQEQ    // "=="
	NE      // "!="
	LT      // "<"
	GT      // ">"
	LE      // "<="
	GE      // ">="

	// Compound assignment
	PLUSEQ    // "+="
	MINUSEQ   // "-="
	STAREQ    // "*="
	SLASHEQ   // "/="
	PERCENTEQ // "%="
	CARETEQ   // "^="
	ANDEQ     // "&="
	OREQ      // "|="
	SHLEQ     // "<<="
	SHREQ     // ">>="

	// Literals & identifiers
	IDENT
	INT
	FLOAT
	STRLIT
	CHARLIT
	BOOL
	LIFETIME   // "'a" (no closing quote)
	UNDERSCORE // "_"

	// Keywords
	AS
	ASYNC
	AUTO
	BOX
	BREAK
	CONST
	CONTINUE
	CRATE
	DEFAULT
	DYN
	ELSE
	ENUM
	EXISTENTIAL
	EXTERN
	FN
	FOR
	IF
	IMPL
	IN
	LET
	LOOP
	MACRO
	MATCH
	MOD
	MOVE
	MUT
	PUB
	REF
	RETURN
	SELF
	SELFTYPE
	STATIC
	STRUCT
	SUPER
	TRAIT
	TRY
	TYPE
	UNION
	UNSAFE
	USE
	WHERE
	WHILE
	YIELD
)

// Token is a lexical token with optional literal value and byte span.
type Token struct {
	Type      TokenType
	Lexeme    string      // raw text slice
	Literal   interface{} // parsed value for literals
	StartByte int
	EndByte   int
	Line      int
	Col       int
}

// keywords map
var keywords = map[string]TokenType{
	"as":          AS,
	"async":       ASYNC,
	"auto":        AUTO,
	"box":         BOX,
	"break":       BREAK,
	"const":       CONST,
	"continue":    CONTINUE,
	"crate":       CRATE,
	"default":     DEFAULT,
	"dyn":         DYN,
	"else":        ELSE,
	"enum":        ENUM,
	"existential": EXISTENTIAL,
	"extern":      EXTERN,
	"false":       BOOL,
	"fn":          FN,
	"for":         FOR,
	"if":          IF,
	"impl":        IMPL,
	"in":          IN,
	"let":         LET,
	"loop":        LOOP,
	"macro":       MACRO,
	"match":       MATCH,
	"mod":         MOD,
	"move":        MOVE,
	"mut":         MUT,
	"pub":         PUB,
	"ref":         REF,
	"return":      RETURN,
	"self":        SELF,
	"Self":        SELFTYPE,
	"static":      STATIC,
	"struct":      STRUCT,
	"super":       SUPER,
	"trait":       TRAIT,
	"true":        BOOL,
	"try":         TRY,
	"type":        TYPE,
	"union":       UNION,
	"unsafe":      UNSAFE,
	"use":         USE,
	"where":       WHERE,
	"while":       WHILE,
	"yield":       YIELD,
}

// Lexer scans a source string into tokens.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 0-based column within line
	tokens []Token

	// precise token start position
	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:  src,
		line: 1,
		col:  0,
	}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) addToken(tt TokenType, lit interface{}) Token {
	lex := l.src[l.start:l.cur]
	tok := Token{
		Type:      tt,
		Lexeme:    lex,
		Literal:   lit,
		StartByte: l.start,
		EndByte:   l.cur,
		Line:      l.tokStartLine,
		Col:       l.tokStartCol,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	return tok
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\n', '\t':
			l.advance()
			l.start = l.cur
		default:
			return
		}
	}
}

// helpers

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b == '_'
}

// ----- errors -----

// LexError is the single error kind the lexer produces.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

func (l *Lexer) err(msg string) error {
	return &LexError{Line: l.line, Col: l.col, Msg: msg}
}

// ----- scanners -----

// skipComments eats a line comment or a (possibly nested) block comment.
// Reports whether anything was consumed.
func (l *Lexer) skipComments() (bool, error) {
	b0, ok0 := l.peek()
	b1, ok1 := l.peekN(1)
	if !ok0 || !ok1 || b0 != '/' {
		return false, nil
	}
	switch b1 {
	case '/':
		for {
			b, ok := l.peek()
			if !ok || b == '\n' {
				break
			}
			l.advance()
		}
		l.start = l.cur
		return true, nil
	case '*':
		l.advance()
		l.advance()
		depth := 1
		for depth > 0 {
			b, ok := l.peek()
			if !ok {
				return true, l.err("block comment was not terminated")
			}
			if b == '/' {
				if b2, ok2 := l.peekN(1); ok2 && b2 == '*' {
					l.advance()
					l.advance()
					depth++
					continue
				}
			}
			if b == '*' {
				if b2, ok2 := l.peekN(1); ok2 && b2 == '/' {
					l.advance()
					l.advance()
					depth--
					continue
				}
			}
			l.advance()
		}
		l.start = l.cur
		return true, nil
	}
	return false, nil
}

// scanIdentifier parses [A-Za-z0-9_]* continuing from l.start.
func (l *Lexer) scanIdentifier() string {
	runStart := l.cur
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[runStart:l.cur]
}

// scanNumber parses an integer or float literal. The leading digit is
// already consumed. Integers may carry a base prefix (0x, 0o, 0b),
// underscores, and a type suffix; a '.' continues the literal into a float
// only when followed by a digit, so "0..3" keeps the range operator and
// "1.max()" keeps the method call.
func (l *Lexer) scanNumber(first byte) (TokenType, interface{}, error) {
	digits := func(pred func(byte) bool) {
		for {
			b, ok := l.peek()
			if !ok || (!pred(b) && b != '_') {
				break
			}
			l.advance()
		}
	}

	if first == '0' {
		if b, ok := l.peek(); ok && (b == 'x' || b == 'o' || b == 'b') {
			base := 16
			pred := isHex
			switch b {
			case 'o':
				base = 8
				pred = func(c byte) bool { return c >= '0' && c <= '7' }
			case 'b':
				base = 2
				pred = func(c byte) bool { return c == '0' || c == '1' }
			}
			l.advance()
			bodyStart := l.cur
			digits(pred)
			if l.cur == bodyStart {
				return ILLEGAL, nil, l.err("malformed integer literal")
			}
			body := strings.ReplaceAll(l.src[bodyStart:l.cur], "_", "")
			l.scanIdentifier() // optional type suffix
			v, convErr := strconv.ParseInt(body, base, 64)
			if convErr != nil {
				return ILLEGAL, nil, l.err("invalid integer literal")
			}
			return INT, v, nil
		}
	}

	digits(isDigit)

	isFloat := false
	if b, ok := l.peek(); ok && b == '.' {
		if b2, ok2 := l.peekN(1); ok2 && isDigit(b2) {
			isFloat = true
			l.advance()
			digits(isDigit)
		}
	}
	if b, ok := l.peek(); ok && (b == 'e' || b == 'E') {
		save := l.cur
		l.advance()
		if b2, ok2 := l.peek(); ok2 && (b2 == '+' || b2 == '-') {
			l.advance()
		}
		if b3, ok3 := l.peek(); ok3 && isDigit(b3) {
			isFloat = true
			digits(isDigit)
		} else {
			l.cur = save
		}
	}

	numEnd := l.cur
	suffix := l.scanIdentifier()
	if strings.HasPrefix(suffix, "f") {
		isFloat = true
	}
	body := strings.ReplaceAll(l.src[l.start:numEnd], "_", "")

	if isFloat {
		vf, convErr := strconv.ParseFloat(body, 64)
		if convErr != nil {
			return ILLEGAL, nil, l.err("invalid float literal")
		}
		return FLOAT, vf, nil
	}
	v, convErr := strconv.ParseInt(body, 10, 64)
	if convErr != nil {
		return ILLEGAL, nil, l.err("invalid integer literal")
	}
	return INT, v, nil
}

// scanString parses a double-quoted string literal. The opening quote is
// already consumed. Escapes are validated and decoded into the literal
// value, but the token keeps the raw lexeme so printing reproduces the
// source form exactly.
func (l *Lexer) scanString() (string, error) {
	var out []byte
	for {
		b, ok := l.peek()
		if !ok {
			return "", l.err("string was not terminated")
		}
		l.advance()
		if b == '"' {
			return string(out), nil
		}
		if b != '\\' {
			out = append(out, b)
			continue
		}
		esc, ok := l.peek()
		if !ok {
			return "", l.err("unfinished escape sequence")
		}
		l.advance()
		switch esc {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case '0':
			out = append(out, 0)
		case '\\', '"', '\'':
			out = append(out, esc)
		case 'x':
			var hex string
			for i := 0; i < 2; i++ {
				h, okh := l.peek()
				if !okh || !isHex(h) {
					return "", l.err("invalid hex escape (expect 2 hex digits)")
				}
				hex += string(h)
				l.advance()
			}
			v, _ := strconv.ParseUint(hex, 16, 8)
			out = append(out, byte(v))
		case 'u':
			if b2, ok2 := l.peek(); !ok2 || b2 != '{' {
				return "", l.err("invalid unicode escape (expect '{')")
			}
			l.advance()
			var hex string
			for {
				h, okh := l.peek()
				if !okh {
					return "", l.err("unicode escape was not terminated")
				}
				if h == '}' {
					l.advance()
					break
				}
				if !isHex(h) {
					return "", l.err("invalid unicode escape")
				}
				hex += string(h)
				l.advance()
			}
			v, convErr := strconv.ParseUint(hex, 16, 32)
			if convErr != nil {
				return "", l.err("invalid unicode escape")
			}
			out = append(out, []byte(string(rune(v)))...)
		default:
			return "", l.err(fmt.Sprintf("invalid escape sequence: \\%c", esc))
		}
	}
}

// scanQuote handles the shared "'" prefix of char literals and lifetimes.
// The quote is already consumed. A backslash escape or a single char
// followed by a closing quote means char literal; an identifier run with
// no closing quote is a lifetime.
func (l *Lexer) scanQuote() (Token, error) {
	if b, ok := l.peek(); ok && b == '\\' {
		l.advance()
		if _, ok := l.peek(); !ok {
			return Token{}, l.err("unfinished escape sequence")
		}
		l.advance()
		b2, ok2 := l.peek()
		if !ok2 || b2 != '\'' {
			return Token{}, l.err("char literal was not terminated")
		}
		l.advance()
		return l.addToken(CHARLIT, l.src[l.start:l.cur]), nil
	}

	run := l.scanIdentifier()

	if b, ok := l.peek(); ok && b == '\'' && len(run) <= 1 {
		if len(run) == 0 {
			return Token{}, l.err("empty char literal")
		}
		l.advance()
		return l.addToken(CHARLIT, l.src[l.start:l.cur]), nil
	}
	if len(run) == 0 {
		return Token{}, l.err("expected lifetime or char literal after '")
	}
	return l.addToken(LIFETIME, l.src[l.start:l.cur]), nil
}

// punct3 and punct2 are the maximal-munch tables, matched longest first.
var punct3 = map[string]TokenType{
	"..=": DOTDOTEQ,
	"...": DOTDOTDOT,
	"<<=": SHLEQ,
	">>=": SHREQ,
}

var punct2 = map[string]TokenType{
	"::": COLONCOLON,
	"..": DOTDOT,
	"->": RARROW,
	"<-": LARROW,
	"=>": FATARROW,
	"==": EQEQ,
	"!=": NE,
	"<=": LE,
	">=": GE,
	"<<": SHL,
	">>": SHR,
	"&&": ANDAND,
	"||": OROR,
	"+=": PLUSEQ,
	"-=": MINUSEQ,
	"*=": STAREQ,
	"/=": SLASHEQ,
	"%=": PERCENTEQ,
	"^=": CARETEQ,
	"&=": ANDEQ,
	"|=": OREQ,
}

var punct1 = map[byte]TokenType{
	'(': LPAREN,
	')': RPAREN,
	'[': LBRACKET,
	']': RBRACKET,
	'{': LBRACE,
	'}': RBRACE,
	',': COMMA,
	';': SEMI,
	':': COLON,
	'.': DOT,
	'#': POUND,
	'@': AT,
	'?': QUESTION,
	'$': DOLLAR,
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'/': SLASH,
	'%': PERCENT,
	'^': CARET,
	'!': BANG,
	'&': AND,
	'|': OR,
	'=': ASSIGN,
	'<': LT,
	'>': GT,
}

// ----- main scanner -----

func (l *Lexer) scanToken() (Token, error) {
	for {
		l.skipWhitespace()
		if handled, err := l.skipComments(); err != nil {
			return Token{}, err
		} else if handled {
			continue
		}
		l.tokStartLine = l.line
		l.tokStartCol = l.col
		l.start = l.cur

		if l.isAtEnd() {
			return l.addToken(EOF, nil), nil
		}

		// maximal munch over the punctuation tables
		if l.cur+3 <= len(l.src) {
			if tt, ok := punct3[l.src[l.cur:l.cur+3]]; ok {
				l.advance()
				l.advance()
				l.advance()
				return l.addToken(tt, nil), nil
			}
		}
		if l.cur+2 <= len(l.src) {
			if tt, ok := punct2[l.src[l.cur:l.cur+2]]; ok {
				l.advance()
				l.advance()
				return l.addToken(tt, nil), nil
			}
		}

		ch, _ := l.advance()

		if ch == '"' {
			text, err := l.scanString()
			if err != nil {
				return Token{}, err
			}
			return l.addToken(STRLIT, text), nil
		}

		if ch == '\'' {
			return l.scanQuote()
		}

		if isDigit(ch) {
			tt, lit, err := l.scanNumber(ch)
			if err != nil {
				return Token{}, err
			}
			return l.addToken(tt, lit), nil
		}

		if isAlpha(ch) {
			l.scanIdentifier()
			lex := l.src[l.start:l.cur]
			if lex == "_" {
				return l.addToken(UNDERSCORE, nil), nil
			}
			if tt, ok := keywords[lex]; ok {
				if tt == BOOL {
					return l.addToken(BOOL, lex == "true"), nil
				}
				return l.addToken(tt, nil), nil
			}
			return l.addToken(IDENT, lex), nil
		}

		if tt, ok := punct1[ch]; ok {
			return l.addToken(tt, nil), nil
		}

		return Token{}, l.err(fmt.Sprintf("unexpected character: %q", ch))
	}
}

// Scan tokenizes the entire source and returns tokens (EOF included).
func (l *Lexer) Scan() ([]Token, error) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return l.tokens, nil
		}
	}
}
