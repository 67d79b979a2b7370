// parser.go — precedence-climbing expression parser.
//
// OVERVIEW
// --------
// This module implements the expression grammar: a hand-written,
// precedence-climbing parser over the token stream produced by lexer.go.
// It covers the full expression surface (literals, paths with turbofish,
// unary and binary operators, ranges, casts, control flow, closures,
// struct literals, macro invocations) plus the postfix turboball splice
// `expr::(marker)` that lifts a prefix construct behind its subject
// expression (see mark.go / postmark.go).
//
// Design notes:
//   - The parser is a cursor over a flat token slice. Speculation is a
//     saved integer index; a failed attempt restores the index and never
//     leaks an error.
//   - Binary expressions use precedence climbing with a fixed ladder
//     (precAny < precAssign < ... < precCast). Only the assignment level
//     is right-associative.
//   - A single allowStruct flag is threaded through every production. It
//     is false in the condition/scrutinee position of if/while/for/match
//     (where `{` must start the body, not a struct literal) and restored
//     to true inside any parenthesis, bracket or brace.
//   - Grammars outside the expression language (types, items, attribute
//     arguments, macro bodies) are captured as balanced token runs and
//     carried verbatim; see scanType and collectBalanced.
//   - In interactive mode, errors raised at EOF are flagged Incomplete so
//     a REPL can ask for a continuation line instead of reporting a hard
//     parse error.
//
// Dependencies
// ------------
//   - lexer.go (tokens)
//   - ast.go (tree)
//   - pattern.go, mark.go, postmark.go, stmt.go (sub-grammars)
package resyn

import (
	"fmt"
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// ParseExpr parses a complete expression; trailing tokens are an error.
func ParseExpr(src string) (Expr, error) {
	p, err := newParser(src, false)
	if err != nil {
		return nil, err
	}
	e, err := p.parseExprAllow(true)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errHere("unexpected token")
	}
	return e, nil
}

// ParseStmts parses a statement sequence, the body of a synthetic block
// wrapped around the whole input.
func ParseStmts(src string) ([]Stmt, error) {
	p, err := newParser(src, false)
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseWithin()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errHere("unexpected token")
	}
	return stmts, nil
}

// ParseStmtsInteractive parses in REPL-friendly mode: unterminated
// constructs at EOF produce a *ParseError with Incomplete set.
func ParseStmtsInteractive(src string) ([]Stmt, error) {
	p, err := newParser(src, true)
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseWithin()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errHere("unexpected token")
	}
	return stmts, nil
}

// ParseStmt parses exactly one statement. Unlike the sequence entries,
// an expression statement that would need a terminator is rejected even
// at end of input.
func ParseStmt(src string) (Stmt, error) {
	p, err := newParser(src, false)
	if err != nil {
		return nil, err
	}
	s, err := p.parseStmt(false)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errHere("unexpected token")
	}
	return s, nil
}

// ParsePat parses a complete pattern; trailing tokens are an error.
func ParsePat(src string) (Pat, error) {
	p, err := newParser(src, false)
	if err != nil {
		return nil, err
	}
	pat, err := p.parsePat()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errHere("unexpected token")
	}
	return pat, nil
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
///////////////////////////// PRIVATE IMPLEMENTATION ///////////////////////////
////////////////////////////////////////////////////////////////////////////////

// ParseError is the single error kind the parser produces. Col is
// 0-based; Incomplete marks errors raised at EOF in interactive mode.
type ParseError struct {
	Line       int
	Col        int
	Msg        string
	Incomplete bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

type parser struct {
	toks        []Token
	i           int
	src         string
	interactive bool
}

func newParser(src string, interactive bool) (*parser, error) {
	lex := NewLexer(src)
	toks, err := lex.Scan()
	if err != nil {
		return nil, err
	}
	return &parser{toks: toks, src: src, interactive: interactive}, nil
}

// ─────────────────────────── token basics & helpers ─────────────────────────

func (p *parser) atEnd() bool { return p.peek().Type == EOF }

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *parser) peekN(n int) Token {
	idx := p.i + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) at(tt TokenType) bool { return p.peek().Type == tt }

func (p *parser) atN(n int, tt TokenType) bool { return p.peekN(n).Type == tt }

func (p *parser) match(tt ...TokenType) bool {
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

func (p *parser) need(tt TokenType, msg string) (Token, error) {
	if p.peek().Type != tt {
		return Token{}, p.errHere(msg)
	}
	t := p.peek()
	p.i++
	return t, nil
}

func (p *parser) errHere(msg string) error {
	return p.errAt(p.peek(), msg)
}

func (p *parser) errAt(tok Token, msg string) error {
	return &ParseError{
		Line:       tok.Line,
		Col:        tok.Col,
		Msg:        msg,
		Incomplete: p.interactive && tok.Type == EOF,
	}
}

// endOfOperand reports whether the next token can never start an
// expression operand because it ends the enclosing scope. This stands in
// for the "buffer is empty" checks of a nested-buffer parser.
func (p *parser) endOfOperand() bool {
	switch p.peek().Type {
	case EOF, RPAREN, RBRACKET, RBRACE:
		return true
	}
	return false
}

// hoistAttrs prepends outer attributes onto whatever node the parse
// committed to.
func hoistAttrs(e Expr, outer []Attribute) {
	if len(outer) == 0 {
		return
	}
	inner := e.replaceAttrs(nil)
	e.replaceAttrs(append(outer, inner...))
}

// ───────────────────────────── balanced capture ─────────────────────────────

// collectBalanced consumes tokens up to the close delimiter matching an
// already-consumed opener, tracking nesting of all three delimiter kinds.
// The inner tokens are returned; the closer is consumed but dropped.
func (p *parser) collectBalanced(close TokenType) ([]Token, error) {
	var stack []TokenType
	var out []Token
	for {
		t := p.peek()
		switch t.Type {
		case EOF:
			return nil, p.errHere("unexpected token")
		case LPAREN:
			stack = append(stack, RPAREN)
		case LBRACKET:
			stack = append(stack, RBRACKET)
		case LBRACE:
			stack = append(stack, RBRACE)
		case RPAREN, RBRACKET, RBRACE:
			if len(stack) == 0 {
				if t.Type == close {
					p.i++
					return out, nil
				}
				return nil, p.errHere("unexpected token")
			}
			if stack[len(stack)-1] != t.Type {
				return nil, p.errHere("unexpected token")
			}
			stack = stack[:len(stack)-1]
		}
		out = append(out, t)
		p.i++
	}
}

// collectAngles consumes a generic-argument run after an already-consumed
// `<`, up to the matching `>`. A `>>` closing two levels at once is split
// so the returned tokens stay balanced on their own.
func (p *parser) collectAngles() ([]Token, error) {
	depth := 1
	var out []Token
	for {
		t := p.peek()
		switch t.Type {
		case EOF:
			return nil, p.errHere("expected `>`")
		case LT:
			depth++
		case SHL:
			depth += 2
		case GT:
			depth--
			if depth == 0 {
				p.i++
				return out, nil
			}
		case SHR:
			if depth == 2 {
				// closes the inner level and ours; keep the inner `>`
				p.i++
				out = append(out, Token{Type: GT, Lexeme: ">", Line: t.Line, Col: t.Col})
				return out, nil
			}
			if depth < 2 {
				return nil, p.errHere("unexpected token")
			}
			depth -= 2
		}
		out = append(out, t)
		p.i++
	}
}

// ───────────────────────────── attributes ─────────────────────────────

// parseOuterAttrs captures any run of `#[...]` attributes verbatim.
func (p *parser) parseOuterAttrs() ([]Attribute, error) {
	var attrs []Attribute
	for p.at(POUND) && p.atN(1, LBRACKET) {
		p.i += 2
		toks, err := p.collectBalanced(RBRACKET)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, Attribute{Tokens: toks})
	}
	return attrs, nil
}

// parseInnerAttrs captures any run of `#![...]` attributes verbatim.
func (p *parser) parseInnerAttrs() ([]Attribute, error) {
	var attrs []Attribute
	for p.at(POUND) && p.atN(1, BANG) && p.atN(2, LBRACKET) {
		p.i += 3
		toks, err := p.collectBalanced(RBRACKET)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, Attribute{Inner: true, Tokens: toks})
	}
	return attrs, nil
}

// skipAttrs returns the token index just past any run of `#[...]` outer
// attributes starting at idx, without moving the cursor. Used by the
// statement dispatch to peek at the token that follows the attributes.
func (p *parser) skipAttrs(idx int) int {
	for idx+1 < len(p.toks) && p.toks[idx].Type == POUND && p.toks[idx+1].Type == LBRACKET {
		depth := 0
		j := idx + 1
		for j < len(p.toks) {
			switch p.toks[j].Type {
			case LPAREN, LBRACKET, LBRACE:
				depth++
			case RPAREN, RBRACKET, RBRACE:
				depth--
			}
			j++
			if depth == 0 {
				break
			}
		}
		idx = j
	}
	return idx
}

// ───────────────────────────── opaque types ─────────────────────────────

// scanType captures one type as a balanced token run, greedily but with
// no `+` bound continuation, stopping at depth 0 on any token in stop or
// on anything that cannot continue a type. A small prefix/infix state
// distinguishes `*const u8` (pointer prefix) from `u32 * 2` (stop).
func (p *parser) scanType(stop ...TokenType) (Type, error) {
	stops := make(map[TokenType]bool, len(stop))
	for _, s := range stop {
		stops[s] = true
	}

	var out []Token
	var stack []TokenType
	angle := 0
	prefix := true // next token sits in type-prefix position

	flat := func() bool { return len(stack) == 0 && angle == 0 }

	for {
		t := p.peek()
		if t.Type == EOF {
			break
		}
		if flat() && stops[t.Type] && !(prefix && (t.Type == STAR || t.Type == AND || t.Type == ANDAND)) {
			break
		}
		switch t.Type {
		case LPAREN:
			stack = append(stack, RPAREN)
			prefix = true
		case LBRACKET:
			stack = append(stack, RBRACKET)
			prefix = true
		case LBRACE:
			if flat() {
				// a brace at top level belongs to the surrounding grammar
				goto done
			}
			stack = append(stack, RBRACE)
			prefix = true
		case RPAREN, RBRACKET, RBRACE:
			if len(stack) == 0 {
				goto done
			}
			if stack[len(stack)-1] != t.Type {
				return Type{}, p.errHere("unexpected token")
			}
			stack = stack[:len(stack)-1]
			prefix = false
		case LT:
			angle++
			prefix = true
		case SHL:
			angle += 2
			prefix = true
		case GT:
			if angle == 0 {
				goto done
			}
			angle--
			prefix = false
		case SHR:
			if angle < 2 {
				goto done
			}
			angle -= 2
			prefix = false
		case STAR, AND, ANDAND:
			if flat() && !prefix {
				goto done
			}
			prefix = true
		case PLUS, MINUS, SLASH, PERCENT, CARET, OR, OROR, ANDEQ, OREQ,
			EQEQ, NE, LE, GE, ASSIGN, FATARROW, LARROW, DOT, DOTDOT,
			DOTDOTEQ, DOTDOTDOT, QUESTION, AT, POUND:
			if flat() {
				goto done
			}
			prefix = true
		case IDENT, SELFTYPE, SELF, SUPER, CRATE, UNDERSCORE, LIFETIME,
			INT, STRLIT, BOOL:
			prefix = false
		case COLONCOLON, COLON, COMMA, SEMI, RARROW, BANG, MUT, CONST,
			DYN, IMPL, FN, AS, EXTERN, FOR, WHERE, UNSAFE, STATIC, TYPE:
			// `as` and the separators belong to the surrounding grammar at
			// top level, but may occur inside generic arguments
			if flat() && (t.Type == COMMA || t.Type == SEMI || t.Type == COLON || t.Type == AS) {
				goto done
			}
			prefix = true
		default:
			if flat() {
				goto done
			}
		}
		out = append(out, t)
		p.i++
	}
done:
	if len(out) == 0 {
		return Type{}, p.errHere("unexpected token")
	}
	return Type{Tokens: out}, nil
}

// ───────────────────────────── paths & macros ─────────────────────────────

func segmentStart(tt TokenType) bool {
	switch tt {
	case IDENT, SELF, SELFTYPE, SUPER, CRATE, EXTERN:
		return true
	}
	return false
}

func segmentIdent(t Token) string {
	switch t.Type {
	case IDENT:
		return t.Literal.(string)
	default:
		return t.Lexeme
	}
}

// parsePath parses a path. In expression style a segment may carry
// turbofish generic arguments (`::` immediately followed by `<`); a `::`
// followed by `(` is never part of the path, that pairing belongs to the
// turboball splice.
func (p *parser) parsePath(exprStyle bool) (Path, error) {
	var path Path
	if p.at(COLONCOLON) && segmentStart(p.peekN(1).Type) {
		path.LeadingColon = true
		p.i++
	}
	for {
		seg, err := p.parseSegment(exprStyle)
		if err != nil {
			return Path{}, err
		}
		path.Segments = append(path.Segments, seg)
		if p.at(COLONCOLON) && segmentStart(p.peekN(1).Type) {
			p.i++
			continue
		}
		return path, nil
	}
}

func (p *parser) parseSegment(exprStyle bool) (PathSegment, error) {
	t := p.peek()
	if !segmentStart(t.Type) {
		return PathSegment{}, p.errHere("expected identifier")
	}
	p.i++
	seg := PathSegment{Ident: segmentIdent(t)}
	if exprStyle && p.at(COLONCOLON) && p.atN(1, LT) {
		p.i += 2
		args, err := p.collectAngles()
		if err != nil {
			return PathSegment{}, err
		}
		seg.HasArgs = true
		seg.Args = args
	}
	return seg, nil
}

// parseMacroBody captures a delimited macro body verbatim.
func (p *parser) parseMacroBody() (TokenType, []Token, error) {
	delim := p.peek().Type
	var close TokenType
	switch delim {
	case LPAREN:
		close = RPAREN
	case LBRACKET:
		close = RBRACKET
	case LBRACE:
		close = RBRACE
	default:
		return ILLEGAL, nil, p.errHere("unexpected token")
	}
	p.i++
	toks, err := p.collectBalanced(close)
	if err != nil {
		return ILLEGAL, nil, err
	}
	return delim, toks, nil
}

// ───────────────────────────── precedence ladder ─────────────────────────────

type precedence int

const (
	precAny precedence = iota
	precAssign
	precPlacement
	precRange
	precOr
	precAnd
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precArith
	precTerm
	precCast
)

// binOpOf maps an operator token to its BinOp, compound assignment
// included.
func binOpOf(tt TokenType) (BinOp, bool) {
	switch tt {
	case PLUS:
		return OpAdd, true
	case MINUS:
		return OpSub, true
	case STAR:
		return OpMul, true
	case SLASH:
		return OpDiv, true
	case PERCENT:
		return OpRem, true
	case ANDAND:
		return OpAnd, true
	case OROR:
		return OpOr, true
	case CARET:
		return OpBitXor, true
	case AND:
		return OpBitAnd, true
	case OR:
		return OpBitOr, true
	case SHL:
		return OpShl, true
	case SHR:
		return OpShr, true
	case EQEQ:
		return OpEq, true
	case LT:
		return OpLt, true
	case LE:
		return OpLe, true
	case NE:
		return OpNe, true
	case GE:
		return OpGe, true
	case GT:
		return OpGt, true
	case PLUSEQ:
		return OpAddEq, true
	case MINUSEQ:
		return OpSubEq, true
	case STAREQ:
		return OpMulEq, true
	case SLASHEQ:
		return OpDivEq, true
	case PERCENTEQ:
		return OpRemEq, true
	case CARETEQ:
		return OpBitXorEq, true
	case ANDEQ:
		return OpBitAndEq, true
	case OREQ:
		return OpBitOrEq, true
	case SHLEQ:
		return OpShlEq, true
	case SHREQ:
		return OpShrEq, true
	}
	return 0, false
}

func precOf(op BinOp) precedence {
	switch op {
	case OpAdd, OpSub:
		return precArith
	case OpMul, OpDiv, OpRem:
		return precTerm
	case OpAnd:
		return precAnd
	case OpOr:
		return precOr
	case OpBitXor:
		return precBitXor
	case OpBitAnd:
		return precBitAnd
	case OpBitOr:
		return precBitOr
	case OpShl, OpShr:
		return precShift
	case OpEq, OpLt, OpLe, OpNe, OpGe, OpGt:
		return precCompare
	}
	// compound assignment
	return precAssign
}

// peekPrec gives the precedence level of the operator about to be seen,
// or precAny when the next token is not an infix operator.
func (p *parser) peekPrec() precedence {
	if op, ok := binOpOf(p.peek().Type); ok {
		return precOf(op)
	}
	switch p.peek().Type {
	case ASSIGN:
		return precAssign
	case LARROW:
		return precPlacement
	case DOTDOT, DOTDOTEQ, DOTDOTDOT:
		return precRange
	case AS, COLON:
		return precCast
	}
	return precAny
}

// ───────────────────────────── expression core ─────────────────────────────

// parseExprAllow parses a complete expression at the Any level.
func (p *parser) parseExprAllow(allowStruct bool) (Expr, error) {
	lhs, err := p.unaryExpr(allowStruct)
	if err != nil {
		return nil, err
	}
	return p.climbExpr(lhs, allowStruct, precAny)
}

// climbExpr is the precedence-climbing loop. Only the assignment level is
// right-associative; range right-hand sides are optional.
func (p *parser) climbExpr(lhs Expr, allowStruct bool, base precedence) (Expr, error) {
	for {
		if op, ok := binOpOf(p.peek().Type); ok && precOf(op) >= base {
			p.i++
			prec := precOf(op)
			rhs, err := p.unaryExpr(allowStruct)
			if err != nil {
				return nil, err
			}
			for {
				next := p.peekPrec()
				if next > prec || (next == prec && prec == precAssign) {
					rhs, err = p.climbExpr(rhs, allowStruct, next)
					if err != nil {
						return nil, err
					}
					continue
				}
				break
			}
			if op.isAssignOp() {
				lhs = &ExprAssignOp{Op: op, Left: lhs, Right: rhs}
			} else {
				lhs = &ExprBinary{Op: op, Left: lhs, Right: rhs}
			}
		} else if precAssign >= base && p.at(ASSIGN) {
			p.i++
			rhs, err := p.unaryExpr(allowStruct)
			if err != nil {
				return nil, err
			}
			for {
				next := p.peekPrec()
				if next >= precAssign {
					rhs, err = p.climbExpr(rhs, allowStruct, next)
					if err != nil {
						return nil, err
					}
					continue
				}
				break
			}
			lhs = &ExprAssign{Left: lhs, Right: rhs}
		} else if precPlacement >= base && p.at(LARROW) {
			p.i++
			rhs, err := p.unaryExpr(allowStruct)
			if err != nil {
				return nil, err
			}
			for {
				next := p.peekPrec()
				if next > precPlacement {
					rhs, err = p.climbExpr(rhs, allowStruct, next)
					if err != nil {
						return nil, err
					}
					continue
				}
				break
			}
			lhs = &ExprInPlace{Place: lhs, Value: rhs}
		} else if precRange >= base && (p.at(DOTDOT) || p.at(DOTDOTEQ) || p.at(DOTDOTDOT)) {
			closed := !p.at(DOTDOT)
			p.i++
			var to Expr
			if !(p.endOfOperand() || p.at(COMMA) || p.at(SEMI) ||
				(!allowStruct && p.at(LBRACE))) {
				rhs, err := p.unaryExpr(allowStruct)
				if err != nil {
					return nil, err
				}
				for {
					next := p.peekPrec()
					if next > precRange {
						rhs, err = p.climbExpr(rhs, allowStruct, next)
						if err != nil {
							return nil, err
						}
						continue
					}
					break
				}
				to = rhs
			}
			lhs = &ExprRange{From: lhs, To: to, Closed: closed}
		} else if precCast >= base && p.at(AS) {
			p.i++
			ty, err := p.scanType(PLUS)
			if err != nil {
				return nil, err
			}
			lhs = &ExprCast{X: lhs, Ty: ty}
		} else if precCast >= base && p.at(COLON) {
			p.i++
			ty, err := p.scanType(PLUS)
			if err != nil {
				return nil, err
			}
			lhs = &ExprAscribe{X: lhs, Ty: ty}
		} else {
			return lhs, nil
		}
	}
}

// unaryExpr parses the prefix operators `&`, `&&` (reference of
// reference), `box`, `*`, `!` and `-`, falling back to trailerExpr.
func (p *parser) unaryExpr(allowStruct bool) (Expr, error) {
	save := p.i
	attrs, err := p.parseOuterAttrs()
	if err != nil {
		return nil, err
	}
	switch p.peek().Type {
	case AND:
		p.i++
		mut := p.match(MUT)
		x, err := p.unaryExpr(allowStruct)
		if err != nil {
			return nil, err
		}
		return &ExprReference{exprAttrs: exprAttrs{Attrs: attrs}, Mut: mut, X: x}, nil
	case ANDAND:
		p.i++
		mut := p.match(MUT)
		x, err := p.unaryExpr(allowStruct)
		if err != nil {
			return nil, err
		}
		inner := &ExprReference{Mut: mut, X: x}
		return &ExprReference{exprAttrs: exprAttrs{Attrs: attrs}, X: inner}, nil
	case BOX:
		p.i++
		x, err := p.unaryExpr(allowStruct)
		if err != nil {
			return nil, err
		}
		return &ExprBox{exprAttrs: exprAttrs{Attrs: attrs}, X: x}, nil
	case STAR, BANG, MINUS:
		var op UnOp
		switch p.peek().Type {
		case STAR:
			op = OpDeref
		case BANG:
			op = OpNot
		case MINUS:
			op = OpNeg
		}
		p.i++
		x, err := p.unaryExpr(allowStruct)
		if err != nil {
			return nil, err
		}
		return &ExprUnary{exprAttrs: exprAttrs{Attrs: attrs}, Op: op, X: x}, nil
	}
	// not a unary operator; rewind so trailerExpr re-reads the attributes
	p.i = save
	return p.trailerExpr(allowStruct)
}

// trailerExpr parses an atom followed by its postfix trailers, then
// hoists any outer attributes onto the committed node.
func (p *parser) trailerExpr(allowStruct bool) (Expr, error) {
	attrs, err := p.parseOuterAttrs()
	if err != nil {
		return nil, err
	}
	atom, err := p.atomExpr(allowStruct)
	if err != nil {
		return nil, err
	}
	e, err := p.trailerHelper(atom)
	if err != nil {
		return nil, err
	}
	hoistAttrs(e, attrs)
	return e, nil
}

// trailerHelper applies the postfix trailer loop: calls, method calls
// (with optional turbofish), field accesses, indexing, `?`, and the
// turboball splice `::(`.
func (p *parser) trailerHelper(e Expr) (Expr, error) {
	for {
		switch {
		case p.at(LPAREN):
			p.i++
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			e = &ExprCall{Func: e, Args: args}

		case p.at(DOT):
			p.i++
			// tuple indexes chain as one float token: x.0.1
			if p.at(FLOAT) {
				t := p.peek()
				lo, hi, ok := strings.Cut(t.Lexeme, ".")
				if ok && isDigits(lo) && isDigits(hi) {
					p.i++
					e = &ExprField{Base: e, Member: Member{Index: mustInt(lo)}}
					e = &ExprField{Base: e, Member: Member{Index: mustInt(hi)}}
					continue
				}
			}
			member, err := p.parseMember()
			if err != nil {
				return nil, err
			}
			if member.Named && p.at(COLONCOLON) && p.atN(1, LT) {
				p.i += 2
				turbo, err := p.collectAngles()
				if err != nil {
					return nil, err
				}
				if _, err := p.need(LPAREN, "expected `(`"); err != nil {
					return nil, err
				}
				args, err := p.parseCallArgs()
				if err != nil {
					return nil, err
				}
				e = &ExprMethodCall{Receiver: e, Method: member.Name, HasTurbo: true, Turbofish: turbo, Args: args}
				continue
			}
			if member.Named && p.at(LPAREN) {
				p.i++
				args, err := p.parseCallArgs()
				if err != nil {
					return nil, err
				}
				e = &ExprMethodCall{Receiver: e, Method: member.Name, Args: args}
				continue
			}
			e = &ExprField{Base: e, Member: member}

		case p.at(LBRACKET):
			p.i++
			idx, err := p.parseExprAllow(true)
			if err != nil {
				return nil, err
			}
			if _, err := p.need(RBRACKET, "expected `]`"); err != nil {
				return nil, err
			}
			e = &ExprIndex{X: e, Index: idx}

		case p.at(QUESTION):
			p.i++
			e = &ExprTry{X: e}

		case p.at(COLONCOLON) && p.atN(1, LPAREN):
			tb, err := p.parseTurboball(e)
			if err != nil {
				return nil, err
			}
			e = tb

		default:
			return e, nil
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func mustInt(s string) int64 {
	var v int64
	for i := 0; i < len(s); i++ {
		v = v*10 + int64(s[i]-'0')
	}
	return v
}

// parseCallArgs parses a comma-separated argument list after a consumed
// `(`, consuming the closing `)`.
func (p *parser) parseCallArgs() ([]Expr, error) {
	var args []Expr
	for {
		if p.at(RPAREN) {
			p.i++
			return args, nil
		}
		a, err := p.parseExprAllow(true)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.match(COMMA) {
			continue
		}
		if _, err := p.need(RPAREN, "expected `)`"); err != nil {
			return nil, err
		}
		return args, nil
	}
}

// parseMember parses a struct field name or tuple index.
func (p *parser) parseMember() (Member, error) {
	t := p.peek()
	switch t.Type {
	case IDENT:
		p.i++
		return Member{Named: true, Name: t.Literal.(string)}, nil
	case INT:
		p.i++
		return Member{Index: t.Literal.(int64)}, nil
	}
	return Member{}, p.errHere("expected identifier or integer")
}

// ───────────────────────────── atoms ─────────────────────────────

// atomExpr dispatches on the leading token(s) of an atomic expression.
func (p *parser) atomExpr(allowStruct bool) (Expr, error) {
	switch {
	case p.at(INT), p.at(FLOAT), p.at(STRLIT), p.at(CHARLIT), p.at(BOOL):
		t := p.peek()
		p.i++
		return &ExprLit{Tok: t}, nil

	case p.at(ASYNC) && (p.atN(1, LBRACE) || (p.atN(1, MOVE) && p.atN(2, LBRACE))):
		return p.exprAsync()

	case p.at(TRY) && p.atN(1, LBRACE):
		return p.exprTryBlock()

	case p.at(OR), p.at(OROR), p.at(MOVE), p.at(STATIC),
		p.at(ASYNC) && (p.atN(1, OR) || p.atN(1, OROR) || p.atN(1, MOVE)):
		return p.exprClosure(allowStruct)

	case p.at(LT):
		return p.qualifiedPathVerbatim()

	case p.at(IDENT), p.at(SELF), p.at(SELFTYPE), p.at(SUPER), p.at(CRATE), p.at(EXTERN),
		p.at(COLONCOLON) && !p.atN(1, LPAREN):
		return p.pathOrMacroOrStruct(allowStruct)

	case p.at(LPAREN):
		return p.parenOrTuple()

	case p.at(LBRACKET):
		return p.arrayOrRepeat()

	case p.at(LET):
		return p.exprLetGuard()

	case p.at(IF):
		return p.exprIf()

	case p.at(WHILE):
		return p.exprWhile("")

	case p.at(FOR):
		return p.exprFor("")

	case p.at(LOOP):
		return p.exprLoop("")

	case p.at(MATCH):
		return p.exprMatch()

	case p.at(UNSAFE):
		return p.exprUnsafe()

	case p.at(LBRACE):
		return p.exprBlockExpr("")

	case p.at(BREAK):
		return p.exprBreak(allowStruct)

	case p.at(CONTINUE):
		return p.exprContinue()

	case p.at(RETURN):
		return p.exprReturn(allowStruct)

	case p.at(YIELD):
		return p.exprYield()

	case p.at(DOTDOT), p.at(DOTDOTEQ), p.at(DOTDOTDOT):
		return p.exprRangePrefix(allowStruct)

	case p.at(LIFETIME):
		label := p.peek().Lexeme
		p.i++
		if _, err := p.need(COLON, "unexpected token"); err != nil {
			return nil, err
		}
		switch p.peek().Type {
		case WHILE:
			return p.exprWhile(label)
		case FOR:
			return p.exprFor(label)
		case LOOP:
			return p.exprLoop(label)
		case LBRACE:
			return p.exprBlockExpr(label)
		}
		return nil, p.errHere("expected loop or block expression")
	}
	return nil, p.errHere("expected expression")
}

// qualifiedPathVerbatim captures `<Ty as Trait>::rest` as an opaque run.
func (p *parser) qualifiedPathVerbatim() (Expr, error) {
	var out []Token
	out = append(out, p.peek())
	p.i++ // `<`
	inner, err := p.collectAngles()
	if err != nil {
		return nil, err
	}
	out = append(out, inner...)
	out = append(out, Token{Type: GT, Lexeme: ">"})
	segs := 0
	for p.at(COLONCOLON) && segmentStart(p.peekN(1).Type) {
		out = append(out, p.peek())
		p.i++
		out = append(out, p.peek())
		p.i++
		segs++
	}
	if segs == 0 {
		return nil, p.errHere("expected expression")
	}
	return &ExprVerbatim{Tokens: out}, nil
}

// pathOrMacroOrStruct parses an expression that begins with a path: a
// plain path, a macro invocation `path!(...)`, or a struct literal
// `path { ... }` when the context allows one.
func (p *parser) pathOrMacroOrStruct(allowStruct bool) (Expr, error) {
	path, err := p.parsePath(true)
	if err != nil {
		return nil, err
	}
	hasArgs := false
	for _, seg := range path.Segments {
		if seg.HasArgs {
			hasArgs = true
		}
	}
	if !hasArgs && p.at(BANG) {
		p.i++
		delim, toks, err := p.parseMacroBody()
		if err != nil {
			return nil, err
		}
		return &ExprMacro{Mac: Macro{Path: path, Delim: delim, Tokens: toks}}, nil
	}
	if allowStruct && p.at(LBRACE) {
		return p.exprStructHelper(path)
	}
	return &ExprPath{Path: path}, nil
}

// exprStructHelper parses the braced body of a struct literal.
func (p *parser) exprStructHelper(path Path) (Expr, error) {
	p.i++ // `{`
	e := &ExprStruct{Path: path}
	inner, err := p.parseInnerAttrs()
	if err != nil {
		return nil, err
	}
	e.Attrs = inner
	for {
		if p.at(RBRACE) || p.at(DOTDOT) {
			break
		}
		fv, err := p.parseFieldValue()
		if err != nil {
			return nil, err
		}
		e.Fields = append(e.Fields, fv)
		if !p.match(COMMA) {
			break
		}
	}
	if p.match(DOTDOT) {
		rest, err := p.parseExprAllow(true)
		if err != nil {
			return nil, err
		}
		e.HasRest = true
		e.Rest = rest
	}
	if _, err := p.need(RBRACE, "expected `}`"); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *parser) parseFieldValue() (FieldValue, error) {
	attrs, err := p.parseOuterAttrs()
	if err != nil {
		return FieldValue{}, err
	}
	member, err := p.parseMember()
	if err != nil {
		return FieldValue{}, err
	}
	fv := FieldValue{Attrs: attrs, Member: member}
	if p.at(COLON) {
		p.i++
		fv.Colon = true
		x, err := p.parseExprAllow(true)
		if err != nil {
			return FieldValue{}, err
		}
		fv.X = x
	}
	return fv, nil
}

// parenOrTuple parses `()`, `(e)` and `(a, b, ...)`.
func (p *parser) parenOrTuple() (Expr, error) {
	p.i++ // `(`
	inner, err := p.parseInnerAttrs()
	if err != nil {
		return nil, err
	}
	if p.match(RPAREN) {
		return &ExprTuple{exprAttrs: exprAttrs{Attrs: inner}}, nil
	}
	first, err := p.parseExprAllow(true)
	if err != nil {
		return nil, err
	}
	if p.match(RPAREN) {
		return &ExprParen{exprAttrs: exprAttrs{Attrs: inner}, X: first}, nil
	}
	tup := &ExprTuple{exprAttrs: exprAttrs{Attrs: inner}, Elems: []Expr{first}}
	for {
		if p.at(RPAREN) {
			break
		}
		if _, err := p.need(COMMA, "expected `)`"); err != nil {
			return nil, err
		}
		if p.at(RPAREN) {
			break
		}
		e, err := p.parseExprAllow(true)
		if err != nil {
			return nil, err
		}
		tup.Elems = append(tup.Elems, e)
	}
	if _, err := p.need(RPAREN, "expected `)`"); err != nil {
		return nil, err
	}
	return tup, nil
}

// arrayOrRepeat parses `[a, b, c]` and `[x; n]`.
func (p *parser) arrayOrRepeat() (Expr, error) {
	p.i++ // `[`
	inner, err := p.parseInnerAttrs()
	if err != nil {
		return nil, err
	}
	if p.match(RBRACKET) {
		return &ExprArray{exprAttrs: exprAttrs{Attrs: inner}}, nil
	}
	first, err := p.parseExprAllow(true)
	if err != nil {
		return nil, err
	}
	if p.at(SEMI) {
		p.i++
		length, err := p.parseExprAllow(true)
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RBRACKET, "expected `]`"); err != nil {
			return nil, err
		}
		return &ExprRepeat{exprAttrs: exprAttrs{Attrs: inner}, X: first, Len: length}, nil
	}
	if !p.at(COMMA) && !p.at(RBRACKET) {
		return nil, p.errHere("expected `,` or `;`")
	}
	arr := &ExprArray{exprAttrs: exprAttrs{Attrs: inner}, Elems: []Expr{first}}
	for {
		if p.at(RBRACKET) {
			break
		}
		if _, err := p.need(COMMA, "expected `,` or `;`"); err != nil {
			return nil, err
		}
		if p.at(RBRACKET) {
			break
		}
		e, err := p.parseExprAllow(true)
		if err != nil {
			return nil, err
		}
		arr.Elems = append(arr.Elems, e)
	}
	p.i++ // `]`
	return arr, nil
}

// exprRangePrefix parses a range with no lower bound.
func (p *parser) exprRangePrefix(allowStruct bool) (Expr, error) {
	closed := !p.at(DOTDOT)
	p.i++
	var to Expr
	if !(p.endOfOperand() || p.at(COMMA) || p.at(SEMI) ||
		(!allowStruct && p.at(LBRACE))) {
		rhs, err := p.unaryExpr(allowStruct)
		if err != nil {
			return nil, err
		}
		for {
			next := p.peekPrec()
			if next > precRange {
				rhs, err = p.climbExpr(rhs, allowStruct, next)
				if err != nil {
					return nil, err
				}
				continue
			}
			break
		}
		to = rhs
	}
	return &ExprRange{To: to, Closed: closed}, nil
}

// ───────────────────────────── control flow atoms ─────────────────────────────

func (p *parser) exprIf() (Expr, error) {
	p.i++ // `if`
	cond, err := p.parseExprAllow(false)
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	e := &ExprIf{Cond: cond, Then: then}
	if p.match(ELSE) {
		alt, err := p.elseBlock()
		if err != nil {
			return nil, err
		}
		e.Else = alt
	}
	return e, nil
}

// elseBlock parses the branch after `else`: another if, or a block.
func (p *parser) elseBlock() (Expr, error) {
	switch p.peek().Type {
	case IF:
		return p.exprIf()
	case LBRACE:
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ExprBlock{Body: body}, nil
	}
	return nil, p.errHere("expected loop or block expression")
}

func (p *parser) exprWhile(label string) (Expr, error) {
	p.i++ // `while`
	cond, err := p.parseExprAllow(false)
	if err != nil {
		return nil, err
	}
	attrs, body, err := p.parseBlockWithAttrs()
	if err != nil {
		return nil, err
	}
	return &ExprWhile{exprAttrs: exprAttrs{Attrs: attrs}, Label: label, Cond: cond, Body: body}, nil
}

func (p *parser) exprFor(label string) (Expr, error) {
	p.i++ // `for`
	pat, err := p.parsePat()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(IN, "unexpected token"); err != nil {
		return nil, err
	}
	iter, err := p.parseExprAllow(false)
	if err != nil {
		return nil, err
	}
	attrs, body, err := p.parseBlockWithAttrs()
	if err != nil {
		return nil, err
	}
	return &ExprForLoop{exprAttrs: exprAttrs{Attrs: attrs}, Label: label, Pat: pat, Iter: iter, Body: body}, nil
}

func (p *parser) exprLoop(label string) (Expr, error) {
	p.i++ // `loop`
	attrs, body, err := p.parseBlockWithAttrs()
	if err != nil {
		return nil, err
	}
	return &ExprLoop{exprAttrs: exprAttrs{Attrs: attrs}, Label: label, Body: body}, nil
}

func (p *parser) exprMatch() (Expr, error) {
	p.i++ // `match`
	scrutinee, err := p.parseExprAllow(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(LBRACE, "expected `{`"); err != nil {
		return nil, err
	}
	attrs, err := p.parseInnerAttrs()
	if err != nil {
		return nil, err
	}
	var arms []Arm
	for !p.at(RBRACE) {
		if p.at(EOF) {
			return nil, p.errHere("expected `}`")
		}
		arm, err := p.parseArm()
		if err != nil {
			return nil, err
		}
		arms = append(arms, arm)
	}
	p.i++ // `}`
	return &ExprMatch{exprAttrs: exprAttrs{Attrs: attrs}, X: scrutinee, Arms: arms}, nil
}

// parseArm parses one match arm. Arms with non-block bodies need a comma
// unless they are last.
func (p *parser) parseArm() (Arm, error) {
	var arm Arm
	attrs, err := p.parseOuterAttrs()
	if err != nil {
		return Arm{}, err
	}
	arm.Attrs = attrs
	arm.LeadingVert = p.match(OR)
	for {
		pat, err := p.parsePat()
		if err != nil {
			return Arm{}, err
		}
		arm.Pats = append(arm.Pats, pat)
		if !p.match(OR) {
			break
		}
	}
	if p.match(IF) {
		guard, err := p.parseExprAllow(true)
		if err != nil {
			return Arm{}, err
		}
		arm.Guard = guard
	}
	if _, err := p.need(FATARROW, "expected `=>`"); err != nil {
		return Arm{}, err
	}
	body, err := p.parseExprAllow(true)
	if err != nil {
		return Arm{}, err
	}
	arm.Body = body
	if requiresTerminator(body) && !p.at(RBRACE) {
		if _, err := p.need(COMMA, "expected `,`"); err != nil {
			return Arm{}, err
		}
		arm.Comma = true
	} else {
		arm.Comma = p.match(COMMA)
	}
	return arm, nil
}

func (p *parser) exprClosure(allowStruct bool) (Expr, error) {
	e := &ExprClosure{}
	if p.match(ASYNC) {
		e.Async = true
	} else if p.match(STATIC) {
		e.Static = true
	}
	if p.match(MOVE) {
		e.Move = true
	}
	if !p.match(OROR) {
		if _, err := p.need(OR, "expected `|`"); err != nil {
			return nil, err
		}
		for !p.at(OR) {
			arg, err := p.parseClosureArg()
			if err != nil {
				return nil, err
			}
			e.Inputs = append(e.Inputs, arg)
			if p.at(OR) {
				break
			}
			if _, err := p.need(COMMA, "expected `,`"); err != nil {
				return nil, err
			}
		}
		if _, err := p.need(OR, "expected `|`"); err != nil {
			return nil, err
		}
	}
	if p.match(RARROW) {
		ty, err := p.scanType(LBRACE)
		if err != nil {
			return nil, err
		}
		e.Output = &ty
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		e.Body = &ExprBlock{Body: body}
		return e, nil
	}
	body, err := p.parseExprAllow(allowStruct)
	if err != nil {
		return nil, err
	}
	e.Body = body
	return e, nil
}

func (p *parser) parseClosureArg() (ClosureArg, error) {
	pat, err := p.parsePat()
	if err != nil {
		return ClosureArg{}, err
	}
	arg := ClosureArg{Pat: pat}
	if p.match(COLON) {
		ty, err := p.scanType(COMMA, OR)
		if err != nil {
			return ClosureArg{}, err
		}
		arg.Ty = &ty
	}
	return arg, nil
}

func (p *parser) exprUnsafe() (Expr, error) {
	p.i++ // `unsafe`
	attrs, body, err := p.parseBlockWithAttrs()
	if err != nil {
		return nil, err
	}
	return &ExprUnsafe{exprAttrs: exprAttrs{Attrs: attrs}, Body: body}, nil
}

func (p *parser) exprAsync() (Expr, error) {
	p.i++ // `async`
	mov := p.match(MOVE)
	attrs, body, err := p.parseBlockWithAttrs()
	if err != nil {
		return nil, err
	}
	return &ExprAsync{exprAttrs: exprAttrs{Attrs: attrs}, Move: mov, Body: body}, nil
}

func (p *parser) exprTryBlock() (Expr, error) {
	p.i++ // `try`
	attrs, body, err := p.parseBlockWithAttrs()
	if err != nil {
		return nil, err
	}
	return &ExprTryBlock{exprAttrs: exprAttrs{Attrs: attrs}, Body: body}, nil
}

func (p *parser) exprBlockExpr(label string) (Expr, error) {
	attrs, body, err := p.parseBlockWithAttrs()
	if err != nil {
		return nil, err
	}
	return &ExprBlock{exprAttrs: exprAttrs{Attrs: attrs}, Label: label, Body: body}, nil
}

func (p *parser) exprLetGuard() (Expr, error) {
	p.i++ // `let`
	e := &ExprLet{}
	p.match(OR) // optional leading vert
	for {
		pat, err := p.parsePat()
		if err != nil {
			return nil, err
		}
		e.Pats = append(e.Pats, pat)
		if !p.at(OR) {
			break
		}
		p.i++
	}
	if _, err := p.need(ASSIGN, "unexpected token"); err != nil {
		return nil, err
	}
	x, err := p.parseExprAllow(false)
	if err != nil {
		return nil, err
	}
	e.X = x
	return e, nil
}

func (p *parser) exprBreak(allowStruct bool) (Expr, error) {
	p.i++ // `break`
	e := &ExprBreak{}
	if p.at(LIFETIME) {
		e.Label = p.peek().Lexeme
		p.i++
	}
	if !(p.endOfOperand() || p.at(COMMA) || p.at(SEMI) ||
		(!allowStruct && p.at(LBRACE))) {
		x, err := p.parseExprAllow(allowStruct)
		if err != nil {
			return nil, err
		}
		e.X = x
	}
	return e, nil
}

func (p *parser) exprContinue() (Expr, error) {
	p.i++ // `continue`
	e := &ExprContinue{}
	if p.at(LIFETIME) {
		e.Label = p.peek().Lexeme
		p.i++
	}
	return e, nil
}

func (p *parser) exprReturn(allowStruct bool) (Expr, error) {
	p.i++ // `return`
	e := &ExprReturn{}
	// return stays greedy about blocks even where structs are not
	// allowed: `if return { f() } { }` takes the first block as the
	// operand. The struct restriction itself still applies.
	if !(p.endOfOperand() || p.at(COMMA) || p.at(SEMI)) {
		x, err := p.parseExprAllow(allowStruct)
		if err != nil {
			return nil, err
		}
		e.X = x
	}
	return e, nil
}

func (p *parser) exprYield() (Expr, error) {
	p.i++ // `yield`
	e := &ExprYield{}
	if !(p.endOfOperand() || p.at(COMMA) || p.at(SEMI)) {
		x, err := p.parseExprAllow(true)
		if err != nil {
			return nil, err
		}
		e.X = x
	}
	return e, nil
}

// ───────────────────────────── statement-level entry ─────────────────────────────

// exprEarly parses an expression in statement position. Block-shaped
// constructs are parsed directly so the statement grammar can apply its
// terminator rule; if a postfix trailer follows one of them (`.`, `?` or
// the turboball `::(`), the expression continues as an ordinary operand.
func (p *parser) exprEarly() (Expr, error) {
	attrs, err := p.parseOuterAttrs()
	if err != nil {
		return nil, err
	}
	var e Expr
	switch p.peek().Type {
	case IF:
		e, err = p.exprIf()
	case WHILE:
		e, err = p.exprWhile("")
	case FOR:
		e, err = p.exprFor("")
	case LOOP:
		e, err = p.exprLoop("")
	case MATCH:
		e, err = p.exprMatch()
	case UNSAFE:
		e, err = p.exprUnsafe()
	case LBRACE:
		e, err = p.exprBlockExpr("")
	case TRY:
		if p.atN(1, LBRACE) {
			e, err = p.exprTryBlock()
			break
		}
		fallthrough
	default:
		e, err = p.unaryExpr(true)
		if err != nil {
			return nil, err
		}
		hoistAttrs(e, attrs)
		return p.climbExpr(e, true, precAny)
	}
	if err != nil {
		return nil, err
	}
	if p.at(DOT) || p.at(QUESTION) || (p.at(COLONCOLON) && p.atN(1, LPAREN)) {
		e, err = p.trailerHelper(e)
		if err != nil {
			return nil, err
		}
		hoistAttrs(e, attrs)
		return p.climbExpr(e, true, precAny)
	}
	hoistAttrs(e, attrs)
	return e, nil
}
