// pattern.go — the pattern grammar.
//
// Patterns appear in let statements, for loops, closures, match arms and
// let guards. The dispatch mirrors the expression atom dispatch: a plain
// identifier not followed by path/struct/tuple/range punctuation is a
// binding; everything else routes through the path, literal, reference,
// tuple or slice productions. Unrecognized leading tokens report
// "expected pattern".
package resyn

// parsePat parses one pattern (no leading `|`, no or-alternatives; the
// callers that allow or-patterns loop on `|` themselves).
func (p *parser) parsePat() (Pat, error) {
	switch p.peek().Type {
	case UNDERSCORE:
		p.i++
		return &PatWild{}, nil

	case BOX:
		p.i++
		inner, err := p.parsePat()
		if err != nil {
			return nil, err
		}
		return &PatBox{Pat: inner}, nil

	case REF, MUT:
		return p.patIdent()

	case MINUS, INT, FLOAT, STRLIT, CHARLIT, BOOL:
		return p.patLitOrRange()

	case AND:
		p.i++
		mut := p.match(MUT)
		inner, err := p.parsePat()
		if err != nil {
			return nil, err
		}
		return &PatRef{Mut: mut, Pat: inner}, nil

	case ANDAND:
		p.i++
		mut := p.match(MUT)
		inner, err := p.parsePat()
		if err != nil {
			return nil, err
		}
		return &PatRef{Pat: &PatRef{Mut: mut, Pat: inner}}, nil

	case LPAREN:
		p.i++
		body, err := p.patTupleBody(RPAREN)
		if err != nil {
			return nil, err
		}
		return &body, nil

	case LBRACKET:
		return p.patSlice()

	case IDENT:
		switch p.peekN(1).Type {
		case COLONCOLON, BANG, LBRACE, LPAREN, DOTDOT, DOTDOTEQ, DOTDOTDOT:
			return p.patPathish()
		}
		return p.patIdent()

	case SELF:
		return p.patIdent()

	case SELFTYPE, SUPER, CRATE, COLONCOLON:
		return p.patPathish()
	}
	return nil, p.errHere("expected pattern")
}

// patIdent parses `ref mut name @ subpat`.
func (p *parser) patIdent() (Pat, error) {
	pat := &PatIdent{}
	pat.ByRef = p.match(REF)
	pat.Mut = p.match(MUT)
	t := p.peek()
	if t.Type != IDENT && t.Type != SELF {
		return nil, p.errHere("expected pattern")
	}
	p.i++
	pat.Ident = segmentIdent(t)
	if p.match(AT) {
		sub, err := p.parsePat()
		if err != nil {
			return nil, err
		}
		pat.Subpat = sub
	}
	return pat, nil
}

// patPathish parses the pattern forms that start with a path: struct and
// tuple-struct patterns, macro invocations, path patterns, and ranges
// whose lower bound is a path constant.
func (p *parser) patPathish() (Pat, error) {
	path, err := p.parsePath(false)
	if err != nil {
		return nil, err
	}
	switch p.peek().Type {
	case BANG:
		p.i++
		delim, toks, err := p.parseMacroBody()
		if err != nil {
			return nil, err
		}
		return &PatMacro{Mac: Macro{Path: path, Delim: delim, Tokens: toks}}, nil

	case LBRACE:
		return p.patStruct(path)

	case LPAREN:
		p.i++
		body, err := p.patTupleBody(RPAREN)
		if err != nil {
			return nil, err
		}
		return &PatTupleStruct{Path: path, Pat: body}, nil

	case DOTDOT, DOTDOTEQ, DOTDOTDOT:
		closed := !p.at(DOTDOT)
		p.i++
		hi, err := p.patLitExpr()
		if err != nil {
			return nil, err
		}
		return &PatRange{Lo: &ExprPath{Path: path}, Hi: hi, Closed: closed}, nil
	}
	return &PatPath{Path: path}, nil
}

// patStruct parses `Path { field: pat, shorthand, .. }`.
func (p *parser) patStruct(path Path) (Pat, error) {
	p.i++ // `{`
	pat := &PatStruct{Path: path}
	for !p.at(RBRACE) {
		if p.at(DOTDOT) {
			p.i++
			pat.Rest = true
			break
		}
		field, err := p.parseFieldPat()
		if err != nil {
			return nil, err
		}
		pat.Fields = append(pat.Fields, field)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RBRACE, "expected `}`"); err != nil {
		return nil, err
	}
	return pat, nil
}

func (p *parser) parseFieldPat() (FieldPat, error) {
	attrs, err := p.parseOuterAttrs()
	if err != nil {
		return FieldPat{}, err
	}
	// `name: pat` when a colon follows, shorthand binding otherwise
	if (p.at(IDENT) || p.at(INT)) && p.atN(1, COLON) {
		member, err := p.parseMember()
		if err != nil {
			return FieldPat{}, err
		}
		p.i++ // `:`
		inner, err := p.parsePat()
		if err != nil {
			return FieldPat{}, err
		}
		return FieldPat{Attrs: attrs, Member: member, Colon: true, Pat: inner}, nil
	}
	boxed := p.match(BOX)
	byref := p.match(REF)
	mut := p.match(MUT)
	t, err := p.need(IDENT, "expected identifier or integer")
	if err != nil {
		return FieldPat{}, err
	}
	var inner Pat = &PatIdent{ByRef: byref, Mut: mut, Ident: t.Literal.(string)}
	if boxed {
		inner = &PatBox{Pat: inner}
	}
	return FieldPat{
		Attrs:  attrs,
		Member: Member{Named: true, Name: t.Literal.(string)},
		Pat:    inner,
	}, nil
}

// patTupleBody parses the comma-separated element list of a tuple or
// tuple-struct pattern after the consumed opener. A bare `..` splits the
// elements into front and back halves.
func (p *parser) patTupleBody(close TokenType) (PatTuple, error) {
	var t PatTuple
	for !p.at(close) {
		if p.at(DOTDOT) {
			p.i++
			t.HasRest = true
		} else {
			elem, err := p.parsePat()
			if err != nil {
				return PatTuple{}, err
			}
			if t.HasRest {
				t.Back = append(t.Back, elem)
			} else {
				t.Front = append(t.Front, elem)
			}
		}
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(close, "expected `)`"); err != nil {
		return PatTuple{}, err
	}
	return t, nil
}

// patSlice parses `[front, middle.., back]`. The rest position takes
// either a bare `..` or a named capture of the middle of the slice
// (`rest..`); back elements need a comma after the rest.
func (p *parser) patSlice() (Pat, error) {
	p.i++ // `[`
	pat := &PatSlice{}
	for !p.at(RBRACKET) && !p.at(DOTDOT) {
		var elem Pat
		var err error
		if p.at(IDENT) && p.atN(1, DOTDOT) && (p.atN(2, COMMA) || p.atN(2, RBRACKET)) {
			// `rest..` binds the middle; keep it out of the range form
			elem, err = p.patIdent()
		} else {
			elem, err = p.parsePat()
		}
		if err != nil {
			return nil, err
		}
		if p.at(DOTDOT) {
			pat.Middle = elem
			break
		}
		pat.Front = append(pat.Front, elem)
		if !p.match(COMMA) {
			break
		}
	}
	if p.match(DOTDOT) {
		pat.HasRest = true
		if p.match(COMMA) {
			for !p.at(RBRACKET) {
				elem, err := p.parsePat()
				if err != nil {
					return nil, err
				}
				pat.Back = append(pat.Back, elem)
				if !p.match(COMMA) {
					break
				}
			}
		}
	}
	if _, err := p.need(RBRACKET, "expected `]`"); err != nil {
		return nil, err
	}
	return pat, nil
}

// patLitOrRange parses a literal pattern, continuing into a range when
// `..`, `..=` or `...` follows.
func (p *parser) patLitOrRange() (Pat, error) {
	lo, err := p.patLitExpr()
	if err != nil {
		return nil, err
	}
	if p.at(DOTDOT) || p.at(DOTDOTEQ) || p.at(DOTDOTDOT) {
		closed := !p.at(DOTDOT)
		p.i++
		hi, err := p.patLitExpr()
		if err != nil {
			return nil, err
		}
		return &PatRange{Lo: lo, Hi: hi, Closed: closed}, nil
	}
	return &PatLit{X: lo}, nil
}

// patLitExpr parses a range bound: an optionally negated literal, or a
// path constant.
func (p *parser) patLitExpr() (Expr, error) {
	neg := p.match(MINUS)
	var e Expr
	switch p.peek().Type {
	case INT, FLOAT, STRLIT, CHARLIT, BOOL:
		t := p.peek()
		p.i++
		e = &ExprLit{Tok: t}
	case IDENT, SELFTYPE, SUPER, CRATE, COLONCOLON:
		path, err := p.parsePath(false)
		if err != nil {
			return nil, err
		}
		e = &ExprPath{Path: path}
	default:
		return nil, p.errHere("expected pattern")
	}
	if neg {
		e = &ExprUnary{Op: OpNeg, X: e}
	}
	return e, nil
}
