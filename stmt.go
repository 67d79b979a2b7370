// stmt.go — blocks and the statement grammar.
//
// A block is a braced statement sequence. parseWithin is the shared body
// parser: it skips stray semicolons, dispatches each statement, and
// enforces the terminator rule (a non-final expression statement needs a
// `;` unless the expression is block-shaped, see requiresTerminator).
//
// Statement dispatch looks past any outer attributes at the keyword that
// follows: `let` starts a binding, an item keyword starts an item that is
// captured as an opaque balanced token run, a mod-style path followed by
// `!` and a brace (or an ident) is a macro statement, and everything else
// is an expression statement.
package resyn

// parseBlock parses `{ stmts }`.
func (p *parser) parseBlock() (Block, error) {
	if _, err := p.need(LBRACE, "expected `{`"); err != nil {
		return Block{}, err
	}
	stmts, err := p.parseWithin()
	if err != nil {
		return Block{}, err
	}
	if _, err := p.need(RBRACE, "expected `}`"); err != nil {
		return Block{}, err
	}
	return Block{Stmts: stmts}, nil
}

// parseBlockWithAttrs parses `{ #![...] stmts }`, returning the inner
// attributes separately so the caller can attach them to its node.
func (p *parser) parseBlockWithAttrs() ([]Attribute, Block, error) {
	if _, err := p.need(LBRACE, "expected `{`"); err != nil {
		return nil, Block{}, err
	}
	attrs, err := p.parseInnerAttrs()
	if err != nil {
		return nil, Block{}, err
	}
	stmts, err := p.parseWithin()
	if err != nil {
		return nil, Block{}, err
	}
	if _, err := p.need(RBRACE, "expected `}`"); err != nil {
		return nil, Block{}, err
	}
	return attrs, Block{Stmts: stmts}, nil
}

// parseWithin parses statements up to the enclosing `}` or EOF. A
// statement whose expression requires a terminator must be last or be
// followed by `;`.
func (p *parser) parseWithin() ([]Stmt, error) {
	var stmts []Stmt
	for {
		for p.match(SEMI) {
		}
		if p.at(RBRACE) || p.atEnd() {
			break
		}
		s, err := p.parseStmt(true)
		if err != nil {
			return nil, err
		}
		requiresSemi := false
		if se, ok := s.(*StmtExpr); ok {
			requiresSemi = requiresTerminator(se.X)
		}
		stmts = append(stmts, s)
		if p.at(RBRACE) || p.atEnd() {
			break
		}
		if requiresSemi {
			return nil, p.errHere("unexpected token")
		}
	}
	return stmts, nil
}

func (p *parser) typeAt(idx int) TokenType {
	if idx >= len(p.toks) {
		return EOF
	}
	return p.toks[idx].Type
}

// stmtLooksMacro reports whether a mod-style path followed by `!` and a
// brace or ident starts at token index j. Paren and bracket macros fall
// through to expression statements.
func (p *parser) stmtLooksMacro(j int) bool {
	if p.typeAt(j) == COLONCOLON {
		j++
	}
	if !segmentStart(p.typeAt(j)) {
		return false
	}
	j++
	for p.typeAt(j) == COLONCOLON && segmentStart(p.typeAt(j+1)) {
		j += 2
	}
	if p.typeAt(j) != BANG {
		return false
	}
	j++
	return p.typeAt(j) == LBRACE || p.typeAt(j) == IDENT
}

// stmtLooksItem mirrors the item-keyword dispatch: the token at j (just
// past any attributes) starts an item, with one token of lookahead for
// the ambiguous keywords.
func (p *parser) stmtLooksItem(j int) bool {
	t := p.typeAt(j)
	t2 := p.typeAt(j + 1)
	switch t {
	case PUB, USE, CONST, FN, MOD, TYPE, STRUCT, ENUM, TRAIT, IMPL, MACRO:
		return true
	case CRATE, EXTERN:
		return t2 != COLONCOLON
	case STATIC:
		return t2 == MUT || t2 == IDENT
	case UNSAFE:
		return t2 != LBRACE
	case ASYNC:
		return t2 == EXTERN || t2 == FN
	case EXISTENTIAL:
		return t2 == TYPE
	case UNION:
		return t2 == IDENT
	case AUTO:
		return t2 == TRAIT
	case DEFAULT:
		return t2 == UNSAFE || t2 == IMPL
	}
	return false
}

func (p *parser) parseStmt(allowNosemi bool) (Stmt, error) {
	j := p.skipAttrs(p.i)
	switch {
	case p.stmtLooksMacro(j):
		return p.stmtMac()
	case p.typeAt(j) == LET:
		local, err := p.stmtLocal()
		if err != nil {
			return nil, err
		}
		return &StmtLocal{Local: local}, nil
	case p.stmtLooksItem(j):
		return p.stmtItemVerbatim(j)
	}
	return p.stmtExpr(allowNosemi)
}

// stmtMac parses `path! { ... }` or `path! name { ... }` in statement
// position, optional trailing semicolon included.
func (p *parser) stmtMac() (Stmt, error) {
	attrs, err := p.parseOuterAttrs()
	if err != nil {
		return nil, err
	}
	path, err := p.parsePath(false)
	if err != nil {
		return nil, err
	}
	p.i++ // `!`
	ident := ""
	if p.at(IDENT) {
		ident = p.peek().Literal.(string)
		p.i++
	}
	delim, toks, err := p.parseMacroBody()
	if err != nil {
		return nil, err
	}
	semi := p.match(SEMI)
	return &StmtMacro{
		Attrs: attrs,
		Mac:   Macro{Path: path, Delim: delim, Tokens: toks},
		Ident: ident,
		Semi:  semi,
	}, nil
}

// stmtLocal parses a `let` binding: or-patterns, optional ascription,
// optional initializer, mandatory semicolon.
func (p *parser) stmtLocal() (*Local, error) {
	attrs, err := p.parseOuterAttrs()
	if err != nil {
		return nil, err
	}
	p.i++ // `let`
	local := &Local{Attrs: attrs}
	for {
		pat, err := p.parsePat()
		if err != nil {
			return nil, err
		}
		local.Pats = append(local.Pats, pat)
		if !p.at(OR) {
			break
		}
		p.i++
	}
	if p.match(COLON) {
		ty, err := p.scanType(ASSIGN)
		if err != nil {
			return nil, err
		}
		local.Ty = &ty
	}
	if p.match(ASSIGN) {
		init, err := p.parseExprAllow(true)
		if err != nil {
			return nil, err
		}
		local.Init = init
	}
	if _, err := p.need(SEMI, "expected `;`"); err != nil {
		return nil, err
	}
	return local, nil
}

// stmtExpr parses an expression statement and applies the terminator
// rule.
func (p *parser) stmtExpr(allowNosemi bool) (Stmt, error) {
	attrs, err := p.parseOuterAttrs()
	if err != nil {
		return nil, err
	}
	e, err := p.exprEarly()
	if err != nil {
		return nil, err
	}
	hoistAttrs(e, attrs)
	if p.match(SEMI) {
		return &StmtSemi{X: e}, nil
	}
	if allowNosemi || !requiresTerminator(e) {
		return &StmtExpr{X: e}, nil
	}
	return nil, p.errHere("expected semicolon")
}

// itemSemiOnly lists the item keywords whose item always ends at a
// top-level `;` even when a brace closes earlier in the token run
// (`static X: Foo = Foo { a: 1 };`).
func itemSemiOnly(tt TokenType) bool {
	switch tt {
	case USE, CONST, STATIC, TYPE, EXISTENTIAL:
		return true
	}
	return false
}

// stmtItemVerbatim captures an item as an opaque balanced token run. The
// run ends at the first top-level `;`, or at the close of a top-level
// brace block for the item shapes that end in one (fn, struct, enum,
// union, trait, impl, mod, macro).
func (p *parser) stmtItemVerbatim(j int) (Stmt, error) {
	// find the determining keyword past visibility and modifiers
	k := j
	for {
		switch p.typeAt(k) {
		case PUB:
			k++
			if p.typeAt(k) == LPAREN {
				depth := 0
				for k < len(p.toks) {
					switch p.typeAt(k) {
					case LPAREN:
						depth++
					case RPAREN:
						depth--
					}
					k++
					if depth == 0 {
						break
					}
				}
			}
			continue
		case DEFAULT, UNSAFE, ASYNC, AUTO:
			k++
			continue
		}
		break
	}
	semiOnly := itemSemiOnly(p.typeAt(k))

	start := p.i
	var stack []TokenType
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
			if len(stack) == 0 || stack[len(stack)-1] != t.Type {
				return nil, p.errHere("unexpected token")
			}
			stack = stack[:len(stack)-1]
			if t.Type == RBRACE && len(stack) == 0 && !semiOnly {
				p.i++
				return &StmtItem{Tokens: p.toks[start:p.i]}, nil
			}
		case SEMI:
			if len(stack) == 0 {
				p.i++
				return &StmtItem{Tokens: p.toks[start:p.i]}, nil
			}
		}
		p.i++
	}
}
