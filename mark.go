// mark.go — the turboball marker grammar.
//
// A turboball is the postfix splice `subject::(marker)`. The marker names
// a prefix construct whose subject was already parsed: `2::(box)` is
// `box 2`, `cond::(if) { a } else { b }` is `if cond { a } else { b }`,
// `iter::('outer: for x in) { body }` is `'outer: for x in iter { body }`.
// The marker carries exactly the lead tokens of the lifted construct; for
// the four constructs with a trailing body (if, while, for, match) the
// body follows the closing paren and is parsed by postmark.go.
//
// A unary marker holds a single operator token, so `x::(*)::(-)` lifts
// two operators with two splices. Anything unrecognized inside the parens
// reports "unknown marker".
package resyn

// ExprMark is the lifted prefix construct of a turboball.
type ExprMark interface {
	markNode()
}

type (
	// MarkBox is `::(box)`.
	MarkBox struct{}

	// MarkUnary is `::(*)`, `::(!)` or `::(-)`, one operator per marker.
	MarkUnary struct {
		Op UnOp
	}

	// MarkLet is `::(let pats =)`.
	MarkLet struct {
		Pats []Pat
	}

	// MarkIf is `::(if)`; the then/else branches follow the splice.
	MarkIf struct{}

	// MarkWhile is `::('label: while)`; the body follows the splice.
	MarkWhile struct {
		Label string
	}

	// MarkForLoop is `::('label: for pat in)`; the body follows.
	MarkForLoop struct {
		Label string
		Pat   Pat
	}

	// MarkLoop is `::('label: loop)`; the subject is the body block.
	MarkLoop struct {
		Label string
	}

	// MarkMatch is `::(match)`; the arms follow the splice.
	MarkMatch struct{}

	// MarkUnsafe is `::(unsafe)`.
	MarkUnsafe struct{}

	// MarkBlock is a bare label marker `::('label:)`.
	MarkBlock struct {
		Label string
	}

	// MarkReference is `::(&)` or `::(&mut)`.
	MarkReference struct {
		Mut bool
	}

	// MarkBreak is `::(break)` or `::(break 'label)`.
	MarkBreak struct {
		Label string
	}

	// MarkReturn is `::(return)`.
	MarkReturn struct{}

	// MarkAsync is `::(async)` or `::(async move)`.
	MarkAsync struct {
		Move bool
	}

	// MarkTryBlock is `::(try)`.
	MarkTryBlock struct{}

	// MarkYield is `::(yield)`.
	MarkYield struct{}
)

func (*MarkBox) markNode() {}
func (*MarkUnary) markNode() {}
func (*MarkLet) markNode() {}
func (*MarkIf) markNode() {}
func (*MarkWhile) markNode() {}
func (*MarkForLoop) markNode() {}
func (*MarkLoop) markNode() {}
func (*MarkMatch) markNode() {}
func (*MarkUnsafe) markNode() {}
func (*MarkBlock) markNode() {}
func (*MarkReference) markNode() {}
func (*MarkBreak) markNode() {}
func (*MarkReturn) markNode() {}
func (*MarkAsync) markNode() {}
func (*MarkTryBlock) markNode() {}
func (*MarkYield) markNode() {}

// parseTurboball parses the splice that follows subject: the cursor sits
// on `::` with `(` right behind it. After the marker's closing paren, the
// four post-marked constructs continue with their trailing body.
func (p *parser) parseTurboball(subject Expr) (Expr, error) {
	p.i += 2 // `::` `(`
	mark, err := p.parseMark()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(RPAREN, "expected `)`"); err != nil {
		return nil, err
	}
	e := &ExprTurboball{X: subject, Mark: mark}
	switch mark.(type) {
	case *MarkIf:
		post, err := p.postMarkIf()
		if err != nil {
			return nil, err
		}
		e.Post = post
	case *MarkWhile:
		post, err := p.postMarkWhile()
		if err != nil {
			return nil, err
		}
		e.Post = post
	case *MarkForLoop:
		post, err := p.postMarkForLoop()
		if err != nil {
			return nil, err
		}
		e.Post = post
	case *MarkMatch:
		post, err := p.postMarkMatch()
		if err != nil {
			return nil, err
		}
		e.Post = post
	}
	return e, nil
}

// parseMark parses the marker between the parens. The dispatch order
// matches the native prefix grammar; a label routes to while/for/loop or
// stands alone as a block label.
func (p *parser) parseMark() (ExprMark, error) {
	switch p.peek().Type {
	case AND:
		p.i++
		return &MarkReference{Mut: p.match(MUT)}, nil

	case BOX:
		p.i++
		return &MarkBox{}, nil

	case STAR:
		p.i++
		return &MarkUnary{Op: OpDeref}, nil

	case BANG:
		p.i++
		return &MarkUnary{Op: OpNot}, nil

	case MINUS:
		p.i++
		return &MarkUnary{Op: OpNeg}, nil

	case LET:
		p.i++
		mark := &MarkLet{}
		p.match(OR) // optional leading vert
		for {
			pat, err := p.parsePat()
			if err != nil {
				return nil, err
			}
			mark.Pats = append(mark.Pats, pat)
			if !p.at(OR) {
				break
			}
			p.i++
		}
		if _, err := p.need(ASSIGN, "unknown marker"); err != nil {
			return nil, err
		}
		return mark, nil

	case IF:
		p.i++
		return &MarkIf{}, nil

	case LIFETIME:
		label := p.peek().Lexeme
		p.i++
		if _, err := p.need(COLON, "expected loop or block expression"); err != nil {
			return nil, err
		}
		switch p.peek().Type {
		case WHILE:
			p.i++
			return &MarkWhile{Label: label}, nil
		case FOR:
			return p.markForLoop(label)
		case LOOP:
			p.i++
			return &MarkLoop{Label: label}, nil
		case RPAREN:
			return &MarkBlock{Label: label}, nil
		}
		return nil, p.errHere("expected loop or block expression")

	case WHILE:
		p.i++
		return &MarkWhile{}, nil

	case FOR:
		return p.markForLoop("")

	case LOOP:
		p.i++
		return &MarkLoop{}, nil

	case MATCH:
		p.i++
		return &MarkMatch{}, nil

	case UNSAFE:
		p.i++
		return &MarkUnsafe{}, nil

	case BREAK:
		p.i++
		mark := &MarkBreak{}
		if p.at(LIFETIME) {
			mark.Label = p.peek().Lexeme
			p.i++
		}
		return mark, nil

	case RETURN:
		p.i++
		return &MarkReturn{}, nil

	case ASYNC:
		p.i++
		return &MarkAsync{Move: p.match(MOVE)}, nil

	case TRY:
		p.i++
		return &MarkTryBlock{}, nil

	case YIELD:
		p.i++
		return &MarkYield{}, nil
	}
	return nil, p.errHere("unknown marker")
}

func (p *parser) markForLoop(label string) (ExprMark, error) {
	p.i++ // `for`
	pat, err := p.parsePat()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(IN, "unknown marker"); err != nil {
		return nil, err
	}
	return &MarkForLoop{Label: label, Pat: pat}, nil
}
