// postmark.go — trailing bodies of post-marked turboballs.
//
// Four markers leave a body behind the splice: `::(if)` is followed by a
// then block and optional else branch, `::(while)` and `::(for ... in)`
// by a loop body, `::(match)` by a brace of arms. Everything else is
// complete at the closing paren. The pairing between marker and post
// marker is established here at parse time; the printer relies on it.
package resyn

// PostExprMark is the trailing body of a post-marked turboball.
type PostExprMark interface {
	postMarkNode()
}

type (
	// PostIf is the then block and optional else branch after `::(if)`.
	PostIf struct {
		Then Block
		Else Expr // nil, *ExprIf or *ExprBlock
	}

	// PostWhile is the loop body after `::(while)`.
	PostWhile struct {
		Attrs []Attribute
		Body  Block
	}

	// PostForLoop is the loop body after `::(for pat in)`.
	PostForLoop struct {
		Attrs []Attribute
		Body  Block
	}

	// PostMatch is the arm list after `::(match)`.
	PostMatch struct {
		Attrs []Attribute
		Arms  []Arm
	}
)

func (*PostIf) postMarkNode() {}
func (*PostWhile) postMarkNode() {}
func (*PostForLoop) postMarkNode() {}
func (*PostMatch) postMarkNode() {}

func (p *parser) postMarkIf() (PostExprMark, error) {
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	post := &PostIf{Then: then}
	if p.match(ELSE) {
		alt, err := p.elseBlock()
		if err != nil {
			return nil, err
		}
		post.Else = alt
	}
	return post, nil
}

func (p *parser) postMarkWhile() (PostExprMark, error) {
	attrs, body, err := p.parseBlockWithAttrs()
	if err != nil {
		return nil, err
	}
	return &PostWhile{Attrs: attrs, Body: body}, nil
}

func (p *parser) postMarkForLoop() (PostExprMark, error) {
	attrs, body, err := p.parseBlockWithAttrs()
	if err != nil {
		return nil, err
	}
	return &PostForLoop{Attrs: attrs, Body: body}, nil
}

func (p *parser) postMarkMatch() (PostExprMark, error) {
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
	return &PostMatch{Attrs: attrs, Arms: arms}, nil
}
