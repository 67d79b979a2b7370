// printer.go — tree back to source text.
//
// The printer serializes a tree into a canonical single-line form that
// relexes and reparses to an equal tree. Spacing is explicit per
// construct; opaque token runs (types, items, attribute arguments, macro
// bodies) are re-joined with a conservative spacing rule that never lets
// two adjacent tokens fuse into a different token.
//
// Special cases carried from the grammar, not generalized:
//   - wrapBareStruct parenthesizes a struct literal in the scrutinee
//     position of if/while/for/match and on the right of a let, where a
//     bare `{` would be taken for the body.
//   - maybeWrapElse braces an else branch that is neither an if nor a
//     block.
//   - match arms with non-block bodies get a comma after them unless
//     they are last.
//   - a turboball prints un-lifted: marker lead tokens, subject, then
//     the post-marker tail, reconstructing the native prefix spelling.
package resyn

import (
	"fmt"
	"strings"
)

// Print returns the canonical source form of an expression.
func Print(e Expr) string {
	var pr printer
	pr.expr(e)
	return pr.b.String()
}

// PrintStmts returns the canonical source form of a statement sequence,
// statements separated by single spaces.
func PrintStmts(stmts []Stmt) string {
	var pr printer
	pr.stmtSeq(stmts)
	return pr.b.String()
}

// PrintPat returns the canonical source form of a pattern.
func PrintPat(pt Pat) string {
	var pr printer
	pr.pat(pt)
	return pr.b.String()
}

type printer struct {
	b strings.Builder
}

func (pr *printer) w(s string) { pr.b.WriteString(s) }

// ───────────────────────────── token runs ─────────────────────────────

// tokenFusable groups the token types whose lexemes could fuse with a
// neighbour into a different token if printed without a space.
func tokenFusable(tt TokenType) bool {
	switch tt {
	case LT, GT, SHL, SHR, LE, GE, SHLEQ, SHREQ, ASSIGN, EQEQ, FATARROW,
		PLUS, MINUS, STAR, SLASH, PERCENT, CARET, BANG, AND, OR, ANDAND,
		OROR, NE, PLUSEQ, MINUSEQ, STAREQ, SLASHEQ, PERCENTEQ, CARETEQ,
		ANDEQ, OREQ, DOT, DOTDOT, DOTDOTEQ, DOTDOTDOT, COLON, COLONCOLON,
		RARROW, LARROW, POUND, AT, QUESTION, SEMI, COMMA:
		return true
	}
	return false
}

// needsSpace decides whether a space goes between two adjacent tokens of
// an opaque run. The rule is conservative: tight only where fusing is
// impossible.
func needsSpace(prev, cur Token) bool {
	pt, ct := prev.Type, cur.Type
	if tokenFusable(pt) && tokenFusable(ct) {
		switch pt {
		case COLONCOLON, DOT, POUND:
			return false
		}
		return true
	}
	switch pt {
	case LPAREN, LBRACKET, POUND, DOLLAR, DOT, COLONCOLON, BANG, LT, SHL, AND, ANDAND:
		return false
	}
	switch ct {
	case RPAREN, RBRACKET, COMMA, SEMI, COLON, COLONCOLON, DOT, QUESTION,
		LT, GT, SHR:
		return false
	case LPAREN, LBRACKET:
		switch pt {
		case IDENT, SELF, SELFTYPE, SUPER, CRATE, RPAREN, RBRACKET, GT:
			return false
		}
		return true
	}
	return true
}

// tokenText is the printable form of one token.
func tokenText(t Token) string {
	if t.Lexeme != "" {
		return t.Lexeme
	}
	return fmt.Sprintf("<token %d>", t.Type)
}

// tokensToString joins an opaque run back into source text.
func tokensToString(toks []Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && needsSpace(toks[i-1], t) {
			b.WriteByte(' ')
		}
		b.WriteString(tokenText(t))
	}
	return b.String()
}

// ───────────────────────────── small pieces ─────────────────────────────

func (pr *printer) attrsOuter(attrs []Attribute) {
	for _, a := range attrs {
		if a.Inner {
			continue
		}
		pr.w("#[")
		pr.w(tokensToString(a.Tokens))
		pr.w("] ")
	}
}

func (pr *printer) attrsInner(attrs []Attribute) {
	for _, a := range attrs {
		if !a.Inner {
			continue
		}
		pr.w("#![")
		pr.w(tokensToString(a.Tokens))
		pr.w("] ")
	}
}

func (pr *printer) path(p Path) {
	if p.LeadingColon {
		pr.w("::")
	}
	for i, seg := range p.Segments {
		if i > 0 {
			pr.w("::")
		}
		pr.w(seg.Ident)
		if seg.HasArgs {
			pr.w("::<")
			pr.w(tokensToString(seg.Args))
			pr.w(">")
		}
	}
}

func (pr *printer) member(m Member) {
	if m.Named {
		pr.w(m.Name)
		return
	}
	fmt.Fprintf(&pr.b, "%d", m.Index)
}

func (pr *printer) label(l string) {
	if l != "" {
		pr.w(l)
		pr.w(": ")
	}
}

func (pr *printer) macroBody(m Macro) {
	switch m.Delim {
	case LPAREN:
		pr.w("(")
		pr.w(tokensToString(m.Tokens))
		pr.w(")")
	case LBRACKET:
		pr.w("[")
		pr.w(tokensToString(m.Tokens))
		pr.w("]")
	default:
		pr.w("{ ")
		pr.w(tokensToString(m.Tokens))
		pr.w(" }")
	}
}

// wrapBareStruct parenthesizes a bare struct literal in a position where
// `{` would otherwise be read as the start of a body.
func (pr *printer) wrapBareStruct(e Expr) {
	if _, ok := e.(*ExprStruct); ok {
		pr.w("(")
		pr.expr(e)
		pr.w(")")
		return
	}
	pr.expr(e)
}

// maybeWrapElse prints an else branch, bracing anything that is not an
// if or a block.
func (pr *printer) maybeWrapElse(e Expr) {
	switch e.(type) {
	case *ExprIf, *ExprBlock:
		pr.expr(e)
	default:
		pr.w("{ ")
		pr.expr(e)
		pr.w(" }")
	}
}

// ───────────────────────────── blocks & statements ─────────────────────────────

// block prints a braced statement list, with the node's inner attributes
// (if any) at the top.
func (pr *printer) block(b Block, attrs []Attribute) {
	hasInner := false
	for _, a := range attrs {
		if a.Inner {
			hasInner = true
		}
	}
	if len(b.Stmts) == 0 && !hasInner {
		pr.w("{ }")
		return
	}
	pr.w("{ ")
	pr.attrsInner(attrs)
	pr.stmtSeq(b.Stmts)
	pr.w(" }")
}

func (pr *printer) stmtSeq(stmts []Stmt) {
	for i, s := range stmts {
		if i > 0 {
			pr.w(" ")
		}
		pr.stmt(s)
	}
}

func (pr *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case *StmtLocal:
		pr.local(s.Local)
	case *StmtItem:
		pr.w(tokensToString(s.Tokens))
	case *StmtMacro:
		pr.attrsOuter(s.Attrs)
		pr.path(s.Mac.Path)
		pr.w("!")
		if s.Ident != "" {
			pr.w(" ")
			pr.w(s.Ident)
		}
		pr.w(" ")
		pr.macroBody(s.Mac)
		if s.Semi {
			pr.w(";")
		}
	case *StmtExpr:
		pr.expr(s.X)
	case *StmtSemi:
		pr.expr(s.X)
		pr.w(";")
	default:
		panic("unknown statement variant")
	}
}

func (pr *printer) local(l *Local) {
	pr.attrsOuter(l.Attrs)
	pr.w("let ")
	for i, pt := range l.Pats {
		if i > 0 {
			pr.w(" | ")
		}
		pr.pat(pt)
	}
	if l.Ty != nil {
		pr.w(": ")
		pr.w(tokensToString(l.Ty.Tokens))
	}
	if l.Init != nil {
		pr.w(" = ")
		pr.expr(l.Init)
	}
	pr.w(";")
}

// ───────────────────────────── patterns ─────────────────────────────

func (pr *printer) pat(pt Pat) {
	switch pt := pt.(type) {
	case *PatWild:
		pr.w("_")
	case *PatIdent:
		if pt.ByRef {
			pr.w("ref ")
		}
		if pt.Mut {
			pr.w("mut ")
		}
		pr.w(pt.Ident)
		if pt.Subpat != nil {
			pr.w(" @ ")
			pr.pat(pt.Subpat)
		}
	case *PatPath:
		pr.path(pt.Path)
	case *PatLit:
		pr.expr(pt.X)
	case *PatRange:
		pr.expr(pt.Lo)
		if pt.Closed {
			pr.w("..=")
		} else {
			pr.w("..")
		}
		pr.expr(pt.Hi)
	case *PatStruct:
		pr.path(pt.Path)
		pr.w(" { ")
		for i, f := range pt.Fields {
			if i > 0 {
				pr.w(", ")
			}
			pr.attrsOuter(f.Attrs)
			if f.Colon {
				pr.member(f.Member)
				pr.w(": ")
				pr.pat(f.Pat)
			} else {
				pr.pat(f.Pat)
			}
		}
		if pt.Rest {
			if len(pt.Fields) > 0 {
				pr.w(", ")
			}
			pr.w("..")
		}
		pr.w(" }")
	case *PatTupleStruct:
		pr.path(pt.Path)
		pr.patTupleBody(pt.Pat)
	case *PatTuple:
		pr.patTupleBody(*pt)
	case *PatSlice:
		pr.w("[")
		elems := 0
		for _, f := range pt.Front {
			if elems > 0 {
				pr.w(", ")
			}
			pr.pat(f)
			elems++
		}
		if pt.Middle != nil || pt.HasRest {
			if elems > 0 {
				pr.w(", ")
			}
			if pt.Middle != nil {
				pr.pat(pt.Middle)
			}
			pr.w("..")
			elems++
		}
		for _, bk := range pt.Back {
			pr.w(", ")
			pr.pat(bk)
		}
		pr.w("]")
	case *PatBox:
		pr.w("box ")
		pr.pat(pt.Pat)
	case *PatRef:
		pr.w("&")
		if pt.Mut {
			pr.w("mut ")
		}
		pr.pat(pt.Pat)
	case *PatMacro:
		pr.path(pt.Mac.Path)
		pr.w("!")
		pr.macroBody(pt.Mac)
	case *PatVerbatim:
		pr.w(tokensToString(pt.Tokens))
	default:
		panic("unknown pattern variant")
	}
}

func (pr *printer) patTupleBody(t PatTuple) {
	pr.w("(")
	elems := 0
	for _, f := range t.Front {
		if elems > 0 {
			pr.w(", ")
		}
		pr.pat(f)
		elems++
	}
	if t.HasRest {
		if elems > 0 {
			pr.w(", ")
		}
		pr.w("..")
		elems++
	}
	for _, bk := range t.Back {
		pr.w(", ")
		pr.pat(bk)
	}
	pr.w(")")
}

// ───────────────────────────── expressions ─────────────────────────────

func (pr *printer) exprList(elems []Expr) {
	for i, e := range elems {
		if i > 0 {
			pr.w(", ")
		}
		pr.expr(e)
	}
}

// ifTail prints the then block and else chain shared by the native if
// and the un-lifted `::(if)` form.
func (pr *printer) ifTail(then Block, els Expr) {
	pr.w(" ")
	pr.block(then, nil)
	if els != nil {
		pr.w(" else ")
		pr.maybeWrapElse(els)
	}
}

// matchBody prints the braced arm list shared by the native match and
// the un-lifted `::(match)` form.
func (pr *printer) matchBody(arms []Arm, attrs []Attribute) {
	hasInner := false
	for _, a := range attrs {
		if a.Inner {
			hasInner = true
		}
	}
	if len(arms) == 0 && !hasInner {
		pr.w("{ }")
		return
	}
	pr.w("{ ")
	pr.attrsInner(attrs)
	for i, arm := range arms {
		if i > 0 {
			pr.w(" ")
		}
		pr.arm(arm, i == len(arms)-1)
	}
	pr.w(" }")
}

func (pr *printer) arm(a Arm, last bool) {
	pr.attrsOuter(a.Attrs)
	if a.LeadingVert {
		pr.w("| ")
	}
	for i, pt := range a.Pats {
		if i > 0 {
			pr.w(" | ")
		}
		pr.pat(pt)
	}
	if a.Guard != nil {
		pr.w(" if ")
		pr.expr(a.Guard)
	}
	pr.w(" => ")
	pr.expr(a.Body)
	if a.Comma || (!last && requiresTerminator(a.Body)) {
		pr.w(",")
	}
}

func (pr *printer) expr(e Expr) {
	switch e := e.(type) {
	case *ExprLit:
		pr.attrsOuter(e.Attrs)
		pr.w(e.Tok.Lexeme)

	case *ExprPath:
		pr.attrsOuter(e.Attrs)
		pr.path(e.Path)

	case *ExprBox:
		pr.attrsOuter(e.Attrs)
		pr.w("box ")
		pr.expr(e.X)

	case *ExprInPlace:
		pr.attrsOuter(e.Attrs)
		pr.expr(e.Place)
		pr.w(" <- ")
		pr.expr(e.Value)

	case *ExprUnary:
		pr.attrsOuter(e.Attrs)
		pr.w(e.Op.String())
		pr.expr(e.X)

	case *ExprReference:
		pr.attrsOuter(e.Attrs)
		pr.w("&")
		if e.Mut {
			pr.w("mut ")
		}
		pr.expr(e.X)

	case *ExprBinary:
		pr.attrsOuter(e.Attrs)
		pr.expr(e.Left)
		pr.w(" ")
		pr.w(e.Op.String())
		pr.w(" ")
		pr.expr(e.Right)

	case *ExprAssign:
		pr.attrsOuter(e.Attrs)
		pr.expr(e.Left)
		pr.w(" = ")
		pr.expr(e.Right)

	case *ExprAssignOp:
		pr.attrsOuter(e.Attrs)
		pr.expr(e.Left)
		pr.w(" ")
		pr.w(e.Op.String())
		pr.w(" ")
		pr.expr(e.Right)

	case *ExprCast:
		pr.attrsOuter(e.Attrs)
		pr.expr(e.X)
		pr.w(" as ")
		pr.w(tokensToString(e.Ty.Tokens))

	case *ExprAscribe:
		pr.attrsOuter(e.Attrs)
		pr.expr(e.X)
		pr.w(": ")
		pr.w(tokensToString(e.Ty.Tokens))

	case *ExprLet:
		pr.attrsOuter(e.Attrs)
		pr.w("let ")
		for i, pt := range e.Pats {
			if i > 0 {
				pr.w(" | ")
			}
			pr.pat(pt)
		}
		pr.w(" = ")
		pr.wrapBareStruct(e.X)

	case *ExprCall:
		pr.attrsOuter(e.Attrs)
		pr.expr(e.Func)
		pr.w("(")
		pr.exprList(e.Args)
		pr.w(")")

	case *ExprMethodCall:
		pr.attrsOuter(e.Attrs)
		pr.expr(e.Receiver)
		pr.w(".")
		pr.w(e.Method)
		if e.HasTurbo {
			pr.w("::<")
			pr.w(tokensToString(e.Turbofish))
			pr.w(">")
		}
		pr.w("(")
		pr.exprList(e.Args)
		pr.w(")")

	case *ExprField:
		pr.attrsOuter(e.Attrs)
		pr.expr(e.Base)
		pr.w(".")
		pr.member(e.Member)

	case *ExprIndex:
		pr.attrsOuter(e.Attrs)
		pr.expr(e.X)
		pr.w("[")
		pr.expr(e.Index)
		pr.w("]")

	case *ExprTry:
		pr.attrsOuter(e.Attrs)
		pr.expr(e.X)
		pr.w("?")

	case *ExprRange:
		pr.attrsOuter(e.Attrs)
		if e.From != nil {
			pr.expr(e.From)
		}
		if e.Closed {
			pr.w("..=")
		} else {
			pr.w("..")
		}
		if e.To != nil {
			pr.expr(e.To)
		}

	case *ExprTuple:
		pr.attrsOuter(e.Attrs)
		pr.w("(")
		pr.attrsInner(e.Attrs)
		pr.exprList(e.Elems)
		if len(e.Elems) == 1 {
			pr.w(",")
		}
		pr.w(")")

	case *ExprParen:
		pr.attrsOuter(e.Attrs)
		pr.w("(")
		pr.attrsInner(e.Attrs)
		pr.expr(e.X)
		pr.w(")")

	case *ExprArray:
		pr.attrsOuter(e.Attrs)
		pr.w("[")
		pr.attrsInner(e.Attrs)
		pr.exprList(e.Elems)
		pr.w("]")

	case *ExprRepeat:
		pr.attrsOuter(e.Attrs)
		pr.w("[")
		pr.attrsInner(e.Attrs)
		pr.expr(e.X)
		pr.w("; ")
		pr.expr(e.Len)
		pr.w("]")

	case *ExprStruct:
		pr.attrsOuter(e.Attrs)
		pr.path(e.Path)
		pr.w(" { ")
		pr.attrsInner(e.Attrs)
		for i, f := range e.Fields {
			if i > 0 {
				pr.w(", ")
			}
			pr.attrsOuter(f.Attrs)
			pr.member(f.Member)
			if f.Colon {
				pr.w(": ")
				pr.expr(f.X)
			}
		}
		if e.HasRest {
			if len(e.Fields) > 0 {
				pr.w(", ")
			}
			pr.w("..")
			pr.expr(e.Rest)
		}
		pr.w(" }")

	case *ExprIf:
		pr.attrsOuter(e.Attrs)
		pr.w("if ")
		pr.wrapBareStruct(e.Cond)
		pr.ifTail(e.Then, e.Else)

	case *ExprWhile:
		pr.attrsOuter(e.Attrs)
		pr.label(e.Label)
		pr.w("while ")
		pr.wrapBareStruct(e.Cond)
		pr.w(" ")
		pr.block(e.Body, e.Attrs)

	case *ExprForLoop:
		pr.attrsOuter(e.Attrs)
		pr.label(e.Label)
		pr.w("for ")
		pr.pat(e.Pat)
		pr.w(" in ")
		pr.wrapBareStruct(e.Iter)
		pr.w(" ")
		pr.block(e.Body, e.Attrs)

	case *ExprLoop:
		pr.attrsOuter(e.Attrs)
		pr.label(e.Label)
		pr.w("loop ")
		pr.block(e.Body, e.Attrs)

	case *ExprMatch:
		pr.attrsOuter(e.Attrs)
		pr.w("match ")
		pr.wrapBareStruct(e.X)
		pr.w(" ")
		pr.matchBody(e.Arms, e.Attrs)

	case *ExprClosure:
		pr.attrsOuter(e.Attrs)
		if e.Async {
			pr.w("async ")
		}
		if e.Static {
			pr.w("static ")
		}
		if e.Move {
			pr.w("move ")
		}
		pr.w("|")
		for i, arg := range e.Inputs {
			if i > 0 {
				pr.w(", ")
			}
			pr.pat(arg.Pat)
			if arg.Ty != nil {
				pr.w(": ")
				pr.w(tokensToString(arg.Ty.Tokens))
			}
		}
		pr.w("|")
		if e.Output != nil {
			pr.w(" -> ")
			pr.w(tokensToString(e.Output.Tokens))
		}
		pr.w(" ")
		pr.expr(e.Body)

	case *ExprUnsafe:
		pr.attrsOuter(e.Attrs)
		pr.w("unsafe ")
		pr.block(e.Body, e.Attrs)

	case *ExprBlock:
		pr.attrsOuter(e.Attrs)
		pr.label(e.Label)
		pr.block(e.Body, e.Attrs)

	case *ExprAsync:
		pr.attrsOuter(e.Attrs)
		pr.w("async ")
		if e.Move {
			pr.w("move ")
		}
		pr.block(e.Body, e.Attrs)

	case *ExprTryBlock:
		pr.attrsOuter(e.Attrs)
		pr.w("try ")
		pr.block(e.Body, e.Attrs)

	case *ExprBreak:
		pr.attrsOuter(e.Attrs)
		pr.w("break")
		if e.Label != "" {
			pr.w(" ")
			pr.w(e.Label)
		}
		if e.X != nil {
			pr.w(" ")
			pr.expr(e.X)
		}

	case *ExprContinue:
		pr.attrsOuter(e.Attrs)
		pr.w("continue")
		if e.Label != "" {
			pr.w(" ")
			pr.w(e.Label)
		}

	case *ExprReturn:
		pr.attrsOuter(e.Attrs)
		pr.w("return")
		if e.X != nil {
			pr.w(" ")
			pr.expr(e.X)
		}

	case *ExprYield:
		pr.attrsOuter(e.Attrs)
		pr.w("yield")
		if e.X != nil {
			pr.w(" ")
			pr.expr(e.X)
		}

	case *ExprMacro:
		pr.attrsOuter(e.Attrs)
		pr.path(e.Mac.Path)
		pr.w("!")
		pr.macroBody(e.Mac)

	case *ExprVerbatim:
		pr.attrsOuter(e.Attrs)
		pr.w(tokensToString(e.Tokens))

	case *ExprTurboball:
		pr.turboball(e)

	default:
		panic("unknown expression variant")
	}
}

// turboball prints the un-lifted, native spelling of a spliced
// expression: marker lead, subject, post-marker tail. The marker/post
// pairing is established at parse time; a mismatch here is an internal
// invariant violation.
func (pr *printer) turboball(e *ExprTurboball) {
	pr.attrsOuter(e.Attrs)
	switch m := e.Mark.(type) {
	case *MarkBox:
		pr.w("box ")
		pr.expr(e.X)
	case *MarkUnary:
		pr.w(m.Op.String())
		pr.expr(e.X)
	case *MarkReference:
		pr.w("&")
		if m.Mut {
			pr.w("mut ")
		}
		pr.expr(e.X)
	case *MarkLet:
		pr.w("let ")
		for i, pt := range m.Pats {
			if i > 0 {
				pr.w(" | ")
			}
			pr.pat(pt)
		}
		pr.w(" = ")
		pr.wrapBareStruct(e.X)
	case *MarkIf:
		post := e.Post.(*PostIf)
		pr.w("if ")
		pr.wrapBareStruct(e.X)
		pr.ifTail(post.Then, post.Else)
	case *MarkWhile:
		post := e.Post.(*PostWhile)
		pr.label(m.Label)
		pr.w("while ")
		pr.wrapBareStruct(e.X)
		pr.w(" ")
		pr.block(post.Body, post.Attrs)
	case *MarkForLoop:
		post := e.Post.(*PostForLoop)
		pr.label(m.Label)
		pr.w("for ")
		pr.pat(m.Pat)
		pr.w(" in ")
		pr.wrapBareStruct(e.X)
		pr.w(" ")
		pr.block(post.Body, post.Attrs)
	case *MarkLoop:
		pr.label(m.Label)
		pr.w("loop ")
		pr.expr(e.X)
	case *MarkMatch:
		post := e.Post.(*PostMatch)
		pr.w("match ")
		pr.wrapBareStruct(e.X)
		pr.w(" ")
		pr.matchBody(post.Arms, post.Attrs)
	case *MarkUnsafe:
		pr.w("unsafe ")
		pr.expr(e.X)
	case *MarkBlock:
		pr.label(m.Label)
		pr.expr(e.X)
	case *MarkBreak:
		pr.w("break")
		if m.Label != "" {
			pr.w(" ")
			pr.w(m.Label)
		}
		pr.w(" ")
		pr.expr(e.X)
	case *MarkReturn:
		pr.w("return ")
		pr.expr(e.X)
	case *MarkAsync:
		pr.w("async ")
		if m.Move {
			pr.w("move ")
		}
		pr.expr(e.X)
	case *MarkTryBlock:
		pr.w("try ")
		pr.expr(e.X)
	case *MarkYield:
		pr.w("yield ")
		pr.expr(e.X)
	default:
		panic("unknown turboball marker")
	}
}
