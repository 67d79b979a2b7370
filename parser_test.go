// parser_test.go
package resyn

import (
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func mustExpr(t *testing.T, src string) Expr {
	t.Helper()
	e, err := ParseExpr(src)
	if err != nil {
		t.Fatalf("Parse error: %v\nsource:\n%s", err, src)
	}
	return e
}

func mustStmts(t *testing.T, src string) []Stmt {
	t.Helper()
	stmts, err := ParseStmts(src)
	if err != nil {
		t.Fatalf("Parse error: %v\nsource:\n%s", err, src)
	}
	return stmts
}

func mustIncomplete(t *testing.T, src string) {
	t.Helper()
	_, err := ParseStmtsInteractive(src)
	if err == nil || !IsIncomplete(err) {
		t.Fatalf("expected incomplete error, got %v\nsource:\n%s", err, src)
	}
}

func mustFailExpr(t *testing.T, src string, substr string) {
	t.Helper()
	_, err := ParseExpr(src)
	if err == nil {
		t.Fatalf("expected parse error containing %q, got nil\nsource:\n%s", substr, src)
	}
	if substr != "" && !strings.Contains(err.Error(), substr) {
		t.Fatalf("expected error containing %q, got %v\nsource:\n%s", substr, err, src)
	}
}

func mustFailStmts(t *testing.T, src string, substr string) {
	t.Helper()
	_, err := ParseStmts(src)
	if err == nil {
		t.Fatalf("expected parse error containing %q, got nil\nsource:\n%s", substr, src)
	}
	if substr != "" && !strings.Contains(err.Error(), substr) {
		t.Fatalf("expected error containing %q, got %v\nsource:\n%s", substr, err, src)
	}
}

// --- precedence & associativity -------------------------------------------

func Test_Parser_Precedence_Arith(t *testing.T) {
	// 1 + 2 * 3  parses as  1 + (2 * 3)
	e := mustExpr(t, `1 + 2 * 3`)
	bin, ok := e.(*ExprBinary)
	if !ok || bin.Op != OpAdd {
		t.Fatalf("want top-level +, got %T %v", e, e)
	}
	rhs, ok := bin.Right.(*ExprBinary)
	if !ok || rhs.Op != OpMul {
		t.Fatalf("want * on the right, got %T", bin.Right)
	}
}

func Test_Parser_Precedence_LeftAssoc(t *testing.T) {
	// 1 - 2 - 3  parses as  (1 - 2) - 3
	e := mustExpr(t, `1 - 2 - 3`)
	bin := e.(*ExprBinary)
	if bin.Op != OpSub {
		t.Fatalf("want -, got %v", bin.Op)
	}
	if _, ok := bin.Left.(*ExprBinary); !ok {
		t.Fatalf("want nested - on the left, got %T", bin.Left)
	}
}

func Test_Parser_Assign_RightAssoc(t *testing.T) {
	// a = b = c  parses as  a = (b = c)
	e := mustExpr(t, `a = b = c`)
	asn := e.(*ExprAssign)
	if _, ok := asn.Right.(*ExprAssign); !ok {
		t.Fatalf("want nested = on the right, got %T", asn.Right)
	}
}

func Test_Parser_CompoundAssign(t *testing.T) {
	e := mustExpr(t, `x += y << 2`)
	op := e.(*ExprAssignOp)
	if op.Op != OpAddEq {
		t.Fatalf("want +=, got %v", op.Op)
	}
	if sh := op.Right.(*ExprBinary); sh.Op != OpShl {
		t.Fatalf("want << on the right, got %v", sh.Op)
	}
}

func Test_Parser_Comparison_Binds_Looser_Than_BitOr(t *testing.T) {
	e := mustExpr(t, `a | b == c`)
	bin := e.(*ExprBinary)
	if bin.Op != OpEq {
		t.Fatalf("want == at the top, got %v", bin.Op)
	}
	if l := bin.Left.(*ExprBinary); l.Op != OpBitOr {
		t.Fatalf("want | on the left, got %v", l.Op)
	}
}

func Test_Parser_Cast_And_Ascription(t *testing.T) {
	e := mustExpr(t, `x as u32 as u64`)
	outer := e.(*ExprCast)
	if got := Print(outer); got != `x as u32 as u64` {
		t.Fatalf("cast chain printed %q", got)
	}
	if _, ok := outer.X.(*ExprCast); !ok {
		t.Fatalf("want nested cast, got %T", outer.X)
	}

	e2 := mustExpr(t, `x: u8`)
	if _, ok := e2.(*ExprAscribe); !ok {
		t.Fatalf("want ascription, got %T", e2)
	}
}

func Test_Parser_Unary_And_References(t *testing.T) {
	e := mustExpr(t, `-x`)
	if u := e.(*ExprUnary); u.Op != OpNeg {
		t.Fatalf("want neg, got %v", u.Op)
	}
	e2 := mustExpr(t, `&mut x`)
	if r := e2.(*ExprReference); !r.Mut {
		t.Fatalf("want mut reference")
	}
	// && lexes as one token but means reference-of-reference
	e3 := mustExpr(t, `&&mut x`)
	outer := e3.(*ExprReference)
	if outer.Mut {
		t.Fatalf("outer reference must not be mut")
	}
	if inner := outer.X.(*ExprReference); !inner.Mut {
		t.Fatalf("inner reference must be mut")
	}
	e4 := mustExpr(t, `box 1`)
	if _, ok := e4.(*ExprBox); !ok {
		t.Fatalf("want box, got %T", e4)
	}
}

// --- ranges ----------------------------------------------------------------

func Test_Parser_Ranges(t *testing.T) {
	e := mustExpr(t, `0..3`)
	r := e.(*ExprRange)
	if r.Closed || r.From == nil || r.To == nil {
		t.Fatalf("want open bounded range, got %+v", r)
	}

	r2 := mustExpr(t, `0..=3`).(*ExprRange)
	if !r2.Closed {
		t.Fatalf("want closed range")
	}

	// open-ended: RHS omitted before `)`, `,`, `;` or EOF
	r3 := mustExpr(t, `1..`).(*ExprRange)
	if r3.To != nil {
		t.Fatalf("want no upper bound, got %v", r3.To)
	}
	r4 := mustExpr(t, `..5`).(*ExprRange)
	if r4.From != nil || r4.To == nil {
		t.Fatalf("want lower-unbounded range")
	}
	r5 := mustExpr(t, `..`).(*ExprRange)
	if r5.From != nil || r5.To != nil {
		t.Fatalf("want full range")
	}
}

func Test_Parser_Range_Stops_Before_Body_Brace(t *testing.T) {
	stmts := mustStmts(t, `for i in 0.. { }`)
	f := stmts[0].(*StmtExpr).X.(*ExprForLoop)
	r := f.Iter.(*ExprRange)
	if r.To != nil {
		t.Fatalf("range must stop before the loop body, got %v", r.To)
	}
}

// --- paths, calls, trailers -------------------------------------------------

func Test_Parser_Path_With_Turbofish(t *testing.T) {
	e := mustExpr(t, `Vec::<u8>::new()`)
	call := e.(*ExprCall)
	path := call.Func.(*ExprPath)
	if len(path.Path.Segments) != 2 || !path.Path.Segments[0].HasArgs {
		t.Fatalf("want turbofish on first segment, got %+v", path.Path)
	}
}

func Test_Parser_MethodCall_And_Turbofish(t *testing.T) {
	e := mustExpr(t, `x.collect::<Vec<u8>>()`)
	mc := e.(*ExprMethodCall)
	if mc.Method != "collect" || !mc.HasTurbo {
		t.Fatalf("want collect with turbofish, got %+v", mc)
	}

	// `>>` closing two angle levels splits into two `>`
	if got := Print(e); got != `x.collect::<Vec<u8>>()` {
		t.Fatalf("printed %q", got)
	}
}

func Test_Parser_Field_And_TupleIndex(t *testing.T) {
	e := mustExpr(t, `s.field`)
	f := e.(*ExprField)
	if !f.Member.Named || f.Member.Name != "field" {
		t.Fatalf("want named member, got %+v", f.Member)
	}

	// x.0.1 lexes the index pair as a float and splits it back
	e2 := mustExpr(t, `x.0.1`)
	outer := e2.(*ExprField)
	if outer.Member.Named || outer.Member.Index != 1 {
		t.Fatalf("want index 1, got %+v", outer.Member)
	}
	inner := outer.Base.(*ExprField)
	if inner.Member.Index != 0 {
		t.Fatalf("want index 0, got %+v", inner.Member)
	}
}

func Test_Parser_Try_And_Index(t *testing.T) {
	e := mustExpr(t, `xs[0]?`)
	tr := e.(*ExprTry)
	if _, ok := tr.X.(*ExprIndex); !ok {
		t.Fatalf("want index under ?, got %T", tr.X)
	}
}

func Test_Parser_QualifiedPath_Verbatim(t *testing.T) {
	e := mustExpr(t, `<T as Trait>::method(x)`)
	call := e.(*ExprCall)
	if _, ok := call.Func.(*ExprVerbatim); !ok {
		t.Fatalf("want verbatim qualified path, got %T", call.Func)
	}
}

// --- grouping, arrays, structs ---------------------------------------------

func Test_Parser_Paren_Tuple_Unit(t *testing.T) {
	if _, ok := mustExpr(t, `(1)`).(*ExprParen); !ok {
		t.Fatalf("(1) must be a paren group")
	}
	tup := mustExpr(t, `(1,)`).(*ExprTuple)
	if len(tup.Elems) != 1 {
		t.Fatalf("want 1-tuple, got %d elems", len(tup.Elems))
	}
	unit := mustExpr(t, `()`).(*ExprTuple)
	if len(unit.Elems) != 0 {
		t.Fatalf("want unit, got %d elems", len(unit.Elems))
	}
	pair := mustExpr(t, `(1, 2)`).(*ExprTuple)
	if len(pair.Elems) != 2 {
		t.Fatalf("want pair, got %d elems", len(pair.Elems))
	}
}

func Test_Parser_Array_And_Repeat(t *testing.T) {
	arr := mustExpr(t, `[1, 2, 3]`).(*ExprArray)
	if len(arr.Elems) != 3 {
		t.Fatalf("want 3 elems, got %d", len(arr.Elems))
	}
	rep := mustExpr(t, `[0; 8]`).(*ExprRepeat)
	if Print(rep.Len) != `8` {
		t.Fatalf("repeat length printed %q", Print(rep.Len))
	}
	mustFailExpr(t, `[1 2]`, "expected `,` or `;`")
}

func Test_Parser_StructLiteral(t *testing.T) {
	e := mustExpr(t, `Point { x: 1, y, ..rest }`)
	st := e.(*ExprStruct)
	if len(st.Fields) != 2 || !st.Fields[0].Colon || st.Fields[1].Colon {
		t.Fatalf("field shapes wrong: %+v", st.Fields)
	}
	if !st.HasRest {
		t.Fatalf("want ..rest")
	}
}

func Test_Parser_NoStruct_In_Condition(t *testing.T) {
	// `S {` after if must start the body, not a struct literal
	stmts := mustStmts(t, `if x { 1; }`)
	iff := stmts[0].(*StmtExpr).X.(*ExprIf)
	if _, ok := iff.Cond.(*ExprPath); !ok {
		t.Fatalf("condition must be a bare path, got %T", iff.Cond)
	}

	// parens restore struct literals
	stmts2 := mustStmts(t, `if (S { a: 1 }).ok { }`)
	iff2 := stmts2[0].(*StmtExpr).X.(*ExprIf)
	if _, ok := iff2.Cond.(*ExprField); !ok {
		t.Fatalf("want field access on wrapped struct, got %T", iff2.Cond)
	}
}

// --- control flow -----------------------------------------------------------

func Test_Parser_If_Else_Chain(t *testing.T) {
	e := mustExpr(t, `if a { 1 } else if b { 2 } else { 3 }`)
	iff := e.(*ExprIf)
	elif, ok := iff.Else.(*ExprIf)
	if !ok {
		t.Fatalf("want else-if, got %T", iff.Else)
	}
	if _, ok := elif.Else.(*ExprBlock); !ok {
		t.Fatalf("want final else block, got %T", elif.Else)
	}
}

func Test_Parser_Loops_With_Labels(t *testing.T) {
	e := mustExpr(t, `'outer: loop { break 'outer; }`)
	lp := e.(*ExprLoop)
	if lp.Label != "'outer" {
		t.Fatalf("label %q", lp.Label)
	}
	brk := lp.Body.Stmts[0].(*StmtSemi).X.(*ExprBreak)
	if brk.Label != "'outer" {
		t.Fatalf("break label %q", brk.Label)
	}

	w := mustExpr(t, `'w: while c { }`).(*ExprWhile)
	if w.Label != "'w" {
		t.Fatalf("while label %q", w.Label)
	}
	mustFailExpr(t, `'x: 1`, "expected loop or block expression")
}

func Test_Parser_Match_Arms(t *testing.T) {
	e := mustExpr(t, `match x { 0 => a, 1 | 2 => b, _ if c => d }`)
	m := e.(*ExprMatch)
	if len(m.Arms) != 3 {
		t.Fatalf("want 3 arms, got %d", len(m.Arms))
	}
	if len(m.Arms[1].Pats) != 2 {
		t.Fatalf("want or-pattern arm, got %d pats", len(m.Arms[1].Pats))
	}
	if m.Arms[2].Guard == nil {
		t.Fatalf("want guard on last arm")
	}
}

func Test_Parser_Match_Arm_Comma_Rule(t *testing.T) {
	// a non-block arm body needs a comma unless it is last
	mustFailExpr(t, `match x { 0 => a 1 => b }`, "expected `,`")
	// block bodies need no comma
	mustExpr(t, `match x { 0 => { a } 1 => b }`)
}

func Test_Parser_Closures(t *testing.T) {
	c := mustExpr(t, `|x, y: u8| x + y`).(*ExprClosure)
	if len(c.Inputs) != 2 || c.Inputs[1].Ty == nil {
		t.Fatalf("closure args wrong: %+v", c.Inputs)
	}
	c2 := mustExpr(t, `move || 1`).(*ExprClosure)
	if !c2.Move {
		t.Fatalf("want move closure")
	}
	c3 := mustExpr(t, `|x| -> u8 { x }`).(*ExprClosure)
	if c3.Output == nil {
		t.Fatalf("want return type")
	}
	if _, ok := c3.Body.(*ExprBlock); !ok {
		t.Fatalf("typed closure body must be a block, got %T", c3.Body)
	}
	c4 := mustExpr(t, `async move |x| x`).(*ExprClosure)
	if !c4.Async || !c4.Move {
		t.Fatalf("want async move closure")
	}
}

func Test_Parser_Break_Return_Yield_Operands(t *testing.T) {
	b := mustExpr(t, `break 1`).(*ExprBreak)
	if b.X == nil {
		t.Fatalf("want break operand")
	}
	// no operand before a closing delimiter
	lp := mustExpr(t, `loop { break; }`).(*ExprLoop)
	if lp.Body.Stmts[0].(*StmtSemi).X.(*ExprBreak).X != nil {
		t.Fatalf("bare break must have no operand")
	}
	r := mustExpr(t, `return x + 1`).(*ExprReturn)
	if r.X == nil {
		t.Fatalf("want return operand")
	}
	y := mustExpr(t, `yield`).(*ExprYield)
	if y.X != nil {
		t.Fatalf("bare yield must have no operand")
	}
}

func Test_Parser_Return_In_Condition(t *testing.T) {
	// the condition position keeps its struct restriction through
	// `return`: `S { }` is the if body, not a struct-literal operand
	stmts := mustStmts(t, `if return S { } { }`)
	if len(stmts) != 2 {
		t.Fatalf("want condition plus trailing block, got %d statements", len(stmts))
	}
	cond := stmts[0].(*StmtExpr).X.(*ExprIf).Cond.(*ExprReturn)
	if _, ok := cond.X.(*ExprPath); !ok {
		t.Fatalf("return operand should be a bare path, got %T", cond.X)
	}

	// blocks after return are still taken greedily
	greedy := mustStmts(t, `if return { f() } { }`)
	if len(greedy) != 1 {
		t.Fatalf("want a single if statement, got %d", len(greedy))
	}
	g := greedy[0].(*StmtExpr).X.(*ExprIf).Cond.(*ExprReturn)
	if _, ok := g.X.(*ExprBlock); !ok {
		t.Fatalf("return should take the block operand, got %T", g.X)
	}
}

func Test_Parser_Let_Guard(t *testing.T) {
	stmts := mustStmts(t, `if let Some(x) | None = opt { }`)
	iff := stmts[0].(*StmtExpr).X.(*ExprIf)
	let := iff.Cond.(*ExprLet)
	if len(let.Pats) != 2 {
		t.Fatalf("want 2 or-pats, got %d", len(let.Pats))
	}
}

// --- macros & attributes ----------------------------------------------------

func Test_Parser_Macro_Invocation(t *testing.T) {
	e := mustExpr(t, `println!("{}", x)`)
	mac := e.(*ExprMacro)
	if mac.Mac.Delim != LPAREN {
		t.Fatalf("want paren delim")
	}
	e2 := mustExpr(t, `vec![1, 2]`)
	if e2.(*ExprMacro).Mac.Delim != LBRACKET {
		t.Fatalf("want bracket delim")
	}
}

func Test_Parser_Outer_Attributes_On_Expr(t *testing.T) {
	e := mustExpr(t, `#[cfg(test)] x + 1`)
	bin := e.(*ExprBinary)
	// attributes attach to the operand that follows them
	left := bin.Left.(*ExprPath)
	if len(left.Attrs) != 1 {
		t.Fatalf("want attribute on lhs, got %+v", left.Attrs)
	}
}

// --- errors & interactive ---------------------------------------------------

func Test_Parser_Errors(t *testing.T) {
	mustFailExpr(t, `+`, "expected expression")
	mustFailExpr(t, `1 +`, "expected expression")
	mustFailExpr(t, `(1`, "expected `)`")
	mustFailExpr(t, `1 2`, "unexpected token")
	mustFailStmts(t, `let = 1;`, "expected pattern")
	mustFailStmts(t, `let x = 1`, "expected `;`")
}

func Test_Parser_Interactive_Incomplete(t *testing.T) {
	mustIncomplete(t, `if x {`)
	mustIncomplete(t, `(1 +`)
	mustIncomplete(t, `match x {`)
	mustIncomplete(t, `let y = `)

	// complete input parses the same in interactive mode
	if _, err := ParseStmtsInteractive(`let y = 1;`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// a hard error before EOF stays a hard error
	_, err := ParseStmtsInteractive(`1 2`)
	if err == nil || IsIncomplete(err) {
		t.Fatalf("want non-incomplete error, got %v", err)
	}
}

func Test_Parser_Error_Snippet(t *testing.T) {
	_, err := ParseStmts("let x = (1 +\n)")
	if err == nil {
		t.Fatalf("want error")
	}
	wrapped := WrapErrorWithSource(err, "let x = (1 +\n)")
	if !strings.Contains(wrapped.Error(), "^") {
		t.Fatalf("want caret snippet, got:\n%s", wrapped.Error())
	}
}
