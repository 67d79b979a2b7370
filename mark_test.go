// mark_test.go
//
// The turboball splice `subject::(marker)` lifts a prefix construct
// behind its subject. The oracle used throughout: expanding a spliced
// form must print exactly what the native prefix spelling prints.
package resyn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// wantSameExpansion checks that the postfix and native spellings expand
// to the same canonical text.
func wantSameExpansion(t *testing.T, postfix, native string) {
	t.Helper()
	got, err := Expand(postfix)
	require.NoError(t, err, "postfix: %s", postfix)
	want, err := Expand(native)
	require.NoError(t, err, "native: %s", native)
	require.Equal(t, want, got, "postfix %q vs native %q", postfix, native)
}

func mustTurboball(t *testing.T, src string) *ExprTurboball {
	t.Helper()
	e := mustExpr(t, src)
	tb, ok := e.(*ExprTurboball)
	if !ok {
		t.Fatalf("want turboball, got %T\nsource:\n%s", e, src)
	}
	return tb
}

func Test_Turboball_Box_And_Unary(t *testing.T) {
	tb := mustTurboball(t, `2::(box)`)
	if _, ok := tb.Mark.(*MarkBox); !ok {
		t.Fatalf("want box marker, got %T", tb.Mark)
	}
	wantSameExpansion(t, `2::(box);`, `box 2;`)
	wantSameExpansion(t, `x::(*);`, `*x;`)
	wantSameExpansion(t, `x::(!);`, `!x;`)
	wantSameExpansion(t, `x::(-);`, `-x;`)
}

func Test_Turboball_Chained_Unary(t *testing.T) {
	// one operator per splice; chaining applies inside-out
	tb := mustTurboball(t, `x::(*)::(-)`)
	if m := tb.Mark.(*MarkUnary); m.Op != OpNeg {
		t.Fatalf("outer marker %v", m.Op)
	}
	inner := tb.X.(*ExprTurboball)
	if m := inner.Mark.(*MarkUnary); m.Op != OpDeref {
		t.Fatalf("inner marker %v", m.Op)
	}
	wantSameExpansion(t, `x::(*)::(-);`, `-*x;`)
}

func Test_Turboball_References(t *testing.T) {
	wantSameExpansion(t, `x::(&);`, `&x;`)
	wantSameExpansion(t, `x::(&mut);`, `&mut x;`)
}

func Test_Turboball_Let(t *testing.T) {
	wantSameExpansion(t, `opt::(let Some(x) =)::(if) { x }`, `if let Some(x) = opt { x }`)
	tb := mustTurboball(t, `v::(let a | b =)`)
	if m := tb.Mark.(*MarkLet); len(m.Pats) != 2 {
		t.Fatalf("want or-pats in let marker, got %d", len(m.Pats))
	}
}

func Test_Turboball_If_Else(t *testing.T) {
	tb := mustTurboball(t, `true::(if) { 3 } else { 4 }`)
	post := tb.Post.(*PostIf)
	if post.Else == nil {
		t.Fatalf("want else branch")
	}
	wantSameExpansion(t, `true::(if) { 3 } else { 4 };`, `if true { 3 } else { 4 };`)
	wantSameExpansion(t, `a::(if) { 1 } else if b { 2 } else { 3 };`, `if a { 1 } else if b { 2 } else { 3 };`)
}

func Test_Turboball_While_And_For(t *testing.T) {
	wantSameExpansion(t, `cond::(while) { work(); }`, `while cond { work(); }`)
	wantSameExpansion(t, `(0..3)::(for x in) { acc += 1; }`, `for x in (0..3) { acc += 1; }`)
	wantSameExpansion(t, `iter::('outer: for x in) { break 'outer; }`, `'outer: for x in iter { break 'outer; }`)
}

func Test_Turboball_Loop(t *testing.T) {
	// the subject of a loop marker is the body block
	wantSameExpansion(t, `{ work(); }::(loop)`, `loop { work(); }`)
	tb := mustTurboball(t, `{ }::('l: loop)`)
	if m := tb.Mark.(*MarkLoop); m.Label != "'l" {
		t.Fatalf("loop label %q", m.Label)
	}
}

func Test_Turboball_Match(t *testing.T) {
	wantSameExpansion(t,
		`0::(match) { x => x + 2 }`,
		`match 0 { x => x + 2 }`)
	// chained splices rewrite outside-in
	wantSameExpansion(t,
		`0::(match) { x => x + 2 }::(match) { x => x + 10 }`,
		`match match 0 { x => x + 2 } { x => x + 10 }`)
}

func Test_Turboball_Block_Keywords(t *testing.T) {
	wantSameExpansion(t, `{ 8 }::(try)`, `try { 8 }`)
	wantSameExpansion(t, `{ 8 }::(unsafe)`, `unsafe { 8 }`)
	wantSameExpansion(t, `{ 8 }::(async)`, `async { 8 }`)
	wantSameExpansion(t, `{ 8 }::(async move)`, `async move { 8 }`)
	wantSameExpansion(t, `{ 8 }::('b:)`, `'b: { 8 }`)
}

func Test_Turboball_Break_Return_Yield(t *testing.T) {
	wantSameExpansion(t, `loop { 1::(break); }`, `loop { break 1; }`)
	wantSameExpansion(t, `'l: loop { 1::(break 'l); }`, `'l: loop { break 'l 1; }`)
	wantSameExpansion(t, `x::(return);`, `return x;`)
	wantSameExpansion(t, `x::(yield);`, `yield x;`)
}

func Test_Turboball_Binds_Tighter_Than_Binary(t *testing.T) {
	// a splice is a postfix trailer: `1 + 2::(box)` boxes only the 2
	e := mustExpr(t, `1 + 2::(box)`)
	bin := e.(*ExprBinary)
	if _, ok := bin.Right.(*ExprTurboball); !ok {
		t.Fatalf("want turboball on rhs, got %T", bin.Right)
	}
	wantSameExpansion(t, `1 + 2::(box);`, `1 + box 2;`)
}

func Test_Turboball_After_Trailers(t *testing.T) {
	wantSameExpansion(t, `f(x).g()::(box);`, `box f(x).g();`)
	wantSameExpansion(t, `xs[0]?::(return);`, `return xs[0]?;`)
}

func Test_Turboball_Turbofish_Still_Works(t *testing.T) {
	// `::` + `<` stays turbofish, `::` + `(` is a splice
	e := mustExpr(t, `x.f::<u8>()::(box)`)
	tb := e.(*ExprTurboball)
	if _, ok := tb.X.(*ExprMethodCall); !ok {
		t.Fatalf("want method call subject, got %T", tb.X)
	}
}

func Test_Turboball_In_Statement_Position(t *testing.T) {
	// a block-shaped statement followed by `::(` continues as an operand
	stmts := mustStmts(t, `{ 8 }::(try);`)
	if _, ok := stmts[0].(*StmtSemi).X.(*ExprTurboball); !ok {
		t.Fatalf("want turboball statement, got %T", stmts[0])
	}
	wantSameExpansion(t, `if c { 1 } else { 2 }::(box);`, `box if c { 1 } else { 2 };`)
}

func Test_Turboball_Errors(t *testing.T) {
	mustFailExpr(t, `x::(foo)`, "unknown marker")
	mustFailExpr(t, `x::(if`, "expected `)`")
	mustFailExpr(t, `x::('a)`, "expected loop or block expression")
	mustFailExpr(t, `x::(let y)`, "unknown marker")
	mustFailExpr(t, `x::(for y)`, "unknown marker")
}

func Test_Turboball_Expansion_Is_Stable(t *testing.T) {
	// expanding already-expanded output is a fixpoint
	srcs := []string{
		`0::(match) { x => x + 2 }::(match) { x => x + 10 };`,
		`(0..3)::(for x in) { acc += 1; }`,
		`opt::(let Some(x) =)::(if) { x } else { 0 };`,
	}
	for _, src := range srcs {
		once, err := Expand(src)
		require.NoError(t, err, src)
		twice, err := Expand(once)
		require.NoError(t, err, once)
		require.Equal(t, once, twice, "source %q", src)
	}
}
