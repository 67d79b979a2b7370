// pattern_test.go
package resyn

import (
	"strings"
	"testing"
)

func mustPat(t *testing.T, src string) Pat {
	t.Helper()
	pat, err := ParsePat(src)
	if err != nil {
		t.Fatalf("Parse error: %v\nsource:\n%s", err, src)
	}
	return pat
}

func mustFailPat(t *testing.T, src string, substr string) {
	t.Helper()
	_, err := ParsePat(src)
	if err == nil {
		t.Fatalf("expected parse error containing %q, got nil\nsource:\n%s", substr, src)
	}
	if substr != "" && !strings.Contains(err.Error(), substr) {
		t.Fatalf("expected error containing %q, got %v\nsource:\n%s", substr, err, src)
	}
}

func wantPatPrint(t *testing.T, src, want string) Pat {
	t.Helper()
	pat := mustPat(t, src)
	if got := PrintPat(pat); got != want {
		t.Fatalf("pattern %q printed %q, want %q", src, got, want)
	}
	return pat
}

func Test_Pattern_Bindings(t *testing.T) {
	if _, ok := mustPat(t, `_`).(*PatWild); !ok {
		t.Fatalf("want wildcard")
	}
	id := mustPat(t, `mut x`).(*PatIdent)
	if !id.Mut || id.ByRef {
		t.Fatalf("want mut binding, got %+v", id)
	}
	id2 := mustPat(t, `ref mut y`).(*PatIdent)
	if !id2.ByRef || !id2.Mut {
		t.Fatalf("want ref mut binding, got %+v", id2)
	}
	at := mustPat(t, `n @ 1..=9`).(*PatIdent)
	if at.Subpat == nil {
		t.Fatalf("want @ subpattern")
	}
	if _, ok := at.Subpat.(*PatRange); !ok {
		t.Fatalf("want range subpattern, got %T", at.Subpat)
	}
}

func Test_Pattern_Ident_Vs_Path(t *testing.T) {
	// a bare identifier binds; path punctuation routes to the path forms
	if _, ok := mustPat(t, `x`).(*PatIdent); !ok {
		t.Fatalf("bare ident must bind")
	}
	if _, ok := mustPat(t, `Color::Red`).(*PatPath); !ok {
		t.Fatalf("want path pattern")
	}
	if _, ok := mustPat(t, `self`).(*PatIdent); !ok {
		t.Fatalf("self must bind")
	}
}

func Test_Pattern_Literals_And_Ranges(t *testing.T) {
	if _, ok := mustPat(t, `42`).(*PatLit); !ok {
		t.Fatalf("want literal pattern")
	}
	neg := mustPat(t, `-1`).(*PatLit)
	if _, ok := neg.X.(*ExprUnary); !ok {
		t.Fatalf("want negated literal, got %T", neg.X)
	}
	r := mustPat(t, `1..=9`).(*PatRange)
	if !r.Closed {
		t.Fatalf("want closed range")
	}
	wantPatPrint(t, `'a'..='z'`, `'a'..='z'`)
	// path constants are valid bounds
	if _, ok := mustPat(t, `MIN..=MAX`).(*PatRange); !ok {
		t.Fatalf("want path-bounded range")
	}
}

func Test_Pattern_References(t *testing.T) {
	r := mustPat(t, `&mut x`).(*PatRef)
	if !r.Mut {
		t.Fatalf("want mut ref pattern")
	}
	rr := mustPat(t, `&&x`).(*PatRef)
	if _, ok := rr.Pat.(*PatRef); !ok {
		t.Fatalf("&& must nest two refs, got %T", rr.Pat)
	}
	b := mustPat(t, `box x`).(*PatBox)
	if _, ok := b.Pat.(*PatIdent); !ok {
		t.Fatalf("want box of binding, got %T", b.Pat)
	}
}

func Test_Pattern_Tuples_And_Slices(t *testing.T) {
	tup := mustPat(t, `(a, b)`).(*PatTuple)
	if len(tup.Front) != 2 || tup.HasRest {
		t.Fatalf("tuple shape wrong: %+v", tup)
	}
	rest := mustPat(t, `(a, .., z)`).(*PatTuple)
	if !rest.HasRest || len(rest.Front) != 1 || len(rest.Back) != 1 {
		t.Fatalf("rest tuple shape wrong: %+v", rest)
	}
	sl := mustPat(t, `[first, .., last]`).(*PatSlice)
	if !sl.HasRest || len(sl.Front) != 1 || len(sl.Back) != 1 {
		t.Fatalf("slice shape wrong: %+v", sl)
	}
}

func Test_Pattern_Slice_Middle_Capture(t *testing.T) {
	// the rest position may bind the middle of the slice by name
	sl := wantPatPrint(t, `[a, rest.., b]`, `[a, rest.., b]`).(*PatSlice)
	if sl.Middle == nil || !sl.HasRest {
		t.Fatalf("middle capture lost: %+v", sl)
	}
	if id := sl.Middle.(*PatIdent); id.Ident != "rest" {
		t.Fatalf("middle binds %q", id.Ident)
	}
	if len(sl.Front) != 1 || len(sl.Back) != 1 {
		t.Fatalf("slice shape wrong: %+v", sl)
	}

	only := mustPat(t, `[rest..]`).(*PatSlice)
	if only.Middle == nil || len(only.Front) != 0 || len(only.Back) != 0 {
		t.Fatalf("lone middle shape wrong: %+v", only)
	}

	// a bare `..` stays bare
	bare := wantPatPrint(t, `[x, ..]`, `[x, ..]`).(*PatSlice)
	if bare.Middle != nil || !bare.HasRest {
		t.Fatalf("bare rest shape wrong: %+v", bare)
	}
}

func Test_Pattern_Struct_And_TupleStruct(t *testing.T) {
	st := mustPat(t, `Point { x, y: 0, .. }`).(*PatStruct)
	if len(st.Fields) != 2 || !st.Rest {
		t.Fatalf("struct pattern shape wrong: %+v", st)
	}
	if st.Fields[0].Colon || !st.Fields[1].Colon {
		t.Fatalf("field colon flags wrong: %+v", st.Fields)
	}

	ts := mustPat(t, `Some(x)`).(*PatTupleStruct)
	if len(ts.Pat.Front) != 1 {
		t.Fatalf("tuple struct shape wrong: %+v", ts)
	}

	sh := mustPat(t, `Point { ref x, mut y }`).(*PatStruct)
	inner := sh.Fields[0].Pat.(*PatIdent)
	if !inner.ByRef {
		t.Fatalf("shorthand ref lost: %+v", inner)
	}
}

func Test_Pattern_Macro(t *testing.T) {
	m := mustPat(t, `pat!(a, b)`).(*PatMacro)
	if m.Mac.Delim != LPAREN {
		t.Fatalf("want paren macro")
	}
}

func Test_Pattern_Errors(t *testing.T) {
	mustFailPat(t, `+`, "expected pattern")
	mustFailPat(t, `(a`, "expected `)`")
	mustFailPat(t, `Point { 0 }`, "expected identifier or integer")
}
