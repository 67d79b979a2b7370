// ast.go
//
// Syntax tree for the expression and statement grammar. Expressions,
// patterns and statements are interface-tagged unions with one struct per
// variant. Every expression variant embeds exprAttrs, which carries its
// attributes and lets the parser hoist outer attributes onto whatever node
// a speculative parse committed to (replaceAttrs swaps the slice and
// returns the old one).
//
// Grammars this package does not model natively are carried as opaque
// token runs: types (Type), items in statement position (StmtItem), macro
// bodies (Macro.Tokens) and attribute arguments (Attribute.Tokens). The
// printer writes those runs back token for token.
package resyn

// Attribute is one `#[...]` or `#![...]` occurrence, tokens kept verbatim
// (everything between the brackets).
type Attribute struct {
	Inner  bool
	Tokens []Token
}

// Type is an opaque, balanced token run standing in for the type grammar.
type Type struct {
	Tokens []Token
}

// Path is a (possibly `::`-prefixed) sequence of segments. Expression
// paths may carry turbofish generic arguments on any segment.
type Path struct {
	LeadingColon bool
	Segments     []PathSegment
}

// PathSegment is one path component. When HasArgs is set, Args holds the
// tokens between the `::<` and the matching `>`.
type PathSegment struct {
	Ident   string
	HasArgs bool
	Args    []Token
}

// Member names a struct field or tuple index after a `.` or in a struct
// literal/pattern.
type Member struct {
	Named bool
	Name  string
	Index int64
}

// Macro is a macro invocation: path, bang, delimiter, raw body tokens.
type Macro struct {
	Path   Path
	Delim  TokenType // LPAREN, LBRACKET or LBRACE
	Tokens []Token
}

// FieldValue is one field of a struct literal. Shorthand fields have
// Colon unset and no expression.
type FieldValue struct {
	Attrs  []Attribute
	Member Member
	Colon  bool
	X      Expr
}

// Arm is one match arm. Comma records whether a trailing comma was
// present in the source (the printer re-inserts one after non-block arms
// that are not last).
type Arm struct {
	Attrs       []Attribute
	LeadingVert bool
	Pats        []Pat
	Guard       Expr
	Body        Expr
	Comma       bool
}

// Block is a braced statement list.
type Block struct {
	Stmts []Stmt
}

// ClosureArg is one closure input, optionally ascribed.
type ClosureArg struct {
	Pat Pat
	Ty  *Type
}

// ───────────────────────────── expressions ─────────────────────────────

// Expr is the expression interface. All variants are pointer types.
type Expr interface {
	exprNode()
	replaceAttrs(attrs []Attribute) []Attribute
}

// exprAttrs is embedded by every expression variant.
type exprAttrs struct {
	Attrs []Attribute
}

func (a *exprAttrs) exprNode() {}

func (a *exprAttrs) replaceAttrs(attrs []Attribute) []Attribute {
	old := a.Attrs
	a.Attrs = attrs
	return old
}

// BinOp is a binary operator, including the compound-assignment forms.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAnd
	OpOr
	OpBitXor
	OpBitAnd
	OpBitOr
	OpShl
	OpShr
	OpEq
	OpLt
	OpLe
	OpNe
	OpGe
	OpGt
	OpAddEq
	OpSubEq
	OpMulEq
	OpDivEq
	OpRemEq
	OpBitXorEq
	OpBitAndEq
	OpBitOrEq
	OpShlEq
	OpShrEq
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpRem:
		return "%"
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpBitXor:
		return "^"
	case OpBitAnd:
		return "&"
	case OpBitOr:
		return "|"
	case OpShl:
		return "<<"
	case OpShr:
		return ">>"
	case OpEq:
		return "=="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpNe:
		return "!="
	case OpGe:
		return ">="
	case OpGt:
		return ">"
	case OpAddEq:
		return "+="
	case OpSubEq:
		return "-="
	case OpMulEq:
		return "*="
	case OpDivEq:
		return "/="
	case OpRemEq:
		return "%="
	case OpBitXorEq:
		return "^="
	case OpBitAndEq:
		return "&="
	case OpBitOrEq:
		return "|="
	case OpShlEq:
		return "<<="
	case OpShrEq:
		return ">>="
	}
	return "?"
}

// isAssignOp reports whether op is a compound-assignment operator.
func (op BinOp) isAssignOp() bool { return op >= OpAddEq }

// UnOp is a prefix unary operator.
type UnOp int

const (
	OpDeref UnOp = iota // "*"
	OpNot               // "!"
	OpNeg               // "-"
)

func (op UnOp) String() string {
	switch op {
	case OpDeref:
		return "*"
	case OpNot:
		return "!"
	case OpNeg:
		return "-"
	}
	return "?"
}

type (
	// ExprLit is a literal token (int, float, string, char, bool).
	ExprLit struct {
		exprAttrs
		Tok Token
	}

	// ExprPath is a path used as an expression, e.g. `a::b::<T>::c`.
	ExprPath struct {
		exprAttrs
		Path Path
	}

	// ExprBox is `box x`.
	ExprBox struct {
		exprAttrs
		X Expr
	}

	// ExprInPlace is the placement expression `place <- value`.
	ExprInPlace struct {
		exprAttrs
		Place Expr
		Value Expr
	}

	// ExprUnary is `*x`, `!x` or `-x`.
	ExprUnary struct {
		exprAttrs
		Op UnOp
		X  Expr
	}

	// ExprReference is `&x` or `&mut x`.
	ExprReference struct {
		exprAttrs
		Mut bool
		X   Expr
	}

	// ExprBinary is a binary operation `l op r`.
	ExprBinary struct {
		exprAttrs
		Op    BinOp
		Left  Expr
		Right Expr
	}

	// ExprAssign is `l = r`.
	ExprAssign struct {
		exprAttrs
		Left  Expr
		Right Expr
	}

	// ExprAssignOp is a compound assignment such as `l += r`.
	ExprAssignOp struct {
		exprAttrs
		Op    BinOp
		Left  Expr
		Right Expr
	}

	// ExprCast is `x as Ty`.
	ExprCast struct {
		exprAttrs
		X  Expr
		Ty Type
	}

	// ExprAscribe is the type ascription `x: Ty`.
	ExprAscribe struct {
		exprAttrs
		X  Expr
		Ty Type
	}

	// ExprLet is a let guard `let pat | pat = x` (condition position).
	ExprLet struct {
		exprAttrs
		Pats []Pat
		X    Expr
	}

	// ExprCall is `f(a, b)`.
	ExprCall struct {
		exprAttrs
		Func Expr
		Args []Expr
	}

	// ExprMethodCall is `recv.m(a)` or `recv.m::<T>(a)`.
	ExprMethodCall struct {
		exprAttrs
		Receiver  Expr
		Method    string
		Turbofish []Token
		HasTurbo  bool
		Args      []Expr
	}

	// ExprField is `base.name` or `base.0`.
	ExprField struct {
		exprAttrs
		Base   Expr
		Member Member
	}

	// ExprIndex is `x[i]`.
	ExprIndex struct {
		exprAttrs
		X     Expr
		Index Expr
	}

	// ExprTry is the question-mark operator `x?`.
	ExprTry struct {
		exprAttrs
		X Expr
	}

	// ExprRange is `from..to`, `from..=to`, or either side open.
	ExprRange struct {
		exprAttrs
		From   Expr
		To     Expr
		Closed bool
	}

	// ExprTuple is `(a, b)`; one-element tuples print a trailing comma.
	ExprTuple struct {
		exprAttrs
		Elems []Expr
	}

	// ExprParen is a parenthesized expression.
	ExprParen struct {
		exprAttrs
		X Expr
	}

	// ExprArray is `[a, b, c]`.
	ExprArray struct {
		exprAttrs
		Elems []Expr
	}

	// ExprRepeat is `[x; n]`.
	ExprRepeat struct {
		exprAttrs
		X   Expr
		Len Expr
	}

	// ExprStruct is a struct literal `Path { fields, ..rest }`.
	ExprStruct struct {
		exprAttrs
		Path    Path
		Fields  []FieldValue
		HasRest bool
		Rest    Expr
	}

	// ExprIf is `if cond { } else ...`; Else is nil, *ExprIf or *ExprBlock.
	ExprIf struct {
		exprAttrs
		Cond Expr
		Then Block
		Else Expr
	}

	// ExprWhile is `'label: while cond { }`.
	ExprWhile struct {
		exprAttrs
		Label string
		Cond  Expr
		Body  Block
	}

	// ExprForLoop is `'label: for pat in iter { }`.
	ExprForLoop struct {
		exprAttrs
		Label string
		Pat   Pat
		Iter  Expr
		Body  Block
	}

	// ExprLoop is `'label: loop { }`.
	ExprLoop struct {
		exprAttrs
		Label string
		Body  Block
	}

	// ExprMatch is `match x { arms }`.
	ExprMatch struct {
		exprAttrs
		X    Expr
		Arms []Arm
	}

	// ExprClosure is `|a, b| body` with optional async/static/move and
	// return type (a return type forces a block body).
	ExprClosure struct {
		exprAttrs
		Async  bool
		Static bool
		Move   bool
		Inputs []ClosureArg
		Output *Type
		Body   Expr
	}

	// ExprUnsafe is `unsafe { }`.
	ExprUnsafe struct {
		exprAttrs
		Body Block
	}

	// ExprBlock is `'label: { }` or a bare block in expression position.
	ExprBlock struct {
		exprAttrs
		Label string
		Body  Block
	}

	// ExprAsync is `async { }` or `async move { }`.
	ExprAsync struct {
		exprAttrs
		Move bool
		Body Block
	}

	// ExprTryBlock is `try { }`.
	ExprTryBlock struct {
		exprAttrs
		Body Block
	}

	// ExprBreak is `break 'label value`.
	ExprBreak struct {
		exprAttrs
		Label string
		X     Expr
	}

	// ExprContinue is `continue 'label`.
	ExprContinue struct {
		exprAttrs
		Label string
	}

	// ExprReturn is `return value`.
	ExprReturn struct {
		exprAttrs
		X Expr
	}

	// ExprYield is `yield value`.
	ExprYield struct {
		exprAttrs
		X Expr
	}

	// ExprMacro is a macro invocation in expression position.
	ExprMacro struct {
		exprAttrs
		Mac Macro
	}

	// ExprVerbatim is a token run the grammar does not model natively
	// (qualified paths, for instance); printed back verbatim.
	ExprVerbatim struct {
		exprAttrs
		Tokens []Token
	}

	// ExprTurboball is the postfix splice `subject::(mark)post`. Mark is
	// the lifted prefix construct; Post carries the trailing block/arms
	// for the marks that have one (if, while, for, match) and is nil for
	// all others. The printer re-emits the native, un-lifted spelling.
	ExprTurboball struct {
		exprAttrs
		X    Expr
		Mark ExprMark
		Post PostExprMark
	}
)

// ───────────────────────────── statements ─────────────────────────────

// Stmt is one statement inside a block.
type Stmt interface {
	stmtNode()
}

type (
	// StmtLocal is a `let` binding.
	StmtLocal struct {
		Local *Local
	}

	// StmtItem is an item in statement position, kept as an opaque
	// balanced token run (fn, struct, use, impl, ...).
	StmtItem struct {
		Tokens []Token
	}

	// StmtMacro is a macro invocation in statement position.
	StmtMacro struct {
		Attrs []Attribute
		Mac   Macro
		Ident string // `name` in `macro_rules!`-style `path! name { ... }`
		Semi  bool
	}

	// StmtExpr is an expression without trailing semicolon.
	StmtExpr struct {
		X Expr
	}

	// StmtSemi is an expression terminated by `;`.
	StmtSemi struct {
		X Expr
	}
)

func (*StmtLocal) stmtNode() {}
func (*StmtItem) stmtNode() {}
func (*StmtMacro) stmtNode() {}
func (*StmtExpr) stmtNode() {}
func (*StmtSemi) stmtNode() {}

// Local is the payload of a `let` statement: attributes, or-patterns,
// optional ascription, optional initializer.
type Local struct {
	Attrs []Attribute
	Pats  []Pat
	Ty    *Type
	Init  Expr
}

// ───────────────────────────── patterns ─────────────────────────────

// Pat is the pattern interface.
type Pat interface {
	patNode()
}

type (
	// PatWild is `_`.
	PatWild struct{}

	// PatIdent is `ref mut name @ subpat`.
	PatIdent struct {
		ByRef  bool
		Mut    bool
		Ident  string
		Subpat Pat
	}

	// PatPath is a path pattern (unit struct, const, enum variant).
	PatPath struct {
		Path Path
	}

	// PatLit is a literal pattern, possibly negated.
	PatLit struct {
		X Expr
	}

	// PatRange is `lo..=hi` (or `...` in old spellings).
	PatRange struct {
		Lo     Expr
		Hi     Expr
		Closed bool
	}

	// PatStruct is `Path { field: pat, .. }`.
	PatStruct struct {
		Path   Path
		Fields []FieldPat
		Rest   bool
	}

	// PatTupleStruct is `Path(pats)`.
	PatTupleStruct struct {
		Path Path
		Pat  PatTuple
	}

	// PatTuple is `(front, .., back)`.
	PatTuple struct {
		Front   []Pat
		HasRest bool
		Back    []Pat
	}

	// PatSlice is `[front, middle.., back]`. Middle is the optional
	// named capture of the rest position; a bare `..` leaves it nil
	// with HasRest set.
	PatSlice struct {
		Front   []Pat
		Middle  Pat
		HasRest bool
		Back    []Pat
	}

	// PatBox is `box pat`.
	PatBox struct {
		Pat Pat
	}

	// PatRef is `&pat` or `&mut pat`.
	PatRef struct {
		Mut bool
		Pat Pat
	}

	// PatMacro is a macro invocation in pattern position.
	PatMacro struct {
		Mac Macro
	}

	// PatVerbatim is an opaque token run in pattern position.
	PatVerbatim struct {
		Tokens []Token
	}
)

func (*PatWild) patNode() {}
func (*PatIdent) patNode() {}
func (*PatPath) patNode() {}
func (*PatLit) patNode() {}
func (*PatRange) patNode() {}
func (*PatStruct) patNode() {}
func (*PatTupleStruct) patNode() {}
func (*PatTuple) patNode() {}
func (*PatSlice) patNode() {}
func (*PatBox) patNode() {}
func (*PatRef) patNode() {}
func (*PatMacro) patNode() {}
func (*PatVerbatim) patNode() {}

// FieldPat is one field of a struct pattern.
type FieldPat struct {
	Attrs  []Attribute
	Member Member
	Colon  bool
	Pat    Pat
}

// requiresTerminator reports whether e needs a `;` to stand as a
// non-final statement. Block-shaped expressions do not.
func requiresTerminator(e Expr) bool {
	switch e := e.(type) {
	case *ExprUnsafe, *ExprBlock, *ExprIf, *ExprMatch, *ExprWhile,
		*ExprLoop, *ExprForLoop, *ExprAsync, *ExprTryBlock:
		return false
	case *ExprTurboball:
		// a post-marked splice ends in its trailing body block
		return e.Post == nil
	}
	return true
}
