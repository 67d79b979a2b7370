// expand.go — whole-input transform entry points.
//
// Expand parses a statement sequence and prints it back in canonical
// form, which rewrites every postfix splice into its native prefix
// spelling. ExpandExpr does the same for a single expression.
package resyn

// Expand parses src as a statement sequence and returns the canonical
// prefix-form source text.
func Expand(src string) (string, error) {
	stmts, err := ParseStmts(src)
	if err != nil {
		return "", err
	}
	return PrintStmts(stmts), nil
}

// ExpandExpr parses src as a single expression and returns the
// canonical prefix-form source text.
func ExpandExpr(src string) (string, error) {
	e, err := ParseExpr(src)
	if err != nil {
		return "", err
	}
	return Print(e), nil
}
