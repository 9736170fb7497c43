package guard

import (
	"fmt"
	"regexp"
	"strings"
)

// Clause grammar patterns.
//
// The grammar is deliberately narrow: a term is either a bare column
// or a single-level function call over a column. No nesting, no
// expressions, no composition. Widening it would reopen the injection
// surface this component exists to close.
var (
	// funcTermPattern matches FUNC(arg): an identifier followed by one
	// pair of parentheses with no nested parentheses inside.
	funcTermPattern = regexp.MustCompile(`^([A-Za-z0-9_]+)\(([^()]*)\)$`)

	// limitPattern matches "count" or "offset, count".
	limitPattern = regexp.MustCompile(`^(\d+)(?:\s*,\s*(\d+))?$`)
)

// SanitizeOrderBy validates caller-supplied ORDER BY text against the
// whitelist and re-emits it as a safe SQL fragment.
//
// The input is split on commas into terms. Each term is a bare column
// or FUNC(column), optionally followed by ASC or DESC in any case:
//
//	"name"                 -> "`name`"
//	"created_at desc"      -> "`created_at` DESC"
//	"LOWER(email) DESC"    -> "LOWER(`email`) DESC"
//
// The function name must be whitelisted (case-insensitive) and its
// argument must itself be a whitelisted column, not an expression.
// A single bad term rejects the entire clause with ErrInvalidClause;
// no partial ORDER BY is ever applied. Empty input returns an empty
// fragment and no error: the clause is simply omitted.
func (w *Whitelist) SanitizeOrderBy(clause string) (string, error) {
	if strings.TrimSpace(clause) == "" {
		return "", nil
	}

	terms := strings.Split(clause, ",")
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		safe, err := w.sanitizeOrderTerm(term)
		if err != nil {
			return "", err
		}
		parts = append(parts, safe)
	}
	return strings.Join(parts, ", "), nil
}

// sanitizeOrderTerm validates one ORDER BY term and re-emits it.
func (w *Whitelist) sanitizeOrderTerm(term string) (string, error) {
	tokens := strings.Fields(term)

	// Strip and remember a trailing direction token.
	var dir string
	switch len(tokens) {
	case 1:
		// no direction
	case 2:
		switch strings.ToUpper(tokens[1]) {
		case "ASC", "DESC":
			dir = " " + strings.ToUpper(tokens[1])
		default:
			return "", fmt.Errorf("%w: bad direction %q", ErrInvalidClause, tokens[1])
		}
	default:
		return "", fmt.Errorf("%w: bad order term %q", ErrInvalidClause, strings.TrimSpace(term))
	}

	expr := tokens[0]

	// Function form: FUNC(column). The argument is the literal text
	// between the parentheses and must be a whitelisted column, not an
	// expression.
	if m := funcTermPattern.FindStringSubmatch(expr); m != nil {
		fn, arg := m[1], m[2]
		if !w.AllowedFunction(fn) {
			return "", fmt.Errorf("%w: function %q", ErrInvalidIdentifier, fn)
		}
		if !w.AllowedColumn(arg) {
			return "", fmt.Errorf("%w: column %q", ErrInvalidIdentifier, arg)
		}
		return strings.ToUpper(fn) + "(`" + arg + "`)" + dir, nil
	}

	// Bare column form.
	if !w.AllowedColumn(expr) {
		return "", fmt.Errorf("%w: column %q", ErrInvalidIdentifier, expr)
	}
	return "`" + expr + "`" + dir, nil
}

// SanitizeLimit validates caller-supplied LIMIT text.
//
// Accepted forms are "count" and "offset, count" with digits only;
// anything else (including "10; DROP TABLE users") is rejected with
// ErrInvalidClause. Output is normalized to "n" or "n, m". Empty input
// returns an empty fragment and no error: the clause is omitted.
func SanitizeLimit(clause string) (string, error) {
	trimmed := strings.TrimSpace(clause)
	if trimmed == "" {
		return "", nil
	}

	m := limitPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return "", fmt.Errorf("%w: bad limit %q", ErrInvalidClause, trimmed)
	}
	if m[2] != "" {
		return m[1] + ", " + m[2], nil
	}
	return m[1], nil
}
