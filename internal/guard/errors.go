package guard

import "errors"

// Domain errors for the guard package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, guard.ErrInvalidIdentifier) {
//	    // handle rejected identifier
//	}
//
// Inside Store operations every one of these (except ErrConnection,
// which is fatal at construction time) is caught at the operation
// boundary, logged with masking, and converted to a status=0 Result.
var (
	// ErrInvalidIdentifier is returned when a table, column, or
	// function name is not in the whitelist.
	ErrInvalidIdentifier = errors.New("guard: identifier not allowed")

	// ErrInvalidClause is returned when ORDER BY or LIMIT text does
	// not match the permitted grammar.
	ErrInvalidClause = errors.New("guard: invalid clause")

	// ErrMissingArgument is returned when required data or a required
	// WHERE clause is empty.
	ErrMissingArgument = errors.New("guard: missing argument")

	// ErrBinding is returned when the executor rejects the prepare or
	// parameter bind step.
	ErrBinding = errors.New("guard: parameter binding failed")

	// ErrExecution is returned when statement execution fails
	// (constraint violation, type error, etc.).
	ErrExecution = errors.New("guard: statement execution failed")

	// ErrConnection is returned when the database connection is
	// unavailable at construction.
	ErrConnection = errors.New("guard: database connection failed")
)
