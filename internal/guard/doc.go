// Package guard is the safe query construction and parameter binding
// layer between application code and the database.
//
// Callers supply high-level CRUD intents (insert, update, select,
// delete, custom query) together with table and column names that may
// be partially untrusted. The package guarantees that only whitelisted
// identifiers and parameterized values ever reach the executor:
//
//   - Whitelist: immutable sets of permitted table, column, and
//     function names; membership is checked before any SQL is built.
//   - Clause sanitizer: ORDER BY and LIMIT text is parsed against a
//     deliberately narrow grammar (bare column or single-level
//     function call, optional ASC/DESC; digits or digits,digits) and
//     re-emitted as safe fragments. Anything else rejects the whole
//     clause.
//   - Parameter binder: values are tagged scalars (int, float, text)
//     converted positionally to driver arguments; the count and order
//     of values always matches the placeholders in the generated SQL.
//   - Masked query log: every attempt (in debug mode) and every
//     failure is appended to a log file with password/token values
//     redacted. Callers only ever see a generic failure envelope;
//     raw database errors never leave the log.
//
// WHERE predicates and column projections are an explicit trust
// boundary: they are raw SQL fragments owned by the calling
// application, with user-controlled values passed through ?
// placeholders. The whitelists protect the places where string-built
// injection historically happens (table names, insert/update columns,
// ORDER BY), not fragments the application itself composes.
package guard
