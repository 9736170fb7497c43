package guard

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/nerrad567/sqlguard/internal/infrastructure/logging"
)

// columnCharsPattern strips everything outside [A-Za-z0-9_] from
// insert/update column names before the whitelist check.
var columnCharsPattern = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// Deps holds the dependencies required by a Store.
type Deps struct {
	// DB is the prepared-statement executor. The Store never closes
	// it; connection teardown belongs to the owner.
	DB *sql.DB

	// Whitelist holds the permitted identifiers.
	Whitelist *Whitelist

	// QueryLog receives masked attempt and failure entries.
	QueryLog *QueryLog

	// Logger is used for operational diagnostics (e.g. a failing log
	// sink). Optional; defaults to logging.Default().
	Logger *logging.Logger
}

// Store exposes the guarded query operations.
//
// Every operation is a linear pipeline: VALIDATE the identifiers and
// arguments, BUILD the SQL text, BIND and EXECUTE through a prepared
// statement, then REPORT a uniform Result. Any failure short-circuits
// to a status=0 envelope; VALIDATE and BUILD failures never reach the
// executor, and no raw error detail ever leaves the query log.
//
// A Store holds no mutable state beyond its immutable whitelist and
// the append-only query log, so it is safe for concurrent use.
type Store struct {
	db     *sql.DB
	wl     *Whitelist
	qlog   *QueryLog
	logger *logging.Logger
}

// New creates a Store from its dependencies.
func New(deps Deps) (*Store, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("%w: no executor", ErrConnection)
	}
	if deps.Whitelist == nil {
		return nil, fmt.Errorf("whitelist is required")
	}
	if deps.QueryLog == nil {
		return nil, fmt.Errorf("query log is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Store{
		db:     deps.DB,
		wl:     deps.Whitelist,
		qlog:   deps.QueryLog,
		logger: logger,
	}, nil
}

// Whitelist returns the store's identifier whitelist.
func (s *Store) Whitelist() *Whitelist {
	return s.wl
}

// Insert adds one row to table. data must be non-empty; its order
// fixes the placeholder order. Column names are reduced to
// [A-Za-z0-9_] and checked against the whitelist.
//
// On success the Result carries the insert ID and affected row count.
func (s *Store) Insert(ctx context.Context, table string, data []Field) Result {
	label := "INSERT " + table

	// VALIDATE
	if !s.wl.AllowedTable(table) {
		return s.reject(label, fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table))
	}
	if len(data) == 0 {
		return s.reject(label, fmt.Errorf("%w: empty data", ErrMissingArgument))
	}
	cols, err := s.safeColumns(data)
	if err != nil {
		return s.reject(label, err)
	}

	// BUILD
	sqlText := "INSERT INTO `" + table + "` (`" + strings.Join(cols, "`, `") + "`) VALUES (" + placeholders(len(data)) + ")"

	// BIND+EXECUTE
	res, err := s.exec(ctx, label, sqlText, data)
	if err != nil {
		return s.fail(label, sqlText, err)
	}

	// REPORT
	insertID, _ := res.LastInsertId() //nolint:errcheck // always succeeds on SQLite
	affected, _ := res.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return Result{Status: StatusOK, InsertID: insertID, AffectedRows: affected}
}

// Update modifies rows of table matching the where predicate. data and
// where must be non-empty; whereParams bind the predicate's ?
// placeholders after the SET values.
func (s *Store) Update(ctx context.Context, table string, data []Field, where string, whereParams []Value) Result {
	label := "UPDATE " + table

	// VALIDATE
	if !s.wl.AllowedTable(table) {
		return s.reject(label, fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table))
	}
	if len(data) == 0 {
		return s.reject(label, fmt.Errorf("%w: empty data", ErrMissingArgument))
	}
	if strings.TrimSpace(where) == "" {
		return s.reject(label, fmt.Errorf("%w: empty where clause", ErrMissingArgument))
	}
	cols, err := s.safeColumns(data)
	if err != nil {
		return s.reject(label, err)
	}

	// BUILD
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = "`" + c + "` = ?"
	}
	sqlText := "UPDATE `" + table + "` SET " + strings.Join(sets, ", ") + " WHERE " + where

	// BIND+EXECUTE: SET values first, then predicate params.
	fields := append(append([]Field{}, data...), unnamed(whereParams)...)
	res, err := s.exec(ctx, label, sqlText, fields)
	if err != nil {
		return s.fail(label, sqlText, err)
	}

	// REPORT
	affected, _ := res.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return Result{Status: StatusOK, AffectedRows: affected}
}

// SelectOne fetches at most one row from table. columns and where are
// trusted raw fragments; an empty columns projection selects *.
//
// Data is the row as a map, or nil when nothing matched (still
// status=1: an empty result is not a failure).
func (s *Store) SelectOne(ctx context.Context, table, columns, where string, params []Value) Result {
	label := "SELECT " + table

	// VALIDATE
	if !s.wl.AllowedTable(table) {
		return s.reject(label, fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table))
	}

	// BUILD
	sqlText := "SELECT " + projection(columns) + " FROM `" + table + "`"
	if strings.TrimSpace(where) != "" {
		sqlText += " WHERE " + where
	}
	sqlText += " LIMIT 1"

	// BIND+EXECUTE
	rows, err := s.query(ctx, label, sqlText, unnamed(params))
	if err != nil {
		return s.fail(label, sqlText, err)
	}

	// REPORT
	if len(rows) == 0 {
		return Result{Status: StatusOK}
	}
	return Result{Status: StatusOK, Data: rows[0]}
}

// SelectAll fetches all rows from table matching the optional where
// predicate. orderBy and limit are caller text sanitized against the
// whitelist grammar; a rejected clause aborts the whole query.
func (s *Store) SelectAll(ctx context.Context, table, columns, where string, params []Value, orderBy, limit string) Result {
	label := "SELECT " + table

	// VALIDATE
	if !s.wl.AllowedTable(table) {
		return s.reject(label, fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table))
	}
	orderClause, err := s.wl.SanitizeOrderBy(orderBy)
	if err != nil {
		return s.reject(label, err)
	}
	limitClause, err := SanitizeLimit(limit)
	if err != nil {
		return s.reject(label, err)
	}

	// BUILD
	sqlText := "SELECT " + projection(columns) + " FROM `" + table + "`"
	if strings.TrimSpace(where) != "" {
		sqlText += " WHERE " + where
	}
	if orderClause != "" {
		sqlText += " ORDER BY " + orderClause
	}
	if limitClause != "" {
		sqlText += " LIMIT " + limitClause
	}

	// BIND+EXECUTE
	rows, err := s.query(ctx, label, sqlText, unnamed(params))
	if err != nil {
		return s.fail(label, sqlText, err)
	}

	// REPORT
	return Result{Status: StatusOK, Data: rows}
}

// Delete removes rows of table matching the where predicate. where is
// required; an unconditional delete must be spelled out by the caller
// as an explicit predicate.
func (s *Store) Delete(ctx context.Context, table, where string, params []Value) Result {
	label := "DELETE " + table

	// VALIDATE
	if !s.wl.AllowedTable(table) {
		return s.reject(label, fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table))
	}
	if strings.TrimSpace(where) == "" {
		return s.reject(label, fmt.Errorf("%w: empty where clause", ErrMissingArgument))
	}

	// BUILD
	sqlText := "DELETE FROM `" + table + "` WHERE " + where

	// BIND+EXECUTE
	res, err := s.exec(ctx, label, sqlText, unnamed(params))
	if err != nil {
		return s.fail(label, sqlText, err)
	}

	// REPORT
	affected, _ := res.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return Result{Status: StatusOK, AffectedRows: affected}
}

// Query runs a caller-owned parameterized statement. The caller owns
// the full SQL text; only the values pass through the binder. When the
// leading keyword is SELECT or SHOW the Result carries the fetched
// rows, otherwise the affected row count and insert ID.
func (s *Store) Query(ctx context.Context, sqlText string, params []Value) Result {
	const label = "QUERY"

	if returnsRows(sqlText) {
		rows, err := s.query(ctx, label, sqlText, unnamed(params))
		if err != nil {
			return s.fail(label, sqlText, err)
		}
		return Result{Status: StatusOK, Data: rows}
	}

	res, err := s.exec(ctx, label, sqlText, unnamed(params))
	if err != nil {
		return s.fail(label, sqlText, err)
	}
	insertID, _ := res.LastInsertId() //nolint:errcheck // always succeeds on SQLite
	affected, _ := res.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return Result{Status: StatusOK, InsertID: insertID, AffectedRows: affected}
}

// exec prepares, binds, and executes a statement that returns no rows.
func (s *Store) exec(ctx context.Context, label, sqlText string, fields []Field) (sql.Result, error) {
	stmt, err := s.db.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBinding, err)
	}
	defer stmt.Close() //nolint:errcheck // statement already consumed

	s.logAttempt(label, sqlText, fields)

	res, err := stmt.ExecContext(ctx, Args(fieldValues(fields))...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}
	return res, nil
}

// query prepares, binds, and executes a row-returning statement.
func (s *Store) query(ctx context.Context, label, sqlText string, fields []Field) ([]map[string]any, error) {
	stmt, err := s.db.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBinding, err)
	}
	defer stmt.Close() //nolint:errcheck // statement already consumed

	s.logAttempt(label, sqlText, fields)

	rows, err := stmt.QueryContext(ctx, Args(fieldValues(fields))...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}
	defer rows.Close() //nolint:errcheck // rows fully drained below

	return rowsToMaps(rows)
}

// rowsToMaps scans all rows into maps keyed by column name. []byte
// values are normalized to string so results are JSON-friendly.
func rowsToMaps(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}

	out := []map[string]any{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecution, err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = normalizeValue(vals[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}
	return out, nil
}

// normalizeValue converts driver []byte values to string.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// safeColumns validates and escapes the column names of a field
// sequence: each name is reduced to [A-Za-z0-9_] and the result must
// be a whitelisted column.
func (s *Store) safeColumns(data []Field) ([]string, error) {
	cols := make([]string, len(data))
	for i, f := range data {
		name := columnCharsPattern.ReplaceAllString(f.Column, "")
		if name == "" || !s.wl.AllowedColumn(name) {
			return nil, fmt.Errorf("%w: column %q", ErrInvalidIdentifier, f.Column)
		}
		cols[i] = name
	}
	return cols, nil
}

// reject reports a VALIDATE/BUILD failure: no SQL reached the
// executor, so the failure entry carries no statement text.
func (s *Store) reject(label string, err error) Result {
	return s.fail(label, "", err)
}

// fail logs a failure (masked) and returns the generic envelope.
func (s *Store) fail(label, sqlText string, err error) Result {
	if logErr := s.qlog.Failure(label, sqlText, err); logErr != nil {
		s.logger.Error("query log write failed", "error", logErr)
	}
	return failed()
}

// logAttempt writes the masked attempt entry, reporting sink errors to
// the operational logger.
func (s *Store) logAttempt(label, sqlText string, fields []Field) {
	if err := s.qlog.Attempt(label, sqlText, fields); err != nil {
		s.logger.Error("query log write failed", "error", err)
	}
}

// placeholders renders n comma-separated ? markers.
func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// projection returns the SELECT column list, defaulting to *.
// The text is a trusted fragment owned by the calling application.
func projection(columns string) string {
	if strings.TrimSpace(columns) == "" {
		return "*"
	}
	return columns
}

// returnsRows reports whether a custom statement's leading keyword
// produces a result set.
func returnsRows(sqlText string) bool {
	fields := strings.Fields(sqlText)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "SHOW":
		return true
	default:
		return false
	}
}
