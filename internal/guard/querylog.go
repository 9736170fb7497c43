package guard

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
)

// Query log constants.
const (
	// logFilePermissions is the permission mode for the query log file.
	logFilePermissions = 0600

	// redactionMarker replaces sensitive values in log entries.
	redactionMarker = "******"

	// timestampLayout is the entry timestamp format.
	timestampLayout = "2006-01-02 15:04:05"
)

// sensitiveLiteralPattern matches "password = '...'" style literals in
// raw SQL text, for scrubbing failure entries where values are already
// interpolated by the caller.
var sensitiveLiteralPattern = regexp.MustCompile(`(?i)(password|token)(\s*=\s*)'[^']*'`)

// literalEscaper escapes a value for embedding as a quoted literal in
// a log entry.
var literalEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// QueryLog renders SQL attempts and failures into masked entries and
// appends them to a log file.
//
// Entries have the form:
//
//	[2026-01-02 15:04:05] INSERT users
//	INSERT INTO `users` (`name`, `password`) VALUES ('arun', '******') [types=ss]
//
// Values bound to a column whose name contains "password" or "token"
// (case-insensitive) are replaced with a redaction marker before the
// entry is rendered; sensitive data never reaches the sink or the echo
// writer.
//
// Each entry is written with a single O_APPEND write, so concurrent
// handlers appending to the same file do not interleave partial lines.
// No further locking is needed: the file is the only shared state.
type QueryLog struct {
	path  string
	debug bool
	echo  io.Writer
}

// NewQueryLog creates a query log appending to path.
//
// When debug is false only failures are written. echo optionally
// receives a copy of every rendered entry (print mode); pass nil to
// disable, which is the default posture.
func NewQueryLog(path string, debug bool, echo io.Writer) *QueryLog {
	return &QueryLog{
		path:  path,
		debug: debug,
		echo:  echo,
	}
}

// Debug reports whether attempt logging is enabled.
func (l *QueryLog) Debug() bool {
	return l.debug
}

// Attempt records one statement attempt: the SQL with each ?
// placeholder substituted by its masked, escaped value, plus the
// positional bind-type tags. No-op unless debug mode is on.
func (l *QueryLog) Attempt(label, sqlText string, fields []Field) error {
	if !l.debug {
		return nil
	}

	body := renderSQL(sqlText, fields)
	if tags := TypeTags(fieldValues(fields)); tags != "" {
		body += " [types=" + tags + "]"
	}
	return l.write(label, body)
}

// Failure records a failed operation: its label, the SQL (scrubbed of
// any password/token literals), and the error text. Failures are
// always written regardless of debug mode; this entry is the only
// place the raw error detail is kept, since callers receive a generic
// envelope.
func (l *QueryLog) Failure(label, sqlText string, opErr error) error {
	masked := sensitiveLiteralPattern.ReplaceAllString(sqlText, "${1}${2}'"+redactionMarker+"'")
	body := fmt.Sprintf("op=%s sql=%s error=%s", label, masked, opErr)
	return l.write(label+" FAILED", body)
}

// write appends one timestamped entry to the sink and echoes it when
// print mode is configured.
func (l *QueryLog) write(label, body string) error {
	entry := fmt.Sprintf("[%s] %s\n%s\n\n", time.Now().Format(timestampLayout), label, body)

	if l.echo != nil {
		io.WriteString(l.echo, entry) //nolint:errcheck // Echo is best-effort
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFilePermissions)
	if err != nil {
		return fmt.Errorf("opening query log: %w", err)
	}
	defer f.Close() //nolint:errcheck // Close error is secondary to write error

	// Single write keeps the O_APPEND append atomic.
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("appending query log entry: %w", err)
	}
	return nil
}

// renderSQL substitutes each ? placeholder with the corresponding
// field's value, escaped for literal embedding, masking fields whose
// column name marks them sensitive. Extra placeholders (more ? than
// values) are left as-is.
func renderSQL(sqlText string, fields []Field) string {
	if len(fields) == 0 {
		return sqlText
	}

	var sb strings.Builder
	next := 0
	for i := 0; i < len(sqlText); i++ {
		if sqlText[i] != '?' || next >= len(fields) {
			sb.WriteByte(sqlText[i])
			continue
		}
		f := fields[next]
		next++
		if sensitiveColumn(f.Column) {
			sb.WriteString("'" + redactionMarker + "'")
			continue
		}
		sb.WriteString("'" + literalEscaper.Replace(f.Value.Literal()) + "'")
	}
	return sb.String()
}

// sensitiveColumn reports whether a column name marks its value as
// sensitive (substring match, case-insensitive).
func sensitiveColumn(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "password") || strings.Contains(lower, "token")
}
