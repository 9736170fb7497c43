package guard

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func testQueryLog(t *testing.T, debug bool) (*QueryLog, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "query.log")
	return NewQueryLog(path, debug, nil), path
}

func readLog(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading query log: %v", err)
	}
	return string(data)
}

func TestAttemptMasksSensitiveColumns(t *testing.T) {
	qlog, path := testQueryLog(t, true)

	fields := []Field{
		{Column: "name", Value: Text("arun")},
		{Column: "password", Value: Text("hunter2")},
		{Column: "api_token", Value: Text("tok-abc123")},
	}
	sql := "INSERT INTO `users` (`name`, `password`, `api_token`) VALUES (?, ?, ?)"

	if err := qlog.Attempt("INSERT users", sql, fields); err != nil {
		t.Fatalf("attempt: %v", err)
	}

	got := readLog(t, path)
	if strings.Contains(got, "hunter2") || strings.Contains(got, "tok-abc123") {
		t.Errorf("sensitive values leaked into log:\n%s", got)
	}
	if !strings.Contains(got, "'arun'") {
		t.Errorf("non-sensitive value missing from log:\n%s", got)
	}
	if strings.Count(got, "'"+redactionMarker+"'") != 2 {
		t.Errorf("expected two redacted literals:\n%s", got)
	}
	if !strings.Contains(got, "[types=sss]") {
		t.Errorf("type tags missing from entry:\n%s", got)
	}
}

func TestAttemptNoOpWithoutDebug(t *testing.T) {
	qlog, path := testQueryLog(t, false)

	if err := qlog.Attempt("INSERT users", "INSERT INTO `users` (`name`) VALUES (?)", []Field{{Column: "name", Value: Text("arun")}}); err != nil {
		t.Fatalf("attempt: %v", err)
	}

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("log file should not exist when debug is off, stat err = %v", err)
	}
}

func TestFailureWrittenWithoutDebug(t *testing.T) {
	qlog, path := testQueryLog(t, false)

	if err := qlog.Failure("DELETE users", "DELETE FROM `users` WHERE id = 1", errors.New("no such table: users")); err != nil {
		t.Fatalf("failure: %v", err)
	}

	got := readLog(t, path)
	if !strings.Contains(got, "DELETE users FAILED") {
		t.Errorf("failure label missing:\n%s", got)
	}
	if !strings.Contains(got, "no such table: users") {
		t.Errorf("error detail missing:\n%s", got)
	}
}

func TestFailureScrubsSensitiveLiterals(t *testing.T) {
	qlog, path := testQueryLog(t, false)

	sql := "UPDATE `users` SET password = 'hunter2', Token = 'tok-abc' WHERE id = 1"
	if err := qlog.Failure("UPDATE users", sql, errors.New("database is locked")); err != nil {
		t.Fatalf("failure: %v", err)
	}

	got := readLog(t, path)
	if strings.Contains(got, "hunter2") || strings.Contains(got, "tok-abc") {
		t.Errorf("sensitive literals leaked into failure entry:\n%s", got)
	}
	if !strings.Contains(got, "password = '"+redactionMarker+"'") {
		t.Errorf("password literal not scrubbed in place:\n%s", got)
	}
}

func TestEntryFormat(t *testing.T) {
	qlog, path := testQueryLog(t, true)

	if err := qlog.Attempt("SELECT users", "SELECT * FROM `users`", nil); err != nil {
		t.Fatalf("attempt: %v", err)
	}

	got := readLog(t, path)
	entryPattern := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] SELECT users\nSELECT \* FROM ` + "`users`" + `\n\n$`)
	if !entryPattern.MatchString(got) {
		t.Errorf("entry format mismatch:\n%q", got)
	}
}

func TestEntriesAppend(t *testing.T) {
	qlog, path := testQueryLog(t, true)

	if err := qlog.Attempt("SELECT users", "SELECT 1", nil); err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if err := qlog.Failure("SELECT users", "SELECT 1", errors.New("boom")); err != nil {
		t.Fatalf("failure: %v", err)
	}

	got := readLog(t, path)
	if strings.Count(got, "\n\n") != 2 {
		t.Errorf("expected two entries:\n%q", got)
	}
}

func TestEchoReceivesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.log")
	var sb strings.Builder
	qlog := NewQueryLog(path, true, &sb)

	if err := qlog.Attempt("SELECT users", "SELECT 1", nil); err != nil {
		t.Fatalf("attempt: %v", err)
	}

	if !strings.Contains(sb.String(), "SELECT 1") {
		t.Errorf("echo writer did not receive entry: %q", sb.String())
	}
	if readLog(t, path) != sb.String() {
		t.Error("echo output should match file contents")
	}
}

func TestRenderSQLEscapesQuotes(t *testing.T) {
	got := renderSQL("SELECT * FROM `users` WHERE name = ?", []Field{{Column: "name", Value: Text("o'brien")}})
	want := "SELECT * FROM `users` WHERE name = 'o\\'brien'"
	if got != want {
		t.Errorf("rendered = %q, want %q", got, want)
	}
}

func TestRenderSQLExtraPlaceholders(t *testing.T) {
	got := renderSQL("? and ?", []Field{{Column: "id", Value: Int(1)}})
	if got != "'1' and ?" {
		t.Errorf("rendered = %q", got)
	}
}
