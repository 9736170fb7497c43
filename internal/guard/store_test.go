package guard

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testStore opens a temp-file SQLite database with a users table and
// wires it to a Store with debug attempt logging enabled. The query
// log path is returned so tests can assert on rendered entries.
func testStore(t *testing.T) (*Store, string) {
	t.Helper()

	dir := t.TempDir()
	db, err := sql.Open("sqlite3", filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // test cleanup
	})

	schema := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT,
			password TEXT,
			created_at TEXT
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	logPath := filepath.Join(dir, "query.log")
	store, err := New(Deps{
		DB:        db,
		Whitelist: testWhitelist(),
		QueryLog:  NewQueryLog(logPath, true, nil),
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return store, logPath
}

func seedUser(t *testing.T, store *Store, name, email string) int64 {
	t.Helper()

	res := store.Insert(context.Background(), "users", []Field{
		{Column: "name", Value: Text(name)},
		{Column: "email", Value: Text(email)},
	})
	if !res.OK() {
		t.Fatalf("seeding user %s: %+v", name, res)
	}
	return res.InsertID
}

func TestInsert(t *testing.T) {
	store, logPath := testStore(t)

	res := store.Insert(context.Background(), "users", []Field{
		{Column: "name", Value: Text("arun")},
		{Column: "email", Value: Text("arun@example.com")},
		{Column: "phone", Value: Text("0400123456")},
		{Column: "password", Value: Text("hunter2")},
	})

	if !res.OK() {
		t.Fatalf("insert failed: %+v", res)
	}
	if res.InsertID != 1 {
		t.Errorf("insert_id = %d, want 1", res.InsertID)
	}
	if res.AffectedRows != 1 {
		t.Errorf("affected_rows = %d, want 1", res.AffectedRows)
	}

	entry := readLog(t, logPath)
	wantSQL := "INSERT INTO `users` (`name`, `email`, `phone`, `password`) VALUES ('arun', 'arun@example.com', '0400123456', '" + redactionMarker + "')"
	if !strings.Contains(entry, wantSQL) {
		t.Errorf("attempt entry missing rendered SQL:\n%s", entry)
	}
	if strings.Contains(entry, "hunter2") {
		t.Errorf("password leaked into query log:\n%s", entry)
	}
}

func TestInsertRejectsUnknownTable(t *testing.T) {
	store, logPath := testStore(t)

	res := store.Insert(context.Background(), "Users", []Field{
		{Column: "name", Value: Text("arun")},
	})

	if res.Status != StatusFailed {
		t.Fatalf("status = %d, want %d", res.Status, StatusFailed)
	}
	if res.Error != genericFailureMessage {
		t.Errorf("error = %q, want generic message", res.Error)
	}

	entry := readLog(t, logPath)
	if !strings.Contains(entry, "INSERT Users FAILED") {
		t.Errorf("failure entry missing:\n%s", entry)
	}
	if strings.Contains(entry, "INSERT INTO") {
		t.Errorf("rejected operation reached the builder:\n%s", entry)
	}
}

func TestInsertRejectsUnknownColumn(t *testing.T) {
	store, _ := testStore(t)

	res := store.Insert(context.Background(), "users", []Field{
		{Column: "name", Value: Text("arun")},
		{Column: "role", Value: Text("admin")},
	})

	if res.Status != StatusFailed {
		t.Fatalf("status = %d, want %d", res.Status, StatusFailed)
	}
}

func TestInsertEmptyData(t *testing.T) {
	store, _ := testStore(t)

	if res := store.Insert(context.Background(), "users", nil); res.Status != StatusFailed {
		t.Errorf("status = %d, want %d", res.Status, StatusFailed)
	}
}

func TestInsertStripsColumnPunctuation(t *testing.T) {
	store, _ := testStore(t)

	// A backtick-wrapped name reduces to the bare identifier before
	// the whitelist check.
	res := store.Insert(context.Background(), "users", []Field{
		{Column: "`name`", Value: Text("arun")},
		{Column: "email", Value: Text("a@example.com")},
	})
	if !res.OK() {
		t.Fatalf("insert failed: %+v", res)
	}
}

func TestUpdate(t *testing.T) {
	store, _ := testStore(t)
	id := seedUser(t, store, "arun", "arun@example.com")

	res := store.Update(context.Background(), "users",
		[]Field{{Column: "phone", Value: Text("0400999999")}},
		"id = ?", []Value{Int(id)})

	if !res.OK() {
		t.Fatalf("update failed: %+v", res)
	}
	if res.AffectedRows != 1 {
		t.Errorf("affected_rows = %d, want 1", res.AffectedRows)
	}

	got := store.SelectOne(context.Background(), "users", "phone", "id = ?", []Value{Int(id)})
	if !got.OK() {
		t.Fatalf("select failed: %+v", got)
	}
	row, ok := got.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %T, want map", got.Data)
	}
	if row["phone"] != "0400999999" {
		t.Errorf("phone = %v after update", row["phone"])
	}
}

func TestUpdateRequiresWhere(t *testing.T) {
	store, _ := testStore(t)
	seedUser(t, store, "arun", "arun@example.com")

	res := store.Update(context.Background(), "users",
		[]Field{{Column: "phone", Value: Text("0400999999")}},
		"  ", nil)

	if res.Status != StatusFailed {
		t.Errorf("status = %d, want %d", res.Status, StatusFailed)
	}
}

func TestSelectOneNoMatch(t *testing.T) {
	store, _ := testStore(t)

	res := store.SelectOne(context.Background(), "users", "", "id = ?", []Value{Int(999)})

	if !res.OK() {
		t.Fatalf("empty result should not fail: %+v", res)
	}
	if res.Data != nil {
		t.Errorf("data = %v, want nil", res.Data)
	}
}

func TestSelectAllOrderedAndLimited(t *testing.T) {
	store, _ := testStore(t)
	seedUser(t, store, "bob", "B@example.com")
	seedUser(t, store, "ann", "a@example.com")
	seedUser(t, store, "cal", "C@example.com")

	res := store.SelectAll(context.Background(), "users", "name, email", "", nil, "LOWER(email) DESC", "2")

	if !res.OK() {
		t.Fatalf("select failed: %+v", res)
	}
	rows, ok := res.Data.([]map[string]any)
	if !ok {
		t.Fatalf("data = %T, want row slice", res.Data)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (limit applied)", len(rows))
	}
	if rows[0]["name"] != "cal" || rows[1]["name"] != "bob" {
		t.Errorf("order = %v, %v; want cal, bob", rows[0]["name"], rows[1]["name"])
	}
}

func TestSelectAllRejectsBadOrderBy(t *testing.T) {
	store, _ := testStore(t)
	seedUser(t, store, "arun", "arun@example.com")

	res := store.SelectAll(context.Background(), "users", "", "", nil, "name; DROP TABLE users", "")

	if res.Status != StatusFailed {
		t.Fatalf("status = %d, want %d", res.Status, StatusFailed)
	}

	// The poisoned clause must not have executed anything.
	check := store.SelectAll(context.Background(), "users", "", "", nil, "", "")
	if !check.OK() {
		t.Fatalf("users table gone after rejected clause: %+v", check)
	}
}

func TestSelectAllEmptyTable(t *testing.T) {
	store, _ := testStore(t)

	res := store.SelectAll(context.Background(), "users", "", "", nil, "", "")

	if !res.OK() {
		t.Fatalf("select failed: %+v", res)
	}
	rows, ok := res.Data.([]map[string]any)
	if !ok {
		t.Fatalf("data = %T, want row slice", res.Data)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
}

func TestDelete(t *testing.T) {
	store, _ := testStore(t)
	id := seedUser(t, store, "arun", "arun@example.com")

	res := store.Delete(context.Background(), "users", "id = ?", []Value{Int(id)})

	if !res.OK() {
		t.Fatalf("delete failed: %+v", res)
	}
	if res.AffectedRows != 1 {
		t.Errorf("affected_rows = %d, want 1", res.AffectedRows)
	}
}

func TestDeleteRequiresWhere(t *testing.T) {
	store, _ := testStore(t)
	seedUser(t, store, "arun", "arun@example.com")

	res := store.Delete(context.Background(), "users", "", nil)

	if res.Status != StatusFailed {
		t.Fatalf("status = %d, want %d", res.Status, StatusFailed)
	}

	check := store.SelectAll(context.Background(), "users", "", "", nil, "", "")
	rows := check.Data.([]map[string]any)
	if len(rows) != 1 {
		t.Errorf("rows = %d after rejected delete, want 1", len(rows))
	}
}

func TestQuerySelect(t *testing.T) {
	store, _ := testStore(t)
	seedUser(t, store, "arun", "arun@example.com")

	res := store.Query(context.Background(), "SELECT name FROM users WHERE email = ?", []Value{Text("arun@example.com")})

	if !res.OK() {
		t.Fatalf("query failed: %+v", res)
	}
	rows, ok := res.Data.([]map[string]any)
	if !ok {
		t.Fatalf("data = %T, want row slice", res.Data)
	}
	if len(rows) != 1 || rows[0]["name"] != "arun" {
		t.Errorf("rows = %v", rows)
	}
}

func TestQueryExec(t *testing.T) {
	store, _ := testStore(t)

	res := store.Query(context.Background(),
		"INSERT INTO users (name, email) VALUES (?, ?)",
		[]Value{Text("arun"), Text("arun@example.com")})

	if !res.OK() {
		t.Fatalf("query failed: %+v", res)
	}
	if res.InsertID != 1 || res.AffectedRows != 1 {
		t.Errorf("insert_id = %d, affected_rows = %d", res.InsertID, res.AffectedRows)
	}
}

func TestQueryBadStatement(t *testing.T) {
	store, logPath := testStore(t)

	res := store.Query(context.Background(), "SELECT * FROM missing_table", nil)

	if res.Status != StatusFailed {
		t.Fatalf("status = %d, want %d", res.Status, StatusFailed)
	}
	if res.Error != genericFailureMessage {
		t.Errorf("error = %q; raw detail must stay in the log", res.Error)
	}
	if !strings.Contains(readLog(t, logPath), "missing_table") {
		t.Error("failure entry should carry the raw error detail")
	}
}

func TestNewRequiresExecutor(t *testing.T) {
	_, err := New(Deps{Whitelist: testWhitelist(), QueryLog: NewQueryLog(filepath.Join(t.TempDir(), "q.log"), false, nil)})
	if err == nil {
		t.Fatal("expected error for nil executor")
	}
}
