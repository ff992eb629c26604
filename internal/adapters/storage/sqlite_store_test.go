package storage

import (
	"context"
	"database/sql"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return db
}

// TestInitDB_Idempotent verifies the schema can be applied twice.
func TestInitDB_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB: %v", err)
	}
}

// TestSQLiteStore_RoundTrip verifies lines come back in write order.
func TestSQLiteStore_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	s := NewSQLiteStore(db, "members")
	ctx := context.Background()
	want := []string{"3;Anna", "1;Bo", "2;Carl"}

	if err := s.WriteLines(ctx, want); err != nil {
		t.Fatalf("WriteLines() unexpected error: %v", err)
	}
	got, err := s.ReadLines(ctx)
	if err != nil {
		t.Fatalf("ReadLines() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadLines() = %v, want %v", got, want)
	}
}

// TestSQLiteStore_CategoriesAreIsolated verifies a rewrite only replaces its own category.
func TestSQLiteStore_CategoriesAreIsolated(t *testing.T) {
	db := openTestDB(t)
	members := NewSQLiteStore(db, "members")
	payments := NewSQLiteStore(db, "payments")
	ctx := context.Background()

	if err := members.WriteLines(ctx, []string{"m1", "m2"}); err != nil {
		t.Fatalf("WriteLines(members): %v", err)
	}
	if err := payments.WriteLines(ctx, []string{"p1"}); err != nil {
		t.Fatalf("WriteLines(payments): %v", err)
	}
	if err := members.WriteLines(ctx, []string{"m3"}); err != nil {
		t.Fatalf("WriteLines(members): %v", err)
	}

	gotMembers, _ := members.ReadLines(ctx)
	gotPayments, _ := payments.ReadLines(ctx)
	if !reflect.DeepEqual(gotMembers, []string{"m3"}) {
		t.Errorf("members = %v, want [m3]", gotMembers)
	}
	if !reflect.DeepEqual(gotPayments, []string{"p1"}) {
		t.Errorf("payments = %v, want [p1]", gotPayments)
	}
}

// TestSQLiteStore_EmptyCategory verifies an unwritten category is empty.
func TestSQLiteStore_EmptyCategory(t *testing.T) {
	db := openTestDB(t)
	lines, err := NewSQLiteStore(db, "rates").ReadLines(context.Background())
	if err != nil {
		t.Fatalf("ReadLines() unexpected error: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("ReadLines() = %v, want empty", lines)
	}
}
