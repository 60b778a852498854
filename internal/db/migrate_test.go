package db

import (
	"strings"
	"testing"
)

func TestMigrationNames_Ordered(t *testing.T) {
	names, err := MigrationNames()
	if err != nil {
		t.Fatalf("MigrationNames: %v", err)
	}
	if len(names) < 2 {
		t.Fatalf("expected at least 2 migrations, got %v", names)
	}
	if !strings.HasSuffix(names[0], "001_init.sql") {
		t.Errorf("first migration = %s, want 001_init.sql", names[0])
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("migrations out of order: %s before %s", names[i-1], names[i])
		}
	}
}
