package infra

import (
	"strings"
	"testing"
)

func TestAttemptAuditSchema(t *testing.T) {
	schema, err := migrationFiles.ReadFile("migrations/0001_init.up.sql")
	if err != nil {
		t.Fatalf("read embedded migration: %v", err)
	}

	flat := strings.Join(strings.Fields(string(schema)), " ")
	_, attempts, found := strings.Cut(flat, "CREATE TABLE IF NOT EXISTS otp_attempts")
	if !found {
		t.Fatal("expected otp_attempts table in initial migration")
	}

	// The attempt audit trail belongs to a user and is queried per user by
	// outcome when counting failed verifications.
	if !strings.Contains(attempts, "user_id UUID NOT NULL REFERENCES users (id)") {
		t.Fatal("expected otp_attempts.user_id to reference users")
	}
	if !strings.Contains(attempts, "ON otp_attempts (user_id, success)") {
		t.Fatal("expected otp_attempts index on (user_id, success)")
	}
}

func TestEveryMigrationHasDown(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	for name := range names {
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
		if !names[down] {
			t.Fatalf("migration %s has no matching down migration", name)
		}
	}
}
