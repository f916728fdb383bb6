package excel

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/coachmail/internal/database"
)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()
	store, err := database.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "enrollments.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("failed to write CSV: %v", err)
	}
	return path
}

// TestImportRecipientsFromCSV covers enrollment, the invalid-email skip
// and the unknown-timezone fallback in one pass.
func TestImportRecipientsFromCSV(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cfg := DefaultImportConfig()
	cfg.FilePath = writeCSV(t,
		"email,timezone,goals",
		"Alice@Example.com,America/New_York,Run a marathon",
		"not-an-email,UTC,whatever",
		"bob@example.com,Not/AZone,Ship the project",
	)

	result, err := ImportRecipients(ctx, store, cfg)
	if err != nil {
		t.Fatalf("ImportRecipients returned error: %v", err)
	}
	if result.TotalProcessed != 3 || result.Created != 2 || result.Updated != 0 || result.Skipped != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "row 3") {
		t.Fatalf("expected one error naming file row 3, got %v", result.Errors)
	}

	// Emails are normalized to lower case at enrollment
	alice, err := store.FindRecipientByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("find alice: %v", err)
	}
	if alice == nil || alice.Timezone != "America/New_York" {
		t.Fatalf("unexpected alice enrollment: %+v", alice)
	}
	if alice.CurrentWeek != 0 || !alice.Active {
		t.Fatalf("expected fresh week-0 active enrollment, got %+v", alice)
	}

	// Unknown zones enroll with UTC rather than failing the row
	bob, err := store.FindRecipientByEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("find bob: %v", err)
	}
	if bob == nil || bob.Timezone != "UTC" {
		t.Fatalf("expected UTC fallback for bob, got %+v", bob)
	}
}

// TestImportRecipientsIsIdempotent ensures a second import of the same
// emails updates enrollments instead of creating duplicates.
func TestImportRecipientsIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cfg := DefaultImportConfig()
	cfg.FilePath = writeCSV(t,
		"email,timezone,goals",
		"alice@example.com,America/New_York,Run a marathon",
		"bob@example.com,Europe/Berlin,Ship the project",
	)
	if _, err := ImportRecipients(ctx, store, cfg); err != nil {
		t.Fatalf("first import: %v", err)
	}

	cfg.FilePath = writeCSV(t,
		"email,timezone,goals",
		"alice@example.com,America/New_York,Run an ultramarathon",
		"bob@example.com,Europe/Berlin,Ship the project",
	)
	result, err := ImportRecipients(ctx, store, cfg)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if result.Created != 0 || result.Updated != 2 || result.Skipped != 0 {
		t.Fatalf("expected updates only on re-import, got %+v", result)
	}

	// Exactly one row per email
	recipients, err := store.GetActiveRecipients(ctx)
	if err != nil {
		t.Fatalf("get active recipients: %v", err)
	}
	if len(recipients) != 2 {
		t.Fatalf("expected 2 recipients after re-import, got %d", len(recipients))
	}

	alice, err := store.FindRecipientByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("find alice: %v", err)
	}
	if alice.GoalsText != "Run an ultramarathon" {
		t.Fatalf("expected goals refreshed, got %q", alice.GoalsText)
	}
}
