package access

import (
	"testing"
	"time"

	"entrada/models"

	"go.mongodb.org/mongo-driver/bson"
)

func TestPartitionEntriesPartialSuccess(t *testing.T) {
	expiry := time.Now().Add(48 * time.Hour)
	entries := []models.GrantEntry{
		{Privilege: "Lunch", Email: "a@example.com", Password: "pw1", Expiry: expiry},
		{Privilege: "Entry", Email: "b@example.com", Expiry: expiry}, // missing password
		{Privilege: "Gift", Email: "C@Example.com", Password: "pw3", Expiry: expiry},
	}

	valid, skipped := PartitionEntries(entries)
	if len(valid) != 2 {
		t.Fatalf("expected 2 valid entries, got %d", len(valid))
	}
	if len(skipped) != 1 {
		t.Fatalf("expected 1 skipped entry, got %d", len(skipped))
	}
	if skipped[0].Email != "b@example.com" || skipped[0].Reason != "missing password" {
		t.Fatalf("unexpected skip record: %+v", skipped[0])
	}
	// emails are normalized on the way in
	if valid[1].Email != "c@example.com" {
		t.Fatalf("expected normalized email, got %q", valid[1].Email)
	}
}

func TestEntryMatchersSupersedePairs(t *testing.T) {
	entries := []models.GrantEntry{
		{Privilege: "Lunch", Email: "a@example.com"},
		{Privilege: "Gift", Email: "b@example.com"},
	}

	matchers := EntryMatchers(entries)
	if len(matchers) != 2 {
		t.Fatalf("expected one matcher per entry, got %d", len(matchers))
	}
	if matchers[0]["email"] != "a@example.com" {
		t.Fatalf("unexpected email matcher: %+v", matchers[0])
	}

	// Privilege names match case-insensitively, anchored and escaped.
	rx, ok := matchers[0]["privilege"].(bson.M)
	if !ok {
		t.Fatalf("expected a regex matcher for privilege, got %+v", matchers[0]["privilege"])
	}
	if rx["$regex"] != "^Lunch$" || rx["$options"] != "i" {
		t.Fatalf("unexpected privilege matcher: %+v", rx)
	}
}

func TestFindEntryMatchesCredentials(t *testing.T) {
	entries := []models.GrantEntry{
		{Privilege: "Lunch", Email: "staff@example.com", Password: "pw-lunch"},
		{Privilege: "Gift", Email: "staff@example.com", Password: "pw-gift"},
	}

	// The same email holds two privileges; the password selects one.
	e := findEntry(entries, "STAFF@example.com", "pw-gift", "")
	if e == nil || e.Privilege != "Gift" {
		t.Fatalf("expected the Gift entry, got %+v", e)
	}

	// An explicit privilege narrows the match too.
	e = findEntry(entries, "staff@example.com", "pw-lunch", "lunch")
	if e == nil || e.Privilege != "Lunch" {
		t.Fatalf("expected the Lunch entry, got %+v", e)
	}

	if findEntry(entries, "staff@example.com", "wrong", "") != nil {
		t.Fatal("wrong password matched an entry")
	}
	if findEntry(entries, "staff@example.com", "pw-lunch", "Gift") != nil {
		t.Fatal("privilege filter must exclude a mismatched entry")
	}
	if findEntry(entries, "other@example.com", "pw-lunch", "") != nil {
		t.Fatal("lookup matched a missing email")
	}
}
