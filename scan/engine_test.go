package scan

import (
	"strings"
	"testing"

	"entrada/models"
	"entrada/tickets"
)

func visitor() *models.Attendee {
	privs := []string{"Lunch"}
	return &models.Attendee{
		AttendeeID: "r1",
		EventID:    "ev1",
		RoleName:   "Visitor",
		QRToken:    "abcd1234efgh5678",
		Privileges: privs,
		Claims:     models.NewClaims(privs),
	}
}

func TestEvaluateClaimScenario(t *testing.T) {
	// Visitor's role grants Lunch but not Gift.
	att := visitor()

	if err := EvaluateClaim(att, "Gift"); err != ErrNotGranted {
		t.Fatalf("claiming ungranted privilege: got %v, want ErrNotGranted", err)
	}

	if err := EvaluateClaim(att, "Lunch"); err != nil {
		t.Fatalf("first Lunch claim should be allowed, got %v", err)
	}

	att.Claims[models.PrivilegeKey("Lunch")] = true
	if err := EvaluateClaim(att, "Lunch"); err != ErrAlreadyClaimed {
		t.Fatalf("second Lunch claim: got %v, want ErrAlreadyClaimed", err)
	}

	// Grant check still wins over claim state.
	if err := EvaluateClaim(att, "Gift"); err != ErrNotGranted {
		t.Fatalf("ungranted privilege after claims: got %v, want ErrNotGranted", err)
	}
}

func TestEvaluateClaimEntry(t *testing.T) {
	att := visitor()

	// Entry is claimable for every attendee regardless of role.
	if err := EvaluateClaim(att, "Entry"); err != nil {
		t.Fatalf("entry should be claimable, got %v", err)
	}

	att.Entered = true
	if err := EvaluateClaim(att, "entry"); err != ErrAlreadyClaimed {
		t.Fatalf("re-entry: got %v, want ErrAlreadyClaimed", err)
	}
}

func TestAuthorizeScanScope(t *testing.T) {
	att := visitor() // event ev1, grants Lunch

	// A Lunch staffer for ev1 may verify and claim Lunch.
	if err := AuthorizeScan("ev1", "Lunch", att, ""); err != nil {
		t.Fatalf("verify within scope: %v", err)
	}
	if err := AuthorizeScan("ev1", "Lunch", att, "lunch"); err != nil {
		t.Fatalf("claim within scope: %v", err)
	}

	// Wrong event: rejected even for the right privilege.
	if err := AuthorizeScan("ev2", "Lunch", att, "Lunch"); err != ErrWrongEvent {
		t.Fatalf("cross-event claim: got %v, want ErrWrongEvent", err)
	}
	if err := AuthorizeScan("ev2", "Lunch", att, ""); err != ErrWrongEvent {
		t.Fatalf("cross-event verify: got %v, want ErrWrongEvent", err)
	}

	// Right event, privilege the token does not carry.
	if err := AuthorizeScan("ev1", "Lunch", att, "Gift"); err != ErrOutOfScope {
		t.Fatalf("out-of-scope claim: got %v, want ErrOutOfScope", err)
	}

	// Missing scope values never pass.
	if err := AuthorizeScan("", "", att, "Lunch"); err == nil {
		t.Fatal("empty token scope authorized a claim")
	}
}

func TestEntryPrivilegeStaysConsistentAfterEntry(t *testing.T) {
	// A role may list Entry among its privileges. Verify and claim must
	// then agree: once entered, Entry is neither claimable nor grantable
	// a second time.
	privs := []string{"Entry", "Lunch"}
	att := &models.Attendee{
		AttendeeID: "r2",
		EventID:    "ev1",
		RoleName:   "Visitor",
		QRToken:    "wxyz1234wxyz1234",
		Privileges: privs,
		Claims:     models.NewClaims(privs),
	}

	if err := EvaluateClaim(att, "Entry"); err != nil {
		t.Fatalf("first entry claim should be allowed, got %v", err)
	}
	att.Entered = true

	if err := EvaluateClaim(att, "Entry"); err != ErrAlreadyClaimed {
		t.Fatalf("re-entry: got %v, want ErrAlreadyClaimed", err)
	}

	view := BuildClaimableView(att)
	if view.CanEnter {
		t.Error("entered attendee reported as able to enter")
	}
	for _, p := range view.Privileges {
		if models.PrivilegeKey(p) == models.EntryKind {
			t.Fatalf("entry still reported claimable after entry: %v", view.Privileges)
		}
	}
	if len(view.Privileges) != 1 || view.Privileges[0] != "Lunch" {
		t.Fatalf("expected [Lunch] left, got %v", view.Privileges)
	}
}

func TestResolveCodeRawToken(t *testing.T) {
	token, err := ResolveCode("  ABCD1234efgh5678 ")
	if err != nil {
		t.Fatalf("ResolveCode: %v", err)
	}
	if token != "abcd1234efgh5678" {
		t.Fatalf("expected lowercased trimmed token, got %q", token)
	}

	if _, err := ResolveCode("   "); err != ErrNotFound {
		t.Fatalf("blank code: got %v, want ErrNotFound", err)
	}
}

func TestResolveCodeSignedPayload(t *testing.T) {
	payload := tickets.GenerateQRPayload("ev1", "r1", "abcd1234efgh5678")

	token, err := ResolveCode(payload)
	if err != nil {
		t.Fatalf("ResolveCode(signed): %v", err)
	}
	if token != "abcd1234efgh5678" {
		t.Fatalf("expected unwrapped token, got %q", token)
	}

	// A tampered payload must not resolve.
	tampered := strings.Replace(payload, "abcd", "zzzz", 1)
	if _, err := ResolveCode(tampered); err == nil {
		t.Fatal("tampered payload resolved")
	}
}

func TestBuildClaimableView(t *testing.T) {
	att := visitor()
	view := BuildClaimableView(att)
	if !view.CanEnter {
		t.Error("fresh attendee should be able to enter")
	}
	if len(view.Privileges) != 1 || view.Privileges[0] != "Lunch" {
		t.Fatalf("expected [Lunch], got %v", view.Privileges)
	}

	att.Entered = true
	att.Claims[models.PrivilegeKey("Lunch")] = true
	view = BuildClaimableView(att)
	if view.CanEnter || len(view.Privileges) != 0 {
		t.Fatalf("fully claimed attendee should have nothing left, got %+v", view)
	}
}
