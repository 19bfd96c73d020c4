package models

import (
	"testing"
)

func TestPrivilegeKey(t *testing.T) {
	cases := map[string]string{
		"Lunch":        "lunch",
		" lunch ":      "lunch",
		"VIP  Dinner":  "vip_dinner",
		"Entry":        "entry",
		"GIFT\tBag":    "gift_bag",
	}
	for in, want := range cases {
		if got := PrivilegeKey(in); got != want {
			t.Errorf("PrivilegeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewClaimsAllFalse(t *testing.T) {
	claims := NewClaims([]string{"Lunch", "Gift"})
	if len(claims) != 2 {
		t.Fatalf("expected 2 claim flags, got %d", len(claims))
	}
	for key, claimed := range claims {
		if claimed {
			t.Errorf("claim %q initialized true", key)
		}
	}
}

func TestNewClaimsSkipsEntry(t *testing.T) {
	claims := NewClaims([]string{"Entry", "Lunch", "Gift"})
	if _, ok := claims[EntryKind]; ok {
		t.Error("entry must not get a claim flag; it is tracked on Entered")
	}
	if len(claims) != 2 {
		t.Fatalf("expected 2 claim flags, got %v", claims)
	}
}

func TestClaimableSkipsEntry(t *testing.T) {
	privs := []string{"Entry", "Lunch"}
	att := Attendee{
		RoleName:   "Visitor",
		Privileges: privs,
		Claims:     NewClaims(privs),
	}

	// Entry stays out of the claimable list before and after entering.
	for _, entered := range []bool{false, true} {
		att.Entered = entered
		for _, p := range att.Claimable() {
			if PrivilegeKey(p) == EntryKind {
				t.Fatalf("entry listed as claimable (entered=%v)", entered)
			}
		}
	}
	if got := att.Claimable(); len(got) != 1 || got[0] != "Lunch" {
		t.Fatalf("expected [Lunch] claimable, got %v", got)
	}
}

func TestGrantsAndClaimable(t *testing.T) {
	visitor := Attendee{
		RoleName:   "Visitor",
		Privileges: []string{"Lunch"},
		Claims:     NewClaims([]string{"Lunch"}),
	}

	if !visitor.Grants("Lunch") {
		t.Error("Visitor should grant Lunch")
	}
	if !visitor.Grants(" lunch ") {
		t.Error("grant check should be case/space-insensitive")
	}
	if visitor.Grants("Gift") {
		t.Error("Visitor should not grant Gift")
	}

	claimable := visitor.Claimable()
	if len(claimable) != 1 || claimable[0] != "Lunch" {
		t.Fatalf("expected [Lunch] claimable, got %v", claimable)
	}

	visitor.Claims[PrivilegeKey("Lunch")] = true
	if got := visitor.Claimable(); len(got) != 0 {
		t.Fatalf("expected nothing claimable after claim, got %v", got)
	}
	// the flag stays granted even when fully claimed
	if !visitor.Grants("Lunch") {
		t.Error("claiming must not revoke the grant")
	}
}
