package events

import (
	"strings"
	"testing"

	"entrada/models"
)

func TestNameKeyNormalization(t *testing.T) {
	if NameKey("Acme  Corp", "Tech Conf") != NameKey("acme corp", "  TECH   CONF ") {
		t.Fatal("name keys should match after case/space normalization")
	}
	if NameKey("Acme", "Tech Conf") == NameKey("Acme", "Other Conf") {
		t.Fatal("different event names must not collide")
	}
}

func TestValidateRolesAllViolations(t *testing.T) {
	roles := []models.Role{
		{Name: "Speaker", Privileges: []string{"Lunch"}, Price: 0, MaxCount: 10},
		{Name: "Visitor", Privileges: nil, Price: -5, MaxCount: 0},
		{Name: "visitor", Privileges: []string{"Lunch"}, Price: 0, MaxCount: 5},
	}

	problems := ValidateRoles(roles)
	joined := strings.Join(problems, "; ")
	for _, want := range []string{"privilege", "price", "max registrations", "duplicate"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected a %q violation in %v", want, problems)
		}
	}

	if got := ValidateRoles(nil); len(got) != 1 {
		t.Fatalf("empty role list should be a single violation, got %v", got)
	}
}

func TestValidateFieldDefs(t *testing.T) {
	fields := []models.FieldDef{
		{Name: "email", Type: "email", Required: true},
		{Name: "meal", Type: "select"}, // no options
		{Name: "x", Type: "magic"},
	}
	problems := ValidateFieldDefs(fields)
	if len(problems) != 2 {
		t.Fatalf("expected 2 problems, got %v", problems)
	}
}

func TestFindRoleCaseInsensitive(t *testing.T) {
	event := models.Event{Roles: []models.Role{
		{Name: "Speaker", Privileges: []string{"Lunch", "Gift"}},
		{Name: "Visitor", Privileges: []string{"Lunch"}},
	}}

	if FindRole(&event, " speaker ") == nil {
		t.Fatal("role lookup should normalize names")
	}
	if FindRole(&event, "Staff") != nil {
		t.Fatal("lookup matched a missing role")
	}
}
