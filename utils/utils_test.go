package utils

import (
	"testing"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"TechConf":        "techconf",
		"  Tech   Conf  ": "tech conf",
		"tech conf":       "tech conf",
		"TECH\tCONF":      "tech conf",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerateID(t *testing.T) {
	id := GenerateID(16)
	if len(id) != 16 {
		t.Fatalf("expected 16 chars, got %d", len(id))
	}
	for _, r := range id {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			t.Fatalf("unexpected character %q in id %q", r, id)
		}
	}

	if GenerateID(16) == GenerateID(16) {
		t.Error("two generated ids should not collide")
	}
}

func TestContainsFold(t *testing.T) {
	opts := []string{"Speaker", "Visitor"}
	if !ContainsFold(opts, "visitor") {
		t.Error("ContainsFold should match case-insensitively")
	}
	if ContainsFold(opts, "staff") {
		t.Error("ContainsFold matched a missing value")
	}
}
