package models

import (
	"strings"
)

// EntryKind is the claim kind gating physical entry. It is tracked on
// its own flag, separate from role-granted privileges.
const EntryKind = "entry"

// PrivilegeKey normalizes a free-form privilege name into the map key
// used for claim flags: lowercased, whitespace collapsed to single
// underscores. "Lunch" and " lunch " share one flag.
func PrivilegeKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// NewClaims builds the initial all-false claim set for a privilege
// snapshot. Entry never gets a claim flag: roles that list it are
// still tracked through the Entered flag, so seeding a claims.entry
// key would leave a flag no claim ever flips.
func NewClaims(privileges []string) map[string]bool {
	claims := make(map[string]bool, len(privileges))
	for _, p := range privileges {
		if key := PrivilegeKey(p); key != EntryKind {
			claims[key] = false
		}
	}
	return claims
}

// Grants reports whether the attendee's frozen privilege snapshot
// includes the named privilege.
func (a *Attendee) Grants(privilege string) bool {
	key := PrivilegeKey(privilege)
	for _, p := range a.Privileges {
		if PrivilegeKey(p) == key {
			return true
		}
	}
	return false
}

// Claimable returns the privileges the attendee can still redeem:
// granted by the snapshot and not yet claimed. Entry is reported
// separately via the Entered flag, even when a role names it as a
// privilege.
func (a *Attendee) Claimable() []string {
	var out []string
	for _, p := range a.Privileges {
		key := PrivilegeKey(p)
		if key == EntryKind {
			continue
		}
		if !a.Claims[key] {
			out = append(out, p)
		}
	}
	return out
}
