package scan

import (
	"errors"
	"strings"

	"entrada/models"
	"entrada/tickets"
)

var (
	ErrNotFound       = errors.New("unknown code")
	ErrAlreadyClaimed = errors.New("already claimed")
	ErrNotGranted     = errors.New("role does not grant this privilege")
	ErrWrongEvent     = errors.New("ticket belongs to a different event")
	ErrOutOfScope     = errors.New("token does not cover this privilege")
)

// AuthorizeScan checks a staff token's scope against the resolved
// attendee: the ticket must belong to the token's event, and a claim
// must match the token's privilege. An empty kind skips the privilege
// check (verify is read-only). Missing scope values never pass.
func AuthorizeScan(tokenEventID, tokenPrivilege string, attendee *models.Attendee, kind string) error {
	if tokenEventID != attendee.EventID {
		return ErrWrongEvent
	}
	if kind == "" {
		return nil
	}
	if models.PrivilegeKey(tokenPrivilege) != models.PrivilegeKey(kind) {
		return ErrOutOfScope
	}
	return nil
}

// ResolveCode extracts the opaque QR token from a scanned code. Signed
// payloads (the PDF ticket format) are verified and unwrapped; anything
// else is treated as a raw token. Matching is case-insensitive.
func ResolveCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrNotFound
	}
	if strings.Contains(code, "|") {
		_, _, token, err := tickets.VerifyTicketQR(code)
		if err != nil {
			return "", err
		}
		return strings.ToLower(token), nil
	}
	return strings.ToLower(code), nil
}

// EvaluateClaim decides whether a claim may proceed, without mutating
// anything. Grant is checked before claim state, so a privilege the
// role never granted is always forbidden regardless of flags.
func EvaluateClaim(attendee *models.Attendee, kind string) error {
	if models.PrivilegeKey(kind) == models.EntryKind {
		if attendee.Entered {
			return ErrAlreadyClaimed
		}
		return nil
	}
	if !attendee.Grants(kind) {
		return ErrNotGranted
	}
	if attendee.Claims[models.PrivilegeKey(kind)] {
		return ErrAlreadyClaimed
	}
	return nil
}

// ClaimableView is what verify returns alongside the attendee: which
// privileges remain redeemable right now.
type ClaimableView struct {
	CanEnter   bool     `json:"canEnter"`
	Privileges []string `json:"privileges"`
}

func BuildClaimableView(attendee *models.Attendee) ClaimableView {
	return ClaimableView{
		CanEnter:   !attendee.Entered,
		Privileges: attendee.Claimable(),
	}
}
