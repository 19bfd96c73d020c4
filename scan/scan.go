package scan

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"entrada/db"
	"entrada/globals"
	"entrada/models"
	"entrada/mq"
	"entrada/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Verify resolves a scanned code to its attendee and reports which
// privileges are still claimable. Read-only.
//
// Endpoint: POST /api/scan/verify
func Verify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	token, err := ResolveCode(input.Code)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Unknown or invalid code")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	attendee, err := findByToken(ctx, token)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Unknown or invalid code")
		return
	}

	tokenEventID, tokenPrivilege := staffScope(r)
	if err := AuthorizeScan(tokenEventID, tokenPrivilege, attendee, ""); err != nil {
		utils.RespondWithError(w, http.StatusForbidden, "Ticket belongs to a different event")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"attendee":  attendee,
		"claimable": BuildClaimableView(attendee),
	})
}

// Claim flips one claim flag, exactly once. The persisted update is
// conditional on the flag still being false, so two near-simultaneous
// claims of the same privilege produce one success and one conflict,
// never a double redemption.
//
// Endpoint: POST /api/scan/claim
func Claim(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Code string `json:"code"`
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Kind == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "kind is required")
		return
	}

	token, err := ResolveCode(input.Code)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Unknown or invalid code")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	attendee, err := findByToken(ctx, token)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Unknown or invalid code")
		return
	}

	// The token scopes the staffer to one event and one privilege.
	tokenEventID, tokenPrivilege := staffScope(r)
	switch err := AuthorizeScan(tokenEventID, tokenPrivilege, attendee, input.Kind); err {
	case nil:
	case ErrWrongEvent:
		utils.RespondWithError(w, http.StatusForbidden, "Ticket belongs to a different event")
		return
	default:
		utils.RespondWithError(w, http.StatusForbidden, "Token does not cover this privilege")
		return
	}

	switch err := EvaluateClaim(attendee, input.Kind); err {
	case nil:
	case ErrNotGranted:
		utils.RespondWithError(w, http.StatusForbidden, "Role does not grant this privilege")
		return
	case ErrAlreadyClaimed:
		utils.RespondWithError(w, http.StatusConflict, "Already claimed")
		return
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Claim evaluation failed")
		return
	}

	now := time.Now().UTC()
	kind := models.PrivilegeKey(input.Kind)

	// Conditional update: matches only while the flag is still false.
	var filter, update bson.M
	if kind == models.EntryKind {
		filter = bson.M{"qrtoken": attendee.QRToken, "entered": false}
		update = bson.M{"$set": bson.M{"entered": true, "enteredat": now}}
	} else {
		filter = bson.M{"qrtoken": attendee.QRToken, "claims." + kind: false}
		update = bson.M{"$set": bson.M{"claims." + kind: true}}
	}

	res, err := db.AttendeesCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record claim")
		return
	}
	if res.ModifiedCount == 0 {
		// Lost the race to a concurrent scan of the same code.
		utils.RespondWithError(w, http.StatusConflict, "Already claimed")
		return
	}

	mq.EmitClaim(ctx, models.ClaimEvent{
		EventID:    attendee.EventID,
		AttendeeID: attendee.AttendeeID,
		RoleName:   attendee.RoleName,
		Privilege:  kind,
		At:         now,
	})

	utils.SendResponse(w, http.StatusOK, utils.M{
		"attendeeid": attendee.AttendeeID,
		"kind":       kind,
	}, "Claimed", nil)
}

// staffScope reads the event id and privilege AuthenticateStaff stored
// on the request context.
func staffScope(r *http.Request) (eventID, privilege string) {
	eventID, _ = r.Context().Value(globals.EventIDKey).(string)
	privilege, _ = r.Context().Value(globals.PrivilegeKey).(string)
	return eventID, privilege
}

// findByToken matches the QR token exactly. Tokens are generated
// lowercase and ResolveCode lowercases scanned input, which makes the
// overall match case-insensitive while keeping the unique index usable.
func findByToken(ctx context.Context, token string) (*models.Attendee, error) {
	var attendee models.Attendee
	err := db.AttendeesCollection.FindOne(ctx, bson.M{"qrtoken": token}).Decode(&attendee)
	if err != nil {
		return nil, err
	}
	return &attendee, nil
}
