package register

import (
	"context"
	"net/http"
	"time"

	"entrada/db"
	"entrada/globals"
	"entrada/models"
	"entrada/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// ListAttendees returns the attendee roster for one of the admin's
// events, including claim state for the dashboard.
//
// Endpoint: GET /api/admin/users?eventId=
func ListAttendees(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	company, ok := r.Context().Value(globals.CompanyKey).(string)
	if !ok || company == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid admin context")
		return
	}

	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "eventId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := db.AttendeesCollection.Find(ctx, bson.M{
		"eventid": eventID,
		"company": company,
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	attendees := []models.Attendee{}
	if err := cursor.All(ctx, &attendees); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode attendees")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, attendees)
}

// ClaimSummary aggregates entered/claimed counts per role for the
// admin dashboard.
//
// Endpoint: GET /api/admin/claim-summary?eventId=
func ClaimSummary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	company, ok := r.Context().Value(globals.CompanyKey).(string)
	if !ok || company == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid admin context")
		return
	}

	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "eventId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := db.AttendeesCollection.Find(ctx, bson.M{
		"eventid": eventID,
		"company": company,
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	var attendees []models.Attendee
	if err := cursor.All(ctx, &attendees); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode attendees")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, Summarize(attendees))
}

// RoleSummary is the per-role rollup of registration and claim state.
type RoleSummary struct {
	Role       string         `json:"role"`
	Registered int            `json:"registered"`
	Entered    int            `json:"entered"`
	Claimed    map[string]int `json:"claimed"`
}

// Summarize rolls attendee claim state up per role.
func Summarize(attendees []models.Attendee) []RoleSummary {
	byRole := make(map[string]*RoleSummary)
	var order []string

	for _, a := range attendees {
		s, ok := byRole[a.RoleName]
		if !ok {
			s = &RoleSummary{Role: a.RoleName, Claimed: make(map[string]int)}
			byRole[a.RoleName] = s
			order = append(order, a.RoleName)
		}
		s.Registered++
		if a.Entered {
			s.Entered++
		}
		for key, claimed := range a.Claims {
			if claimed {
				s.Claimed[key]++
			}
		}
	}

	out := make([]RoleSummary, 0, len(order))
	for _, name := range order {
		out = append(out, *byRole[name])
	}
	return out
}
