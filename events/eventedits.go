package events

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"entrada/db"
	"entrada/globals"
	"entrada/models"
	"entrada/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UpdateEvent edits event attributes and roles. Role edits never touch
// already-registered attendees: their privileges are a frozen snapshot.
//
// Endpoint: PUT /api/events/:eventid
func UpdateEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")

	company, ok := r.Context().Value(globals.CompanyKey).(string)
	if !ok || company == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid admin context")
		return
	}

	var input models.Event
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var existing models.Event
	err := db.EventsCollection.FindOne(ctx, bson.M{"eventid": eventID, "company": company}).Decode(&existing)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Event not found")
		return
	}

	update := bson.M{"updated_at": time.Now().UTC()}

	if input.Name != "" && input.Name != existing.Name {
		newKey := NameKey(company, input.Name)
		if newKey != existing.NameKey {
			err := db.EventsCollection.FindOne(ctx, bson.M{"namekey": newKey}).Err()
			if err == nil {
				utils.RespondWithError(w, http.StatusConflict, "An event with this name already exists for your company")
				return
			} else if err != mongo.ErrNoDocuments {
				utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
				return
			}
		}
		update["name"] = input.Name
		update["namekey"] = newKey
	}

	if input.Venue != "" {
		update["venue"] = input.Venue
	}
	if input.Time != "" {
		update["time"] = input.Time
	}
	if !input.StartDate.IsZero() {
		update["startdate"] = input.StartDate.UTC()
	}
	if !input.EndDate.IsZero() {
		update["enddate"] = input.EndDate.UTC()
	}
	update["regclosed"] = input.RegClosed

	if input.Roles != nil {
		if problems := ValidateRoles(input.Roles); len(problems) > 0 {
			utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"errors": problems})
			return
		}
		update["roles"] = input.Roles
	}

	_, err = db.EventsCollection.UpdateOne(ctx,
		bson.M{"eventid": eventID, "company": company},
		bson.M{"$set": update},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update event")
		return
	}

	utils.SendResponse(w, http.StatusOK, nil, "Event updated", nil)
}

// SaveRegistrationFields replaces the dynamic attendee form schema for
// an event.
//
// Endpoint: POST /api/events/:eventid/fields
func SaveRegistrationFields(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")

	company, ok := r.Context().Value(globals.CompanyKey).(string)
	if !ok || company == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid admin context")
		return
	}

	var input struct {
		Fields []models.FieldDef `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if problems := ValidateFieldDefs(input.Fields); len(problems) > 0 {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"errors": problems})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.EventsCollection.UpdateOne(ctx,
		bson.M{"eventid": eventID, "company": company},
		bson.M{"$set": bson.M{"regfields": input.Fields, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save fields")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Event not found")
		return
	}

	utils.SendResponse(w, http.StatusOK, nil, "Registration fields saved", nil)
}
