package events

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"entrada/db"
	"entrada/globals"
	"entrada/models"
	"entrada/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetEvent returns one event by id.
//
// Endpoint: GET /api/events/:eventid
func GetEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var event models.Event
	err := db.EventsCollection.FindOne(ctx, bson.M{"eventid": eventID}).Decode(&event)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Event not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, event)
}

// GetEvents lists the requesting company's events, newest first.
//
// Endpoint: GET /api/events?page=&limit=
func GetEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	company, ok := r.Context().Value(globals.CompanyKey).(string)
	if !ok || company == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid admin context")
		return
	}

	page := 1
	limit := 10
	if v := r.URL.Query().Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	skip := int64((page - 1) * limit)
	int64Limit := int64(limit)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := db.EventsCollection.Find(ctx, bson.M{"company": company}, &options.FindOptions{
		Skip:  &skip,
		Limit: &int64Limit,
		Sort:  bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	events := []models.Event{}
	if err = cursor.All(ctx, &events); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode events")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, events)
}
