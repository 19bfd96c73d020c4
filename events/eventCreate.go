package events

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"entrada/db"
	"entrada/globals"
	"entrada/models"
	"entrada/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var posterUploadPath = "./static/eventpic"

// CreateEvent creates an event with its roles. Multipart form: "event"
// holds the JSON document, "poster" an optional image.
//
// Endpoint: POST /api/events/create-event
func CreateEvent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unable to parse form")
		return
	}

	if r.FormValue("event") == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing event data")
		return
	}

	var event models.Event
	if err := json.Unmarshal([]byte(r.FormValue("event")), &event); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	company, ok := r.Context().Value(globals.CompanyKey).(string)
	if !ok || company == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid admin context")
		return
	}
	adminID, _ := r.Context().Value(globals.AdminIDKey).(string)

	if event.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Event name is required")
		return
	}
	if problems := ValidateRoles(event.Roles); len(problems) > 0 {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"errors": problems})
		return
	}
	if problems := ValidateFieldDefs(event.RegFields); len(problems) > 0 {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"errors": problems})
		return
	}

	event.EventID = utils.GenerateID(14)
	event.Company = company
	event.NameKey = NameKey(company, event.Name)
	event.CreatedBy = adminID
	event.CreatedAt = time.Now().UTC()
	event.StartDate = event.StartDate.UTC()
	event.EndDate = event.EndDate.UTC()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// (company, event name) must be unique after normalization
	err := db.EventsCollection.FindOne(ctx, bson.M{"namekey": event.NameKey}).Err()
	if err == nil {
		utils.RespondWithError(w, http.StatusConflict, "An event with this name already exists for your company")
		return
	} else if err != mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Optional poster upload
	posterFile, posterHeader, err := r.FormFile("poster")
	if err != nil && err != http.ErrMissingFile {
		utils.RespondWithError(w, http.StatusBadRequest, "Error retrieving poster file")
		return
	}
	if posterFile != nil {
		defer posterFile.Close()

		if !utils.ValidateImageFileType(w, posterHeader) {
			return
		}
		filename, err := utils.SaveFile(posterFile, posterHeader, posterUploadPath)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Error saving poster")
			return
		}
		event.PosterImage = filename

		if _, err := utils.CreateThumb(filepath.Join(posterUploadPath, filename), 300); err != nil {
			log.Printf("events: poster thumbnail failed: %v", err)
		}
	}

	if _, err := db.EventsCollection.InsertOne(ctx, event); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "An event with this name already exists for your company")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	utils.SendResponse(w, http.StatusCreated, event, "Event created", nil)
}
