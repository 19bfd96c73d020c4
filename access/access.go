package access

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"entrada/db"
	"entrada/globals"
	"entrada/mailer"
	"entrada/middleware"
	"entrada/models"
	"entrada/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const staffTokenTTL = 8 * time.Hour

// Handler carries the injected mail transport for access-grant
// endpoints.
type Handler struct {
	Mail *mailer.Mailer
}

func NewHandler(mail *mailer.Mailer) *Handler {
	return &Handler{Mail: mail}
}

// SkippedEntry reports one rejected entry of a bulk assignment.
type SkippedEntry struct {
	Email     string `json:"email"`
	Privilege string `json:"privilege"`
	Reason    string `json:"reason"`
}

// PartitionEntries splits a bulk assignment into committable entries
// and individually rejected ones. Valid entries still commit when
// others are skipped.
func PartitionEntries(entries []models.GrantEntry) (valid []models.GrantEntry, skipped []SkippedEntry) {
	for _, e := range entries {
		var missing []string
		if e.Email == "" {
			missing = append(missing, "email")
		}
		if e.Password == "" {
			missing = append(missing, "password")
		}
		if e.Expiry.IsZero() {
			missing = append(missing, "expiry")
		}
		if e.Privilege == "" {
			missing = append(missing, "privilege")
		}
		if len(missing) > 0 {
			skipped = append(skipped, SkippedEntry{
				Email:     e.Email,
				Privilege: e.Privilege,
				Reason:    "missing " + strings.Join(missing, ", "),
			})
			continue
		}
		e.Email = strings.ToLower(strings.TrimSpace(e.Email))
		valid = append(valid, e)
	}
	return valid, skipped
}

// EntryMatchers builds the element matchers selecting existing grant
// entries superseded by an incoming assignment, one per (email,
// privilege) pair. Emails are already lowercased by PartitionEntries;
// privilege names match case-insensitively.
func EntryMatchers(entries []models.GrantEntry) []bson.M {
	matchers := make([]bson.M, 0, len(entries))
	for _, e := range entries {
		matchers = append(matchers, bson.M{
			"email":     e.Email,
			"privilege": bson.M{"$regex": "^" + regexp.QuoteMeta(e.Privilege) + "$", "$options": "i"},
		})
	}
	return matchers
}

// Assign upserts staff credentials+privileges for one event. Partial
// success: invalid entries are reported as skipped while valid ones
// commit.
//
// Endpoint: POST /api/admin/manage-access
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	company, ok := r.Context().Value(globals.CompanyKey).(string)
	if !ok || company == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid admin context")
		return
	}

	var input struct {
		EventID string              `json:"eventId"`
		Entries []models.GrantEntry `json:"entries"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.EventID == "" || len(input.Entries) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "eventId and entries are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var event models.Event
	err := db.EventsCollection.FindOne(ctx, bson.M{"eventid": input.EventID, "company": company}).Decode(&event)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Event not found")
		return
	}

	valid, skipped := PartitionEntries(input.Entries)

	if len(valid) > 0 {
		filter := bson.M{"company": company, "eventid": input.EventID}

		// Pull the superseded (email, privilege) entries, then push the
		// new ones. Touching only matched array elements keeps concurrent
		// assignments and sweeper pulls intact instead of overwriting the
		// whole document.
		_, err = db.AccessGrantsCollection.UpdateOne(ctx, filter,
			bson.M{"$pull": bson.M{"entries": bson.M{"$or": EntryMatchers(valid)}}},
		)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save access grants")
			return
		}

		_, err = db.AccessGrantsCollection.UpdateOne(ctx, filter,
			bson.M{
				"$push": bson.M{"entries": bson.M{"$each": valid}},
				"$set":  bson.M{"updated_at": time.Now().UTC()},
			},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save access grants")
			return
		}

		// Best-effort notification per assigned entry.
		for _, e := range valid {
			body := fmt.Sprintf("You have been assigned the %q privilege for %s (%s).\n\n"+
				"Login email: %s\nValid until: %s",
				e.Privilege, event.Name, company, e.Email, e.Expiry.Format(time.RFC1123))
			if err := h.Mail.Send(e.Email, "Event access assigned: "+event.Name, body); err != nil {
				log.Printf("access: notification email to %s failed: %v", e.Email, err)
			}
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"assigned": len(valid),
		"skipped":  skipped,
	})
}

// StaffLogin authenticates a staff credential against one event's
// access grant and issues a token scoped to that event and privilege.
//
// Endpoint: POST /api/privilege/login
func (h *Handler) StaffLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		EventID   string `json:"eventId"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Privilege string `json:"privilege"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.EventID == "" || input.Email == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "eventId, email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var grant models.AccessGrant
	err := db.AccessGrantsCollection.FindOne(ctx, bson.M{"eventid": input.EventID}).Decode(&grant)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	entry := findEntry(grant.Entries, input.Email, input.Password, input.Privilege)
	if entry == nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if time.Now().After(entry.Expiry) {
		utils.RespondWithError(w, http.StatusForbidden, "Credential expired")
		return
	}

	claims := middleware.StaffClaims{
		Email:     entry.Email,
		EventID:   input.EventID,
		Privilege: entry.Privilege,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   entry.Email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(staffTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.SendResponse(w, http.StatusOK, map[string]string{
		"token":     token,
		"eventid":   input.EventID,
		"privilege": entry.Privilege,
	}, "Login successful", nil)
}

// findEntry picks the grant entry matching the presented credentials.
// An email can hold several privileges under different passwords; the
// optional privilege narrows the match when it shares one.
func findEntry(entries []models.GrantEntry, email, password, privilege string) *models.GrantEntry {
	for i := range entries {
		e := &entries[i]
		if !strings.EqualFold(e.Email, email) || e.Password != password {
			continue
		}
		if privilege != "" && models.PrivilegeKey(e.Privilege) != models.PrivilegeKey(privilege) {
			continue
		}
		return e
	}
	return nil
}
