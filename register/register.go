package register

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"entrada/db"
	"entrada/events"
	"entrada/mailer"
	"entrada/models"
	"entrada/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicate means an attendee with this (email, eventId) pair
// already exists.
var ErrDuplicate = errors.New("attendee already registered for this event")

// ErrRoleFull means the role's advisory capacity is exhausted.
var ErrRoleFull = errors.New("role has no remaining capacity")

// Handler carries the injected mail transport for registration
// endpoints.
type Handler struct {
	Mail *mailer.Mailer
}

func NewHandler(mail *mailer.Mailer) *Handler {
	return &Handler{Mail: mail}
}

// RegisterAttendee registers an attendee for a free role. Paid roles
// go through the payment bridge, which calls CreateAttendee after the
// provider confirms.
//
// Endpoint: POST /api/users/register
func (h *Handler) RegisterAttendee(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		EventID string            `json:"eventId"`
		Email   string            `json:"email"`
		Role    string            `json:"role"`
		Answers map[string]string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.EventID == "" || input.Email == "" || input.Role == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "eventId, email and role are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var event models.Event
	err := db.EventsCollection.FindOne(ctx, bson.M{"eventid": input.EventID}).Decode(&event)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Event not found")
		return
	}
	if event.RegClosed {
		utils.RespondWithError(w, http.StatusForbidden, "Registration is closed for this event")
		return
	}

	role := events.FindRole(&event, input.Role)
	if role == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown role for this event")
		return
	}
	if role.Price > 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "This role requires payment; use the payment endpoint")
		return
	}

	if problems := ValidateSubmission(event.RegFields, input.Answers); len(problems) > 0 {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"errors": problems})
		return
	}

	attendee, err := CreateAttendee(ctx, &event, role, input.Email, input.Answers, "", "free")
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicate):
			utils.RespondWithError(w, http.StatusConflict, "Already registered for this event")
		case errors.Is(err, ErrRoleFull):
			utils.RespondWithError(w, http.StatusConflict, "No remaining capacity for this role")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register")
		}
		return
	}

	// Best-effort: email failure must not fail the registration.
	if err := h.SendTicketEmail(&event, attendee); err != nil {
		log.Printf("register: confirmation email to %s failed: %v", attendee.Email, err)
	}

	utils.SendResponse(w, http.StatusCreated, attendee, "Registered", nil)
}

// CreateAttendee persists the attendee snapshot: privileges copied
// verbatim from the role at this instant, claim flags initialized
// false, fresh opaque QR token. Shared by the free path and the
// payment webhook.
func CreateAttendee(ctx context.Context, event *models.Event, role *models.Role, email string, answers map[string]string, txnID, payStatus string) (*models.Attendee, error) {
	// Advisory capacity check; the unique (email, eventid) index is the
	// only hard constraint.
	count, err := db.AttendeesCollection.CountDocuments(ctx, bson.M{
		"eventid":  event.EventID,
		"rolename": role.Name,
	})
	if err != nil {
		return nil, err
	}
	if count >= int64(role.MaxCount) {
		return nil, ErrRoleFull
	}

	privileges := SnapshotPrivileges(role)

	if answers == nil {
		answers = map[string]string{}
	}

	attendee := &models.Attendee{
		AttendeeID:    "r" + utils.GenerateID(13),
		EventID:       event.EventID,
		Company:       event.Company,
		Email:         email,
		RoleName:      role.Name,
		Privileges:    privileges,
		Answers:       answers,
		QRToken:       utils.GenerateID(16),
		TransactionID: txnID,
		PaymentStatus: payStatus,
		Entered:       false,
		Claims:        models.NewClaims(privileges),
		CreatedAt:     time.Now().UTC(),
	}

	if _, err := db.AttendeesCollection.InsertOne(ctx, attendee); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return attendee, nil
}

// SnapshotPrivileges copies the role's privilege list so that later
// role edits never reach already-registered attendees.
func SnapshotPrivileges(role *models.Role) []string {
	privileges := make([]string, len(role.Privileges))
	copy(privileges, role.Privileges)
	return privileges
}

// FindByEmailAndEvent looks up an existing registration, used by the
// payment webhook for idempotency.
func FindByEmailAndEvent(ctx context.Context, email, eventID string) (*models.Attendee, error) {
	var attendee models.Attendee
	err := db.AttendeesCollection.FindOne(ctx, bson.M{
		"email":   email,
		"eventid": eventID,
	}).Decode(&attendee)
	if err != nil {
		return nil, err
	}
	return &attendee, nil
}

// SendTicketEmail mails the attendee their QR code.
func (h *Handler) SendTicketEmail(event *models.Event, attendee *models.Attendee) error {
	qrPNG, err := qrcode.Encode(attendee.QRToken, qrcode.Medium, 256)
	if err != nil {
		return err
	}

	body := "You are registered for " + event.Name + " (" + event.Company + ").\n\n" +
		"Role: " + attendee.RoleName + "\n" +
		"Code: " + attendee.QRToken + "\n\n" +
		"Show the attached QR code at the venue."
	return h.Mail.SendWithAttachment(attendee.Email, "Your ticket for "+event.Name, body, "ticket.png", qrPNG)
}
