package phonepe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"entrada/db"
	"entrada/events"
	"entrada/mailer"
	"entrada/models"
	"entrada/register"
	"entrada/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Bridge wires the provider client to registration. Constructed in
// main with its own HTTP client and mail transport.
type Bridge struct {
	Config Config
	Client *http.Client
	Reg    *register.Handler
}

func NewBridge(cfg Config, mail *mailer.Mailer) *Bridge {
	return &Bridge{
		Config: cfg,
		Client: NewHTTPClient(),
		Reg:    register.NewHandler(mail),
	}
}

// InitiatePayment starts an external payment for a paid role. The
// registration form answers are parked on a pending-payment document
// until the provider confirms.
//
// Endpoint: POST /api/phonepe/initiate-payment
func (b *Bridge) InitiatePayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Amount  float64           `json:"amount"`
		Email   string            `json:"email"`
		EventID string            `json:"eventId"`
		Role    string            `json:"role"`
		Answers map[string]string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	// Fail closed on anything missing.
	if input.Amount <= 0 || input.Email == "" || input.EventID == "" || input.Role == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "amount, email, eventId and role are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
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
	if problems := register.ValidateSubmission(event.RegFields, input.Answers); len(problems) > 0 {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"errors": problems})
		return
	}

	// Duplicate registration is a conflict before any money moves.
	if _, err := register.FindByEmailAndEvent(ctx, input.Email, input.EventID); err == nil {
		utils.RespondWithError(w, http.StatusConflict, "Already registered for this event")
		return
	}

	txnID := strings.ReplaceAll(utils.GetUUID(), "-", "")

	pending := models.PendingPayment{
		TxnID:     txnID,
		EventID:   input.EventID,
		Email:     input.Email,
		RoleName:  role.Name,
		Amount:    input.Amount,
		Answers:   input.Answers,
		State:     "initiated",
		CreatedAt: time.Now().UTC(),
	}
	if _, err := db.PaymentsCollection.InsertOne(ctx, pending); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record payment")
		return
	}

	redirect, err := b.Config.InitiatePayment(ctx, b.Client, txnID, input.Email, input.Amount)
	if err != nil {
		log.Printf("phonepe: initiate failed for txn %s: %v", txnID, err)
		utils.RespondWithError(w, http.StatusBadGateway, "Payment initiation failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"redirectUrl":   redirect,
		"transactionId": txnID,
	})
}

// VerifyPayment is the provider webhook. Unauthenticated or malformed
// deliveries are rejected without side effects; only state COMPLETED
// registers the attendee, idempotently on (email, eventId).
//
// Endpoint: POST /api/phonepe/verify-payment
func (b *Bridge) VerifyPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unreadable body")
		return
	}

	b64, payload, err := DecodeCallback(body)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !VerifyChecksum(r.Header.Get("X-VERIFY"), b64, "", b.Config.SaltKey, b.Config.SaltIndex) {
		utils.RespondWithError(w, http.StatusBadRequest, "Checksum verification failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var pending models.PendingPayment
	err = db.PaymentsCollection.FindOne(ctx, bson.M{"txnid": payload.Data.MerchantTransactionID}).Decode(&pending)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Unknown transaction")
		return
	}

	if !strings.EqualFold(payload.Data.State, "COMPLETED") {
		// Acknowledge without registering.
		b.markPayment(ctx, pending.TxnID, "failed")
		utils.SendResponse(w, http.StatusOK, nil, "Payment not completed; nothing registered", nil)
		return
	}

	// Idempotency: a second COMPLETED delivery finds the attendee and
	// reports conflict instead of duplicating.
	if _, err := register.FindByEmailAndEvent(ctx, pending.Email, pending.EventID); err == nil {
		utils.RespondWithError(w, http.StatusConflict, "Already registered for this event")
		return
	}

	var event models.Event
	err = db.EventsCollection.FindOne(ctx, bson.M{"eventid": pending.EventID}).Decode(&event)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Event not found")
		return
	}
	role := events.FindRole(&event, pending.RoleName)
	if role == nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Role no longer exists on event")
		return
	}

	attendee, err := register.CreateAttendee(ctx, &event, role, pending.Email, pending.Answers, pending.TxnID, "paid")
	if err != nil {
		if errors.Is(err, register.ErrDuplicate) {
			utils.RespondWithError(w, http.StatusConflict, "Already registered for this event")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register attendee")
		return
	}

	b.markPayment(ctx, pending.TxnID, "completed")

	// Best-effort confirmation mail.
	if err := b.Reg.SendTicketEmail(&event, attendee); err != nil {
		log.Printf("phonepe: confirmation email to %s failed: %v", attendee.Email, err)
	}

	utils.SendResponse(w, http.StatusCreated, attendee, "Payment verified and attendee registered", nil)
}

func (b *Bridge) markPayment(ctx context.Context, txnID, state string) {
	_, err := db.PaymentsCollection.UpdateOne(ctx,
		bson.M{"txnid": txnID},
		bson.M{"$set": bson.M{"state": state, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		log.Printf("phonepe: failed to mark txn %s %s: %v", txnID, state, err)
	}
}
