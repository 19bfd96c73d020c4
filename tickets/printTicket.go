package tickets

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"entrada/db"
	"entrada/models"
	"entrada/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

// TicketQR serves the raw QR PNG for an attendee's code. The encoded
// content is the opaque token itself, round-tripped verbatim by the
// scanner.
func TicketQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	code := r.URL.Query().Get("code")
	if code == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "code is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var attendee models.Attendee
	err := db.AttendeesCollection.FindOne(ctx, bson.M{
		"eventid": eventID,
		"qrtoken": code,
	}).Decode(&attendee)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Ticket not found")
		return
	}

	qrPNG, err := qrcode.Encode(attendee.QRToken, qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(qrPNG)
}

// PrintTicket renders a PDF ticket with a signed QR payload embedded.
func PrintTicket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	code := r.URL.Query().Get("code")
	if code == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "code is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var attendee models.Attendee
	err := db.AttendeesCollection.FindOne(ctx, bson.M{
		"eventid": eventID,
		"qrtoken": code,
	}).Decode(&attendee)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Ticket not found")
		return
	}

	var event models.Event
	err = db.EventsCollection.FindOne(ctx, bson.M{"eventid": eventID}).Decode(&event)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Event not found")
		return
	}

	qrPayload := GenerateQRPayload(eventID, attendee.AttendeeID, attendee.QRToken)
	qrPNG, err := qrcode.Encode(qrPayload, qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, event.Name)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Company: %s", event.Company))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Venue: %s", event.Venue))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Role: %s", attendee.RoleName))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Code: %s", attendee.QRToken))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=ticket-"+attendee.QRToken+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
