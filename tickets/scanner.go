package tickets

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"entrada/globals"
)

const allowedDrift = 5 * 60 // seconds = 5 minutes

var hmacSecret = []byte(globals.EnvOr("QR_HMAC_SECRET", "entrada-qr-secret"))

// GenerateQRPayload returns a signed payload string:
// eventID|attendeeID|qrToken|timestamp|signature
func GenerateQRPayload(eventID, attendeeID, qrToken string) string {
	timestamp := time.Now().Unix()
	data := fmt.Sprintf("%s|%s|%s|%d", eventID, attendeeID, qrToken, timestamp)

	h := hmac.New(sha256.New, hmacSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyTicketQR checks a signed payload: eventID|attendeeID|qrToken|timestamp|HMAC
func VerifyTicketQR(payload string) (eventID, attendeeID, qrToken string, err error) {
	parts := strings.Split(payload, "|")
	if len(parts) != 5 {
		return "", "", "", errors.New("invalid QR format")
	}

	eventID = parts[0]
	attendeeID = parts[1]
	qrToken = parts[2]
	timestampStr := parts[3]
	signature := parts[4]

	// Check timestamp window
	ts, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return "", "", "", errors.New("invalid timestamp")
	}

	now := time.Now().Unix()
	if abs(now-ts) > allowedDrift {
		return "", "", "", errors.New("ticket expired or from the future")
	}

	// Recompute signature
	data := fmt.Sprintf("%s|%s|%s|%s", eventID, attendeeID, qrToken, timestampStr)
	h := hmac.New(sha256.New, hmacSecret)
	h.Write([]byte(data))
	expectedSig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expectedSig)) {
		return "", "", "", errors.New("invalid signature")
	}

	return eventID, attendeeID, qrToken, nil
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
