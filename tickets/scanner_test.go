package tickets

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestQRPayloadRoundTrip(t *testing.T) {
	payload := GenerateQRPayload("ev1", "r1", "abcd1234")

	eventID, attendeeID, token, err := VerifyTicketQR(payload)
	if err != nil {
		t.Fatalf("VerifyTicketQR: %v", err)
	}
	if eventID != "ev1" || attendeeID != "r1" || token != "abcd1234" {
		t.Fatalf("round trip mismatch: %s %s %s", eventID, attendeeID, token)
	}
}

func TestQRPayloadTamper(t *testing.T) {
	payload := GenerateQRPayload("ev1", "r1", "abcd1234")

	tampered := strings.Replace(payload, "r1", "r2", 1)
	if _, _, _, err := VerifyTicketQR(tampered); err == nil {
		t.Fatal("tampered payload verified")
	}
}

func TestQRPayloadFormat(t *testing.T) {
	for _, bad := range []string{"", "abcd1234", "a|b|c", "a|b|c|d|e|f"} {
		if _, _, _, err := VerifyTicketQR(bad); err == nil {
			t.Errorf("payload %q verified", bad)
		}
	}
}

func TestQRPayloadDrift(t *testing.T) {
	// Build a payload dated outside the allowed window.
	stale := time.Now().Unix() - allowedDrift - 60
	data := fmt.Sprintf("ev1|r1|abcd1234|%d", stale)

	h := hmac.New(sha256.New, hmacSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	payload := data + "|" + sig
	if _, _, _, err := VerifyTicketQR(payload); err == nil {
		t.Fatal("stale payload verified despite valid signature")
	}
}
