package phonepe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChecksumRoundTrip(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString([]byte(`{"x":1}`))

	sum := Checksum(b64, payPath, "salt", "1")
	if !VerifyChecksum(sum, b64, payPath, "salt", "1") {
		t.Fatal("checksum should verify against itself")
	}
	if VerifyChecksum(sum, b64, payPath, "other-salt", "1") {
		t.Fatal("checksum verified with the wrong salt")
	}
	if VerifyChecksum(sum+"x", b64, payPath, "salt", "1") {
		t.Fatal("tampered checksum verified")
	}
}

func TestDecodeCallback(t *testing.T) {
	inner, _ := json.Marshal(map[string]any{
		"code": "PAYMENT_SUCCESS",
		"data": map[string]any{
			"merchantTransactionId": "txn1",
			"state":                 "COMPLETED",
			"amount":                50000,
		},
	})
	body, _ := json.Marshal(map[string]string{
		"response": base64.StdEncoding.EncodeToString(inner),
	})

	b64, payload, err := DecodeCallback(body)
	if err != nil {
		t.Fatalf("DecodeCallback: %v", err)
	}
	if b64 == "" {
		t.Fatal("expected the raw base64 back for checksum verification")
	}
	if payload.Data.MerchantTransactionID != "txn1" || payload.Data.State != "COMPLETED" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDecodeCallbackMalformed(t *testing.T) {
	for _, bad := range []string{"", "{}", `{"response":"!!!not-base64!!!"}`, `{"response":"aGVsbG8="}`} {
		if _, _, err := DecodeCallback([]byte(bad)); err == nil {
			t.Errorf("body %q decoded", bad)
		}
	}
}

func TestInitiatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != payPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-VERIFY") == "" {
			t.Error("missing X-VERIFY header")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"instrumentResponse": map[string]any{
					"redirectInfo": map[string]any{"url": "https://pay.example/redirect"},
				},
			},
		})
	}))
	defer srv.Close()

	cfg := Config{MerchantID: "M1", SaltKey: "salt", SaltIndex: "1", BaseURL: srv.URL}
	url, err := cfg.InitiatePayment(context.Background(), srv.Client(), "txn1", "a@example.com", 500)
	if err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}
	if url != "https://pay.example/redirect" {
		t.Fatalf("unexpected redirect url %q", url)
	}
}

func TestInitiatePaymentNoRedirectURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{}})
	}))
	defer srv.Close()

	cfg := Config{MerchantID: "M1", SaltKey: "salt", SaltIndex: "1", BaseURL: srv.URL}
	if _, err := cfg.InitiatePayment(context.Background(), srv.Client(), "txn1", "a@example.com", 500); err == nil {
		t.Fatal("missing redirect URL should fail closed")
	}
}

func TestInitiatePaymentProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := Config{MerchantID: "M1", SaltKey: "salt", SaltIndex: "1", BaseURL: srv.URL}
	if _, err := cfg.InitiatePayment(context.Background(), srv.Client(), "txn1", "a@example.com", 500); err == nil {
		t.Fatal("provider error should fail closed")
	}
}
