package phonepe

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"entrada/globals"
)

const payPath = "/pg/v1/pay"

// Config holds the provider credentials. Loaded from env in main.
type Config struct {
	MerchantID  string
	SaltKey     string
	SaltIndex   string
	BaseURL     string
	RedirectURL string
	CallbackURL string
}

func ConfigFromEnv() Config {
	return Config{
		MerchantID:  globals.EnvOr("PHONEPE_MERCHANT_ID", "MERCHANTUAT"),
		SaltKey:     globals.EnvOr("PHONEPE_SALT_KEY", ""),
		SaltIndex:   globals.EnvOr("PHONEPE_SALT_INDEX", "1"),
		BaseURL:     globals.EnvOr("PHONEPE_BASE_URL", "https://api-preprod.phonepe.com/apis/pg-sandbox"),
		RedirectURL: globals.EnvOr("PHONEPE_REDIRECT_URL", "http://localhost:5173/payment-status"),
		CallbackURL: globals.EnvOr("PHONEPE_CALLBACK_URL", "http://localhost:8080/api/phonepe/verify-payment"),
	}
}

// Checksum computes the X-VERIFY value for a base64 payload and path:
// sha256(base64 + path + saltKey) + "###" + saltIndex.
func Checksum(base64Payload, path, saltKey, saltIndex string) string {
	sum := sha256.Sum256([]byte(base64Payload + path + saltKey))
	return hex.EncodeToString(sum[:]) + "###" + saltIndex
}

// VerifyChecksum checks a provider-supplied X-VERIFY header against
// the base64 body it covers.
func VerifyChecksum(xVerify, base64Payload, path, saltKey, saltIndex string) bool {
	return xVerify == Checksum(base64Payload, path, saltKey, saltIndex)
}

type initiateRequest struct {
	MerchantID            string `json:"merchantId"`
	MerchantTransactionID string `json:"merchantTransactionId"`
	MerchantUserID        string `json:"merchantUserId"`
	Amount                int64  `json:"amount"` // paise
	RedirectURL           string `json:"redirectUrl"`
	RedirectMode          string `json:"redirectMode"`
	CallbackURL           string `json:"callbackUrl"`
	PaymentInstrument     struct {
		Type string `json:"type"`
	} `json:"paymentInstrument"`
}

type initiateResponse struct {
	Success bool `json:"success"`
	Data    struct {
		InstrumentResponse struct {
			RedirectInfo struct {
				URL string `json:"url"`
			} `json:"redirectInfo"`
		} `json:"instrumentResponse"`
	} `json:"data"`
}

// CallbackPayload is the decoded webhook body.
type CallbackPayload struct {
	Code string `json:"code"`
	Data struct {
		MerchantTransactionID string `json:"merchantTransactionId"`
		State                 string `json:"state"`
		Amount                int64  `json:"amount"`
	} `json:"data"`
}

// DecodeCallback unwraps the {"response": base64} webhook envelope.
func DecodeCallback(body []byte) (string, *CallbackPayload, error) {
	var envelope struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Response == "" {
		return "", nil, errors.New("malformed callback envelope")
	}

	decoded, err := base64.StdEncoding.DecodeString(envelope.Response)
	if err != nil {
		return "", nil, errors.New("callback payload is not base64")
	}

	var payload CallbackPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return "", nil, errors.New("callback payload is not valid JSON")
	}
	return envelope.Response, &payload, nil
}

// InitiatePayment asks the provider for a redirect URL. Fails closed:
// any provider error or missing redirect URL is surfaced to the
// caller. Amount is rupees, converted to paise on the wire.
func (c Config) InitiatePayment(ctx context.Context, client *http.Client, txnID, email string, amount float64) (string, error) {
	req := initiateRequest{
		MerchantID:            c.MerchantID,
		MerchantTransactionID: txnID,
		MerchantUserID:        email,
		Amount:                int64(amount * 100),
		RedirectURL:           c.RedirectURL,
		RedirectMode:          "REDIRECT",
		CallbackURL:           c.CallbackURL,
	}
	req.PaymentInstrument.Type = "PAY_PAGE"

	raw, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	b64 := base64.StdEncoding.EncodeToString(raw)

	body, err := json.Marshal(map[string]string{"request": b64})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+payPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-VERIFY", Checksum(b64, payPath, c.SaltKey, c.SaltIndex))

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("payment provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var parsed initiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("payment provider response unreadable: %w", err)
	}

	redirect := parsed.Data.InstrumentResponse.RedirectInfo.URL
	if !parsed.Success || redirect == "" {
		return "", errors.New("payment provider did not return a redirect URL")
	}
	return redirect, nil
}

// NewHTTPClient returns the bounded-timeout client used for provider
// calls. No automatic retry.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}
