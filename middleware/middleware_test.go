package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"entrada/globals"
	"entrada/rdx"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
)

// isolateRedis points the session cache at a closed port so the check
// takes the cache-unreachable path regardless of a local redis.
func isolateRedis(t *testing.T) {
	t.Helper()
	old := rdx.Conn
	rdx.Conn = redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdx.Conn = old })
}

func adminToken(t *testing.T) string {
	t.Helper()
	claims := AdminClaims{
		AdminID: "a1",
		Company: "Acme",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	next := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		t.Error("handler reached without a valid token")
	}

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer not-a-jwt"} {
		r := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		Authenticate(next)(w, r, nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: got status %d, want 401", header, w.Code)
		}
	}
}

func TestAuthenticatePopulatesContext(t *testing.T) {
	isolateRedis(t)

	called := false
	next := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
		if got, _ := r.Context().Value(globals.AdminIDKey).(string); got != "a1" {
			t.Errorf("admin id in context = %q, want a1", got)
		}
		if got, _ := r.Context().Value(globals.CompanyKey).(string); got != "Acme" {
			t.Errorf("company in context = %q, want Acme", got)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	r.Header.Set("Authorization", "Bearer "+adminToken(t))
	w := httptest.NewRecorder()
	Authenticate(next)(w, r, nil)

	if !called {
		t.Fatalf("handler not reached, status %d", w.Code)
	}
}

func TestAuthenticateStaffPopulatesContext(t *testing.T) {
	claims := StaffClaims{
		Email:     "staff@example.com",
		EventID:   "ev1",
		Privilege: "Lunch",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	called := false
	next := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
		if got, _ := r.Context().Value(globals.EventIDKey).(string); got != "ev1" {
			t.Errorf("event id in context = %q, want ev1", got)
		}
		if got, _ := r.Context().Value(globals.PrivilegeKey).(string); got != "Lunch" {
			t.Errorf("privilege in context = %q, want Lunch", got)
		}
	}

	r := httptest.NewRequest(http.MethodPost, "/api/scan/claim", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	AuthenticateStaff(next)(w, r, nil)

	if !called {
		t.Fatalf("handler not reached, status %d", w.Code)
	}
}
