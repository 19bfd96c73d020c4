package middleware

import (
	"context"
	"net/http"

	"entrada/globals"
	"entrada/rdx"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
)

// AdminClaims is the JWT payload for company admins.
type AdminClaims struct {
	AdminID string `json:"adminId"`
	Company string `json:"company"`
	jwt.RegisteredClaims
}

// StaffClaims is the JWT payload for event staff logged in through an
// access grant. Scoped to one event and one privilege.
type StaffClaims struct {
	Email     string `json:"email"`
	EventID   string `json:"eventId"`
	Privilege string `json:"privilege"`
	jwt.RegisteredClaims
}

// Authenticate requires a valid admin bearer token and stores the admin
// id and company in the request context.
func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		if len(tokenString) < 8 || tokenString[:7] != "Bearer " {
			http.Error(w, "Invalid token format", http.StatusUnauthorized)
			return
		}

		raw := tokenString[7:]
		claims := &AdminClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
			return globals.JwtSecret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		// Session check: a logged-out or rotated token is rejected before
		// its JWT expiry. An unreachable cache does not lock admins out.
		cached, err := rdx.RdxGet(rdx.AdminTokenKey(claims.AdminID))
		if err == redis.Nil || (err == nil && cached != raw) {
			http.Error(w, "Session revoked", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), globals.AdminIDKey, claims.AdminID)
		ctx = context.WithValue(ctx, globals.CompanyKey, claims.Company)
		next(w, r.WithContext(ctx), ps)
	}
}

// AuthenticateStaff requires a valid staff bearer token and stores the
// event id and privilege in the request context.
func AuthenticateStaff(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		tokenString := r.Header.Get("Authorization")
		if len(tokenString) < 8 || tokenString[:7] != "Bearer " {
			http.Error(w, "Missing or invalid token", http.StatusUnauthorized)
			return
		}

		claims := &StaffClaims{}
		token, err := jwt.ParseWithClaims(tokenString[7:], claims, func(token *jwt.Token) (any, error) {
			return globals.JwtSecret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), globals.EventIDKey, claims.EventID)
		ctx = context.WithValue(ctx, globals.PrivilegeKey, claims.Privilege)
		next(w, r.WithContext(ctx), ps)
	}
}
