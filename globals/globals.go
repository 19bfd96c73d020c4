package globals

import (
	"context"
	"os"
)

var (
	JwtSecret = []byte(EnvOr("JWT_SECRET", "change_me_in_env"))
)

// EnvOr returns the env var value or a fallback when unset.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Context keys
type ContextKey string

const AdminIDKey ContextKey = "adminId"
const CompanyKey ContextKey = "company"
const EventIDKey ContextKey = "eventId"
const PrivilegeKey ContextKey = "privilege"

var Ctx = context.Background()
