package admin

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"entrada/db"
	"entrada/globals"
	"entrada/mailer"
	"entrada/middleware"
	"entrada/models"
	"entrada/rdx"
	"entrada/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 12 * time.Hour
	resetTokenTTL   = 30 * time.Minute
	resetTokenChars = 32
)

// Handler carries the injected mail transport for the admin endpoints.
type Handler struct {
	Mail *mailer.Mailer
}

func NewHandler(mail *mailer.Mailer) *Handler {
	return &Handler{Mail: mail}
}

// Register creates an admin account and its company.
//
// Endpoint: POST /api/admin/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Company  string `json:"company"`
		Location string `json:"location"`
		Category string `json:"category"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Email == "" || input.Password == "" || input.Company == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email, password and company are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	companyKey := utils.NormalizeName(input.Company)

	// Duplicate email or company, case/space-insensitive on company
	err := db.AdminsCollection.FindOne(ctx, bson.M{"$or": []bson.M{
		{"email": input.Email},
		{"companykey": companyKey},
	}}).Err()
	if err == nil {
		utils.RespondWithError(w, http.StatusConflict, "Email or company already registered")
		return
	} else if err != mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("admin: hash error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not process password")
		return
	}

	adm := models.Admin{
		AdminID:      "a" + utils.GenerateID(12),
		Email:        input.Email,
		PasswordHash: string(hashed),
		Company:      input.Company,
		CompanyKey:   companyKey,
		Location:     input.Location,
		Category:     input.Category,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := db.AdminsCollection.InsertOne(ctx, adm); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "Email or company already registered")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register admin")
		return
	}

	utils.SendResponse(w, http.StatusCreated, map[string]string{"adminid": adm.AdminID}, "Registration successful", nil)
}

// Login verifies the password hash and issues a time-limited bearer
// token.
//
// Endpoint: POST /api/admin/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Email == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var stored models.Admin
	err := db.AdminsCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&stored)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(input.Password)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	tokenString, err := generateAccessToken(stored)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	_, err = db.AdminsCollection.UpdateOne(ctx,
		bson.M{"adminid": stored.AdminID},
		bson.M{"$set": bson.M{"last_login": time.Now().UTC()}},
	)
	if err != nil {
		log.Printf("admin: failed to record last login: %v", err)
	}

	// Session cache expires with the token itself.
	if err := rdx.RdxSetWithTTL(rdx.AdminTokenKey(stored.AdminID), tokenString, accessTokenTTL); err != nil {
		log.Printf("admin: redis token cache failed: %v", err)
	}

	utils.SendResponse(w, http.StatusOK, map[string]string{
		"token":   tokenString,
		"adminid": stored.AdminID,
		"company": stored.Company,
	}, "Login successful", nil)
}

// Logout deletes the cached session token, so the bearer token stops
// working before its JWT expiry.
//
// Endpoint: POST /api/admin/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	adminID, ok := r.Context().Value(globals.AdminIDKey).(string)
	if !ok || adminID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid admin context")
		return
	}

	if err := rdx.RdxDel(rdx.AdminTokenKey(adminID)); err != nil {
		log.Printf("admin: session revocation for %s failed: %v", adminID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to revoke session")
		return
	}

	utils.SendResponse(w, http.StatusOK, nil, "Logged out", nil)
}

// ForgotPassword issues a single-use, time-limited reset token and
// emails it. Unlike registration mail this send must succeed: the
// token is useless if it never reaches the admin.
//
// Endpoint: POST /api/admin/forgot-password
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var stored models.Admin
	err := db.AdminsCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&stored)
	if err != nil {
		// Do not reveal whether the email exists
		utils.SendResponse(w, http.StatusOK, nil, "If the account exists, a reset email was sent", nil)
		return
	}

	token := utils.GenerateRandomString(resetTokenChars)
	expiry := time.Now().UTC().Add(resetTokenTTL)

	_, err = db.AdminsCollection.UpdateOne(ctx,
		bson.M{"adminid": stored.AdminID},
		bson.M{"$set": bson.M{"resettoken": token, "resetexpiry": expiry}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store reset token")
		return
	}

	body := "A password reset was requested for your account.\n\n" +
		"Reset token: " + token + "\n\n" +
		"The token expires in 30 minutes. Ignore this mail if you did not request it."
	if err := h.Mail.Send(stored.Email, "Password reset", body); err != nil {
		log.Printf("admin: reset email to %s failed: %v", stored.Email, err)
		utils.RespondWithError(w, http.StatusBadGateway, "Failed to send reset email")
		return
	}

	utils.SendResponse(w, http.StatusOK, nil, "If the account exists, a reset email was sent", nil)
}

// ResetPassword redeems a reset token. The update matches only an
// unexpired token, swaps in the new hash and unsets the token in one
// step, so a token can be redeemed at most once.
//
// Endpoint: POST /api/admin/reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Token == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Token and new password are required")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not process password")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.AdminsCollection.UpdateOne(ctx,
		bson.M{
			"resettoken":  input.Token,
			"resetexpiry": bson.M{"$gt": time.Now().UTC()},
		},
		bson.M{
			"$set":   bson.M{"passwordhash": string(hashed)},
			"$unset": bson.M{"resettoken": "", "resetexpiry": ""},
		},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if res.ModifiedCount == 0 {
		utils.RespondWithError(w, http.StatusForbidden, "Invalid or expired reset token")
		return
	}

	utils.SendResponse(w, http.StatusOK, nil, "Password updated", nil)
}

func generateAccessToken(adm models.Admin) (string, error) {
	claims := middleware.AdminClaims{
		AdminID: adm.AdminID,
		Company: adm.Company,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adm.AdminID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}
