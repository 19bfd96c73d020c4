package utils

import (
	rndm "math/rand"
	"mime/multipart"
	"net/http"
	"strings"
)

// --- Random String and ID Generators ---

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyz0123456789_ABCDEFGHIJKLMNOPQRSTUVWXYZ")
var idRunes = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

// GenerateRandomString creates a random alphanumeric string of length n.
func GenerateRandomString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rndm.Intn(len(letterRunes))]
	}
	return string(b)
}

// GenerateID creates a random lowercase id of length n, safe for use in
// URLs and QR payloads.
func GenerateID(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = idRunes[rndm.Intn(len(idRunes))]
	}
	return string(b)
}

// --- Name Normalization ---

// NormalizeName lowercases and collapses interior whitespace so that
// "Tech Conf" and "  tech   conf " compare equal. Used for company and
// event name uniqueness keys.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// --- Slice Helpers ---

// ContainsFold reports whether slice holds value under case-insensitive
// comparison.
func ContainsFold(slice []string, value string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}

// --- Image Validation ---

var SupportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

func ValidateImageFileType(w http.ResponseWriter, header *multipart.FileHeader) bool {
	mimeType := header.Header.Get("Content-Type")
	if !SupportedImageTypes[mimeType] {
		http.Error(w, "Invalid file type. Supported formats: JPEG, PNG, WebP, GIF.", http.StatusBadRequest)
		return false
	}
	return true
}
