package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// GenerateSessionID derives a session id from client identity. It changes every hour.
func GenerateSessionID(input string) string {
	hash := md5.Sum([]byte(input + fmt.Sprintf("%d", time.Now().Unix()/3600)))
	return hex.EncodeToString(hash[:])[:16]
}

// MD5Hash generates MD5 hash of input string
func MD5Hash(input string) string {
	hash := md5.Sum([]byte(input))
	return hex.EncodeToString(hash[:])
}

// NewRequestID returns a random request id.
func NewRequestID() string {
	return uuid.NewString()
}

// ValidateRequestID reports whether id is a well-formed UUID.
func ValidateRequestID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ValidateSessionID validates if a session ID format is correct
func ValidateSessionID(sessionID string) bool {
	if len(sessionID) != 16 {
		return false
	}
	_, err := hex.DecodeString(sessionID)
	return err == nil
}
