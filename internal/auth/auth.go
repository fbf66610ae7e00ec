// internal/auth/auth.go
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TokenConfig holds the configuration for token generation
type TokenConfig struct {
	Secret     []byte
	Expiration time.Duration
}

// Token represents an authentication token
type Token struct {
	UserID    string            `json:"user_id"`
	ExpiresAt int64             `json:"expires_at"`
	IssuedAt  int64             `json:"issued_at"`
	Claims    map[string]string `json:"claims,omitempty"`
}

// GenerateToken creates a new authentication token
func GenerateToken(userID string, config *TokenConfig) (string, error) {
	if len(config.Secret) == 0 {
		return "", fmt.Errorf("secret key is required")
	}
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}

	now := time.Now()
	token := &Token{
		UserID:    userID,
		ExpiresAt: now.Add(config.Expiration).Unix(),
		IssuedAt:  now.Unix(),
	}

	payload, err := json.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("failed to encode token payload: %w", err)
	}

	// Create HMAC signature over the raw payload
	h := hmac.New(sha256.New, config.Secret)
	h.Write(payload)
	signature := h.Sum(nil)

	encodedPayload := base64.URLEncoding.EncodeToString(payload)
	encodedSignature := base64.URLEncoding.EncodeToString(signature)

	return fmt.Sprintf("%s.%s", encodedPayload, encodedSignature), nil
}

// ParseToken parses and validates a token
func ParseToken(tokenString string, config *TokenConfig) (*Token, error) {
	if len(config.Secret) == 0 {
		return nil, fmt.Errorf("secret key is required")
	}

	parts := strings.Split(tokenString, ".")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid token format")
	}

	payloadBytes, err := base64.URLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid token payload: %w", err)
	}

	signatureBytes, err := base64.URLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid token signature: %w", err)
	}

	// Verify signature before trusting any payload field
	expected := hmac.New(sha256.New, config.Secret)
	expected.Write(payloadBytes)
	if !hmac.Equal(signatureBytes, expected.Sum(nil)) {
		return nil, fmt.Errorf("invalid token signature")
	}

	var token Token
	if err := json.Unmarshal(payloadBytes, &token); err != nil {
		return nil, fmt.Errorf("invalid payload format: %w", err)
	}

	if token.UserID == "" {
		return nil, fmt.Errorf("token has no user id")
	}

	// Check expiration
	if time.Now().Unix() > token.ExpiresAt {
		return nil, fmt.Errorf("token has expired")
	}

	return &token, nil
}

// GenerateSecureKey generates a secure random key for token signing
func GenerateSecureKey(length int) ([]byte, error) {
	if length <= 0 {
		length = 32 // Default to 256 bits
	}

	key := make([]byte, length)
	_, err := rand.Read(key)
	if err != nil {
		return nil, err
	}

	return key, nil
}
