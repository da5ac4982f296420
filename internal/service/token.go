package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"time"
)

const (
	tokenBytes       = 32
	maxTokenAttempts = 5
)

// tokenExists reports whether a candidate token is already stored
type tokenExists func(ctx context.Context, token string) (bool, error)

func randomBytes(r io.Reader) ([]byte, error) {
	b := make([]byte, tokenBytes)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}

// NewSessionToken returns 64 lowercase hex chars
func NewSessionToken() (string, error) {
	b, err := randomBytes(rand.Reader)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewInvitationToken returns 32 random bytes as unpadded URL-safe base64
func NewInvitationToken() (string, error) {
	b, err := randomBytes(rand.Reader)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// uniqueToken draws tokens until one is unused. After maxTokenAttempts
// collisions the last candidate is suffixed with the Unix-nano time.
func uniqueToken(ctx context.Context, generate func() (string, error), exists tokenExists, now func() time.Time) (string, error) {
	var candidate string
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := generate()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, token)
		if err != nil {
			return "", err
		}
		if !taken {
			return token, nil
		}
		candidate = token
	}
	return candidate + strconv.FormatInt(now().UnixNano(), 10), nil
}
