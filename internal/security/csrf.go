package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Double-submit CSRF: a per-client secret lives in an HTTP-only cookie and the
// client echoes a derived token in a header. The token is salt.HMAC(secret,
// salt) so each issued token is distinct while any of them verifies against
// the same secret.

func NewCSRFSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DeriveCSRFToken(secret string) (string, error) {
	salt := make([]byte, 8)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(salt)
	return s + "." + csrfMAC(secret, s), nil
}

func VerifyCSRFToken(secret, token string) bool {
	salt, mac, ok := strings.Cut(token, ".")
	if !ok || salt == "" || mac == "" {
		return false
	}
	return hmac.Equal([]byte(mac), []byte(csrfMAC(secret, salt)))
}

func csrfMAC(secret, salt string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(salt))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
