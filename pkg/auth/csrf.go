package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
)

// CSRFCookieName is the name of the CSRF cookie.
const CSRFCookieName = "__addrnav_csrf"

// CSRFFieldName is the form field carrying the token on POSTs.
const CSRFFieldName = "csrf_token"

// CSRF issues and validates double-submit CSRF tokens.
// Tokens are a 16-byte nonce followed by an HMAC-SHA256 signature over
// the nonce, base64url encoded. Validation never needs server-side
// token storage.
type CSRF struct {
	secret []byte
	secure bool
}

// NewCSRF creates a token issuer with the given HMAC secret.
// The secret must be non-empty and stable across server restarts if
// in-flight forms should survive a restart.
func NewCSRF(secret []byte, opts ...CSRFOption) *CSRF {
	c := &CSRF{secret: secret}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CSRFOption configures a CSRF issuer.
type CSRFOption func(*CSRF)

// WithSecureCSRFCookies forces the Secure flag on CSRF cookies.
func WithSecureCSRFCookies() CSRFOption {
	return func(c *CSRF) {
		c.secure = true
	}
}

// Token generates a new signed token.
func (c *CSRF) Token() string {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		// Weak tokens are worse than no server.
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}

	h := hmac.New(sha256.New, c.secret)
	h.Write(nonce)
	sig := h.Sum(nil)

	token := make([]byte, 0, len(nonce)+len(sig))
	token = append(token, nonce...)
	token = append(token, sig...)
	return base64.URLEncoding.EncodeToString(token)
}

// Verify checks the token's HMAC signature.
func (c *CSRF) Verify(token string) bool {
	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return false
	}
	// 16-byte nonce + 32-byte signature.
	if len(decoded) != 48 {
		return false
	}

	nonce, providedSig := decoded[:16], decoded[16:]
	h := hmac.New(sha256.New, c.secret)
	h.Write(nonce)
	return hmac.Equal(providedSig, h.Sum(nil))
}

// SetCookie ensures the request carries a CSRF cookie and returns the
// token for embedding in the rendered form. A valid cookie already on
// the request is reused, so a form left open in one tab keeps
// validating after other pages render in parallel tabs.
func (c *CSRF) SetCookie(w http.ResponseWriter, r *http.Request) string {
	if r != nil {
		if cookie, err := r.Cookie(CSRFCookieName); err == nil && c.Verify(cookie.Value) {
			return cookie.Value
		}
	}

	token := c.Token()
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure || (r != nil && r.TLS != nil),
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

// ValidateRequest checks a mutating request: the form token must match
// the cookie (double submit) and carry a valid signature.
func (c *CSRF) ValidateRequest(r *http.Request) bool {
	token := r.PostFormValue(CSRFFieldName)
	if token == "" {
		return false
	}

	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	if !hmac.Equal([]byte(token), []byte(cookie.Value)) {
		return false
	}
	return c.Verify(token)
}
