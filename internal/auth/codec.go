package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var b64 = base64.RawURLEncoding

// ErrInvalidToken covers every verification failure: bad signature, malformed
// structure, and expiry. Callers must not distinguish between them in
// responses, to avoid acting as an oracle.
var ErrInvalidToken = errors.New("invalid or expired token")

// minKeyBytes is the minimum HMAC-SHA256 key length (256 bits).
const minKeyBytes = 32

// Codec issues and verifies compact HS256 tokens. The signing key is
// process-wide and read-only after startup; rotating it invalidates all
// previously issued tokens.
type Codec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewCodec validates the signing key length up front so a weak key fails at
// startup rather than at first use.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if len(secret) < minKeyBytes {
		return nil, fmt.Errorf("signing key must be at least %d bytes, got %d", minKeyBytes, len(secret))
	}
	return &Codec{key: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// VerifiedToken is the decoded content of a valid token.
type VerifiedToken struct {
	Subject   string
	Claims    map[string]string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issue produces a signed token binding subject and claims with issue and
// expiry timestamps. It returns the token string and its expiry.
func (c *Codec) Issue(subject string, claims map[string]string) (string, time.Time, error) {
	now := c.now()
	exp := now.Add(c.ttl)
	payload := map[string]any{
		"sub": subject,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	for k, v := range claims {
		payload[k] = v
	}
	signed, err := signHS256(payload, c.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature, structure and expiry. The expiry boundary is
// exclusive: a token is invalid from the moment now >= exp.
func (c *Codec) Verify(token string) (VerifiedToken, error) {
	payload, err := parseAndVerifyHS256(token, c.key)
	if err != nil {
		return VerifiedToken{}, ErrInvalidToken
	}

	sub, ok := payload["sub"].(string)
	if !ok || sub == "" {
		return VerifiedToken{}, ErrInvalidToken
	}
	expFloat, ok := payload["exp"].(float64)
	if !ok {
		return VerifiedToken{}, ErrInvalidToken
	}
	exp := time.Unix(int64(expFloat), 0)
	if !c.now().Before(exp) {
		return VerifiedToken{}, ErrInvalidToken
	}

	var issuedAt time.Time
	if iatFloat, ok := payload["iat"].(float64); ok {
		issuedAt = time.Unix(int64(iatFloat), 0)
	}

	claims := make(map[string]string)
	for k, v := range payload {
		switch k {
		case "sub", "iat", "exp":
			continue
		}
		if s, ok := v.(string); ok {
			claims[k] = s
		}
	}

	return VerifiedToken{Subject: sub, Claims: claims, IssuedAt: issuedAt, ExpiresAt: exp}, nil
}

// TTL exposes the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

func signHS256(claims map[string]any, secret []byte) (string, error) {
	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	h, err := json.Marshal(header)
	if err != nil {
		return "", err
	}
	p, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	unsigned := b64.EncodeToString(h) + "." + b64.EncodeToString(p)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(unsigned))
	return unsigned + "." + b64.EncodeToString(mac.Sum(nil)), nil
}

func parseAndVerifyHS256(token string, secret []byte) (map[string]any, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, errors.New("invalid token format")
	}
	unsigned := parts[0] + "." + parts[1]
	sig, err := b64.DecodeString(parts[2])
	if err != nil {
		return nil, errors.New("invalid signature encoding")
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(unsigned))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, errors.New("signature mismatch")
	}
	payload, err := b64.DecodeString(parts[1])
	if err != nil {
		return nil, errors.New("invalid payload encoding")
	}
	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, errors.New("invalid claims json")
	}
	return claims, nil
}
