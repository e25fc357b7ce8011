// Package webhook verifies the authenticity of inbound service callbacks
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Header names carried by signed webhook requests
const (
	// TimestampHeader carries the unix timestamp the payload was signed at
	TimestampHeader = "X-Productbird-Timestamp"
	// SignatureHeader carries the payload signature as sha256=<hex>
	SignatureHeader = "X-Productbird-Signature"

	signaturePrefix = "sha256="
)

// DefaultMaxSkew is the accepted age of a signed timestamp
const DefaultMaxSkew = 5 * time.Minute

// ErrSignatureInvalid is returned for any webhook that fails verification.
// The request must be discarded before its body is parsed.
var ErrSignatureInvalid = errors.New("webhook signature invalid")

// Verifier checks webhook signatures against a shared secret
type Verifier struct {
	secret   string
	maxSkew  time.Duration
	timeFunc func() time.Time
}

// NewVerifier creates a verifier for the given shared secret. maxSkew bounds
// the accepted age of the signed timestamp; zero disables the freshness check.
func NewVerifier(secret string, maxSkew time.Duration) *Verifier {
	return &Verifier{
		secret:   secret,
		maxSkew:  maxSkew,
		timeFunc: time.Now,
	}
}

// Verify checks the signature headers against the raw request body. The
// signing string is "<timestamp>.<body>" and the signature header must carry
// a sha256= prefixed hex HMAC digest. Comparison is constant time.
func (v *Verifier) Verify(rawBody []byte, timestamp, signatureHeader string) error {
	if timestamp == "" || signatureHeader == "" {
		return fmt.Errorf("%w: missing required headers", ErrSignatureInvalid)
	}

	if !strings.HasPrefix(signatureHeader, signaturePrefix) {
		return fmt.Errorf("%w: invalid signature format", ErrSignatureInvalid)
	}
	provided := strings.TrimPrefix(signatureHeader, signaturePrefix)

	if v.maxSkew > 0 {
		ts, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: malformed timestamp", ErrSignatureInvalid)
		}
		age := v.timeFunc().Sub(time.Unix(ts, 0))
		if age > v.maxSkew || age < -v.maxSkew {
			return fmt.Errorf("%w: timestamp outside accepted window", ErrSignatureInvalid)
		}
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(provided)) {
		return fmt.Errorf("%w: signature mismatch", ErrSignatureInvalid)
	}

	return nil
}

// Sign computes the signature header value for a payload. Used by tests and
// by local tooling that replays webhooks.
func (v *Verifier) Sign(rawBody []byte, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}
