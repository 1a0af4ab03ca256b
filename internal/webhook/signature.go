package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Header names follow the svix webhook convention used by the inbound email
// provider.
const (
	HeaderID        = "webhook-id"
	HeaderTimestamp = "webhook-timestamp"
	HeaderSignature = "webhook-signature"

	HeaderSvixID        = "svix-id"
	HeaderSvixTimestamp = "svix-timestamp"
	HeaderSvixSignature = "svix-signature"
)

// SecretPrefix marks a base64 signing secret.
const SecretPrefix = "whsec_"

// replay tolerance, both directions
const timestampTolerance = 5 * time.Minute

var (
	ErrMissingHeaders   = errors.New("missing signature headers")
	ErrInvalidSecret    = errors.New("invalid signing secret")
	ErrStaleTimestamp   = errors.New("timestamp outside tolerance")
	ErrInvalidSignature = errors.New("signature mismatch")
)

// Verifier checks svix-style webhook signatures: HMAC-SHA256 over
// "{id}.{timestamp}.{body}" with a whsec_-prefixed base64 secret.
type Verifier struct {
	key []byte
}

// NewVerifier parses the signing secret. The whsec_ prefix is optional.
func NewVerifier(secret string) (*Verifier, error) {
	trimmed := strings.TrimPrefix(secret, SecretPrefix)
	if trimmed == "" {
		return nil, ErrInvalidSecret
	}
	key, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSecret, err)
	}
	return &Verifier{key: key}, nil
}

// Sign computes the v1 signature for a message. Exposed for tests and for
// generating outbound webhook signatures.
func (v *Verifier) Sign(msgID string, timestamp time.Time, body []byte) string {
	mac := hmac.New(sha256.New, v.key)
	fmt.Fprintf(mac, "%s.%d.", msgID, timestamp.Unix())
	mac.Write(body)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks the signature header against the body. The header may carry
// several space-delimited signatures (key rotation); verification succeeds
// if any v1 signature matches. now is injected for testability.
func (v *Verifier) Verify(msgID, timestampStr, sigHeader string, body []byte, now time.Time) error {
	if msgID == "" || timestampStr == "" || sigHeader == "" {
		return ErrMissingHeaders
	}

	unix, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrMissingHeaders)
	}
	ts := time.Unix(unix, 0)
	if ts.Before(now.Add(-timestampTolerance)) || ts.After(now.Add(timestampTolerance)) {
		return ErrStaleTimestamp
	}

	expected := v.Sign(msgID, ts, body)
	for _, candidate := range strings.Fields(sigHeader) {
		if !strings.HasPrefix(candidate, "v1,") {
			continue
		}
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}
