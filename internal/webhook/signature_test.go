package webhook

import (
	"encoding/base64"
	"errors"
	"strconv"
	"testing"
	"time"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

func mustVerifier(t *testing.T, secret string) *Verifier {
	t.Helper()
	v, err := NewVerifier(secret)
	if err != nil {
		t.Fatalf("NewVerifier(%q): %v", secret, err)
	}
	return v
}

func TestVerify_ValidSignature(t *testing.T) {
	v := mustVerifier(t, testSecret)
	now := time.Now()
	body := []byte(`{"from":"locataire@example.fr","subject":"Fuite"}`)

	sig := v.Sign("msg_1", now, body)
	if err := v.Verify("msg_1", strconv.FormatInt(now.Unix(), 10), sig, body, now); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerify_MultipleSignatures(t *testing.T) {
	v := mustVerifier(t, testSecret)
	now := time.Now()
	body := []byte(`{}`)

	header := "v1,bm90LWEtcmVhbC1zaWduYXR1cmU= " + v.Sign("msg_2", now, body)
	if err := v.Verify("msg_2", strconv.FormatInt(now.Unix(), 10), header, body, now); err != nil {
		t.Fatalf("Verify with rotated keys: %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	signer := mustVerifier(t, testSecret)
	verifier := mustVerifier(t, "whsec_"+base64.StdEncoding.EncodeToString([]byte("another-secret-key-entirely")))
	now := time.Now()
	body := []byte(`{}`)

	sig := signer.Sign("msg_3", now, body)
	err := verifier.Verify("msg_3", strconv.FormatInt(now.Unix(), 10), sig, body, now)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}
}

func TestVerify_TamperedBody(t *testing.T) {
	v := mustVerifier(t, testSecret)
	now := time.Now()

	sig := v.Sign("msg_4", now, []byte(`{"amount":100}`))
	err := v.Verify("msg_4", strconv.FormatInt(now.Unix(), 10), sig, []byte(`{"amount":999}`), now)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}
}

func TestVerify_StaleTimestamp(t *testing.T) {
	v := mustVerifier(t, testSecret)
	now := time.Now()
	body := []byte(`{}`)

	old := now.Add(-6 * time.Minute)
	sig := v.Sign("msg_5", old, body)
	err := v.Verify("msg_5", strconv.FormatInt(old.Unix(), 10), sig, body, now)
	if !errors.Is(err, ErrStaleTimestamp) {
		t.Fatalf("err = %v, want ErrStaleTimestamp", err)
	}

	future := now.Add(6 * time.Minute)
	sig = v.Sign("msg_5", future, body)
	err = v.Verify("msg_5", strconv.FormatInt(future.Unix(), 10), sig, body, now)
	if !errors.Is(err, ErrStaleTimestamp) {
		t.Fatalf("future err = %v, want ErrStaleTimestamp", err)
	}
}

func TestVerify_MissingHeaders(t *testing.T) {
	v := mustVerifier(t, testSecret)
	now := time.Now()

	cases := []struct{ id, ts, sig string }{
		{"", "123", "v1,abc"},
		{"msg", "", "v1,abc"},
		{"msg", "123", ""},
		{"msg", "not-a-number", "v1,abc"},
	}
	for _, c := range cases {
		if err := v.Verify(c.id, c.ts, c.sig, []byte(`{}`), now); !errors.Is(err, ErrMissingHeaders) {
			t.Fatalf("Verify(%q,%q,%q): err = %v, want ErrMissingHeaders", c.id, c.ts, c.sig, err)
		}
	}
}

func TestNewVerifier_RejectsBadSecrets(t *testing.T) {
	for _, secret := range []string{"", "whsec_", "whsec_%%%not-base64%%%"} {
		if _, err := NewVerifier(secret); err == nil {
			t.Fatalf("NewVerifier(%q): expected error", secret)
		}
	}
}

func TestVerify_IgnoresUnknownVersions(t *testing.T) {
	v := mustVerifier(t, testSecret)
	now := time.Now()
	body := []byte(`{}`)

	header := "v2," + base64.StdEncoding.EncodeToString([]byte("whatever"))
	err := v.Verify("msg_6", strconv.FormatInt(now.Unix(), 10), header, body, now)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}
}
