package auth_test

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/apsx/clinic-api/internal/auth"
)

const testOTPURL = "otpauth://totp/clinic:staff@clinic.test?secret=JBSWY3DPEHPK3PXP&issuer=clinic"

// totpCode computes an RFC 6238 code for the current time step, shifted by
// stepOffset, from a base32 secret. Kept local so the tests exercise the
// verifier purely through its exported surface.
func totpCode(t *testing.T, encodedSecret string, stepOffset int64, digits int) string {
	t.Helper()

	secret, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.ToUpper(encodedSecret))
	if err != nil {
		t.Fatalf("failed to decode test secret: %v", err)
	}

	counter := uint64(time.Now().Unix()/30 + stepOffset)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)

	mac := hmac.New(sha1.New, secret)
	mac.Write(buf[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	mod := uint32(1)
	for i := 0; i < digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", digits, value%mod)
}

// secretParam extracts the secret query parameter of an otpauth URL.
func secretParam(t *testing.T, otpURL string) string {
	t.Helper()

	u, err := url.Parse(otpURL)
	if err != nil {
		t.Fatalf("failed to parse OTP URL: %v", err)
	}
	return u.Query().Get("secret")
}

func TestTOTPVerifier_ValidCode(t *testing.T) {
	v := auth.NewTOTPVerifier()

	code := totpCode(t, secretParam(t, testOTPURL), 0, v.Digits)

	ok, err := v.Verify(testOTPURL, code)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Error("expected current code to verify")
	}
}

func TestTOTPVerifier_SkewTolerance(t *testing.T) {
	v := auth.NewTOTPVerifier()

	previous := totpCode(t, secretParam(t, testOTPURL), -1, v.Digits)

	ok, err := v.Verify(testOTPURL, previous)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Error("expected code from previous step to verify within skew")
	}
}

func TestTOTPVerifier_InvalidCode(t *testing.T) {
	v := auth.NewTOTPVerifier()

	stale := totpCode(t, secretParam(t, testOTPURL), 100, v.Digits)

	ok, err := v.Verify(testOTPURL, stale)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if ok {
		t.Error("expected code outside the window to be rejected")
	}
}

func TestTOTPVerifier_BadURL(t *testing.T) {
	v := auth.NewTOTPVerifier()

	tests := []struct {
		name string
		url  string
	}{
		{"wrong scheme", "https://example.com?secret=JBSWY3DPEHPK3PXP"},
		{"no secret", "otpauth://totp/clinic:staff@clinic.test"},
		{"bad base32", "otpauth://totp/x?secret=not-base32!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(tt.url, "123456"); err == nil {
				t.Error("expected error for malformed enrollment URL")
			}
		})
	}
}

func TestGenerateOTPURL(t *testing.T) {
	otpURL, err := auth.GenerateOTPURL("clinic-api", "staff@clinic.test")
	if err != nil {
		t.Fatalf("GenerateOTPURL returned error: %v", err)
	}

	u, err := url.Parse(otpURL)
	if err != nil {
		t.Fatalf("generated URL does not parse: %v", err)
	}
	if u.Scheme != "otpauth" {
		t.Errorf("expected otpauth scheme, got %q", u.Scheme)
	}
	if u.Query().Get("issuer") != "clinic-api" {
		t.Errorf("unexpected issuer %q", u.Query().Get("issuer"))
	}
	if u.Query().Get("secret") == "" {
		t.Error("expected a secret parameter")
	}
}

func TestGenerateOTPURL_UniqueSecrets(t *testing.T) {
	first, err := auth.GenerateOTPURL("clinic-api", "staff@clinic.test")
	if err != nil {
		t.Fatalf("GenerateOTPURL returned error: %v", err)
	}
	second, err := auth.GenerateOTPURL("clinic-api", "staff@clinic.test")
	if err != nil {
		t.Fatalf("GenerateOTPURL returned error: %v", err)
	}

	if secretParam(t, first) == secretParam(t, second) {
		t.Error("two enrollments must not share a secret")
	}
}

func TestGenerateOTPURL_VerifyRoundTrip(t *testing.T) {
	v := auth.NewTOTPVerifier()

	otpURL, err := auth.GenerateOTPURL("clinic-api", "staff@clinic.test")
	if err != nil {
		t.Fatalf("GenerateOTPURL returned error: %v", err)
	}

	code := totpCode(t, secretParam(t, otpURL), 0, v.Digits)

	ok, err := v.Verify(otpURL, code)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Error("expected a code from the generated enrollment to verify")
	}
}
