package service

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateOTPCode_Format(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := generateOTPCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !isValidOTPCode(code) {
			t.Fatalf("invalid code %q", code)
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 150 {
		t.Fatalf("codes look non-random: %d distinct of 200", len(seen))
	}
}

func TestIsValidOTPCode(t *testing.T) {
	cases := map[string]bool{
		"000123":  true,
		"482913":  true,
		"12345":   false,
		"1234567": false,
		"12a456":  false,
		"":        false,
		"١٢٣٤٥٦":  false,
	}
	for code, want := range cases {
		if got := isValidOTPCode(code); got != want {
			t.Fatalf("isValidOTPCode(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestOtpMessageBody(t *testing.T) {
	body := verificationMessage.body("000123", time.Hour)
	if !strings.Contains(body, "000123") || !strings.Contains(body, "1 hour") {
		t.Fatalf("unexpected body %q", body)
	}
	if got := humanDuration(90 * time.Minute); got != "90 minutes" {
		t.Fatalf("unexpected duration text %q", got)
	}
	if got := humanDuration(2 * time.Hour); got != "2 hours" {
		t.Fatalf("unexpected duration text %q", got)
	}
}
