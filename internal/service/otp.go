package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	otpDigits = 6
	// DefaultOtpTTL es la vigencia de un codigo desde su emision.
	DefaultOtpTTL = time.Hour
)

var otpSpace = big.NewInt(1000000)

// generateOTPCode devuelve un codigo uniforme de 6 digitos con ceros a la izquierda.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func isValidOTPCode(code string) bool {
	if len(code) != otpDigits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// otpMessage arma el correo que acompana a cada codigo.
type otpMessage struct {
	subject string
	format  string
}

var (
	verificationMessage = otpMessage{
		subject: "Verification Code",
		format:  "Your verification code is: %s\nThis code is valid for %s. Use this code to verify your account.\n",
	}
	resendMessage = otpMessage{
		subject: "New Verification Code",
		format:  "Your new verification code is: %s\nThis code is valid for %s.\n",
	}
)

func (m otpMessage) body(code string, ttl time.Duration) string {
	return fmt.Sprintf(m.format, code, humanDuration(ttl))
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
