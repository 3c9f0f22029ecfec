package domain

import "time"

// OtpRecord es el codigo de verificacion pendiente de un email, guardado solo como hash.
type OtpRecord struct {
	Email     string    `json:"email"`
	OtpHash   string    `json:"otp_hash"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExpiredAt reporta si el registro ya vencio en el instante dado.
func (r OtpRecord) ExpiredAt(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}
