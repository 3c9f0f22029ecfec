package domain

import "time"

// Account representa una cuenta registrada con credenciales locales.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Verified     bool      `json:"verified"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// AccountPatch agrupa los cambios opcionales de perfil. Un campo nil no se modifica.
type AccountPatch struct {
	FullName     *string
	Email        *string
	PasswordHash *string
}

// Empty indica si el patch no trae ningun cambio.
func (p AccountPatch) Empty() bool {
	return p.FullName == nil && p.Email == nil && p.PasswordHash == nil
}

// AccountStatus resume existencia y verificacion de una cuenta.
type AccountStatus struct {
	Exists   bool `json:"exists"`
	Verified bool `json:"verified"`
}
