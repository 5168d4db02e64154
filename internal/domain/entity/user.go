package entity

import "time"

// User representa un usuario de la aplicación.
type User struct {
	ID           string
	Username     string
	Email        string
	Name         string
	PasswordHash string // bcrypt hash, nunca plano después de persistir
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
