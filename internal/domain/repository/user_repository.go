package repository

import "github.com/tu-usuario/stock-app/internal/domain/entity"

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	GetByID(id string) (*entity.User, error)
	// FindByLogin busca por username o email indistintamente (la pantalla de
	// login acepta ambos).
	FindByLogin(login string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	UpdatePasswordHash(id, hash string) error
}
