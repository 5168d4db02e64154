package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// resetTokenTTL vigencia de un token de reseteo de contraseña.
const resetTokenTTL = time.Hour

// ResetTokenStore tokens de reseteo de contraseña de un solo uso con TTL.
// Estado explícito e inyectado, con reloj reemplazable.
type ResetTokenStore struct {
	mu     sync.Mutex
	tokens map[string]resetTokenInfo
	now    func() time.Time
}

type resetTokenInfo struct {
	userID  string
	expires time.Time
}

// NewResetTokenStore construye el store con el reloj del sistema.
func NewResetTokenStore() *ResetTokenStore {
	return NewResetTokenStoreWithClock(time.Now)
}

// NewResetTokenStoreWithClock permite inyectar el reloj (tests).
func NewResetTokenStoreWithClock(now func() time.Time) *ResetTokenStore {
	return &ResetTokenStore{tokens: make(map[string]resetTokenInfo), now: now}
}

// Create emite un token para el usuario, válido una hora.
func (s *ResetTokenStore) Create(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.New().String()
	s.tokens[token] = resetTokenInfo{userID: userID, expires: s.now().Add(resetTokenTTL)}
	return token
}

// Consume invalida el token y devuelve el userID asociado. Un token expirado o
// desconocido devuelve "" (el token se destruye igual: un solo intento).
func (s *ResetTokenStore) Consume(token string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.tokens[token]
	if !ok {
		return ""
	}
	delete(s.tokens, token)
	if info.expires.Before(s.now()) {
		return ""
	}
	return info.userID
}

// PurgeExpired elimina tokens vencidos. Lo invoca el scheduler periódicamente.
func (s *ResetTokenStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	purged := 0
	for token, info := range s.tokens {
		if info.expires.Before(now) {
			delete(s.tokens, token)
			purged++
		}
	}
	return purged
}
