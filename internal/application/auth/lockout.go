package auth

import (
	"sync"
	"time"
)

// LockoutStore registra intentos fallidos de login por usuario y aplica un
// bloqueo progresivo. Es estado explícito e inyectado (no un singleton de
// proceso): el reloj es reemplazable para poder probar la expiración.
type LockoutStore struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	now      func() time.Time
}

type attemptInfo struct {
	count     int
	lockUntil time.Time
}

// Umbrales de bloqueo progresivo: 5 fallos → 1 min, 10 → 10 min, 15 → 30 min.
const (
	lockoutTier1Count = 5
	lockoutTier2Count = 10
	lockoutTier3Count = 15

	lockoutTier1 = 1 * time.Minute
	lockoutTier2 = 10 * time.Minute
	lockoutTier3 = 30 * time.Minute
)

// NewLockoutStore construye el store con el reloj del sistema.
func NewLockoutStore() *LockoutStore {
	return NewLockoutStoreWithClock(time.Now)
}

// NewLockoutStoreWithClock permite inyectar el reloj (tests).
func NewLockoutStoreWithClock(now func() time.Time) *LockoutStore {
	return &LockoutStore{attempts: make(map[string]*attemptInfo), now: now}
}

// IsLocked indica si el usuario está bloqueado y cuánto falta para el desbloqueo.
func (s *LockoutStore) IsLocked(userID string) (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.attempts[userID]
	if !ok {
		return false, 0
	}
	if remaining := info.lockUntil.Sub(s.now()); remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// RecordFailure anota un intento fallido y extiende el bloqueo si se cruza un umbral.
func (s *LockoutStore) RecordFailure(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.attempts[userID]
	if !ok {
		info = &attemptInfo{}
		s.attempts[userID] = info
	}
	info.count++

	var delay time.Duration
	switch {
	case info.count >= lockoutTier3Count:
		delay = lockoutTier3
	case info.count >= lockoutTier2Count:
		delay = lockoutTier2
	case info.count >= lockoutTier1Count:
		delay = lockoutTier1
	}
	if delay > 0 {
		info.lockUntil = s.now().Add(delay)
	}
}

// Clear borra el contador tras un login correcto.
func (s *LockoutStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, userID)
}

// PurgeExpired elimina registros cuyo bloqueo ya venció y sin fallos recientes
// relevantes. Lo invoca el scheduler periódicamente.
func (s *LockoutStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	purged := 0
	for id, info := range s.attempts {
		if !info.lockUntil.IsZero() && info.lockUntil.Before(now) {
			delete(s.attempts, id)
			purged++
		}
	}
	return purged
}
