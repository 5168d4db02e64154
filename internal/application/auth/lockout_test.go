package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-app/internal/application/auth"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// fakeClock reloj controlable para probar expiraciones sin dormir.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func failN(s *auth.LockoutStore, userID string, n int) {
	for i := 0; i < n; i++ {
		s.RecordFailure(userID)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests LockoutStore — bloqueo progresivo
// ──────────────────────────────────────────────────────────────────────────────

// Menos de 5 fallos no bloquea.
func TestLockout_CuatroFallosNoBloquea(t *testing.T) {
	clock := newFakeClock()
	s := auth.NewLockoutStoreWithClock(clock.Now)

	failN(s, "u1", 4)
	locked, _ := s.IsLocked("u1")
	assert.False(t, locked, "4 fallos no deben bloquear")
}

// 5 fallos → bloqueo de 1 minuto.
func TestLockout_CincoFallosBloqueaUnMinuto(t *testing.T) {
	clock := newFakeClock()
	s := auth.NewLockoutStoreWithClock(clock.Now)

	failN(s, "u1", 5)
	locked, remaining := s.IsLocked("u1")
	require.True(t, locked, "5 fallos deben bloquear")
	assert.Equal(t, time.Minute, remaining)

	clock.Advance(time.Minute + time.Second)
	locked, _ = s.IsLocked("u1")
	assert.False(t, locked, "pasado el minuto el bloqueo expira solo")
}

// 10 fallos → 10 minutos; 15 fallos → 30 minutos.
func TestLockout_UmbralesProgresivos(t *testing.T) {
	clock := newFakeClock()
	s := auth.NewLockoutStoreWithClock(clock.Now)

	failN(s, "u1", 10)
	locked, remaining := s.IsLocked("u1")
	require.True(t, locked)
	assert.Equal(t, 10*time.Minute, remaining, "10 fallos → 10 minutos")

	failN(s, "u1", 5) // total 15
	locked, remaining = s.IsLocked("u1")
	require.True(t, locked)
	assert.Equal(t, 30*time.Minute, remaining, "15 fallos → 30 minutos")
}

// Clear borra contador y bloqueo (login correcto).
func TestLockout_ClearDesbloquea(t *testing.T) {
	clock := newFakeClock()
	s := auth.NewLockoutStoreWithClock(clock.Now)

	failN(s, "u1", 5)
	s.Clear("u1")
	locked, _ := s.IsLocked("u1")
	assert.False(t, locked)

	// El contador también vuelve a cero: hacen falta otros 5 fallos.
	failN(s, "u1", 4)
	locked, _ = s.IsLocked("u1")
	assert.False(t, locked)
}

// El bloqueo es por usuario, no global.
func TestLockout_PorUsuario(t *testing.T) {
	clock := newFakeClock()
	s := auth.NewLockoutStoreWithClock(clock.Now)

	failN(s, "u1", 5)
	locked, _ := s.IsLocked("u2")
	assert.False(t, locked, "el bloqueo de u1 no afecta a u2")
}

func TestLockout_PurgeExpiredLimpiaVencidos(t *testing.T) {
	clock := newFakeClock()
	s := auth.NewLockoutStoreWithClock(clock.Now)

	failN(s, "u1", 5)
	failN(s, "u2", 15)

	clock.Advance(2 * time.Minute) // u1 venció, u2 sigue bloqueado
	assert.Equal(t, 1, s.PurgeExpired())

	locked, _ := s.IsLocked("u2")
	assert.True(t, locked, "u2 sigue dentro de sus 30 minutos")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ResetTokenStore — tokens de un solo uso con TTL
// ──────────────────────────────────────────────────────────────────────────────

func TestResetToken_ConsumeUnaSolaVez(t *testing.T) {
	clock := newFakeClock()
	s := auth.NewResetTokenStoreWithClock(clock.Now)

	token := s.Create("u1")
	require.NotEmpty(t, token)

	assert.Equal(t, "u1", s.Consume(token), "primer consumo devuelve el usuario")
	assert.Equal(t, "", s.Consume(token), "segundo consumo del mismo token falla")
}

func TestResetToken_ExpiraEnUnaHora(t *testing.T) {
	clock := newFakeClock()
	s := auth.NewResetTokenStoreWithClock(clock.Now)

	token := s.Create("u1")
	clock.Advance(time.Hour + time.Minute)

	assert.Equal(t, "", s.Consume(token), "token vencido no es válido")
	assert.Equal(t, "", s.Consume(token), "y además quedó destruido")
}

func TestResetToken_DesconocidoDevuelveVacio(t *testing.T) {
	s := auth.NewResetTokenStoreWithClock(newFakeClock().Now)
	assert.Equal(t, "", s.Consume("no-existe"))
}

func TestResetToken_PurgeExpired(t *testing.T) {
	clock := newFakeClock()
	s := auth.NewResetTokenStoreWithClock(clock.Now)

	s.Create("u1")
	clock.Advance(2 * time.Hour)
	vigente := s.Create("u2")

	assert.Equal(t, 1, s.PurgeExpired())
	assert.Equal(t, "u2", s.Consume(vigente), "el token vigente sobrevive a la purga")
}
