// Package scheduler agrupa las tareas periódicas del servicio: purga de
// estado de auth expirado (bloqueos y tokens de reseteo) y un snapshot de
// alertas de stock bajo en el log.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tu-usuario/stock-app/internal/application/auth"
	"github.com/tu-usuario/stock-app/internal/application/usecase"
)

// Scheduler tareas programadas con cron.
type Scheduler struct {
	cron        *cron.Cron
	stockUC     *usecase.StockUseCase
	lockouts    *auth.LockoutStore
	resetTokens *auth.ResetTokenStore
	log         zerolog.Logger
}

// New construye el scheduler.
func New(stockUC *usecase.StockUseCase, lockouts *auth.LockoutStore, resetTokens *auth.ResetTokenStore, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		stockUC:     stockUC,
		lockouts:    lockouts,
		resetTokens: resetTokens,
		log:         log,
	}
}

// Start registra las tareas y arranca el cron.
func (s *Scheduler) Start() {
	s.log.Info().Msg("arrancando scheduler")

	// Cada 15 minutos: purga de bloqueos y tokens de reseteo expirados.
	if _, err := s.cron.AddFunc("*/15 * * * *", s.purgeAuthState); err != nil {
		s.log.Error().Err(err).Msg("no se pudo programar la purga de auth")
	}

	// Cada día a las 07:00: snapshot de alertas de stock bajo en el log.
	if _, err := s.cron.AddFunc("0 7 * * *", s.logLowStock); err != nil {
		s.log.Error().Err(err).Msg("no se pudo programar el snapshot de alertas")
	}

	s.cron.Start()
}

// Stop detiene el cron; las tareas en curso terminan.
func (s *Scheduler) Stop() {
	s.log.Info().Msg("deteniendo scheduler")
	s.cron.Stop()
}

func (s *Scheduler) purgeAuthState() {
	locks := s.lockouts.PurgeExpired()
	tokens := s.resetTokens.PurgeExpired()
	if locks > 0 || tokens > 0 {
		s.log.Info().Int("lockouts", locks).Int("reset_tokens", tokens).Msg("estado de auth expirado purgado")
	}
}

func (s *Scheduler) logLowStock() {
	alerts, err := s.stockUC.ListLowStock()
	if err != nil {
		s.log.Error().Err(err).Msg("snapshot de alertas de stock bajo")
		return
	}
	s.log.Info().Int("alerts", len(alerts)).Msg("referencias en o bajo su umbral de alerta")
	for _, a := range alerts {
		s.log.Warn().
			Str("ref", a.Ref).
			Str("supplier", a.Supplier).
			Int("on_hand", a.QuantityOnHand).
			Int("minimum", a.QuantityMinimum).
			Int("on_order", a.QuantityOnOrder).
			Msg("stock bajo")
	}
}
