// Package notify implementa las notificaciones salientes. El despliegue actual
// no tiene servidor de correo: las notificaciones se registran en el log
// estructurado y quedan listas para cambiarse por un transporte real sin tocar
// los casos de uso.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tu-usuario/stock-app/internal/application/auth"
	"github.com/tu-usuario/stock-app/internal/application/usecase"
	"github.com/tu-usuario/stock-app/internal/domain/entity"
)

var (
	_ usecase.Notifier   = (*LogNotifier)(nil)
	_ auth.ResetNotifier = (*LogNotifier)(nil)
)

// LogNotifier notificador respaldado por zerolog.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier construye el notificador de log.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// OrderCompleted se dispara cuando una reconciliación deja la orden completa.
func (n *LogNotifier) OrderCompleted(ctx context.Context, order *entity.PurchaseOrder) error {
	n.log.Info().
		Str("order_id", order.ID).
		Str("supplier", order.Supplier).
		Str("creator", order.Creator).
		Str("creator_email", order.CreatorEmail).
		Msg("orden completamente recibida")
	return nil
}

// PasswordReset entrega el enlace de reseteo. En este transporte el enlace va
// al log del servidor; nunca se devuelve en la respuesta HTTP.
func (n *LogNotifier) PasswordReset(ctx context.Context, user *entity.User, resetURL string) error {
	n.log.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Str("reset_url", resetURL).
		Msg("enlace de reseteo de contraseña generado")
	return nil
}
