package auth

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/tu-usuario/stock-app/internal/application/dto"
	"github.com/tu-usuario/stock-app/internal/domain"
	"github.com/tu-usuario/stock-app/internal/domain/entity"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
	"github.com/tu-usuario/stock-app/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// ResetNotifier entrega el enlace de reseteo al usuario. El transporte real
// (correo) queda fuera; la implementación por defecto lo registra en el log.
type ResetNotifier interface {
	PasswordReset(ctx context.Context, user *entity.User, resetURL string) error
}

// AuthUseCase login con bloqueo progresivo y reseteo de contraseña por token.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	lockouts    *LockoutStore
	resetTokens *ResetTokenStore
	notifier    ResetNotifier
	jwtCfg      JWTConfig
	baseURL     string
	log         zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	lockouts *LockoutStore,
	resetTokens *ResetTokenStore,
	notifier ResetNotifier,
	jwtCfg JWTConfig,
	baseURL string,
	log zerolog.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:    userRepo,
		lockouts:    lockouts,
		resetTokens: resetTokens,
		notifier:    notifier,
		jwtCfg:      jwtCfg,
		baseURL:     baseURL,
		log:         log,
	}
}

// Login verifica credenciales, aplica el bloqueo progresivo y genera el JWT.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.FindByLogin(in.Login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// No registramos fallo contra un id inexistente para no poblar el
		// store con claves arbitrarias del atacante.
		return nil, domain.ErrUnauthorized
	}

	if locked, _ := uc.lockouts.IsLocked(user.ID); locked {
		return nil, domain.ErrLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		uc.lockouts.RecordFailure(user.ID)
		return nil, domain.ErrUnauthorized
	}
	uc.lockouts.Clear(user.ID)

	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Name, user.Email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User: dto.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Name:     user.Name,
		},
	}, nil
}

// ForgotPassword emite un token de reseteo y lo entrega vía el notifier.
// Siempre devuelve nil para cuentas inexistentes: la respuesta no revela si el
// email está registrado.
func (uc *AuthUseCase) ForgotPassword(ctx context.Context, in dto.ForgotPasswordRequest) error {
	if in.Email == "" {
		return domain.ErrInvalidInput
	}
	user, err := uc.userRepo.FindByEmail(in.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	token := uc.resetTokens.Create(user.ID)
	resetURL := uc.baseURL + "/reset?token=" + token
	if err := uc.notifier.PasswordReset(ctx, user, resetURL); err != nil {
		// La entrega es mejor-esfuerzo; el token ya existe y expira solo.
		uc.log.Error().Err(err).Str("user_id", user.ID).Msg("entrega de enlace de reseteo")
	}
	return nil
}

// ResetPassword consume el token (un solo uso) y guarda el nuevo hash bcrypt.
func (uc *AuthUseCase) ResetPassword(in dto.ResetPasswordRequest) error {
	if in.Token == "" || len(in.Password) < 8 {
		return domain.ErrInvalidInput
	}
	userID := uc.resetTokens.Consume(in.Token)
	if userID == "" {
		return domain.ErrTokenInvalid
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := uc.userRepo.UpdatePasswordHash(userID, string(hash)); err != nil {
		return err
	}
	uc.lockouts.Clear(userID)
	return nil
}
