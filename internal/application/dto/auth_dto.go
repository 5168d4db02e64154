package dto

// LoginRequest credenciales de acceso (username o email + password).
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginResponse token y usuario tras un login correcto.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse representación pública de un usuario (sin hash).
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// ForgotPasswordRequest solicitud de token de reseteo.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest consumo de token de reseteo.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}
