package dto

// LoginForm is the body of POST /auth/login
type LoginForm struct {
	Username string `form:"username" label:"Usuário" validate:"required"`
	Password string `form:"password" label:"Senha" validate:"required"`
	Remember string `form:"remember"` // checkbox, sent as "on" or "1" when ticked
}

// RememberMe reports whether the "remember me" box was ticked
func (f LoginForm) RememberMe() bool {
	switch f.Remember {
	case "", "0", "false", "off":
		return false
	}
	return true
}

// RegisterForm is the body of POST /auth/register
type RegisterForm struct {
	Username        string `form:"username" label:"Usuário" validate:"required,max=80"`
	Email           string `form:"email" label:"Email" validate:"required,email,max=120"`
	FullName        string `form:"nome_completo" label:"Nome completo" validate:"max=200"`
	Password        string `form:"password" label:"Senha" validate:"required"`
	PasswordConfirm string `form:"password_confirm" label:"Confirmação de senha" validate:"required"`
}

// ChangePasswordForm is the body of POST /auth/password
type ChangePasswordForm struct {
	CurrentPassword string `form:"current_password" label:"Senha atual" validate:"required"`
	NewPassword     string `form:"new_password" label:"Nova senha" validate:"required"`
	PasswordConfirm string `form:"password_confirm" label:"Confirmação de senha" validate:"required"`
}
