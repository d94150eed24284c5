package dto

// RegisterRequest payload for new portal accounts.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=64"`
	Email       string `json:"email" validate:"required,email,max=256"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"max=128"`
	Phone       string `json:"phone" validate:"max=32"`
}

// TokenRequest is the password grant of POST /connect/token. Accepts JSON or form bodies.
type TokenRequest struct {
	GrantType string `json:"grant_type" form:"grant_type"`
	Username  string `json:"username" form:"username"`
	Password  string `json:"password" form:"password"`
}

// TokenResponse follows the OAuth2 token response shape.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// RegisterResponse returns the new AppUser together with an access token.
type RegisterResponse struct {
	User  AppUserDTO    `json:"user"`
	Token TokenResponse `json:"token"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}
