package domain

import "time"

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // password hash, never serialized
	CreatedAt time.Time `json:"created_at"`
}

// RegisterUserDTO binds the registration form fields.
type RegisterUserDTO struct {
	Username string `form:"username" binding:"required,min=3,max=50"`
	Password string `form:"password" binding:"required,min=6,max=100"`
}

// LoginUserDTO binds the OAuth2-style password form posted to /token.
type LoginUserDTO struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type TokenResponseDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
