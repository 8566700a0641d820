package dto

import "github.com/vibast-solutions/ms-go-accounts/app/entity"

type SignupResult struct {
	Account           *entity.Account
	VerificationToken string
}

type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
}
