package dto

import "github.com/hongminglow/levelup-be/internal/models"

type SignInRequest struct {
	Credential string `json:"credential"`
}

type SignInResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}
