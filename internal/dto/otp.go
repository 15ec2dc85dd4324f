package dto

import "time"

type SendOTPRequest struct {
	Email string `json:"email"`
}

type SendOTPResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type VerifyOTPResponse struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}
