package dto

import "github.com/noah-isme/kiosk-complaint-api/internal/models"

// PhoneCodeRequest starts phone verification.
type PhoneCodeRequest struct {
	Name  string `json:"name" validate:"required,notblank"`
	Phone string `json:"phone" validate:"required"`
}

// PhoneConfirmRequest completes phone verification.
type PhoneConfirmRequest struct {
	Code string `json:"code" validate:"required,numeric"`
}

// ElevateRequest carries the administrator shared secret.
type ElevateRequest struct {
	Password string `json:"password"`
}

// SessionOpened is returned when a terminal opens a kiosk session.
type SessionOpened struct {
	Handle  string         `json:"handle"`
	Header  string         `json:"header"`
	Session models.Session `json:"session"`
}
