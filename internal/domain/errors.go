package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking
// infrastructure details; anything not classified here is reported to clients
// as an opaque internal error.
var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrEmailNotFound      = errors.New("email not found")
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordUnchanged  = errors.New("password is the same as the old password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrOTPInvalid         = errors.New("invalid otp")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPAlreadyUsed     = errors.New("otp already used")
	ErrDelivery           = errors.New("email delivery failed")
	ErrOAuthExchange      = errors.New("oauth exchange failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrBadRequest         = errors.New("bad request")
	ErrStorage            = errors.New("storage failure")
)
