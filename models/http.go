package models

// LoginRequest is the credentials payload accepted by the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceOS string `json:"device_os,omitempty"`
}

// LogoutRequest identifies the session token to invalidate.
type LogoutRequest struct {
	Token string `json:"token"`
}

// ResetPasswordInitRequest starts the password-reset flow for an email.
type ResetPasswordInitRequest struct {
	Email string `json:"email"`
}

// StatusResponse is the generic success/message envelope returned by
// endpoints that have no entity body.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
