package domain

import "time"

// OTPLifetime is how long a stored code stays verifiable.
const OTPLifetime = 5 * time.Minute

// OTP is one row of the append-only one-time-password table. Rows are never
// updated except for the single false→true flip of Used on successful
// verification, and never deleted by this service.
type OTP struct {
	ID        int64     `json:"-"`
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"is_used"`
}

// OAuthState is the server-side record of one in-flight federated login.
// The state nonce doubles as the CSRF check for the provider callback; the
// account-type hint travels here instead of inside the state parameter.
type OAuthState struct {
	State       string
	AccountType AccountType
	CreatedAt   time.Time
	ExpiresAt   time.Time
}
