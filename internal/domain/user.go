package domain

import "time"

// AccountType is the closed classification of a user. It is validated once at
// the boundary and consumed as a typed value internally.
type AccountType string

const (
	AccountTypeUser     AccountType = "User"
	AccountTypeLandlord AccountType = "Landlord"
	AccountTypeAgent    AccountType = "Agent"
)

// ParseAccountType checks a raw account type against the closed enum.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case AccountTypeUser, AccountTypeLandlord, AccountTypeAgent:
		return AccountType(s), nil
	default:
		return "", ErrBadRequest
	}
}

// CanPostListings reports whether this account type may publish listings.
func (a AccountType) CanPostListings() bool {
	return a == AccountTypeLandlord || a == AccountTypeAgent
}

type User struct {
	ID          string      `json:"id"`
	FullName    string      `json:"full_name"`
	Email       string      `json:"email"`
	PhoneNumber *string     `json:"phone_number"`
	AccountType AccountType `json:"account_type"`
	Subscribed  bool        `json:"subscribed"`
	// Nil when the account was created through a federated flow and no
	// password has been set yet.
	PasswordHash *string   `json:"-"`
	CreatedAt    time.Time `json:"created"`
	UpdatedAt    time.Time `json:"updated"`
}

type CreateUserRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	AccountType string `json:"account_type" validate:"required"`
	Subscribed  bool   `json:"subscribed"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}
