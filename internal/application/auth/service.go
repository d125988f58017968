package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rentpal/rentpal-api/internal/domain"
	"github.com/rentpal/rentpal-api/internal/infrastructure/google"
	"github.com/rentpal/rentpal-api/internal/pkg/id"
	"github.com/rentpal/rentpal-api/internal/pkg/nonce"
	"github.com/rentpal/rentpal-api/internal/pkg/otp"
	"golang.org/x/crypto/bcrypt"
)

const (
	phoneNumberLength = 11
	stateLifetime     = 10 * time.Minute
)

// Service is the authentication orchestrator: password signup/login, OTP
// verification, password reset, and the federated Google flow.
type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	VerifyOTP(ctx context.Context, email, code string) (string, error)
	ResetPassword(ctx context.Context, email, newPassword, confirmPassword string) error
	StartFederatedFlow(ctx context.Context, accountType string) (string, error)
	CompleteFederatedFlow(ctx context.Context, state, code string) (string, error)
	CurrentUser(ctx context.Context, email string) (*domain.User, error)
	CompletePhoneNumber(ctx context.Context, email, phone string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, email, hash string, now time.Time) error
	UpdatePhone(ctx context.Context, email, phone string, now time.Time) error
}

type otpStore interface {
	Insert(ctx context.Context, o *domain.OTP) error
	ConsumeLatest(ctx context.Context, email, code string, now time.Time) error
}

type stateStore interface {
	Put(ctx context.Context, s *domain.OAuthState) error
	Consume(ctx context.Context, state string) (*domain.OAuthState, error)
}

type mailer interface {
	SendEmail(to, subject, textBody, htmlBody string) error
}

type tokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
}

type identityProvider interface {
	AuthorizeURL(state string) string
	Exchange(ctx context.Context, code string) (*google.Profile, error)
}

type service struct {
	users    userStore
	otps     otpStore
	states   stateStore
	mailer   mailer
	tokens   tokenIssuer
	identity identityProvider
}

type ServiceDeps struct {
	UserRepo  userStore
	OTPRepo   otpStore
	StateRepo stateStore
	Mailer    mailer
	Tokens    tokenIssuer
	Identity  identityProvider
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:    deps.UserRepo,
		otps:     deps.OTPRepo,
		states:   deps.StateRepo,
		mailer:   deps.Mailer,
		tokens:   deps.Tokens,
		identity: deps.Identity,
	}
}

// Register creates a user pending OTP verification. No token is issued here;
// the first token comes from VerifyOTP.
func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	accountType, err := domain.ParseAccountType(req.AccountType)
	if err != nil {
		return nil, fmt.Errorf("account type %q: %w", req.AccountType, domain.ErrBadRequest)
	}
	if !validPhone(req.PhoneNumber) {
		return nil, fmt.Errorf("phone number must be %d digits: %w", phoneNumberLength, domain.ErrInvalidPhoneNumber)
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("register: %w", domain.ErrEmailExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashStr := string(hash)
	now := time.Now().UTC()
	u := &domain.User{
		ID:           id.New(),
		FullName:     req.FullName,
		Email:        req.Email,
		PhoneNumber:  &req.PhoneNumber,
		AccountType:  accountType,
		Subscribed:   req.Subscribed,
		PasswordHash: &hashStr,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	// A failed send leaves the user row in place; the error is surfaced so
	// the client knows no code is on its way.
	if err := s.sendOTP(ctx, u.Email); err != nil {
		slog.Error("otp delivery failed after signup", "email", u.Email, "err", err)
		return nil, err
	}
	return u, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password return the identical error so accounts cannot be enumerated.
func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", domain.ErrInvalidCredentials
	}
	if u.PasswordHash == nil {
		return "", domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)) != nil {
		return "", domain.ErrInvalidCredentials
	}
	return s.tokens.Issue(u.Email, 0)
}

// VerifyOTP consumes the most recent unused code for the email and issues a
// token on success.
func (s *service) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	if err := s.otps.ConsumeLatest(ctx, email, code, time.Now().UTC()); err != nil {
		return "", err
	}
	return s.tokens.Issue(email, 0)
}

func (s *service) ResetPassword(ctx context.Context, email, newPassword, confirmPassword string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("reset password: %w", domain.ErrEmailNotFound)
	}
	if newPassword != confirmPassword {
		return domain.ErrPasswordMismatch
	}
	if u.PasswordHash != nil &&
		bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(newPassword)) == nil {
		return domain.ErrPasswordUnchanged
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, email, string(hash), time.Now().UTC())
}

// StartFederatedFlow validates the account-type hint, stores a one-shot
// state nonce server-side, and returns the provider redirect URL.
func (s *service) StartFederatedFlow(ctx context.Context, accountType string) (string, error) {
	at, err := domain.ParseAccountType(accountType)
	if err != nil {
		return "", fmt.Errorf("account type %q: %w", accountType, domain.ErrBadRequest)
	}
	n, err := nonce.New()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	st := &domain.OAuthState{
		State:       n,
		AccountType: at,
		CreatedAt:   now,
		ExpiresAt:   now.Add(stateLifetime),
	}
	if err := s.states.Put(ctx, st); err != nil {
		return "", err
	}
	return s.identity.AuthorizeURL(n), nil
}

// CompleteFederatedFlow is both login and implicit signup, keyed solely on
// the provider-reported email.
func (s *service) CompleteFederatedFlow(ctx context.Context, state, code string) (string, error) {
	st, err := s.states.Consume(ctx, state)
	if err != nil {
		return "", fmt.Errorf("unknown oauth state: %w", domain.ErrOAuthExchange)
	}
	if time.Now().UTC().After(st.ExpiresAt) {
		return "", fmt.Errorf("oauth state expired: %w", domain.ErrOAuthExchange)
	}

	profile, err := s.identity.Exchange(ctx, code)
	if err != nil {
		return "", err
	}

	if _, err := s.users.GetByEmail(ctx, profile.Email); err != nil {
		now := time.Now().UTC()
		u := &domain.User{
			ID:          id.New(),
			FullName:    profile.Name,
			Email:       profile.Email,
			PhoneNumber: profile.PhoneNumber,
			AccountType: st.AccountType,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return "", err
		}
	}
	return s.tokens.Issue(profile.Email, 0)
}

// CurrentUser resolves a validated token subject to its user row.
func (s *service) CurrentUser(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", domain.ErrUnauthorized)
	}
	return u, nil
}

// CompletePhoneNumber fills in the phone number for accounts created through
// a federated flow that did not report one.
func (s *service) CompletePhoneNumber(ctx context.Context, email, phone string) error {
	if !validPhone(phone) {
		return fmt.Errorf("phone number must be %d digits: %w", phoneNumberLength, domain.ErrInvalidPhoneNumber)
	}
	return s.users.UpdatePhone(ctx, email, phone, time.Now().UTC())
}

func (s *service) sendOTP(ctx context.Context, email string) error {
	code, err := otp.New()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	o := &domain.OTP{
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.OTPLifetime),
	}
	if err := s.otps.Insert(ctx, o); err != nil {
		return err
	}
	text := fmt.Sprintf("Your RentPal verification code is %s. It expires in 5 minutes.", code)
	html := fmt.Sprintf("<p>Your RentPal verification code is <strong>%s</strong>.</p><p>It expires in 5 minutes.</p>", code)
	return s.mailer.SendEmail(email, "Verify your RentPal account", text, html)
}

func validPhone(phone string) bool {
	if len(phone) != phoneNumberLength {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
