package auth

import (
	"context"
	"testing"
	"time"

	"github.com/rentpal/rentpal-api/internal/domain"
	"github.com/rentpal/rentpal-api/internal/infrastructure/google"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) UpdatePassword(ctx context.Context, email, hash string, now time.Time) error {
	return m.Called(ctx, email, hash, now).Error(0)
}
func (m *mockUserStore) UpdatePhone(ctx context.Context, email, phone string, now time.Time) error {
	return m.Called(ctx, email, phone, now).Error(0)
}

type mockOTPStore struct{ mock.Mock }

func (m *mockOTPStore) Insert(ctx context.Context, o *domain.OTP) error {
	return m.Called(ctx, o).Error(0)
}
func (m *mockOTPStore) ConsumeLatest(ctx context.Context, email, code string, now time.Time) error {
	return m.Called(ctx, email, code, now).Error(0)
}

type mockStateStore struct{ mock.Mock }

func (m *mockStateStore) Put(ctx context.Context, s *domain.OAuthState) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockStateStore) Consume(ctx context.Context, state string) (*domain.OAuthState, error) {
	args := m.Called(ctx, state)
	if s, _ := args.Get(0).(*domain.OAuthState); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, textBody, htmlBody string) error {
	return m.Called(to, subject, textBody, htmlBody).Error(0)
}

type mockTokenIssuer struct{ mock.Mock }

func (m *mockTokenIssuer) Issue(subject string, ttl time.Duration) (string, error) {
	args := m.Called(subject, ttl)
	return args.String(0), args.Error(1)
}

type mockIdentityProvider struct{ mock.Mock }

func (m *mockIdentityProvider) AuthorizeURL(state string) string {
	return m.Called(state).String(0)
}
func (m *mockIdentityProvider) Exchange(ctx context.Context, code string) (*google.Profile, error) {
	args := m.Called(ctx, code)
	if p, _ := args.Get(0).(*google.Profile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- builder ---

func newService(us *mockUserStore, os *mockOTPStore, ss *mockStateStore, ml *mockMailer, ti *mockTokenIssuer, ip *mockIdentityProvider) Service {
	return NewService(ServiceDeps{
		UserRepo:  us,
		OTPRepo:   os,
		StateRepo: ss,
		Mailer:    ml,
		Tokens:    ti,
		Identity:  ip,
	})
}

func hashOf(t *testing.T, password string) *string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	s := string(h)
	return &s
}

func validSignup() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		FullName:    "Ada Lovelace",
		Email:       "a@x.com",
		PhoneNumber: "00000000000",
		AccountType: "User",
		Password:    "pw1pw1pw1",
	}
}

// --- Register ---

func TestRegister_InvalidPhoneNumber(t *testing.T) {
	svc := newService(nil, nil, nil, nil, nil, nil)
	req := validSignup()
	req.PhoneNumber = "12345"

	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidPhoneNumber)
}

func TestRegister_InvalidAccountType(t *testing.T) {
	svc := newService(nil, nil, nil, nil, nil, nil)
	req := validSignup()
	req.AccountType = "Admin"

	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestRegister_EmailExists(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{Email: "a@x.com"}, nil)

	svc := newService(us, nil, nil, nil, nil, nil)
	_, err := svc.Register(context.Background(), validSignup())
	assert.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestRegister_Success_OneUserOneOTPOneEmail(t *testing.T) {
	us := &mockUserStore{}
	os := &mockOTPStore{}
	ml := &mockMailer{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound)
	us.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "a@x.com" && u.AccountType == domain.AccountTypeUser &&
			u.PasswordHash != nil && u.ID != ""
	})).Return(nil).Once()
	os.On("Insert", mock.Anything, mock.MatchedBy(func(o *domain.OTP) bool {
		return o.Email == "a@x.com" && len(o.Code) == 6 &&
			o.ExpiresAt.Sub(o.CreatedAt) == domain.OTPLifetime
	})).Return(nil).Once()
	ml.On("SendEmail", "a@x.com", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	svc := newService(us, os, nil, ml, nil, nil)
	u, err := svc.Register(context.Background(), validSignup())

	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	us.AssertExpectations(t)
	os.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestRegister_DeliveryFailureSurfaced(t *testing.T) {
	us := &mockUserStore{}
	os := &mockOTPStore{}
	ml := &mockMailer{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound)
	us.On("Create", mock.Anything, mock.Anything).Return(nil)
	os.On("Insert", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", "a@x.com", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ErrDelivery)

	svc := newService(us, os, nil, ml, nil, nil)
	_, err := svc.Register(context.Background(), validSignup())

	// The user row stays; only the delivery error is reported.
	assert.ErrorIs(t, err, domain.ErrDelivery)
	us.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	us := &mockUserStore{}
	ti := &mockTokenIssuer{}
	us.On("GetByEmail", mock.Anything, "a@x.com").
		Return(&domain.User{Email: "a@x.com", PasswordHash: hashOf(t, "pw1")}, nil)
	ti.On("Issue", "a@x.com", time.Duration(0)).Return("tok", nil)

	svc := newService(us, nil, nil, nil, ti, nil)
	tok, err := svc.Login(context.Background(), "a@x.com", "pw1")

	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
}

func TestLogin_UnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "missing@x.com").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "a@x.com").
		Return(&domain.User{Email: "a@x.com", PasswordHash: hashOf(t, "pw1")}, nil)

	svc := newService(us, nil, nil, nil, nil, nil)

	_, errMissing := svc.Login(context.Background(), "missing@x.com", "pw1")
	_, errWrongPw := svc.Login(context.Background(), "a@x.com", "wrong")

	assert.ErrorIs(t, errMissing, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, domain.ErrInvalidCredentials)
	assert.Equal(t, errMissing.Error(), errWrongPw.Error())
}

func TestLogin_FederatedAccountWithoutPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").
		Return(&domain.User{Email: "a@x.com", PasswordHash: nil}, nil)

	svc := newService(us, nil, nil, nil, nil, nil)
	_, err := svc.Login(context.Background(), "a@x.com", "pw1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

// --- VerifyOTP ---

func TestVerifyOTP_Success(t *testing.T) {
	os := &mockOTPStore{}
	ti := &mockTokenIssuer{}
	os.On("ConsumeLatest", mock.Anything, "a@x.com", "123456", mock.Anything).Return(nil)
	ti.On("Issue", "a@x.com", time.Duration(0)).Return("tok", nil)

	svc := newService(nil, os, nil, nil, ti, nil)
	tok, err := svc.VerifyOTP(context.Background(), "a@x.com", "123456")

	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
}

func TestVerifyOTP_ErrorsPassThrough(t *testing.T) {
	for _, sentinel := range []error{domain.ErrOTPInvalid, domain.ErrOTPExpired, domain.ErrOTPAlreadyUsed} {
		os := &mockOTPStore{}
		os.On("ConsumeLatest", mock.Anything, "a@x.com", "123456", mock.Anything).Return(sentinel)

		svc := newService(nil, os, nil, nil, nil, nil)
		_, err := svc.VerifyOTP(context.Background(), "a@x.com", "123456")
		assert.ErrorIs(t, err, sentinel)
	}
}

// --- ResetPassword ---

func TestResetPassword_EmailNotFound(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "missing@x.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil, nil, nil)
	err := svc.ResetPassword(context.Background(), "missing@x.com", "new-pw", "new-pw")
	assert.ErrorIs(t, err, domain.ErrEmailNotFound)
}

func TestResetPassword_Mismatch(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").
		Return(&domain.User{Email: "a@x.com", PasswordHash: hashOf(t, "old-pw")}, nil)

	svc := newService(us, nil, nil, nil, nil, nil)
	err := svc.ResetPassword(context.Background(), "a@x.com", "new-pw", "other-pw")
	assert.ErrorIs(t, err, domain.ErrPasswordMismatch)
}

func TestResetPassword_Unchanged(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").
		Return(&domain.User{Email: "a@x.com", PasswordHash: hashOf(t, "same-pw")}, nil)

	svc := newService(us, nil, nil, nil, nil, nil)
	err := svc.ResetPassword(context.Background(), "a@x.com", "same-pw", "same-pw")
	assert.ErrorIs(t, err, domain.ErrPasswordUnchanged)
}

func TestResetPassword_Success(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").
		Return(&domain.User{Email: "a@x.com", PasswordHash: hashOf(t, "old-pw")}, nil)
	us.On("UpdatePassword", mock.Anything, "a@x.com", mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-pw11")) == nil
	}), mock.Anything).Return(nil).Once()

	svc := newService(us, nil, nil, nil, nil, nil)
	err := svc.ResetPassword(context.Background(), "a@x.com", "new-pw11", "new-pw11")

	require.NoError(t, err)
	us.AssertExpectations(t)
}

// --- Federated flow ---

func TestStartFederatedFlow_InvalidAccountType(t *testing.T) {
	svc := newService(nil, nil, nil, nil, nil, nil)
	_, err := svc.StartFederatedFlow(context.Background(), "Superuser")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestStartFederatedFlow_StoresNonceAndBuildsURL(t *testing.T) {
	ss := &mockStateStore{}
	ip := &mockIdentityProvider{}
	var storedState string
	ss.On("Put", mock.Anything, mock.MatchedBy(func(s *domain.OAuthState) bool {
		storedState = s.State
		return s.AccountType == domain.AccountTypeLandlord && s.State != "" &&
			s.ExpiresAt.After(s.CreatedAt)
	})).Return(nil).Once()
	ip.On("AuthorizeURL", mock.Anything).Return("https://provider/auth")

	svc := newService(nil, nil, ss, nil, nil, ip)
	url, err := svc.StartFederatedFlow(context.Background(), "Landlord")

	require.NoError(t, err)
	assert.Equal(t, "https://provider/auth", url)
	ip.AssertCalled(t, "AuthorizeURL", storedState)
}

func TestCompleteFederatedFlow_UnknownState(t *testing.T) {
	ss := &mockStateStore{}
	ss.On("Consume", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	svc := newService(nil, nil, ss, nil, nil, nil)
	_, err := svc.CompleteFederatedFlow(context.Background(), "nope", "code")
	assert.ErrorIs(t, err, domain.ErrOAuthExchange)
}

func TestCompleteFederatedFlow_ExpiredState(t *testing.T) {
	ss := &mockStateStore{}
	ss.On("Consume", mock.Anything, "st").Return(&domain.OAuthState{
		State:       "st",
		AccountType: domain.AccountTypeUser,
		ExpiresAt:   time.Now().Add(-time.Minute),
	}, nil)

	svc := newService(nil, nil, ss, nil, nil, nil)
	_, err := svc.CompleteFederatedFlow(context.Background(), "st", "code")
	assert.ErrorIs(t, err, domain.ErrOAuthExchange)
}

func TestCompleteFederatedFlow_ExistingUserLogsIn(t *testing.T) {
	us := &mockUserStore{}
	ss := &mockStateStore{}
	ti := &mockTokenIssuer{}
	ip := &mockIdentityProvider{}
	ss.On("Consume", mock.Anything, "st").Return(&domain.OAuthState{
		State:       "st",
		AccountType: domain.AccountTypeUser,
		ExpiresAt:   time.Now().Add(time.Minute),
	}, nil)
	ip.On("Exchange", mock.Anything, "code").Return(&google.Profile{
		Name:  "Ada Lovelace",
		Email: "a@x.com",
	}, nil)
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{Email: "a@x.com"}, nil)
	ti.On("Issue", "a@x.com", time.Duration(0)).Return("tok", nil)

	svc := newService(us, nil, ss, nil, ti, ip)
	tok, err := svc.CompleteFederatedFlow(context.Background(), "st", "code")

	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
	us.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCompleteFederatedFlow_NewUserImplicitSignup(t *testing.T) {
	us := &mockUserStore{}
	ss := &mockStateStore{}
	ti := &mockTokenIssuer{}
	ip := &mockIdentityProvider{}
	phone := "08012345678"
	ss.On("Consume", mock.Anything, "st").Return(&domain.OAuthState{
		State:       "st",
		AccountType: domain.AccountTypeAgent,
		ExpiresAt:   time.Now().Add(time.Minute),
	}, nil)
	ip.On("Exchange", mock.Anything, "code").Return(&google.Profile{
		Name:        "Ada Lovelace",
		Email:       "new@x.com",
		PhoneNumber: &phone,
	}, nil)
	us.On("GetByEmail", mock.Anything, "new@x.com").Return(nil, domain.ErrNotFound)
	us.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "new@x.com" && u.AccountType == domain.AccountTypeAgent &&
			u.PasswordHash == nil && u.PhoneNumber != nil && *u.PhoneNumber == phone
	})).Return(nil).Once()
	ti.On("Issue", "new@x.com", time.Duration(0)).Return("tok", nil)

	svc := newService(us, nil, ss, nil, ti, ip)
	tok, err := svc.CompleteFederatedFlow(context.Background(), "st", "code")

	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
	us.AssertExpectations(t)
}

func TestCompleteFederatedFlow_ExchangeError(t *testing.T) {
	ss := &mockStateStore{}
	ip := &mockIdentityProvider{}
	ss.On("Consume", mock.Anything, "st").Return(&domain.OAuthState{
		State:       "st",
		AccountType: domain.AccountTypeUser,
		ExpiresAt:   time.Now().Add(time.Minute),
	}, nil)
	ip.On("Exchange", mock.Anything, "code").Return(nil, domain.ErrOAuthExchange)

	svc := newService(nil, nil, ss, nil, nil, ip)
	_, err := svc.CompleteFederatedFlow(context.Background(), "st", "code")
	assert.ErrorIs(t, err, domain.ErrOAuthExchange)
}

// --- CurrentUser / CompletePhoneNumber ---

func TestCurrentUser_MissingRowIsUnauthorized(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "gone@x.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil, nil, nil)
	_, err := svc.CurrentUser(context.Background(), "gone@x.com")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCompletePhoneNumber_Validates(t *testing.T) {
	svc := newService(nil, nil, nil, nil, nil, nil)
	err := svc.CompletePhoneNumber(context.Background(), "a@x.com", "123")
	assert.ErrorIs(t, err, domain.ErrInvalidPhoneNumber)
}

func TestCompletePhoneNumber_Success(t *testing.T) {
	us := &mockUserStore{}
	us.On("UpdatePhone", mock.Anything, "a@x.com", "08012345678", mock.Anything).Return(nil).Once()

	svc := newService(us, nil, nil, nil, nil, nil)
	err := svc.CompletePhoneNumber(context.Background(), "a@x.com", "08012345678")

	require.NoError(t, err)
	us.AssertExpectations(t)
}
