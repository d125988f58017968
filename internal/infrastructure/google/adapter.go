package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/rentpal/rentpal-api/internal/config"
	"github.com/rentpal/rentpal-api/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	people "google.golang.org/api/people/v1"
)

// Profile holds the attributes fetched from the identity provider after a
// successful authorization-code exchange.
type Profile struct {
	Name        string
	Email       string
	PhoneNumber *string
}

// Adapter drives the OAuth2 authorization-code flow against Google and
// normalizes the returned profile.
type Adapter struct {
	oauth       *oauth2.Config
	phonePrefix string
}

func NewAdapter(cfg *config.Config) *Adapter {
	return &Adapter{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       cfg.GoogleScopes,
			Endpoint:     google.Endpoint,
		},
		phonePrefix: cfg.PhoneLocalPrefix,
	}
}

// AuthorizeURL builds the provider redirect URL carrying the opaque state
// nonce. The account-type hint lives server-side, keyed by the nonce.
func (a *Adapter) AuthorizeURL(state string) string {
	return a.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for tokens, then fetches the basic
// profile and the phone numbers and normalizes them.
func (a *Adapter) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", domain.ErrOAuthExchange)
	}

	svc, err := people.NewService(ctx, option.WithTokenSource(a.oauth.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("people service: %w", domain.ErrOAuthExchange)
	}

	basic, err := svc.People.Get("people/me").
		PersonFields("names,emailAddresses").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", domain.ErrOAuthExchange)
	}

	p := &Profile{}
	if len(basic.Names) > 0 {
		p.Name = basic.Names[0].DisplayName
	}
	if len(basic.EmailAddresses) > 0 {
		p.Email = basic.EmailAddresses[0].Value
	}
	if p.Email == "" {
		return nil, fmt.Errorf("profile has no email: %w", domain.ErrOAuthExchange)
	}

	phones, err := svc.People.Get("people/me").
		PersonFields("phoneNumbers").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch phone numbers: %w", domain.ErrOAuthExchange)
	}
	if len(phones.PhoneNumbers) > 0 {
		if n := a.normalizePhone(phones.PhoneNumbers[0].Value); n != "" {
			p.PhoneNumber = &n
		}
	}
	return p, nil
}

// normalizePhone strips formatting and prepends the configured local prefix
// when the provider returns a number without it.
func (a *Adapter) normalizePhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.String()
	if n == "" {
		return ""
	}
	if a.phonePrefix != "" && !strings.HasPrefix(n, a.phonePrefix) {
		n = a.phonePrefix + n
	}
	return n
}
