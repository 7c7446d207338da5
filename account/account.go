// Package account is the thin client for the TomatoMall accounts endpoints.
package account

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"

	"github.com/happy-299/TomatoMall/internal/rest"
)

var validate = validator.New()

type Service struct {
	rest    *rest.Client
	session *rest.SessionStore
}

// NewService builds the accounts client. session, when non-nil, receives the
// token returned by Login so subsequent requests authenticate.
func NewService(rc *rest.Client, session *rest.SessionStore) *Service {
	return &Service{rest: rc, session: session}
}

// Login authenticates with username/password (sent as query parameters, per
// the backend contract) and stores the returned session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	query := url.Values{}
	query.Set("username", username)
	query.Set("password", password)

	var token string
	if err := s.rest.Do(ctx, "POST", "/api/accounts/login", query, nil, &token, rest.UnwrapData); err != nil {
		return "", err
	}
	if token == "" {
		return "", rest.Malformed("login returned an empty token")
	}
	if s.session != nil {
		s.session.Set(token)
	}
	return token, nil
}

// Register creates a new account.
func (s *Service) Register(ctx context.Context, info RegisterInfo) error {
	if err := validate.Struct(info); err != nil {
		return fmt.Errorf("invalid registration: %w", err)
	}
	return s.rest.Do(ctx, "POST", "/api/accounts", nil, info, nil, rest.UnwrapData)
}

// Get fetches the profile for username.
func (s *Service) Get(ctx context.Context, username string) (*Profile, error) {
	var profile Profile
	if err := s.rest.Do(ctx, "GET", "/api/accounts/"+url.PathEscape(username), nil, nil, &profile, rest.UnwrapData); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update modifies the current account's profile.
func (s *Service) Update(ctx context.Context, info UpdateInfo) error {
	if err := validate.Struct(info); err != nil {
		return fmt.Errorf("invalid update: %w", err)
	}
	return s.rest.Do(ctx, "PUT", "/api/accounts", nil, info, nil, rest.UnwrapData)
}
