package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"blog-client/internal/apiclient"
	"blog-client/internal/domain"
	"blog-client/internal/notice"
	"blog-client/internal/session"
	"blog-client/internal/tokenstore"
)

// AuthAPI is the slice of the backend used for accounts.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (domain.Credentials, error)
	Signup(ctx context.Context, reg domain.Registration) (*domain.User, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error)
}

// AuthService describes account lifecycle operations.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error)
}

type authService struct {
	api      AuthAPI
	sessions *session.Store
	tokens   tokenstore.Store
	notices  notice.Notifier
	log      logrus.FieldLogger
}

func NewAuthService(api AuthAPI, sessions *session.Store, tokens tokenstore.Store, notices notice.Notifier, log logrus.FieldLogger) AuthService {
	return &authService{
		api:      api,
		sessions: sessions,
		tokens:   tokens,
		notices:  notices,
		log:      log,
	}
}

// Login exchanges credentials for a token, loads the profile with it and
// starts the session.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		s.notices.Notify(notice.Error("Login Failed", apiclient.Message(err)))
		return nil, err
	}
	s.notices.Notify(notice.Success("Login Successful", "Welcome back, "+user.Name))
	return user, nil
}

func (s *authService) login(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password", ErrMissingField)
	}

	creds, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if creds.Token == "" {
		return nil, ErrNoToken
	}

	// the profile request must carry the new token
	expires := tokenstore.ResolveExpiry(creds.Token, creds.TokenExpiresAt)
	if err := s.tokens.SetToken(ctx, creds.Token, expires); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	user, err := s.api.CurrentUser(ctx)
	if err == nil && (user == nil || user.Email == "") {
		err = ErrUserDetails
	}
	if err != nil {
		if clearErr := s.tokens.ClearToken(ctx); clearErr != nil {
			s.log.WithError(clearErr).Error("auth: clear token after failed login")
		}
		return nil, err
	}

	s.sessions.Login(ctx, *user, creds)
	s.log.WithField("user_id", user.ID).Info("auth: logged in")
	return user, nil
}

func (s *authService) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)

	var err error
	switch {
	case reg.Name == "" || reg.Email == "" || reg.Password == "":
		err = fmt.Errorf("%w: name, email and password", ErrMissingField)
	case reg.Password != reg.ConfirmPassword:
		err = ErrPasswordMismatch
	}
	if err != nil {
		s.notices.Notify(notice.Error("Registration Failed", err.Error()))
		return nil, err
	}

	user, err := s.api.Signup(ctx, reg)
	if err != nil {
		s.notices.Notify(notice.Error("Registration Failed", apiclient.Message(err)))
		return nil, err
	}
	s.notices.Notify(notice.Success("Registration Successful", "You can now log in!"))
	return user, nil
}

func (s *authService) Logout(ctx context.Context) {
	s.sessions.Logout(ctx)
	s.log.Info("auth: logged out")
}

// UpdateProfile saves the profile and replaces the session user with the
// server's copy.
func (s *authService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.api.UpdateProfile(ctx, update)
	if err == nil && user == nil {
		err = ErrUserDetails
	}
	if err != nil {
		s.notices.Notify(notice.Error("Profile Update Failed", apiclient.Message(err)))
		return nil, err
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.log.WithError(err).Warn("auth: read token after profile update")
	}
	if token != "" {
		s.sessions.Login(ctx, *user, domain.Credentials{Token: token})
	}
	s.notices.Notify(notice.Success("Profile Updated Successfully", "Your profile has been updated: "+user.Name))
	return user, nil
}
