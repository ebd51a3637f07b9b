// Package service implements the gateway's authentication flows. The gateway
// holds no user data of its own; it verifies credentials against the users
// service and mints access tokens.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mssola/useragent"
	"golang.org/x/crypto/bcrypt"

	"fundflow/internal/authz"
	"fundflow/internal/clients"
	dErrors "fundflow/pkg/domainerrors"
	"fundflow/pkg/platform/sentinel"
	"fundflow/pkg/requestcontext"
)

// UserDirectory is the slice of the users client the gateway uses.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*clients.Credentials, error)
	CreateGoogle(ctx context.Context, email, name string) (*clients.ProvisionedUser, bool, error)
}

// Tokens is the slice of the token service the gateway uses.
type Tokens interface {
	Issue(p authz.Principal, email string) (string, error)
}

// Auditor is the slice of the audit emitter the service uses.
type Auditor interface {
	Info(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

type Service struct {
	users  UserDirectory
	tokens Tokens
	audit  Auditor
	logger *slog.Logger
}

func New(users UserDirectory, tokens Tokens, audit Auditor, logger *slog.Logger) *Service {
	return &Service{users: users, tokens: tokens, audit: audit, logger: logger}
}

// Session is the gateway's login response.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// LoginBasic verifies an email/password pair and mints a session token.
// Wrong email and wrong password report the same error; the audit event
// records the client platform parsed from the User-Agent header.
func (s *Service) LoginBasic(ctx context.Context, email, password, rawUserAgent string) (*Session, error) {
	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email and password are required")
	}

	creds, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		s.logError(ctx, "credential lookup failed", err)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "user directory unavailable")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Failed login for %s from %s", creds.Email, clientPlatform(rawUserAgent)))
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	p := authz.Principal{UserID: creds.UserID, Role: authz.Role(creds.Role)}
	signed, err := s.tokens.Issue(p, creds.Email)
	if err != nil {
		s.logError(ctx, "token signing failed", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.audit.Info(ctx, fmt.Sprintf("User logged in : %s from %s", creds.UserID, clientPlatform(rawUserAgent)))
	return &Session{Token: signed, UserID: creds.UserID, Email: creds.Email, Role: creds.Role}, nil
}

// ExchangeGoogle provisions (or finds) a user for an externally verified
// identity and mints a session token.
func (s *Service) ExchangeGoogle(ctx context.Context, email, name, rawUserAgent string) (*Session, error) {
	if email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}

	u, created, err := s.users.CreateGoogle(ctx, email, name)
	if err != nil {
		s.logError(ctx, "external provisioning failed", err)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "user directory unavailable")
	}
	if created {
		s.audit.Info(ctx, "Provisioned external user : "+u.ID)
	}

	p := authz.Principal{UserID: u.ID, Role: authz.Role(u.Role)}
	signed, err := s.tokens.Issue(p, u.Email)
	if err != nil {
		s.logError(ctx, "token signing failed", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.audit.Info(ctx, fmt.Sprintf("User logged in : %s from %s", u.ID, clientPlatform(rawUserAgent)))
	return &Session{Token: signed, UserID: u.ID, Email: u.Email, Role: u.Role}, nil
}

func clientPlatform(rawUserAgent string) string {
	if rawUserAgent == "" {
		return "unknown client"
	}
	ua := useragent.New(rawUserAgent)
	browser, _ := ua.Browser()
	if browser == "" {
		return "unknown client"
	}
	return browser + " on " + ua.OS()
}

func (s *Service) logError(ctx context.Context, msg string, err error) {
	s.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
