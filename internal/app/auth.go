package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"kotobuki_stay/internal/domain"
)

const BcryptCost = 12

// HashPassword hashes a password for storage on the profile row.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: empty password", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type Authenticator struct {
	dir   domain.DirectoryRepository
	authz *Authorizer
	// compared against when the email is unknown so both paths cost the same
	dummy []byte
}

func NewAuthenticator(d domain.DirectoryRepository, a *Authorizer) *Authenticator {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("kotobuki-placeholder"), bcrypt.MinCost)
	return &Authenticator{dir: d, authz: a, dummy: dummy}
}

// Login checks the password and returns the signed-in principal.
func (a *Authenticator) Login(ctx context.Context, email, password string) (domain.Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrBadCredentials
	}
	cred, err := a.dir.FindCredentials(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(a.dummy, []byte(password))
		return nil, domain.ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find credentials: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrBadCredentials
	}
	return a.authz.Resolve(ctx, cred.UserID)
}
