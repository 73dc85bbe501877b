package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kotobuki_stay/internal/app"
	"kotobuki_stay/internal/domain"
)

func TestLogin(t *testing.T) {
	repo := seededStore()
	hash, err := app.HashPassword("kotobuki-2025")
	require.NoError(t, err)
	repo.hashes[ownerProfile.Email] = hash

	auth := app.NewAuthenticator(repo, app.NewAuthorizer(repo, repo))
	ctx := context.Background()

	p, err := auth.Login(ctx, "  Owner@Example.jp ", "kotobuki-2025")
	require.NoError(t, err)
	assert.Equal(t, ownerProfile.ID, p.Profile().ID)
	assert.False(t, p.ManagesAll())

	_, err = auth.Login(ctx, ownerProfile.Email, "wrong")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)

	_, err = auth.Login(ctx, "nobody@example.jp", "kotobuki-2025")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)

	_, err = auth.Login(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)
}

func TestHashPassword_RejectsEmpty(t *testing.T) {
	_, err := app.HashPassword("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
