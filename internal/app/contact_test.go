package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kotobuki_stay/internal/app"
)

func TestSubmitContact(t *testing.T) {
	err := app.SubmitContact(context.Background(), app.ContactMessage{Email: "not-an-address", Subject: "bogus"})
	var fe app.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Len(t, fe, 4)
	for _, k := range []string{"name", "email", "subject", "message"} {
		assert.Contains(t, fe, k)
	}

	err = app.SubmitContact(context.Background(), app.ContactMessage{
		Name: "山田 太郎", Subject: "visit", Message: "見学を希望します",
	})
	assert.NoError(t, err)
}
