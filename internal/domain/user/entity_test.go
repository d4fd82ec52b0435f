//go:build unit

package user_test

import (
	"testing"

	"wasteops/internal/domain/user"
	"wasteops/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.UserBuilder)
	errIs  error
}

func TestUser(t *testing.T) {
	t.Run("builds an active account with defaults", func(t *testing.T) {
		actual, err := builder.NewUserBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, "operator@example.com", actual.Email().Value())
		assert.Equal(t, user.RoleOperator, actual.Role())
		assert.Equal(t, "Aoife Kelly", actual.Name())
		assert.NotEmpty(t, actual.PasswordHash())
		assert.True(t, actual.IsActive())
		assert.Nil(t, actual.LastLogin())
	})

	t.Run("email validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "valid email ok",
				mutate: func(b *builder.UserBuilder) { b.Email = "valid@example.com" },
			},
			{
				name:   "empty email rejected",
				mutate: func(b *builder.UserBuilder) { b.Email = "" },
				errIs:  user.ErrInvalidEmail,
			},
			{
				name:   "malformed email rejected",
				mutate: func(b *builder.UserBuilder) { b.Email = "invalid-email" },
				errIs:  user.ErrInvalidEmail,
			},
			{
				name:   "missing at sign rejected",
				mutate: func(b *builder.UserBuilder) { b.Email = "invalidemail.com" },
				errIs:  user.ErrInvalidEmail,
			},
		})
	})

	t.Run("role validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "admin role ok",
				mutate: func(b *builder.UserBuilder) { b.Role = "admin" },
			},
			{
				name:   "operator role ok",
				mutate: func(b *builder.UserBuilder) { b.Role = "operator" },
			},
			{
				name:   "dispatcher role ok",
				mutate: func(b *builder.UserBuilder) { b.Role = "dispatcher" },
			},
			{
				name:   "unknown role rejected",
				mutate: func(b *builder.UserBuilder) { b.Role = "supervisor" },
				errIs:  user.ErrInvalidRole,
			},
			{
				name:   "empty role rejected",
				mutate: func(b *builder.UserBuilder) { b.Role = "" },
				errIs:  user.ErrInvalidRole,
			},
		})
	})
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewUserBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
