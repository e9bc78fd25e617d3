package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	s, err := Issue("secret", RoleCustomer, time.Hour, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)

	id, role, err := Parse("secret", s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, id)
	assert.Equal(t, RoleCustomer, role)
}

func TestIssueGivesEachSessionItsOwnID(t *testing.T) {
	a, err := Issue("secret", RoleAdmin, time.Hour, time.Now())
	require.NoError(t, err)
	b, err := Issue("secret", RoleAdmin, time.Hour, time.Now())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	s, err := Issue("secret", RoleAdmin, time.Hour, time.Now())
	require.NoError(t, err)

	_, _, err = Parse("other", s.Token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	s, err := Issue("secret", RoleAdmin, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, _, err = Parse("secret", s.Token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsMissingSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, _, err = Parse("secret", signed)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueRequiresSecret(t *testing.T) {
	_, err := Issue("", RoleCustomer, time.Hour, time.Now())

	assert.Error(t, err)
}
