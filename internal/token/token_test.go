package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_IssueAndValidate(t *testing.T) {
	svc := NewService([]byte("test-secret"))

	tok, err := svc.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, err := svc.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestService_Issue_EmptyUserID(t *testing.T) {
	svc := NewService([]byte("test-secret"))

	_, err := svc.Issue("")
	require.Error(t, err)
}

func TestService_Validate_Malformed(t *testing.T) {
	svc := NewService([]byte("test-secret"))

	for _, tok := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := svc.Validate(tok)
		assert.ErrorIs(t, err, ErrMalformed, "token %q", tok)
	}
}

func TestService_Validate_WrongSecret(t *testing.T) {
	issuer := NewService([]byte("secret-a"))
	verifier := NewService([]byte("secret-b"))

	tok, err := issuer.Issue("user-123")
	require.NoError(t, err)

	_, err = verifier.Validate(tok)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestService_Validate_Expired(t *testing.T) {
	svc := NewServiceWithTTL([]byte("test-secret"), time.Hour)

	issuedAt := time.Now().Add(-48 * time.Hour)
	svc.now = func() time.Time { return issuedAt }

	tok, err := svc.Issue("user-123")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestService_DefaultTTLIsSevenDays(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, DefaultTTL)

	svc := NewServiceWithTTL([]byte("test-secret"), 0)
	assert.Equal(t, DefaultTTL, svc.ttl)
}

func TestService_StatelessAcrossInstances(t *testing.T) {
	// Two services with the same secret accept each other's tokens: no
	// server-side session state is involved.
	a := NewService([]byte("shared"))
	b := NewService([]byte("shared"))

	tok, err := a.Issue("user-9")
	require.NoError(t, err)

	userID, err := b.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-9", userID)
}
