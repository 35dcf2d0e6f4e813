package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralSigner("test-key")
	require.NoError(t, err)

	now := time.Now()
	claims := NewAccessClaims("grantd-test", "client-abc", "profile:read admin:write", time.Hour, now)

	raw, err := signer.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	got, err := signer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "client-abc", got.ClientID)
	require.Equal(t, "profile:read admin:write", got.Scope)
	require.Equal(t, "grantd-test", got.Issuer)
	require.WithinDuration(t, now.Add(time.Hour), got.ExpiresAt.Time, time.Second)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	t.Parallel()

	a, err := NewEphemeralSigner("a")
	require.NoError(t, err)
	b, err := NewEphemeralSigner("b")
	require.NoError(t, err)

	raw, err := a.Sign(NewAccessClaims("iss", "client", "scope", time.Hour, time.Now()))
	require.NoError(t, err)

	_, err = b.Verify(raw)
	require.Error(t, err)
}
