package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camos-io/camos-assist/pkg/security/auth"
	"github.com/camos-io/camos-assist/pkg/utils/errors"
)

const testKey = "test-secret-key-at-least-32-characters"

func newTestJWT(t *testing.T, opts ...Option) *JWT {
	t.Helper()
	j, err := New(append([]Option{WithKey(testKey)}, opts...)...)
	require.NoError(t, err)
	return j
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New()
	assert.Error(t, err)

	_, err = New(WithKey("too-short"))
	assert.Error(t, err)
}

func TestSignAndVerify(t *testing.T) {
	j := newTestJWT(t)
	ctx := context.Background()

	token, err := j.Sign(ctx, "user-1", auth.WithExtra(map[string]interface{}{
		auth.ClaimUsername:   "alice",
		auth.ClaimExperience: "3-5yr",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.GetTokenType())
	assert.NotEmpty(t, token.GetAccessToken())

	claims, err := j.Verify(ctx, token.GetAccessToken())
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice", claims.Username())
	assert.Equal(t, "3-5yr", claims.Experience())
	assert.True(t, claims.Valid())
}

func TestVerifyRejectsGarbage(t *testing.T) {
	j := newTestJWT(t)
	ctx := context.Background()

	_, err := j.Verify(ctx, "")
	assert.Error(t, err)

	_, err = j.Verify(ctx, "not-a-token")
	assert.Error(t, err)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	j := newTestJWT(t)
	other := newTestJWT(t)
	other.opts.Key = "another-secret-key-32-characters-min"

	ctx := context.Background()
	token, err := j.Sign(ctx, "user-1")
	require.NoError(t, err)

	_, err = other.Verify(ctx, token.GetAccessToken())
	assert.Error(t, err)
}

func TestVerifyExpired(t *testing.T) {
	j := newTestJWT(t)
	ctx := context.Background()

	token, err := j.Sign(ctx, "user-1", auth.WithExpiresAt(time.Now().Add(-time.Minute)))
	require.NoError(t, err)

	_, err = j.Verify(ctx, token.GetAccessToken())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTokenExpired.Code))
}

func TestRevokeAndVerify(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	j := newTestJWT(t, WithStore(store))
	ctx := context.Background()

	token, err := j.Sign(ctx, "user-1")
	require.NoError(t, err)

	// Valid before revocation
	_, err = j.Verify(ctx, token.GetAccessToken())
	require.NoError(t, err)

	require.NoError(t, j.Revoke(ctx, token.GetAccessToken()))

	_, err = j.Verify(ctx, token.GetAccessToken())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTokenRevoked.Code))
}

func TestRefreshIssuesNewToken(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	j := newTestJWT(t, WithStore(store))
	ctx := context.Background()

	token, err := j.Sign(ctx, "user-1", auth.WithExtra(map[string]interface{}{
		auth.ClaimExperience: "6yr and above",
	}))
	require.NoError(t, err)

	refreshed, err := j.Refresh(ctx, token.GetAccessToken())
	require.NoError(t, err)
	assert.NotEqual(t, token.GetAccessToken(), refreshed.GetAccessToken())

	// Old token is revoked after refresh
	_, err = j.Verify(ctx, token.GetAccessToken())
	assert.Error(t, err)

	// New token keeps the extra claims
	claims, err := j.Verify(ctx, refreshed.GetAccessToken())
	require.NoError(t, err)
	assert.Equal(t, "6yr and above", claims.Experience())
}

func TestRevokeWithoutStore(t *testing.T) {
	j := newTestJWT(t)
	err := j.Revoke(context.Background(), "whatever")
	assert.Error(t, err)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Revoke(ctx, "tok", 10*time.Millisecond))

	revoked, err := store.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	time.Sleep(20 * time.Millisecond)
	revoked, err = store.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)
}
