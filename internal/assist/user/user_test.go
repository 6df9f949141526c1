package user

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/camos-io/camos-assist/pkg/security/auth/jwt"
	utilerrors "github.com/camos-io/camos-assist/pkg/utils/errors"
	"github.com/camos-io/camos-assist/pkg/utils/validator"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	store := NewStore(db)
	require.NoError(t, store.AutoMigrate())
	return store
}

func newTestSigner(t *testing.T) *jwt.JWT {
	t.Helper()

	signer, err := jwt.New(jwt.WithKey("test-signing-key-0123456789abcdef"))
	require.NoError(t, err)
	return signer
}

func TestUpsertCreatesAndUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u1, err := store.Upsert(ctx, "alice", "alice@camos.io", validator.ExperienceJunior)
	require.NoError(t, err)
	assert.NotZero(t, u1.ID)
	assert.Equal(t, validator.ExperienceJunior, u1.Experience)

	// 再次登录更新经验档位，不新建记录
	u2, err := store.Upsert(ctx, "alice", "alice@camos.io", validator.ExperienceMid)
	require.NoError(t, err)
	assert.Equal(t, u1.ID, u2.ID)
	assert.Equal(t, validator.ExperienceMid, u2.Experience)
}

func TestGetByNameMissing(t *testing.T) {
	store := newTestStore(t)

	u, err := store.GetByName(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestLoginIssuesTokenWithExperienceClaim(t *testing.T) {
	store := newTestStore(t)
	signer := newTestSigner(t)
	svc := NewService(store, signer, "")
	ctx := context.Background()

	u, token, err := svc.Login(ctx, "bob", "bob@camos.io", validator.ExperienceSenior, "")
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Name)
	require.NotNil(t, token)

	// 令牌携带用户名和经验档位
	claims, err := signer.Verify(ctx, token.GetAccessToken())
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.Subject)
	assert.Equal(t, "bob", claims.Username())
	assert.Equal(t, validator.ExperienceSenior, claims.Experience())
}

func TestLoginInvalidExperience(t *testing.T) {
	svc := NewService(newTestStore(t), newTestSigner(t), "")

	_, _, err := svc.Login(context.Background(), "bob", "bob@camos.io", "10yr", "")
	assert.Error(t, err)
}

func TestLoginEmptyName(t *testing.T) {
	svc := NewService(newTestStore(t), newTestSigner(t), "")

	_, _, err := svc.Login(context.Background(), "  ", "x@camos.io", validator.ExperienceJunior, "")
	assert.Error(t, err)
}

func TestLoginAccessCode(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("workshop-2026"), bcrypt.DefaultCost)
	require.NoError(t, err)

	svc := NewService(newTestStore(t), newTestSigner(t), string(hash))
	ctx := context.Background()

	// 错误访问码
	_, _, err = svc.Login(ctx, "carol", "carol@camos.io", validator.ExperienceMid, "wrong")
	assert.ErrorIs(t, err, utilerrors.ErrAccessCode)

	// 正确访问码
	_, token, err := svc.Login(ctx, "carol", "carol@camos.io", validator.ExperienceMid, "workshop-2026")
	require.NoError(t, err)
	assert.NotNil(t, token)
}

func TestLoginUpsertsSameUser(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store, newTestSigner(t), "")
	ctx := context.Background()

	u1, _, err := svc.Login(ctx, "dave", "dave@camos.io", validator.ExperienceJunior, "")
	require.NoError(t, err)
	u2, _, err := svc.Login(ctx, "dave", "dave@camos.io", validator.ExperienceSenior, "")
	require.NoError(t, err)

	assert.Equal(t, u1.ID, u2.ID)
	assert.Equal(t, validator.ExperienceSenior, u2.Experience)
}

func TestLogoutWithoutStoreIsStateless(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store, newTestSigner(t), "")
	ctx := context.Background()

	_, token, err := svc.Login(ctx, "erin", "erin@camos.io", validator.ExperienceSenior, "")
	require.NoError(t, err)

	// 未配置吊销存储时登出直接成功
	require.NoError(t, svc.Logout(ctx, token.GetAccessToken()))
}

func TestLogoutRevokesToken(t *testing.T) {
	store := newTestStore(t)
	revocations := jwt.NewMemoryStore()
	defer func() { _ = revocations.Close() }()

	signer, err := jwt.New(
		jwt.WithKey("test-signing-key-0123456789abcdef"),
		jwt.WithStore(revocations),
	)
	require.NoError(t, err)
	svc := NewService(store, signer, "")
	ctx := context.Background()

	_, token, err := svc.Login(ctx, "frank", "frank@camos.io", validator.ExperienceMid, "")
	require.NoError(t, err)

	_, err = signer.Verify(ctx, token.GetAccessToken())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token.GetAccessToken()))

	_, err = signer.Verify(ctx, token.GetAccessToken())
	assert.Error(t, err)
}

func TestLogoutEmptyToken(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store, newTestSigner(t), "")

	assert.Error(t, svc.Logout(context.Background(), ""))
}
