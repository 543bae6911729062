package service

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sharkweb/boardsite/internal/models"
	"github.com/sharkweb/boardsite/internal/repo"
	"github.com/sharkweb/boardsite/internal/token"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Board{}))
	return db
}

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()

	secret := base64.StdEncoding.EncodeToString([]byte("service-test-secret"))
	c, err := token.NewCodec(secret, time.Hour)
	require.NoError(t, err)
	return c
}

func newAuthService(t *testing.T) (*AuthService, *repo.GormRepo) {
	t.Helper()

	rp := &repo.GormRepo{DB: newTestDB(t)}
	return &AuthService{Repo: rp, Codec: newTestCodec(t)}, rp
}

func TestAuthService_Register_IssuesValidToken(t *testing.T) {
	t.Parallel()

	svc, rp := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice@example.com", "pw123", "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	assert.Empty(t, res.RefreshToken)

	claims, err := svc.Codec.Parse(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, "Alice", claims.Nickname)
	assert.Equal(t, []string{models.RoleUser}, claims.Roles)

	stored, err := rp.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, stored.Role)
	assert.Equal(t, "Alice", stored.Nickname)
	assert.NotEqual(t, "pw123", stored.PasswordHash)
}

func TestAuthService_Register_DuplicateEmail_NoMutation(t *testing.T) {
	t.Parallel()

	svc, rp := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "pw123", "Alice")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice@example.com", "other", "Imposter")
	assert.ErrorIs(t, err, repo.ErrDuplicateEmail)

	var count int64
	require.NoError(t, rp.DB.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := rp.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.Nickname)
}

func TestAuthService_Register_EmailCaseSensitive(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "pw123", "Alice")
	require.NoError(t, err)

	// The store matches emails exactly; a different casing is a new account.
	_, err = svc.Register(ctx, "Alice@example.com", "pw123", "AliceUpper")
	require.NoError(t, err)
}

func TestAuthService_Login_SameErrorForUnknownAndWrongPassword(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "pw123", "Alice")
	require.NoError(t, err)

	_, errUnknown := svc.Login(ctx, "nobody@example.com", "pw123")
	_, errWrongPw := svc.Login(ctx, "alice@example.com", "wrong")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestAuthService_Login_Success(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "pw123", "Alice")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	assert.Empty(t, res.RefreshToken)

	assert.True(t, svc.Codec.IsValid(res.AccessToken, "alice@example.com", time.Now()))
}
