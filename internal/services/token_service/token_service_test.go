package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"juin_store/internal/domain/models"
	"juin_store/internal/lib/jwt"
	"juin_store/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) FindByIdentification(ctx context.Context, identification string) (models.Token, error) {
	args := m.Called(ctx, identification)
	return args.Get(0).(models.Token), args.Error(1)
}

func (m *MockTokenRepository) FindByRefreshToken(ctx context.Context, refreshToken string) (models.Token, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(models.Token), args.Error(1)
}

func (m *MockTokenRepository) Upsert(ctx context.Context, identification, refreshToken string) (models.Token, error) {
	args := m.Called(ctx, identification, refreshToken)
	return args.Get(0).(models.Token), args.Error(1)
}

func (m *MockTokenRepository) UpdateRefreshToken(ctx context.Context, identification, refreshToken string) error {
	args := m.Called(ctx, identification, refreshToken)
	return args.Error(0)
}

type MockAccountLookup struct {
	mock.Mock
}

func (m *MockAccountLookup) ByIdentification(ctx context.Context, identification string) (models.Account, error) {
	args := m.Called(ctx, identification)
	return args.Get(0).(models.Account), args.Error(1)
}

var (
	testCtx     = context.Background()
	testAccount = models.Account{
		Identification: "junsu@example.com",
		Email:          "junsu@example.com",
		Role:           "user",
	}
)

func newTestService(repo *MockTokenRepository, accounts *MockAccountLookup) *TokenService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec := jwt.NewCodec([]byte("test-secret"), 15*time.Minute, 7*24*time.Hour)

	return NewTokenService(log, codec, repo, accounts)
}

func TestIssueAccessToken(t *testing.T) {
	service := newTestService(new(MockTokenRepository), new(MockAccountLookup))

	token, err := service.IssueAccessToken(testAccount.Identification, testAccount.Role)

	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestUpsertRefreshToken_ReturnsStoredValue(t *testing.T) {
	repo := new(MockTokenRepository)
	service := newTestService(repo, new(MockAccountLookup))

	// the stored value is authoritative even when a concurrent rotation won
	repo.On("Upsert", testCtx, testAccount.Identification, mock.Anything).
		Return(models.Token{
			Identification: testAccount.Identification,
			RefreshToken:   "committed-by-concurrent-writer",
		}, nil)

	value, err := service.UpsertRefreshToken(testCtx, testAccount.Identification, testAccount.Role)

	require.NoError(t, err)
	assert.Equal(t, "committed-by-concurrent-writer", value)
	repo.AssertExpectations(t)
}

func TestUpsertRefreshToken_RepoErrorPropagates(t *testing.T) {
	repo := new(MockTokenRepository)
	service := newTestService(repo, new(MockAccountLookup))

	expectedErr := errors.New("connection reset")
	repo.On("Upsert", testCtx, testAccount.Identification, mock.Anything).
		Return(models.Token{}, expectedErr)

	_, err := service.UpsertRefreshToken(testCtx, testAccount.Identification, testAccount.Role)

	assert.ErrorIs(t, err, expectedErr)
	assert.NotErrorIs(t, err, ErrInvalidRefreshToken)
	repo.AssertExpectations(t)
}

func TestReissueAccessToken_Success(t *testing.T) {
	repo := new(MockTokenRepository)
	accounts := new(MockAccountLookup)
	service := newTestService(repo, accounts)

	refreshToken, err := service.IssueRefreshToken(testAccount.Identification, testAccount.Role)
	require.NoError(t, err)

	accounts.On("ByIdentification", testCtx, testAccount.Identification).
		Return(testAccount, nil)
	repo.On("FindByIdentification", testCtx, testAccount.Identification).
		Return(models.Token{
			Identification: testAccount.Identification,
			RefreshToken:   refreshToken,
		}, nil)

	accessToken, err := service.ReissueAccessToken(testCtx, refreshToken)

	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEqual(t, refreshToken, accessToken)

	claims, err := service.codec.Validate(accessToken)
	require.NoError(t, err)
	assert.Equal(t, testAccount.Identification, claims.Identification)
	assert.True(t, claims.ExpiresAt.After(time.Now()))

	repo.AssertExpectations(t)
	accounts.AssertExpectations(t)
}

func TestReissueAccessToken_MalformedToken(t *testing.T) {
	service := newTestService(new(MockTokenRepository), new(MockAccountLookup))

	_, err := service.ReissueAccessToken(testCtx, "not.a.token")

	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestReissueAccessToken_ExpiredToken(t *testing.T) {
	repo := new(MockTokenRepository)
	accounts := new(MockAccountLookup)
	service := newTestService(repo, accounts)

	expiredCodec := jwt.NewCodec([]byte("test-secret"), 15*time.Minute, -time.Hour)
	expired, err := expiredCodec.CreateRefreshToken(testAccount.Identification, testAccount.Role)
	require.NoError(t, err)

	_, err = service.ReissueAccessToken(testCtx, expired)

	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestReissueAccessToken_UnknownAccount(t *testing.T) {
	repo := new(MockTokenRepository)
	accounts := new(MockAccountLookup)
	service := newTestService(repo, accounts)

	refreshToken, err := service.IssueRefreshToken(testAccount.Identification, testAccount.Role)
	require.NoError(t, err)

	accounts.On("ByIdentification", testCtx, testAccount.Identification).
		Return(models.Account{}, storage.ErrAccountNotFound)

	_, err = service.ReissueAccessToken(testCtx, refreshToken)

	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	accounts.AssertExpectations(t)
}

func TestReissueAccessToken_NoStoredRecord(t *testing.T) {
	repo := new(MockTokenRepository)
	accounts := new(MockAccountLookup)
	service := newTestService(repo, accounts)

	refreshToken, err := service.IssueRefreshToken(testAccount.Identification, testAccount.Role)
	require.NoError(t, err)

	accounts.On("ByIdentification", testCtx, testAccount.Identification).
		Return(testAccount, nil)
	repo.On("FindByIdentification", testCtx, testAccount.Identification).
		Return(models.Token{}, storage.ErrTokenNotFound)

	_, err = service.ReissueAccessToken(testCtx, refreshToken)

	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	repo.AssertExpectations(t)
}

func TestReissueAccessToken_SupersededToken(t *testing.T) {
	repo := new(MockTokenRepository)
	accounts := new(MockAccountLookup)
	service := newTestService(repo, accounts)

	oldToken, err := service.IssueRefreshToken(testAccount.Identification, testAccount.Role)
	require.NoError(t, err)

	accounts.On("ByIdentification", testCtx, testAccount.Identification).
		Return(testAccount, nil)
	repo.On("FindByIdentification", testCtx, testAccount.Identification).
		Return(models.Token{
			Identification: testAccount.Identification,
			RefreshToken:   "a-newer-rotation",
		}, nil)

	_, err = service.ReissueAccessToken(testCtx, oldToken)

	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	repo.AssertExpectations(t)
}

func TestReissueAccessToken_StorageErrorIsNotInvalidToken(t *testing.T) {
	repo := new(MockTokenRepository)
	accounts := new(MockAccountLookup)
	service := newTestService(repo, accounts)

	refreshToken, err := service.IssueRefreshToken(testAccount.Identification, testAccount.Role)
	require.NoError(t, err)

	expectedErr := errors.New("connection reset")
	accounts.On("ByIdentification", testCtx, testAccount.Identification).
		Return(testAccount, nil)
	repo.On("FindByIdentification", testCtx, testAccount.Identification).
		Return(models.Token{}, expectedErr)

	_, err = service.ReissueAccessToken(testCtx, refreshToken)

	assert.ErrorIs(t, err, expectedErr)
	assert.NotErrorIs(t, err, ErrInvalidRefreshToken)
	repo.AssertExpectations(t)
}

// Current behavior: reissue does not rotate the refresh token, so the same
// value keeps working until the next upsert. Documented here as behavior,
// not endorsed as security policy.
func TestReissueAccessToken_DoesNotRotateRefreshToken(t *testing.T) {
	repo := new(MockTokenRepository)
	accounts := new(MockAccountLookup)
	service := newTestService(repo, accounts)

	refreshToken, err := service.IssueRefreshToken(testAccount.Identification, testAccount.Role)
	require.NoError(t, err)

	accounts.On("ByIdentification", testCtx, testAccount.Identification).
		Return(testAccount, nil)
	repo.On("FindByIdentification", testCtx, testAccount.Identification).
		Return(models.Token{
			Identification: testAccount.Identification,
			RefreshToken:   refreshToken,
		}, nil)

	_, err = service.ReissueAccessToken(testCtx, refreshToken)
	require.NoError(t, err)

	// no Upsert/UpdateRefreshToken calls happened, and the same value is
	// accepted again
	_, err = service.ReissueAccessToken(testCtx, refreshToken)
	require.NoError(t, err)

	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestModifyRefreshToken(t *testing.T) {
	repo := new(MockTokenRepository)
	service := newTestService(repo, new(MockAccountLookup))

	repo.On("UpdateRefreshToken", testCtx, testAccount.Identification, "new-value").
		Return(nil)

	err := service.ModifyRefreshToken(testCtx, testAccount.Identification, "new-value")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGenerateTokenPair(t *testing.T) {
	repo := new(MockTokenRepository)
	service := newTestService(repo, new(MockAccountLookup))

	repo.On("Upsert", testCtx, testAccount.Identification, mock.Anything).
		Return(models.Token{
			Identification: testAccount.Identification,
			RefreshToken:   "stored-refresh",
		}, nil)

	pair, err := service.GenerateTokenPair(testCtx, testAccount)

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, "stored-refresh", pair.RefreshToken)
	repo.AssertExpectations(t)
}
