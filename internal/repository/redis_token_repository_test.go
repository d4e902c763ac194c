package repository_test

import (
	"testing"

	"juin_store/internal/repository"
	"juin_store/internal/storage"
	redisapp "juin_store/internal/storage/redis"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedRepo(t *testing.T) (*repository.RedisTokenRepo, redismock.ClientMock) {
	t.Helper()

	client, mock := redismock.NewClientMock()
	repo := repository.NewRedisTokenRepo(&redisapp.Client{Client: client})

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	return repo, mock
}

func TestRedisTokenRepo_FindByIdentification(t *testing.T) {
	repo, mock := newMockedRepo(t)

	mock.ExpectGet("token:ident:u1").SetVal("refresh-1")

	token, err := repo.FindByIdentification(testCtx, "u1")

	require.NoError(t, err)
	assert.Equal(t, "refresh-1", token.RefreshToken)
	assert.Equal(t, "u1", token.Identification)
}

func TestRedisTokenRepo_FindByIdentification_NotFound(t *testing.T) {
	repo, mock := newMockedRepo(t)

	mock.ExpectGet("token:ident:u1").RedisNil()

	_, err := repo.FindByIdentification(testCtx, "u1")

	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}

func TestRedisTokenRepo_FindByRefreshToken(t *testing.T) {
	repo, mock := newMockedRepo(t)

	mock.ExpectGet("token:value:refresh-1").SetVal("u1")

	token, err := repo.FindByRefreshToken(testCtx, "refresh-1")

	require.NoError(t, err)
	assert.Equal(t, "u1", token.Identification)
}

func TestRedisTokenRepo_Upsert_FirstIssuance(t *testing.T) {
	repo, mock := newMockedRepo(t)

	mock.ExpectGetSet("token:ident:u1", "refresh-1").RedisNil()
	mock.ExpectTxPipeline()
	mock.ExpectSet("token:value:refresh-1", "u1", 0).SetVal("OK")
	mock.ExpectTxPipelineExec()

	token, err := repo.Upsert(testCtx, "u1", "refresh-1")

	require.NoError(t, err)
	assert.Equal(t, "refresh-1", token.RefreshToken)
}

func TestRedisTokenRepo_Upsert_RetiresPreviousValue(t *testing.T) {
	repo, mock := newMockedRepo(t)

	mock.ExpectGetSet("token:ident:u1", "refresh-2").SetVal("refresh-1")
	mock.ExpectTxPipeline()
	mock.ExpectDel("token:value:refresh-1").SetVal(1)
	mock.ExpectSet("token:value:refresh-2", "u1", 0).SetVal("OK")
	mock.ExpectTxPipelineExec()

	token, err := repo.Upsert(testCtx, "u1", "refresh-2")

	require.NoError(t, err)
	assert.Equal(t, "refresh-2", token.RefreshToken)
}

func TestRedisTokenRepo_UpdateRefreshToken_NotFound(t *testing.T) {
	repo, mock := newMockedRepo(t)

	mock.ExpectGet("token:ident:u1").RedisNil()

	err := repo.UpdateRefreshToken(testCtx, "u1", "refresh-2")

	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}
