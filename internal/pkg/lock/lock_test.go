package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLocker_SecondAcquireFails(t *testing.T) {
	ctx := context.Background()
	l := NewKeyedLocker()

	release, err := l.TryLock(ctx, "tenant-1:2025-04")
	require.NoError(t, err)

	_, err = l.TryLock(ctx, "tenant-1:2025-04")
	assert.ErrorIs(t, err, ErrLocked)

	other, err := l.TryLock(ctx, "tenant-1:2025-05")
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	require.NoError(t, release(ctx))

	again, err := l.TryLock(ctx, "tenant-1:2025-04")
	require.NoError(t, err)
	assert.NoError(t, again(ctx))
}

func newRedisLocker(t *testing.T) (*RedisLocker, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	l := NewRedisLocker(client, "payroll:close:", time.Minute)
	l.token = func() string { return "token-1" }
	return l, mock
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	ctx := context.Background()
	l, mock := newRedisLocker(t)

	mock.ExpectSetNX("payroll:close:tenant-1:2025-04", "token-1", time.Minute).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"payroll:close:tenant-1:2025-04"}, "token-1").SetVal(int64(1))

	release, err := l.TryLock(ctx, "tenant-1:2025-04")
	require.NoError(t, err)
	require.NoError(t, release(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_HeldElsewhere(t *testing.T) {
	l, mock := newRedisLocker(t)
	mock.ExpectSetNX("payroll:close:tenant-1:2025-04", "token-1", time.Minute).SetVal(false)

	_, err := l.TryLock(context.Background(), "tenant-1:2025-04")

	assert.ErrorIs(t, err, ErrLocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_ConnectionError(t *testing.T) {
	l, mock := newRedisLocker(t)
	mock.ExpectSetNX("payroll:close:tenant-1:2025-04", "token-1", time.Minute).SetErr(errors.New("connection refused"))

	_, err := l.TryLock(context.Background(), "tenant-1:2025-04")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLocked)
	assert.Contains(t, err.Error(), "connection refused")
}
