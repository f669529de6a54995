package distlock

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvisoryLockerAcquireAndRelease(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	locker := NewAdvisoryLocker(db)
	id := lockID("dispatch:c1")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT pg_try_advisory_lock($1)")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))

	// The unlock must run on the same session that took the lock, so the
	// query goes out on the pinned connection before it returns to the pool.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT pg_advisory_unlock($1)")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"pg_advisory_unlock"}).AddRow(true))

	ok, err := locker.TryLock(ctx, "dispatch:c1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, locker.Unlock(ctx, "dispatch:c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvisoryLockerContested(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	locker := NewAdvisoryLocker(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT pg_try_advisory_lock($1)")).
		WithArgs(lockID("dispatch:c1")).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(false))

	ok, err := locker.TryLock(ctx, "dispatch:c1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvisoryLockerUnlockWithoutHold(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// A locker that never took the key must not issue an unlock at all.
	locker := NewAdvisoryLocker(db)
	require.NoError(t, locker.Unlock(context.Background(), "dispatch:c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
