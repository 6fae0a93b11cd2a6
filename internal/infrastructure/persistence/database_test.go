package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/hortifruti/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_PingAndClose(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	db, err := NewDatabaseFromGorm(mdb.DB)
	require.NoError(t, err)

	require.NoError(t, db.Ping(context.Background()))

	mdb.Mock.ExpectClose()
	assert.NoError(t, db.Close())
	mdb.ExpectationsWereMet(t)
}

func TestDatabase_PingCancelled(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	db, err := NewDatabaseFromGorm(mdb.DB)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = db.Ping(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
