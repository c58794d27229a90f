package liberfly_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/goliatone/go-repository-bun"
	liberfly "github.com/liberfly/liberfly-api"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = db.NewCreateTable().
		Model((*liberfly.User)(nil)).
		IfNotExists().
		Exec(context.Background())
	require.NoError(t, err)

	return db
}

func TestRegisterThenLoginKeepsEmailCase(t *testing.T) {
	ctx := context.Background()
	users := liberfly.NewUsersRepository(newTestDB(t))

	hash, err := liberfly.HashPassword("password123")
	require.NoError(t, err)

	_, err = users.Register(ctx, &liberfly.User{
		Name:         "John",
		Email:        "John@Example.com",
		PasswordHash: hash,
	})
	require.NoError(t, err)

	// the email used at registration must work at login as is
	found, err := users.GetByEmail(ctx, "John@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "John@Example.com", found.Email)

	verifier := liberfly.NewCredentialVerifier(users)

	user, err := verifier.Verify(ctx, "John@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "John@Example.com", user.Email)
}

func TestGetByEmailTrimsWhitespace(t *testing.T) {
	ctx := context.Background()
	users := liberfly.NewUsersRepository(newTestDB(t))

	_, err := users.Register(ctx, &liberfly.User{
		Name:         "Test User",
		Email:        "  user@example.com ",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	found, err := users.GetByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", found.Email)
}

func TestGetByEmailMiss(t *testing.T) {
	users := liberfly.NewUsersRepository(newTestDB(t))

	found, err := users.GetByEmail(context.Background(), "nobody@example.com")
	assert.Nil(t, found)
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestVerifyUnknownEmailAgainstStore(t *testing.T) {
	users := liberfly.NewUsersRepository(newTestDB(t))
	verifier := liberfly.NewCredentialVerifier(users)

	user, err := verifier.Verify(context.Background(), "nobody@example.com", "password123")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, liberfly.ErrMismatchedHashAndPassword)
}

func TestUserDirectoryOverRepository(t *testing.T) {
	ctx := context.Background()
	users := liberfly.NewUsersRepository(newTestDB(t))

	first, err := users.Register(ctx, &liberfly.User{
		Name:         "First",
		Email:        "first@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	_, err = users.Register(ctx, &liberfly.User{
		Name:         "Second",
		Email:        "second@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	directory := liberfly.NewUserDirectory(users)

	listed, err := directory.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	found, err := directory.GetByID(ctx, first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "first@example.com", found.Email)

	_, err = directory.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, liberfly.ErrIdentityNotFound)
}
