package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"bobsgarage/api/internal/models"
)

func newUserRepoMock(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("bob", "bob@bobsgarage.com", []byte("hash"), false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))

	user := &models.User{
		Username:     "bob",
		Email:        "bob@bobsgarage.com",
		PasswordHash: []byte("hash"),
	}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)
	require.Equal(t, now, user.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("bob", "bob@bobsgarage.com", []byte("hash"), false).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &models.User{
		Username:     "bob",
		Email:        "bob@bobsgarage.com",
		PasswordHash: []byte("hash"),
	})
	require.ErrorIs(t, err, ErrUserExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func userRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "username", "email", "password_hash", "is_admin",
		"last_login_at", "created_at", "updated_at",
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
		WithArgs(int64(7)).
		WillReturnRows(userRows().AddRow(
			int64(7), "bob", "bob@bobsgarage.com", []byte("hash"), true,
			(*time.Time)(nil), now, now,
		))

	user, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), user.ID)
	require.Equal(t, "bob", user.Username)
	require.True(t, user.IsAdmin)
	require.Nil(t, user.LastLoginAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
		WithArgs("bob@bobsgarage.com").
		WillReturnRows(userRows().AddRow(
			int64(7), "bob", "bob@bobsgarage.com", []byte("hash"), false,
			(*time.Time)(nil), now, now,
		))

	user, err := repo.FindByEmail(context.Background(), "bob@bobsgarage.com")
	require.NoError(t, err)
	require.Equal(t, "bob@bobsgarage.com", user.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM users ORDER BY id`).
		WillReturnRows(userRows().
			AddRow(int64(1), "bob", "bob@bobsgarage.com", []byte("h1"), true, (*time.Time)(nil), now, now).
			AddRow(int64(2), "alice", "alice@example.com", []byte("h2"), false, &now, now, now))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "alice", users[1].Username)
	require.NotNil(t, users[1].LastLoginAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ToggleAdmin(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery(`UPDATE users SET is_admin = NOT is_admin`).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"is_admin"}).AddRow(true))

	isAdmin, err := repo.ToggleAdmin(context.Background(), 2)
	require.NoError(t, err)
	require.True(t, isAdmin)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ToggleAdmin_NotFound(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery(`UPDATE users SET is_admin = NOT is_admin`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.ToggleAdmin(context.Background(), 404)
	require.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_TouchLastLogin(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(`UPDATE users SET last_login_at = NOW`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.TouchLastLogin(context.Background(), 7))
	require.NoError(t, mock.ExpectationsWereMet())
}
