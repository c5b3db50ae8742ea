package service

import (
	"context"
	"testing"
	"time"

	dom "ventas/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	nextID int64
	m      map[int64]dom.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{m: map[int64]dom.User{}}
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (dom.User, error) {
	for _, u := range f.m {
		if u.Username == username {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (dom.User, error) {
	u, ok := f.m[id]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserRepo) Create(_ context.Context, username, passwordHash string, isAdmin bool) (dom.User, error) {
	for _, u := range f.m {
		if u.Username == username {
			return dom.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	f.nextID++
	u := dom.User{ID: f.nextID, Username: username, PasswordHash: passwordHash, IsAdmin: isAdmin, CreatedAt: time.Now()}
	f.m[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	u, ok := f.m[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = passwordHash
	f.m[id] = u
	return nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.m)), nil
}

func seedUser(t *testing.T, repo *fakeUserRepo, username, password string) dom.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := repo.Create(context.Background(), username, string(hash), false)
	require.NoError(t, err)
	return u
}

func TestUserService_ValidateCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "Luis", "1234")
	svc := NewUserService(repo)
	ctx := context.Background()

	u, err := svc.ValidateCredentials(ctx, "Luis", "1234")
	require.NoError(t, err)
	assert.Equal(t, "Luis", u.Username)

	// Unknown user and wrong password are indistinguishable.
	_, err = svc.ValidateCredentials(ctx, "Luis", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.ValidateCredentials(ctx, "nobody", "1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.ValidateCredentials(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_RegisterNeverAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	u, err := svc.Register(context.Background(), "Johan", "secreto")
	require.NoError(t, err)
	assert.False(t, u.IsAdmin)

	_, err = svc.ValidateCredentials(context.Background(), "Johan", "secreto")
	assert.NoError(t, err)
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Johan", "secreto")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Johan", "otro")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	n, _ := repo.Count(ctx)
	assert.EqualValues(t, 1, n)
}

func TestUserService_ChangePassword(t *testing.T) {
	repo := newFakeUserRepo()
	u := seedUser(t, repo, "Luis", "1234")
	svc := NewUserService(repo)
	ctx := context.Background()
	hashBefore := repo.m[u.ID].PasswordHash

	// Wrong current password: hash untouched.
	err := svc.ChangePassword(ctx, u.ID, "wrong", "nueva", "nueva")
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.Equal(t, hashBefore, repo.m[u.ID].PasswordHash)

	// Mismatched confirmation: hash untouched.
	err = svc.ChangePassword(ctx, u.ID, "1234", "nueva", "distinta")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, hashBefore, repo.m[u.ID].PasswordHash)

	// Empty new password with empty confirmation: not a mismatch, its own error.
	err = svc.ChangePassword(ctx, u.ID, "1234", "", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)
	assert.Equal(t, hashBefore, repo.m[u.ID].PasswordHash)

	// Success: old password stops working, new one logs in.
	err = svc.ChangePassword(ctx, u.ID, "1234", "nueva", "nueva")
	require.NoError(t, err)
	_, err = svc.ValidateCredentials(ctx, "Luis", "1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.ValidateCredentials(ctx, "Luis", "nueva")
	assert.NoError(t, err)
}
