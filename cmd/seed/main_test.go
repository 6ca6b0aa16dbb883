package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/RegaWeng/riseUp/pkg/auth"
	"github.com/RegaWeng/riseUp/pkg/role"
)

type fakeRepo struct {
	users   map[string]auth.User
	deleted []string
}

func (r *fakeRepo) Create(_ context.Context, u auth.User) error {
	if _, ok := r.users[u.Email]; ok {
		return auth.ErrUserAlreadyExists
	}
	r.users[u.Email] = u
	return nil
}

func (r *fakeRepo) GetByEmail(_ context.Context, email string) (auth.User, error) {
	u, ok := r.users[email]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	return u, nil
}

func (r *fakeRepo) GetByID(context.Context, uuid.UUID) (auth.User, error) {
	return auth.User{}, auth.ErrNotFound
}

func (r *fakeRepo) DeleteByEmail(_ context.Context, emails ...string) (int64, error) {
	var n int64
	for _, e := range emails {
		r.deleted = append(r.deleted, e)
		if _, ok := r.users[e]; ok {
			delete(r.users, e)
			n++
		}
	}
	return n, nil
}

func TestSeedReplacesDevAccounts(t *testing.T) {
	repo := &fakeRepo{users: map[string]auth.User{
		"admin@riseup.com": {Email: "admin@riseup.com", Type: role.AccountUser},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, seed(context.Background(), repo, logger))

	assert.Len(t, repo.deleted, 3)
	require.Len(t, repo.users, 3)
	admin := repo.users["admin@riseup.com"]
	assert.Equal(t, role.AccountAdmin, admin.Type)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")))
	assert.Equal(t, role.AccountEmployer, repo.users["yourboss@company.com"].Type)

	// running twice is fine
	require.NoError(t, seed(context.Background(), repo, logger))
	assert.Len(t, repo.users, 3)
}
