package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factures-api/internal/application/auth"
	"github.com/jhoicas/factures-api/internal/application/dto"
	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/internal/domain/entity"
	"github.com/jhoicas/factures-api/pkg/jwt"
)

type memUsers struct {
	byEmail map[string]*entity.User
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return domain.ErrDuplicate
	}
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.byEmail[email], nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	for _, u := range m.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return domain.ErrUserNotFound
}

const secret = "test-secret"

func newUseCase() (*auth.AuthUseCase, *memUsers) {
	repo := &memUsers{byEmail: map[string]*entity.User{}}
	return auth.NewAuthUseCase(repo, auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "factures-api"}), repo
}

func TestCreateUserYLogin(t *testing.T) {
	uc, repo := newUseCase()
	ctx := context.Background()

	created, err := uc.CreateUser(ctx, dto.CreateUserRequest{Email: "  Compta@Example.FR ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "compta@example.fr", created.Email)
	assert.Equal(t, entity.RoleAdmin, created.Role)
	assert.NotEqual(t, "s3cret-pass", repo.byEmail["compta@example.fr"].PasswordHash)

	res, err := uc.Login(ctx, dto.LoginRequest{Email: "COMPTA@example.fr", Password: "s3cret-pass"})
	require.NoError(t, err)
	userID, role, err := jwt.Parse(secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, userID)
	assert.Equal(t, entity.RoleAdmin, role)
}

func TestCreateUser_EmailDuplicado(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()
	_, err := uc.CreateUser(ctx, dto.CreateUserRequest{Email: "a@b.fr", Password: "password1"})
	require.NoError(t, err)
	_, err = uc.CreateUser(ctx, dto.CreateUserRequest{Email: "A@B.fr", Password: "password2"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()
	_, err := uc.CreateUser(ctx, dto.CreateUserRequest{Email: "a@b.fr", Password: "password1"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@b.fr", Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@b.fr", Password: "password1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
