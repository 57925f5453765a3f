package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/heladeria-api/internal/application/dto"
	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/access"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/infrastructure/memory"
	"github.com/jhoicas/heladeria-api/pkg/jwt"
	"github.com/jhoicas/heladeria-api/pkg/logger"
)

const testSecret = "secreto-de-pruebas"

func newAuth() (*AuthUseCase, *memory.Store) {
	s := memory.NewStore()
	uc := NewAuthUseCase(s.Users(), JWTConfig{Secret: testSecret, ExpMinutes: 60, Issuer: "heladeria-test"}, logger.Nop())
	return uc, s
}

func register(username string) dto.RegisterRequest {
	return dto.RegisterRequest{Username: username, Email: username + "@heladeria.test", Password: "helado-123"}
}

func TestRegisterUser_SiempreCliente(t *testing.T) {
	uc, _ := newAuth()
	out, err := uc.RegisterUser(context.Background(), register("ana"))
	require.NoError(t, err)
	assert.Equal(t, string(entity.RoleClient), out.Role)
	assert.True(t, out.IsActive)
	assert.NotEmpty(t, out.ID)
}

func TestRegisterUser_Duplicado(t *testing.T) {
	uc, _ := newAuth()
	_, err := uc.RegisterUser(context.Background(), register("ana"))
	require.NoError(t, err)
	_, err = uc.RegisterUser(context.Background(), register("  ana "))
	assert.ErrorIs(t, err, domain.ErrUsernameAlreadyTaken)
}

func TestRegisterUser_PasswordCorta(t *testing.T) {
	uc, _ := newAuth()
	in := register("ana")
	in.Password = "corta"
	_, err := uc.RegisterUser(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_TokenConRol(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()
	user, err := uc.RegisterUser(ctx, register("ana"))
	require.NoError(t, err)

	out, err := uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "helado-123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, out.User.ID)

	claims, err := jwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "CLIENT", claims.Role)
}

func TestLogin_Fallos(t *testing.T) {
	uc, s := newAuth()
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, register("ana"))
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "helado-123"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	hash, err := bcrypt.GenerateFromPassword([]byte("helado-123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, s.Users().Create(ctx, &entity.User{
		ID: "u-inactivo", Username: "baja", PasswordHash: string(hash),
		Role: entity.RoleEmployee, IsActive: false, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "baja", Password: "helado-123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateUser_SoloAdministrador(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()
	in := dto.CreateUserRequest{RegisterRequest: register("luis"), Role: "EMPLOYEE"}

	_, err := uc.CreateUser(ctx, access.NewActor("u-emp", entity.RoleEmployee), in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.CreateUser(ctx, access.Anonymous(), in)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	out, err := uc.CreateUser(ctx, access.NewActor("u-admin", entity.RoleAdministrator), in)
	require.NoError(t, err)
	assert.Equal(t, "EMPLOYEE", out.Role)

	in.Username, in.Role = "otro", "GERENTE"
	_, err = uc.CreateUser(ctx, access.NewActor("u-admin", entity.RoleAdministrator), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
