package auth_test

import (
	"context"
	"testing"

	"github.com/jhoicas/stockledger-api/internal/application/auth"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockledger-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jwtCfg = auth.JWTConfig{Secret: "test-secret", ExpMinutes: 15, Issuer: "stockledger"}

func TestRegisterUser_RolWarehouseYNombreUnico(t *testing.T) {
	users := memory.NewUserRepo(memory.NewStore())
	uc := auth.NewAuthUseCase(users, jwtCfg)
	ctx := context.Background()

	out, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: "bodega1", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleWarehouse, out.Role)

	stored, err := users.GetByUsername(ctx, "bodega1")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Username: "bodega1", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	users := memory.NewUserRepo(memory.NewStore())
	uc := auth.NewAuthUseCase(users, jwtCfg)
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: "bodega1", Password: "password123"})
	require.NoError(t, err)

	out, err := uc.Login(ctx, dto.LoginRequest{Username: "bodega1", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleWarehouse, out.Role)
	assert.False(t, out.User.LastLogin.IsZero())

	claims, err := jwt.Parse(jwtCfg.Secret, jwtCfg.Issuer, out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, claims.UserID)
	assert.Equal(t, "bodega1", claims.Username)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "bodega1", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGetUser(t *testing.T) {
	users := memory.NewUserRepo(memory.NewStore())
	uc := auth.NewAuthUseCase(users, jwtCfg)
	ctx := context.Background()
	created, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: "bodega2", Password: "password123"})
	require.NoError(t, err)

	got, err := uc.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "bodega2", got.Username)

	_, err = uc.GetUser(ctx, "00000000-0000-0000-0000-0000000000ff")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.GetUser(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
