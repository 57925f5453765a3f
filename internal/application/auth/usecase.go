package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/heladeria-api/internal/application/dto"
	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/access"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
	"github.com/jhoicas/heladeria-api/pkg/jwt"
	"github.com/jhoicas/heladeria-api/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro, alta de usuarios y login.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	log      *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, log: log.Component("auth")}
}

// RegisterUser registro público: el usuario siempre queda como CLIENT.
// Devuelve ErrUsernameAlreadyTaken si el username ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	return uc.create(ctx, in, entity.RoleClient)
}

// CreateUser alta de un usuario con cualquier rol (solo administrador).
func (uc *AuthUseCase) CreateUser(ctx context.Context, actor access.Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := access.Authorize(actor, access.OpCreateUser); err != nil {
		return nil, err
	}
	role, ok := entity.ParseRole(in.Role)
	if !ok {
		return nil, domain.NewValidationError("role", "rol inválido")
	}
	out, err := uc.create(ctx, in.RegisterRequest, role)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("created_by", actor.UserID).Str("user_id", out.ID).Str("role", out.Role).Msg("usuario creado por administrador")
	return out, nil
}

func (uc *AuthUseCase) create(ctx context.Context, in dto.RegisterRequest, role entity.Role) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.NewValidationError("username", "el nombre de usuario es requerido")
	}
	if len(in.Password) < 8 {
		return nil, domain.NewValidationError("password", "la contraseña debe tener al menos 8 caracteres")
	}
	existing, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUsernameAlreadyTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login verifica username/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, string(user.Role), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
