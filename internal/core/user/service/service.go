package userapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	userEntity "socialfeed/internal/core/user"
	userPort "socialfeed/internal/ports/user"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "socialfeed"

// UserService registers users and issues JWTs.
type UserService struct {
	UserRepository userPort.UserRepository
	jwtKey         []byte
	tokenTTL       time.Duration
	logger         *zap.Logger
}

func NewUserService(repo userPort.UserRepository, jwtKey []byte, tokenTTL time.Duration, logger *zap.Logger) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		UserRepository: repo,
		jwtKey:         jwtKey,
		tokenTTL:       tokenTTL,
		logger:         logger,
	}
}

// LoginUser checks the password and returns a signed token.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (*userPort.LoginResponse, error) {
	user, err := s.UserRepository.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, userEntity.ErrUserNotFound) {
			s.logger.Error("Error finding user", zap.Error(err))
		}
		return nil, userEntity.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, userEntity.ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	token, err := s.generateJWT(user, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("could not generate token: %w", err)
	}

	return &userPort.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

func (s *UserService) generateJWT(user *userEntity.User, expiresAt time.Time) (string, error) {
	claims := &jwt.StandardClaims{
		Subject:   user.ID.String(),
		Issuer:    tokenIssuer,
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtKey)
}

// RegisterUser creates a user with a bcrypt-hashed password.
func (s *UserService) RegisterUser(ctx context.Context, firstname, lastname, email, password, avatar string) (*userPort.UserDTO, error) {
	email = normalizeEmail(email)

	existing, err := s.UserRepository.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, userEntity.ErrUserExists
	}
	if err != nil && !errors.Is(err, userEntity.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &userEntity.User{
		ID:        uuid.Must(uuid.NewV4()),
		Firstname: firstname,
		Lastname:  lastname,
		Email:     email,
		Avatar:    avatar,
		Password:  string(hashedPassword),
	}

	u, err := s.UserRepository.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	return &userPort.UserDTO{
		ID:        u.ID.String(),
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
		Avatar:    u.Avatar,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
