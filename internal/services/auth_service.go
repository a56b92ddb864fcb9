package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"classroom-service/internal/config"
	"classroom-service/internal/mailer"
	"classroom-service/internal/models"
	"classroom-service/internal/repositories/postgres"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidCode         = errors.New("invalid verification code")
	ErrCodeExpired         = errors.New("verification code expired")
	ErrNoPendingSignup     = errors.New("no pending registration for this email")
	ErrResendThrottled     = errors.New("a code was sent recently, try again later")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrEmailDeliveryFailed = errors.New("failed to send verification email")
)

type AuthService struct {
	users  *postgres.UserRepository
	mailer mailer.Mailer
	redis  *RedisService
	jwtCfg *config.JWTConfig
	email  *config.EmailConfig
}

func NewAuthService(users *postgres.UserRepository, m mailer.Mailer, redis *RedisService, jwtCfg *config.JWTConfig, emailCfg *config.EmailConfig) *AuthService {
	return &AuthService{
		users:  users,
		mailer: m,
		redis:  redis,
		jwtCfg: jwtCfg,
		email:  emailCfg,
	}
}

// generateVerificationCode returns a 6 digit numeric code.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Register stores a pending signup and emails a verification code. No
// account exists until the code is confirmed. Re-registering the same
// email replaces the pending row and issues a fresh code.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.PendingResponse, error) {
	taken, err := s.users.ExistsByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pending := models.PendingRegistration{
		Email:          req.Email,
		Username:       req.Username,
		HashedPassword: string(hashed),
		Code:           code,
		ExpiresAt:      now.Add(s.email.CodeTTL),
		SentAt:         &now,
	}
	if err := s.users.UpsertPending(&pending); err != nil {
		return nil, fmt.Errorf("failed to store pending registration: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, req.Email, req.Username, code); err != nil {
		slog.Error("verification email failed", "email", req.Email, "error", err)
		return nil, ErrEmailDeliveryFailed
	}
	s.redis.MarkCodeSent(ctx, req.Email, s.email.ResendInterval)

	return &models.PendingResponse{
		Message: "verification code sent",
		Email:   req.Email,
	}, nil
}

// VerifyEmail confirms the code, creates the real account and signs the
// caller in.
func (s *AuthService) VerifyEmail(ctx context.Context, req *models.VerifyEmailRequest) (*models.TokenResponse, error) {
	pending, err := s.users.GetPendingByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoPendingSignup
		}
		return nil, fmt.Errorf("failed to load pending registration: %w", err)
	}

	if pending.Code != req.Code {
		return nil, ErrInvalidCode
	}
	if time.Now().After(pending.ExpiresAt) {
		return nil, ErrCodeExpired
	}

	user := models.User{
		Email:    pending.Email,
		Username: pending.Username,
		Password: pending.HashedPassword,
	}
	if err := s.users.Create(&user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.users.DeletePending(pending.ID); err != nil {
		slog.Error("failed to delete pending registration", "email", pending.Email, "error", err)
	}
	s.redis.ClearCodeSent(ctx, pending.Email)

	return s.tokenResponse(&user)
}

// ResendCode issues a new verification code for a pending signup,
// throttled per address.
func (s *AuthService) ResendCode(ctx context.Context, req *models.ResendCodeRequest) (*models.PendingResponse, error) {
	pending, err := s.users.GetPendingByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoPendingSignup
		}
		return nil, fmt.Errorf("failed to load pending registration: %w", err)
	}

	if !s.redis.MarkCodeSent(ctx, req.Email, s.email.ResendInterval) {
		return nil, ErrResendThrottled
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pending.Code = code
	pending.ExpiresAt = now.Add(s.email.CodeTTL)
	pending.SentAt = &now
	if err := s.users.UpdatePending(pending); err != nil {
		return nil, fmt.Errorf("failed to update pending registration: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, pending.Email, pending.Username, code); err != nil {
		slog.Error("verification email failed", "email", pending.Email, "error", err)
		return nil, ErrEmailDeliveryFailed
	}

	return &models.PendingResponse{
		Message: "verification code sent",
		Email:   pending.Email,
	}, nil
}

func (s *AuthService) Login(req *models.LoginRequest) (*models.TokenResponse, error) {
	user, err := s.users.GetByEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.tokenResponse(user)
}

func (s *AuthService) GetProfile(userID uint) (*models.UserResponse, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	resp := models.NewUserResponse(user)
	return &resp, nil
}

func (s *AuthService) UpdateProfile(userID uint, req *models.UpdateProfileRequest) (*models.UserResponse, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.users.ExistsByEmail(*req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		user.Email = *req.Email
	}
	if req.Username != nil {
		user.Username = *req.Username
	}

	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	resp := models.NewUserResponse(user)
	return &resp, nil
}

func (s *AuthService) UpdatePassword(userID uint, req *models.UpdatePasswordRequest) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)

	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

/** ---------------- tokens ---------------- */

func (s *AuthService) generateJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(s.jwtCfg.ExpirationTime).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.Secret))
}

func (s *AuthService) tokenResponse(user *models.User) (*models.TokenResponse, error) {
	token, err := s.generateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        models.NewUserResponse(user),
	}, nil
}

// VerifyToken validates a JWT and returns the user it identifies. Used
// by the WebSocket handshake, where the token arrives in the query
// string rather than an Authorization header.
func (s *AuthService) VerifyToken(tokenString string) (uint, bool) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	rawID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, false
	}

	userID := uint(rawID)
	if _, err := s.users.GetByID(userID); err != nil {
		return 0, false
	}
	return userID, true
}
