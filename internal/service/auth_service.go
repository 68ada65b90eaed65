package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/internal/mailer"
	"github.com/vendora/vendora/internal/repo/postgres"
	"github.com/vendora/vendora/pkg/auth"
	"github.com/vendora/vendora/pkg/config"
	"github.com/vendora/vendora/pkg/events"
	"github.com/vendora/vendora/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error)
	VerifyOTP(ctx context.Context, req *domain.VerifyOTPRequest) (*domain.User, error)
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

type authService struct {
	userRepo postgres.UserRepository
	mailer   mailer.Service
	eventBus events.EventBus
	config   *config.Config
}

func NewAuthService(
	userRepo postgres.UserRepository,
	mailer mailer.Service,
	eventBus events.EventBus,
	config *config.Config,
) AuthService {
	return &authService{
		userRepo: userRepo,
		mailer:   mailer,
		eventBus: eventBus,
		config:   config,
	}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}

	// Email uniqueness is checked across all roles: the users table is
	// shared, so a consumer registration blocks a later vendor one too.
	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user with this email already exists", domain.ErrAlreadyExists)
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	otpHash, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash OTP: %w", err)
	}

	otpExpires := time.Now().Add(s.config.Auth.OTPTTL)

	user, err := s.userRepo.Create(ctx, req, passwordHash, string(otpHash), otpExpires)
	if err != nil {
		if err == postgres.ErrDuplicate {
			return nil, fmt.Errorf("%w: user with this email or username already exists", domain.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish user.registered event", "error", err, "user_id", user.ID)
	}

	// The record stays persisted on mail failure; the caller can recover
	// through resend-otp.
	if err := s.mailer.SendOTPEmail(user.Email, user.Name, otp); err != nil {
		logger.ErrorContext(ctx, "Failed to send OTP email", "error", err, "user_id", user.ID)
		return nil, domain.ErrMailDelivery
	}

	return user, nil
}

func (s *authService) VerifyOTP(ctx context.Context, req *domain.VerifyOTPRequest) (*domain.User, error) {
	if req.Email == "" || req.OTP == "" {
		return nil, fmt.Errorf("%w: email and otp are required", domain.ErrInvalidInput)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}

	if user.OTPHash == "" || user.OTPExpires == nil {
		return nil, domain.ErrInvalidOTP
	}

	// An expired challenge is rejected even when the code matches.
	if time.Now().After(*user.OTPExpires) {
		return nil, domain.ErrExpiredOTP
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.OTPHash), []byte(req.OTP)); err != nil {
		return nil, domain.ErrInvalidOTP
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to mark user as verified: %w", err)
	}

	user.IsVerified = true
	user.OTPHash = ""
	user.OTPExpires = nil

	if err := s.eventBus.Publish(ctx, events.UserVerified, events.UserVerifiedEvent{
		UserID:     user.ID,
		Email:      user.Email,
		VerifiedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish user.verified event", "error", err, "user_id", user.ID)
	}

	return user, nil
}

func (s *authService) ResendOTP(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}

	if user.IsVerified {
		return domain.ErrAlreadyVerified
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	// Hashed like in Register; codes are never stored in plaintext.
	otpHash, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash OTP: %w", err)
	}

	otpExpires := time.Now().Add(s.config.Auth.OTPTTL)

	if err := s.userRepo.SetOTP(ctx, user.ID, string(otpHash), otpExpires); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	if err := s.mailer.SendOTPEmail(user.Email, user.Name, otp); err != nil {
		logger.ErrorContext(ctx, "Failed to send OTP email", "error", err, "user_id", user.ID)
		return domain.ErrMailDelivery
	}

	return nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	// Same message for unknown email and wrong password, so logins cannot
	// be used to enumerate accounts.
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, domain.ErrNotVerified
	}

	accessToken, err := auth.NewToken(user.ID, user.Role, s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken, err := auth.NewToken(user.ID, user.Role, s.config.Auth.JWTRefreshSecret, s.config.Auth.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return &domain.LoginResponse{
		Message:      "Login successful",
		User:         user.ToUserInfo(),
		Token:        accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken mints a new access token from a valid refresh token. The
// refresh token itself is not rotated.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", fmt.Errorf("%w: refresh token not provided", domain.ErrInvalidInput)
	}

	claims, err := auth.Parse(refreshToken, s.config.Auth.JWTRefreshSecret)
	if err != nil {
		return "", fmt.Errorf("%w: invalid refresh token", domain.ErrInvalidToken)
	}

	accessToken, err := auth.NewToken(claims.Sub, claims.Role, s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to create access token: %w", err)
	}

	return accessToken, nil
}

// generateOTP returns a random 6-digit numeric code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
