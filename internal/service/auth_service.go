package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"legal-aid-be/internal/dto"
	"legal-aid-be/internal/entity"
	"legal-aid-be/internal/pkg/logger"
	"legal-aid-be/internal/pkg/mailer"
	"legal-aid-be/internal/repository/specification"
	"legal-aid-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const otpLifetime = 15 * time.Minute

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error
	ResendCode(ctx context.Context, req *dto.ResendCodeRequest) error
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type authService struct {
	uowFactory    unitofwork.RepositoryFactory
	emailService  mailer.IEmailService
	jwtSecret     []byte
	tokenLifetime time.Duration
	logger        logger.ILogger
	now           func() time.Time
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	jwtSecret string,
	tokenLifetime time.Duration,
	logger logger.ILogger,
) IAuthService {
	if tokenLifetime <= 0 {
		tokenLifetime = 24 * time.Hour
	}
	return &authService{
		uowFactory:    uowFactory,
		emailService:  emailService,
		jwtSecret:     []byte(jwtSecret),
		tokenLifetime: tokenLifetime,
		logger:        logger,
		now:           time.Now,
	}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &entity.User{
		Id:            uuid.New(),
		Email:         email,
		FullName:      strings.TrimSpace(req.FullName),
		PasswordHash:  string(hash),
		Role:          entity.UserRoleUser,
		Status:        entity.UserStatusPending,
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	otpCode, err := generateOTP()
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	verificationToken := &entity.EmailVerificationToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     otpCode,
		ExpiresAt: now.Add(otpLifetime),
		CreatedAt: now,
	}
	if err := uow.UserRepository().CreateEmailVerificationToken(ctx, verificationToken); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("AUTH", "User registered", map[string]interface{}{"user_id": user.Id.String()})
	s.sendAsync("registration OTP", user.Email, func() error {
		return s.emailService.SendOTP(user.Email, otpCode)
	})

	return &dto.RegisterResponse{Id: user.Id, Email: user.Email}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if user.Status == entity.UserStatusActive {
		return nil
	}

	tokenEntity, err := uow.UserRepository().FindEmailVerificationToken(ctx,
		specification.UserOwnedBy{UserID: user.Id},
		specification.ByToken{Token: req.Token},
		specification.NotExpired{Now: s.now()},
	)
	if err != nil {
		return err
	}
	if tokenEntity == nil {
		return ErrInvalidOrExpiredCode
	}

	return unitofwork.InTransaction(ctx, s.uowFactory, func(tx unitofwork.UnitOfWork) error {
		if err := tx.UserRepository().ActivateUser(ctx, user.Id); err != nil {
			return err
		}
		return tx.UserRepository().DeleteEmailVerificationTokens(ctx, user.Id)
	})
}

// ResendCode replaces any outstanding verification code. Unknown and
// already verified addresses succeed silently.
func (s *authService) ResendCode(ctx context.Context, req *dto.ResendCodeRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return err
	}
	if user == nil || user.Status != entity.UserStatusPending {
		return nil
	}

	otpCode, err := generateOTP()
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().DeleteEmailVerificationTokens(ctx, user.Id); err != nil {
		return err
	}
	now := s.now()
	if err := uow.UserRepository().CreateEmailVerificationToken(ctx, &entity.EmailVerificationToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     otpCode,
		ExpiresAt: now.Add(otpLifetime),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.sendAsync("verification OTP", user.Email, func() error {
		return s.emailService.SendOTP(user.Email, otpCode)
	})
	return nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.Status == entity.UserStatusBlocked {
		return nil, ErrAccountBlocked
	}
	if user.Status == entity.UserStatusPending || !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	expiresAt := s.now().Add(s.tokenLifetime)
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"role":    string(user.Role),
		"exp":     expiresAt.Unix(),
	}
	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: signedToken,
		ExpiresIn:   int64(s.tokenLifetime.Seconds()),
		User: dto.UserDTO{
			Id:       user.Id,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     string(user.Role),
		},
	}, nil
}

// ForgotPassword never reveals whether the address is registered.
func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}

	now := s.now()
	resetToken := &entity.PasswordResetToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     code,
		ExpiresAt: now.Add(otpLifetime),
		CreatedAt: now,
		Used:      false,
	}
	if err := uow.UserRepository().CreatePasswordResetToken(ctx, resetToken); err != nil {
		return err
	}

	s.sendAsync("reset code", user.Email, func() error {
		return s.emailService.SendResetCode(user.Email, code)
	})
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidOrExpiredCode
	}

	tokenEntity, err := uow.UserRepository().FindPasswordResetToken(ctx,
		specification.UserOwnedBy{UserID: user.Id},
		specification.ByToken{Token: req.Token},
		specification.UnusedToken{},
		specification.NotExpired{Now: s.now()},
	)
	if err != nil {
		return err
	}
	if tokenEntity == nil {
		return ErrInvalidOrExpiredCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return unitofwork.InTransaction(ctx, s.uowFactory, func(tx unitofwork.UnitOfWork) error {
		if err := tx.UserRepository().UpdatePassword(ctx, user.Id, string(hash)); err != nil {
			return err
		}
		return tx.UserRepository().MarkTokenUsed(ctx, tokenEntity.Id)
	})
}

func (s *authService) sendAsync(kind, to string, send func() error) {
	go func() {
		if err := send(); err != nil {
			s.logger.Error("AUTH", "Failed to send "+kind, map[string]interface{}{
				"email": to,
				"error": err.Error(),
			})
		}
	}()
}
