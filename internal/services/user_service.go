package services

import (
	"context"
	"strings"
	"time"

	"github.com/ManishSRawat/e-sell/internal/auth"
	"github.com/ManishSRawat/e-sell/internal/config"
	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/ManishSRawat/e-sell/internal/infra"
	"github.com/ManishSRawat/e-sell/internal/notify"
	"github.com/ManishSRawat/e-sell/internal/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const ForgotPasswordMessage = "If your email is registered, you will receive a password reset link"

type UserService struct {
	store     repository.Store
	tokens    *auth.TokenManager
	notifier  infra.Notifier
	runner    notify.Runner
	resetTTL  time.Duration
	publicURL string
	log       *zap.Logger
	now       func() time.Time
}

func NewUserService(store repository.Store, tokens *auth.TokenManager, notifier infra.Notifier, runner notify.Runner,
	cfg config.AuthConfig, publicURL string, log *zap.Logger) *UserService {
	if !strings.HasSuffix(publicURL, "/") {
		publicURL += "/"
	}
	return &UserService{
		store:     store,
		tokens:    tokens,
		notifier:  notifier,
		runner:    runner,
		resetTTL:  cfg.ResetTokenTTL,
		publicURL: publicURL,
		log:       log,
		now:       time.Now,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" || strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, domain.Validationf("missing required fields")
	}
	if !strings.Contains(email, "@") {
		return nil, domain.Validationf("invalid email address")
	}
	if _, err := s.store.Users().FindByEmail(ctx, email); err == nil {
		return nil, errors.WithMessage(domain.ErrConflict, "email already registered")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	token := newToken()
	u := &domain.User{
		Email:             email,
		PasswordHash:      hash,
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		Role:              domain.RoleBuyer,
		IsActive:          true,
		VerificationToken: &token,
	}
	if err := s.store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, errors.WithMessage(domain.ErrConflict, "email already registered")
		}
		return nil, err
	}

	msg := welcomeEmail(u, s.publicURL+"verify-email/"+token)
	s.runner.Go("welcome email", func(ctx context.Context) error {
		return s.notifier.Send(ctx, msg.To, msg.Subject, msg.Body)
	})
	s.log.Info("user registered", zap.Int64("user_id", u.ID))
	return u, nil
}

type LoginResult struct {
	User   *domain.User
	Tokens *auth.TokenPair
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Validationf("missing email or password")
	}
	u, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, errors.WithMessage(domain.ErrUnauthenticated, "invalid email or password")
	}
	if !u.IsActive {
		return nil, errors.WithMessage(domain.ErrUnauthenticated, "account is not active")
	}
	pair, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, Tokens: pair}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	id, err := s.tokens.Parse(refreshToken, auth.KindRefresh)
	if err != nil {
		return "", err
	}
	u, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", errors.WithMessage(domain.ErrUnauthenticated, "user not found")
		}
		return "", err
	}
	if !u.IsActive {
		return "", errors.WithMessage(domain.ErrUnauthenticated, "account is not active")
	}
	return s.tokens.IssueAccess(u)
}

func (s *UserService) Profile(ctx context.Context, id int64) (*domain.User, error) {
	return s.store.Users().FindByID(ctx, id)
}

type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Password  *string
}

func (s *UserService) UpdateProfile(ctx context.Context, actor *domain.User, patch ProfilePatch) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	u, err := s.store.Users().FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if patch.FirstName != nil {
		if strings.TrimSpace(*patch.FirstName) == "" {
			return nil, domain.Validationf("first_name must not be empty")
		}
		u.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		if strings.TrimSpace(*patch.LastName) == "" {
			return nil, domain.Validationf("last_name must not be empty")
		}
		u.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if err := s.store.Users().Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return domain.Validationf("invalid verification token")
	}
	u, err := s.store.Users().FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Validationf("invalid verification token")
		}
		return err
	}
	u.IsActive = true
	u.EmailVerified = true
	u.VerificationToken = nil
	return s.store.Users().Update(ctx, u)
}

// ForgotPassword stores a reset token and mails it. Unknown addresses succeed
// silently. The email is sent before returning: a reset token nobody receives
// is useless, so a delivery failure is reported to the caller.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.Validationf("email is required")
	}
	u, err := s.store.Users().FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token := newToken()
	expires := s.now().Add(s.resetTTL)
	u.ResetToken = &token
	u.ResetTokenExpires = &expires
	if err := s.store.Users().Update(ctx, u); err != nil {
		return err
	}

	msg := resetEmail(u, s.publicURL+"reset-password/"+token)
	if err := s.notifier.Send(ctx, msg.To, msg.Subject, msg.Body); err != nil {
		s.log.Error("password reset email failed", zap.Int64("user_id", u.ID), zap.Error(err))
		return errors.Wrap(err, "failed to send reset email")
	}
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	if password == "" {
		return domain.Validationf("new password is required")
	}
	u, err := s.store.Users().FindByResetToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Validationf("invalid or expired reset token")
		}
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.ResetToken = nil
	u.ResetTokenExpires = nil
	return s.store.Users().Update(ctx, u)
}

// PurgeExpiredResetTokens clears reset tokens whose expiry has passed.
func (s *UserService) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	return s.store.Users().PurgeExpiredResetTokens(ctx, s.now())
}
