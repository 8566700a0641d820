package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-accounts/app/dto"
	"github.com/vibast-solutions/ms-go-accounts/app/entity"
	"github.com/vibast-solutions/ms-go-accounts/app/password"
	"github.com/vibast-solutions/ms-go-accounts/app/repository"
	"github.com/vibast-solutions/ms-go-accounts/app/token"
	"github.com/vibast-solutions/ms-go-accounts/config"

	"github.com/sirupsen/logrus"
)

var (
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAccountInactive       = errors.New("account is inactive")
	ErrAccountNotVerified    = errors.New("account not verified")
	ErrAccountNotFound       = errors.New("account not found")
	ErrAlreadyVerified       = errors.New("account is already verified")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrWeakPassword          = errors.New("password does not meet policy requirements")
	ErrNotifyFailed          = errors.New("failed to send notification email")
)

type accountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	FindByVerificationToken(ctx context.Context, verificationToken string) (*entity.Account, error)
	FindByResetToken(ctx context.Context, resetToken string) (*entity.Account, error)
	Update(ctx context.Context, account *entity.Account) error
	ConsumeVerificationToken(ctx context.Context, accountID uint64, verificationToken string) (bool, error)
	ConsumeResetToken(ctx context.Context, accountID uint64, resetToken, passwordHash string) (bool, error)
}

// Notifier delivers account emails. Sends are best-effort; only the resend
// path propagates a delivery failure to the caller.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, email, name, verificationToken string) error
	SendPasswordResetEmail(ctx context.Context, email, name, resetToken string) error
}

type AccountService interface {
	Signup(ctx context.Context, email, name, pass string) (*dto.SignupResult, error)
	Login(ctx context.Context, email, pass string) (*dto.LoginResult, error)
	GetCurrentAccount(ctx context.Context, sessionToken string) (*entity.Account, error)
	VerifyEmail(ctx context.Context, verificationToken string) error
	ResendVerification(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	VerifySessionToken(sessionToken string) (string, error)
}

type AsyncRunner func(task func())

type AccountServiceOption func(*accountService)

type accountService struct {
	accountRepo accountRepository
	notifier    Notifier
	sessions    *token.SessionCodec
	cfg         *config.Config
	asyncRunner AsyncRunner
}

func NewAccountService(
	accountRepo accountRepository,
	notifier Notifier,
	sessions *token.SessionCodec,
	cfg *config.Config,
	opts ...AccountServiceOption,
) AccountService {
	svc := &accountService{
		accountRepo: accountRepo,
		notifier:    notifier,
		sessions:    sessions,
		cfg:         cfg,
		asyncRunner: func(task func()) {
			go task()
		},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithAsyncRunner(runner AsyncRunner) AccountServiceOption {
	return func(s *accountService) {
		if runner != nil {
			s.asyncRunner = runner
		}
	}
}

func (s *accountService) Signup(ctx context.Context, email, name, pass string) (*dto.SignupResult, error) {
	existing, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	if err = s.cfg.Password.Policy.Validate(pass); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	passwordHash, err := password.Hash(pass)
	if err != nil {
		return nil, err
	}

	verificationToken, err := token.NewOpaque()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	account := &entity.Account{
		Email:             email,
		DisplayName:       name,
		PasswordHash:      passwordHash,
		IsActive:          true,
		IsVerified:        false,
		VerificationToken: sql.NullString{String: verificationToken, Valid: true},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err = s.accountRepo.Create(ctx, account); err != nil {
		// The unique index is the authority; a concurrent signup can slip
		// past the existence check above.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.asyncRunner(func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Mail.SendTimeout)
		defer cancel()

		if sendErr := s.notifier.SendVerificationEmail(sendCtx, account.Email, account.DisplayName, verificationToken); sendErr != nil {
			logrus.WithError(sendErr).WithField("email", account.Email).Error("failed to send verification email")
		}
	})

	return &dto.SignupResult{
		Account:           account,
		VerificationToken: verificationToken,
	}, nil
}

func (s *accountService) Login(ctx context.Context, email, pass string) (*dto.LoginResult, error) {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		// Unknown email and wrong password are indistinguishable.
		return nil, ErrInvalidCredentials
	}

	if err = password.Verify(pass, account.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, ErrAccountInactive
	}
	if !account.IsVerified {
		return nil, ErrAccountNotVerified
	}

	accessToken, err := s.sessions.Issue(account.Email)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResult{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.sessions.TTL().Seconds()),
	}, nil
}

func (s *accountService) GetCurrentAccount(ctx context.Context, sessionToken string) (*entity.Account, error) {
	subject, err := s.sessions.Verify(sessionToken)
	if err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByEmail(ctx, subject)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

func (s *accountService) VerifyEmail(ctx context.Context, verificationToken string) error {
	account, err := s.accountRepo.FindByVerificationToken(ctx, verificationToken)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrInvalidOrExpiredToken
	}

	if account.IsVerified {
		return ErrAlreadyVerified
	}

	// The update re-checks the precondition, so of two concurrent requests
	// bearing the same token at most one succeeds.
	consumed, err := s.accountRepo.ConsumeVerificationToken(ctx, account.ID, verificationToken)
	if err != nil {
		return err
	}
	if !consumed {
		return ErrInvalidOrExpiredToken
	}

	return nil
}

func (s *accountService) ResendVerification(ctx context.Context, email string) error {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}

	if account.IsVerified {
		return ErrAlreadyVerified
	}

	// A fresh token supersedes any outstanding one.
	verificationToken, err := token.NewOpaque()
	if err != nil {
		return err
	}
	account.VerificationToken = sql.NullString{String: verificationToken, Valid: true}

	if err = s.accountRepo.Update(ctx, account); err != nil {
		return err
	}

	if err = s.notifier.SendVerificationEmail(ctx, account.Email, account.DisplayName, verificationToken); err != nil {
		logrus.WithError(err).WithField("email", account.Email).Error("failed to resend verification email")
		return fmt.Errorf("%w: %s", ErrNotifyFailed, err.Error())
	}

	return nil
}

func (s *accountService) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account == nil || !account.IsVerified {
		// Outwardly identical to the success path.
		logrus.WithField("email", email).Debug("password reset requested for unknown or unverified email")
		return nil
	}

	resetToken, err := token.NewOpaque()
	if err != nil {
		return err
	}
	account.ResetToken = sql.NullString{String: resetToken, Valid: true}
	account.ResetTokenExpiresAt = sql.NullTime{
		Time:  time.Now().Add(s.cfg.Tokens.ResetTTL),
		Valid: true,
	}

	if err = s.accountRepo.Update(ctx, account); err != nil {
		return err
	}

	s.asyncRunner(func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Mail.SendTimeout)
		defer cancel()

		if sendErr := s.notifier.SendPasswordResetEmail(sendCtx, account.Email, account.DisplayName, resetToken); sendErr != nil {
			logrus.WithError(sendErr).WithField("email", account.Email).Error("failed to send password reset email")
		}
	})

	return nil
}

func (s *accountService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	account, err := s.accountRepo.FindByResetToken(ctx, resetToken)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrInvalidOrExpiredToken
	}

	// Expiry is checked lazily; an expired token is indistinguishable from an
	// unknown one.
	if !account.HasValidResetToken(time.Now()) {
		return ErrInvalidOrExpiredToken
	}

	if err = s.cfg.Password.Policy.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	passwordHash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	consumed, err := s.accountRepo.ConsumeResetToken(ctx, account.ID, resetToken, passwordHash)
	if err != nil {
		return err
	}
	if !consumed {
		return ErrInvalidOrExpiredToken
	}

	return nil
}

func (s *accountService) VerifySessionToken(sessionToken string) (string, error) {
	return s.sessions.Verify(sessionToken)
}
