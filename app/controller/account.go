package controller

import (
	"errors"
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-accounts/app/dto/http"
	"github.com/vibast-solutions/ms-go-accounts/app/service"
	"github.com/vibast-solutions/ms-go-accounts/app/token"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// forgotPasswordMessage is returned for every forgot-password request,
// whether or not the email belongs to an account.
const forgotPasswordMessage = "if the email exists, a password reset link has been sent"

type AccountController struct {
	accountService service.AccountService
}

func NewAccountController(accountService service.AccountService) *AccountController {
	return &AccountController{accountService: accountService}
}

func (c *AccountController) Signup(ctx echo.Context) error {
	var req httpdto.SignupRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind signup request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Signup validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("email", req.Email).Info("Signup request received")
	result, err := c.accountService.Signup(ctx.Request().Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			logrus.WithField("email", req.Email).Warn("Signup failed: email already registered")
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: "email already registered"})
		}
		if errors.Is(err, service.ErrWeakPassword) {
			logrus.WithField("email", req.Email).Warn("Signup failed: weak password")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Signup failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{
		"account_id": result.Account.ID,
		"email":      result.Account.Email,
	}).Info("Account created")

	return ctx.JSON(http.StatusCreated, httpdto.SignupResponse{
		AccountID:  result.Account.ID,
		Email:      result.Account.Email,
		Name:       result.Account.DisplayName,
		IsActive:   result.Account.IsActive,
		IsVerified: result.Account.IsVerified,
		CreatedAt:  result.Account.CreatedAt,
		Message:    "account created, please verify your email address",
	})
}

func (c *AccountController) Login(ctx echo.Context) error {
	var req httpdto.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind login request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Login validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("email", req.Email).Info("Login request received")
	result, err := c.accountService.Login(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logrus.WithField("email", req.Email).Warn("Login failed: invalid credentials")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "incorrect email or password"})
		}
		if errors.Is(err, service.ErrAccountInactive) {
			logrus.WithField("email", req.Email).Warn("Login failed: account inactive")
			return ctx.JSON(http.StatusForbidden, httpdto.ErrorResponse{Error: "account is inactive"})
		}
		if errors.Is(err, service.ErrAccountNotVerified) {
			logrus.WithField("email", req.Email).Warn("Login failed: account not verified")
			return ctx.JSON(http.StatusForbidden, httpdto.ErrorResponse{Error: "account not verified"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Login failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("email", req.Email).Info("Login successful")
	return ctx.JSON(http.StatusOK, httpdto.LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresIn:   result.ExpiresIn,
	})
}

func (c *AccountController) Me(ctx echo.Context) error {
	sessionToken, ok := ctx.Get("session_token").(string)
	if !ok {
		logrus.Warn("Me failed: missing session token in context")
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	account, err := c.accountService.GetCurrentAccount(ctx.Request().Context(), sessionToken)
	if err != nil {
		if errors.Is(err, token.ErrInvalidToken) {
			logrus.Debug("Me failed: invalid session token")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "invalid or expired token"})
		}
		if errors.Is(err, service.ErrAccountNotFound) {
			logrus.Warn("Me failed: account not found")
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "account not found"})
		}
		logrus.WithError(err).Error("Me failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, httpdto.AccountResponse{
		AccountID:  account.ID,
		Email:      account.Email,
		Name:       account.DisplayName,
		IsActive:   account.IsActive,
		IsVerified: account.IsVerified,
		CreatedAt:  account.CreatedAt,
	})
}

func (c *AccountController) VerifyEmail(ctx echo.Context) error {
	var req httpdto.VerifyEmailRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind verify email request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		logrus.Debug("Verify email validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	logrus.Info("Verify email request received")
	err := c.accountService.VerifyEmail(ctx.Request().Context(), req.Token)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyVerified) {
			logrus.Warn("Verify email failed: account already verified")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "account is already verified"})
		}
		if errors.Is(err, service.ErrInvalidOrExpiredToken) {
			logrus.Warn("Verify email failed: invalid or expired token")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid or expired token"})
		}
		logrus.WithError(err).Error("Verify email failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.Info("Email verified")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "email verified successfully"})
}

func (c *AccountController) ResendVerification(ctx echo.Context) error {
	var req httpdto.ResendVerificationRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind resend verification request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		logrus.Debug("Resend verification validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("email", req.Email).Info("Resend verification request received")
	err := c.accountService.ResendVerification(ctx.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			logrus.WithField("email", req.Email).Warn("Resend verification failed: account not found")
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "account not found"})
		}
		if errors.Is(err, service.ErrAlreadyVerified) {
			logrus.WithField("email", req.Email).Warn("Resend verification failed: already verified")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "account is already verified"})
		}
		if errors.Is(err, service.ErrNotifyFailed) {
			logrus.WithField("email", req.Email).Error("Resend verification failed: email delivery failed")
			return ctx.JSON(http.StatusServiceUnavailable, httpdto.ErrorResponse{Error: "failed to send verification email"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Resend verification failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("email", req.Email).Info("Verification email resent")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "verification email sent"})
}

func (c *AccountController) ForgotPassword(ctx echo.Context) error {
	var req httpdto.ForgotPasswordRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind forgot password request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		logrus.Debug("Forgot password validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("email", req.Email).Info("Forgot password request received")
	if err := c.accountService.ForgotPassword(ctx.Request().Context(), req.Email); err != nil {
		logrus.WithError(err).WithField("email", req.Email).Error("Forgot password failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: forgotPasswordMessage})
}

func (c *AccountController) ResetPassword(ctx echo.Context) error {
	var req httpdto.ResetPasswordRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind reset password request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		logrus.Debug("Reset password validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	logrus.Info("Reset password request received")
	err := c.accountService.ResetPassword(ctx.Request().Context(), req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrExpiredToken) {
			logrus.Warn("Reset password failed: invalid or expired token")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid or expired token"})
		}
		if errors.Is(err, service.ErrWeakPassword) {
			logrus.Warn("Reset password failed: weak password")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).Error("Reset password failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.Info("Password reset successful")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "password reset successfully"})
}
