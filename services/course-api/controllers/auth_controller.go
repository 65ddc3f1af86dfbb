package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/course-store/pkg/aws"
	apperrors "github.com/yashrajoria/course-store/services/common/errors"
	"github.com/yashrajoria/course-store/services/common/logger"
	"github.com/yashrajoria/course-store/services/common/middleware"
	"github.com/yashrajoria/course-store/services/course-api/services"
)

// LoginRequest is the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the registration request body
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type IAuthService interface {
	Register(ctx context.Context, name, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
}

type AuthController struct {
	authService IAuthService
	metrics     awspkg.MetricsRecorder
}

// NewAuthController wires the auth handlers. metrics may be nil.
func NewAuthController(s IAuthService, metrics awspkg.MetricsRecorder) *AuthController {
	return &AuthController{authService: s, metrics: metrics}
}

func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	res, err := ac.authService.Register(c, req.Name, req.Email, req.Password)
	if err != nil {
		if apperrors.From(err).Code >= http.StatusInternalServerError {
			logger.Error(c, "Registration failed", err)
		}
		_ = c.Error(err)
		return
	}

	ac.count(c, awspkg.MetricRegistrations)
	c.JSON(http.StatusCreated, res)
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	res, err := ac.authService.Login(c, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			ac.count(c, awspkg.MetricLoginsFailed)
			logger.Warn(c, "Login rejected", zap.String("ip", c.ClientIP()))
		} else {
			logger.Error(c, "Login failed", err)
		}
		_ = c.Error(err)
		return
	}

	ac.count(c, awspkg.MetricLoginsSucceeded)
	c.JSON(http.StatusOK, res)
}

func (ac *AuthController) count(ctx context.Context, metric string) {
	if ac.metrics == nil {
		return
	}
	_ = ac.metrics.RecordCount(ctx, metric, map[string]string{"Service": "course-api"})
}

// bindError maps binding failures onto the API error taxonomy. A missing field
// wins over a short password.
func bindError(err error) error {
	if middleware.IsBodyTooLarge(err) {
		return apperrors.ErrPayloadTooLarge
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}

	weak := false
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			return apperrors.ErrMissingField
		case "min":
			weak = true
		}
	}
	if weak {
		return apperrors.ErrWeakPassword
	}
	return apperrors.ErrInvalidInput
}
