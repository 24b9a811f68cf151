package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhishek017/GradPilot/internal/auth"
	"github.com/abhishek017/GradPilot/internal/graduate"
	"github.com/abhishek017/GradPilot/internal/photo"
	"github.com/abhishek017/GradPilot/internal/stage"
)

// AuthConfig is the slice of app config the login endpoints need.
type AuthConfig struct {
	Issuer     string
	SigningKey string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	StaffUser  string
	StaffPass  string
}

type Handler struct {
	grads   *graduate.Service
	stage   *stage.Service
	photos  *photo.Store
	authCfg AuthConfig
	log     *zap.Logger
}

func New(grads *graduate.Service, st *stage.Service, photos *photo.Store, authCfg AuthConfig, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{grads: grads, stage: st, photos: photos, authCfg: authCfg, log: log}
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ---------- Auth ----------

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the shared staff credential and issues a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := auth.CheckStaffLogin(req.Username, req.Password, h.authCfg.StaffUser, h.authCfg.StaffPass); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	tokens, err := auth.Issue(req.Username, h.authCfg.Issuer, h.authCfg.SigningKey, h.authCfg.AccessTTL, h.authCfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh validates a refresh token and issues a fresh pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims, err := auth.Parse(req.RefreshToken, h.authCfg.SigningKey, h.authCfg.Issuer)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	tokens, err := auth.Issue(claims.Subject, h.authCfg.Issuer, h.authCfg.SigningKey, h.authCfg.AccessTTL, h.authCfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

// renderError maps domain errors to HTTP responses.
func (h *Handler) renderError(c *gin.Context, err error) {
	var verr *graduate.ValidationError
	switch {
	case errors.Is(err, graduate.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "graduate not found"})
	case errors.Is(err, stage.ErrNotEligible):
		c.JSON(http.StatusConflict, gin.H{"error": "graduate not eligible for stage"})
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verr.Fields})
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
