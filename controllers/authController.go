package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/nazar-zhcet26/Tenant-management/config"
	"github.com/nazar-zhcet26/Tenant-management/middlewares"
	"github.com/nazar-zhcet26/Tenant-management/models"
	"github.com/nazar-zhcet26/Tenant-management/storage"
	"github.com/nazar-zhcet26/Tenant-management/utils"
)

type AuthController struct {
	tenants storage.TenantRepository
	cfg     *config.Config
}

func NewAuthController(tenants storage.TenantRepository, cfg *config.Config) *AuthController {
	return &AuthController{tenants: tenants, cfg: cfg}
}

func tenantResponse(t *models.Tenant) gin.H {
	return gin.H{
		"id":        t.ID,
		"name":      t.Name,
		"email":     t.Email,
		"unit":      t.Unit,
		"createdAt": t.CreatedAt,
	}
}

// RegisterTenant handles tenant registration
func (a *AuthController) RegisterTenant(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Unit     string `json:"unit" binding:"max=20"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	now := time.Now()
	tenant := models.Tenant{
		Name:      input.Name,
		Email:     strings.ToLower(input.Email),
		Unit:      input.Unit,
		Password:  input.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := tenant.HashPassword(); err != nil {
		log.WithError(err).Error("Error hashing password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	if err := a.tenants.Create(ctx, &tenant); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists"})
			return
		}
		log.WithError(err).Error("Error inserting tenant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusCreated, tenantResponse(&tenant))
}

// LoginTenant checks credentials and issues the auth token as a cookie and in the body
func (a *AuthController) LoginTenant(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	tenant, err := a.tenants.FindByEmail(ctx, strings.ToLower(input.Email))
	if err != nil || !tenant.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(tenant.ID.Hex(), a.cfg.JWTSecret)
	if err != nil {
		log.WithError(err).Error("Error generating token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	domain := a.cfg.Domain
	// For production, don't set domain to allow cross-origin cookies
	if a.cfg.IsProduction() {
		domain = ""
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middlewares.AuthCookie,
		Value:    token,
		MaxAge:   int(utils.TokenLifetime.Seconds()),
		Path:     "/",
		Domain:   domain,
		Secure:   a.cfg.IsProduction(),
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})

	resp := tenantResponse(tenant)
	resp["token"] = token
	c.JSON(http.StatusOK, resp)
}

// GetMe retrieves the authenticated tenant
func (a *AuthController) GetMe(c *gin.Context) {
	id, ok := tenantID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	tenant, err := a.tenants.FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, tenantResponse(tenant))
}

// LogoutTenant clears the auth_token cookie
func (a *AuthController) LogoutTenant(c *gin.Context) {
	c.SetCookie(middlewares.AuthCookie, "", -1, "/", a.cfg.Domain, a.cfg.IsProduction(), true)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}
