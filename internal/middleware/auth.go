package middleware

import (
	"net/http"
	"strings"
	"time"

	casdoorsdk "github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/physiotrack/evalform-service/internal/config"
	"github.com/physiotrack/evalform-service/internal/models"
	"github.com/physiotrack/evalform-service/internal/repositories"
	"github.com/physiotrack/evalform-service/internal/utils"
)

// Authenticator verifies Casdoor-issued bearer tokens and resolves the
// calling user. Verified identities are upserted into the local user table so
// the rest of the service can join on them.
type Authenticator struct {
	client *casdoorsdk.Client
	users  repositories.UserRepository
	logger utils.Logger
}

func NewAuthenticator(cfg config.CasdoorConfig, users repositories.UserRepository, logger utils.Logger) *Authenticator {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return &Authenticator{
		client: client,
		users:  users,
		logger: logger,
	}
}

// Middleware parses the Authorization header, verifies the token, and puts
// user_id (and user_role) into the gin context for downstream handlers.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Missing or malformed Authorization header",
			})
			return
		}

		claims, err := a.client.ParseJwtToken(token)
		if err != nil {
			a.logger.Warn("Token verification failed", "error", err, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			return
		}

		userID := claims.User.Id
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Token carries no user identity",
			})
			return
		}

		a.syncUser(c, claims, userID)

		c.Set("user_id", userID)
		c.Set("user_name", claims.User.Name)
		c.Set("user_role", roleFromClaims(claims))
		c.Next()
	}
}

// syncUser mirrors the verified identity into the local user table. Failures
// are logged and tolerated; authentication does not depend on the mirror.
func (a *Authenticator) syncUser(c *gin.Context, claims *casdoorsdk.Claims, userID string) {
	now := time.Now()
	user := &models.User{
		ID:          userID,
		FullName:    claims.User.DisplayName,
		Email:       claims.User.Email,
		Role:        roleFromClaims(claims),
		IsActive:    true,
		LastLoginAt: &now,
	}
	if err := a.users.Upsert(c.Request.Context(), user); err != nil {
		a.logger.Warn("User mirror upsert failed", "user_id", userID, "error", err)
	}
}

func roleFromClaims(claims *casdoorsdk.Claims) models.UserRole {
	if claims.User.IsAdmin {
		return models.RoleAdmin
	}
	switch strings.ToLower(claims.User.Tag) {
	case "physiotherapist", "therapist":
		return models.RolePhysiotherapist
	default:
		return models.RolePatient
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
