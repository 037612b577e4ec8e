package intake

import (
	"net/http"

	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderAPIToken carries the company API token.
	HeaderAPIToken = "X-Api-Token"

	contextCompanyIDKey = "intakeCompanyID"
	contextTokenNameKey = "intakeTokenName"
)

// TokenAuthMiddleware authenticates intake requests by company API token.
func TokenAuthMiddleware(store TokenStore, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		plaintext := c.GetHeader(HeaderAPIToken)
		if plaintext == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpkit.ErrorResponse{Error: "missing api token"})
			return
		}

		id, secret, err := ParseToken(plaintext)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpkit.ErrorResponse{Error: "invalid api token"})
			return
		}
		token, err := store.GetActiveToken(c.Request.Context(), id)
		if err != nil || !VerifySecret(token.TokenHash, secret) {
			log.Warn("api token rejected", "tokenId", id, "ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpkit.ErrorResponse{Error: "invalid api token"})
			return
		}

		store.TouchToken(c.Request.Context(), token.ID)
		c.Set(contextCompanyIDKey, token.CompanyID)
		c.Set(contextTokenNameKey, token.Name)
		c.Next()
	}
}

func tokenCompany(c *gin.Context) (uuid.UUID, string, bool) {
	companyID, ok := c.Get(contextCompanyIDKey)
	if !ok {
		return uuid.UUID{}, "", false
	}
	id, ok := companyID.(uuid.UUID)
	return id, c.GetString(contextTokenNameKey), ok
}
