package api

import (
	"strings"
	"time"

	"summa/auth"
	"summa/domain/entities"
	"summa/infrastructure/observability"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const accountKey = "account"

// requestLogger logs every request and records its latency
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		duration := time.Since(start)
		status := c.Writer.Status()

		observability.GetMetrics().RecordHTTPRequest(route, status, duration)

		entry := log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"route":    route,
			"status":   status,
			"duration": duration,
		})
		if status >= 500 {
			entry.Warn("HTTP request")
		} else {
			entry.Debug("HTTP request")
		}
	}
}

// requireAuth resolves the session cookie, falling back to a bearer token,
// and stores the caller's account on the context
func requireAuth(authenticator *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			account *entities.UserAccount
			err     error
		)

		if cookie, cookieErr := c.Cookie(auth.CookieName); cookieErr == nil && cookie != "" {
			_, account, err = authenticator.FromCookie(c.Request.Context(), cookie)
		} else if token, ok := bearerToken(c); ok {
			_, account, err = authenticator.FromToken(c.Request.Context(), token)
		} else {
			err = auth.ErrUnauthenticated
		}

		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(accountKey, account)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func currentAccount(c *gin.Context) *entities.UserAccount {
	return c.MustGet(accountKey).(*entities.UserAccount)
}
