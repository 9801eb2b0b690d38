package api

import (
	"net/http"
	"time"

	"summa/auth"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type tokenCarbonCopyRequest struct {
	Token string `json:"token"`
}

// createTokenCarbonCopy verifies a bearer token and mirrors it into the
// session cookie
func (s *Server) createTokenCarbonCopy(c *gin.Context) {
	var req tokenCarbonCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	identity, err := s.authenticator.VerifyToken(c.Request.Context(), req.Token)
	if err != nil {
		log.WithError(err).Debug("Rejected token carbon copy")
		abortWithError(c, auth.ErrInvalidToken)
		return
	}

	value, expiresAt, err := s.authenticator.Cookies().Create(identity)
	if err != nil {
		abortWithError(c, err)
		return
	}

	http.SetCookie(c.Writer, s.sessionCookie(value, expiresAt))
	c.Status(http.StatusOK)
}

// deleteTokenCarbonCopy expires the session cookie
func (s *Server) deleteTokenCarbonCopy(c *gin.Context) {
	cookie := s.sessionCookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	http.SetCookie(c.Writer, cookie)
	c.Status(http.StatusNoContent)
}

func (s *Server) sessionCookie(value string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		Domain:   s.cfg.SessionCookieDomain,
		Expires:  expiresAt,
		Secure:   s.cfg.SessionCookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
