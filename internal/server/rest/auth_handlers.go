package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/snapster/internal/common"
	"github.com/dmitrijs2005/snapster/internal/server/services"
)

func (s *HTTPServer) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, common.ErrorValidation)
		return
	}

	user, pair, err := s.users.Register(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	s.setAuthCookies(c, pair)
	c.JSON(http.StatusCreated, newUserResponse(user))
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, common.ErrorValidation)
		return
	}

	user, pair, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	s.setAuthCookies(c, pair)
	c.JSON(http.StatusOK, newUserResponse(user))
}

// refresh rotates the refresh token taken from the cookie or, failing that,
// from the JSON body.
func (s *HTTPServer) refresh(c *gin.Context) {
	token, _ := c.Cookie(common.RefreshTokenCookieName)
	if token == "" {
		var req refreshRequest
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}
	if token == "" {
		writeError(c, common.ErrorUnauthorized)
		return
	}

	pair, err := s.users.RefreshToken(c.Request.Context(), token)
	if err != nil {
		s.clearAuthCookies(c)
		writeError(c, err)
		return
	}

	s.setAuthCookies(c, pair)
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) logout(c *gin.Context) {
	token, _ := c.Cookie(common.RefreshTokenCookieName)
	if err := s.users.Logout(c.Request.Context(), token); err != nil {
		writeError(c, err)
		return
	}
	s.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (s *HTTPServer) me(c *gin.Context) {
	user, err := s.users.Me(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (s *HTTPServer) setAuthCookies(c *gin.Context, pair *services.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.AccessTokenCookieName, pair.AccessToken,
		int(s.opts.AccessTTL.Seconds()), "/", s.opts.CookieDomain, s.opts.CookieSecure, true)
	c.SetCookie(common.RefreshTokenCookieName, pair.RefreshToken,
		int(s.opts.RefreshTTL.Seconds()), "/auth", s.opts.CookieDomain, s.opts.CookieSecure, true)
}

func (s *HTTPServer) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.AccessTokenCookieName, "", -1, "/", s.opts.CookieDomain, s.opts.CookieSecure, true)
	c.SetCookie(common.RefreshTokenCookieName, "", -1, "/auth", s.opts.CookieDomain, s.opts.CookieSecure, true)
}
