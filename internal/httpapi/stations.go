package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolattend/internal/auth"
)

func (s *server) registerStation(c *gin.Context) {
	var req struct {
		StationID string `json:"station_id" binding:"required,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindErrors(err)})
		return
	}
	s.issueTokens(c, req.StationID, http.StatusCreated)
}

func (s *server) refreshStation(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindErrors(err)})
		return
	}
	claims, err := auth.Parse(req.RefreshToken, s.Tokens.SigningKey, s.Tokens.Issuer)
	if err != nil || claims.Role != auth.RoleStation || claims.Type != auth.TokenRefresh {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	s.issueTokens(c, claims.Subject, http.StatusOK)
}

func (s *server) issueTokens(c *gin.Context, stationID string, status int) {
	tokens, err := auth.Issue(stationID, auth.RoleStation, s.Tokens.Issuer, s.Tokens.SigningKey, s.Tokens.AccessTTL, s.Tokens.RefreshTTL)
	if err != nil {
		s.internalError(c, err, "token issue failed")
		return
	}
	c.JSON(status, gin.H{
		"station_id":    stationID,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}
