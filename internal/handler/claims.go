package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/examforge/examforge-backend/internal/middleware"
	"github.com/examforge/examforge-backend/internal/service"
)

// mustClaims returns the request's JWT claims. Routes behind the JWT
// middleware always have them; the empty fallback keeps handlers nil-safe.
func mustClaims(c *gin.Context) *service.Claims {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims
	}
	return &service.Claims{}
}
