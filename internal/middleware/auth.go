package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/apierror"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const PrincipalKey = "principal"

// Authenticator resolves a bearer token to a local usuario.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Principal, error)
}

// BearerAuth validates the Bearer token on every protected route and attaches
// the resolved principal to the context.
func BearerAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apierror.WithCode(apierror.CodeAuthRequired, "Autenticación requerida"))
			return
		}

		p, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			var se *service.Error
			if errors.As(err, &se) && se.Kind == service.KindUnauthorized {
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.WithCode(se.Code, se.Msg))
				return
			}
			log.Error().
				Str("request_id", c.GetString(RequestIDKey)).
				Err(err).
				Msg("auth: principal resolution failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				apierror.WithCode(apierror.CodeInternal, "Error interno del servidor"))
			return
		}

		c.Set(PrincipalKey, p)
		c.Next()
	}
}

// RequireRole rejects requests whose principal role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil || !allowed[p.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden,
				apierror.WithCode(apierror.CodeForbidden, "Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller, nil on public routes.
func GetPrincipal(c *gin.Context) *service.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*service.Principal)
	return p
}
