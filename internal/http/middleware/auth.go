package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnpages/internal/http/response"
	"github.com/yungbote/learnpages/internal/platform/apierr"
	"github.com/yungbote/learnpages/internal/platform/ctxutil"
	"github.com/yungbote/learnpages/internal/platform/i18n"
	"github.com/yungbote/learnpages/internal/platform/logger"
	"github.com/yungbote/learnpages/internal/services"
)

const headerSessionID = "X-Session-Id"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// OptionalAuth attaches RequestData to every request. Anonymous callers pass
// through with a nil learner; a token that is present but invalid is rejected.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &ctxutil.RequestData{
			Locale: i18n.FromAcceptLanguage(c.GetHeader("Accept-Language")),
		}
		if raw := strings.TrimSpace(c.GetHeader(headerSessionID)); raw != "" {
			sid, err := uuid.Parse(raw)
			if err != nil {
				response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidArgument, apierr.ErrInvalidArgument)
				c.Abort()
				return
			}
			rd.SessionID = sid
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), rd)

		if tokenString := extractTokenFromAll(c); tokenString != "" {
			var err error
			ctx, err = am.authService.SetContextFromToken(ctx, tokenString)
			if err != nil {
				am.log.Debug("rejecting token", append([]interface{}{"error", err}, ctxutil.LogFields(ctx)...)...)
				response.RespondAPIError(c, err)
				c.Abort()
				return
			}
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
