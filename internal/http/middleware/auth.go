package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/vowbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

// Claims are the identity provider's access token claims.
type Claims struct {
	Role       string `json:"role,omitempty"`
	Email      string `json:"email,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	jwt.RegisteredClaims
}

type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

type AuthMiddleware struct {
	log    *logger.Logger
	cfg    AuthConfig
	parser *jwt.Parser
}

var (
	errMissingToken = errors.New("missing or invalid token")
	errBadSubject   = errors.New("token subject is not a valid user id")
)

func NewAuthMiddleware(log *logger.Logger, cfg AuthConfig) *AuthMiddleware {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	return &AuthMiddleware{
		log:    log.With("middleware", "AuthMiddleware"),
		cfg:    cfg,
		parser: jwt.NewParser(opts...),
	}
}

// RequireAuth rejects requests without a valid bearer token.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			abortUnauthorized(c, errMissingToken)
			return
		}
		rd, err := am.verify(tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			abortUnauthorized(c, err)
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

// OptionalAuth attaches the caller when a token is present. Public endpoints use it so
// owners can see what anonymous visitors cannot; a bad token is still rejected.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			c.Next()
			return
		}
		rd, err := am.verify(tokenString)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

func (am *AuthMiddleware) verify(tokenString string) (*ctxutil.RequestData, error) {
	claims := &Claims{}
	_, err := am.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(am.cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(strings.TrimSpace(claims.Subject))
	if err != nil || userID == uuid.Nil {
		return nil, errBadSubject
	}
	return &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Role:        strings.ToLower(strings.TrimSpace(claims.Role)),
		Email:       strings.TrimSpace(claims.Email),
		GivenName:   strings.TrimSpace(claims.GivenName),
		FamilyName:  strings.TrimSpace(claims.FamilyName),
	}, nil
}

func abortUnauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"message": err.Error(), "code": "unauthorized"},
	})
}

// EventSource and WebSocket clients cannot set headers, so the token may ride in the query.
func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
