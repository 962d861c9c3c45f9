package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/tenancy"
	"github.com/taichu-system/rental-management/internal/utils"
	pkgutils "github.com/taichu-system/rental-management/pkg/utils"
)

// Gin context keys set by JWTMiddleware.
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyRole     = "role"
	KeyTenantID = "tenant_id"
)

// JWTClaims carries the caller identity. TenantID is empty only for super
// administrators.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTMiddleware authenticates the bearer token and establishes the
// TenantContext on the request context.
func JWTMiddleware(secretKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			pkgutils.AbortWithError(c, utils.Unauthorized(utils.ReasonMissingCredentials, "authorization header is required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			pkgutils.AbortWithError(c, utils.Unauthorized(utils.ReasonMissingCredentials, "authorization header format must be Bearer {token}"))
			return
		}

		claims, err := parseToken(parts[1], secretKey, issuer)
		if err != nil {
			pkgutils.AbortWithError(c, utils.Unauthorized(utils.ReasonInvalidToken, "invalid or expired token"))
			return
		}

		tc := tenancy.TenantContext{UserID: claims.UserID, Role: claims.Role}
		if claims.TenantID != "" {
			tenantID, err := tenancy.ParseTenantID(claims.TenantID)
			if err != nil {
				pkgutils.AbortWithError(c, utils.Unauthorized(utils.ReasonInvalidToken, "token carries an invalid tenant id"))
				return
			}
			tc.TenantID = &tenantID
		} else if claims.Role != tenancy.RoleSuperAdmin {
			pkgutils.AbortWithError(c, utils.Unauthorized(utils.ReasonTenantContextRequired, "token carries no tenant"))
			return
		}

		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyUsername, claims.Username)
		c.Set(KeyRole, claims.Role)
		c.Set(KeyTenantID, tc.TenantIDString())
		c.Request = c.Request.WithContext(tenancy.WithContext(c.Request.Context(), tc))
		c.Next()
	}
}

func parseToken(raw, secretKey, issuer string) (*JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(raw, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// GenerateToken signs a token for operators and tests. Issuance for end
// users lives outside this service.
func GenerateToken(userID, username, role string, tenantID *uuid.UUID, secretKey, issuer string, ttl time.Duration) (string, error) {
	claims := JWTClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
		},
	}
	if tenantID != nil {
		claims.TenantID = tenantID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

// RoleMiddleware admits only the listed roles.
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(KeyRole)
		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}
		pkgutils.AbortWithError(c, utils.NewError(utils.ErrCodeForbidden, utils.ReasonForbidden, "insufficient permissions"))
	}
}
