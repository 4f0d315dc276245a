// Package auth resolves the calling actor from a bearer token and places it on
// the request context.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	apierrors "github.com/Apurer/go-gin-shop-server/internal/shared/errors"
)

// Header names accepted when token verification is disabled.
const (
	HeaderTenantID    = "X-Tenant-ID"
	HeaderUserID      = "X-User-ID"
	HeaderRole        = "X-Role"
	HeaderPermissions = "X-Permissions"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Claims is the token payload issued by the account service.
type Claims struct {
	TenantID    string                   `json:"tenant_id"`
	Role        string                   `json:"role"`
	Permissions accessdomain.Permissions `json:"permissions"`
	jwt.RegisteredClaims
}

// Config controls how actors are resolved.
type Config struct {
	Secret []byte
	// Disabled trusts the X-* headers instead of a token. Local use only.
	Disabled bool
}

// Middleware rejects requests without a resolvable actor with a 401 problem.
func Middleware(cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			actor accessdomain.Actor
			err   error
		)
		if cfg.Disabled {
			actor, err = FromHeaders(c.Request.Header.Get)
		} else {
			actor, err = FromToken(cfg.Secret, c.GetHeader("Authorization"))
		}
		if err != nil {
			apierrors.Abort(c, apierrors.ErrUnauthorized.WithDetail(err.Error()))
			return
		}
		c.Request = c.Request.WithContext(accessdomain.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// FromToken verifies an HS256 "Bearer <jwt>" header value and converts its
// claims to an actor.
func FromToken(secret []byte, header string) (accessdomain.Actor, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return accessdomain.Actor{}, ErrMissingToken
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return accessdomain.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.actor()
}

func (c Claims) actor() (accessdomain.Actor, error) {
	tenantID, err := uuid.Parse(c.TenantID)
	if err != nil {
		return accessdomain.Actor{}, fmt.Errorf("%w: tenant_id", ErrInvalidToken)
	}
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return accessdomain.Actor{}, fmt.Errorf("%w: sub", ErrInvalidToken)
	}
	actor := accessdomain.Actor{
		TenantID:    tenantID,
		UserID:      userID,
		Role:        accessdomain.Role(strings.ToLower(c.Role)),
		Permissions: c.Permissions,
	}
	if err := actor.Validate(); err != nil {
		return accessdomain.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return actor, nil
}

// FromHeaders builds an actor from plain headers. X-Permissions is a comma
// separated subset of add, edit, delete.
func FromHeaders(get func(string) string) (accessdomain.Actor, error) {
	tenantID, err := uuid.Parse(get(HeaderTenantID))
	if err != nil {
		return accessdomain.Actor{}, fmt.Errorf("%w: %s", ErrMissingToken, HeaderTenantID)
	}
	userID := uuid.Nil
	if raw := get(HeaderUserID); raw != "" {
		if userID, err = uuid.Parse(raw); err != nil {
			return accessdomain.Actor{}, fmt.Errorf("%w: %s", ErrInvalidToken, HeaderUserID)
		}
	}
	role := accessdomain.Role(strings.ToLower(get(HeaderRole)))
	if role == "" {
		role = accessdomain.RoleOwner
	}
	var perms accessdomain.Permissions
	for _, p := range strings.Split(get(HeaderPermissions), ",") {
		switch strings.TrimSpace(strings.ToLower(p)) {
		case "add":
			perms.CanAdd = true
		case "edit":
			perms.CanEdit = true
		case "delete":
			perms.CanDelete = true
		}
	}
	actor := accessdomain.Actor{TenantID: tenantID, UserID: userID, Role: role, Permissions: perms}
	if err := actor.Validate(); err != nil {
		return accessdomain.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return actor, nil
}

// IssueToken signs an HS256 token for actor. Used by tooling and tests.
func IssueToken(secret []byte, actor accessdomain.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TenantID:    actor.TenantID.String(),
		Role:        string(actor.Role),
		Permissions: actor.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
