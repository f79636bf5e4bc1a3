package middleware

import (
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// identityKey is the context key JWTAuth stores the caller identity under.
const identityKey = "identity"

// Roles carried in the JWT role claim.
const (
	RoleMember     = "MEMBER"
	RoleHubManager = "HUB_MANAGER"
	RoleAdmin      = "ADMIN"
)

// Identity is the authenticated caller as asserted by the platform's
// identity service.  OrgID is the organization the caller books under.
type Identity struct {
	UserID uint64
	Email  string
	OrgID  uint64
	Role   string
}

// IsAdmin reports whether the identity holds the ADMIN role.  Admin-only
// powers (cross-organization listing, late-cancel override) key off this.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

// CanActForOthers reports whether the identity may perform check-in desk
// operations on behalf of another occupant.  Hub managers get this without
// any of the admin powers.
func (id Identity) CanActForOthers() bool {
	return id.Role == RoleAdmin || id.Role == RoleHubManager
}

// CurrentIdentity returns the identity stored by JWTAuth, or false when the
// request was not authenticated.
func CurrentIdentity(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}

// identityFromClaims builds an Identity from the token's claim map.  The sub
// and org claims hold decimal IDs; numeric JSON values are accepted too
// since some token issuers emit them unquoted.
func identityFromClaims(claims jwt.MapClaims) (Identity, error) {
	uid, err := claimUint(claims, "sub")
	if err != nil {
		return Identity{}, err
	}
	org, err := claimUint(claims, "org")
	if err != nil {
		return Identity{}, err
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		role = RoleMember
	}
	return Identity{UserID: uid, Email: email, OrgID: org, Role: role}, nil
}

func claimUint(claims jwt.MapClaims, key string) (uint64, error) {
	switch v := claims[key].(type) {
	case string:
		return strconv.ParseUint(v, 10, 64)
	case float64:
		if v < 0 {
			return 0, errors.New("negative claim value")
		}
		return uint64(v), nil
	default:
		return 0, errors.New("missing claim " + key)
	}
}
