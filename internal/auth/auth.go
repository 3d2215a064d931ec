package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Roles known to the system. Permissions are derived from the role at
// load time, so route gates work on permission strings while the
// stored model stays a single role column.
const (
	RoleAdmin  = "admin"
	RoleHR     = "hr"
	RoleViewer = "viewer"
)

// Permission names used by route gates and service checks.
const (
	PermAdmin             = "admin"
	PermViewEmployees     = "view_employees"
	PermViewSalaries      = "view_salaries"
	PermManageEmployees   = "manage_employees"
	PermDeleteEmployees   = "delete_employees"
	PermAcknowledgeAlerts = "acknowledge_alerts"
	PermRunScans          = "run_scans"
	PermManageSettings    = "manage_settings"
)

var rolePermissions = map[string][]string{
	RoleAdmin: {
		PermAdmin, PermViewEmployees, PermViewSalaries, PermManageEmployees,
		PermDeleteEmployees, PermAcknowledgeAlerts, PermRunScans, PermManageSettings,
	},
	RoleHR: {
		PermViewEmployees, PermViewSalaries, PermManageEmployees,
		PermAcknowledgeAlerts, PermRunScans,
	},
	RoleViewer: {
		PermViewEmployees,
	},
}

// PermissionsForRole expands a role into its permission set.
func PermissionsForRole(role string) []string {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

type User struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (u *User) HasAnyPermission(permissions []string) bool {
	for _, userPerm := range u.Permissions {
		for _, requiredPerm := range permissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasPermission(PermAdmin)
}

// IsViewer reports whether the user only holds read access. Viewer
// reads get employee names masked to the personnel number.
func (u *User) IsViewer() bool {
	return u.Role == RoleViewer
}

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID string, email string) (token string, err error)
	GenerateRefreshToken(userID string, email string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
	ErrUserNotFound       = errors.New("user not found")
)

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
