package service

import (
	"fmt"
	"time"

	"pos-fiscal-ledger/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenService implements ports.TokenService using HS256 JWT.
type JWTTokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewJWTTokenService creates a new JWT token service.
func NewJWTTokenService(secret string, expiry time.Duration, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
	}
}

// Generate creates a signed JWT for an operator of a tenant.
func (s *JWTTokenService) Generate(c ports.OperatorClaims) (string, time.Time, error) {
	if c.OperatorID == "" {
		return "", time.Time{}, fmt.Errorf("operator id is required")
	}
	if !validRole(c.Role) {
		return "", time.Time{}, fmt.Errorf("unknown role %q", c.Role)
	}

	now := time.Now()
	expiresAt := now.Add(s.expiry)

	claims := jwt.MapClaims{
		"sub":       c.OperatorID,
		"tenant_id": c.TenantID.String(),
		"role":      c.Role,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
		"iss":       s.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate parses and validates a JWT token, returning the operator claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.OperatorClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("missing subject claim")
	}

	rawTenant, _ := claims["tenant_id"].(string)
	tenantID, err := uuid.Parse(rawTenant)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant ID in token: %w", err)
	}

	role, _ := claims["role"].(string)
	if !validRole(role) {
		return nil, fmt.Errorf("invalid role %q in token", role)
	}

	return &ports.OperatorClaims{
		TenantID:   tenantID,
		OperatorID: sub,
		Role:       role,
	}, nil
}

func validRole(role string) bool {
	return role == ports.RoleCashier || role == ports.RoleManager
}
