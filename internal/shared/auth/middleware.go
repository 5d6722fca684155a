package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gloria-mdrrmo/sigurado/internal/shared/config"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/httpapi"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is what a verified bearer token asserts about its holder.
// It still has to be resolved against the actor store before use.
type Identity struct {
	ActorID    types.ID
	Role       string
	DistrictID *types.ID
}

// Claims extends JWT claims with platform-specific data
type Claims struct {
	jwt.RegisteredClaims
	Role       string `json:"role"`
	DistrictID string `json:"district_id,omitempty"`
}

// Tokens issues and verifies HS256 bearer tokens
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token service from auth config
func NewTokens(cfg config.AuthConfig) *Tokens {
	return &Tokens{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// Issue signs a token for the given identity
func (t *Tokens) Issue(id Identity) (string, error) {
	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ActorID.String(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Role: id.Role,
	}
	if id.DistrictID != nil {
		claims.DistrictID = id.DistrictID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns the identity it carries
func (t *Tokens) Parse(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Identity{}, errors.Unauthenticated("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, errors.Unauthenticated("invalid token claims")
	}

	actorID, err := types.ParseID(claims.Subject)
	if err != nil {
		return Identity{}, errors.Unauthenticated("invalid token subject")
	}
	districtID, err := types.ParseOptionalID(claims.DistrictID)
	if err != nil {
		return Identity{}, errors.Unauthenticated("invalid token district")
	}

	return Identity{ActorID: actorID, Role: claims.Role, DistrictID: districtID}, nil
}

// Middleware rejects requests without a valid bearer token and stores
// the verified identity in the request context.
func Middleware(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httpapi.WriteError(w, nil, errors.Unauthenticated("missing authorization header"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				httpapi.WriteError(w, nil, errors.Unauthenticated("invalid authorization header format"))
				return
			}

			id, err := tokens.Parse(parts[1])
			if err != nil {
				httpapi.WriteError(w, nil, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity stores id in ctx
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFrom extracts the verified identity from ctx
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}
