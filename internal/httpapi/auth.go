package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/moonhowl/werewolfd/internal/config"
)

// playerIDKey is the gin context key holding the authenticated player id.
const playerIDKey = "playerID"

// ErrInvalidToken is returned when a session token fails verification.
var ErrInvalidToken = errors.New("invalid session token")

// TokenIssuer mints and verifies guest session tokens. Players are anonymous;
// identity is a generated uuid carried in the token subject.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenIssuer creates a TokenIssuer from auth configuration.
//
// Precondition: cfg must have passed config validation.
func NewTokenIssuer(cfg config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TokenTTL,
		issuer: cfg.Issuer,
	}
}

// Issue mints a session token for a fresh player id.
//
// Postcondition: The returned token verifies against this issuer until the
// configured TTL elapses.
func (ti *TokenIssuer) Issue() (token string, playerID uuid.UUID, err error) {
	playerID = uuid.New()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   playerID.String(),
		Issuer:    ti.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("signing token: %w", err)
	}
	return token, playerID, nil
}

// Verify parses a session token and returns the player id it carries.
//
// Postcondition: Returns ErrInvalidToken for expired, malformed, or
// mis-signed tokens.
func (ti *TokenIssuer) Verify(token string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return ti.secret, nil
	}, jwt.WithIssuer(ti.issuer))
	if err != nil || !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	playerID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return playerID, nil
}

// RequireAuth is gin middleware that verifies the bearer token and stores
// the player id on the request context.
func (ti *TokenIssuer) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		playerID, err := ti.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}
		c.Set(playerIDKey, playerID)
		c.Next()
	}
}

// currentPlayer returns the authenticated player id set by RequireAuth.
//
// Precondition: The route must be behind RequireAuth.
func currentPlayer(c *gin.Context) uuid.UUID {
	return c.MustGet(playerIDKey).(uuid.UUID)
}
