package access

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"dentcheck/pkg/logger"
	"dentcheck/pkg/utils"
)

const issuer = "dentcheck"

var (
	ErrTokenMissing = errors.New("authorization header is missing")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims carries the caller identity inside the JWT.
type Claims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// Policy signs and verifies HS256 caller tokens.
type Policy struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewPolicy(secret string, ttl time.Duration) *Policy {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Policy{key: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a token for the given user. Used by the CLI and tests;
// login itself lives outside this service.
func (p *Policy) Issue(userID string, role Role) (string, time.Time, error) {
	if userID == "" || !role.Valid() {
		return "", time.Time{}, fmt.Errorf("cannot issue token for user %q with role %q", userID, role)
	}

	expiresAt := p.now().Add(p.ttl)
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(p.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("could not sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Authenticate validates tokenString and returns the caller it names.
func (p *Policy) Authenticate(tokenString string) (Caller, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.key, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			return Caller{}, fmt.Errorf("%w: expired or not active yet", ErrTokenInvalid)
		}
		return Caller{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return Caller{}, ErrTokenInvalid
	}

	return Caller{UserID: claims.UserID, Role: claims.Role}, nil
}

// FromRequest reads a "Bearer <token>" Authorization header.
func (p *Policy) FromRequest(r *http.Request) (Caller, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Caller{}, ErrTokenMissing
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return Caller{}, fmt.Errorf("%w: expected Bearer scheme", ErrTokenInvalid)
	}
	return p.Authenticate(strings.TrimSpace(parts[1]))
}

// Middleware rejects unauthenticated requests and stores the Caller in the
// request context for handlers to pass on explicitly.
func (p *Policy) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := p.FromRequest(r)
		if err != nil {
			logger.LogDebug("auth rejected %s %s: %v", r.Method, r.URL.Path, err)
			if errors.Is(err, ErrTokenMissing) {
				utils.WriteError(w, http.StatusUnauthorized, utils.ErrAuthRequired, "Authentication required.")
				return
			}
			utils.WriteError(w, http.StatusUnauthorized, utils.ErrAuthInvalid, "Invalid or expired token.")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}
