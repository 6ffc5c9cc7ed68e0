package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "github.com/trackback-blockchain/plug-blockchain/pkg/domain-errors"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
	"github.com/trackback-blockchain/plug-blockchain/pkg/requestcontext"
)

// Claims are the JWT claims for ledger API tokens. A token carries either
// the root flag or a concrete account id.
type Claims struct {
	Account *uint64 `json:"account,omitempty"`
	Root    bool    `json:"root,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts the claims into the request principal.
func (c *Claims) Principal() (requestcontext.Principal, error) {
	if c.Root {
		return requestcontext.RootPrincipal(), nil
	}
	if c.Account == nil {
		return requestcontext.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "token carries no principal")
	}
	return requestcontext.AccountPrincipal(domain.AccountID(*c.Account)), nil
}

// JWTService handles token creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateToken signs a token for the given principal.
func (s *JWTService) GenerateToken(principal requestcontext.Principal, expiresIn time.Duration) (string, error) {
	claims := Claims{
		Root: principal.Root,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	}
	if !principal.Root {
		account := uint64(principal.Account)
		claims.Account = &account
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning the principal it
// carries.
func (s *JWTService) ValidateToken(tokenString string) (requestcontext.Principal, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return requestcontext.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return requestcontext.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return requestcontext.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return requestcontext.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims.Principal()
}
