// Package auth adapts the HS256 token layer to the middleware's Verifier
// interface and layers the Redis blacklist check on top, so revoked tokens
// stop working before they expire.
package auth

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/diggingboard/diggingboard/internal/config"
	"github.com/diggingboard/diggingboard/internal/sessions"
	"github.com/diggingboard/diggingboard/internal/tokens"
	"github.com/diggingboard/diggingboard/pkg/middleware"
)

var ErrTokenRevoked = errors.New("token revoked")

type Verifier struct {
	cfg       *config.Config
	blacklist *sessions.Blacklist
}

func NewVerifier(cfg *config.Config, blacklist *sessions.Blacklist) *Verifier {
	return &Verifier{cfg: cfg, blacklist: blacklist}
}

// claimsToken wraps parsed claims behind the middleware.Token interface.
type claimsToken struct {
	claims jwt.MapClaims
}

func (t *claimsToken) Claims(v interface{}) error {
	data, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	revoked, err := v.blacklist.Contains(ctx, raw)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	claims, err := tokens.ParseAccessToken(v.cfg, raw)
	if err != nil {
		return nil, err
	}
	return &claimsToken{claims: claims}, nil
}
