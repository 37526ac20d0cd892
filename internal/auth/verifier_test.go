package auth

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/diggingboard/diggingboard/internal/config"
	"github.com/diggingboard/diggingboard/internal/models"
	"github.com/diggingboard/diggingboard/internal/sessions"
	"github.com/diggingboard/diggingboard/internal/tokens"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	return cfg
}

func TestVerifier_ValidToken(t *testing.T) {
	cfg := testConfig()
	acct := &models.Account{ID: "acct-1", Name: "maya"}
	raw, err := tokens.GenerateAccessToken(cfg, acct, time.Minute)
	require.NoError(t, err)

	v := NewVerifier(cfg, sessions.NewBlacklist(nil))
	tok, err := v.Verify(context.Background(), raw)
	require.NoError(t, err)

	var claims struct {
		Sub  string `json:"sub"`
		Name string `json:"name"`
	}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "acct-1", claims.Sub)
	require.Equal(t, "maya", claims.Name)
}

func TestVerifier_RejectsGarbage(t *testing.T) {
	v := NewVerifier(testConfig(), sessions.NewBlacklist(nil))
	_, err := v.Verify(context.Background(), "not-a-token")
	require.Error(t, err)
}

func TestVerifier_RejectsRevokedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	blacklist := sessions.NewBlacklist(client)

	cfg := testConfig()
	raw, err := tokens.GenerateAccessToken(cfg, &models.Account{ID: "acct-2", Name: "ren"}, time.Minute)
	require.NoError(t, err)
	require.NoError(t, blacklist.Add(context.Background(), raw, time.Minute))

	v := NewVerifier(cfg, blacklist)
	_, err = v.Verify(context.Background(), raw)
	require.ErrorIs(t, err, ErrTokenRevoked)
}
