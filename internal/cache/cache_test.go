package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/models"

	"github.com/redis/go-redis/v9"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	ctx := context.Background()
	if Enabled() || Client() != nil {
		t.Fatalf("cache should be disabled")
	}
	if err := SetPublicContent(ctx, "slug", map[string]string{"a": "b"}, time.Minute); err != nil {
		t.Fatalf("set should be noop: %v", err)
	}
	var dest map[string]string
	hit, err := GetPublicContent(ctx, "slug", &dest)
	if err != nil || hit {
		t.Fatalf("get should miss, hit=%v err=%v", hit, err)
	}
	if err := DelPublicContent(ctx, "slug"); err != nil {
		t.Fatalf("del should be noop: %v", err)
	}
	if err := Ping(ctx); err != nil {
		t.Fatalf("ping should be noop: %v", err)
	}
}

func TestJoinKeyAndContentKey(t *testing.T) {
	if got := joinKey("pd", publicContentKey(" My-Slug ")); got != "pd:content:public:my-slug" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := joinKey("pd", "  "); got != "pd" {
		t.Fatalf("blank key should return prefix, got %s", got)
	}
	if got := joinKey("pd", userAuthStateKey(7)); got != "pd:auth:user:7" {
		t.Fatalf("unexpected auth key: %s", got)
	}
}

func TestUseSwapsSharedClient(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	if err := Use(client, "  "); err != nil {
		t.Fatalf("use client failed: %v", err)
	}
	if !Enabled() || Client() != client {
		t.Fatalf("injected client should be active")
	}
	if _, prefix := shared.get(); prefix != defaultKeyPrefix {
		t.Fatalf("blank prefix should fall back to default, got %s", prefix)
	}
	if err := Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if Enabled() {
		t.Fatalf("cache should be disabled after close")
	}
}

func TestUserAuthStateVerify(t *testing.T) {
	issued := time.Unix(1700000100, 0)
	state := &UserAuthState{Status: "active", TokenVersion: 2, TokenInvalidBefore: 1700000000}

	if err := state.Verify(2, issued); err != nil {
		t.Fatalf("fresh token should pass: %v", err)
	}
	if err := state.Verify(1, issued); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("old version should be revoked, got %v", err)
	}
	if err := state.Verify(2, time.Unix(1699999999, 0)); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("token issued before cutoff should be revoked, got %v", err)
	}
	if err := state.Verify(2, time.Time{}); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("token without iat should be revoked when a cutoff exists, got %v", err)
	}
	if err := (&UserAuthState{Status: "active"}).Verify(0, time.Time{}); err != nil {
		t.Fatalf("no cutoff should accept missing iat: %v", err)
	}
	if err := (&UserAuthState{Status: "disabled"}).Verify(0, issued); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("disabled account should fail, got %v", err)
	}
	var missing *UserAuthState
	if err := missing.Verify(0, issued); err == nil {
		t.Fatalf("nil state must not verify")
	}
}

func TestBuildUserAuthState(t *testing.T) {
	invalidBefore := time.Unix(1700000000, 0)
	state := BuildUserAuthState(&models.User{
		ID:                 9,
		Email:              "a@example.com",
		Role:               "AUTHOR",
		Status:             "active",
		TokenVersion:       3,
		TokenInvalidBefore: &invalidBefore,
	})
	if state.UserID != 9 || state.Role != "AUTHOR" || state.TokenVersion != 3 || state.TokenInvalidBefore != 1700000000 {
		t.Fatalf("unexpected state: %+v", state)
	}
	if BuildUserAuthState(nil) != nil {
		t.Fatalf("nil user should yield nil state")
	}
}
