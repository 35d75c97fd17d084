package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"marketplace/internal/infra"
	"marketplace/internal/middleware"
)

func TestMintToken(t *testing.T) {
	var out bytes.Buffer
	if err := mintToken("secret", []string{"-ttl", "1h", "u1", "Ana", "ana@example.com"}, &out); err != nil {
		t.Fatalf("mintToken returned error: %v", err)
	}
	claims, err := middleware.VerifyJWT("secret", strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("minted token does not verify: %v", err)
	}
	if claims.Subject != "u1" || claims.Name != "Ana" || claims.Email != "ana@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestRunValidatesArguments(t *testing.T) {
	cfg := &infra.Config{StoreDriver: infra.StoreDriverMemory, JWTSecret: "secret"}
	tests := [][]string{
		nil,
		{"grant", "u1"},
		{"grant", "u1", "-3"},
		{"balance"},
		{"refund", "u1"},
		{"token"},
	}
	for _, args := range tests {
		var out bytes.Buffer
		if err := run(context.Background(), cfg, zerolog.Nop(), args, &out); err == nil {
			t.Fatalf("args %v: expected error", args)
		}
	}
}

func TestRunBalanceOfUnknownAccount(t *testing.T) {
	cfg := &infra.Config{StoreDriver: infra.StoreDriverMemory, JWTSecret: "secret"}
	var out bytes.Buffer
	err := run(context.Background(), cfg, zerolog.Nop(), []string{"balance", "ghost"}, &out)
	if err == nil {
		t.Fatalf("expected not found error")
	}
}
