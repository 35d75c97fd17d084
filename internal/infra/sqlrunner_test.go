package infra

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestExtractMarker(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantMarker string
		wantErr    bool
	}{
		{
			name:       "valid",
			query:      "--sql 0b6f3c1e-5d2a-4c8e-9f10-2a3b4c5d6e7f\nSELECT 1",
			wantMarker: "0b6f3c1e-5d2a-4c8e-9f10-2a3b4c5d6e7f",
		},
		{
			name:       "leading whitespace",
			query:      "\n\t--sql 0b6f3c1e-5d2a-4c8e-9f10-2a3b4c5d6e7f\nSELECT 1",
			wantMarker: "0b6f3c1e-5d2a-4c8e-9f10-2a3b4c5d6e7f",
		},
		{name: "missing", query: "SELECT 1", wantErr: true},
		{name: "uppercase uuid", query: "--sql 0B6F3C1E-5D2A-4C8E-9F10-2A3B4C5D6E7F\nSELECT 1", wantErr: true},
		{name: "empty", query: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker, body, err := extractMarker(tt.query)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.query)
				}
				return
			}
			if err != nil {
				t.Fatalf("extractMarker returned error: %v", err)
			}
			if marker != tt.wantMarker {
				t.Fatalf("marker mismatch: got %q want %q", marker, tt.wantMarker)
			}
			if strings.Contains(body, "--sql") || strings.TrimSpace(body) != "SELECT 1" {
				t.Fatalf("unexpected body %q", body)
			}
		})
	}
}

func TestSQLRunnerRejectsUnmarkedQueries(t *testing.T) {
	runner := NewSQLRunner(nil, zerolog.Nop(), 0)
	ctx := context.Background()

	if _, err := runner.Exec(ctx, "DELETE FROM accounts"); !errors.Is(err, ErrMissingMarker) {
		t.Fatalf("Exec: expected ErrMissingMarker, got %v", err)
	}
	if _, err := runner.Query(ctx, "SELECT 1"); !errors.Is(err, ErrMissingMarker) {
		t.Fatalf("Query: expected ErrMissingMarker, got %v", err)
	}
	var n int
	if err := runner.QueryRow(ctx, "SELECT 1").Scan(&n); !errors.Is(err, ErrMissingMarker) {
		t.Fatalf("QueryRow: expected ErrMissingMarker, got %v", err)
	}
}

func TestSQLRunnerWithoutPool(t *testing.T) {
	runner := NewSQLRunner(nil, zerolog.Nop(), 0)
	_, err := runner.Exec(context.Background(), "--sql 0b6f3c1e-5d2a-4c8e-9f10-2a3b4c5d6e7f\nSELECT 1")
	if err == nil {
		t.Fatalf("expected error when no connection is configured")
	}
}
