package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGo(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLinterFlagsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "a.go", "package q\n\n"+
		"const QOk = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;`\n\n"+
		"const QMissing = `select * from accounts;`\n\n"+
		"const QBadMarker = `--sql not-a-uuid\nupdate accounts set balance = 0;`\n\n"+
		"const Greeting = \"hello\"\n")
	writeGo(t, dir, "b.go", "package q\n\n"+
		"const QDup = `--sql 11111111-2222-4333-8444-555555555555\ndelete from jobs;`\n")

	l := newLinter()
	if err := l.lintPath(dir); err != nil {
		t.Fatalf("lintPath returned error: %v", err)
	}
	vs := l.violations()
	if len(vs) != 3 {
		t.Fatalf("expected 3 violations, got %d: %+v", len(vs), vs)
	}
	names := make([]string, 0, len(vs))
	for _, v := range vs {
		names = append(names, v.name)
	}
	got := strings.Join(names, ",")
	if got != "QMissing,QBadMarker,QDup" {
		t.Fatalf("unexpected violation order %q", got)
	}
	if !strings.Contains(vs[2].message, "QOk") {
		t.Fatalf("duplicate should name the first use, got %q", vs[2].message)
	}
}

func TestSQLInlineQueriesAreMarked(t *testing.T) {
	l := newLinter()
	if err := l.lintPath(filepath.Join("..", "..", "sqlinline")); err != nil {
		t.Fatalf("lintPath returned error: %v", err)
	}
	if vs := l.violations(); len(vs) > 0 {
		t.Fatalf("sqlinline has marker violations: %+v", vs)
	}
	if len(l.markers) == 0 {
		t.Fatalf("expected sqlinline queries to be found")
	}
}
