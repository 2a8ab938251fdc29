package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), WithEnvMap(nil), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Catalog.PageSize != 12 {
		t.Errorf("expected page size 12, got %d", cfg.Catalog.PageSize)
	}
	if cfg.Catalog.VisiblePageLinks != 5 {
		t.Errorf("expected 5 visible page links, got %d", cfg.Catalog.VisiblePageLinks)
	}
	if cfg.Catalog.SynthesisMode != "omit" {
		t.Errorf("expected synthesis to default to omit, got %s", cfg.Catalog.SynthesisMode)
	}
	if cfg.Catalog.Language != language.Russian {
		t.Errorf("expected russian collation, got %s", cfg.Catalog.Language)
	}
	if cfg.UI.SearchDebounce != 300*time.Millisecond {
		t.Errorf("unexpected debounce: %s", cfg.UI.SearchDebounce)
	}
	if cfg.Prices.Interval != 2*time.Second {
		t.Errorf("unexpected price interval: %s", cfg.Prices.Interval)
	}
	if cfg.Session.SigningKey != "" {
		t.Errorf("expected no signing key by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	env := map[string]string{
		"SPOOLSHELF_SERVER_PORT":                  "9090",
		"SPOOLSHELF_CATALOG_PAGE_SIZE":            "24",
		"SPOOLSHELF_CATALOG_SYNTHESIS":            "SEEDED",
		"SPOOLSHELF_CATALOG_SYNTHESIS_SEED":       "42",
		"SPOOLSHELF_CATALOG_LANGUAGE":             "en",
		"SPOOLSHELF_CATALOG_PREFER_REVIEW_RATING": "yes",
		"SPOOLSHELF_UI_SEARCH_DEBOUNCE":           "150ms",
		"SPOOLSHELF_SESSION_SIGNING_KEY":          "0123456789abcdef0123",
	}
	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected port override, got %s", cfg.Server.Port)
	}
	if cfg.Catalog.PageSize != 24 {
		t.Errorf("expected page size override, got %d", cfg.Catalog.PageSize)
	}
	if cfg.Catalog.SynthesisMode != "seeded" || cfg.Catalog.SynthesisSeed != 42 {
		t.Errorf("unexpected synthesis %s/%d", cfg.Catalog.SynthesisMode, cfg.Catalog.SynthesisSeed)
	}
	if cfg.Catalog.Language != language.English {
		t.Errorf("expected english, got %s", cfg.Catalog.Language)
	}
	if !cfg.Catalog.PreferReviewRating {
		t.Errorf("expected prefer review rating")
	}
	if cfg.UI.SearchDebounce != 150*time.Millisecond {
		t.Errorf("unexpected debounce: %s", cfg.UI.SearchDebounce)
	}
}

func TestLoadValidationError(t *testing.T) {
	env := map[string]string{
		"SPOOLSHELF_CATALOG_PAGE_SIZE":   "0",
		"SPOOLSHELF_CATALOG_SYNTHESIS":   "random",
		"SPOOLSHELF_SESSION_SIGNING_KEY": "short",
		"SPOOLSHELF_LOG_LEVEL":           "chatty",
	}
	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	want := map[string]bool{
		"Log.Level":             true,
		"Catalog.PageSize":      true,
		"Catalog.SynthesisMode": true,
		"Session.SigningKey":    true,
	}
	fields := vErr.Fields()
	if len(fields) != len(want) {
		t.Fatalf("unexpected fields: %v", fields)
	}
	for _, f := range fields {
		if !want[f] {
			t.Errorf("unexpected field %s", f)
		}
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nSPOOLSHELF_CATALOG_DATA_PATH=\"/srv/filaments.json\"\nexport SPOOLSHELF_SERVER_PORT=7070\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}

	env := map[string]string{"SPOOLSHELF_SERVER_PORT": "6060"}
	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(path))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Catalog.DataPath != "/srv/filaments.json" {
		t.Errorf("expected data path from .env, got %s", cfg.Catalog.DataPath)
	}
	if cfg.Server.Port != "6060" {
		t.Errorf("expected explicit env to win over .env, got %s", cfg.Server.Port)
	}
}

func TestLoadMissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(filepath.Join(t.TempDir(), "absent.env")))
	if err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}
