package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuiltinTemplatesPresent(t *testing.T) {
	m := NewManager("")
	for _, key := range []string{
		"content_analyst",
		"monetization_advisor",
		"content_strategy",
		"audience_insights",
		"voice_impact_summary",
	} {
		text, err := m.Template(key)
		if err != nil {
			t.Fatalf("Template(%q): %v", key, err)
		}
		if strings.TrimSpace(text) == "" {
			t.Fatalf("template %q is empty", key)
		}
	}
}

func TestMissingTemplateIsError(t *testing.T) {
	m := NewManager("")
	if _, err := m.Template("not_a_real_template"); err == nil {
		t.Fatal("expected error for unknown template key")
	}
}

func TestOverrideDirTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	custom := "You are a test persona."
	if err := os.WriteFile(filepath.Join(dir, "content_analyst.txt"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	m := NewManager(dir)
	text, err := m.Template("content_analyst")
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	if text != custom {
		t.Fatalf("expected override text, got %q", text)
	}

	// Keys without an override still resolve to the built-in.
	if _, err := m.Template("content_strategy"); err != nil {
		t.Fatalf("builtin fallback failed: %v", err)
	}
}

func TestReloadPicksUpOverrideChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "content_analyst.txt")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m := NewManager(dir)
	if text, _ := m.Template("content_analyst"); text != "v1" {
		t.Fatalf("expected v1, got %q", text)
	}

	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	// Cached until reload.
	if text, _ := m.Template("content_analyst"); text != "v1" {
		t.Fatalf("expected cached v1, got %q", text)
	}
	m.Reload()
	if text, _ := m.Template("content_analyst"); text != "v2" {
		t.Fatalf("expected v2 after reload, got %q", text)
	}
}
