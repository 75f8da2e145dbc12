package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDerivedName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"page_0001.xml", "page_0001_transkribus.xml"},
		{"/data/export/page_0001.xml", "page_0001_transkribus.xml"},
		{"scan.XML", "scan_transkribus.xml"},
		{"no_extension", "no_extension_transkribus.xml"},
		{"dots.in.name.xml", "dots.in.name_transkribus.xml"},
	}

	for _, tt := range tests {
		if got := derivedName(tt.input); got != tt.want {
			t.Errorf("derivedName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDeriveOutputPathDefault(t *testing.T) {
	got := deriveOutputPath(filepath.Join("data", "page.xml"), "")
	want := filepath.Join("data", "page_transkribus.xml")
	if got != want {
		t.Errorf("deriveOutputPath() = %q, want %q", got, want)
	}
}

func TestDeriveOutputPathExplicitFile(t *testing.T) {
	got := deriveOutputPath("page.xml", filepath.Join("out", "result.xml"))
	want := filepath.Join("out", "result.xml")
	if got != want {
		t.Errorf("deriveOutputPath() = %q, want %q", got, want)
	}
}

func TestDeriveOutputPathExistingDir(t *testing.T) {
	dir := t.TempDir()
	got := deriveOutputPath("page.xml", dir)
	want := filepath.Join(dir, "page_transkribus.xml")
	if got != want {
		t.Errorf("deriveOutputPath() = %q, want %q", got, want)
	}
}

func TestDeriveOutputPathTrailingSeparator(t *testing.T) {
	got := deriveOutputPath("page.xml", "out/")
	want := filepath.Join("out", "page_transkribus.xml")
	if got != want {
		t.Errorf("deriveOutputPath() = %q, want %q", got, want)
	}
}

func TestFilterConverted(t *testing.T) {
	in := []string{
		"page_0001.xml",
		"page_0001_transkribus.xml",
		"page_0002.xml",
	}
	got := filterConverted(in)
	if len(got) != 2 {
		t.Fatalf("filterConverted() kept %d entries, want 2: %v", len(got), got)
	}
	if got[0] != "page_0001.xml" || got[1] != "page_0002.xml" {
		t.Errorf("filterConverted() = %v", got)
	}
}

func TestCacheDir(t *testing.T) {
	oldXdg := os.Getenv("XDG_CACHE_HOME")
	os.Unsetenv("XDG_CACHE_HOME")
	defer func() {
		if oldXdg != "" {
			os.Setenv("XDG_CACHE_HOME", oldXdg)
		}
	}()

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := t.TempDir()
	oldXdg := os.Getenv("XDG_CACHE_HOME")
	os.Setenv("XDG_CACHE_HOME", customCache)
	defer func() {
		if oldXdg != "" {
			os.Setenv("XDG_CACHE_HOME", oldXdg)
		} else {
			os.Unsetenv("XDG_CACHE_HOME")
		}
	}()

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}
